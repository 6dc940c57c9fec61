package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamba-tracker-bot/internal/model"
)

// Errors for gamble store operations.
var (
	// ErrNoGambles is returned when per-user totals are requested for a
	// user with no recorded sessions.
	ErrNoGambles = errors.New("no gambles recorded")

	// ErrNothingToDelete is returned when an undo is requested for a user
	// with no recorded sessions.
	ErrNothingToDelete = errors.New("nothing to delete")
)

// GambleRepository handles gamble session persistence and aggregation.
// Sessions are append-only; aggregation never mutates stored rows.
type GambleRepository struct {
	pool *pgxpool.Pool
}

// NewGambleRepository creates a new GambleRepository instance.
func NewGambleRepository(pool *pgxpool.Pool) *GambleRepository {
	return &GambleRepository{pool: pool}
}

// Append stores a new gamble session and fills in its insertion id.
func (r *GambleRepository) Append(ctx context.Context, g *model.Gamble) error {
	const query = `
		INSERT INTO gambles (user_id, hands, gold, ectos, runes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		g.UserID, g.Hands, g.Gold, g.Ectos, g.Runes, g.RecordedAt,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("failed to append gamble: %w", err)
	}

	return nil
}

// SumForUser returns the field-wise sums of all of a user's sessions, with
// LastPlayed set to the newest session timestamp. Returns ErrNoGambles if
// the user has no sessions.
func (r *GambleRepository) SumForUser(ctx context.Context, userID int64) (model.GambleTotals, error) {
	const query = `
		SELECT g.user_id, u.username,
		       SUM(g.hands), SUM(g.gold), SUM(g.ectos), SUM(g.runes),
		       MAX(g.recorded_at)
		FROM gambles g
		JOIN users u ON g.user_id = u.telegram_id
		WHERE g.user_id = $1
		GROUP BY g.user_id, u.username
	`

	var t model.GambleTotals
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&t.UserID, &t.Username,
		&t.Hands, &t.Gold, &t.Ectos, &t.Runes,
		&t.LastPlayed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GambleTotals{}, ErrNoGambles
		}
		return model.GambleTotals{}, fmt.Errorf("failed to sum gambles for user: %w", err)
	}

	return t, nil
}

// SumAll returns bot-wide totals across every user. UserID and Username are
// left zero in the result. An empty table yields zero totals, not an error.
func (r *GambleRepository) SumAll(ctx context.Context) (model.GambleTotals, error) {
	const query = `
		SELECT COALESCE(SUM(hands), 0), COALESCE(SUM(gold), 0),
		       COALESCE(SUM(ectos), 0), COALESCE(SUM(runes), 0),
		       COALESCE(MAX(recorded_at), 0)
		FROM gambles
	`

	var t model.GambleTotals
	err := r.pool.QueryRow(ctx, query).Scan(
		&t.Hands, &t.Gold, &t.Ectos, &t.Runes, &t.LastPlayed,
	)
	if err != nil {
		return model.GambleTotals{}, fmt.Errorf("failed to sum all gambles: %w", err)
	}

	return t, nil
}

// SumGroupedByUser returns per-user totals for every user with at least one
// session, ordered by user id for a deterministic leaderboard input order.
func (r *GambleRepository) SumGroupedByUser(ctx context.Context) ([]model.GambleTotals, error) {
	const query = `
		SELECT g.user_id, u.username,
		       SUM(g.hands), SUM(g.gold), SUM(g.ectos), SUM(g.runes),
		       MAX(g.recorded_at)
		FROM gambles g
		JOIN users u ON g.user_id = u.telegram_id
		GROUP BY g.user_id, u.username
		ORDER BY g.user_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum gambles by user: %w", err)
	}
	defer rows.Close()

	var totals []model.GambleTotals
	for rows.Next() {
		var t model.GambleTotals
		err := rows.Scan(
			&t.UserID, &t.Username,
			&t.Hands, &t.Gold, &t.Ectos, &t.Runes,
			&t.LastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan totals: %w", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating totals: %w", err)
	}

	return totals, nil
}

// RecentForUser retrieves a user's most recent sessions, newest first.
func (r *GambleRepository) RecentForUser(ctx context.Context, userID int64, limit int) ([]model.Gamble, error) {
	const query = `
		SELECT g.id, g.user_id, u.username, g.hands, g.gold, g.ectos, g.runes, g.recorded_at
		FROM gambles g
		JOIN users u ON g.user_id = u.telegram_id
		WHERE g.user_id = $1
		ORDER BY g.recorded_at DESC, g.id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent gambles: %w", err)
	}
	defer rows.Close()

	var gambles []model.Gamble
	for rows.Next() {
		var g model.Gamble
		err := rows.Scan(
			&g.ID, &g.UserID, &g.Username,
			&g.Hands, &g.Gold, &g.Ectos, &g.Runes,
			&g.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gamble: %w", err)
		}
		gambles = append(gambles, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gambles: %w", err)
	}

	return gambles, nil
}

// DeleteMostRecentForUser removes the single most recently recorded session
// belonging to the user. Sessions sharing the maximum timestamp are broken
// by the highest insertion id, so the last row written is the one removed.
// Returns ErrNothingToDelete if the user has no sessions.
func (r *GambleRepository) DeleteMostRecentForUser(ctx context.Context, userID int64) (*model.Gamble, error) {
	const query = `
		DELETE FROM gambles
		WHERE id = (
			SELECT id FROM gambles
			WHERE user_id = $1
			ORDER BY recorded_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id, user_id, hands, gold, ectos, runes, recorded_at
	`

	var g model.Gamble
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&g.ID, &g.UserID,
		&g.Hands, &g.Gold, &g.Ectos, &g.Runes,
		&g.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNothingToDelete
		}
		return nil, fmt.Errorf("failed to delete most recent gamble: %w", err)
	}

	return &g, nil
}
