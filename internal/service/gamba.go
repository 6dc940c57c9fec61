package service

import (
	"context"
	"fmt"

	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/model"
	"gamba-tracker-bot/internal/pkg/clock"
)

// GambaService records gamble sessions and answers totals and valuation
// queries for them.
type GambaService struct {
	store    GambleStore
	users    UserStore
	valuator *ledger.Valuator
	clk      clock.Clock
}

// NewGambaService creates a new GambaService instance.
func NewGambaService(
	store GambleStore,
	users UserStore,
	valuator *ledger.Valuator,
	clk clock.Clock,
) *GambaService {
	if clk == nil {
		clk = clock.System{}
	}
	return &GambaService{
		store:    store,
		users:    users,
		valuator: valuator,
		clk:      clk,
	}
}

// EnsureUser ensures a user row exists, creating one if necessary, and
// keeps the stored username current. Returns whether it was newly created.
func (s *GambaService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	if !created && user.Username != username && username != "" {
		// Best effort; the user row already exists.
		_ = s.users.UpdateUsername(ctx, telegramID, username)
		user.Username = username
	}

	return user, created, nil
}

// Record persists a new gamble session, timestamped now. Inputs are
// validated non-negative integers; validation happens at the chat boundary.
func (s *GambaService) Record(ctx context.Context, userID int64, username string, hands, gold, ectos, runes int64) (*model.Gamble, error) {
	if _, _, err := s.EnsureUser(ctx, userID, username); err != nil {
		return nil, err
	}

	g := &model.Gamble{
		UserID:     userID,
		Username:   username,
		Hands:      hands,
		Gold:       gold,
		Ectos:      ectos,
		Runes:      runes,
		RecordedAt: s.clk.Now().Unix(),
	}
	if err := s.store.Append(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to record gamble: %w", err)
	}

	return g, nil
}

// UserTotals returns one user's aggregated totals.
// Returns repository.ErrNoGambles when the user has no sessions.
func (s *GambaService) UserTotals(ctx context.Context, userID int64) (model.GambleTotals, error) {
	return s.store.SumForUser(ctx, userID)
}

// BotTotals returns totals aggregated across every user.
func (s *GambaService) BotTotals(ctx context.Context) (model.GambleTotals, error) {
	return s.store.SumAll(ctx)
}

// Recent returns a user's newest sessions, newest first.
func (s *GambaService) Recent(ctx context.Context, userID int64, limit int) ([]model.Gamble, error) {
	return s.store.RecentForUser(ctx, userID, limit)
}

// Undo removes the user's most recently recorded session and returns it.
// Returns repository.ErrNothingToDelete when the user has none.
func (s *GambaService) Undo(ctx context.Context, userID int64) (*model.Gamble, error) {
	return s.store.DeleteMostRecentForUser(ctx, userID)
}

// Valuate prices totals at current market prices.
func (s *GambaService) Valuate(ctx context.Context, totals model.GambleTotals) (ledger.Valuation, error) {
	return s.valuator.Valuate(ctx, totals)
}
