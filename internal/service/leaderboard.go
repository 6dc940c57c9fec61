package service

import (
	"context"
	"errors"
	"fmt"

	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/model"
)

// LeaderboardService ranks users by the gold value of their gambling.
type LeaderboardService struct {
	store    GambleStore
	valuator *ledger.Valuator
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(store GambleStore, valuator *ledger.Valuator) *LeaderboardService {
	return &LeaderboardService{
		store:    store,
		valuator: valuator,
	}
}

// Top returns the top-limit users ordered on the chosen valuation field.
// Descending order selects winners, ascending selects losers. Users whose
// totals cannot be valued (zero hands on record) are skipped; price lookup
// failures abort the whole leaderboard.
func (s *LeaderboardService) Top(ctx context.Context, by ledger.RankBy, order ledger.Order, limit int) ([]model.PlayerRank, error) {
	totals, err := s.store.SumGroupedByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load per-user totals: %w", err)
	}

	entries := make([]model.PlayerRank, 0, len(totals))
	for _, t := range totals {
		val, err := s.valuator.Valuate(ctx, t)
		if err != nil {
			if errors.Is(err, ledger.ErrNoHands) {
				continue
			}
			return nil, err
		}
		entries = append(entries, model.PlayerRank{
			Totals: t,
			Net:    val.Net,
			Avg:    val.Avg,
		})
	}

	return ledger.Rank(entries, by, order, limit), nil
}
