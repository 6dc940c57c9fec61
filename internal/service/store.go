// Package service provides business logic implementations.
package service

import (
	"context"

	"gamba-tracker-bot/internal/model"
)

// GambleStore is the session store contract the services operate on.
// *repository.GambleRepository is the production implementation; tests use
// in-memory fakes.
type GambleStore interface {
	// Append persists a new session and fills in its insertion id.
	Append(ctx context.Context, g *model.Gamble) error
	// SumForUser returns one user's aggregated totals, or
	// repository.ErrNoGambles when the user has no sessions.
	SumForUser(ctx context.Context, userID int64) (model.GambleTotals, error)
	// SumAll returns bot-wide totals; an empty store yields zero totals.
	SumAll(ctx context.Context) (model.GambleTotals, error)
	// SumGroupedByUser returns per-user totals for every user with
	// at least one session.
	SumGroupedByUser(ctx context.Context) ([]model.GambleTotals, error)
	// RecentForUser returns a user's newest sessions, newest first.
	RecentForUser(ctx context.Context, userID int64, limit int) ([]model.Gamble, error)
	// DeleteMostRecentForUser removes exactly the user's most recently
	// recorded session, or repository.ErrNothingToDelete when none exist.
	DeleteMostRecentForUser(ctx context.Context, userID int64) (*model.Gamble, error)
}

// UserStore is the identity store contract. *repository.UserRepository is
// the production implementation.
type UserStore interface {
	// GetOrCreate retrieves a user, creating the row on first contact.
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)
	// UpdateUsername keeps the stored username current.
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
}
