// Package model defines the data models for the gamba tracker bot.
package model

import "time"

// User represents a Telegram user known to the bot.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Gamble represents one logged gambling session: a batch of hands played
// and the raw resources won during it. Rows are immutable once persisted.
type Gamble struct {
	ID         int64  `db:"id"`
	UserID     int64  `db:"user_id"`
	Username   string `db:"username"`
	Hands      int64  `db:"hands"`
	Gold       int64  `db:"gold"`
	Ectos      int64  `db:"ectos"`
	Runes      int64  `db:"runes"`
	RecordedAt int64  `db:"recorded_at"` // unix seconds
}

// GambleTotals is the field-wise sum of a group of Gamble rows.
// LastPlayed is the maximum RecordedAt in the group. For bot-wide totals
// UserID is zero and Username is empty. Totals are derived on demand and
// never stored.
type GambleTotals struct {
	UserID     int64
	Username   string
	Hands      int64
	Gold       int64
	Ectos      int64
	Runes      int64
	LastPlayed int64
}

// Totals converts a single session into the equivalent one-session totals.
func (g Gamble) Totals() GambleTotals {
	return GambleTotals{
		UserID:     g.UserID,
		Username:   g.Username,
		Hands:      g.Hands,
		Gold:       g.Gold,
		Ectos:      g.Ectos,
		Runes:      g.Runes,
		LastPlayed: g.RecordedAt,
	}
}

// PlayerRank is a leaderboard entry: one user's totals together with the
// monetary valuation computed for them.
type PlayerRank struct {
	Totals GambleTotals
	Net    float64
	Avg    float64
}
