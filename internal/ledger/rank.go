package ledger

import (
	"sort"

	"gamba-tracker-bot/internal/model"
)

// RankBy selects the valuation field a leaderboard is ordered on.
type RankBy int

const (
	// ByNet orders on total net gold.
	ByNet RankBy = iota
	// ByAvg orders on per-hand average gold.
	ByAvg
)

// Order selects leaderboard direction.
type Order int

const (
	// Descending puts the biggest winners first.
	Descending Order = iota
	// Ascending puts the biggest losers first.
	Ascending
)

// Rank returns the top-limit entries ordered on the chosen field. The sort
// is stable: equal values keep their input order, since no tie-break is
// defined for leaderboards. A limit of zero or less, or beyond the input
// length, returns everything.
func Rank(entries []model.PlayerRank, by RankBy, order Order, limit int) []model.PlayerRank {
	ranked := make([]model.PlayerRank, len(entries))
	copy(ranked, entries)

	key := func(r model.PlayerRank) float64 {
		if by == ByAvg {
			return r.Avg
		}
		return r.Net
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if order == Ascending {
			return key(ranked[i]) < key(ranked[j])
		}
		return key(ranked[i]) > key(ranked[j])
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
