package ledger

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gamba-tracker-bot/internal/model"
)

func entry(name string, net, avg float64) model.PlayerRank {
	return model.PlayerRank{
		Totals: model.GambleTotals{Username: name},
		Net:    net,
		Avg:    avg,
	}
}

func names(ranked []model.PlayerRank) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Totals.Username
	}
	return out
}

func TestRankDescendingByNet(t *testing.T) {
	entries := []model.PlayerRank{
		entry("alice", 5, 1),
		entry("bob", 20, 2),
		entry("carol", -3, -1),
	}

	ranked := Rank(entries, ByNet, Descending, 0)
	assert.Equal(t, []string{"bob", "alice", "carol"}, names(ranked))
}

func TestRankAscendingByNet(t *testing.T) {
	entries := []model.PlayerRank{
		entry("alice", 5, 1),
		entry("bob", 20, 2),
		entry("carol", -3, -1),
	}

	ranked := Rank(entries, ByNet, Ascending, 0)
	assert.Equal(t, []string{"carol", "alice", "bob"}, names(ranked))
}

func TestRankByAvg(t *testing.T) {
	entries := []model.PlayerRank{
		entry("alice", 100, 0.5),
		entry("bob", 10, 10),
	}

	ranked := Rank(entries, ByAvg, Descending, 0)
	assert.Equal(t, []string{"bob", "alice"}, names(ranked))
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	entries := []model.PlayerRank{
		entry("a", 10, 1),
		entry("b", 10, 2),
		entry("c", 5, 3),
	}

	ranked := Rank(entries, ByNet, Descending, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, []string{"a", "b"}, names(ranked))
}

func TestRankLimit(t *testing.T) {
	entries := []model.PlayerRank{
		entry("a", 3, 0),
		entry("b", 2, 0),
		entry("c", 1, 0),
	}

	assert.Len(t, Rank(entries, ByNet, Descending, 2), 2)
	assert.Len(t, Rank(entries, ByNet, Descending, 0), 3)
	assert.Len(t, Rank(entries, ByNet, Descending, -1), 3)
	assert.Len(t, Rank(entries, ByNet, Descending, 10), 3)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	entries := []model.PlayerRank{
		entry("a", 1, 0),
		entry("b", 2, 0),
	}

	_ = Rank(entries, ByNet, Descending, 0)
	assert.Equal(t, []string{"a", "b"}, names(entries))
}

func TestRankSortednessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "n")
		entries := make([]model.PlayerRank, n)
		for i := range entries {
			entries[i] = model.PlayerRank{
				Net: float64(rapid.IntRange(-1000, 1000).Draw(t, "net")),
				Avg: float64(rapid.IntRange(-1000, 1000).Draw(t, "avg")),
			}
		}

		ranked := Rank(entries, ByNet, Descending, 0)
		if len(ranked) != n {
			t.Fatalf("expected %d entries, got %d", n, len(ranked))
		}
		if !sort.SliceIsSorted(ranked, func(i, j int) bool {
			return ranked[i].Net > ranked[j].Net
		}) {
			t.Fatalf("not sorted descending by net: %+v", ranked)
		}

		ranked = Rank(entries, ByAvg, Ascending, 0)
		if !sort.SliceIsSorted(ranked, func(i, j int) bool {
			return ranked[i].Avg < ranked[j].Avg
		}) {
			t.Fatalf("not sorted ascending by avg: %+v", ranked)
		}
	})
}
