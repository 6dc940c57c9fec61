package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/model"
	"gamba-tracker-bot/internal/pricing"
)

func seedLeaderboard(t *testing.T, store *fakeGambleStore) {
	t.Helper()
	ctx := context.Background()
	store.users[1] = "alice"
	store.users[2] = "bob"
	store.users[3] = "carol"

	// With ecto at 1g and runes at 5g, per-hand cost is 350g.
	// alice: net = 1000 + 100 - 2*350 = 400
	// bob:   net = 100 + 50 - 1*350 = -200
	// carol: net = 3000 + 500 - 4*350 = 2100
	rows := []model.Gamble{
		{UserID: 1, Hands: 2, Gold: 1000, Ectos: 100, RecordedAt: 10},
		{UserID: 2, Hands: 1, Gold: 100, Ectos: 50, RecordedAt: 20},
		{UserID: 3, Hands: 4, Gold: 3000, Ectos: 500, RecordedAt: 30},
	}
	for i := range rows {
		require.NoError(t, store.Append(ctx, &rows[i]))
	}
}

func TestLeaderboardService_TopByNet(t *testing.T) {
	store := newFakeGambleStore()
	seedLeaderboard(t, store)
	svc := NewLeaderboardService(store, ledger.NewValuator(stubPricer{ectoPrice: 1.0, runePrice: 5.0}))

	ranked, err := svc.Top(context.Background(), ledger.ByNet, ledger.Descending, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "carol", ranked[0].Totals.Username)
	assert.InDelta(t, 2100.0, ranked[0].Net, 1e-9)
	assert.Equal(t, "alice", ranked[1].Totals.Username)
	assert.InDelta(t, 400.0, ranked[1].Net, 1e-9)
}

func TestLeaderboardService_BottomByNet(t *testing.T) {
	store := newFakeGambleStore()
	seedLeaderboard(t, store)
	svc := NewLeaderboardService(store, ledger.NewValuator(stubPricer{ectoPrice: 1.0, runePrice: 5.0}))

	ranked, err := svc.Top(context.Background(), ledger.ByNet, ledger.Ascending, 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "bob", ranked[0].Totals.Username)
	assert.InDelta(t, -200.0, ranked[0].Net, 1e-9)
}

func TestLeaderboardService_ByAvg(t *testing.T) {
	store := newFakeGambleStore()
	seedLeaderboard(t, store)
	svc := NewLeaderboardService(store, ledger.NewValuator(stubPricer{ectoPrice: 1.0, runePrice: 5.0}))

	// avg: alice 200, bob -200, carol 525
	ranked, err := svc.Top(context.Background(), ledger.ByAvg, ledger.Descending, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "carol", ranked[0].Totals.Username)
	assert.InDelta(t, 525.0, ranked[0].Avg, 1e-9)
	assert.Equal(t, "alice", ranked[1].Totals.Username)
	assert.Equal(t, "bob", ranked[2].Totals.Username)
}

func TestLeaderboardService_SkipsZeroHandUsers(t *testing.T) {
	store := newFakeGambleStore()
	ctx := context.Background()
	store.users[1] = "alice"
	store.users[2] = "bob"

	// bob has a session row with zero hands, which cannot be valued.
	require.NoError(t, store.Append(ctx, &model.Gamble{UserID: 1, Hands: 1, Gold: 500, RecordedAt: 10}))
	require.NoError(t, store.Append(ctx, &model.Gamble{UserID: 2, Hands: 0, Gold: 100, RecordedAt: 20}))

	svc := NewLeaderboardService(store, ledger.NewValuator(stubPricer{ectoPrice: 1.0, runePrice: 5.0}))

	ranked, err := svc.Top(ctx, ledger.ByNet, ledger.Descending, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "alice", ranked[0].Totals.Username)
}

func TestLeaderboardService_PriceFailureAborts(t *testing.T) {
	store := newFakeGambleStore()
	seedLeaderboard(t, store)
	svc := NewLeaderboardService(store, ledger.NewValuator(stubPricer{err: pricing.ErrPriceUnavailable}))

	_, err := svc.Top(context.Background(), ledger.ByNet, ledger.Descending, 0)
	assert.ErrorIs(t, err, pricing.ErrPriceUnavailable)
}

func TestLeaderboardService_EmptyStore(t *testing.T) {
	store := newFakeGambleStore()
	svc := NewLeaderboardService(store, ledger.NewValuator(stubPricer{ectoPrice: 1.0, runePrice: 5.0}))

	ranked, err := svc.Top(context.Background(), ledger.ByNet, ledger.Descending, 10)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}
