package handler

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/pricing"
	"gamba-tracker-bot/internal/service"
)

// LeaderboardHandler handles the winner and loser boards.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	limit              int
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, limit int) *LeaderboardHandler {
	if limit <= 0 {
		limit = 10
	}
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		limit:              limit,
	}
}

// HandleTop handles /top [net|avg]: the biggest winners.
func (h *LeaderboardHandler) HandleTop(c tele.Context) error {
	return h.board(c, "🏆 Winners", ledger.Descending)
}

// HandleBottom handles /bottom [net|avg]: the biggest losers, most negative
// first.
func (h *LeaderboardHandler) HandleBottom(c tele.Context) error {
	return h.board(c, "😢 Losers", ledger.Ascending)
}

// board renders one leaderboard. The optional first argument switches the
// ordering field between total net (default) and per-hand average.
func (h *LeaderboardHandler) board(c tele.Context, title string, order ledger.Order) error {
	ctx := context.Background()

	by := ledger.ByNet
	byLabel := "net"
	if args := c.Args(); len(args) > 0 && (args[0] == "avg" || args[0] == "average") {
		by = ledger.ByAvg
		byLabel = "per-hand average"
	}

	ranks, err := h.leaderboardService.Top(ctx, by, order, h.limit)
	if err != nil {
		if errors.Is(err, pricing.ErrPriceUnavailable) {
			return c.Reply("❌ Trading post prices are unavailable right now, try again in a bit")
		}
		return c.Reply("❌ Failed to build the leaderboard, please try again later")
	}
	if len(ranks) == 0 {
		return c.Reply("Nobody has logged a session yet. Start the board with /gamble")
	}

	msg := fmt.Sprintf("%s by %s TOP %d\n", title, byLabel, h.limit)
	msg += "━━━━━━━━━━━━━━━\n"

	medals := []string{"🥇", "🥈", "🥉"}
	for i, r := range ranks {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}

		name := r.Totals.Username
		if name == "" {
			name = fmt.Sprintf("User%d", r.Totals.UserID)
		}

		value := r.Net
		if by == ledger.ByAvg {
			value = r.Avg
		}

		msg += fmt.Sprintf("%s %s: %s (%d hands)\n", rank, name, formatGold(value), r.Totals.Hands)
	}

	return c.Reply(msg)
}
