package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/model"
	"gamba-tracker-bot/internal/pricing"
	"gamba-tracker-bot/internal/repository"
	"gamba-tracker-bot/internal/service"
)

// StatsHandler handles totals and valuation queries.
type StatsHandler struct {
	gambaService *service.GambaService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(gambaService *service.GambaService) *StatsHandler {
	return &StatsHandler{gambaService: gambaService}
}

// HandleStats handles the /stats command: the sender's aggregated totals
// and their current gold value.
func (h *StatsHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	totals, err := h.gambaService.UserTotals(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoGambles) {
			return c.Reply("You have no recorded sessions yet. Log one with /gamble")
		}
		return c.Reply("❌ Failed to load your stats, please try again later")
	}

	return c.Reply(h.renderTotals(ctx, fmt.Sprintf("📊 Stats for @%s", totals.Username), totals))
}

// HandleTotal handles the /total command: bot-wide totals across all users.
func (h *StatsHandler) HandleTotal(c tele.Context) error {
	ctx := context.Background()

	totals, err := h.gambaService.BotTotals(ctx)
	if err != nil {
		return c.Reply("❌ Failed to load totals, please try again later")
	}
	if totals.Hands == 0 {
		return c.Reply("Nobody has logged a session yet. Be the first with /gamble")
	}

	return c.Reply(h.renderTotals(ctx, "🌍 Bot-wide totals", totals))
}

// renderTotals formats totals plus their valuation, degrading to raw
// numbers when prices are unavailable.
func (h *StatsHandler) renderTotals(ctx context.Context, title string, totals model.GambleTotals) string {
	msg := title + "\n"
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("Hands played: %d\n", totals.Hands)
	msg += fmt.Sprintf("Gold won: %d\n", totals.Gold)
	msg += fmt.Sprintf("Ectos won: %d\n", totals.Ectos)
	msg += fmt.Sprintf("Runes won: %d\n", totals.Runes)
	if totals.LastPlayed > 0 {
		msg += fmt.Sprintf("Last played: %s\n", time.Unix(totals.LastPlayed, 0).UTC().Format("2006-01-02 15:04 MST"))
	}

	val, err := h.gambaService.Valuate(ctx, totals)
	switch {
	case errors.Is(err, ledger.ErrNoHands):
		// Nothing to value.
	case errors.Is(err, pricing.ErrPriceUnavailable):
		msg += "Net value: unavailable (trading post not responding)"
	case err != nil:
		msg += "Net value: unavailable"
	default:
		msg += fmt.Sprintf("Net value: %s (%s per hand)", formatGold(val.Net), formatGold(val.Avg))
	}

	return msg
}
