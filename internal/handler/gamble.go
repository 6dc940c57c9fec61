// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/pkg/lock"
	"gamba-tracker-bot/internal/repository"
	"gamba-tracker-bot/internal/service"
)

// GambaHandler handles session logging commands.
type GambaHandler struct {
	gambaService *service.GambaService
	userLock     *lock.UserLock
}

// NewGambaHandler creates a new GambaHandler.
func NewGambaHandler(gambaService *service.GambaService, userLock *lock.UserLock) *GambaHandler {
	return &GambaHandler{
		gambaService: gambaService,
		userLock:     userLock,
	}
}

// HandleStart handles the /start command.
func (h *GambaHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	username := displayName(sender)
	_, created, err := h.gambaService.EnsureUser(ctx, sender.ID, username)
	if err != nil {
		return c.Reply("❌ Failed to set up your account, please try again later")
	}

	if created {
		return c.Reply(fmt.Sprintf(
			"🎲 Welcome @%s!\n\n"+
				"Log your ecto gambling sessions and I'll keep score.\n\n"+
				"Commands:\n"+
				"/gamble <hands> <gold> <ectos> <runes> - log a session\n"+
				"/undo - remove your last session\n"+
				"/stats - your totals\n"+
				"/recent - your recent sessions\n"+
				"/total - bot-wide totals\n"+
				"/top - biggest winners\n"+
				"/bottom - biggest losers\n"+
				"/prices - current item prices",
			username,
		))
	}

	return c.Reply(fmt.Sprintf("👋 Welcome back @%s! May the odds be ever in your favour.", username))
}

// HandleGamble handles the /gamble command:
// /gamble <hands> <gold> <ectos> <runes>
// All four arguments are required non-negative integers; hands must be at
// least 1. This is the validation boundary: the core below only ever sees
// clean values.
func (h *GambaHandler) HandleGamble(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 4 {
		return c.Reply("Usage: /gamble <hands> <gold> <ectos> <runes>")
	}

	values := make([]int64, 4)
	for i, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n < 0 {
			return c.Reply(fmt.Sprintf("❌ %q is not a non-negative integer", arg))
		}
		values[i] = n
	}
	hands, gold, ectos, runes := values[0], values[1], values[2], values[3]
	if hands < 1 {
		return c.Reply("❌ A session needs at least 1 hand")
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	g, err := h.gambaService.Record(ctx, sender.ID, displayName(sender), hands, gold, ectos, runes)
	if err != nil {
		return c.Reply("❌ Failed to record your session, please try again later")
	}

	msg := fmt.Sprintf(
		"🎲 Session logged: %d hands, %d gold, %d ectos, %d runes\n",
		g.Hands, g.Gold, g.Ectos, g.Runes,
	)

	// Valuation is best effort here: the session is already saved, and the
	// trading post API may be down.
	val, err := h.gambaService.Valuate(ctx, g.Totals())
	if err != nil {
		msg += "(item prices unavailable right now, use /stats later for the value)"
	} else {
		msg += fmt.Sprintf("Net value: %s (%s per hand)", formatGold(val.Net), formatGold(val.Avg))
	}

	return c.Reply(msg)
}

// HandleUndo handles the /undo command: removes the sender's most recently
// recorded session.
func (h *GambaHandler) HandleUndo(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	g, err := h.gambaService.Undo(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToDelete) {
			return c.Reply("Nothing to undo: you have no recorded sessions")
		}
		return c.Reply("❌ Failed to undo, please try again later")
	}

	return c.Reply(fmt.Sprintf(
		"🗑 Removed your last session: %d hands, %d gold, %d ectos, %d runes",
		g.Hands, g.Gold, g.Ectos, g.Runes,
	))
}

// HandleRecent handles the /recent command: lists the sender's latest
// sessions, newest first.
func (h *GambaHandler) HandleRecent(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	gambles, err := h.gambaService.Recent(ctx, sender.ID, 5)
	if err != nil {
		return c.Reply("❌ Failed to load your sessions, please try again later")
	}
	if len(gambles) == 0 {
		return c.Reply("You have no recorded sessions yet. Log one with /gamble")
	}

	msg := "🕐 Your recent sessions (newest first):\n"
	for i, g := range gambles {
		msg += fmt.Sprintf(
			"%d. %d hands | %d gold | %d ectos | %d runes\n",
			i+1, g.Hands, g.Gold, g.Ectos, g.Runes,
		)
	}

	return c.Reply(msg)
}

// displayName picks a usable name for a Telegram sender.
func displayName(sender *tele.User) string {
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}

// formatGold renders a gold value with two decimals for display.
// Internally values keep full precision.
func formatGold(v float64) string {
	return fmt.Sprintf("%.2fg", ledger.Round2(v))
}
