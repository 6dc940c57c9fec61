package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"gamba-tracker-bot/internal/pkg/lock"
	"gamba-tracker-bot/internal/repository"
	"gamba-tracker-bot/internal/service"
)

// AdminHandler handles moderator commands. The admin middleware guarantees
// only configured admins reach these.
type AdminHandler struct {
	gambaService *service.GambaService
	userLock     *lock.UserLock
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(gambaService *service.GambaService, userLock *lock.UserLock) *AdminHandler {
	return &AdminHandler{
		gambaService: gambaService,
		userLock:     userLock,
	}
}

// HandleAdminUndo handles /admin_undo: removes the most recent session of
// another user, either the sender of the replied-to message or a numeric
// Telegram id given as argument.
func (h *AdminHandler) HandleAdminUndo(c tele.Context) error {
	ctx := context.Background()

	targetID, err := h.targetUser(c)
	if err != nil {
		return c.Reply("Usage: reply to the user's message with /admin_undo, or /admin_undo <telegram_id>")
	}

	h.userLock.Lock(targetID)
	defer h.userLock.Unlock(targetID)

	g, err := h.gambaService.Undo(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToDelete) {
			return c.Reply("That user has no recorded sessions")
		}
		return c.Reply("❌ Failed to undo, please try again later")
	}

	return c.Reply(fmt.Sprintf(
		"🗑 Removed their last session: %d hands, %d gold, %d ectos, %d runes",
		g.Hands, g.Gold, g.Ectos, g.Runes,
	))
}

// targetUser resolves the user an admin command applies to.
func (h *AdminHandler) targetUser(c tele.Context) (int64, error) {
	if msg := c.Message(); msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		return msg.ReplyTo.Sender.ID, nil
	}
	if args := c.Args(); len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, errors.New("no target user")
}
