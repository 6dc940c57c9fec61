package handler

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"gamba-tracker-bot/internal/pricing"
)

// PricesHandler exposes the current cached item prices.
type PricesHandler struct {
	cache *pricing.Cache
}

// NewPricesHandler creates a new PricesHandler.
func NewPricesHandler(cache *pricing.Cache) *PricesHandler {
	return &PricesHandler{cache: cache}
}

// HandlePrices handles the /prices command: the trading post price of every
// tracked item. A stale cache entry triggers a refresh on this path.
func (h *PricesHandler) HandlePrices(c tele.Context) error {
	ctx := context.Background()

	msg := "💰 Trading post prices (min sell)\n"
	msg += "━━━━━━━━━━━━━━━\n"

	for _, item := range pricing.Items() {
		price, err := h.cache.Price(ctx, item)
		if err != nil {
			msg += fmt.Sprintf("%s: unavailable\n", item)
			continue
		}
		msg += fmt.Sprintf("%s: %s\n", item, formatGold(price))
	}

	return c.Reply(msg)
}
