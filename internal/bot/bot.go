// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"gamba-tracker-bot/internal/config"
	"gamba-tracker-bot/internal/handler"
	"gamba-tracker-bot/internal/pkg/lock"
	"gamba-tracker-bot/internal/pricing"
	"gamba-tracker-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot                *tele.Bot
	cfg                *config.Config
	gambaService       *service.GambaService
	leaderboardService *service.LeaderboardService
	priceCache         *pricing.Cache
	userLock           *lock.UserLock

	// Handlers
	gambaHandler       *handler.GambaHandler
	statsHandler       *handler.StatsHandler
	leaderboardHandler *handler.LeaderboardHandler
	pricesHandler      *handler.PricesHandler
	adminHandler       *handler.AdminHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config             *config.Config
	GambaService       *service.GambaService
	LeaderboardService *service.LeaderboardService
	PriceCache         *pricing.Cache
	UserLock           *lock.UserLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:                teleBot,
		cfg:                deps.Config,
		gambaService:       deps.GambaService,
		leaderboardService: deps.LeaderboardService,
		priceCache:         deps.PriceCache,
		userLock:           deps.UserLock,
	}

	b.gambaHandler = handler.NewGambaHandler(deps.GambaService, deps.UserLock)
	b.statsHandler = handler.NewStatsHandler(deps.GambaService)
	b.leaderboardHandler = handler.NewLeaderboardHandler(deps.LeaderboardService, deps.Config.Leaderboard.Limit)
	b.pricesHandler = handler.NewPricesHandler(deps.PriceCache)
	b.adminHandler = handler.NewAdminHandler(deps.GambaService, deps.UserLock)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.gambaHandler.HandleStart)
	b.bot.Handle("/gamble", b.gambaHandler.HandleGamble)
	b.bot.Handle("/undo", b.gambaHandler.HandleUndo)
	b.bot.Handle("/recent", b.gambaHandler.HandleRecent)

	b.bot.Handle("/stats", b.statsHandler.HandleStats)
	b.bot.Handle("/total", b.statsHandler.HandleTotal)

	b.bot.Handle("/top", b.leaderboardHandler.HandleTop)
	b.bot.Handle("/bottom", b.leaderboardHandler.HandleBottom)

	b.bot.Handle("/prices", b.pricesHandler.HandlePrices)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin_undo", b.adminHandler.HandleAdminUndo)
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
