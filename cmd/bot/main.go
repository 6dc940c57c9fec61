// Package main is the entry point for the gamba tracker bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gamba-tracker-bot/internal/bot"
	"gamba-tracker-bot/internal/config"
	"gamba-tracker-bot/internal/ledger"
	"gamba-tracker-bot/internal/pkg/clock"
	"gamba-tracker-bot/internal/pkg/db"
	"gamba-tracker-bot/internal/pkg/lock"
	"gamba-tracker-bot/internal/pricing"
	"gamba-tracker-bot/internal/repository"
	"gamba-tracker-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	gambleRepo := repository.NewGambleRepository(dbPool.Pool)

	// Initialize the trading post price cache
	priceClient := pricing.NewClient(
		pricing.WithBaseURL(cfg.Pricing.BaseURL),
		pricing.WithTimeout(cfg.Pricing.Timeout),
	)
	priceCache := pricing.NewCache(priceClient,
		pricing.WithTTL(cfg.Pricing.TTL),
		pricing.WithServeStale(cfg.Pricing.ServeStale),
	)

	// Initialize the valuation core
	valuator := ledger.NewValuator(priceCache)
	valuator.FlatCostPerHand = cfg.Gamble.FlatCostPerHand
	valuator.EctoCostPerHand = cfg.Gamble.EctoCostPerHand

	// Initialize services
	gambaService := service.NewGambaService(gambleRepo, userRepo, valuator, clock.System{})
	leaderboardService := service.NewLeaderboardService(gambleRepo, valuator)

	// Initialize user lock
	userLock := lock.NewUserLock()

	// Create bot dependencies
	deps := &bot.Dependencies{
		Config:             cfg,
		GambaService:       gambaService,
		LeaderboardService: leaderboardService,
		PriceCache:         priceCache,
		UserLock:           userLock,
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create gambles table. recorded_at is unix seconds; the
	// (user_id, recorded_at DESC, id DESC) index serves both the recent
	// listing and the deterministic delete-most-recent lookup.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS gambles (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			hands BIGINT NOT NULL CHECK (hands >= 0),
			gold BIGINT NOT NULL CHECK (gold >= 0),
			ectos BIGINT NOT NULL CHECK (ectos >= 0),
			runes BIGINT NOT NULL CHECK (runes >= 0),
			recorded_at BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_gambles_user_time ON gambles(user_id, recorded_at DESC, id DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: gambles table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
