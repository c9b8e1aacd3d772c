package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"betbot/bot"
	"betbot/config"
	"betbot/database"
	"betbot/events"
	"betbot/gamesource"
	"betbot/metrics"
	"betbot/models"
	"betbot/repository"
	"betbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting betbot...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	gameSource := gamesource.New(cfg.GameSourceURL, cfg.GameSourceAPIKey)
	betService := service.NewBetService(uowFactory, gameSource)
	resolutionService := service.NewResolutionService(uowFactory, map[string]models.BetStatus{
		cfg.EmojiWon:  models.BetStatusWon,
		cfg.EmojiLost: models.BetStatusLost,
		cfg.EmojiPush: models.BetStatusPush,
	})
	cleanupService := service.NewCleanupService(uowFactory, cfg.PendingBetTTL, cfg.UnconfirmedGrace)
	statsService := service.NewStatsService(uowFactory)
	log.Println("Services initialized successfully")

	// Start the metrics endpoint
	m := metrics.New()
	metricsServer := m.StartServer(cfg.MetricsAddr, func(ctx context.Context) error {
		return db.Ping(ctx)
	})
	log.Printf("Metrics server listening on %s", cfg.MetricsAddr)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:     cfg.DiscordToken,
		GuildID:   cfg.DiscordGuildID,
		EmojiWon:  cfg.EmojiWon,
		EmojiLost: cfg.EmojiLost,
		EmojiPush: cfg.EmojiPush,

		AnnounceChannelID: cfg.AnnounceChannelID,
	}
	discordBot, err := bot.New(botConfig, betService, resolutionService, statsService, cleanupService, eventBus, m)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start the periodic expiry sweep
	stopCleanup := discordBot.StartCleanupWorker(cfg.SweepInterval)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")
	stopCleanup()

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
