package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Game source configuration
	GameSourceURL    string
	GameSourceAPIKey string

	// Bet lifecycle settings
	PendingBetTTL    time.Duration // how long a pending bet may sit unresolved
	UnconfirmedGrace time.Duration // how long an unposted slip may linger
	SweepInterval    time.Duration // how often the cleanup sweep runs

	// Resolution marker emojis
	EmojiWon  string
	EmojiLost string
	EmojiPush string

	// Optional channel for milestone announcements
	AnnounceChannelID string

	// Metrics
	MetricsAddr string

	// Environment
	Environment string // "development", "production" or "test"
}

// Load reads configuration from environment variables. Required values are
// only enforced outside the test environment.
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		GameSourceURL:    os.Getenv("GAME_SOURCE_URL"),
		GameSourceAPIKey: os.Getenv("GAME_SOURCE_API_KEY"),

		PendingBetTTL:    24 * time.Hour,
		UnconfirmedGrace: 5 * time.Minute,
		SweepInterval:    1 * time.Minute,

		EmojiWon:  "✅",
		EmojiLost: "❌",
		EmojiPush: "🟨",

		AnnounceChannelID: os.Getenv("ANNOUNCE_CHANNEL_ID"),

		MetricsAddr: ":9090",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if v := os.Getenv("PENDING_BET_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.PendingBetTTL = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("UNCONFIRMED_GRACE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.UnconfirmedGrace = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.SweepInterval = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("EMOJI_WON"); v != "" {
		cfg.EmojiWon = v
	}
	if v := os.Getenv("EMOJI_LOST"); v != "" {
		cfg.EmojiLost = v
	}
	if v := os.Getenv("EMOJI_PUSH"); v != "" {
		cfg.EmojiPush = v
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Environment != "test" {
		if cfg.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return cfg, nil
}
