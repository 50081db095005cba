package bot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// OwnerID receives unhandled error reports by direct message. Optional.
	OwnerID string `env:"OWNER_ID"`

	// TestGuildID restricts command registration to a single guild for faster iteration.
	TestGuildID string `env:"TEST_GUILD_ID"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadDotEnv loads variables from a .env file in the working directory, if one exists.
// Variables already present in the environment are not overridden.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing or IDs are malformed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.OwnerID != "" {
		if _, err := snowflake.Parse(cfg.OwnerID); err != nil {
			return nil, fmt.Errorf("invalid OWNER_ID: %w", err)
		}
	}
	if cfg.TestGuildID != "" {
		if _, err := snowflake.Parse(cfg.TestGuildID); err != nil {
			return nil, fmt.Errorf("invalid TEST_GUILD_ID: %w", err)
		}
	}

	return cfg, nil
}
