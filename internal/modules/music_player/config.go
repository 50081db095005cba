package music_player

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkHost     string `env:"LAVALINK_HOST,notEmpty"`
	LavalinkPort     int    `env:"LAVALINK_PORT,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`

	// IdleTimeout is how long the bot stays in a channel without listeners.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"15s"`
}

// LavalinkAddress returns the node address as host:port.
func (c *Config) LavalinkAddress() string {
	return net.JoinHostPort(c.LavalinkHost, strconv.Itoa(c.LavalinkPort))
}

// parseConfig reads the module configuration from the environment.
func parseConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.LavalinkPort <= 0 || cfg.LavalinkPort > 65535 {
		return nil, fmt.Errorf("invalid LAVALINK_PORT: %d", cfg.LavalinkPort)
	}
	if cfg.IdleTimeout <= 0 {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %s", cfg.IdleTimeout)
	}

	return cfg, nil
}
