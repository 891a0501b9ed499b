package config

import (
	"errors"
	"fmt"
	"os"
)

// Config holds the application configuration.
type Config struct {
	LogLevel    string
	SQLitePath  string
	PostgresDSN string
}

// Load reads configuration from environment variables. The snapshot
// export targets are optional; a run with neither set writes CSV to
// stdout only.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:    os.Getenv("LOG_LEVEL"),
		SQLitePath:  os.Getenv("SNAPSHOT_SQLITE"),
		PostgresDSN: os.Getenv("SNAPSHOT_DSN"),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q: expected debug, info, warn or error", c.LogLevel)
	}

	if c.SQLitePath != "" && c.PostgresDSN != "" && c.SQLitePath == c.PostgresDSN {
		return errors.New("SNAPSHOT_SQLITE and SNAPSHOT_DSN point at the same target")
	}

	return nil
}
