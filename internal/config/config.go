// Package config loads server settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/persist"
)

// Config holds the server settings.
type Config struct {
	Port     int
	DBPath   string
	LogLevel string

	// PrintDir receives one PDF per bill printed by the hand-off batch.
	// Empty disables printing; bills are then only logged.
	PrintDir   string
	PrintPause time.Duration

	// SaveBudget is the largest serialised bill, in bytes, stored with
	// its attachment payloads.
	SaveBudget int
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		slog.Debug("No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv reads the settings from the environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:   getEnv("DB_PATH", "./data/fdbms.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		PrintDir: os.Getenv("PRINT_DIR"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.PrintPause, err = time.ParseDuration(getEnv("PRINT_PAUSE", lifecycle.DefaultPause.String())); err != nil {
		return nil, fmt.Errorf("invalid PRINT_PAUSE: %w", err)
	}
	if cfg.SaveBudget, err = strconv.Atoi(getEnv("SAVE_BUDGET_BYTES", strconv.Itoa(persist.DefaultBudget))); err != nil {
		return nil, fmt.Errorf("invalid SAVE_BUDGET_BYTES: %w", err)
	}
	if cfg.PrintPause < 0 {
		return nil, fmt.Errorf("invalid PRINT_PAUSE: %s is negative", cfg.PrintPause)
	}
	if cfg.SaveBudget <= 0 {
		return nil, fmt.Errorf("invalid SAVE_BUDGET_BYTES: %d is not positive", cfg.SaveBudget)
	}
	return cfg, nil
}

// Addr is the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
