package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings the CLI starts with.
type Config struct {
	// CatalogPath is the SQLite seed catalog. Empty means the built-in seed.
	CatalogPath string
	LogLevel    slog.Level
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	level, err := ParseLevel(withDefault(os.Getenv("LIBRARY_LOG_LEVEL"), "info"))
	if err != nil {
		return nil, err
	}
	return &Config{
		CatalogPath: strings.TrimSpace(os.Getenv("LIBRARY_CATALOG")),
		LogLevel:    level,
	}, nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("LIBRARY_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to stderr at level.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
