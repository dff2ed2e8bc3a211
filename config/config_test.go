package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LIBRARY_CATALOG", "")
	t.Setenv("LIBRARY_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LIBRARY_CATALOG", " data/catalog.db ")
	t.Setenv("LIBRARY_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/catalog.db", cfg.CatalogPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsUnknownLevel(t *testing.T) {
	t.Setenv("LIBRARY_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
