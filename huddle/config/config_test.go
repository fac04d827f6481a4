package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.History.QuickLimitedMessages)
	assert.Equal(t, 2, cfg.History.QuickLimitedWindow)
	assert.Equal(t, "hours", cfg.History.QuickLimitedUnit)
	assert.True(t, cfg.History.RespectPrivateDefault)

	assert.True(t, cfg.History.CacheEnabled)
	assert.Equal(t, 1000, cfg.History.CacheCapacity)
	assert.Equal(t, 300, cfg.History.CacheTTLSeconds)

	assert.True(t, cfg.History.EnableMetrics)
	assert.True(t, cfg.History.EnableTracing)

	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
database:
  path: /tmp/huddle-test.db
history:
  quick_limited_messages: 25
  quick_limited_window: 30
  quick_limited_unit: minutes
  cache_enabled: false
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/huddle-test.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.History.QuickLimitedMessages)
	assert.Equal(t, 30, cfg.History.QuickLimitedWindow)
	assert.Equal(t, "minutes", cfg.History.QuickLimitedUnit)
	assert.False(t, cfg.History.CacheEnabled)

	// Unspecified keys keep their defaults
	assert.Equal(t, 1000, cfg.History.CacheCapacity)
	assert.True(t, cfg.History.RespectPrivateDefault)
}
