package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/huddlehq/huddle/huddle"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	History  HistoryConfig  `mapstructure:"history"`
}

// DatabaseConfig stores the embedded libsql connection details used for
// durable history settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to the .db file
}

// HistoryConfig stores history access engine configurations.
type HistoryConfig struct {
	// Defaults applied to the invitation quick-pick affordances
	QuickLimitedMessages  int    `mapstructure:"quick_limited_messages"`   // Message ceiling for the "limited" quick pick
	QuickLimitedWindow    int    `mapstructure:"quick_limited_window"`     // Window value for the "limited" quick pick
	QuickLimitedUnit      string `mapstructure:"quick_limited_unit"`       // Window unit: "minutes", "hours", "days"
	RespectPrivateDefault bool   `mapstructure:"respect_private_segments"` // Default privacy handling for new settings

	// Preview cache settings
	CacheEnabled    bool `mapstructure:"cache_enabled"`     // Enable filtered-history preview caching
	CacheCapacity   int  `mapstructure:"cache_capacity"`    // LRU cache capacity
	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds"` // Cache entry TTL

	// Observability
	EnableMetrics bool `mapstructure:"enable_metrics"` // Enable detailed metrics collection
	EnableTracing bool `mapstructure:"enable_tracing"` // Enable structured logging/tracing
}

// Load reads configuration from file or environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Database defaults
	v.SetDefault("database.path", internal.DefaultDatabasePath)

	// History defaults
	v.SetDefault("history.quick_limited_messages", 50)
	v.SetDefault("history.quick_limited_window", 2)
	v.SetDefault("history.quick_limited_unit", "hours")
	v.SetDefault("history.respect_private_segments", true)

	v.SetDefault("history.cache_enabled", true)
	v.SetDefault("history.cache_capacity", 1000)
	v.SetDefault("history.cache_ttl_seconds", 300)

	v.SetDefault("history.enable_metrics", true)
	v.SetDefault("history.enable_tracing", true)

	v.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. history.cache_capacity becomes HISTORY_CACHE_CAPACITY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}
