// Package config loads the daemon configuration from a TOML file and
// TAKD_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete takd configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Genesis  GenesisConfig  `toml:"genesis" mapstructure:"genesis"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`
}

// ServerConfig covers the RPC listener.
type ServerConfig struct {
	Addr string `toml:"addr" mapstructure:"addr"`
}

// DatabaseConfig covers the key-value store and transaction history.
type DatabaseConfig struct {
	// Backend is one of pebble, leveldb or memory.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the data directory for the key-value store.
	Path string `toml:"path" mapstructure:"path"`

	// Compression is lz4 or none.
	Compression string `toml:"compression" mapstructure:"compression"`

	// HistoryPath is the SQLite file for transaction history.
	// Empty disables history.
	HistoryPath string `toml:"history_path" mapstructure:"history_path"`
}

// GenesisConfig seeds a fresh ledger.
type GenesisConfig struct {
	// Owner receives the unallocated supply and administrative control.
	Owner string `toml:"owner" mapstructure:"owner"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:5005")
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data")
	v.SetDefault("database.compression", "lz4")
	v.SetDefault("database.history_path", "data/history.db")
	v.SetDefault("log.level", "info")
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TAKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	switch cfg.Database.Backend {
	case "pebble", "leveldb", "memory":
	default:
		return fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}

	switch cfg.Database.Compression {
	case "", "none", "lz4":
	default:
		return fmt.Errorf("unknown compression %q", cfg.Database.Compression)
	}

	if cfg.Database.Backend != "memory" && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required for backend %q", cfg.Database.Backend)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	return nil
}
