// Package config loads bmboard's TOML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Mode    string        `toml:"mode"`
	Storage StorageConfig `toml:"storage"`
	Sync    SyncConfig    `toml:"sync"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	Check   CheckConfig   `toml:"check"`
}

// StorageConfig selects the durable local key/value store.
type StorageConfig struct {
	Driver string `toml:"driver"` // sqlite, json or memory
	Path   string `toml:"path"`
}

// SyncConfig points at the shared Redis used in sync mode.
type SyncConfig struct {
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

type StoreConfig struct {
	RebuildDebounce time.Duration `toml:"rebuild_debounce"`
	PersistDebounce time.Duration `toml:"persist_debounce"`
}

type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// CheckConfig tunes the dead-link check.
type CheckConfig struct {
	Concurrency    int           `toml:"concurrency"`
	Timeout        time.Duration `toml:"timeout"`
	ExcludeDomains []string      `toml:"exclude_domains"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Mode: "local",
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "~/.config/bmboard/cache.db",
		},
		Sync: SyncConfig{
			RedisURL: "redis://localhost:6379/0",
			Prefix:   "bmboard",
		},
		Store: StoreConfig{
			RebuildDebounce: 10 * time.Millisecond,
			PersistDebounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			File:       "~/.config/bmboard/bmboard.log",
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Check: CheckConfig{
			Concurrency: 10,
			Timeout:     10 * time.Second,
			ExcludeDomains: []string{
				"localhost",
				"127.0.0.1",
			},
		},
	}
}

// DefaultPath returns ~/.config/bmboard/config.toml
func DefaultPath() string {
	return expandHome("~/.config/bmboard/config.toml")
}

// Load reads the config at path over the defaults.
// An empty path uses DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	// Load from file if exists
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Expand home directories
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Log.File = expandHome(cfg.Log.File)

	return cfg, nil
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
