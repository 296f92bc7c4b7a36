// Package config loads process configuration: defaults, then an optional
// YAML file, then HEARSAY_* environment variables (a .env file in the
// working directory is read first if present).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hearsay/internal/engine"
)

// Config is everything a hearsay process needs.
type Config struct {
	Seed     int64         `yaml:"seed"`
	LogLevel string        `yaml:"log_level"`
	Store    StoreConfig   `yaml:"store"`
	HTTP     HTTPConfig    `yaml:"http"`
	Loop     LoopConfig    `yaml:"loop"`
	Roster   string        `yaml:"roster"` // Optional roster file seeding a fresh world
	Tuning   engine.Tuning `yaml:"tuning"`
}

// StoreConfig selects the snapshot database.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key"` // Empty disables admin endpoints
}

// LoopConfig paces the tick loop.
type LoopConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Delta     float64       `yaml:"delta"`      // Engine time per tick
	SaveEvery uint64        `yaml:"save_every"` // Ticks between snapshots; 0 disables
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Seed:     42,
		LogLevel: "info",
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "data/hearsay.db",
		},
		HTTP: HTTPConfig{Port: 8080},
		Loop: LoopConfig{
			Interval:  time.Second,
			Delta:     1,
			SaveEvery: 600,
		},
		Tuning: engine.DefaultTuning(),
	}
}

// Load reads defaults, then path (if it exists), then the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	// .env is optional.
	_ = godotenv.Load()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies HEARSAY_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HEARSAY_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("HEARSAY_SEED: %w", err)
		}
		cfg.Seed = n
	}
	if v := os.Getenv("HEARSAY_DB_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("HEARSAY_DB_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("HEARSAY_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HEARSAY_PORT: %w", err)
		}
		cfg.HTTP.Port = n
	}
	if v := os.Getenv("HEARSAY_ADMIN_KEY"); v != "" {
		cfg.HTTP.AdminKey = v
	}
	if v := os.Getenv("HEARSAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid store driver %q (valid: sqlite, postgres)", c.Store.Driver)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTP.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.Loop.Interval <= 0 {
		return fmt.Errorf("loop interval must be positive, got %v", c.Loop.Interval)
	}
	if c.Loop.Delta < 0 {
		return fmt.Errorf("loop delta must be non-negative, got %v", c.Loop.Delta)
	}
	return nil
}

// EngineOptions builds engine options from the config.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{Seed: c.Seed, Tuning: c.Tuning}
}
