package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/hearsay/internal/config"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/logging"
	"github.com/talgya/hearsay/internal/persistence"
)

// loadConfig reads the config named by --config and applies --log-level,
// then installs the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logger, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore opens the configured database, creating the directory of a
// sqlite file if needed.
func openStore(ctx context.Context, cfg *config.Config) (*persistence.DB, error) {
	if cfg.Store.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.Store.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
	}
	return persistence.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
}

// loadWorld restores the newest snapshot, or starts a fresh world seeded
// from the roster when the store is empty. It returns the tick to resume at.
func loadWorld(ctx context.Context, cfg *config.Config, db *persistence.DB, logger *slog.Logger) (*engine.Engine, uint64, error) {
	snap, info, err := db.LatestSnapshot(ctx)
	switch {
	case err == nil:
		e, err := engine.Restore(snap, engine.Options{Logger: logger})
		if err != nil {
			return nil, 0, err
		}
		logger.Info("world loaded", "snapshot", info.ID, "tick", info.Tick, "npcs", info.NPCs)
		return e, uint64(info.Tick), nil
	case !errors.Is(err, persistence.ErrNoSnapshot):
		return nil, 0, err
	}

	opts := cfg.EngineOptions()
	opts.Logger = logger
	e := engine.New(opts)
	if cfg.Roster != "" {
		roster, err := config.LoadRoster(cfg.Roster)
		if err != nil {
			return nil, 0, err
		}
		if err := roster.Apply(e); err != nil {
			return nil, 0, err
		}
	}
	logger.Info("fresh world created", "seed", cfg.Seed, "npcs", len(e.NPCs()))
	return e, 0, nil
}
