package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/hearsay/internal/api"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/host"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the world: tick loop, HTTP API and websocket stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("database opened", "driver", cfg.Store.Driver)

			eng, startTick, err := loadWorld(ctx, cfg, db, logger)
			if err != nil {
				return err
			}
			world := host.NewWorld(eng)

			loop := host.NewLoop(world)
			loop.Tick = startTick
			loop.Interval = cfg.Loop.Interval
			loop.Delta = cfg.Loop.Delta
			loop.SaveEvery = cfg.Loop.SaveEvery

			var tick atomic.Uint64
			tick.Store(startTick)
			loop.OnTick = func(t uint64, raised []engine.EmergentEvent) {
				tick.Store(t)
				if err := db.SaveEmergent(ctx, raised); err != nil {
					logger.Error("emergent log write failed", "error", err)
				}
			}
			loop.OnSave = func(ctx context.Context, t uint64) error {
				return db.SaveWorldState(ctx, t, world.Snapshot(), 10)
			}

			srv := &api.Server{
				World:    world,
				DB:       db,
				Port:     cfg.HTTP.Port,
				AdminKey: cfg.HTTP.AdminKey,
				Tick:     tick.Load,
			}

			// Either side failing stops the other.
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			var (
				wg   sync.WaitGroup
				errs [2]error
			)
			wg.Add(2)
			go func() {
				defer wg.Done()
				defer cancel()
				errs[0] = loop.Run(runCtx)
			}()
			go func() {
				defer wg.Done()
				defer cancel()
				errs[1] = srv.ListenAndServe(runCtx)
			}()
			wg.Wait()
			return errors.Join(errs[0], errs[1])
		},
	}
}
