package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hearsay/internal/engine"
)

// Loop advances a World on a wall-clock ticker. The engine itself never
// sees wall time; each tick is one Update(Delta).
type Loop struct {
	World     *World
	Tick      uint64        // Ticks run so far (monotonic)
	Speed     float64       // Multiplier: 1.0 = one tick per Interval, 0 = paused
	Interval  time.Duration // Base tick interval
	Delta     float64       // Engine time per tick
	SaveEvery uint64        // Ticks between saves; 0 disables

	OnTick func(tick uint64, raised []engine.EmergentEvent)
	OnSave func(ctx context.Context, tick uint64) error
}

// NewLoop creates a loop with one engine time unit per second.
func NewLoop(w *World) *Loop {
	return &Loop{
		World:    w,
		Speed:    1.0,
		Interval: time.Second,
		Delta:    1.0,
	}
}

// Run drives the world until ctx is cancelled, then saves once more.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("tick loop started", "tick", l.Tick, "interval", l.Interval, "delta", l.Delta)

	for {
		if l.Speed <= 0 {
			// Paused; check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		if err := l.step(ctx); err != nil {
			slog.Error("save failed", "tick", l.Tick, "error", err)
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		target := time.Duration(float64(l.Interval) / l.Speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
	}

	slog.Info("tick loop stopped", "tick", l.Tick)
	if l.OnSave != nil {
		// The run context is gone; the final save gets its own deadline.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.OnSave(saveCtx, l.Tick); err != nil {
			return fmt.Errorf("final save: %w", err)
		}
	}
	return nil
}

// step advances the world by one tick.
func (l *Loop) step(ctx context.Context) error {
	l.Tick++
	raised := l.World.Advance(l.Delta)
	if l.OnTick != nil {
		l.OnTick(l.Tick, raised)
	}
	if l.SaveEvery > 0 && l.Tick%l.SaveEvery == 0 && l.OnSave != nil {
		return l.OnSave(ctx, l.Tick)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SimTime renders an engine clock reading, counting one time unit as one
// hour, e.g. "Day 3, 14:30".
func SimTime(now float64) string {
	if now < 0 {
		now = 0
	}
	totalMinutes := uint64(now * 60)
	minutes := totalMinutes % 60
	totalHours := totalMinutes / 60
	hours := totalHours % 24
	days := totalHours/24 + 1
	return fmt.Sprintf("Day %d, %d:%02d", days, hours, minutes)
}
