package host

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
)

func newWorld(t *testing.T) *World {
	t.Helper()
	opts := engine.DefaultOptions(1)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorld(engine.New(opts))
}

// feud registers two NPCs who have fallen out badly enough that the next
// update raises a conflict.
func feud(t *testing.T, w *World) {
	t.Helper()
	w.Write(func(e *engine.Engine) {
		for _, id := range []string{"smith", "miller"} {
			if _, err := e.RegisterNPC(id, agents.TypeVillager, nil); err != nil {
				t.Fatalf("RegisterNPC: %v", err)
			}
		}
		for i := 0; i < 5; i++ {
			e.SimulateInteraction("smith", "miller", rumor.TriggerThreatened, nil)
		}
	})
}

func TestAdvancePublishesEmergentEvents(t *testing.T) {
	w := newWorld(t)
	feud(t, w)
	ch, cancel := w.Subscribe(8)
	defer cancel()

	raised := w.Advance(1)
	if len(raised) == 0 {
		t.Fatal("no emergent events from a feud")
	}
	select {
	case ev := <-ch:
		if ev.Kind != social.EmergentConflict {
			t.Errorf("kind = %s, want conflict", ev.Kind)
		}
		if ev.Time != 1 {
			t.Errorf("time = %v, want 1", ev.Time)
		}
	default:
		t.Fatal("subscriber received nothing")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}
}

func TestLaggingSubscriberDoesNotBlock(t *testing.T) {
	w := newWorld(t)
	feud(t, w)
	_, cancel := w.Subscribe(1)
	defer cancel()
	for i := 0; i < 5; i++ {
		w.Advance(1)
	}
}

func TestLoopRunsAndSaves(t *testing.T) {
	w := newWorld(t)
	l := NewLoop(w)
	l.Interval = time.Millisecond
	l.Delta = 0.5
	l.SaveEvery = 2

	var saves atomic.Int32
	l.OnSave = func(ctx context.Context, tick uint64) error {
		saves.Add(1)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.OnTick = func(tick uint64, _ []engine.EmergentEvent) {
		if tick == 6 {
			cancel()
		}
	}

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if l.Tick < 6 {
		t.Errorf("ticks = %d, want at least 6", l.Tick)
	}
	var now float64
	w.Read(func(e *engine.Engine) { now = e.Now() })
	if now != float64(l.Tick)*0.5 {
		t.Errorf("engine clock = %v after %d ticks", now, l.Tick)
	}
	// Every second tick plus the final save.
	if got := saves.Load(); got < 4 {
		t.Errorf("saves = %d, want at least 4", got)
	}
}

func TestSimTime(t *testing.T) {
	cases := map[float64]string{
		0:    "Day 1, 0:00",
		14.5: "Day 1, 14:30",
		50:   "Day 3, 2:00",
		-3:   "Day 1, 0:00",
	}
	for in, want := range cases {
		if got := SimTime(in); got != want {
			t.Errorf("SimTime(%v) = %q, want %q", in, got, want)
		}
	}
}
