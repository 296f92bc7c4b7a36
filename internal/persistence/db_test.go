package persistence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/social"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "hearsay.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleWorld(t *testing.T) *engine.Engine {
	t.Helper()
	opts := engine.DefaultOptions(3)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.New(opts)
	for _, id := range []string{"marta", "tomas"} {
		if _, err := e.RegisterNPC(id, agents.TypeVillager, nil); err != nil {
			t.Fatalf("RegisterNPC: %v", err)
		}
	}
	e.PlayerSpreadsRumor("marta", "the well is poisoned", 0.8)
	e.Update(2)
	return e
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	if _, _, err := db.LatestSnapshot(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("empty store: err = %v, want ErrNoSnapshot", err)
	}

	e := sampleWorld(t)
	if err := db.SaveWorldState(ctx, 12, e.Snapshot(), 5); err != nil {
		t.Fatalf("SaveWorldState: %v", err)
	}
	snap, info, err := db.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if info.Tick != 12 || info.NPCs != 2 || info.Rumors != 1 || info.SimTime != 2 {
		t.Errorf("info = %+v", info)
	}
	restored, err := engine.Restore(snap, engine.Options{})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Stats() != e.Stats() {
		t.Errorf("stats = %+v, want %+v", restored.Stats(), e.Stats())
	}
	tick, err := db.LastTick(ctx)
	if err != nil || tick != 12 {
		t.Errorf("LastTick = %d, %v", tick, err)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	e := sampleWorld(t)
	for tick := uint64(1); tick <= 4; tick++ {
		if err := db.SaveWorldState(ctx, tick, e.Snapshot(), 2); err != nil {
			t.Fatalf("save %d: %v", tick, err)
		}
	}
	infos, err := db.Snapshots(ctx, 10)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(infos) != 2 || infos[0].Tick != 4 || infos[1].Tick != 3 {
		t.Errorf("kept = %+v, want ticks 4, 3", infos)
	}
}

func TestEmergentLog(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	events := []engine.EmergentEvent{
		{Time: 1, Emergent: social.Emergent{Kind: social.EmergentConflict, From: "a", To: "b", Description: "a confronts b"}},
		{Time: 2, Emergent: social.Emergent{Kind: social.EmergentReconciliation, From: "b", To: "a", Description: "b relents"}},
	}
	if err := db.SaveEmergent(ctx, events); err != nil {
		t.Fatalf("SaveEmergent: %v", err)
	}
	if err := db.SaveEmergent(ctx, nil); err != nil {
		t.Fatalf("SaveEmergent(nil): %v", err)
	}
	got, err := db.RecentEmergent(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEmergent: %v", err)
	}
	if len(got) != 2 || got[0].Kind != "reconciliation" || got[1].From != "a" {
		t.Errorf("log = %+v", got)
	}
}

func TestMetaUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	for _, v := range []string{"one", "two"} {
		if err := db.SaveMeta(ctx, "seed", v); err != nil {
			t.Fatalf("SaveMeta: %v", err)
		}
	}
	if v, err := db.GetMeta(ctx, "seed"); err != nil || v != "two" {
		t.Errorf("GetMeta = %q, %v", v, err)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mongo", "x"); err == nil {
		t.Error("unsupported driver accepted")
	}
}
