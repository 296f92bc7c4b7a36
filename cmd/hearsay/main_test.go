package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/persistence"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("hearsay %s: %v\n%s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if got := execute(t, "version"); !strings.Contains(got, "hearsay version "+version) {
		t.Errorf("version output = %q", got)
	}
}

func TestDemoTellsTheWholeStory(t *testing.T) {
	got := execute(t, "demo", "--seed", "7")
	for _, want := range []string{
		"== A theft at the Rusty Tankard ==",
		"marta    remembers",
		"the old graveyard feels ominous",
		"3 deaths",
		"old_wen  believes it at",
		"pip regards elise as close_friend",
		"[conflict] pip confronts elise",
		"7 NPCs",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("demo output missing %q:\n%s", want, got)
		}
	}
}

func TestDemoReplaysFromSeed(t *testing.T) {
	a := execute(t, "demo", "--seed", "3", "--hops", "4")
	b := execute(t, "demo", "--seed", "3", "--hops", "4")
	if a != b {
		t.Error("same seed produced different demos")
	}
}

func TestDemoWithCrowd(t *testing.T) {
	if got := execute(t, "demo", "--crowd", "5"); !strings.Contains(got, "12 NPCs") {
		t.Errorf("demo with crowd:\n%s", got)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "world.db")
	cfgPath := filepath.Join(dir, "hearsay.yaml")
	yaml := "log_level: error\nstore:\n  driver: sqlite\n  dsn: " + dsn + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := execute(t, "inspect", "--config", cfgPath); !strings.Contains(got, "no saved world yet") {
		t.Fatalf("empty store output = %q", got)
	}

	ctx := context.Background()
	db, err := persistence.Open(ctx, "sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	e := engine.New(engine.DefaultOptions(1))
	if _, err := e.RegisterNPC("marta", agents.TypeBartender, nil); err != nil {
		t.Fatal(err)
	}
	e.PlayerSpreadsRumor("marta", "the well is poisoned", 0.9)
	if err := db.SaveWorldState(ctx, 1200, e.Snapshot(), 3); err != nil {
		t.Fatal(err)
	}
	db.Close()

	got := execute(t, "inspect", "--config", cfgPath)
	for _, want := range []string{"snapshot 1, tick 1,200", "marta", "bartender", "1 memory,", "remembers most:", `"the well is poisoned"`} {
		if !strings.Contains(got, want) {
			t.Errorf("inspect output missing %q:\n%s", want, got)
		}
	}
}
