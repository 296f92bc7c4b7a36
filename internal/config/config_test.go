package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/social"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Store != def.Store || cfg.Loop != def.Loop {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, "hearsay.yaml", `
seed: 7
log_level: debug
loop:
  interval: 250ms
  delta: 0.5
tuning:
  memory:
    share_threshold: 0.55
  rumor:
    triggers:
      drunk: 0.75
  tile:
    moods:
      tense_crime: 0.6
  behavior:
    dialogue:
      friendly_trusts: 0.45
`)
	t.Setenv("HEARSAY_PORT", "9090")
	t.Setenv("HEARSAY_DB_DRIVER", "postgres")
	t.Setenv("HEARSAY_DB_DSN", "postgres://localhost/hearsay?sslmode=disable")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 || cfg.LogLevel != "debug" {
		t.Errorf("seed/level = %d/%s", cfg.Seed, cfg.LogLevel)
	}
	if cfg.Loop.Interval != 250*time.Millisecond || cfg.Loop.Delta != 0.5 {
		t.Errorf("loop = %+v", cfg.Loop)
	}
	if cfg.HTTP.Port != 9090 || cfg.Store.Driver != "postgres" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.HTTP, cfg.Store)
	}
	if got := cfg.Tuning.Memory.ShareThreshold; got != 0.55 {
		t.Errorf("share threshold = %v, want 0.55", got)
	}
	if got := cfg.Tuning.Rumor.Triggers.Drunk; got != 0.75 {
		t.Errorf("drunk chance = %v, want 0.75", got)
	}
	if got := cfg.Tuning.Tile.Moods.TenseCrime; got != 0.6 {
		t.Errorf("tense crime cut-off = %v, want 0.6", got)
	}
	if got := cfg.Tuning.Behavior.Dialogue.FriendlyTrusts; got != 0.45 {
		t.Errorf("friendly trust cut-off = %v, want 0.45", got)
	}
	// Untouched tuning keeps its defaults.
	if got, want := cfg.Tuning.Rumor.Triggers.Bribed, engine.DefaultTuning().Rumor.Triggers.Bribed; got != want {
		t.Errorf("bribed chance = %v, want %v", got, want)
	}
	if got, want := cfg.Tuning.Tile.Marks, engine.DefaultTuning().Tile.Marks; got != want {
		t.Errorf("tile marks = %+v, want %+v", got, want)
	}
	if opts := cfg.EngineOptions(); opts.Seed != 7 {
		t.Errorf("engine seed = %d", opts.Seed)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":   func(c *Config) { c.Store.Driver = "mongo" },
		"port":     func(c *Config) { c.HTTP.Port = 70000 },
		"level":    func(c *Config) { c.LogLevel = "loud" },
		"interval": func(c *Config) { c.Loop.Interval = 0 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: invalid config accepted", name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestBadEnvSeed(t *testing.T) {
	t.Setenv("HEARSAY_SEED", "many")
	if _, err := Load(""); err == nil {
		t.Error("non-numeric seed accepted")
	}
}

const village = `
npcs:
  - id: marta
    type: bartender
    allies: [tomas]
    relations:
      - to: tomas
        type: family
  - id: tomas
    type: guard
    traits:
      suspicious: 0.8
      loyal: 0.6
    enemies: [stranger]
  - id: drifter
    type: wanderer
`

func TestRosterApply(t *testing.T) {
	r, err := ParseRoster([]byte(village))
	if err != nil {
		t.Fatalf("ParseRoster: %v", err)
	}
	e := engine.New(engine.DefaultOptions(1))
	if err := r.Apply(e); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(e.NPCs()) != 3 {
		t.Fatalf("npcs = %d, want 3", len(e.NPCs()))
	}
	marta, _ := e.NPC("marta")
	if marta.Type != agents.TypeBartender || !marta.Bias.IsAlly("tomas") {
		t.Errorf("marta = %+v", marta.Bias)
	}
	tomas, _ := e.NPC("tomas")
	if tomas.Bias.Get(bias.Suspicious) != 0.8 || !tomas.Bias.IsEnemy("stranger") {
		t.Errorf("tomas = %+v", tomas.Bias)
	}
	// Traits the roster leaves out come from the guard archetype.
	if want, _ := agents.Archetype(agents.TypeGuard); tomas.Bias.Get(bias.Paranoid) != want[bias.Paranoid] || want[bias.Paranoid] == 0 {
		t.Errorf("tomas paranoid = %v, want the guard's %v", tomas.Bias.Get(bias.Paranoid), want[bias.Paranoid])
	}
	rel, ok := e.Relation("marta", "tomas")
	if !ok || rel.Type != social.Family {
		t.Errorf("marta → tomas = %+v, %v", rel, ok)
	}
}

func TestRosterCrowd(t *testing.T) {
	r, err := ParseRoster([]byte(village + "crowd: 4\n"))
	if err != nil {
		t.Fatalf("ParseRoster: %v", err)
	}
	e := engine.New(engine.DefaultOptions(2))
	if err := r.Apply(e); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := len(e.NPCs()); got != 7 {
		t.Errorf("npcs = %d, want 3 listed + 4 generated", got)
	}
	for _, st := range e.NPCs() {
		if st.Bias == nil || st.Bias.NPC != st.ID {
			t.Errorf("%s has bias %+v", st.ID, st.Bias)
		}
	}
}

func TestRosterErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type":  "npcs:\n  - id: a\n    type: dragon\n",
		"duplicate":     "npcs:\n  - id: a\n    type: guard\n  - id: a\n    type: guard\n",
		"missing id":    "npcs:\n  - type: guard\n",
		"unknown trait": "npcs:\n  - id: a\n    type: guard\n    traits: {brave: 0.5}\n",
		"trait range":   "npcs:\n  - id: a\n    type: guard\n    traits: {loyal: 1.5}\n",
		"dangling":      "npcs:\n  - id: a\n    type: guard\n    relations: [{to: ghost, type: family}]\n",
		"crowd":         "crowd: -1\n",
	}
	for name, body := range cases {
		r, err := ParseRoster([]byte(body))
		if err == nil {
			err = r.Apply(engine.New(engine.DefaultOptions(1)))
		}
		if err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestLoadRosterFile(t *testing.T) {
	path := writeFile(t, "roster.yaml", village)
	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(r.NPCs) != 3 {
		t.Errorf("npcs = %d", len(r.NPCs))
	}
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("missing roster accepted")
	}
}
