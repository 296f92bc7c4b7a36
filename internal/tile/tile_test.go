package tile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/world"
)

func at(x, y int, name string) world.Location {
	return world.Location{Coord: world.Coord{X: x, Y: y}, Name: name}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestThreeDeathsMakeOminous(t *testing.T) {
	a := NewAtlas(DefaultConfig(), nil)
	loc := at(7, 7, "the old bridge")
	for i, id := range []string{"d1", "d2", "d3"} {
		a.Record(events.New(id, float64(i), loc, events.EventDeath, []string{"victim"}, 0.9))
	}

	tm, ok := a.At(world.Coord{X: 7, Y: 7})
	if !ok {
		t.Fatal("tile (7,7) missing")
	}
	if tm.Deaths != 3 {
		t.Errorf("death count = %d, want 3", tm.Deaths)
	}
	if tm.Mood != MoodOminous {
		t.Errorf("mood = %s, want ominous", tm.Mood)
	}
	dangerous := a.Dangerous()
	if len(dangerous) != 1 || dangerous[0].Location.Coord != loc.Coord {
		t.Fatalf("dangerous = %v", dangerous)
	}
	if len(tm.History) != 3 || tm.History[2] != "d3" {
		t.Errorf("history = %v", tm.History)
	}
}

func TestMoodRules(t *testing.T) {
	cases := []struct {
		name string
		tile Memory
		want Mood
	}{
		{"high danger", Memory{Danger: 0.7}, MoodOminous},
		{"death and danger", Memory{Deaths: 1, Danger: 0.5}, MoodOminous},
		{"death long ago", Memory{Deaths: 1, Danger: 0.1, Activity: 0.2}, MoodNeutral},
		{"crime", Memory{Crime: 0.4, Activity: 0.9}, MoodTense},
		{"busy", Memory{Activity: 0.6}, MoodBusy},
		{"empty", Memory{}, MoodQuiet},
		{"mysterious", Memory{Activity: 0.2, Curiosity: 0.3}, MoodMysterious},
		{"neutral", Memory{Activity: 0.2}, MoodNeutral},
	}
	rules := DefaultConfig().Moods
	for _, tc := range cases {
		if got := tc.tile.deriveMood(rules); got != tc.want {
			t.Errorf("%s: mood = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestEventMetrics(t *testing.T) {
	cfg := DefaultConfig()
	tm := New(at(0, 0, "market"), 0.01)

	tm.AddEvent(events.New("t", 0, at(0, 0, "market"), events.EventTheft, nil, 0.8), cfg)
	if tm.Danger != 0 || tm.Crime == 0 {
		t.Fatalf("theft should raise crime only: %+v", tm)
	}

	tm.AddEvent(events.New("v", 1, at(0, 0, "market"), events.EventViolence, nil, 0.4).WithDetail("severity", "1.0"), cfg)
	if tm.Danger < 0.3-1e-9 || tm.Avoidance < 0.25-1e-9 {
		t.Fatalf("violence with severity 1 should use severity over notability: %+v", tm)
	}

	tm.AddEvent(events.New("c", 2, at(0, 0, "market"), events.EventConversation, nil, 0.1), cfg)
	if tm.RumorDensity == 0 {
		t.Fatal("conversation should raise rumor density")
	}
	for _, tag := range []string{"crime", "theft", "violence", "conversation"} {
		if !tm.Tags.Has(tag) {
			t.Errorf("missing tag %q", tag)
		}
	}
}

func TestTunedThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Marks.TheftCrimeSeverity = 0.5
	cfg.Moods.TenseCrime = 0.9
	cfg.Hints.CrimeRidden = 0.3

	tm := New(at(0, 0, "market"), 0.01)
	tm.AddEvent(events.New("t", 0, at(0, 0, "market"), events.EventTheft, nil, 0.8).WithDetail("severity", "1.0"), cfg)
	if !near(tm.Crime, 0.5) {
		t.Errorf("crime = %f, want 0.5 from the tuned theft mark", tm.Crime)
	}
	if tm.Mood == MoodTense {
		t.Error("crime below the tuned tense cut-off still reads tense")
	}
	var ridden bool
	for _, h := range tm.Atmosphere(cfg).Hints {
		ridden = ridden || h == "crime_ridden"
	}
	if !ridden {
		t.Errorf("hints = %v, want crime_ridden at the lowered cut-off", tm.Atmosphere(cfg).Hints)
	}
}

func TestHistoryBounded(t *testing.T) {
	cfg := DefaultConfig()
	tm := New(at(1, 1, ""), 0.01)
	for i := 0; i < cfg.HistoryLimit+10; i++ {
		tm.AddEvent(events.New(string(rune('a'+i%26)), float64(i), at(1, 1, ""), events.EventTrade, nil, 0.1), cfg)
	}
	if len(tm.History) != cfg.HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(tm.History), cfg.HistoryLimit)
	}
}

func TestDecay(t *testing.T) {
	tm := &Memory{Danger: 0.5, Crime: 0.5, Avoidance: 0.5, RumorDensity: 0.5, Activity: 0.5, DecayRate: 0.1}
	cfg := DefaultConfig()
	tm.Decay(1, cfg)
	if !near(tm.Danger, 0.4) {
		t.Errorf("danger = %f, want 0.4", tm.Danger)
	}
	if !near(tm.Avoidance, 0.45) || !near(tm.RumorDensity, 0.45) {
		t.Errorf("avoidance/rumor density should decay at half rate: %f %f", tm.Avoidance, tm.RumorDensity)
	}
	tm.Decay(100, cfg)
	if tm.Danger != 0 || tm.Avoidance != 0 {
		t.Errorf("metrics should floor at zero: %+v", tm)
	}
	if tm.Mood != MoodQuiet {
		t.Errorf("faded tile mood = %s, want quiet", tm.Mood)
	}
	before := *tm
	tm.Decay(-5, cfg)
	if tm.Danger != before.Danger || tm.Mood != before.Mood {
		t.Error("negative dt should be a no-op")
	}
}

func TestShouldNPCAvoid(t *testing.T) {
	cfg := DefaultConfig()
	tm := &Memory{Avoidance: 0.8}
	if !tm.ShouldNPCAvoid(0.6, cfg) {
		t.Error("0.8 × 0.6 > 0.4 should avoid")
	}
	if tm.ShouldNPCAvoid(0.5, cfg) {
		t.Error("0.8 × 0.5 = 0.4 should not avoid")
	}
}

func TestAmbienceScalesDecay(t *testing.T) {
	amb := world.NewAmbience(world.DefaultAmbienceConfig())
	a := NewAtlas(DefaultConfig(), amb)
	ev := events.New("e", 0, at(3, 9, "well"), events.EventTrade, nil, 0.5)
	tm := a.Record(ev)
	want := DefaultConfig().BaseDecayRate * amb.At(world.Coord{X: 3, Y: 9})
	if tm.DecayRate != want {
		t.Fatalf("decay rate = %f, want %f", tm.DecayRate, want)
	}
	if tm.DecayRate < 0.0075-1e-12 || tm.DecayRate > 0.0125+1e-12 {
		t.Fatalf("decay rate %f outside ambience range", tm.DecayRate)
	}
}

func TestAtlasJSON(t *testing.T) {
	a := NewAtlas(DefaultConfig(), nil)
	a.Record(events.New("e1", 0, at(2, 3, "smithy"), events.EventViolence, nil, 0.6))
	a.NoteRumor(at(5, 1, "tavern"))

	raw, err := json.Marshal(a.All())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back []*Memory
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restored := NewAtlas(DefaultConfig(), nil)
	restored.Load(back)
	if restored.Len() != 2 {
		t.Fatalf("restored %d tiles", restored.Len())
	}
	orig, _ := a.At(world.Coord{X: 2, Y: 3})
	got, _ := restored.At(world.Coord{X: 2, Y: 3})
	if got.Danger != orig.Danger || got.Mood != orig.Mood || got.Location.Name != "smithy" {
		t.Fatalf("restored tile differs: %+v vs %+v", got, orig)
	}
}
