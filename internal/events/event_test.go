package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/talgya/hearsay/internal/world"
)

func square() world.Location {
	return world.Location{Coord: world.Coord{X: 3, Y: 4}, Name: "Market Square"}
}

func TestWitnessRegistration(t *testing.T) {
	ev := New("e1", 10, square(), EventTheft, []string{"player", "merchant"}, 0.8)
	ev.AddWitness("bartender", WitnessDirect, 0.9, 2).
		AddWitness("guard", WitnessOverheard, 1.4, 12)

	if !ev.WasWitnessedBy("bartender") || ev.WasWitnessedBy("priest") {
		t.Fatal("witness membership wrong")
	}
	w, ok := ev.Witness("guard")
	if !ok {
		t.Fatal("guard should be a witness")
	}
	if w.Clarity != 1 {
		t.Errorf("clarity should clamp to 1, got %f", w.Clarity)
	}

	ev.AddWitness("guard", WitnessDirect, 0.5, 1)
	if len(ev.Witnesses) != 2 {
		t.Fatalf("re-adding a witness should replace, got %d witnesses", len(ev.Witnesses))
	}
	if w, _ := ev.Witness("guard"); w.Kind != WitnessDirect {
		t.Errorf("replacement kind = %v, want direct", w.Kind)
	}
}

func TestTagsIncludePlayerTag(t *testing.T) {
	ev := New("e2", 0, square(), EventViolence, []string{"player", "guard"}, 0.5)
	tags := ev.Tags()
	want := map[string]bool{"violence": true, "danger": true, "player_violent": true}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v", tags)
	}
	for _, tag := range tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}

	quiet := New("e3", 0, square(), EventViolence, []string{"guard"}, 0.5)
	for _, tag := range quiet.Tags() {
		if tag == "player_violent" {
			t.Error("player tag without player involvement")
		}
	}
}

func TestSeverity(t *testing.T) {
	ev := New("e4", 0, square(), EventViolence, nil, 0.4)
	if ev.Severity() != 0.4 {
		t.Errorf("severity should default to notability, got %f", ev.Severity())
	}
	ev.WithDetail("severity", "0.9")
	if ev.Severity() != 0.9 {
		t.Errorf("severity detail ignored, got %f", ev.Severity())
	}
	ev.WithDetail("severity", "very")
	if ev.Severity() != 0.4 {
		t.Errorf("unparseable severity should fall back, got %f", ev.Severity())
	}
}

func TestEnumJSON(t *testing.T) {
	ev := New("e5", 1, square(), EventDeath, []string{"miller"}, 1)
	ev.AddWitness("priest", WitnessIndirect, 0.6, 5)

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	var back WorldEvent
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if back.Type != EventDeath || back.Witnesses[0].Kind != WitnessIndirect {
		t.Fatalf("enum round trip failed: %+v", back)
	}

	bad := []byte(`{"id":"x","type":"earthquake"}`)
	if err := json.Unmarshal(bad, &back); !errors.Is(err, ErrUnknownName) {
		t.Fatalf("expected ErrUnknownName, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	ev := New("e6", 0, square(), EventTrade, []string{"a"}, 0.2).WithDetail("item", "salt")
	c := ev.Clone()
	c.Actors[0] = "b"
	c.Details["item"] = "pepper"
	if ev.Actors[0] != "a" || ev.Details["item"] != "salt" {
		t.Fatal("clone shares state with original")
	}
}
