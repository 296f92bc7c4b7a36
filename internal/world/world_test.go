package world

import (
	"encoding/json"
	"testing"
)

func TestCoordJSONIsPair(t *testing.T) {
	b, err := json.Marshal(Location{Coord: Coord{X: 7, Y: 7}, Name: "Square"})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(b) != `{"coord":[7,7],"name":"Square"}` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var loc Location
	if err := json.Unmarshal(b, &loc); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if loc.Coord != (Coord{X: 7, Y: 7}) || loc.Name != "Square" {
		t.Fatalf("round trip mismatch: %+v", loc)
	}

	if err := json.Unmarshal([]byte(`{"coord":"7,7"}`), &loc); err == nil {
		t.Fatal("expected error for malformed coord")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Coord{X: 0, Y: 0}, Coord{X: 3, Y: -5}); d != 5 {
		t.Errorf("Distance = %d, want 5", d)
	}
	for _, n := range (Coord{X: 2, Y: 2}).Neighbors() {
		if Distance(n, Coord{X: 2, Y: 2}) != 1 {
			t.Errorf("neighbor %v not adjacent", n)
		}
	}
}

func TestAmbienceDeterministicAndBounded(t *testing.T) {
	cfg := DefaultAmbienceConfig()
	a := NewAmbience(cfg)
	b := NewAmbience(cfg)

	for x := -10; x <= 10; x += 3 {
		for y := -10; y <= 10; y += 3 {
			c := Coord{X: x, Y: y}
			va, vb := a.At(c), b.At(c)
			if va != vb {
				t.Fatalf("ambience not deterministic at %v: %f vs %f", c, va, vb)
			}
			if va < cfg.Min || va > cfg.Max {
				t.Fatalf("ambience out of range at %v: %f", c, va)
			}
		}
	}

	var flat *Ambience
	if flat.At(Coord{}) != 1.0 {
		t.Error("nil ambience should be flat")
	}
}
