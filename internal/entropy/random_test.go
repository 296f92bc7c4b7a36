package entropy

import "testing"

func TestSameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
	if a.NewID() != b.NewID() {
		t.Fatal("ids diverged for identical seeds")
	}
}

func TestRestoreContinuesStream(t *testing.T) {
	a := New(7)
	for i := 0; i < 13; i++ {
		a.Float64()
	}
	a.NewID()

	b := Restore(a.State())
	if b.State() != a.State() {
		t.Fatalf("restored state %+v, want %+v", b.State(), a.State())
	}
	for i := 0; i < 20; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatalf("restored stream diverged at draw %d", i)
		}
	}
}

func TestRanges(t *testing.T) {
	s := New(1)
	for i := 0; i < 500; i++ {
		if f := s.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %f", f)
		}
		if n := s.Intn(5); n < 0 || n >= 5 {
			t.Fatalf("Intn out of range: %d", n)
		}
	}
	if s.Intn(0) != 0 {
		t.Error("Intn(0) should be 0")
	}
	if Pick(s, []string{}) != "" {
		t.Error("Pick on empty slice should return zero value")
	}

	before := s.State().Draws
	s.Chance(0)
	if s.State().Draws != before+1 {
		t.Error("Chance should always consume one draw")
	}
}

func TestNewIDIsUUID(t *testing.T) {
	id := New(3).NewID()
	if len(id) != 36 || id[14] != '4' {
		t.Fatalf("expected v4 uuid, got %q", id)
	}
}
