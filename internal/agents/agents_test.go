package agents

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/talgya/hearsay/internal/behavior"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/entropy"
	"github.com/talgya/hearsay/internal/memory"
)

func TestCapacities(t *testing.T) {
	want := map[NPCType]int{
		TypeBystander: 10, TypeVillager: 20, TypeGuard: 30, TypeMerchant: 35,
		TypeBartender: 40, TypePriest: 40, TypeNoble: 45, TypeInformant: 50,
		TypeCrimeBoss: 60, TypeWanderer: 25,
	}
	for typ, c := range want {
		if got := typ.Capacity(); got != c {
			t.Errorf("%s capacity = %d, want %d", typ, got, c)
		}
	}
}

func TestParseNPCType(t *testing.T) {
	for i := 0; i < NumNPCTypes; i++ {
		typ := NPCType(i)
		got, err := ParseNPCType(typ.String())
		if err != nil || got != typ {
			t.Errorf("round trip %s: %v %v", typ, got, err)
		}
	}
	if _, err := ParseNPCType("dragon"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestArchetypesAreValid(t *testing.T) {
	for typ := range archetypeTemplates {
		tr, ok := Archetype(typ)
		if !ok {
			t.Fatalf("%s: template missing", typ)
		}
		if err := tr.Validate(); err != nil {
			t.Errorf("%s: %v", typ, err)
		}
	}
	tr, _ := Archetype(TypeBartender)
	if tr[bias.Talkative] != 0.8 {
		t.Errorf("bartender talkative = %v", tr[bias.Talkative])
	}
	if _, ok := Archetype(TypeWanderer); ok {
		t.Error("wanderers should have no template")
	}
}

func TestSpawnerDeterministic(t *testing.T) {
	a, err := NewSpawner(entropy.New(99)).SpawnCrowd(12)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	b, _ := NewSpawner(entropy.New(99)).SpawnCrowd(12)
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatal("same seed produced different crowds")
	}

	seen := map[string]bool{}
	for _, st := range a {
		if seen[st.ID] {
			t.Fatalf("duplicate id %s", st.ID)
		}
		seen[st.ID] = true
		if st.Memories.Capacity != st.Type.Capacity() {
			t.Errorf("%s: bank capacity %d", st.ID, st.Memories.Capacity)
		}
		if err := st.Bias.Validate(); err != nil {
			t.Errorf("%s: %v", st.ID, err)
		}
	}
}

func TestWandererGetsRandomTraits(t *testing.T) {
	s := NewSpawner(entropy.New(5))
	b1, _ := s.BiasFor("w1", TypeWanderer)
	b2, _ := s.BiasFor("w2", TypeWanderer)
	if b1.Traits == b2.Traits {
		t.Fatal("two wanderers drew identical traits")
	}
	for _, v := range b1.Traits {
		if v < 0.1 || v >= 0.9 {
			t.Fatalf("random trait %v outside [0.1, 0.9)", v)
		}
	}
}

func TestStateMemoryViews(t *testing.T) {
	b, _ := bias.New("guard", bias.Traits{})
	st := NewState("guard", TypeGuard, b)
	st.Remember(&memory.Memory{ID: "a", Summary: "smith stole bread", Confidence: 0.4, Timestamp: 1, Tags: memory.NewTags("player_thief")})
	st.Remember(&memory.Memory{ID: "b", Summary: "quiet night", Confidence: 0.9, EmotionalWeight: 0.8, Timestamp: 2})

	recalled := st.Recall("smith", 0.2)
	if len(recalled) != 1 || recalled[0].Confidence < 0.6-1e-9 {
		t.Fatalf("recall = %+v", recalled)
	}
	if top := st.ImportantMemories(1); len(top) != 1 || top[0].ID != "b" {
		t.Fatalf("important = %+v", top)
	}
	if recent := st.RecentMemories(5); len(recent) != 2 || recent[0].ID != "b" {
		t.Fatalf("recent = %+v", recent)
	}

	st.RefreshBehavior(2, behavior.DefaultConfig())
	if st.Behavior.Trusts >= 0 || st.LastUpdate != 2 {
		t.Fatalf("behavior after theft memory = %+v", st.Behavior)
	}
	h := st.Hints(behavior.DefaultConfig())
	if h.NPC != "guard" {
		t.Fatalf("hints npc = %s", h.NPC)
	}

	c := st.Clone()
	c.Memories.Memories[0].Confidence = 0
	if st.Memories.Memories[0].Confidence == 0 {
		t.Fatal("clone shares memories")
	}
}
