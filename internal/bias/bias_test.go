package bias

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/talgya/hearsay/internal/entropy"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/world"
)

func traits(kv map[Trait]float64) Traits {
	var tr Traits
	for k, v := range kv {
		tr[k] = v
	}
	return tr
}

func mustBias(t *testing.T, npc string, kv map[Trait]float64) *Bias {
	t.Helper()
	b, err := New(npc, traits(kv))
	if err != nil {
		t.Fatalf("New(%s) err: %v", npc, err)
	}
	return b
}

func tavern() world.Location {
	return world.Location{Coord: world.Coord{X: 2, Y: 5}, Name: "the Rusty Tankard"}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	_, err := New("x", traits(map[Trait]float64{Fearful: 1.2}))
	if !errors.Is(err, ErrTraitRange) {
		t.Fatalf("expected ErrTraitRange, got %v", err)
	}
	b := mustBias(t, "x", nil)
	if err := b.Set(Greedy, -0.1); !errors.Is(err, ErrTraitRange) {
		t.Fatalf("Set should reject -0.1, got %v", err)
	}
	if err := b.Set(Greedy, 0.4); err != nil || b.Get(Greedy) != 0.4 {
		t.Fatalf("Set valid value failed: %v", err)
	}
}

func TestTraitsJSONMapping(t *testing.T) {
	b := mustBias(t, "bartender", map[Trait]float64{Talkative: 0.8, SelfPreserving: 0.3})
	raw, err := json.Marshal(b.Traits)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if !strings.Contains(string(raw), `"talkative":0.8`) || !strings.Contains(string(raw), `"self_preserving":0.3`) {
		t.Fatalf("traits not encoded by name: %s", raw)
	}
	var back Traits
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if back != b.Traits {
		t.Fatalf("round trip mismatch: %v vs %v", back, b.Traits)
	}
	if err := json.Unmarshal([]byte(`{"brave":0.5}`), &back); !errors.Is(err, ErrUnknownTrait) {
		t.Fatalf("expected ErrUnknownTrait, got %v", err)
	}
	if err := json.Unmarshal([]byte(`{"greedy":3}`), &back); !errors.Is(err, ErrTraitRange) {
		t.Fatalf("expected ErrTraitRange, got %v", err)
	}
}

func TestAllyEnemySets(t *testing.T) {
	b := mustBias(t, "guard", nil)
	b.AddAlly("smith")
	b.AddAlly("baker")
	b.AddAlly("smith")
	if len(b.Allies) != 2 || b.Allies[0] != "baker" {
		t.Fatalf("allies = %v", b.Allies)
	}
	b.AddEnemy("smith")
	if b.IsAlly("smith") || !b.IsEnemy("smith") {
		t.Fatal("AddEnemy should move smith from allies to enemies")
	}
	b.Forget("smith")
	if b.IsEnemy("smith") {
		t.Fatal("Forget should clear enemy")
	}
}

func TestCredenceOrdersTrust(t *testing.T) {
	trusting := mustBias(t, "a", map[Trait]float64{Trusting: 0.9})
	wary := mustBias(t, "b", map[Trait]float64{Trusting: 0.1, Suspicious: 0.8})
	if trusting.Credence() <= wary.Credence() {
		t.Fatalf("trusting credence %f should exceed wary %f", trusting.Credence(), wary.Credence())
	}
}

func TestDirectBeatsIndirect(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(1))
	b := mustBias(t, "npc", nil)
	ev := events.New("e", 0, tavern(), events.EventViolence, []string{"player"}, 0.6)

	direct := p.FormMemory(ev, b, events.Witness{NPC: "npc", Kind: events.WitnessDirect, Clarity: 0.8})
	indirect := p.FormMemory(ev, b, events.Witness{NPC: "npc", Kind: events.WitnessIndirect, Clarity: 0.8})
	overheard := p.FormMemory(ev, b, events.Witness{NPC: "npc", Kind: events.WitnessOverheard, Clarity: 0.8})

	if !(direct.Confidence > indirect.Confidence && indirect.Confidence > overheard.Confidence) {
		t.Fatalf("confidence order wrong: %f, %f, %f", direct.Confidence, indirect.Confidence, overheard.Confidence)
	}
	if !(direct.EmotionalWeight > indirect.EmotionalWeight) {
		t.Fatalf("direct weight %f should exceed indirect %f", direct.EmotionalWeight, indirect.EmotionalWeight)
	}
}

func TestBartenderSeesTheft(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(5))
	b := mustBias(t, "bartender", map[Trait]float64{Talkative: 0.8, Curious: 0.6})
	ev := events.New("theft-1", 3, tavern(), events.EventTheft, []string{"player", "merchant"}, 0.8)
	ev.AddWitness("bartender", events.WitnessDirect, 0.9, 1)

	w, _ := ev.Witness("bartender")
	m := p.FormMemory(ev, b, w)

	if m.Confidence < 0.8*w.Clarity {
		t.Fatalf("confidence %f below 0.8*clarity", m.Confidence)
	}
	for _, tag := range []string{"crime", "theft", "player_thief"} {
		if !m.Tags.Has(tag) {
			t.Errorf("missing tag %q in %v", tag, m.Tags)
		}
	}
	if m.Source != memory.SourceSelf || m.SourceEventID != "theft-1" {
		t.Errorf("provenance wrong: %+v", m)
	}
	if m.Summary != "player stole something at the Rusty Tankard." {
		t.Errorf("summary = %q", m.Summary)
	}
}

func TestInterpretationPriority(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(1))
	ev := events.New("e", 0, tavern(), events.EventTheft, []string{"smith"}, 0.5)

	both := mustBias(t, "a", map[Trait]float64{Greedy: 0.9, Cynical: 0.9})
	if got := p.Interpret(ev, both); !strings.Contains(got, "Everyone steals") {
		t.Errorf("cynical should win over greedy, got %q", got)
	}

	greedy := mustBias(t, "b", map[Trait]float64{Greedy: 0.9})
	if got := p.Interpret(ev, greedy); !strings.Contains(got, "valuables") {
		t.Errorf("greedy template expected, got %q", got)
	}

	loyal := mustBias(t, "c", map[Trait]float64{Loyal: 0.9})
	loyal.AddAlly("smith")
	if got := p.Interpret(ev, loyal); got != "smith only borrowed something at the Rusty Tankard. They'll give it back." {
		t.Errorf("loyal template expected, got %q", got)
	}

	// Greedy has no violence template, so the next trait is neutral.
	fight := events.New("f", 0, tavern(), events.EventViolence, []string{"smith", "miller"}, 0.5)
	if got := p.Interpret(fight, greedy); got != "smith and miller got into a fight at the Rusty Tankard." {
		t.Errorf("neutral fallback expected, got %q", got)
	}

	cfg := DefaultConfig()
	cfg.InterpretationOrder = []Trait{Greedy, Cynical}
	reordered := NewProcessor(cfg, entropy.New(1))
	if got := reordered.Interpret(ev, both); !strings.Contains(got, "valuables") {
		t.Errorf("configured order ignored, got %q", got)
	}
}

func TestBiasTags(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(1))
	ev := events.New("e", 0, tavern(), events.EventTheft, nil, 0.5)
	b := mustBias(t, "x", map[Trait]float64{Fearful: 0.8, Paranoid: 0.8, Greedy: 0.8, Cynical: 0.8})
	tags := p.ExtractTags(ev, b)
	for _, want := range []string{"crime", "theft", "danger", "warning", "suspicious", "money", "typical"} {
		if !tags.Has(want) {
			t.Errorf("missing %q in %v", want, tags)
		}
	}

	calm := p.ExtractTags(events.New("d", 0, tavern(), events.EventDiscovery, nil, 0.5), mustBias(t, "y", map[Trait]float64{Greedy: 0.9}))
	if calm.Has("money") {
		t.Error("money tag should only attach to crimes")
	}
}

func TestParanoiaRoll(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(9))
	ev := events.New("e", 0, tavern(), events.EventConversation, []string{"smith", "miller"}, 0.3)
	w := events.Witness{NPC: "x", Kind: events.WitnessDirect, Clarity: 1}

	certain := mustBias(t, "x", map[Trait]float64{Paranoid: 1})
	m := p.FormMemory(ev, certain, w)
	if !m.Tags.Has("conspiracy") {
		t.Fatal("paranoia 1.0 should always add conspiracy")
	}

	calm := mustBias(t, "y", nil)
	for i := 0; i < 20; i++ {
		if p.FormMemory(ev, calm, w).Tags.Has("conspiracy") {
			t.Fatal("paranoia 0 should never add conspiracy")
		}
	}
}

func TestTraumaticDeath(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(2))
	b := mustBias(t, "x", nil)
	ev := events.New("e", 0, tavern(), events.EventDeath, []string{"miller"}, 0.9)
	m := p.FormMemory(ev, b, events.Witness{NPC: "x", Kind: events.WitnessDirect, Clarity: 1})
	if !m.Traumatic {
		t.Fatal("direct witness of a notable death should be traumatized")
	}
	m2 := p.FormMemory(ev, b, events.Witness{NPC: "x", Kind: events.WitnessOverheard, Clarity: 1})
	if m2.Traumatic {
		t.Fatal("overheard death should not be traumatic for a calm NPC")
	}
}

func TestDecayRateFollowsForgetfulness(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(2))
	ev := events.New("e", 0, tavern(), events.EventTrade, nil, 0.2)
	w := events.Witness{Kind: events.WitnessDirect, Clarity: 1}
	sieve := p.FormMemory(ev, mustBias(t, "a", map[Trait]float64{Forgetful: 1}), w)
	steel := p.FormMemory(ev, mustBias(t, "b", map[Trait]float64{Obsessive: 1}), w)
	if sieve.DecayRate <= steel.DecayRate {
		t.Fatalf("forgetful decay %f should exceed obsessive %f", sieve.DecayRate, steel.DecayRate)
	}
}

func TestRetellingIsNonDestructive(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(3))
	orig := &memory.Memory{
		ID:              "m",
		Summary:         "smith attacked the miller at the mill.",
		Tags:            memory.NewTags("violence"),
		Confidence:      0.7,
		EmotionalWeight: 0.5,
		Anger:           0.6,
	}

	dramatic := mustBias(t, "d", map[Trait]float64{Dramatic: 0.9})
	told := p.ApplyBiasToRetelling(orig, dramatic)
	if told.Summary != "smith savagely attacked the miller at the mill." {
		t.Errorf("dramatic retelling = %q", told.Summary)
	}
	if told.EmotionalWeight <= orig.EmotionalWeight {
		t.Error("dramatic retelling should intensify emotional weight")
	}

	loyal := mustBias(t, "l", map[Trait]float64{Loyal: 0.9})
	loyal.AddAlly("smith")
	soft := p.ApplyBiasToRetelling(orig, loyal)
	if soft.Summary != "smith stood up to the miller at the mill." {
		t.Errorf("loyal retelling = %q", soft.Summary)
	}
	if soft.Anger >= orig.Anger {
		t.Error("loyal retelling should cool anger")
	}

	if orig.Summary != "smith attacked the miller at the mill." || orig.EmotionalWeight != 0.5 {
		t.Fatal("original memory was modified")
	}
}

func TestLoyalRetellingOnlyExcusesTheActor(t *testing.T) {
	p := NewProcessor(DefaultConfig(), entropy.New(3))
	cases := []struct {
		name    string
		ally    string
		summary string
		actors  []string
		want    string
	}{
		{"ally is the victim", "jon", "smith attacked jon at the mill.", []string{"smith", "jon"}, "smith attacked jon at the mill."},
		{"name inside another word", "al", "smith stole something at the alley.", nil, "smith stole something at the alley."},
		{"ally is the recorded actor", "jon", "jon stole the bread.", []string{"jon"}, "jon borrowed the bread."},
		{"ally acts without a softener", "jon", "jon fled the village.", nil, "jon fled the village. I'm sure jon had good reason."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loyal := mustBias(t, "l", map[Trait]float64{Loyal: 0.9})
			loyal.AddAlly(tc.ally)
			m := &memory.Memory{ID: "m", Summary: tc.summary, Actors: tc.actors, Anger: 0.6}
			told := p.ApplyBiasToRetelling(m, loyal)
			if told.Summary != tc.want {
				t.Errorf("retelling = %q, want %q", told.Summary, tc.want)
			}
			if cooled := told.Anger < m.Anger; cooled != (tc.want != tc.summary) {
				t.Errorf("anger %f -> %f", m.Anger, told.Anger)
			}
		})
	}
}
