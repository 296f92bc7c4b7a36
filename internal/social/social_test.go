package social

import (
	"encoding/json"
	"testing"

	"github.com/talgya/hearsay/internal/memory"
)

func TestHelpedThenBetrayed(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	for i := 0; i < 7; i++ {
		n.RecordInteraction("ana", "ben", Helped, float64(i), true)
	}
	r, ok := n.Relation("ana", "ben")
	if !ok {
		t.Fatal("edge missing")
	}
	if r.Affinity < 85 || r.Trust < 70 {
		t.Fatalf("after 7 helps: affinity %v trust %v", r.Affinity, r.Trust)
	}
	if r.Type != CloseFriend {
		t.Fatalf("type = %s, want close_friend", r.Type)
	}

	before := *r
	n.RecordInteraction("ana", "ben", Betrayed, 8, true)
	if r.Affinity >= before.Affinity || r.Trust >= before.Trust || r.Tension <= before.Tension {
		t.Fatalf("betrayal should drop affinity/trust and raise tension: %+v", r)
	}

	n.RecordInteraction("ana", "ben", Betrayed, 9, true)
	n.RecordInteraction("ana", "ben", Betrayed, 10, true)
	if r.Tension <= 80 || r.Affinity >= 0 {
		t.Fatalf("setup: tension %v affinity %v", r.Tension, r.Affinity)
	}

	emerged := n.Update(1)
	var conflict *Emergent
	for i := range emerged {
		if emerged[i].Kind == EmergentConflict && emerged[i].From == "ana" {
			conflict = &emerged[i]
		}
	}
	if conflict == nil {
		t.Fatalf("expected a conflict, got %+v", emerged)
	}
	if r.Tension != DefaultConfig().ConflictResetTension {
		t.Errorf("tension after conflict = %v", r.Tension)
	}
	if r.Type != Rival {
		t.Errorf("type after conflict = %s, want rival", r.Type)
	}
}

func TestReverseEdgeGetsReceivedEffect(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	n.RecordInteraction("victim", "thug", Attacked, 0, true)
	fwd, _ := n.Relation("victim", "thug")
	back, ok := n.Relation("thug", "victim")
	if !ok {
		t.Fatal("bidirectional interaction should create reverse edge")
	}
	if fwd.Affinity != -30 || fwd.Fear != 30 {
		t.Errorf("forward = %+v", fwd)
	}
	if back.Affinity != -10 || back.Tension != 20 || !back.History[0].Received {
		t.Errorf("reverse = %+v", back)
	}

	n.RecordInteraction("a", "b", Gift, 0, false)
	if _, ok := n.Relation("b", "a"); ok {
		t.Error("one-way interaction created a reverse edge")
	}
}

func TestFixedKindsNeverChange(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	n.SetType("son", "mother", Family)
	for i := 0; i < 5; i++ {
		n.RecordInteraction("son", "mother", Attacked, float64(i), false)
	}
	r, _ := n.Relation("son", "mother")
	if r.Type != Family {
		t.Fatalf("family edge became %s", r.Type)
	}
}

func TestReconciliation(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	n.RecordInteraction("a", "b", Conversation, 0, false)
	r, _ := n.Relation("a", "b")
	r.Type, r.Affinity, r.Tension = Enemy, -65, 10

	emerged := n.Update(1)
	if len(emerged) != 1 || emerged[0].Kind != EmergentReconciliation {
		t.Fatalf("emerged = %+v", emerged)
	}
	if r.Type != Rival || r.Affinity != -50 {
		t.Fatalf("after reconciliation: %s %v", r.Type, r.Affinity)
	}
}

func TestHistoryBounded(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	for i := 0; i < 50; i++ {
		n.RecordInteraction("a", "b", Conversation, float64(i), false)
	}
	r, _ := n.Relation("a", "b")
	if len(r.History) != 20 || r.History[19].Time != 49 {
		t.Fatalf("history len %d, last %+v", len(r.History), r.History[len(r.History)-1])
	}
}

func TestStorylines(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	for i := 0; i < 4; i++ {
		n.RecordInteraction("ana", "ben", Helped, 0, false)
		n.RecordInteraction("ben", "cid", Helped, 0, false)
	}
	n.RecordInteraction("ana", "cid", Attacked, 0, false)
	n.RecordInteraction("ana", "cid", Attacked, 0, false)

	n.RecordInteraction("dee", "eve", Conversation, 0, false)
	de, _ := n.Relation("dee", "eve")
	de.Affinity, de.Trust = -20, 30

	kinds := map[StorylineKind]int{}
	for _, s := range n.EmergentStorylines() {
		kinds[s.Kind]++
		if s.Kind == StoryFriendOfEnemy && (s.NPCs[0] != "ana" || s.NPCs[1] != "ben" || s.NPCs[2] != "cid") {
			t.Errorf("triangle = %v", s.NPCs)
		}
	}
	if kinds[StoryFriendOfEnemy] != 1 {
		t.Errorf("friend-of-enemy count = %d", kinds[StoryFriendOfEnemy])
	}
	if kinds[StoryHighTension] != 1 {
		t.Errorf("high tension count = %d", kinds[StoryHighTension])
	}
	if kinds[StorySecretAlliance] != 1 {
		t.Errorf("secret alliance count = %d", kinds[StorySecretAlliance])
	}
}

func TestSourceKind(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	if n.SourceKind("x", "y") != memory.SourceRumor {
		t.Error("strangers count as hearsay")
	}
	for i := 0; i < 5; i++ {
		n.RecordInteraction("x", "friend", Helped, 0, false)
	}
	n.RecordInteraction("x", "liar", Lied, 0, false)
	n.RecordInteraction("x", "liar", Lied, 0, false)
	n.RecordInteraction("x", "known", Helped, 0, false)
	if got := n.SourceKind("x", "friend"); got != memory.SourceFriend {
		t.Errorf("friend = %s", got)
	}
	if got := n.SourceKind("x", "liar"); got != memory.SourceEnemy {
		t.Errorf("liar = %s", got)
	}
	if got := n.SourceKind("x", "known"); got != memory.SourceAcquaintance {
		t.Errorf("known = %s", got)
	}
}

func TestNetworkJSONRoundTrip(t *testing.T) {
	n := NewNetwork(DefaultConfig())
	n.RecordInteraction("a", "b", Saved, 3, true)
	n.ShareRumor("a", "b", "r1")
	n.SetType("b", "c", Superior)

	raw, err := json.Marshal(n.All())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rels []*Relation
	if err := json.Unmarshal(raw, &rels); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back := NewNetwork(DefaultConfig())
	back.Load(rels)
	if back.Len() != n.Len() {
		t.Fatalf("edges %d vs %d", back.Len(), n.Len())
	}
	r, _ := back.Relation("b", "a")
	if len(r.SharedRumors) != 1 || r.History[0].Kind != Saved {
		t.Fatalf("restored edge = %+v", r)
	}
	bc, _ := back.Relation("b", "c")
	if bc.Type != Superior {
		t.Fatalf("restored type = %s", bc.Type)
	}
}
