package social

import (
	"fmt"
	"sort"

	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/memory"
)

// Config holds the social dynamics constants.
type Config struct {
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`

	CloseFriendAffinity float64 `json:"close_friend_affinity" yaml:"close_friend_affinity"`
	CloseFriendTrust    float64 `json:"close_friend_trust" yaml:"close_friend_trust"`
	FriendAffinity      float64 `json:"friend_affinity" yaml:"friend_affinity"`
	AcquaintAffinity    float64 `json:"acquaintance_affinity" yaml:"acquaintance_affinity"`
	RivalAffinity       float64 `json:"rival_affinity" yaml:"rival_affinity"`
	EnemyAffinity       float64 `json:"enemy_affinity" yaml:"enemy_affinity"`

	TensionDecay         float64 `json:"tension_decay" yaml:"tension_decay"` // Tension lost per time unit
	ConflictTension      float64 `json:"conflict_tension" yaml:"conflict_tension"`
	ConflictAffinityLoss float64 `json:"conflict_affinity_loss" yaml:"conflict_affinity_loss"`
	ConflictResetTension float64 `json:"conflict_reset_tension" yaml:"conflict_reset_tension"`
	ReconcileTension     float64 `json:"reconcile_tension" yaml:"reconcile_tension"`
	ReconcileAffinity    float64 `json:"reconcile_affinity" yaml:"reconcile_affinity"`
	ReconcileGain        float64 `json:"reconcile_gain" yaml:"reconcile_gain"`
	StorylineTension     float64 `json:"storyline_tension" yaml:"storyline_tension"`

	FriendTrust       float64 `json:"friend_trust" yaml:"friend_trust"` // Trust needed to count as a friend's word
	AcquaintanceTrust float64 `json:"acquaintance_trust" yaml:"acquaintance_trust"`
	DistrustTrust     float64 `json:"distrust_trust" yaml:"distrust_trust"` // Trust at or below which a teller counts as an enemy
}

// DefaultConfig returns the standard social constants.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:         20,
		CloseFriendAffinity:  80,
		CloseFriendTrust:     60,
		FriendAffinity:       50,
		AcquaintAffinity:     20,
		RivalAffinity:        -30,
		EnemyAffinity:        -60,
		TensionDecay:         2,
		ConflictTension:      80,
		ConflictAffinityLoss: 10,
		ConflictResetTension: 60,
		ReconcileTension:     20,
		ReconcileAffinity:    -70,
		ReconcileGain:        15,
		StorylineTension:     70,
		FriendTrust:          50,
		AcquaintanceTrust:    10,
		DistrustTrust:        -30,
	}
}

// Network is the directed relationship graph.
type Network struct {
	cfg   Config
	edges map[string]map[string]*Relation
}

// NewNetwork creates an empty graph.
func NewNetwork(cfg Config) *Network {
	return &Network{cfg: cfg, edges: make(map[string]map[string]*Relation)}
}

// Config returns the network constants.
func (n *Network) Config() Config {
	return n.cfg
}

// edge returns from → to, creating a stranger edge on first contact.
func (n *Network) edge(from, to string) *Relation {
	out, ok := n.edges[from]
	if !ok {
		out = make(map[string]*Relation)
		n.edges[from] = out
	}
	r, ok := out[to]
	if !ok {
		r = &Relation{From: from, To: to, Type: Stranger}
		out[to] = r
	}
	return r
}

// Relation returns the edge from → to.
func (n *Network) Relation(from, to string) (*Relation, bool) {
	r, ok := n.edges[from][to]
	return r, ok
}

// Relations returns every outgoing edge of from, ordered by target.
func (n *Network) Relations(from string) []*Relation {
	out := make([]*Relation, 0, len(n.edges[from]))
	for _, r := range n.edges[from] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

// All returns every edge ordered by (from, to).
func (n *Network) All() []*Relation {
	var out []*Relation
	for _, from := range n.sources() {
		out = append(out, n.Relations(from)...)
	}
	return out
}

// Len returns the number of edges.
func (n *Network) Len() int {
	total := 0
	for _, out := range n.edges {
		total += len(out)
	}
	return total
}

// Load replaces the graph with restored edges.
func (n *Network) Load(rels []*Relation) {
	n.edges = make(map[string]map[string]*Relation)
	for _, r := range rels {
		if _, ok := n.edges[r.From]; !ok {
			n.edges[r.From] = make(map[string]*Relation)
		}
		n.edges[r.From][r.To] = r
	}
}

func (n *Network) sources() []string {
	ids := make([]string, 0, len(n.edges))
	for id := range n.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecordInteraction records that to did kind to from. The edge from → to
// takes the full effect; with bidirectional set, to → from takes the
// received variant.
func (n *Network) RecordInteraction(from, to string, kind InteractionKind, now float64, bidirectional bool) *Relation {
	r := n.edge(from, to)
	n.apply(r, EffectOf(kind), Interaction{Kind: kind, Time: now})
	if bidirectional {
		back := n.edge(to, from)
		n.apply(back, ReceivedEffectOf(kind), Interaction{Kind: kind, Time: now, Received: true})
	}
	return r
}

func (n *Network) apply(r *Relation, e Effect, in Interaction) {
	r.Affinity = bounds.Score(r.Affinity + e.Affinity)
	r.Trust = bounds.Score(r.Trust + e.Trust)
	r.Respect = bounds.Score(r.Respect + e.Respect)
	r.Fear = bounds.Gauge(r.Fear + e.Fear)
	r.Tension = bounds.Gauge(r.Tension + e.Tension)
	r.History = append(r.History, in)
	if limit := n.cfg.HistoryLimit; limit > 0 && len(r.History) > limit {
		r.History = append([]Interaction(nil), r.History[len(r.History)-limit:]...)
	}
	r.LastInteraction = in.Time
	n.derive(r)
}

// derive re-derives the type from the scores. Fixed kinds never change.
func (n *Network) derive(r *Relation) {
	if r.Type.Fixed() {
		return
	}
	c := n.cfg
	switch {
	case r.Affinity >= c.CloseFriendAffinity && r.Trust >= c.CloseFriendTrust:
		r.Type = CloseFriend
	case r.Affinity >= c.FriendAffinity:
		r.Type = Friend
	case r.Affinity >= c.AcquaintAffinity:
		r.Type = Acquaintance
	case r.Affinity <= c.EnemyAffinity:
		r.Type = Enemy
	case r.Affinity <= c.RivalAffinity:
		r.Type = Rival
	default:
		r.Type = Stranger
	}
}

// SetType forces the type of from → to, e.g. family set by story.
func (n *Network) SetType(from, to string, t RelationType) {
	n.edge(from, to).Type = t
}

// ShareSecret records a secret known to both NPCs.
func (n *Network) ShareSecret(a, b, secret string) {
	ab, ba := n.edge(a, b), n.edge(b, a)
	ab.SharedSecrets = addToSet(ab.SharedSecrets, secret)
	ba.SharedSecrets = addToSet(ba.SharedSecrets, secret)
}

// ShareMemory records a memory one NPC told the other.
func (n *Network) ShareMemory(a, b, memoryID string) {
	ab, ba := n.edge(a, b), n.edge(b, a)
	ab.SharedMemories = addToSet(ab.SharedMemories, memoryID)
	ba.SharedMemories = addToSet(ba.SharedMemories, memoryID)
}

// ShareRumor records a rumor passed between the two NPCs.
func (n *Network) ShareRumor(a, b, rumorID string) {
	ab, ba := n.edge(a, b), n.edge(b, a)
	ab.SharedRumors = addToSet(ab.SharedRumors, rumorID)
	ba.SharedRumors = addToSet(ba.SharedRumors, rumorID)
}

// SourceKind is how listener files something teller said, judged by the
// listener's trust in the teller. Strangers count as hearsay.
func (n *Network) SourceKind(listener, teller string) memory.SourceKind {
	r, ok := n.Relation(listener, teller)
	if !ok {
		return memory.SourceRumor
	}
	switch {
	case r.Trust >= n.cfg.FriendTrust:
		return memory.SourceFriend
	case r.Type == Enemy || r.Trust <= n.cfg.DistrustTrust:
		return memory.SourceEnemy
	case r.Trust >= n.cfg.AcquaintanceTrust:
		return memory.SourceAcquaintance
	default:
		return memory.SourceRumor
	}
}

// EmergentKind names a social event raised by Update.
type EmergentKind string

const (
	EmergentConflict       EmergentKind = "conflict"
	EmergentReconciliation EmergentKind = "reconciliation"
)

// Emergent is a social event nobody scripted.
type Emergent struct {
	Kind        EmergentKind `json:"kind"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Description string       `json:"description"`
	Affinity    float64      `json:"affinity"`
	Tension     float64      `json:"tension"`
}

// Update advances relationship dynamics by dt. Edges are visited in
// (from, to) order so the emergent events come out deterministically.
func (n *Network) Update(dt float64) []Emergent {
	if dt < 0 {
		dt = 0
	}
	c := n.cfg
	var out []Emergent
	for _, r := range n.All() {
		r.Tension = bounds.Gauge(r.Tension - c.TensionDecay*dt)

		switch {
		case r.Tension > c.ConflictTension && r.Affinity < 0:
			r.Affinity = bounds.Score(r.Affinity - c.ConflictAffinityLoss)
			r.Tension = c.ConflictResetTension
			n.derive(r)
			out = append(out, Emergent{
				Kind:        EmergentConflict,
				From:        r.From,
				To:          r.To,
				Description: fmt.Sprintf("%s confronts %s", r.From, r.To),
				Affinity:    r.Affinity,
				Tension:     r.Tension,
			})
		case r.Type == Enemy && r.Tension < c.ReconcileTension && r.Affinity > c.ReconcileAffinity:
			r.Affinity = bounds.Score(r.Affinity + c.ReconcileGain)
			r.Type = Rival
			out = append(out, Emergent{
				Kind:        EmergentReconciliation,
				From:        r.From,
				To:          r.To,
				Description: fmt.Sprintf("%s lets go of some of the grudge against %s", r.From, r.To),
				Affinity:    r.Affinity,
				Tension:     r.Tension,
			})
		}
	}
	return out
}
