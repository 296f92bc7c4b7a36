// Package social is the directed relationship graph between NPCs. Edges are
// keyed by NPC id and hold scores that interactions push around; periodic
// updates let tension boil over into conflict or cool into reconciliation.
package social

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownName is returned when decoding a relation or interaction name that does not exist.
var ErrUnknownName = errors.New("unknown social name")

// RelationType classifies an edge.
type RelationType uint8

const (
	Stranger RelationType = iota
	Acquaintance
	Friend
	CloseFriend
	Rival
	Enemy
	Family
	Ally
	Romantic
	Informant
	Superior
	Subordinate
)

var relationNames = [...]string{
	"stranger", "acquaintance", "friend", "close_friend", "rival", "enemy",
	"family", "ally", "romantic", "informant", "superior", "subordinate",
}

// String returns the relation type name.
func (t RelationType) String() string {
	if int(t) < len(relationNames) {
		return relationNames[t]
	}
	return fmt.Sprintf("RelationType(%d)", uint8(t))
}

// MarshalText encodes the relation type by name.
func (t RelationType) MarshalText() ([]byte, error) {
	if int(t) >= len(relationNames) {
		return nil, fmt.Errorf("relation type %d: %w", uint8(t), ErrUnknownName)
	}
	return []byte(relationNames[t]), nil
}

// UnmarshalText decodes a relation type name.
func (t *RelationType) UnmarshalText(b []byte) error {
	v, err := ParseRelationType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseRelationType looks up a relation type by name.
func ParseRelationType(name string) (RelationType, error) {
	for i, n := range relationNames {
		if n == name {
			return RelationType(i), nil
		}
	}
	return 0, fmt.Errorf("relation type %q: %w", name, ErrUnknownName)
}

// Fixed reports whether the type is set by story and never re-derived.
func (t RelationType) Fixed() bool {
	return t == Family || t == Superior || t == Subordinate
}

// Friendly reports whether the type counts as friendship for storylines.
func (t RelationType) Friendly() bool {
	return t == Friend || t == CloseFriend
}

// InteractionKind is something one NPC did to another.
type InteractionKind uint8

const (
	Conversation InteractionKind = iota
	Helped
	Betrayed
	SharedRumor
	Gift
	Traded
	Insulted
	Threatened
	Attacked
	Lied
	Bribed
	Apologized
	Saved
)

var interactionNames = [...]string{
	"conversation", "helped", "betrayed", "shared_rumor", "gift", "traded",
	"insulted", "threatened", "attacked", "lied", "bribed", "apologized", "saved",
}

// String returns the interaction name.
func (k InteractionKind) String() string {
	if int(k) < len(interactionNames) {
		return interactionNames[k]
	}
	return fmt.Sprintf("InteractionKind(%d)", uint8(k))
}

// MarshalText encodes the interaction by name.
func (k InteractionKind) MarshalText() ([]byte, error) {
	if int(k) >= len(interactionNames) {
		return nil, fmt.Errorf("interaction %d: %w", uint8(k), ErrUnknownName)
	}
	return []byte(interactionNames[k]), nil
}

// UnmarshalText decodes an interaction name.
func (k *InteractionKind) UnmarshalText(b []byte) error {
	v, err := ParseInteraction(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseInteraction looks up an interaction by name.
func ParseInteraction(name string) (InteractionKind, error) {
	for i, n := range interactionNames {
		if n == name {
			return InteractionKind(i), nil
		}
	}
	return 0, fmt.Errorf("interaction %q: %w", name, ErrUnknownName)
}

// Effect is a change to the scores of one edge.
type Effect struct {
	Affinity float64
	Trust    float64
	Respect  float64
	Fear     float64
	Tension  float64
}

// effects is what the NPC on the receiving end feels toward the actor.
var effects = [...]Effect{
	Conversation: {Affinity: 2, Trust: 1},
	Helped:       {Affinity: 15, Trust: 10, Respect: 5},
	Betrayed:     {Affinity: -40, Trust: -50, Tension: 30},
	SharedRumor:  {Affinity: 3, Trust: 2},
	Gift:         {Affinity: 10, Trust: 5},
	Traded:       {Affinity: 3, Trust: 3},
	Insulted:     {Affinity: -10, Respect: -5, Tension: 15},
	Threatened:   {Affinity: -15, Trust: -10, Fear: 20, Tension: 20},
	Attacked:     {Affinity: -30, Trust: -30, Fear: 30, Tension: 40},
	Lied:         {Affinity: -10, Trust: -25, Tension: 10},
	Bribed:       {Affinity: 5, Trust: -5, Respect: -10},
	Apologized:   {Affinity: 5, Trust: 5, Tension: -20},
	Saved:        {Affinity: 30, Trust: 25, Respect: 15},
}

// receivedEffects is what the actor comes to feel toward the NPC it acted on.
var receivedEffects = [...]Effect{
	Conversation: {Affinity: 2, Trust: 1},
	Helped:       {Affinity: 5, Respect: 2},
	Betrayed:     {Affinity: -5, Fear: 5, Tension: 10},
	SharedRumor:  {Affinity: 2},
	Gift:         {Affinity: 5},
	Traded:       {Affinity: 3, Trust: 3},
	Insulted:     {Affinity: -5, Tension: 5},
	Threatened:   {Respect: -5, Tension: 10},
	Attacked:     {Affinity: -10, Tension: 20},
	Lied:         {Trust: -5},
	Bribed:       {Affinity: 2},
	Apologized:   {Affinity: 3, Tension: -10},
	Saved:        {Affinity: 10},
}

// EffectOf returns the forward effect of an interaction.
func EffectOf(k InteractionKind) Effect {
	if int(k) < len(effects) {
		return effects[k]
	}
	return Effect{}
}

// ReceivedEffectOf returns the reverse-edge effect of an interaction.
func ReceivedEffectOf(k InteractionKind) Effect {
	if int(k) < len(receivedEffects) {
		return receivedEffects[k]
	}
	return Effect{}
}

// Interaction is one entry in an edge's history.
type Interaction struct {
	Kind     InteractionKind `json:"kind"`
	Time     float64         `json:"time"`
	Received bool            `json:"received,omitempty"` // The edge owner was the actor
}

// Relation is the directed edge From → To: how From regards To.
type Relation struct {
	From            string        `json:"from"`
	To              string        `json:"to"`
	Type            RelationType  `json:"type"`
	Affinity        float64       `json:"affinity"` // -100..100
	Trust           float64       `json:"trust"`    // -100..100
	Respect         float64       `json:"respect"`  // -100..100
	Fear            float64       `json:"fear"`     // 0..100
	Tension         float64       `json:"tension"`  // 0..100
	SharedSecrets   []string      `json:"shared_secrets,omitempty"`
	SharedMemories  []string      `json:"shared_memories,omitempty"`
	SharedRumors    []string      `json:"shared_rumors,omitempty"`
	History         []Interaction `json:"history,omitempty"`
	LastInteraction float64       `json:"last_interaction"`
}

// Clone returns an independent copy.
func (r *Relation) Clone() *Relation {
	c := *r
	c.SharedSecrets = append([]string(nil), r.SharedSecrets...)
	c.SharedMemories = append([]string(nil), r.SharedMemories...)
	c.SharedRumors = append([]string(nil), r.SharedRumors...)
	c.History = append([]Interaction(nil), r.History...)
	return &c
}

func addToSet(set []string, id string) []string {
	i := sort.SearchStrings(set, id)
	if i < len(set) && set[i] == id {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = id
	return set
}
