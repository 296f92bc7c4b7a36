// Package rumor models information that has left the NPC who first held it.
// A rumor is detached from a memory, mutated on every retelling, and carried
// by a growing set of NPCs until it loses credibility and falls out of use.
package rumor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/world"
)

// ErrUnknownTrigger is returned when decoding a trigger name that does not exist.
var ErrUnknownTrigger = errors.New("unknown rumor trigger")

// Trigger is the social situation in which a rumor might be passed on.
type Trigger uint8

const (
	TriggerConversation Trigger = iota
	TriggerTrade
	TriggerDrunk
	TriggerGossip
	TriggerInterrogated
	TriggerThreatened
	TriggerBribed
)

// NumTriggers is the number of triggers.
const NumTriggers = 7

var triggerNames = [NumTriggers]string{
	"conversation", "trade", "drunk", "gossip", "interrogated", "threatened", "bribed",
}

// String returns the trigger name.
func (t Trigger) String() string {
	if int(t) < NumTriggers {
		return triggerNames[t]
	}
	return fmt.Sprintf("Trigger(%d)", uint8(t))
}

// MarshalText encodes the trigger by name.
func (t Trigger) MarshalText() ([]byte, error) {
	if int(t) >= NumTriggers {
		return nil, fmt.Errorf("trigger %d: %w", uint8(t), ErrUnknownTrigger)
	}
	return []byte(triggerNames[t]), nil
}

// UnmarshalText decodes a trigger name.
func (t *Trigger) UnmarshalText(b []byte) error {
	v, err := ParseTrigger(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTrigger looks up a trigger by name.
func ParseTrigger(name string) (Trigger, error) {
	for i, n := range triggerNames {
		if n == name {
			return Trigger(i), nil
		}
	}
	return 0, fmt.Errorf("trigger %q: %w", name, ErrUnknownTrigger)
}

// TriggerChances is the base propagation probability per trigger.
type TriggerChances struct {
	Conversation float64 `json:"conversation" yaml:"conversation"`
	Trade        float64 `json:"trade" yaml:"trade"`
	Drunk        float64 `json:"drunk" yaml:"drunk"`
	Gossip       float64 `json:"gossip" yaml:"gossip"`
	Interrogated float64 `json:"interrogated" yaml:"interrogated"`
	Threatened   float64 `json:"threatened" yaml:"threatened"`
	Bribed       float64 `json:"bribed" yaml:"bribed"`
}

// For returns the base probability for t. Unknown triggers never propagate.
func (c TriggerChances) For(t Trigger) float64 {
	switch t {
	case TriggerConversation:
		return c.Conversation
	case TriggerTrade:
		return c.Trade
	case TriggerDrunk:
		return c.Drunk
	case TriggerGossip:
		return c.Gossip
	case TriggerInterrogated:
		return c.Interrogated
	case TriggerThreatened:
		return c.Threatened
	case TriggerBribed:
		return c.Bribed
	}
	return 0
}

// Config holds the rumor constants.
type Config struct {
	DetachConfidence  float64 `json:"detach_confidence" yaml:"detach_confidence"` // Confidence kept when a memory becomes a rumor
	HopConfidence     float64 `json:"hop_confidence" yaml:"hop_confidence"`       // Confidence kept per retelling
	HopDistortion     float64 `json:"hop_distortion" yaml:"hop_distortion"`       // Distortion added per retelling
	DecayRate         float64 `json:"decay_rate" yaml:"decay_rate"`
	InactiveThreshold float64 `json:"inactive_threshold" yaml:"inactive_threshold"`

	BiasThreshold      float64 `json:"bias_threshold" yaml:"bias_threshold"` // Trait level that reshapes a retelling
	ForgetDetailBase   float64 `json:"forget_detail_base" yaml:"forget_detail_base"`
	ForgetDetailScale  float64 `json:"forget_detail_scale" yaml:"forget_detail_scale"` // Added per point of forgetfulness
	SimplifyChance     float64 `json:"simplify_chance" yaml:"simplify_chance"`
	ExaggerateChance   float64 `json:"exaggerate_chance" yaml:"exaggerate_chance"`
	PersonalizeChance  float64 `json:"personalize_chance" yaml:"personalize_chance"`
	MisattributeChance float64 `json:"misattribute_chance" yaml:"misattribute_chance"`

	Triggers        TriggerChances `json:"triggers" yaml:"triggers"`
	AllyMultiplier  float64        `json:"ally_multiplier" yaml:"ally_multiplier"`
	EnemyMultiplier float64        `json:"enemy_multiplier" yaml:"enemy_multiplier"`

	FriendFactor       float64 `json:"friend_factor" yaml:"friend_factor"`
	AcquaintanceFactor float64 `json:"acquaintance_factor" yaml:"acquaintance_factor"`
	RumorFactor        float64 `json:"rumor_factor" yaml:"rumor_factor"`
	EnemyFactor        float64 `json:"enemy_factor" yaml:"enemy_factor"`
	RetoldEmotion      float64 `json:"retold_emotion" yaml:"retold_emotion"` // Share of the rumor's emotional charge a listener takes on
	HeardDecayRate     float64 `json:"heard_decay_rate" yaml:"heard_decay_rate"`
}

// DefaultConfig returns the standard rumor constants.
func DefaultConfig() Config {
	return Config{
		DetachConfidence:   0.95,
		HopConfidence:      0.9,
		HopDistortion:      0.1,
		DecayRate:          0.01,
		InactiveThreshold:  0.1,
		BiasThreshold:      0.6,
		ForgetDetailBase:   0.1,
		ForgetDetailScale:  0.5,
		SimplifyChance:     0.3,
		ExaggerateChance:   0.2,
		PersonalizeChance:  0.1,
		MisattributeChance: 0.1,
		Triggers: TriggerChances{
			Conversation: 0.3,
			Trade:        0.4,
			Drunk:        0.7,
			Gossip:       0.8,
			Interrogated: 0.85,
			Threatened:   0.9,
			Bribed:       0.95,
		},
		AllyMultiplier:     1.5,
		EnemyMultiplier:    0.3,
		FriendFactor:       0.9,
		AcquaintanceFactor: 0.7,
		RumorFactor:        0.5,
		EnemyFactor:        0.3,
		RetoldEmotion:      0.8,
		HeardDecayRate:     0.03,
	}
}

// SourceFactor is how much a claim is believed given who told it.
func (c Config) SourceFactor(kind memory.SourceKind) float64 {
	switch kind {
	case memory.SourceSelf:
		return 1
	case memory.SourceFriend:
		return c.FriendFactor
	case memory.SourceAcquaintance:
		return c.AcquaintanceFactor
	case memory.SourceEnemy:
		return c.EnemyFactor
	default:
		return c.RumorFactor
	}
}

// Hop records one retelling.
type Hop struct {
	Hop     int      `json:"hop"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Time    float64  `json:"time"`
	Applied []string `json:"applied,omitempty"` // Mutations applied on this hop
	Claim   string   `json:"claim"`             // Claim after the hop
}

// Rumor is a claim circulating among NPCs. Its ID is stable across
// retellings; each hop replaces the stored state.
type Rumor struct {
	ID              string          `json:"id"`
	Claim           string          `json:"claim"`
	Details         []string        `json:"details,omitempty"`
	Tags            memory.Tags     `json:"tags"`
	Confidence      float64         `json:"confidence"`
	Distortion      float64         `json:"distortion"` // 0 = truthful, never decreases
	SpreadCount     int             `json:"spread_count"`
	Carriers        []string        `json:"carriers"` // Sorted set
	OriginEventID   string          `json:"origin_event_id,omitempty"`
	OriginMemoryID  string          `json:"origin_memory_id,omitempty"`
	OriginNPC       string          `json:"origin_npc"`
	OriginLocation  *world.Location `json:"origin_location,omitempty"`
	OriginTime      float64         `json:"origin_time"`
	EmotionalWeight float64         `json:"emotional_weight"`
	Fear            float64         `json:"fear"`
	Anger           float64         `json:"anger"`
	Actors          []string        `json:"actors,omitempty"`
	History         []Hop           `json:"history,omitempty"`
	Active          bool            `json:"active"`
	LastSpread      float64         `json:"last_spread"`
}

// FromMemory detaches a memory from npc. The new rumor loses a little
// confidence and has npc as its only carrier.
func FromMemory(id string, m *memory.Memory, npc string, now float64, cfg Config) *Rumor {
	r := &Rumor{
		ID:              id,
		Claim:           m.Summary,
		Details:         detailsFor(m),
		Tags:            m.Tags.Clone(),
		Confidence:      bounds.Unit(m.Confidence * cfg.DetachConfidence),
		Carriers:        []string{npc},
		OriginEventID:   m.SourceEventID,
		OriginMemoryID:  m.ID,
		OriginNPC:       npc,
		OriginTime:      now,
		EmotionalWeight: m.EmotionalWeight,
		Fear:            m.Fear,
		Anger:           m.Anger,
		Actors:          append([]string(nil), m.Actors...),
		Active:          true,
		LastSpread:      now,
	}
	if m.Location != nil {
		loc := *m.Location
		r.OriginLocation = &loc
	}
	return r
}

func detailsFor(m *memory.Memory) []string {
	var out []string
	if m.Location != nil {
		out = append(out, "it happened at "+m.Location.Label())
	}
	for _, a := range m.Actors {
		out = append(out, a+" was involved")
	}
	if m.Fear > 0.5 {
		out = append(out, "people were frightened")
	}
	if m.Tags.Has("help") || m.Tags.Has("kindness") {
		out = append(out, "someone was helped")
	}
	return out
}

// HasCarrier reports whether npc carries the rumor.
func (r *Rumor) HasCarrier(npc string) bool {
	i := sort.SearchStrings(r.Carriers, npc)
	return i < len(r.Carriers) && r.Carriers[i] == npc
}

// AddCarrier adds npc to the carrier set.
func (r *Rumor) AddCarrier(npc string) {
	i := sort.SearchStrings(r.Carriers, npc)
	if i < len(r.Carriers) && r.Carriers[i] == npc {
		return
	}
	r.Carriers = append(r.Carriers, "")
	copy(r.Carriers[i+1:], r.Carriers[i:])
	r.Carriers[i] = npc
}

// RemoveCarrier drops npc from the carrier set.
func (r *Rumor) RemoveCarrier(npc string) {
	i := sort.SearchStrings(r.Carriers, npc)
	if i < len(r.Carriers) && r.Carriers[i] == npc {
		r.Carriers = append(r.Carriers[:i], r.Carriers[i+1:]...)
	}
}

// Decay lowers confidence for dt elapsed time. A rumor that falls below
// the inactive threshold stops spreading.
func (r *Rumor) Decay(dt float64, cfg Config) {
	if dt <= 0 {
		return
	}
	r.Confidence = bounds.Unit(r.Confidence - cfg.DecayRate*dt)
	if r.Confidence < cfg.InactiveThreshold {
		r.Active = false
	}
}

// Expired reports whether the rumor can be dropped: inactive and held by
// fewer than two NPCs.
func (r *Rumor) Expired() bool {
	return !r.Active && len(r.Carriers) < 2
}

// Clone returns an independent copy.
func (r *Rumor) Clone() *Rumor {
	c := *r
	c.Details = append([]string(nil), r.Details...)
	c.Tags = r.Tags.Clone()
	c.Carriers = append([]string(nil), r.Carriers...)
	c.Actors = append([]string(nil), r.Actors...)
	c.History = make([]Hop, len(r.History))
	for i, h := range r.History {
		h.Applied = append([]string(nil), h.Applied...)
		c.History[i] = h
	}
	if r.OriginLocation != nil {
		loc := *r.OriginLocation
		c.OriginLocation = &loc
	}
	return &c
}

// ToMemory turns a received rumor into the listener's memory. Confidence is
// the rumor's confidence scaled by who told it and how credulous the
// listener is.
func ToMemory(cfg Config, id string, r *Rumor, listener *bias.Bias, kind memory.SourceKind, teller string, now float64, loc *world.Location) *memory.Memory {
	m := &memory.Memory{
		ID:              id,
		SourceEventID:   r.OriginEventID,
		RumorID:         r.ID,
		Summary:         r.Claim,
		Tags:            r.Tags.Clone().Add("rumor"),
		Confidence:      bounds.Unit(r.Confidence * cfg.SourceFactor(kind) * listener.Credence()),
		EmotionalWeight: bounds.Unit(r.EmotionalWeight * cfg.RetoldEmotion),
		Fear:            bounds.Unit(r.Fear * cfg.RetoldEmotion),
		Anger:           bounds.Unit(r.Anger * cfg.RetoldEmotion),
		Curiosity:       bounds.Unit(0.3 + 0.5*listener.Get(bias.Curious)),
		Source:          kind,
		OriginNPC:       teller,
		Timestamp:       now,
		DecayRate:       cfg.HeardDecayRate * (1 + listener.Get(bias.Forgetful)) * (1 - 0.5*listener.Get(bias.Obsessive)),
		Actors:          append([]string(nil), r.Actors...),
	}
	// The claim is about where it happened; fall back to where it was heard.
	switch {
	case r.OriginLocation != nil:
		l := *r.OriginLocation
		m.Location = &l
	case loc != nil:
		l := *loc
		m.Location = &l
	}
	return m
}
