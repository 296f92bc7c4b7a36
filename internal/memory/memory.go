// Package memory holds NPC memories: subjective, decaying beliefs about what
// happened. A memory's confidence fades over time unless it is emotionally
// heavy or traumatic, and a full bank forgets its least important memories
// first.
package memory

import (
	"fmt"
	"strings"

	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/world"
)

// SourceKind is where a memory came from.
type SourceKind uint8

const (
	SourceSelf         SourceKind = iota // Witnessed personally
	SourceFriend                         // Told by someone trusted
	SourceAcquaintance                   // Told by someone known
	SourceRumor                          // Heard through the grapevine
	SourceEnemy                          // Told by someone distrusted
)

var sourceKindNames = [...]string{"self", "friend", "acquaintance", "rumor", "enemy"}

// String returns the source kind name.
func (k SourceKind) String() string {
	if int(k) < len(sourceKindNames) {
		return sourceKindNames[k]
	}
	return fmt.Sprintf("SourceKind(%d)", uint8(k))
}

// MarshalText encodes the source kind by name.
func (k SourceKind) MarshalText() ([]byte, error) {
	if int(k) >= len(sourceKindNames) {
		return nil, fmt.Errorf("unknown source kind %d", uint8(k))
	}
	return []byte(sourceKindNames[k]), nil
}

// UnmarshalText decodes a source kind name.
func (k *SourceKind) UnmarshalText(b []byte) error {
	for i, n := range sourceKindNames {
		if n == string(b) {
			*k = SourceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown source kind %q", string(b))
}

// Memory is one NPC's subjective belief about something that happened.
type Memory struct {
	ID              string          `json:"id"`
	SourceEventID   string          `json:"source_event_id,omitempty"`
	RumorID         string          `json:"rumor_id,omitempty"` // Set when formed from a received rumor
	Summary         string          `json:"summary"`
	Tags            Tags            `json:"tags"`
	Confidence      float64         `json:"confidence"`       // 0.0–1.0, decays
	EmotionalWeight float64         `json:"emotional_weight"` // 0.0–1.0
	Fear            float64         `json:"fear"`
	Anger           float64         `json:"anger"`
	Sadness         float64         `json:"sadness"`
	Curiosity       float64         `json:"curiosity"`
	Source          SourceKind      `json:"source"`
	OriginNPC       string          `json:"origin_npc,omitempty"`
	Timestamp       float64         `json:"timestamp"`
	Location        *world.Location `json:"location,omitempty"`
	DecayRate       float64         `json:"decay_rate"`
	Traumatic       bool            `json:"traumatic"`
	Actors          []string        `json:"actors,omitempty"`
}

// Config holds the decay and sharing constants.
type Config struct {
	ForgetThreshold      float64 `json:"forget_threshold" yaml:"forget_threshold"`             // Below this a memory is forgotten
	TraumaDecayFactor    float64 `json:"trauma_decay_factor" yaml:"trauma_decay_factor"`       // Decay multiplier for traumatic or terrifying memories
	TraumaFear           float64 `json:"trauma_fear" yaml:"trauma_fear"`                       // Fear above this resists decay like trauma
	ManyTagsDecayFactor  float64 `json:"many_tags_decay_factor" yaml:"many_tags_decay_factor"` // Decay multiplier for richly tagged memories
	ManyTags             int     `json:"many_tags" yaml:"many_tags"`                           // More tags than this counts as rich
	ShareThreshold       float64 `json:"share_threshold" yaml:"share_threshold"`
	SignificantThreshold float64 `json:"significant_threshold" yaml:"significant_threshold"`
}

// DefaultConfig returns the standard memory constants.
func DefaultConfig() Config {
	return Config{
		ForgetThreshold:      0.05,
		TraumaDecayFactor:    0.1,
		TraumaFear:           0.8,
		ManyTagsDecayFactor:  0.8,
		ManyTags:             3,
		ShareThreshold:       0.4,
		SignificantThreshold: 0.6,
	}
}

// RetentionPriority scores how strongly the memory resists being pruned.
func (m *Memory) RetentionPriority() float64 {
	p := 0.3*m.Confidence + 0.4*m.EmotionalWeight + 0.2*m.Fear
	if m.Source == SourceSelf {
		p += 0.1
	}
	return p
}

// ShareProbability is how likely the NPC is to bring the memory up.
func (m *Memory) ShareProbability() float64 {
	return bounds.Unit(0.5*m.EmotionalWeight + 0.3*m.Confidence + 0.2*(m.Fear+m.Anger))
}

// Decay reduces confidence for dt elapsed time units. Negative dt is ignored.
func (m *Memory) Decay(dt float64, cfg Config) {
	if dt <= 0 {
		return
	}
	loss := m.DecayRate * dt * (1 - m.EmotionalWeight*0.5)
	if m.Traumatic || m.Fear > cfg.TraumaFear {
		loss *= cfg.TraumaDecayFactor
	}
	if len(m.Tags) > cfg.ManyTags {
		loss *= cfg.ManyTagsDecayFactor
	}
	if loss < 0 {
		loss = 0
	}
	m.Confidence = bounds.Unit(m.Confidence - loss)
}

// Reinforce raises confidence after the memory is recalled or confirmed.
func (m *Memory) Reinforce(amount float64) {
	if amount <= 0 {
		return
	}
	m.Confidence = bounds.Unit(m.Confidence + amount)
}

// Forgotten reports whether confidence has fallen below the threshold.
func (m *Memory) Forgotten(cfg Config) bool {
	return m.Confidence < cfg.ForgetThreshold
}

// Involves reports whether actor took part in the remembered event.
func (m *Memory) Involves(actor string) bool {
	for _, a := range m.Actors {
		if a == actor {
			return true
		}
	}
	return false
}

// Mentions reports whether subject appears in the summary, tags or actors.
func (m *Memory) Mentions(subject string) bool {
	s := strings.ToLower(subject)
	if s == "" {
		return false
	}
	if strings.Contains(strings.ToLower(m.Summary), s) || m.Tags.Has(s) {
		return true
	}
	return m.Involves(subject)
}

// Clone returns an independent copy.
func (m *Memory) Clone() *Memory {
	c := *m
	c.Tags = m.Tags.Clone()
	c.Actors = append([]string(nil), m.Actors...)
	if m.Location != nil {
		loc := *m.Location
		c.Location = &loc
	}
	return &c
}
