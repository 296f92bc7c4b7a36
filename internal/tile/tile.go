// Package tile gives places a memory of their own. Every event leaves a mark
// on the tile where it happened: danger, crime, activity and gossip accrete,
// then fade at a rate set by the tile's ambience. The derived mood label is
// what renderers and pathfinders read.
package tile

import (
	"errors"
	"fmt"

	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/world"
)

// ErrUnknownMood is returned when decoding a mood name that does not exist.
var ErrUnknownMood = errors.New("unknown mood")

// Mood is the human-readable summary of a tile's atmosphere.
type Mood uint8

const (
	MoodNeutral Mood = iota
	MoodQuiet
	MoodBusy
	MoodTense
	MoodOminous
	MoodMysterious
)

var moodNames = [...]string{"neutral", "quiet", "busy", "tense", "ominous", "mysterious"}

var moodDescriptions = [...]string{
	MoodNeutral:    "Nothing out of the ordinary.",
	MoodQuiet:      "Hardly anyone comes by.",
	MoodBusy:       "Full of people coming and going.",
	MoodTense:      "People keep their voices low and their eyes open.",
	MoodOminous:    "Something terrible happened here.",
	MoodMysterious: "There is talk of strange finds here.",
}

// String returns the mood name.
func (m Mood) String() string {
	if int(m) < len(moodNames) {
		return moodNames[m]
	}
	return fmt.Sprintf("Mood(%d)", uint8(m))
}

// MarshalText encodes the mood by name.
func (m Mood) MarshalText() ([]byte, error) {
	if int(m) >= len(moodNames) {
		return nil, fmt.Errorf("mood %d: %w", uint8(m), ErrUnknownMood)
	}
	return []byte(moodNames[m]), nil
}

// UnmarshalText decodes a mood name.
func (m *Mood) UnmarshalText(b []byte) error {
	for i, n := range moodNames {
		if n == string(b) {
			*m = Mood(i)
			return nil
		}
	}
	return fmt.Errorf("mood %q: %w", string(b), ErrUnknownMood)
}

// Marks is how much one event adds to a tile's metrics. Fields ending in
// Severity are scaled by the event's severity.
type Marks struct {
	ViolenceDangerSeverity     float64 `json:"violence_danger_severity" yaml:"violence_danger_severity"`
	ViolenceCrimeSeverity      float64 `json:"violence_crime_severity" yaml:"violence_crime_severity"`
	ViolenceAvoidanceSeverity  float64 `json:"violence_avoidance_severity" yaml:"violence_avoidance_severity"`
	DeathDangerFloor           float64 `json:"death_danger_floor" yaml:"death_danger_floor"` // Danger is raised to at least this, then DeathDanger is added
	DeathDanger                float64 `json:"death_danger" yaml:"death_danger"`
	DeathAvoidance             float64 `json:"death_avoidance" yaml:"death_avoidance"`
	TheftCrimeSeverity         float64 `json:"theft_crime_severity" yaml:"theft_crime_severity"`
	DiscoveryCuriositySeverity float64 `json:"discovery_curiosity_severity" yaml:"discovery_curiosity_severity"`
	DiscoveryActivity          float64 `json:"discovery_activity" yaml:"discovery_activity"`
	ConversationActivity       float64 `json:"conversation_activity" yaml:"conversation_activity"`
	ConversationRumor          float64 `json:"conversation_rumor" yaml:"conversation_rumor"`
	TradeActivity              float64 `json:"trade_activity" yaml:"trade_activity"`
	OtherActivity              float64 `json:"other_activity" yaml:"other_activity"`
}

// MoodRules are the cut-offs deriveMood checks, in rule order.
type MoodRules struct {
	OminousDanger       float64 `json:"ominous_danger" yaml:"ominous_danger"`
	OminousDeathDanger  float64 `json:"ominous_death_danger" yaml:"ominous_death_danger"` // Lower bar once someone has died here
	TenseDanger         float64 `json:"tense_danger" yaml:"tense_danger"`
	TenseCrime          float64 `json:"tense_crime" yaml:"tense_crime"`
	BusyActivity        float64 `json:"busy_activity" yaml:"busy_activity"`
	QuietActivity       float64 `json:"quiet_activity" yaml:"quiet_activity"` // At or below
	MysteriousCuriosity float64 `json:"mysterious_curiosity" yaml:"mysterious_curiosity"`
}

// HintRules are the cut-offs for the atmosphere hints.
type HintRules struct {
	CrimeRidden float64 `json:"crime_ridden" yaml:"crime_ridden"`
	Avoided     float64 `json:"avoided" yaml:"avoided"`
	GossipHub   float64 `json:"gossip_hub" yaml:"gossip_hub"`
	Curious     float64 `json:"curious" yaml:"curious"`
}

// Config holds tile constants.
type Config struct {
	BaseDecayRate  float64   `json:"base_decay_rate" yaml:"base_decay_rate"` // Scaled per tile by ambience
	HistoryLimit   int       `json:"history_limit" yaml:"history_limit"`
	DangerousAt    float64   `json:"dangerous_at" yaml:"dangerous_at"`
	AvoidThreshold float64   `json:"avoid_threshold" yaml:"avoid_threshold"` // avoidance × fear above this means avoid
	RumorNote      float64   `json:"rumor_note" yaml:"rumor_note"`           // Rumor density added per retelling here
	Marks          Marks     `json:"marks" yaml:"marks"`
	Moods          MoodRules `json:"moods" yaml:"moods"`
	Hints          HintRules `json:"hints" yaml:"hints"`
}

// DefaultConfig returns the standard tile constants.
func DefaultConfig() Config {
	return Config{
		BaseDecayRate:  0.01,
		HistoryLimit:   50,
		DangerousAt:    0.5,
		AvoidThreshold: 0.4,
		RumorNote:      0.05,
		Marks: Marks{
			ViolenceDangerSeverity:     0.3,
			ViolenceCrimeSeverity:      0.2,
			ViolenceAvoidanceSeverity:  0.25,
			DeathDangerFloor:           0.7,
			DeathDanger:                0.1,
			DeathAvoidance:             0.3,
			TheftCrimeSeverity:         0.25,
			DiscoveryCuriositySeverity: 0.3,
			DiscoveryActivity:          0.1,
			ConversationActivity:       0.1,
			ConversationRumor:          0.15,
			TradeActivity:              0.15,
			OtherActivity:              0.05,
		},
		Moods: MoodRules{
			OminousDanger:       0.7,
			OminousDeathDanger:  0.5,
			TenseDanger:         0.4,
			TenseCrime:          0.4,
			BusyActivity:        0.6,
			QuietActivity:       0.05,
			MysteriousCuriosity: 0.3,
		},
		Hints: HintRules{
			CrimeRidden: 0.4,
			Avoided:     0.5,
			GossipHub:   0.3,
			Curious:     0.3,
		},
	}
}

// Memory is the accreted state of one location.
type Memory struct {
	Location     world.Location `json:"location"`
	History      []string       `json:"history"` // Event ids, most recent last
	Tags         memory.Tags    `json:"tags"`
	RumorDensity float64        `json:"rumor_density"`
	Danger       float64        `json:"danger"`
	Activity     float64        `json:"activity"`
	Crime        float64        `json:"crime"`
	Deaths       int            `json:"death_count"`
	Avoidance    float64        `json:"avoidance"`
	Curiosity    float64        `json:"curiosity"`
	Mood         Mood           `json:"mood"`
	DecayRate    float64        `json:"decay_rate"`
	LastEvent    float64        `json:"last_event"`
}

// New creates an empty tile memory.
func New(loc world.Location, decayRate float64) *Memory {
	return &Memory{Location: loc, DecayRate: decayRate}
}

// AddEvent folds an event into the tile's metrics and re-derives the mood.
func (t *Memory) AddEvent(ev *events.WorldEvent, cfg Config) {
	sev := ev.Severity()
	mk := cfg.Marks
	switch ev.Type {
	case events.EventViolence:
		t.Danger += mk.ViolenceDangerSeverity * sev
		t.Crime += mk.ViolenceCrimeSeverity * sev
		t.Avoidance += mk.ViolenceAvoidanceSeverity * sev
	case events.EventDeath:
		if t.Danger < mk.DeathDangerFloor {
			t.Danger = mk.DeathDangerFloor
		}
		t.Danger += mk.DeathDanger
		t.Deaths++
		t.Avoidance += mk.DeathAvoidance
	case events.EventTheft:
		t.Crime += mk.TheftCrimeSeverity * sev
	case events.EventDiscovery:
		t.Curiosity += mk.DiscoveryCuriositySeverity * sev
		t.Activity += mk.DiscoveryActivity
	case events.EventConversation:
		t.Activity += mk.ConversationActivity
		t.RumorDensity += mk.ConversationRumor
	case events.EventTrade:
		t.Activity += mk.TradeActivity
	default:
		t.Activity += mk.OtherActivity
	}
	t.clamp()

	t.Tags = t.Tags.Union(ev.Tags())
	t.History = append(t.History, ev.ID)
	if limit := cfg.HistoryLimit; limit > 0 && len(t.History) > limit {
		t.History = append([]string(nil), t.History[len(t.History)-limit:]...)
	}
	if t.Location.Name == "" {
		t.Location.Name = ev.Location.Name
	}
	t.LastEvent = ev.Timestamp
	t.Mood = t.deriveMood(cfg.Moods)
	if ev.Type == events.EventDeath {
		t.Mood = MoodOminous
	}
}

// NoteRumor records that gossip was exchanged here.
func (t *Memory) NoteRumor(cfg Config) {
	t.RumorDensity = bounds.Unit(t.RumorDensity + cfg.RumorNote)
	t.Mood = t.deriveMood(cfg.Moods)
}

// Decay relaxes every metric toward zero. Avoidance and rumor density fade
// at half the tile's rate. The death count is permanent.
func (t *Memory) Decay(dt float64, cfg Config) {
	if dt <= 0 {
		return
	}
	step := t.DecayRate * dt
	t.Danger -= step
	t.Crime -= step
	t.Activity -= step
	t.Curiosity -= step
	t.Avoidance -= step / 2
	t.RumorDensity -= step / 2
	t.clamp()
	t.Mood = t.deriveMood(cfg.Moods)
}

func (t *Memory) clamp() {
	t.Danger = bounds.Unit(t.Danger)
	t.Crime = bounds.Unit(t.Crime)
	t.Activity = bounds.Unit(t.Activity)
	t.Curiosity = bounds.Unit(t.Curiosity)
	t.Avoidance = bounds.Unit(t.Avoidance)
	t.RumorDensity = bounds.Unit(t.RumorDensity)
}

// deriveMood applies the mood rules in order; the first match wins.
func (t *Memory) deriveMood(r MoodRules) Mood {
	switch {
	case (t.Deaths > 0 && t.Danger >= r.OminousDeathDanger) || t.Danger >= r.OminousDanger:
		return MoodOminous
	case t.Danger >= r.TenseDanger || t.Crime >= r.TenseCrime:
		return MoodTense
	case t.Activity >= r.BusyActivity:
		return MoodBusy
	case t.Activity <= r.QuietActivity:
		return MoodQuiet
	case t.Curiosity >= r.MysteriousCuriosity:
		return MoodMysterious
	default:
		return MoodNeutral
	}
}

// ShouldNPCAvoid reports whether an NPC with the given fear keeps away.
func (t *Memory) ShouldNPCAvoid(fear float64, cfg Config) bool {
	return t.Avoidance*fear > cfg.AvoidThreshold
}

// Dangerous reports whether the tile's danger reaches the threshold.
func (t *Memory) Dangerous(cfg Config) bool {
	return t.Danger >= cfg.DangerousAt
}

// Atmosphere is the read-only view handed to rendering and pathing.
type Atmosphere struct {
	Location     world.Location `json:"location"`
	Mood         Mood           `json:"mood"`
	Description  string         `json:"description"`
	Danger       float64        `json:"danger"`
	Crime        float64        `json:"crime"`
	Activity     float64        `json:"activity"`
	RumorDensity float64        `json:"rumor_density"`
	Deaths       int            `json:"death_count"`
	Hints        []string       `json:"hints,omitempty"`
}

// Atmosphere summarizes the tile.
func (t *Memory) Atmosphere(cfg Config) Atmosphere {
	a := Atmosphere{
		Location:     t.Location,
		Mood:         t.Mood,
		Danger:       t.Danger,
		Crime:        t.Crime,
		Activity:     t.Activity,
		RumorDensity: t.RumorDensity,
		Deaths:       t.Deaths,
	}
	if int(t.Mood) < len(moodDescriptions) {
		a.Description = moodDescriptions[t.Mood]
	}
	if t.Dangerous(cfg) {
		a.Hints = append(a.Hints, "dangerous")
	}
	if t.Crime >= cfg.Hints.CrimeRidden {
		a.Hints = append(a.Hints, "crime_ridden")
	}
	if t.Deaths > 0 {
		a.Hints = append(a.Hints, "site_of_death")
	}
	if t.Avoidance >= cfg.Hints.Avoided {
		a.Hints = append(a.Hints, "avoided")
	}
	if t.RumorDensity >= cfg.Hints.GossipHub {
		a.Hints = append(a.Hints, "gossip_hub")
	}
	if t.Curiosity >= cfg.Hints.Curious {
		a.Hints = append(a.Hints, "curious")
	}
	return a
}

// Clone returns an independent copy.
func (t *Memory) Clone() *Memory {
	c := *t
	c.History = append([]string(nil), t.History...)
	c.Tags = t.Tags.Clone()
	return &c
}
