package events

import (
	"strconv"

	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/world"
)

// Witness records one NPC's view of an event. Visibility and distance are
// resolved by the host's grid before the event is submitted.
type Witness struct {
	NPC      string      `json:"npc"`
	Kind     WitnessKind `json:"kind"`
	Clarity  float64     `json:"clarity"` // 0.0–1.0
	Distance float64     `json:"distance"`
}

// WorldEvent is the objective record of something that happened.
type WorldEvent struct {
	ID         string            `json:"id"`
	Timestamp  float64           `json:"timestamp"`
	Location   world.Location    `json:"location"`
	Type       EventType         `json:"type"`
	Actors     []string          `json:"actors"`
	Details    map[string]string `json:"details,omitempty"`
	Notability float64           `json:"notability"` // 0.0–1.0
	Witnesses  []Witness         `json:"witnesses"`
}

// New creates an event with no witnesses. Notability is clamped to [0, 1].
func New(id string, timestamp float64, loc world.Location, typ EventType, actors []string, notability float64) *WorldEvent {
	return &WorldEvent{
		ID:         id,
		Timestamp:  timestamp,
		Location:   loc,
		Type:       typ,
		Actors:     append([]string(nil), actors...),
		Details:    make(map[string]string),
		Notability: bounds.Unit(notability),
	}
}

// AddWitness registers an NPC as a witness. A second registration for the
// same NPC replaces the first.
func (e *WorldEvent) AddWitness(npc string, kind WitnessKind, clarity, distance float64) *WorldEvent {
	w := Witness{NPC: npc, Kind: kind, Clarity: bounds.Unit(clarity), Distance: distance}
	for i := range e.Witnesses {
		if e.Witnesses[i].NPC == npc {
			e.Witnesses[i] = w
			return e
		}
	}
	e.Witnesses = append(e.Witnesses, w)
	return e
}

// WithDetail sets a free-form detail and returns the event for chaining.
func (e *WorldEvent) WithDetail(key, value string) *WorldEvent {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Witness returns the witness record for npc.
func (e *WorldEvent) Witness(npc string) (Witness, bool) {
	for _, w := range e.Witnesses {
		if w.NPC == npc {
			return w, true
		}
	}
	return Witness{}, false
}

// WasWitnessedBy reports whether npc witnessed the event in any way.
func (e *WorldEvent) WasWitnessedBy(npc string) bool {
	_, ok := e.Witness(npc)
	return ok
}

// Involves reports whether actor took part in the event.
func (e *WorldEvent) Involves(actor string) bool {
	for _, a := range e.Actors {
		if a == actor {
			return true
		}
	}
	return false
}

// InvolvesPlayer reports whether the player took part.
func (e *WorldEvent) InvolvesPlayer() bool {
	return e.Involves(PlayerID)
}

// Severity is the "severity" detail when it parses as a number, otherwise the
// notability. Always in [0, 1].
func (e *WorldEvent) Severity() float64 {
	if s, ok := e.Details["severity"]; ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return bounds.Unit(v)
		}
	}
	return e.Notability
}

// Tags returns the event type's base tags plus the player tag when the
// player is involved.
func (e *WorldEvent) Tags() []string {
	tags := e.Type.BaseTags()
	if e.InvolvesPlayer() {
		tags = append(tags, e.Type.PlayerTag())
	}
	return tags
}

// Clone returns a deep copy so the engine's history cannot be changed through
// the submitter's pointer.
func (e *WorldEvent) Clone() *WorldEvent {
	c := *e
	c.Actors = append([]string(nil), e.Actors...)
	c.Witnesses = append([]Witness(nil), e.Witnesses...)
	if e.Details != nil {
		c.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return &c
}
