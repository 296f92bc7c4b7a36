// Package events defines world events: the objective record of what happened,
// where, to whom, and who saw it. Events are built by the submitting
// collaborator, then treated as immutable once handed to the engine.
package events

import (
	"errors"
	"fmt"
)

// ErrUnknownName is returned when decoding an enum name that does not exist.
var ErrUnknownName = errors.New("unknown name")

// PlayerID is the reserved actor id for the player character.
const PlayerID = "player"

// EventType classifies a world event.
type EventType uint8

const (
	EventViolence     EventType = iota // Fights, assaults, threats carried out
	EventDeath                         // Someone died
	EventTheft                         // Something was taken
	EventDiscovery                     // Something found or uncovered
	EventConversation                  // Talk worth remembering
	EventTrade                         // Goods or coin changed hands
	EventKindness                      // Help, gifts, rescues
	EventArrival                       // A newcomer appeared
)

// NumEventTypes is the number of event types.
const NumEventTypes = 8

var eventTypeNames = [NumEventTypes]string{
	"violence", "death", "theft", "discovery",
	"conversation", "trade", "kindness", "arrival",
}

// eventTypeInfo holds the lookup table per event type.
type eventTypeInfo struct {
	baseTags  []string
	playerTag string
	crime     bool
}

var eventTypeTable = [NumEventTypes]eventTypeInfo{
	EventViolence:     {baseTags: []string{"violence", "danger"}, playerTag: "player_violent", crime: true},
	EventDeath:        {baseTags: []string{"death", "danger", "tragedy"}, playerTag: "player_killer", crime: true},
	EventTheft:        {baseTags: []string{"crime", "theft"}, playerTag: "player_thief", crime: true},
	EventDiscovery:    {baseTags: []string{"discovery", "mystery"}, playerTag: "player_explorer"},
	EventConversation: {baseTags: []string{"conversation", "social"}, playerTag: "player_talked"},
	EventTrade:        {baseTags: []string{"trade", "commerce"}, playerTag: "player_trader"},
	EventKindness:     {baseTags: []string{"kindness", "help"}, playerTag: "player_helpful"},
	EventArrival:      {baseTags: []string{"stranger", "arrival"}, playerTag: "player_arrived"},
}

// String returns the lowercase event type name.
func (t EventType) String() string {
	if int(t) < NumEventTypes {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// BaseTags returns a copy of the tags every memory of this event type carries.
func (t EventType) BaseTags() []string {
	if int(t) >= NumEventTypes {
		return nil
	}
	return append([]string(nil), eventTypeTable[t].baseTags...)
}

// PlayerTag returns the tag added when the player is involved.
func (t EventType) PlayerTag() string {
	if int(t) >= NumEventTypes {
		return ""
	}
	return eventTypeTable[t].playerTag
}

// IsCrime reports whether the event type is a crime in the eyes of witnesses.
func (t EventType) IsCrime() bool {
	return int(t) < NumEventTypes && eventTypeTable[t].crime
}

// MarshalText encodes the type by name.
func (t EventType) MarshalText() ([]byte, error) {
	if int(t) >= NumEventTypes {
		return nil, fmt.Errorf("event type %d: %w", uint8(t), ErrUnknownName)
	}
	return []byte(eventTypeNames[t]), nil
}

// UnmarshalText decodes a type name.
func (t *EventType) UnmarshalText(b []byte) error {
	v, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseEventType looks up an event type by name.
func ParseEventType(name string) (EventType, error) {
	for i, n := range eventTypeNames {
		if n == name {
			return EventType(i), nil
		}
	}
	return 0, fmt.Errorf("event type %q: %w", name, ErrUnknownName)
}

// WitnessKind describes how an NPC came to know about an event.
type WitnessKind uint8

const (
	WitnessDirect   WitnessKind = iota // Saw it happen
	WitnessIndirect                    // Saw the evidence or aftermath
	WitnessOverheard                   // Heard about it at the time
)

var witnessKindNames = [...]string{"direct", "indirect", "overheard"}

// String returns the witness kind name.
func (k WitnessKind) String() string {
	if int(k) < len(witnessKindNames) {
		return witnessKindNames[k]
	}
	return fmt.Sprintf("WitnessKind(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k WitnessKind) MarshalText() ([]byte, error) {
	if int(k) >= len(witnessKindNames) {
		return nil, fmt.Errorf("witness kind %d: %w", uint8(k), ErrUnknownName)
	}
	return []byte(witnessKindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *WitnessKind) UnmarshalText(b []byte) error {
	v, err := ParseWitnessKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseWitnessKind looks up a witness kind by name.
func ParseWitnessKind(name string) (WitnessKind, error) {
	for i, n := range witnessKindNames {
		if n == name {
			return WitnessKind(i), nil
		}
	}
	return 0, fmt.Errorf("witness kind %q: %w", name, ErrUnknownName)
}
