// Package agents provides the NPC data model: NPC types with their memory
// capacities, archetype personalities, the seeded spawner, and the per-NPC
// intelligence state the engine owns.
package agents

import (
	"errors"
	"fmt"

	"github.com/talgya/hearsay/internal/behavior"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/memory"
)

// ErrUnknownType is returned when decoding an NPC type name that does not exist.
var ErrUnknownType = errors.New("unknown npc type")

// NPCType is an NPC's role in the world. It fixes memory capacity and the
// default personality.
type NPCType uint8

const (
	TypeBystander NPCType = iota
	TypeVillager
	TypeGuard
	TypeMerchant
	TypeBartender
	TypePriest
	TypeNoble
	TypeInformant
	TypeCrimeBoss
	TypeWanderer
)

// NumNPCTypes is the number of NPC types.
const NumNPCTypes = 10

type typeInfo struct {
	name     string
	capacity int // Memories kept before pruning
}

var typeTable = [NumNPCTypes]typeInfo{
	TypeBystander: {"bystander", 10},
	TypeVillager:  {"villager", 20},
	TypeGuard:     {"guard", 30},
	TypeMerchant:  {"merchant", 35},
	TypeBartender: {"bartender", 40},
	TypePriest:    {"priest", 40},
	TypeNoble:     {"noble", 45},
	TypeInformant: {"informant", 50},
	TypeCrimeBoss: {"crime_boss", 60},
	TypeWanderer:  {"wanderer", 25},
}

// String returns the type name.
func (t NPCType) String() string {
	if int(t) < NumNPCTypes {
		return typeTable[t].name
	}
	return fmt.Sprintf("NPCType(%d)", uint8(t))
}

// Capacity returns the memory bank size for the type.
func (t NPCType) Capacity() int {
	if int(t) < NumNPCTypes {
		return typeTable[t].capacity
	}
	return typeTable[TypeVillager].capacity
}

// MarshalText encodes the type by name.
func (t NPCType) MarshalText() ([]byte, error) {
	if int(t) >= NumNPCTypes {
		return nil, fmt.Errorf("npc type %d: %w", uint8(t), ErrUnknownType)
	}
	return []byte(typeTable[t].name), nil
}

// UnmarshalText decodes a type name.
func (t *NPCType) UnmarshalText(b []byte) error {
	v, err := ParseNPCType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseNPCType looks up an NPC type by name.
func ParseNPCType(name string) (NPCType, error) {
	for i, info := range typeTable {
		if info.name == name {
			return NPCType(i), nil
		}
	}
	return 0, fmt.Errorf("npc type %q: %w", name, ErrUnknownType)
}

// State is everything the engine knows about one NPC's mind.
type State struct {
	ID         string            `json:"id"`
	Type       NPCType           `json:"type"`
	Memories   *memory.Bank      `json:"memories"`
	Bias       *bias.Bias        `json:"bias"`
	Behavior   behavior.Modifier `json:"behavior"`
	Labels     []behavior.Label  `json:"labels,omitempty"`
	LastUpdate float64           `json:"last_update"`
}

// NewState creates the state for a freshly registered NPC.
func NewState(id string, t NPCType, b *bias.Bias) *State {
	return &State{
		ID:       id,
		Type:     t,
		Memories: memory.NewBank(id, t.Capacity()),
		Bias:     b,
	}
}

// RefreshBehavior recomputes the disposition from the whole memory set.
func (s *State) RefreshBehavior(now float64, cfg behavior.Config) {
	s.Behavior = behavior.Aggregate(s.Memories.Memories, now, cfg)
	s.Labels = behavior.DominantLabels(s.Memories.Memories, now, cfg)
	s.LastUpdate = now
}

// Hints returns the read-only behavior bundle for dialogue and AI.
func (s *State) Hints(cfg behavior.Config) behavior.Hints {
	return behavior.HintsFor(s.ID, s.Behavior, s.Labels, cfg)
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := *s
	c.Memories = s.Memories.Clone()
	c.Bias = s.Bias.Clone()
	c.Labels = append([]behavior.Label(nil), s.Labels...)
	return &c
}
