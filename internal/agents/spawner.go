// NPC spawning: personalities for newly registered NPCs and whole random
// crowds for demos and tests. All randomness comes from the shared source.
package agents

import (
	"fmt"
	"strings"

	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/entropy"
)

// Spawner creates NPC personalities.
type Spawner struct {
	rng  *entropy.Source
	used map[string]int
}

// NewSpawner creates a spawner drawing from rng.
func NewSpawner(rng *entropy.Source) *Spawner {
	return &Spawner{rng: rng, used: make(map[string]int)}
}

// RandomTraits draws every trait in [0.1, 0.9), in trait order.
func (s *Spawner) RandomTraits() bias.Traits {
	var tr bias.Traits
	for i := range tr {
		tr[i] = 0.1 + 0.8*s.rng.Float64()
	}
	return tr
}

// BiasFor builds the bias a new NPC of type t starts with: the archetype
// template when there is one, random traits otherwise.
func (s *Spawner) BiasFor(id string, t NPCType) (*bias.Bias, error) {
	tr, ok := Archetype(t)
	if !ok {
		tr = s.RandomTraits()
	}
	b, err := bias.New(id, tr)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", id, err)
	}
	return b, nil
}

// Spawn creates a named NPC of type t with a unique id.
func (s *Spawner) Spawn(t NPCType) (*State, error) {
	id := s.uniqueID(s.generateName())
	b, err := s.BiasFor(id, t)
	if err != nil {
		return nil, err
	}
	return NewState(id, t, b), nil
}

// SpawnCrowd creates count NPCs with types drawn uniformly.
func (s *Spawner) SpawnCrowd(count int) ([]*State, error) {
	out := make([]*State, 0, count)
	for i := 0; i < count; i++ {
		st, err := s.Spawn(NPCType(s.rng.Intn(NumNPCTypes)))
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Spawner) generateName() string {
	var firsts []string
	if s.rng.Chance(0.5) {
		firsts = maleNames
	} else {
		firsts = femaleNames
	}
	first := entropy.Pick(s.rng, firsts)
	last := entropy.Pick(s.rng, lastNames)
	return first + " " + last
}

// uniqueID turns a display name into an id, suffixing repeats.
func (s *Spawner) uniqueID(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	s.used[base]++
	if n := s.used[base]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return base
}

// Name pools for procedural generation.
var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Oswin", "Per", "Quinn", "Rowan", "Stellan", "Theron", "Ulric",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Una", "Vera",
}

var lastNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Deepwell", "Brightwater",
	"Redforge", "Marshwood", "Nightingale", "Holloway", "Thatcher",
}
