// Package bias models NPC personality and the interpretation step that turns
// an objective world event into one NPC's subjective memory of it.
package bias

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/hearsay/internal/bounds"
)

// ErrTraitRange is returned when a trait value falls outside [0, 1].
var ErrTraitRange = errors.New("trait value out of range [0,1]")

// ErrUnknownTrait is returned for a trait name that does not exist.
var ErrUnknownTrait = errors.New("unknown trait")

// Trait names one personality coefficient.
type Trait uint8

const (
	Fearful Trait = iota
	Paranoid
	Loyal
	Talkative
	Greedy
	SelfPreserving
	Curious
	Dramatic
	Cynical
	Trusting
	Suspicious
	Forgetful
	Obsessive
)

// NumTraits is the number of personality traits.
const NumTraits = 13

var traitNames = [NumTraits]string{
	"fearful", "paranoid", "loyal", "talkative", "greedy", "self_preserving",
	"curious", "dramatic", "cynical", "trusting", "suspicious", "forgetful",
	"obsessive",
}

// String returns the trait name.
func (t Trait) String() string {
	if int(t) < NumTraits {
		return traitNames[t]
	}
	return fmt.Sprintf("Trait(%d)", uint8(t))
}

// MarshalText encodes the trait by name.
func (t Trait) MarshalText() ([]byte, error) {
	if int(t) >= NumTraits {
		return nil, fmt.Errorf("trait %d: %w", uint8(t), ErrUnknownTrait)
	}
	return []byte(traitNames[t]), nil
}

// UnmarshalText decodes a trait name.
func (t *Trait) UnmarshalText(b []byte) error {
	v, err := ParseTrait(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTrait looks up a trait by name.
func ParseTrait(name string) (Trait, error) {
	for i, n := range traitNames {
		if n == name {
			return Trait(i), nil
		}
	}
	return 0, fmt.Errorf("trait %q: %w", name, ErrUnknownTrait)
}

// AllTraits returns every trait in declaration order.
func AllTraits() []Trait {
	out := make([]Trait, NumTraits)
	for i := range out {
		out[i] = Trait(i)
	}
	return out
}

// Traits is a fixed-size array of coefficients indexed by Trait.
// It serializes as a name → value mapping.
type Traits [NumTraits]float64

// Validate checks every coefficient is in [0, 1].
func (tr Traits) Validate() error {
	for i, v := range tr {
		if !bounds.InUnit(v) {
			return fmt.Errorf("%s=%v: %w", Trait(i), v, ErrTraitRange)
		}
	}
	return nil
}

// MarshalJSON encodes the traits as {"fearful": 0.2, ...}.
func (tr Traits) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumTraits)
	for i, v := range tr {
		m[traitNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a name → value mapping. Missing traits are zero;
// unknown names and out-of-range values are errors.
func (tr *Traits) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("traits: %w", err)
	}
	parsed, err := TraitsFromMap(m)
	if err != nil {
		return err
	}
	*tr = parsed
	return nil
}

// TraitsFromMap builds a validated Traits value from names.
func TraitsFromMap(m map[string]float64) (Traits, error) {
	var tr Traits
	for name, v := range m {
		t, err := ParseTrait(name)
		if err != nil {
			return Traits{}, err
		}
		tr[t] = v
	}
	if err := tr.Validate(); err != nil {
		return Traits{}, err
	}
	return tr, nil
}

// Bias is one NPC's personality plus the people it sides with or against.
type Bias struct {
	NPC     string   `json:"npc"`
	Traits  Traits   `json:"traits"`
	Allies  []string `json:"allies"`  // Sorted set
	Enemies []string `json:"enemies"` // Sorted set
}

// New creates a validated bias. Every trait must be in [0, 1].
func New(npc string, traits Traits) (*Bias, error) {
	if err := traits.Validate(); err != nil {
		return nil, fmt.Errorf("bias for %s: %w", npc, err)
	}
	return &Bias{NPC: npc, Traits: traits}, nil
}

// Get returns a trait value.
func (b *Bias) Get(t Trait) float64 {
	if int(t) >= NumTraits {
		return 0
	}
	return b.Traits[t]
}

// Set changes a trait. Values outside [0, 1] are rejected.
func (b *Bias) Set(t Trait, v float64) error {
	if int(t) >= NumTraits {
		return fmt.Errorf("trait %d: %w", uint8(t), ErrUnknownTrait)
	}
	if !bounds.InUnit(v) {
		return fmt.Errorf("%s=%v: %w", t, v, ErrTraitRange)
	}
	b.Traits[t] = v
	return nil
}

// Validate re-checks the bias after decoding.
func (b *Bias) Validate() error {
	if err := b.Traits.Validate(); err != nil {
		return fmt.Errorf("bias for %s: %w", b.NPC, err)
	}
	return nil
}

func insertSorted(set []string, id string) []string {
	i := sort.SearchStrings(set, id)
	if i < len(set) && set[i] == id {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = id
	return set
}

func removeSorted(set []string, id string) []string {
	i := sort.SearchStrings(set, id)
	if i < len(set) && set[i] == id {
		return append(set[:i], set[i+1:]...)
	}
	return set
}

func containsSorted(set []string, id string) bool {
	i := sort.SearchStrings(set, id)
	return i < len(set) && set[i] == id
}

// AddAlly marks id as an ally, removing it from enemies.
func (b *Bias) AddAlly(id string) {
	b.Enemies = removeSorted(b.Enemies, id)
	b.Allies = insertSorted(b.Allies, id)
}

// AddEnemy marks id as an enemy, removing it from allies.
func (b *Bias) AddEnemy(id string) {
	b.Allies = removeSorted(b.Allies, id)
	b.Enemies = insertSorted(b.Enemies, id)
}

// Forget removes id from both sets.
func (b *Bias) Forget(id string) {
	b.Allies = removeSorted(b.Allies, id)
	b.Enemies = removeSorted(b.Enemies, id)
}

// IsAlly reports whether id is an ally.
func (b *Bias) IsAlly(id string) bool { return containsSorted(b.Allies, id) }

// IsEnemy reports whether id is an enemy.
func (b *Bias) IsEnemy(id string) bool { return containsSorted(b.Enemies, id) }

// ShareModifier scales how readily the NPC passes information on.
// Ranges from 0.5 (silent) to 1.5 (chatterbox).
func (b *Bias) ShareModifier() float64 {
	return 0.5 + b.Traits[Talkative]
}

// Credence is how much of a secondhand claim the NPC believes, 0.1–1.0.
func (b *Bias) Credence() float64 {
	c := 0.5 + 0.5*b.Traits[Trusting] - 0.25*b.Traits[Suspicious] - 0.15*b.Traits[Cynical]
	return bounds.Clamp(c, 0.1, 1)
}

// Clone returns an independent copy.
func (b *Bias) Clone() *Bias {
	c := *b
	c.Allies = append([]string(nil), b.Allies...)
	c.Enemies = append([]string(nil), b.Enemies...)
	return &c
}
