package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/social"
)

// Roster is a cast of NPCs to seed a world with.
type Roster struct {
	NPCs  []RosterNPC `yaml:"npcs"`
	Crowd int         `yaml:"crowd,omitempty"` // Extra generated villagers
}

// RosterNPC describes one NPC. Listed traits override the type's archetype
// one by one; for types without an archetype the unlisted traits are zero.
// With no traits at all the NPC is generated like any other of its type.
type RosterNPC struct {
	ID        string             `yaml:"id"`
	Type      agents.NPCType     `yaml:"type"`
	Traits    map[string]float64 `yaml:"traits,omitempty"`
	Allies    []string           `yaml:"allies,omitempty"`
	Enemies   []string           `yaml:"enemies,omitempty"`
	Relations []RosterRelation   `yaml:"relations,omitempty"`
}

// RosterRelation fixes how an NPC regards another, e.g. family.
type RosterRelation struct {
	To   string              `yaml:"to"`
	Type social.RelationType `yaml:"type"`
}

// LoadRoster reads a roster YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes roster YAML.
func ParseRoster(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	seen := make(map[string]bool, len(r.NPCs))
	for i, n := range r.NPCs {
		if n.ID == "" {
			return nil, fmt.Errorf("roster entry %d has no id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("roster lists %s twice", n.ID)
		}
		seen[n.ID] = true
	}
	if r.Crowd < 0 {
		return nil, fmt.Errorf("roster crowd %d is negative", r.Crowd)
	}
	return &r, nil
}

// Apply registers every NPC, then wires allies, enemies and fixed
// relations, then spawns the crowd. Relations may point at NPCs listed later.
func (r *Roster) Apply(e *engine.Engine) error {
	for _, n := range r.NPCs {
		var b *bias.Bias
		if len(n.Traits) > 0 {
			listed, err := bias.TraitsFromMap(n.Traits)
			if err != nil {
				return fmt.Errorf("roster %s: %w", n.ID, err)
			}
			tr, _ := agents.Archetype(n.Type)
			for name := range n.Traits {
				t, _ := bias.ParseTrait(name)
				tr[t] = listed[t]
			}
			if b, err = bias.New(n.ID, tr); err != nil {
				return fmt.Errorf("roster %s: %w", n.ID, err)
			}
		}
		st, err := e.RegisterNPC(n.ID, n.Type, b)
		if err != nil {
			return err
		}
		for _, a := range n.Allies {
			st.Bias.AddAlly(a)
		}
		for _, en := range n.Enemies {
			st.Bias.AddEnemy(en)
		}
	}
	for _, n := range r.NPCs {
		for _, rel := range n.Relations {
			if err := e.SetRelationType(n.ID, rel.To, rel.Type); err != nil {
				return fmt.Errorf("roster: %w", err)
			}
		}
	}
	if r.Crowd > 0 {
		if _, err := e.SpawnCrowd(r.Crowd); err != nil {
			return fmt.Errorf("roster crowd: %w", err)
		}
	}
	return nil
}
