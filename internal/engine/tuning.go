package engine

import (
	"github.com/talgya/hearsay/internal/behavior"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/tile"
	"github.com/talgya/hearsay/internal/world"
)

// Tuning gathers every subsystem's constants so a whole world can be tuned
// from one config file.
type Tuning struct {
	Memory   memory.Config        `json:"memory" yaml:"memory"`
	Bias     bias.Config          `json:"bias" yaml:"bias"`
	Rumor    rumor.Config         `json:"rumor" yaml:"rumor"`
	Tile     tile.Config          `json:"tile" yaml:"tile"`
	Behavior behavior.Config      `json:"behavior" yaml:"behavior"`
	Social   social.Config        `json:"social" yaml:"social"`
	Ambience world.AmbienceConfig `json:"ambience" yaml:"ambience"`

	MaxEvents   int     `json:"max_events" yaml:"max_events"`     // Event history kept; 0 keeps everything
	MaxEmergent int     `json:"max_emergent" yaml:"max_emergent"` // Emergent social events kept
	RecallBoost float64 `json:"recall_boost" yaml:"recall_boost"` // Confidence a teller regains by retelling
}

// DefaultTuning returns the standard constants for every subsystem.
func DefaultTuning() Tuning {
	return Tuning{
		Memory:      memory.DefaultConfig(),
		Bias:        bias.DefaultConfig(),
		Rumor:       rumor.DefaultConfig(),
		Tile:        tile.DefaultConfig(),
		Behavior:    behavior.DefaultConfig(),
		Social:      social.DefaultConfig(),
		Ambience:    world.DefaultAmbienceConfig(),
		MaxEvents:   1000,
		MaxEmergent: 200,
		RecallBoost: 0.05,
	}
}
