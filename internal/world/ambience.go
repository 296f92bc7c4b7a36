// Spatial ambience: a smooth noise field that gives every place its own
// character. Tiles use it to scale how quickly their atmosphere fades, so
// neighbouring places forget at similar speeds.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// AmbienceConfig holds noise field parameters.
type AmbienceConfig struct {
	Seed        int64   `json:"seed" yaml:"seed"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`     // Lower = smoother field
	Octaves     int     `json:"octaves" yaml:"octaves"`         // Layers of detail
	Persistence float64 `json:"persistence" yaml:"persistence"` // Amplitude falloff per octave
	Min         float64 `json:"min" yaml:"min"`                 // Output at noise 0
	Max         float64 `json:"max" yaml:"max"`                 // Output at noise 1
}

// DefaultAmbienceConfig returns a gentle field centred on 1.0.
func DefaultAmbienceConfig() AmbienceConfig {
	return AmbienceConfig{
		Seed:        1,
		Frequency:   0.15,
		Octaves:     3,
		Persistence: 0.5,
		Min:         0.75,
		Max:         1.25,
	}
}

// Ambience maps coordinates to a multiplier in [Min, Max].
type Ambience struct {
	cfg   AmbienceConfig
	noise opensimplex.Noise
}

// NewAmbience creates a deterministic field from cfg.Seed.
func NewAmbience(cfg AmbienceConfig) *Ambience {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	return &Ambience{
		cfg:   cfg,
		noise: opensimplex.NewNormalized(cfg.Seed),
	}
}

// At returns the multiplier for a coordinate. A nil Ambience is flat (1.0).
func (a *Ambience) At(c Coord) float64 {
	if a == nil {
		return 1.0
	}
	n := octaveNoise(a.noise, float64(c.X), float64(c.Y), a.cfg.Octaves, a.cfg.Frequency, a.cfg.Persistence)
	return a.cfg.Min + (a.cfg.Max-a.cfg.Min)*n
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
