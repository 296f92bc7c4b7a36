// Package behavior turns what an NPC believes into how it acts. Memories are
// mapped through a tag table to signed modifiers, weighted by confidence and
// recency, and summed into one disposition that dialogue and AI read.
package behavior

import (
	"github.com/talgya/hearsay/internal/bounds"
)

// Modifier is an NPC's disposition. Every field stays in [-1, 1].
type Modifier struct {
	Trusts       float64 `json:"trusts"`
	Reveals      float64 `json:"reveals"`
	Cooperates   float64 `json:"cooperates"`
	Fears        float64 `json:"fears"`
	Threatens    float64 `json:"threatens"`
	Respects     float64 `json:"respects"`
	SuspiciousOf float64 `json:"suspicious_of"`
}

// Apply adds o field by field, clamping each field after the addition.
func (m *Modifier) Apply(o Modifier) {
	m.Trusts = bounds.Signed(m.Trusts + o.Trusts)
	m.Reveals = bounds.Signed(m.Reveals + o.Reveals)
	m.Cooperates = bounds.Signed(m.Cooperates + o.Cooperates)
	m.Fears = bounds.Signed(m.Fears + o.Fears)
	m.Threatens = bounds.Signed(m.Threatens + o.Threatens)
	m.Respects = bounds.Signed(m.Respects + o.Respects)
	m.SuspiciousOf = bounds.Signed(m.SuspiciousOf + o.SuspiciousOf)
}

// Scale returns m with every field multiplied by f and clamped.
func (m Modifier) Scale(f float64) Modifier {
	return Modifier{
		Trusts:       bounds.Signed(m.Trusts * f),
		Reveals:      bounds.Signed(m.Reveals * f),
		Cooperates:   bounds.Signed(m.Cooperates * f),
		Fears:        bounds.Signed(m.Fears * f),
		Threatens:    bounds.Signed(m.Threatens * f),
		Respects:     bounds.Signed(m.Respects * f),
		SuspiciousOf: bounds.Signed(m.SuspiciousOf * f),
	}
}

// InRange reports whether every field lies in [-1, 1].
func (m Modifier) InRange() bool {
	for _, v := range [...]float64{m.Trusts, m.Reveals, m.Cooperates, m.Fears, m.Threatens, m.Respects, m.SuspiciousOf} {
		if v < -1 || v > 1 {
			return false
		}
	}
	return true
}
