package rumor

import (
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/entropy"
)

// Propagator decides whether a rumor passes between two NPCs and, when it
// does, produces the mutated state with the listener added as a carrier.
type Propagator struct {
	cfg Config
	rng *entropy.Source
	mut *Mutator
}

// NewPropagator creates a propagator sharing rng with its mutator.
func NewPropagator(cfg Config, rng *entropy.Source) *Propagator {
	return &Propagator{cfg: cfg, rng: rng, mut: NewMutator(cfg, rng)}
}

// Config returns the propagator's constants.
func (p *Propagator) Config() Config {
	return p.cfg
}

// Probability is the chance source passes r to target under trigger.
// It is zero for inactive rumors and for targets already carrying r.
func (p *Propagator) Probability(r *Rumor, source, target *bias.Bias, trigger Trigger) float64 {
	if r == nil || !r.Active || r.HasCarrier(target.NPC) {
		return 0
	}
	prob := p.cfg.Triggers.For(trigger)
	switch {
	case source.IsAlly(target.NPC):
		prob *= p.cfg.AllyMultiplier
	case source.IsEnemy(target.NPC):
		prob *= p.cfg.EnemyMultiplier
	}
	prob *= source.ShareModifier()
	return bounds.Unit(prob)
}

// ShouldPropagate rolls against Probability. Ineligible pairs return false
// without drawing.
func (p *Propagator) ShouldPropagate(r *Rumor, source, target *bias.Bias, trigger Trigger) bool {
	prob := p.Probability(r, source, target, trigger)
	if prob <= 0 {
		return false
	}
	return p.rng.Chance(prob)
}

// Propagate passes r from source to target. On success it returns the
// mutated rumor with target as a carrier; r itself is unchanged.
func (p *Propagator) Propagate(r *Rumor, source, target *bias.Bias, trigger Trigger, now float64) (*Rumor, bool) {
	if !p.ShouldPropagate(r, source, target, trigger) {
		return nil, false
	}
	out := p.mut.Mutate(r, source, target, source.NPC, target.NPC, now)
	out.AddCarrier(target.NPC)
	return out, true
}
