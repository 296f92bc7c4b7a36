package bias

import (
	"regexp"
	"strings"

	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/entropy"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/memory"
)

// Config holds the interpretation constants. They encode narrative taste
// rather than anything provable, so every one is named and overridable.
type Config struct {
	InterpretThreshold  float64 `json:"interpret_threshold" yaml:"interpret_threshold"`   // Trait level that colors a summary
	InterpretationOrder []Trait `json:"interpretation_order" yaml:"interpretation_order"` // First matching trait wins
	LoyaltyThreshold    float64 `json:"loyalty_threshold" yaml:"loyalty_threshold"`
	TagThreshold        float64 `json:"tag_threshold" yaml:"tag_threshold"`       // Trait level that adds bias tags
	RetellThreshold     float64 `json:"retell_threshold" yaml:"retell_threshold"` // Trait level that reshapes a retelling

	DirectConfidence    float64 `json:"direct_confidence" yaml:"direct_confidence"`
	IndirectConfidence  float64 `json:"indirect_confidence" yaml:"indirect_confidence"`
	OverheardConfidence float64 `json:"overheard_confidence" yaml:"overheard_confidence"`

	DirectWeight    float64 `json:"direct_weight" yaml:"direct_weight"`
	IndirectWeight  float64 `json:"indirect_weight" yaml:"indirect_weight"`
	OverheardWeight float64 `json:"overheard_weight" yaml:"overheard_weight"`

	BaseDecayRate    float64 `json:"base_decay_rate" yaml:"base_decay_rate"`     // Confidence lost per time unit
	TraumaNotability float64 `json:"trauma_notability" yaml:"trauma_notability"` // Directly seen deaths above this are traumatic
	TraumaFear       float64 `json:"trauma_fear" yaml:"trauma_fear"`
	RetellWeightGain float64 `json:"retell_weight_gain" yaml:"retell_weight_gain"` // Emotional weight multiplier for dramatic retelling
}

// DefaultConfig returns the standard interpretation constants.
func DefaultConfig() Config {
	return Config{
		InterpretThreshold:  0.7,
		InterpretationOrder: []Trait{Fearful, Paranoid, Cynical, Curious, Greedy},
		LoyaltyThreshold:    0.7,
		TagThreshold:        0.7,
		RetellThreshold:     0.6,
		DirectConfidence:    0.9,
		IndirectConfidence:  0.5,
		OverheardConfidence: 0.3,
		DirectWeight:        1.5,
		IndirectWeight:      1.2,
		OverheardWeight:     1.0,
		BaseDecayRate:       0.02,
		TraumaNotability:    0.7,
		TraumaFear:          0.8,
		RetellWeightGain:    1.2,
	}
}

// Processor turns events into subjective memories.
type Processor struct {
	cfg Config
	rng *entropy.Source
}

// NewProcessor creates a processor drawing randomness from rng.
func NewProcessor(cfg Config, rng *entropy.Source) *Processor {
	return &Processor{cfg: cfg, rng: rng}
}

// Config returns the processor's constants.
func (p *Processor) Config() Config {
	return p.cfg
}

// FormMemory produces the memory one witness keeps of an event.
func (p *Processor) FormMemory(ev *events.WorldEvent, b *Bias, w events.Witness) *memory.Memory {
	loc := ev.Location
	m := &memory.Memory{
		ID:            p.rng.NewID(),
		SourceEventID: ev.ID,
		Summary:       p.Interpret(ev, b),
		Tags:          p.ExtractTags(ev, b),
		Confidence:    bounds.Unit(p.baseConfidence(w.Kind) * w.Clarity),
		Source:        memory.SourceSelf,
		OriginNPC:     b.NPC,
		Timestamp:     ev.Timestamp,
		Location:      &loc,
		Actors:        append([]string(nil), ev.Actors...),
	}

	m.EmotionalWeight = p.emotionalWeight(ev, b, w.Kind)
	m.Fear, m.Anger, m.Sadness, m.Curiosity = emotions(ev, b)
	m.Traumatic = m.Fear > p.cfg.TraumaFear ||
		(ev.Type == events.EventDeath && w.Kind == events.WitnessDirect && ev.Notability >= p.cfg.TraumaNotability)
	m.DecayRate = p.cfg.BaseDecayRate * (1 + b.Get(Forgetful)) * (1 - 0.5*b.Get(Obsessive))

	if paranoia := b.Get(Paranoid); paranoia > 0 && p.rng.Chance(paranoia) {
		m.Tags = m.Tags.Add("conspiracy")
		m.Summary = entropy.Pick(p.rng, conspiracyPrefixes) + m.Summary
	}
	return m
}

func (p *Processor) baseConfidence(kind events.WitnessKind) float64 {
	switch kind {
	case events.WitnessDirect:
		return p.cfg.DirectConfidence
	case events.WitnessIndirect:
		return p.cfg.IndirectConfidence
	default:
		return p.cfg.OverheardConfidence
	}
}

func (p *Processor) emotionalWeight(ev *events.WorldEvent, b *Bias, kind events.WitnessKind) float64 {
	mult := p.cfg.OverheardWeight
	switch kind {
	case events.WitnessDirect:
		mult = p.cfg.DirectWeight
	case events.WitnessIndirect:
		mult = p.cfg.IndirectWeight
	}
	return bounds.Unit(ev.Notability*mult + b.Get(Dramatic)*0.2 + b.Get(Obsessive)*0.1)
}

// Interpret picks the subjective summary for an event. The first trait in
// the configured order above the threshold with a template for this event
// type wins; then loyalty to an involved ally; then the neutral description.
func (p *Processor) Interpret(ev *events.WorldEvent, b *Bias) string {
	if int(ev.Type) >= events.NumEventTypes {
		return ev.Type.String() + " at " + ev.Location.Label() + "."
	}
	tmpls := traitTemplates[ev.Type]
	for _, t := range p.cfg.InterpretationOrder {
		if t == Loyal || b.Get(t) <= p.cfg.InterpretThreshold {
			continue
		}
		if tmpl, ok := tmpls[t]; ok {
			return fill(tmpl, ev, "")
		}
	}
	if b.Get(Loyal) > p.cfg.LoyaltyThreshold {
		if ally, ok := involvedAlly(ev, b); ok {
			if tmpl, ok := tmpls[Loyal]; ok {
				return fill(tmpl, ev, ally)
			}
		}
	}
	return fill(neutralTemplates[ev.Type], ev, "")
}

func involvedAlly(ev *events.WorldEvent, b *Bias) (string, bool) {
	for _, a := range ev.Actors {
		if b.IsAlly(a) {
			return a, true
		}
	}
	return "", false
}

// ExtractTags unions the event's tags with tags the bias reads into it.
func (p *Processor) ExtractTags(ev *events.WorldEvent, b *Bias) memory.Tags {
	tags := memory.NewTags(ev.Tags()...)
	th := p.cfg.TagThreshold
	if b.Get(Fearful) > th {
		tags = tags.Union([]string{"danger", "warning"})
	}
	if b.Get(Paranoid) > th {
		tags = tags.Add("suspicious")
	}
	if b.Get(Greedy) > th && ev.Type.IsCrime() {
		tags = tags.Add("money")
	}
	if b.Get(Cynical) > th {
		tags = tags.Add("typical")
	}
	return tags
}

// emotions returns fear, anger, sadness and curiosity for a witness.
func emotions(ev *events.WorldEvent, b *Bias) (fear, anger, sadness, curiosity float64) {
	n := ev.Notability
	allyHurt := 0.0
	if _, ok := involvedAlly(ev, b); ok {
		allyHurt = b.Get(Loyal)
	}

	switch ev.Type {
	case events.EventViolence:
		fear = 0.5*n + 0.4*b.Get(Fearful)
		anger = 0.3*n + 0.2*b.Get(Cynical) + 0.3*allyHurt
		sadness = 0.1 * n
		curiosity = 0.1 * b.Get(Curious)
	case events.EventDeath:
		fear = 0.4*n + 0.3*b.Get(Fearful)
		anger = 0.2*n + 0.2*allyHurt
		sadness = 0.6*n + 0.2*allyHurt
		curiosity = 0.1 * b.Get(Curious)
	case events.EventTheft:
		fear = 0.2*n + 0.3*b.Get(Paranoid)
		anger = 0.4*n + 0.3*b.Get(Greedy)
		curiosity = 0.2 * b.Get(Curious)
	case events.EventDiscovery:
		fear = 0.1 * b.Get(Fearful)
		curiosity = 0.5*n + 0.5*b.Get(Curious)
	case events.EventConversation:
		fear = 0.1 * b.Get(Paranoid)
		curiosity = 0.3 * b.Get(Curious)
	case events.EventTrade:
		anger = 0.2 * b.Get(Greedy) * n
		curiosity = 0.1 * b.Get(Curious)
	case events.EventKindness:
		curiosity = 0.2 * b.Get(Curious)
	case events.EventArrival:
		fear = n * (0.3*b.Get(Fearful) + 0.2*b.Get(Paranoid))
		curiosity = 0.4 * b.Get(Curious)
	}
	return bounds.Unit(fear), bounds.Unit(anger), bounds.Unit(sadness), bounds.Unit(curiosity)
}

// implicates reports whether ally is the one who acted in m: the first
// recorded actor, or the leading word of the summary when none are recorded.
func implicates(m *memory.Memory, ally string) bool {
	if len(m.Actors) > 0 {
		return m.Actors[0] == ally
	}
	subject, _, _ := strings.Cut(strings.TrimSpace(m.Summary), " ")
	return strings.TrimRight(subject, ".,;:!?") == ally
}

// ApplyBiasToRetelling returns a copy of m reshaped by how b tells stories.
// Loyal tellers soften what their allies did, never what was done to them; dramatic tellers escalate the
// wording and the emotional charge. m itself is not modified.
func (p *Processor) ApplyBiasToRetelling(m *memory.Memory, b *Bias) *memory.Memory {
	out := m.Clone()

	if b.Get(Loyal) > p.cfg.RetellThreshold {
		for _, ally := range b.Allies {
			if !implicates(out, ally) {
				continue
			}
			softened := false
			for _, s := range softeners {
				re := regexp.MustCompile(`\b` + regexp.QuoteMeta(ally+" "+s[0]) + `\b`)
				if loc := re.FindStringIndex(out.Summary); loc != nil {
					out.Summary = out.Summary[:loc[0]] + ally + " " + s[1] + out.Summary[loc[1]:]
					softened = true
				}
			}
			if !softened {
				out.Summary = strings.TrimRight(out.Summary, ". ") + ". I'm sure " + ally + " had good reason."
			}
			out.Anger *= 0.5
		}
	}

	if b.Get(Dramatic) > p.cfg.RetellThreshold {
		for _, in := range intensifiers {
			out.Summary = strings.Replace(out.Summary, in[0], in[1], 1)
		}
		out.EmotionalWeight = bounds.Unit(out.EmotionalWeight * p.cfg.RetellWeightGain)
	}
	return out
}
