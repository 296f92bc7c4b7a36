package rumor

import (
	"strings"

	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/entropy"
)

// Mutation names recorded in a hop's history.
const (
	MutExaggeration = "exaggeration"
	MutSuspicion    = "suspicion"
	MutForgotDetail = "forgot_detail"
	MutCynicism     = "cynicism"
	MutSimplify     = "simplify"
	MutExaggerate   = "exaggerate"
	MutPersonalize  = "personalize"
	MutMisattribute = "misattribute"
)

// Retelling templates; {claim} is the current claim.
var exaggerationTemplates = []string{
	"{claim} And that's not even the worst of it.",
	"{claim} I heard it was far worse than anyone admits.",
	"{claim} The whole town is shaken.",
}

var suspicionTemplates = []string{
	"{claim} Someone is covering it up.",
	"{claim} I doubt it happened the way they say.",
	"{claim} Ask yourself who gains from it.",
}

var personalTouches = []string{
	" My cousin saw it with her own eyes.",
	" A friend of mine was right there.",
	" I knew something was wrong that very morning.",
	" My neighbour swears it's true.",
}

// escalations raise severity one step. The first key found in the claim wins.
var escalations = [][2]string{
	{"nearly died", "died"},
	{"was hurt", "nearly died"},
	{"got hurt", "nearly died"},
	{"got into a fight", "nearly killed each other"},
	{"argued", "came to blows"},
	{"stole something", "robbed the place blind"},
	{"took something", "made off with a fortune"},
	{"found something", "found a treasure"},
	{"talked", "plotted"},
	{"a few", "dozens of"},
}

// blames swap an innocent reading for a guilty one.
var blames = [][2]string{
	{"an accident", "a murder"},
	{"died", "was murdered"},
	{"fell", "was pushed"},
	{"lost", "had stolen"},
	{"borrowed", "stole"},
	{"helped", "used"},
}

var hopefulWords = []string{"help", "kind", "generous", "saved", "gift", "fair", "honest", "good", "brave"}

// Mutator rewrites a rumor as it passes from one NPC to another.
type Mutator struct {
	cfg Config
	rng *entropy.Source
}

// NewMutator creates a mutator drawing randomness from rng.
func NewMutator(cfg Config, rng *entropy.Source) *Mutator {
	return &Mutator{cfg: cfg, rng: rng}
}

// Mutate returns the state of r after source told it to target. r is not
// modified. Confidence drops, distortion grows and the hop is recorded.
func (m *Mutator) Mutate(r *Rumor, source, target *bias.Bias, from, to string, now float64) *Rumor {
	out := r.Clone()
	out.Confidence = bounds.Unit(out.Confidence * m.cfg.HopConfidence)
	out.Distortion = bounds.Unit(out.Distortion + m.cfg.HopDistortion)
	out.SpreadCount++
	out.LastSpread = now

	var applied []string
	th := m.cfg.BiasThreshold

	if source != nil {
		switch {
		case source.Get(bias.Dramatic) > th:
			out.Claim = fillClaim(entropy.Pick(m.rng, exaggerationTemplates), out.Claim)
			out.EmotionalWeight = bounds.Unit(out.EmotionalWeight * 1.1)
			applied = append(applied, MutExaggeration)
		case source.Get(bias.Paranoid) > th || source.Get(bias.Suspicious) > th:
			out.Claim = fillClaim(entropy.Pick(m.rng, suspicionTemplates), out.Claim)
			out.Tags = out.Tags.Add("suspicious")
			applied = append(applied, MutSuspicion)
		}
	}

	if target != nil {
		forget := m.cfg.ForgetDetailBase + m.cfg.ForgetDetailScale*target.Get(bias.Forgetful)
		if len(out.Details) > 0 && m.rng.Chance(forget) {
			out.Details = dropAt(out.Details, m.rng.Intn(len(out.Details)))
			applied = append(applied, MutForgotDetail)
		}
		if target.Get(bias.Cynical) > th {
			kept := out.Details[:0]
			for _, d := range out.Details {
				if !hopeful(d) {
					kept = append(kept, d)
				}
			}
			if len(kept) < len(out.Details) {
				applied = append(applied, MutCynicism)
			}
			out.Details = kept
		}
	}

	// Four independent rolls; each always consumes one draw.
	if m.rng.Chance(m.cfg.SimplifyChance) && len(out.Details) > 0 {
		out.Details = dropAt(out.Details, m.rng.Intn(len(out.Details)))
		applied = append(applied, MutSimplify)
	}
	if m.rng.Chance(m.cfg.ExaggerateChance) {
		if claim, ok := replaceFirst(out.Claim, escalations); ok {
			out.Claim = claim
			out.EmotionalWeight = bounds.Unit(out.EmotionalWeight + 0.1)
			applied = append(applied, MutExaggerate)
		}
	}
	if m.rng.Chance(m.cfg.PersonalizeChance) {
		out.Claim += entropy.Pick(m.rng, personalTouches)
		applied = append(applied, MutPersonalize)
	}
	if m.rng.Chance(m.cfg.MisattributeChance) {
		if claim, ok := replaceFirst(out.Claim, blames); ok {
			out.Claim = claim
			out.Anger = bounds.Unit(out.Anger + 0.1)
			applied = append(applied, MutMisattribute)
		}
	}

	out.History = append(out.History, Hop{
		Hop:     out.SpreadCount,
		From:    from,
		To:      to,
		Time:    now,
		Applied: applied,
		Claim:   out.Claim,
	})
	return out
}

func fillClaim(tmpl, claim string) string {
	return strings.Replace(tmpl, "{claim}", claim, 1)
}

func dropAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func replaceFirst(claim string, table [][2]string) (string, bool) {
	for _, pair := range table {
		if strings.Contains(claim, pair[0]) {
			return strings.Replace(claim, pair[0], pair[1], 1), true
		}
	}
	return claim, false
}

func hopeful(detail string) bool {
	d := strings.ToLower(detail)
	for _, w := range hopefulWords {
		if strings.Contains(d, w) {
			return true
		}
	}
	return false
}
