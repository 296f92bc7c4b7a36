package behavior

// Tone is the emotional register of an NPC's lines.
type Tone string

const (
	ToneFriendly Tone = "friendly"
	ToneNeutral  Tone = "neutral"
	ToneWary     Tone = "wary"
	ToneHostile  Tone = "hostile"
	ToneFearful  Tone = "fearful"
)

// Willingness is how readily an NPC engages.
type Willingness string

const (
	WillingEager     Willingness = "eager"
	WillingWilling   Willingness = "willing"
	WillingReluctant Willingness = "reluctant"
	WillingRefuses   Willingness = "refuses"
)

// Honesty is whether an NPC tells the truth as it believes it.
type Honesty string

const (
	HonestyHonest    Honesty = "honest"
	HonestyEvasive   Honesty = "evasive"
	HonestyDeceptive Honesty = "deceptive"
)

// Detail is how much an NPC says.
type Detail string

const (
	DetailFull    Detail = "full"
	DetailPartial Detail = "partial"
	DetailMinimal Detail = "minimal"
)

// Dialogue bundles the hints dialogue and voice systems consume.
type Dialogue struct {
	Tone        Tone        `json:"tone"`
	Willingness Willingness `json:"willingness"`
	Honesty     Honesty     `json:"honesty"`
	Detail      Detail      `json:"detail"`
}

// DialogueRules are the modifier cut-offs behind each dialogue field. Each
// field's rules are checked in the order listed; the first match wins.
type DialogueRules struct {
	FearfulFears        float64 `json:"fearful_fears" yaml:"fearful_fears"`
	HostileThreatens    float64 `json:"hostile_threatens" yaml:"hostile_threatens"`
	HostileTrusts       float64 `json:"hostile_trusts" yaml:"hostile_trusts"` // Below
	WarySuspicion       float64 `json:"wary_suspicion" yaml:"wary_suspicion"`
	WaryTrusts          float64 `json:"wary_trusts" yaml:"wary_trusts"` // Below
	FriendlyTrusts      float64 `json:"friendly_trusts" yaml:"friendly_trusts"`
	EagerCooperates     float64 `json:"eager_cooperates" yaml:"eager_cooperates"`
	WillingCooperates   float64 `json:"willing_cooperates" yaml:"willing_cooperates"`
	ReluctantCooperates float64 `json:"reluctant_cooperates" yaml:"reluctant_cooperates"`
	DeceptiveReveals    float64 `json:"deceptive_reveals" yaml:"deceptive_reveals"` // Below
	EvasiveReveals      float64 `json:"evasive_reveals" yaml:"evasive_reveals"`     // Below
	EvasiveSuspicion    float64 `json:"evasive_suspicion" yaml:"evasive_suspicion"`
	FullReveals         float64 `json:"full_reveals" yaml:"full_reveals"`
	FullTrusts          float64 `json:"full_trusts" yaml:"full_trusts"`
	PartialReveals      float64 `json:"partial_reveals" yaml:"partial_reveals"`
}

// DefaultDialogueRules returns the standard dialogue cut-offs.
func DefaultDialogueRules() DialogueRules {
	return DialogueRules{
		FearfulFears:        0.5,
		HostileThreatens:    0.5,
		HostileTrusts:       -0.5,
		WarySuspicion:       0.3,
		WaryTrusts:          -0.2,
		FriendlyTrusts:      0.3,
		EagerCooperates:     0.5,
		WillingCooperates:   -0.1,
		ReluctantCooperates: -0.5,
		DeceptiveReveals:    -0.5,
		EvasiveReveals:      0,
		EvasiveSuspicion:    0.5,
		FullReveals:         0.5,
		FullTrusts:          0.3,
		PartialReveals:      -0.2,
	}
}

// DialogueFor derives dialogue hints. Each field has its own rules.
func DialogueFor(m Modifier, r DialogueRules) Dialogue {
	var d Dialogue

	switch {
	case m.Fears > r.FearfulFears:
		d.Tone = ToneFearful
	case m.Threatens > r.HostileThreatens || m.Trusts < r.HostileTrusts:
		d.Tone = ToneHostile
	case m.SuspiciousOf > r.WarySuspicion || m.Trusts < r.WaryTrusts:
		d.Tone = ToneWary
	case m.Trusts > r.FriendlyTrusts:
		d.Tone = ToneFriendly
	default:
		d.Tone = ToneNeutral
	}

	switch {
	case m.Cooperates > r.EagerCooperates:
		d.Willingness = WillingEager
	case m.Cooperates > r.WillingCooperates:
		d.Willingness = WillingWilling
	case m.Cooperates > r.ReluctantCooperates:
		d.Willingness = WillingReluctant
	default:
		d.Willingness = WillingRefuses
	}

	switch {
	case m.Reveals < r.DeceptiveReveals:
		d.Honesty = HonestyDeceptive
	case m.Reveals < r.EvasiveReveals || m.SuspiciousOf > r.EvasiveSuspicion:
		d.Honesty = HonestyEvasive
	default:
		d.Honesty = HonestyHonest
	}

	switch {
	case m.Reveals > r.FullReveals && m.Trusts > r.FullTrusts:
		d.Detail = DetailFull
	case m.Reveals > r.PartialReveals:
		d.Detail = DetailPartial
	default:
		d.Detail = DetailMinimal
	}
	return d
}

// Hints is the read contract downstream systems ask for per NPC.
type Hints struct {
	NPC           string   `json:"npc"`
	Modifier      Modifier `json:"modifier"`
	Response      Response `json:"response"`
	Dialogue      Dialogue `json:"dialogue"`
	Labels        []Label  `json:"labels,omitempty"`
	WillCooperate bool     `json:"will_cooperate"`
	WillShare     bool     `json:"will_share"`
}

// HintsFor assembles the full hint bundle for one NPC.
func HintsFor(npc string, m Modifier, labels []Label, cfg Config) Hints {
	return Hints{
		NPC:           npc,
		Modifier:      m,
		Response:      Classify(m, cfg),
		Dialogue:      DialogueFor(m, cfg.Dialogue),
		Labels:        labels,
		WillCooperate: WillCooperate(m, cfg),
		WillShare:     WillShareInfo(m, cfg),
	}
}
