// Archetype personalities: the default traits each NPC type is born with.
// Wanderers have no template and draw their traits from the spawner.
package agents

import "github.com/talgya/hearsay/internal/bias"

type traitSet map[bias.Trait]float64

// archetypeTemplates maps NPC type to its personality.
var archetypeTemplates = map[NPCType]traitSet{
	TypeBystander: {
		bias.Fearful:        0.5,
		bias.Talkative:      0.3,
		bias.SelfPreserving: 0.6,
		bias.Trusting:       0.5,
		bias.Forgetful:      0.5,
	},
	TypeVillager: {
		bias.Fearful:   0.4,
		bias.Loyal:     0.5,
		bias.Talkative: 0.5,
		bias.Curious:   0.4,
		bias.Trusting:  0.5,
		bias.Forgetful: 0.3,
	},
	TypeGuard: {
		bias.Fearful:        0.2,
		bias.Paranoid:       0.4,
		bias.Loyal:          0.8,
		bias.SelfPreserving: 0.3,
		bias.Suspicious:     0.7,
		bias.Obsessive:      0.4,
	},
	TypeMerchant: {
		bias.Talkative:      0.6,
		bias.Greedy:         0.8,
		bias.SelfPreserving: 0.6,
		bias.Curious:        0.5,
		bias.Cynical:        0.4,
		bias.Trusting:       0.3,
	},
	TypeBartender: {
		bias.Loyal:     0.4,
		bias.Talkative: 0.8,
		bias.Curious:   0.6,
		bias.Dramatic:  0.5,
		bias.Trusting:  0.5,
	},
	TypePriest: {
		bias.Loyal:     0.6,
		bias.Talkative: 0.5,
		bias.Dramatic:  0.3,
		bias.Cynical:   0.1,
		bias.Trusting:  0.7,
	},
	TypeNoble: {
		bias.Paranoid:       0.5,
		bias.Greedy:         0.6,
		bias.SelfPreserving: 0.7,
		bias.Dramatic:       0.4,
		bias.Cynical:        0.6,
		bias.Suspicious:     0.5,
	},
	TypeInformant: {
		bias.Paranoid:   0.5,
		bias.Talkative:  0.7,
		bias.Greedy:     0.5,
		bias.Curious:    0.8,
		bias.Suspicious: 0.6,
		bias.Obsessive:  0.6,
	},
	TypeCrimeBoss: {
		bias.Paranoid:       0.8,
		bias.Loyal:          0.6,
		bias.Greedy:         0.8,
		bias.SelfPreserving: 0.8,
		bias.Cynical:        0.7,
		bias.Suspicious:     0.8,
	},
}

// Archetype returns the template traits for t. Types without a template
// (wanderers) report false.
func Archetype(t NPCType) (bias.Traits, bool) {
	set, ok := archetypeTemplates[t]
	if !ok {
		return bias.Traits{}, false
	}
	var tr bias.Traits
	for trait, v := range set {
		tr[trait] = v
	}
	return tr, true
}
