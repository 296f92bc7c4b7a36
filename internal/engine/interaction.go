package engine

import (
	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

// InteractionResult describes one exchange between two NPCs.
type InteractionResult struct {
	Teller      string                 `json:"teller"`
	Listener    string                 `json:"listener"`
	Trigger     rumor.Trigger          `json:"trigger"`
	Interaction social.InteractionKind `json:"interaction"`
	Recorded    bool                   `json:"recorded"` // False when either NPC is unknown
	Affinity    float64                `json:"affinity"` // Listener → teller after the exchange
	Trust       float64                `json:"trust"`
	Relation    social.RelationType    `json:"relation"`
	Propagated  bool                   `json:"propagated"`
	RumorID     string                 `json:"rumor_id,omitempty"`
	Claim       string                 `json:"claim,omitempty"`
	Mutations   []string               `json:"mutations,omitempty"`
	Memory      *memory.Memory         `json:"memory,omitempty"` // The listener's new memory
}

// interactionFor maps the circumstance of a conversation onto the social
// interaction it amounts to.
func interactionFor(t rumor.Trigger) social.InteractionKind {
	switch t {
	case rumor.TriggerTrade:
		return social.Traded
	case rumor.TriggerThreatened:
		return social.Threatened
	case rumor.TriggerBribed:
		return social.Bribed
	default:
		return social.Conversation
	}
}

// SimulateInteraction has teller talk to listener. The interaction is always
// recorded in the social graph; if the teller has something worth sharing
// that the listener hasn't heard, it may pass on as a rumor and become one of
// the listener's memories.
func (e *Engine) SimulateInteraction(teller, listener string, trigger rumor.Trigger, loc *world.Location) (res InteractionResult) {
	res = InteractionResult{
		Teller:      teller,
		Listener:    listener,
		Trigger:     trigger,
		Interaction: interactionFor(trigger),
	}
	t, ok := e.npcs[teller]
	if !ok {
		return res
	}
	l, ok := e.npcs[listener]
	if !ok || teller == listener {
		return res
	}

	// The listener weighs what it hears by how it regarded the teller
	// before this conversation.
	kind := e.network.SourceKind(listener, teller)
	rel := e.network.RecordInteraction(listener, teller, res.Interaction, e.now, true)
	res.Recorded = true
	defer func() {
		res.Affinity, res.Trust, res.Relation = rel.Affinity, rel.Trust, rel.Type
	}()

	m, r, fresh := e.pickShareable(t, listener)
	if r == nil {
		return res
	}

	next, ok := e.propagator.Propagate(r, t.Bias, l.Bias, trigger, e.now)
	if !ok {
		return res
	}
	if fresh {
		next.ID = e.rng.NewID()
		e.byMemory[m.ID] = next.ID
	}
	e.rumors[next.ID] = next
	m.RumorID = next.ID
	m.Reinforce(e.tuning.RecallBoost)

	heard := rumor.ToMemory(e.tuning.Rumor, e.rng.NewID(), next, l.Bias, kind, teller, e.now, loc)
	l.Remember(heard)
	l.RefreshBehavior(e.now, e.tuning.Behavior)

	e.network.ShareRumor(teller, listener, next.ID)
	e.network.ShareMemory(teller, listener, m.ID)
	e.network.RecordInteraction(listener, teller, social.SharedRumor, e.now, true)
	if loc != nil {
		e.atlas.NoteRumor(*loc)
	}

	res.Propagated = true
	res.RumorID = next.ID
	res.Claim = next.Claim
	res.Memory = heard.Clone()
	if n := len(next.History); n > 0 {
		res.Mutations = append([]string(nil), next.History[n-1].Applied...)
	}
	e.log.Debug("rumor spread",
		"rumor", next.ID,
		"from", teller,
		"to", listener,
		"trigger", trigger,
		"confidence", next.Confidence,
		"distortion", next.Distortion,
	)
	return res
}

// pickShareable returns the teller's most shareable memory whose rumor the
// listener doesn't already carry, together with that rumor. A memory that
// has never been told yet is detached into a fresh rumor (fresh=true) shaped
// by how the teller tells stories; its id is assigned only if it spreads.
func (e *Engine) pickShareable(t *agents.State, listener string) (*memory.Memory, *rumor.Rumor, bool) {
	for _, m := range t.Memories.Shareable(e.tuning.Memory.ShareThreshold) {
		if r := e.rumorFor(m); r != nil {
			if !r.Active || r.HasCarrier(listener) {
				continue
			}
			return m, r, false
		}
		told := e.processor.ApplyBiasToRetelling(m, t.Bias)
		return m, rumor.FromMemory("", told, t.ID, e.now, e.tuning.Rumor), true
	}
	return nil, nil, false
}

func (e *Engine) rumorFor(m *memory.Memory) *rumor.Rumor {
	if m.RumorID != "" {
		if r, ok := e.rumors[m.RumorID]; ok {
			return r
		}
	}
	if id, ok := e.byMemory[m.ID]; ok {
		return e.rumors[id]
	}
	return nil
}
