package engine

import (
	"github.com/talgya/hearsay/internal/bounds"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/rumor"
)

// PlayerSpreadsRumor plants a claim from the player in target's mind.
// credibility (0–1) is how convincing the player was; the listener's own
// credulity and opinion of the player decide how much of it sticks. The
// rumor then circulates like any other.
func (e *Engine) PlayerSpreadsRumor(target, content string, credibility float64) (*memory.Memory, bool) {
	st, ok := e.npcs[target]
	if !ok || content == "" {
		return nil, false
	}
	credibility = bounds.Unit(credibility)

	r := &rumor.Rumor{
		ID:              e.rng.NewID(),
		Claim:           content,
		Tags:            memory.NewTags("player_rumor"),
		Confidence:      credibility,
		Carriers:        []string{target},
		OriginNPC:       events.PlayerID,
		OriginTime:      e.now,
		EmotionalWeight: 0.5 * credibility,
		Active:          true,
		LastSpread:      e.now,
		History: []rumor.Hop{{
			From:  events.PlayerID,
			To:    target,
			Time:  e.now,
			Claim: content,
		}},
	}
	e.rumors[r.ID] = r

	kind := e.network.SourceKind(target, events.PlayerID)
	m := rumor.ToMemory(e.tuning.Rumor, e.rng.NewID(), r, st.Bias, kind, events.PlayerID, e.now, nil)
	st.Remember(m)
	st.RefreshBehavior(e.now, e.tuning.Behavior)

	e.log.Debug("player rumor planted", "npc", target, "rumor", r.ID, "confidence", m.Confidence)
	return m, true
}
