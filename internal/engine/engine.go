// Package engine is the coordinator. It owns every NPC's mind, the rumor
// table, the tile atlas and the social graph, and exposes the only entry
// points that change them: register an NPC, process an event, simulate an
// interaction, advance time. It is synchronous and single-owner; hosts that
// share it across goroutines must serialize access.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/behavior"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/entropy"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/tile"
	"github.com/talgya/hearsay/internal/world"
)

// Options configures a new engine.
type Options struct {
	Seed   int64
	Tuning Tuning
	Logger *slog.Logger // Defaults to slog.Default()
}

// DefaultOptions returns options with the standard tuning.
func DefaultOptions(seed int64) Options {
	return Options{Seed: seed, Tuning: DefaultTuning()}
}

// EmergentEvent is a social event raised during Update, stamped with the
// engine time at which it happened.
type EmergentEvent struct {
	Time float64 `json:"time"`
	social.Emergent
}

// Engine holds the complete simulation state.
type Engine struct {
	tuning Tuning
	log    *slog.Logger

	rng        *entropy.Source
	processor  *bias.Processor
	propagator *rumor.Propagator
	spawner    *agents.Spawner

	npcs  map[string]*agents.State
	order []string // Registration order

	events   []*events.WorldEvent
	rumors   map[string]*rumor.Rumor
	byMemory map[string]string // Origin memory id → rumor id
	atlas    *tile.Atlas
	network  *social.Network
	emergent []EmergentEvent

	now float64
}

// New creates an empty world.
func New(opts Options) *Engine {
	return build(opts.Tuning, entropy.New(opts.Seed), opts.Logger)
}

func build(t Tuning, rng *entropy.Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		tuning:     t,
		log:        logger,
		rng:        rng,
		processor:  bias.NewProcessor(t.Bias, rng),
		propagator: rumor.NewPropagator(t.Rumor, rng),
		spawner:    agents.NewSpawner(rng),
		npcs:       make(map[string]*agents.State),
		rumors:     make(map[string]*rumor.Rumor),
		byMemory:   make(map[string]string),
		atlas:      tile.NewAtlas(t.Tile, world.NewAmbience(t.Ambience)),
		network:    social.NewNetwork(t.Social),
	}
}

// Tuning returns the engine's constants.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// Now returns the engine clock.
func (e *Engine) Now() float64 {
	return e.now
}

// RegisterNPC adds an NPC. A nil bias takes the type's archetype, or random
// traits for types without one. Registering an existing id returns the
// existing state unchanged.
func (e *Engine) RegisterNPC(id string, t agents.NPCType, b *bias.Bias) (*agents.State, error) {
	if id == "" {
		return nil, fmt.Errorf("register npc: empty id")
	}
	if st, ok := e.npcs[id]; ok {
		return st, nil
	}
	if b == nil {
		var err error
		if b, err = e.spawner.BiasFor(id, t); err != nil {
			return nil, fmt.Errorf("register %s: %w", id, err)
		}
	} else {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("register %s: %w", id, err)
		}
		b = b.Clone()
		b.NPC = id
	}
	st := agents.NewState(id, t, b)
	st.LastUpdate = e.now
	e.npcs[id] = st
	e.order = append(e.order, id)
	e.log.Debug("npc registered", "npc", id, "type", t)
	return st, nil
}

// SpawnCrowd registers count generated NPCs with random types and names.
// A generated id that is already registered is skipped.
func (e *Engine) SpawnCrowd(count int) ([]*agents.State, error) {
	crowd, err := e.spawner.SpawnCrowd(count)
	if err != nil {
		return nil, err
	}
	out := make([]*agents.State, 0, len(crowd))
	for _, st := range crowd {
		if _, taken := e.npcs[st.ID]; taken {
			continue
		}
		st.LastUpdate = e.now
		e.npcs[st.ID] = st
		e.order = append(e.order, st.ID)
		out = append(out, st)
	}
	e.log.Info("crowd spawned", "requested", count, "registered", len(out))
	return out, nil
}

// ProcessEvent forms one memory per registered witness, files it, refreshes
// the witness's behavior and records the event on its tile. Witnesses that
// are not registered are skipped.
func (e *Engine) ProcessEvent(ev *events.WorldEvent) []*memory.Memory {
	ev = ev.Clone()
	if ev.ID == "" {
		ev.ID = e.rng.NewID()
	}
	if ev.Timestamp > e.now {
		e.now = ev.Timestamp
	}
	e.events = append(e.events, ev)
	if limit := e.tuning.MaxEvents; limit > 0 && len(e.events) > limit {
		e.events = append([]*events.WorldEvent(nil), e.events[len(e.events)-limit:]...)
	}

	var formed []*memory.Memory
	for _, w := range ev.Witnesses {
		st, ok := e.npcs[w.NPC]
		if !ok {
			e.log.Debug("witness not registered", "event", ev.ID, "npc", w.NPC)
			continue
		}
		m := e.processor.FormMemory(ev, st.Bias, w)
		st.Remember(m)
		st.RefreshBehavior(e.now, e.tuning.Behavior)
		formed = append(formed, m)
	}
	e.atlas.Record(ev)

	e.log.Debug("event processed",
		"event", ev.ID,
		"type", ev.Type,
		"location", ev.Location.Label(),
		"memories", len(formed),
	)
	return formed
}

// Update advances the world by dt: NPC memory decay and behavior refresh,
// tile decay, social dynamics, then rumor decay. A failure in one NPC is
// logged and the rest still update. Negative dt is ignored.
func (e *Engine) Update(dt float64) []EmergentEvent {
	if dt < 0 {
		return nil
	}
	e.now += dt

	for _, id := range e.order {
		if err := e.updateNPC(e.npcs[id], dt); err != nil {
			e.log.Warn("npc update failed", "npc", id, "error", err)
		}
	}

	e.atlas.Decay(dt)

	var raised []EmergentEvent
	for _, em := range e.network.Update(dt) {
		ev := EmergentEvent{Time: e.now, Emergent: em}
		raised = append(raised, ev)
		e.reconsider(em)
		e.log.Info("emergent event", "kind", em.Kind, "from", em.From, "to", em.To, "description", em.Description)
	}
	e.emergent = append(e.emergent, raised...)
	if limit := e.tuning.MaxEmergent; limit > 0 && len(e.emergent) > limit {
		e.emergent = append([]EmergentEvent(nil), e.emergent[len(e.emergent)-limit:]...)
	}

	e.decayRumors(dt)
	return raised
}

// reconsider drops the stale side of an NPC's loyalties after a social
// turn: an ally it confronts, or an enemy it makes peace with.
func (e *Engine) reconsider(em social.Emergent) {
	st, ok := e.npcs[em.From]
	if !ok {
		return
	}
	switch {
	case em.Kind == social.EmergentConflict && st.Bias.IsAlly(em.To),
		em.Kind == social.EmergentReconciliation && st.Bias.IsEnemy(em.To):
		st.Bias.Forget(em.To)
		e.log.Debug("loyalty dropped", "npc", em.From, "other", em.To, "kind", em.Kind)
	}
}

func (e *Engine) updateNPC(st *agents.State, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered: %v", r)
		}
	}()
	forgotten := st.Memories.Decay(dt, e.tuning.Memory)
	st.RefreshBehavior(e.now, e.tuning.Behavior)
	if len(forgotten) > 0 {
		e.log.Debug("memories forgotten", "npc", st.ID, "count", len(forgotten))
	}
	return nil
}

// decayRumors fades every rumor, drops carriers who no longer remember it,
// and removes rumors that are inactive with fewer than two carriers.
func (e *Engine) decayRumors(dt float64) {
	for _, id := range e.rumorIDs() {
		r := e.rumors[id]
		r.Decay(dt, e.tuning.Rumor)
		for _, c := range append([]string(nil), r.Carriers...) {
			st, ok := e.npcs[c]
			if !ok || !st.Memories.HasRumor(r.ID) {
				r.RemoveCarrier(c)
			}
		}
		if r.Expired() {
			delete(e.rumors, id)
			if r.OriginMemoryID != "" {
				delete(e.byMemory, r.OriginMemoryID)
			}
			e.log.Debug("rumor died out", "rumor", id)
		}
	}
}

func (e *Engine) rumorIDs() []string {
	ids := make([]string, 0, len(e.rumors))
	for id := range e.rumors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NPC returns an NPC's state.
func (e *Engine) NPC(id string) (*agents.State, bool) {
	st, ok := e.npcs[id]
	return st, ok
}

// NPCs returns every NPC in registration order.
func (e *Engine) NPCs() []*agents.State {
	out := make([]*agents.State, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.npcs[id])
	}
	return out
}

// BehaviorHints returns the dialogue and AI hints for an NPC.
func (e *Engine) BehaviorHints(npc string) (behavior.Hints, bool) {
	st, ok := e.npcs[npc]
	if !ok {
		return behavior.Hints{}, false
	}
	return st.Hints(e.tuning.Behavior), true
}

// WillCooperate reports whether an NPC would cooperate. Unknown NPCs don't.
func (e *Engine) WillCooperate(npc string) bool {
	st, ok := e.npcs[npc]
	return ok && behavior.WillCooperate(st.Behavior, e.tuning.Behavior)
}

// WillShareInfo reports whether an NPC would share what it knows.
func (e *Engine) WillShareInfo(npc string) bool {
	st, ok := e.npcs[npc]
	return ok && behavior.WillShareInfo(st.Behavior, e.tuning.Behavior)
}

// AtmosphereAt returns the atmosphere of a remembered place.
func (e *Engine) AtmosphereAt(c world.Coord) (tile.Atmosphere, bool) {
	t, ok := e.atlas.At(c)
	if !ok {
		return tile.Atmosphere{}, false
	}
	return t.Atmosphere(e.tuning.Tile), true
}

// DangerousLocations returns dangerous places, most dangerous first.
func (e *Engine) DangerousLocations() []tile.Atmosphere {
	var out []tile.Atmosphere
	for _, t := range e.atlas.Dangerous() {
		out = append(out, t.Atmosphere(e.tuning.Tile))
	}
	return out
}

// ShouldAvoid reports whether an NPC with the given fear avoids a place.
func (e *Engine) ShouldAvoid(c world.Coord, fear float64) bool {
	t, ok := e.atlas.At(c)
	return ok && t.ShouldNPCAvoid(fear, e.tuning.Tile)
}

// SetRelationType fixes how from regards to, e.g. family set by story.
// Both NPCs must be registered.
func (e *Engine) SetRelationType(from, to string, t social.RelationType) error {
	for _, id := range []string{from, to} {
		if _, ok := e.npcs[id]; !ok {
			return fmt.Errorf("set relation %s → %s: unknown npc %s", from, to, id)
		}
	}
	e.network.SetType(from, to, t)
	return nil
}

// RecordInteraction records that actor did kind to target at the current
// time. The target's view of the actor takes the full effect.
func (e *Engine) RecordInteraction(actor, target string, kind social.InteractionKind) (*social.Relation, error) {
	for _, id := range []string{actor, target} {
		if _, ok := e.npcs[id]; !ok {
			return nil, fmt.Errorf("record %s by %s: unknown npc %s", kind, actor, id)
		}
	}
	if actor == target {
		return nil, fmt.Errorf("record %s: %s cannot act on itself", kind, actor)
	}
	return e.network.RecordInteraction(target, actor, kind, e.now, true), nil
}

// ShareSecret records a secret known to both a and b.
func (e *Engine) ShareSecret(a, b, secret string) error {
	if secret == "" {
		return errors.New("share secret: empty secret")
	}
	for _, id := range []string{a, b} {
		if _, ok := e.npcs[id]; !ok {
			return fmt.Errorf("share secret: unknown npc %s", id)
		}
	}
	if a == b {
		return fmt.Errorf("share secret: %s cannot confide in itself", a)
	}
	e.network.ShareSecret(a, b, secret)
	return nil
}

// Recall has npc think back on subject. Every memory it finds is reinforced;
// copies are returned.
func (e *Engine) Recall(npc, subject string) ([]*memory.Memory, bool) {
	st, ok := e.npcs[npc]
	if !ok {
		return nil, false
	}
	found := st.Recall(subject, e.tuning.RecallBoost)
	out := make([]*memory.Memory, len(found))
	for i, m := range found {
		out[i] = m.Clone()
	}
	return out, true
}

// Storylines scans the social graph for emergent storylines.
func (e *Engine) Storylines() []social.Storyline {
	return e.network.EmergentStorylines()
}

// Relation returns how a regards b.
func (e *Engine) Relation(a, b string) (*social.Relation, bool) {
	return e.network.Relation(a, b)
}

// Rumors returns every circulating rumor ordered by id.
func (e *Engine) Rumors() []*rumor.Rumor {
	out := make([]*rumor.Rumor, 0, len(e.rumors))
	for _, id := range e.rumorIDs() {
		out = append(out, e.rumors[id])
	}
	return out
}

// Rumor returns one rumor.
func (e *Engine) Rumor(id string) (*rumor.Rumor, bool) {
	r, ok := e.rumors[id]
	return r, ok
}

// Events returns the retained event history, oldest first.
func (e *Engine) Events() []*events.WorldEvent {
	return e.events
}

// Emergent returns the retained emergent social events, oldest first.
func (e *Engine) Emergent() []EmergentEvent {
	return e.emergent
}

// Stats is a headcount of the world.
type Stats struct {
	Now          float64 `json:"now"`
	NPCs         int     `json:"npcs"`
	Memories     int     `json:"memories"`
	Events       int     `json:"events"`
	Rumors       int     `json:"rumors"`
	ActiveRumors int     `json:"active_rumors"`
	Tiles        int     `json:"tiles"`
	Relations    int     `json:"relations"`
	Emergent     int     `json:"emergent"`
}

// Stats counts the world's contents.
func (e *Engine) Stats() Stats {
	s := Stats{
		Now:       e.now,
		NPCs:      len(e.npcs),
		Events:    len(e.events),
		Rumors:    len(e.rumors),
		Tiles:     e.atlas.Len(),
		Relations: e.network.Len(),
		Emergent:  len(e.emergent),
	}
	for _, st := range e.npcs {
		if st.Memories != nil {
			s.Memories += st.Memories.Len()
		}
	}
	for _, r := range e.rumors {
		if r.Active {
			s.ActiveRumors++
		}
	}
	return s
}
