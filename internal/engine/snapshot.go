package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/entropy"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/tile"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// ErrBadSnapshot is returned when a snapshot cannot be restored.
var ErrBadSnapshot = errors.New("malformed snapshot")

// Snapshot is the complete, JSON-compatible state of an engine. NPCs are in
// registration order; every other collection is sorted.
type Snapshot struct {
	Version   int                  `json:"version"`
	Now       float64              `json:"now"`
	Random    entropy.State        `json:"random"`
	Tuning    Tuning               `json:"tuning"`
	NPCs      []*agents.State      `json:"npcs"`
	Events    []*events.WorldEvent `json:"events"`
	Rumors    []*rumor.Rumor       `json:"rumors"`
	Tiles     []*tile.Memory       `json:"tiles"`
	Relations []*social.Relation   `json:"relations"`
	Emergent  []EmergentEvent      `json:"emergent"`
}

// Snapshot captures the engine state. The result shares nothing with the
// engine, so it can be encoded while the engine keeps running.
func (e *Engine) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:   SnapshotVersion,
		Now:       e.now,
		Random:    e.rng.State(),
		Tuning:    e.tuning,
		NPCs:      make([]*agents.State, 0, len(e.order)),
		Events:    make([]*events.WorldEvent, 0, len(e.events)),
		Rumors:    make([]*rumor.Rumor, 0, len(e.rumors)),
		Tiles:     make([]*tile.Memory, 0, e.atlas.Len()),
		Relations: make([]*social.Relation, 0, e.network.Len()),
		Emergent:  append([]EmergentEvent{}, e.emergent...),
	}
	for _, st := range e.NPCs() {
		s.NPCs = append(s.NPCs, st.Clone())
	}
	for _, ev := range e.events {
		s.Events = append(s.Events, ev.Clone())
	}
	for _, r := range e.Rumors() {
		s.Rumors = append(s.Rumors, r.Clone())
	}
	for _, t := range e.atlas.All() {
		s.Tiles = append(s.Tiles, t.Clone())
	}
	for _, r := range e.network.All() {
		s.Relations = append(s.Relations, r.Clone())
	}
	return s
}

// Marshal encodes the snapshot as JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a JSON snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

func (s *Snapshot) validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("version %d, want %d: %w", s.Version, SnapshotVersion, ErrBadSnapshot)
	}
	seen := make(map[string]bool, len(s.NPCs))
	for i, st := range s.NPCs {
		switch {
		case st == nil || st.ID == "":
			return fmt.Errorf("npc %d has no id: %w", i, ErrBadSnapshot)
		case seen[st.ID]:
			return fmt.Errorf("npc %s listed twice: %w", st.ID, ErrBadSnapshot)
		case st.Memories == nil || st.Bias == nil:
			return fmt.Errorf("npc %s is incomplete: %w", st.ID, ErrBadSnapshot)
		}
		if err := st.Bias.Validate(); err != nil {
			return fmt.Errorf("npc %s: %w", st.ID, err)
		}
		if st.Memories.Capacity < 1 {
			return fmt.Errorf("npc %s: memory capacity %d: %w", st.ID, st.Memories.Capacity, ErrBadSnapshot)
		}
		for j, m := range st.Memories.Memories {
			if m == nil || m.ID == "" {
				return fmt.Errorf("npc %s: memory %d has no id: %w", st.ID, j, ErrBadSnapshot)
			}
		}
		seen[st.ID] = true
	}
	for i, ev := range s.Events {
		if ev == nil {
			return fmt.Errorf("event %d is null: %w", i, ErrBadSnapshot)
		}
	}
	for _, r := range s.Rumors {
		if r == nil || r.ID == "" {
			return fmt.Errorf("rumor without id: %w", ErrBadSnapshot)
		}
	}
	for i, t := range s.Tiles {
		if t == nil {
			return fmt.Errorf("tile %d is null: %w", i, ErrBadSnapshot)
		}
	}
	for i, r := range s.Relations {
		if r == nil || r.From == "" || r.To == "" {
			return fmt.Errorf("relation %d has no endpoints: %w", i, ErrBadSnapshot)
		}
	}
	return nil
}

// Restore rebuilds an engine from a snapshot. The snapshot's tuning and
// random stream position are used; opts only supplies the logger. The
// snapshot is copied, so it can be restored again.
func Restore(s *Snapshot, opts Options) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("restore: nil snapshot: %w", ErrBadSnapshot)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	e := build(s.Tuning, entropy.Restore(s.Random), opts.Logger)
	e.now = s.Now
	for _, st := range s.NPCs {
		e.npcs[st.ID] = st.Clone()
		e.order = append(e.order, st.ID)
	}
	for _, ev := range s.Events {
		e.events = append(e.events, ev.Clone())
	}
	for _, r := range s.Rumors {
		c := r.Clone()
		e.rumors[c.ID] = c
		if c.OriginMemoryID != "" {
			e.byMemory[c.OriginMemoryID] = c.ID
		}
	}
	tiles := make([]*tile.Memory, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		tiles = append(tiles, t.Clone())
	}
	e.atlas.Load(tiles)
	rels := make([]*social.Relation, 0, len(s.Relations))
	for _, r := range s.Relations {
		rels = append(rels, r.Clone())
	}
	e.network.Load(rels)
	e.emergent = append([]EmergentEvent(nil), s.Emergent...)

	e.log.Info("world restored",
		slog.Int("npcs", len(e.npcs)),
		slog.Int("rumors", len(e.rumors)),
		slog.Float64("now", e.now),
	)
	return e, nil
}
