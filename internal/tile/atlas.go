package tile

import (
	"sort"

	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/world"
)

// Atlas holds tile memories keyed by coordinate. Tiles are created on the
// first event at a place and never removed.
type Atlas struct {
	cfg      Config
	ambience *world.Ambience
	tiles    map[world.Coord]*Memory
}

// NewAtlas creates an empty atlas. A nil ambience gives every tile the base rate.
func NewAtlas(cfg Config, ambience *world.Ambience) *Atlas {
	return &Atlas{
		cfg:      cfg,
		ambience: ambience,
		tiles:    make(map[world.Coord]*Memory),
	}
}

// Config returns the atlas constants.
func (a *Atlas) Config() Config {
	return a.cfg
}

func (a *Atlas) ensure(loc world.Location) *Memory {
	t, ok := a.tiles[loc.Coord]
	if !ok {
		t = New(loc, a.cfg.BaseDecayRate*a.ambience.At(loc.Coord))
		a.tiles[loc.Coord] = t
	}
	return t
}

// Record folds an event into the tile where it happened.
func (a *Atlas) Record(ev *events.WorldEvent) *Memory {
	t := a.ensure(ev.Location)
	t.AddEvent(ev, a.cfg)
	return t
}

// NoteRumor marks gossip exchanged at loc.
func (a *Atlas) NoteRumor(loc world.Location) {
	a.ensure(loc).NoteRumor(a.cfg)
}

// Decay relaxes every tile.
func (a *Atlas) Decay(dt float64) {
	for _, t := range a.tiles {
		t.Decay(dt, a.cfg)
	}
}

// At returns the tile at c.
func (a *Atlas) At(c world.Coord) (*Memory, bool) {
	t, ok := a.tiles[c]
	return t, ok
}

// Len returns the number of remembered places.
func (a *Atlas) Len() int {
	return len(a.tiles)
}

// All returns every tile ordered by coordinate.
func (a *Atlas) All() []*Memory {
	out := make([]*Memory, 0, len(a.tiles))
	for _, t := range a.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Location.Coord.Less(out[j].Location.Coord)
	})
	return out
}

// Dangerous returns dangerous tiles, most dangerous first, ties by coordinate.
func (a *Atlas) Dangerous() []*Memory {
	var out []*Memory
	for _, t := range a.tiles {
		if t.Dangerous(a.cfg) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Danger != out[j].Danger {
			return out[i].Danger > out[j].Danger
		}
		return out[i].Location.Coord.Less(out[j].Location.Coord)
	})
	return out
}

// Load replaces the atlas contents with restored tiles.
func (a *Atlas) Load(tiles []*Memory) {
	a.tiles = make(map[world.Coord]*Memory, len(tiles))
	for _, t := range tiles {
		a.tiles[t.Location.Coord] = t
	}
}
