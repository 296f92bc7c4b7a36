package memory

import (
	"sort"

	"github.com/talgya/hearsay/internal/world"
)

// Bank is one NPC's memory store. When full it prunes the memories with the
// lowest retention priority.
type Bank struct {
	Owner    string    `json:"owner"`
	Capacity int       `json:"capacity"`
	Memories []*Memory `json:"memories"`
}

// NewBank creates an empty bank. Capacity below 1 is raised to 1.
func NewBank(owner string, capacity int) *Bank {
	if capacity < 1 {
		capacity = 1
	}
	return &Bank{Owner: owner, Capacity: capacity}
}

// Add files a memory and prunes down to capacity. Returns the memories that
// were pruned, which may include m itself if it ranked lowest.
func (b *Bank) Add(m *Memory) []*Memory {
	b.Memories = append(b.Memories, m)
	if len(b.Memories) <= b.Capacity {
		return nil
	}
	return b.prune()
}

// prune drops the lowest-priority memories until within capacity.
// Ties go to the older memory.
func (b *Bank) prune() []*Memory {
	excess := len(b.Memories) - b.Capacity
	ranked := make([]int, len(b.Memories))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, c := b.Memories[ranked[i]], b.Memories[ranked[j]]
		pa, pc := a.RetentionPriority(), c.RetentionPriority()
		if pa != pc {
			return pa < pc
		}
		return a.Timestamp < c.Timestamp
	})

	drop := make(map[int]bool, excess)
	for _, idx := range ranked[:excess] {
		drop[idx] = true
	}

	var pruned []*Memory
	kept := b.Memories[:0]
	for i, m := range b.Memories {
		if drop[i] {
			pruned = append(pruned, m)
			continue
		}
		kept = append(kept, m)
	}
	// Clear the tail so pruned memories are not retained by the backing array.
	for i := len(kept); i < len(b.Memories); i++ {
		b.Memories[i] = nil
	}
	b.Memories = kept
	return pruned
}

// Decay ages every memory by dt and forgets those whose confidence fell
// below the threshold. Returns the forgotten memories.
func (b *Bank) Decay(dt float64, cfg Config) []*Memory {
	var forgotten []*Memory
	kept := b.Memories[:0]
	for _, m := range b.Memories {
		m.Decay(dt, cfg)
		if m.Forgotten(cfg) {
			forgotten = append(forgotten, m)
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(b.Memories); i++ {
		b.Memories[i] = nil
	}
	b.Memories = kept
	return forgotten
}

// Len returns the number of memories held.
func (b *Bank) Len() int {
	return len(b.Memories)
}

// Get returns the memory with the given id.
func (b *Bank) Get(id string) (*Memory, bool) {
	for _, m := range b.Memories {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Remove deletes a memory by id. Returns false when absent.
func (b *Bank) Remove(id string) bool {
	for i, m := range b.Memories {
		if m.ID == id {
			b.Memories = append(b.Memories[:i], b.Memories[i+1:]...)
			return true
		}
	}
	return false
}

// HasRumor reports whether any memory was formed from the given rumor.
func (b *Bank) HasRumor(rumorID string) bool {
	for _, m := range b.Memories {
		if m.RumorID == rumorID {
			return true
		}
	}
	return false
}

func (b *Bank) filter(keep func(*Memory) bool) []*Memory {
	var out []*Memory
	for _, m := range b.Memories {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// AboutSubject returns memories mentioning subject in summary, tags or actors.
func (b *Bank) AboutSubject(subject string) []*Memory {
	return b.filter(func(m *Memory) bool { return m.Mentions(subject) })
}

// WithTag returns memories carrying tag.
func (b *Bank) WithTag(tag string) []*Memory {
	return b.filter(func(m *Memory) bool { return m.Tags.Has(tag) })
}

// AtLocation returns memories of events at coord.
func (b *Bank) AtLocation(coord world.Coord) []*Memory {
	return b.filter(func(m *Memory) bool { return m.Location != nil && m.Location.Coord == coord })
}

// InvolvingActor returns memories in which actor took part.
func (b *Bank) InvolvingActor(actor string) []*Memory {
	return b.filter(func(m *Memory) bool { return m.Involves(actor) })
}

// MostRecent returns the most recent n memories ordered by timestamp descending.
func (b *Bank) MostRecent(n int) []*Memory {
	if len(b.Memories) == 0 || n <= 0 {
		return nil
	}

	// Copy and sort by timestamp descending.
	sorted := make([]*Memory, len(b.Memories))
	copy(sorted, b.Memories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// EmotionallySignificant returns memories with emotional weight >= threshold.
func (b *Bank) EmotionallySignificant(threshold float64) []*Memory {
	return b.filter(func(m *Memory) bool { return m.EmotionalWeight >= threshold })
}

// Shareable returns memories whose share probability is >= threshold, most
// shareable first.
func (b *Bank) Shareable(threshold float64) []*Memory {
	out := b.filter(func(m *Memory) bool { return m.ShareProbability() >= threshold })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ShareProbability() > out[j].ShareProbability()
	})
	return out
}

// Clone returns a deep copy of the bank.
func (b *Bank) Clone() *Bank {
	c := &Bank{Owner: b.Owner, Capacity: b.Capacity, Memories: make([]*Memory, len(b.Memories))}
	for i, m := range b.Memories {
		c.Memories[i] = m.Clone()
	}
	return c
}
