// NPC memory access: filing, recall and ranked views over one NPC's bank.
package agents

import (
	"sort"

	"github.com/talgya/hearsay/internal/memory"
)

// Remember files a memory and returns whatever the bank pruned to make room.
func (s *State) Remember(m *memory.Memory) []*memory.Memory {
	return s.Memories.Add(m)
}

// Recall returns the memories about subject and reinforces each one, since
// remembering something keeps it fresh.
func (s *State) Recall(subject string, boost float64) []*memory.Memory {
	found := s.Memories.AboutSubject(subject)
	for _, m := range found {
		m.Reinforce(boost)
	}
	return found
}

// RecentMemories returns the most recent count memories, newest first.
func (s *State) RecentMemories(count int) []*memory.Memory {
	return s.Memories.MostRecent(count)
}

// ImportantMemories returns the top count memories by retention priority.
func (s *State) ImportantMemories(count int) []*memory.Memory {
	if count <= 0 {
		return nil
	}
	sorted := append([]*memory.Memory(nil), s.Memories.Memories...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RetentionPriority() > sorted[j].RetentionPriority()
	})
	if count < len(sorted) {
		sorted = sorted[:count]
	}
	return sorted
}
