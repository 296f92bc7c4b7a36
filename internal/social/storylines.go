package social

import "fmt"

// StorylineKind names a pattern found in the graph.
type StorylineKind string

const (
	StoryFriendOfEnemy  StorylineKind = "friend_of_enemy"
	StoryHighTension    StorylineKind = "high_tension"
	StorySecretAlliance StorylineKind = "secret_alliance"
)

// Storyline is a dramatic pattern detected in the graph.
type Storyline struct {
	Kind        StorylineKind `json:"kind"`
	NPCs        []string      `json:"npcs"`
	Description string        `json:"description"`
}

// EmergentStorylines scans the graph for triangles where A's friend B is
// friends with A's enemy C, edges with tension above the threshold, and
// edges that dislike but still trust ("secret alliance").
func (n *Network) EmergentStorylines() []Storyline {
	var out []Storyline
	for _, a := range n.sources() {
		for _, ab := range n.Relations(a) {
			if !ab.Type.Friendly() {
				continue
			}
			for _, bc := range n.Relations(ab.To) {
				if bc.To == a || !bc.Type.Friendly() {
					continue
				}
				if ac, ok := n.Relation(a, bc.To); ok && ac.Type == Enemy {
					out = append(out, Storyline{
						Kind:        StoryFriendOfEnemy,
						NPCs:        []string{a, ab.To, bc.To},
						Description: fmt.Sprintf("%s's friend %s is close to %s's enemy %s", a, ab.To, a, bc.To),
					})
				}
			}
		}
	}

	for _, r := range n.All() {
		if r.Tension > n.cfg.StorylineTension {
			out = append(out, Storyline{
				Kind:        StoryHighTension,
				NPCs:        []string{r.From, r.To},
				Description: fmt.Sprintf("%s is close to breaking point with %s", r.From, r.To),
			})
		}
		if r.Affinity < 0 && r.Trust > 0 {
			out = append(out, Storyline{
				Kind:        StorySecretAlliance,
				NPCs:        []string{r.From, r.To},
				Description: fmt.Sprintf("%s openly dislikes %s yet trusts them", r.From, r.To),
			})
		}
	}
	return out
}
