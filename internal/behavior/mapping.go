package behavior

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/hearsay/internal/memory"
)

// ErrUnknownName is returned when decoding a label or response name that does not exist.
var ErrUnknownName = errors.New("unknown behavior name")

// Label names the behavior a memory tag pushes an NPC toward.
type Label uint8

const (
	LabelFlee Label = iota
	LabelDistrust
	LabelCautious
	LabelHelp
	LabelWelcome
	LabelCurious
	LabelGossip
	LabelBargain
)

var labelNames = [...]string{"flee", "distrust", "cautious", "help", "welcome", "curious", "gossip", "bargain"}

// String returns the label name.
func (l Label) String() string {
	if int(l) < len(labelNames) {
		return labelNames[l]
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// MarshalText encodes the label by name.
func (l Label) MarshalText() ([]byte, error) {
	if int(l) >= len(labelNames) {
		return nil, fmt.Errorf("label %d: %w", uint8(l), ErrUnknownName)
	}
	return []byte(labelNames[l]), nil
}

// UnmarshalText decodes a label name.
func (l *Label) UnmarshalText(b []byte) error {
	for i, n := range labelNames {
		if n == string(b) {
			*l = Label(i)
			return nil
		}
	}
	return fmt.Errorf("label %q: %w", string(b), ErrUnknownName)
}

// Response is the coarse reaction an NPC shows the player.
type Response uint8

const (
	ResponseNeutral Response = iota
	ResponseFlee
	ResponseHelp
	ResponseLie
	ResponseRefuse
)

var responseNames = [...]string{"neutral", "flee", "help", "lie", "refuse"}

// String returns the response name.
func (r Response) String() string {
	if int(r) < len(responseNames) {
		return responseNames[r]
	}
	return fmt.Sprintf("Response(%d)", uint8(r))
}

// MarshalText encodes the response by name.
func (r Response) MarshalText() ([]byte, error) {
	if int(r) >= len(responseNames) {
		return nil, fmt.Errorf("response %d: %w", uint8(r), ErrUnknownName)
	}
	return []byte(responseNames[r]), nil
}

// UnmarshalText decodes a response name.
func (r *Response) UnmarshalText(b []byte) error {
	for i, n := range responseNames {
		if n == string(b) {
			*r = Response(i)
			return nil
		}
	}
	return fmt.Errorf("response %q: %w", string(b), ErrUnknownName)
}

// Mapping is what one memory tag does to a disposition.
type Mapping struct {
	Label    Label
	Modifier Modifier
}

var tagTable = map[string]Mapping{
	"player_violent":  {LabelFlee, Modifier{Fears: 0.3, Cooperates: -0.6, Trusts: -0.4}},
	"player_killer":   {LabelFlee, Modifier{Fears: 0.5, Cooperates: -0.7, Trusts: -0.7, SuspiciousOf: 0.5}},
	"player_thief":    {LabelDistrust, Modifier{Trusts: -0.5, Reveals: -0.3, Cooperates: -0.3, SuspiciousOf: 0.6}},
	"player_helpful":  {LabelHelp, Modifier{Trusts: 0.4, Cooperates: 0.5, Reveals: 0.3, Respects: 0.3}},
	"player_trader":   {LabelWelcome, Modifier{Trusts: 0.2, Cooperates: 0.3}},
	"player_talked":   {LabelWelcome, Modifier{Trusts: 0.1, Reveals: 0.1}},
	"player_explorer": {LabelCurious, Modifier{Respects: 0.2, Reveals: 0.1}},
	"player_arrived":  {LabelCautious, Modifier{Trusts: -0.1, SuspiciousOf: 0.2}},
	"danger":          {LabelCautious, Modifier{Fears: 0.2}},
	"violence":        {LabelCautious, Modifier{Fears: 0.15, Cooperates: -0.1}},
	"death":           {LabelCautious, Modifier{Fears: 0.2}},
	"crime":           {LabelDistrust, Modifier{SuspiciousOf: 0.2}},
	"conspiracy":      {LabelDistrust, Modifier{SuspiciousOf: 0.3, Reveals: -0.2}},
	"suspicious":      {LabelDistrust, Modifier{SuspiciousOf: 0.2, Trusts: -0.1}},
	"warning":         {LabelCautious, Modifier{Fears: 0.1, Reveals: 0.1}},
	"help":            {LabelHelp, Modifier{Trusts: 0.1}},
	"rumor":           {LabelGossip, Modifier{Reveals: 0.1}},
	"money":           {LabelBargain, Modifier{Cooperates: 0.05, Threatens: 0.05}},
}

// Lookup returns the mapping for a tag.
func Lookup(tag string) (Mapping, bool) {
	m, ok := tagTable[tag]
	return m, ok
}

// Config holds the behavior constants.
type Config struct {
	RecencyDecay float64 `json:"recency_decay" yaml:"recency_decay"` // Weight lost per time unit of age
	MinRecency   float64 `json:"min_recency" yaml:"min_recency"`

	FleeFear        float64 `json:"flee_fear" yaml:"flee_fear"`
	HelpTrust       float64 `json:"help_trust" yaml:"help_trust"`
	LieReveals      float64 `json:"lie_reveals" yaml:"lie_reveals"`
	RefuseCooperate float64 `json:"refuse_cooperate" yaml:"refuse_cooperate"`
	ShareReveals    float64 `json:"share_reveals" yaml:"share_reveals"`
	ShareTrust      float64 `json:"share_trust" yaml:"share_trust"`

	DominantLabels int `json:"dominant_labels" yaml:"dominant_labels"`

	Dialogue DialogueRules `json:"dialogue" yaml:"dialogue"`
}

// DefaultConfig returns the standard behavior constants.
func DefaultConfig() Config {
	return Config{
		RecencyDecay:    0.01,
		MinRecency:      0.1,
		FleeFear:        0.5,
		HelpTrust:       0.5,
		LieReveals:      -0.5,
		RefuseCooperate: -0.3,
		ShareReveals:    -0.2,
		ShareTrust:      -0.5,
		DominantLabels:  3,
		Dialogue:        DefaultDialogueRules(),
	}
}

// Recency weights a memory by age: 1 when fresh, never below MinRecency.
func (c Config) Recency(age float64) float64 {
	w := 1 - age*c.RecencyDecay
	if w < c.MinRecency {
		w = c.MinRecency
	}
	if w > 1 {
		w = 1
	}
	return w
}

// Aggregate recomputes a disposition from the whole memory set. Each tagged
// memory contributes its tag modifiers scaled by confidence and recency.
func Aggregate(memories []*memory.Memory, now float64, cfg Config) Modifier {
	var mod Modifier
	for _, m := range memories {
		w := m.Confidence * cfg.Recency(now-m.Timestamp)
		for _, tag := range m.Tags {
			if mp, ok := Lookup(tag); ok {
				mod.Apply(mp.Modifier.Scale(w))
			}
		}
	}
	return mod
}

// DominantLabels returns the labels carrying the most weight across the
// memories, heaviest first.
func DominantLabels(memories []*memory.Memory, now float64, cfg Config) []Label {
	weights := make(map[Label]float64)
	for _, m := range memories {
		w := m.Confidence * cfg.Recency(now-m.Timestamp)
		for _, tag := range m.Tags {
			if mp, ok := Lookup(tag); ok {
				weights[mp.Label] += w
			}
		}
	}
	labels := make([]Label, 0, len(weights))
	for l, w := range weights {
		if w > 0 {
			labels = append(labels, l)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		wi, wj := weights[labels[i]], weights[labels[j]]
		if wi != wj {
			return wi > wj
		}
		return labels[i] < labels[j]
	})
	if n := cfg.DominantLabels; n > 0 && len(labels) > n {
		labels = labels[:n]
	}
	return labels
}

// Classify runs the response ladder; the first rule that holds wins.
func Classify(m Modifier, cfg Config) Response {
	switch {
	case m.Fears > cfg.FleeFear:
		return ResponseFlee
	case m.Trusts > cfg.HelpTrust:
		return ResponseHelp
	case m.Reveals < cfg.LieReveals:
		return ResponseLie
	case m.Cooperates < cfg.RefuseCooperate:
		return ResponseRefuse
	default:
		return ResponseNeutral
	}
}

// WillCooperate reports whether the NPC would go along with a request.
func WillCooperate(m Modifier, cfg Config) bool {
	return m.Cooperates >= cfg.RefuseCooperate && m.Fears <= cfg.FleeFear
}

// WillShareInfo reports whether the NPC would tell what it knows.
func WillShareInfo(m Modifier, cfg Config) bool {
	return m.Reveals > cfg.ShareReveals && m.Trusts > cfg.ShareTrust
}
