package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/logging"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

var (
	tavern    = world.Location{Coord: world.Coord{X: 3, Y: 4}, Name: "the Rusty Tankard"}
	graveyard = world.Location{Coord: world.Coord{X: 7, Y: 7}, Name: "the old graveyard"}
)

// demoNPC is one villager of the scripted demo. Nil traits use the archetype.
type demoNPC struct {
	id     string
	typ    agents.NPCType
	traits map[bias.Trait]float64
}

var village = []demoNPC{
	{id: "marta", typ: agents.TypeBartender},
	{id: "tomas", typ: agents.TypeGuard, traits: map[bias.Trait]float64{bias.Suspicious: 0.8, bias.Trusting: 0.1, bias.Loyal: 0.6}},
	{id: "elise", typ: agents.TypeMerchant},
	{id: "pip", typ: agents.TypeVillager, traits: map[bias.Trait]float64{bias.Dramatic: 0.8, bias.Curious: 0.7}},
	{id: "old_wen", typ: agents.TypeVillager, traits: map[bias.Trait]float64{bias.Trusting: 0.9, bias.Forgetful: 0.4}},
	{id: "drifter", typ: agents.TypeWanderer},
	{id: "brother_anselm", typ: agents.TypePriest},
}

func newDemoCmd() *cobra.Command {
	var (
		seed  int64
		hops  int
		crowd int
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted village and narrate what its NPCs come to believe",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = "warn"
			}
			logger, err := logging.New(level, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts := engine.DefaultOptions(seed)
			opts.Logger = logger
			e := engine.New(opts)
			if _, err := e.SpawnCrowd(crowd); err != nil {
				return err
			}
			return runDemo(cmd.OutOrStdout(), e, hops)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 7, "Random seed; the same seed replays the same story")
	cmd.Flags().IntVar(&hops, "hops", 5, "How many retellings to attempt along the gossip chain")
	cmd.Flags().IntVar(&crowd, "crowd", 0, "Generated villagers to add around the scripted cast")
	return cmd
}

func runDemo(out io.Writer, e *engine.Engine, hops int) error {
	for _, n := range village {
		var b *bias.Bias
		if n.traits != nil {
			var tr bias.Traits
			for k, v := range n.traits {
				tr[k] = v
			}
			var err error
			if b, err = bias.New(n.id, tr); err != nil {
				return err
			}
		}
		if _, err := e.RegisterNPC(n.id, n.typ, b); err != nil {
			return err
		}
	}

	section(out, "A theft at "+tavern.Name)
	ev := events.New("", 1, tavern, events.EventTheft, []string{events.PlayerID}, 0.7).
		WithDetail("item", "the strongbox").
		AddWitness("marta", events.WitnessDirect, 1, 1).
		AddWitness("pip", events.WitnessOverheard, 0.6, 6)
	for _, m := range e.ProcessEvent(ev) {
		fmt.Fprintf(out, "  %-8s remembers %q (confidence %s, %s)\n",
			m.OriginNPC, m.Summary, percent(m.Confidence), strings.Join(m.Tags, ", "))
	}
	if h, ok := e.BehaviorHints("marta"); ok {
		fmt.Fprintf(out, "  marta now answers the player in a %s tone and is %s to talk\n", h.Dialogue.Tone, h.Dialogue.Willingness)
	}

	section(out, "The story travels")
	chain := []string{"marta", "tomas", "elise", "pip", "old_wen", "drifter"}
	triggers := []rumor.Trigger{rumor.TriggerDrunk, rumor.TriggerInterrogated, rumor.TriggerTrade, rumor.TriggerGossip, rumor.TriggerGossip}
	for i := 0; i < hops && i+1 < len(chain); i++ {
		teller, listener := chain[i], chain[i+1]
		res := e.SimulateInteraction(teller, listener, triggers[i%len(triggers)], &tavern)
		if !res.Propagated {
			fmt.Fprintf(out, "  %s keeps quiet with %s\n", teller, listener)
			continue
		}
		r, _ := e.Rumor(res.RumorID)
		fmt.Fprintf(out, "  %s telling, %s to %s: %q\n", humanize.Ordinal(i+1), teller, listener, res.Claim)
		fmt.Fprintf(out, "      confidence %s, distortion %s", percent(r.Confidence), percent(r.Distortion))
		if len(res.Mutations) > 0 {
			fmt.Fprintf(out, ", changed by %s", strings.Join(res.Mutations, ", "))
		}
		fmt.Fprintln(out)
	}

	section(out, "Deaths at "+graveyard.Name)
	for i := 0; i < 3; i++ {
		death := events.New("", float64(10+i), graveyard, events.EventDeath, []string{"a stranger"}, 0.8).
			AddWitness("brother_anselm", events.WitnessIndirect, 0.8, 5)
		e.ProcessEvent(death)
	}
	if atm, ok := e.AtmosphereAt(graveyard.Coord); ok {
		fmt.Fprintf(out, "  %s feels %s: %s\n", graveyard.Name, atm.Mood, atm.Description)
		fmt.Fprintf(out, "  %s, danger %s, hints %s\n",
			english.Plural(atm.Deaths, "death", "deaths"), percent(atm.Danger), strings.Join(atm.Hints, ", "))
	}

	section(out, "The player plants a rumor")
	const lie = "the miller waters down his flour"
	for _, id := range []string{"old_wen", "tomas"} {
		if m, ok := e.PlayerSpreadsRumor(id, lie, 0.7); ok {
			fmt.Fprintf(out, "  %-8s believes it at %s\n", id, percent(m.Confidence))
		}
	}

	section(out, "A friendship sours")
	for i := 0; i < 6; i++ {
		if _, err := e.RecordInteraction("elise", "pip", social.Helped); err != nil {
			return err
		}
	}
	if rel, ok := e.Relation("pip", "elise"); ok {
		fmt.Fprintf(out, "  after six favors pip regards elise as %s\n", rel.Type)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.RecordInteraction("elise", "pip", social.Betrayed); err != nil {
			return err
		}
	}
	for _, em := range e.Update(1) {
		fmt.Fprintf(out, "  [%s] %s\n", em.Kind, em.Description)
	}
	for _, s := range e.Storylines() {
		fmt.Fprintf(out, "  storyline %s: %s\n", s.Kind, s.Description)
	}

	section(out, "Where things stand")
	st := e.Stats()
	fmt.Fprintf(out, "  %s, %s, %s (%d still spreading), %s\n",
		english.Plural(st.NPCs, "NPC", "NPCs"),
		english.Plural(st.Memories, "memory", "memories"),
		english.Plural(st.Rumors, "rumor", "rumors"), st.ActiveRumors,
		english.Plural(st.Relations, "relation", "relations"))
	fmt.Fprintf(out, "  %s random draws consumed\n", humanize.Comma(int64(e.Snapshot().Random.Draws)))
	return nil
}

func section(out io.Writer, title string) {
	fmt.Fprintf(out, "\n== %s ==\n", title)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
