package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/host"
	"github.com/talgya/hearsay/internal/persistence"
)

func newInspectCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the newest saved world",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			snap, info, err := db.LatestSnapshot(ctx)
			if errors.Is(err, persistence.ErrNoSnapshot) {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved world yet")
				return nil
			}
			if err != nil {
				return err
			}
			e, err := engine.Restore(snap, engine.Options{Logger: logger})
			if err != nil {
				return err
			}
			recent, err := db.RecentEmergent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "snapshot %d, tick %s, %s, saved %s\n",
				info.ID, humanize.Comma(info.Tick), host.SimTime(info.SimTime), humanize.Time(info.Time()))
			printWorld(out, e)
			if len(recent) > 0 {
				section(out, "Recent emergent events")
				for _, r := range recent {
					fmt.Fprintf(out, "  %s [%s] %s\n", host.SimTime(r.SimTime), r.Kind, r.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "How many stored emergent events to list")
	return cmd
}

func printWorld(out io.Writer, e *engine.Engine) {
	section(out, "NPCs")
	for _, st := range e.NPCs() {
		labels := make([]string, 0, len(st.Labels))
		for _, l := range st.Labels {
			labels = append(labels, l.String())
		}
		h, _ := e.BehaviorHints(st.ID)
		fmt.Fprintf(out, "  %-16s %-10s %s, %s", st.ID, st.Type, english.Plural(st.Memories.Len(), "memory", "memories"), h.Response)
		if len(labels) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(labels, ", "))
		}
		fmt.Fprintln(out)
		if top := st.ImportantMemories(1); len(top) > 0 {
			fmt.Fprintf(out, "      remembers most: %q\n", top[0].Summary)
		}
	}

	section(out, "Rumors")
	for _, r := range e.Rumors() {
		state := "spreading"
		if !r.Active {
			state = "dying"
		}
		fmt.Fprintf(out, "  %q\n      %s, %s, told %s, confidence %s\n",
			r.Claim, state, english.Plural(len(r.Carriers), "carrier", "carriers"),
			english.Plural(r.SpreadCount, "time", "times"), percent(r.Confidence))
	}

	if places := e.DangerousLocations(); len(places) > 0 {
		section(out, "Dangerous places")
		for _, a := range places {
			fmt.Fprintf(out, "  %s %s: danger %s, %s\n", a.Location.Label(), a.Location.Coord, percent(a.Danger), a.Description)
		}
	}
	if stories := e.Storylines(); len(stories) > 0 {
		section(out, "Storylines")
		for _, s := range stories {
			fmt.Fprintf(out, "  [%s] %s\n", s.Kind, s.Description)
		}
	}
}
