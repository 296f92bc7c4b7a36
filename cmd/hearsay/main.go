// Command hearsay runs the NPC memory and rumor simulation: as a long-lived
// server, as a scripted demo, or to inspect saved worlds.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hearsay",
		Short: "Subjective NPC memory, rumor and social simulation",
		Long: `hearsay gives NPCs biased, decaying memories of world events, lets what
they know spread and mutate as rumor through their relationships, and
turns accumulated belief into behavior and dialogue hints.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "hearsay.yaml", "Config file (missing file uses defaults)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newDemoCmd(),
		newInspectCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hearsay version %s\n", version)
		},
	}
}
