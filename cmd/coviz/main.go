// Package main provides the coviz CLI entry point.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// Persistent flags shared by every command.
var (
	humanOutput bool
	verbose     bool
	metricsFile string
	noCache     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so report here in the requested format
		reportError(err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "coviz",
	Short: "Coauthorship network layouts",
	Long: `coviz builds a researcher's coauthorship network and lays it out with a
force-directed simulation.

Papers come from ASTA (Semantic Scholar) or a local JSONL file and are cached
in SQLite together with computed layouts. Large graphs are laid out on a
background worker with a timeout.

All commands output JSON by default for AI agent integration.

Environment Variables:
  ASTA_API_KEY  Your ASTA API key (required for online lookups)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
	},
}

func init() {
	// Load .env file if present (for ASTA_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the layout cache")
	rootCmd.Version = Version
}
