package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Daily manipulation tracker for NSE equities",
	Long: `Daily Manipulation Tracker

Pulls NSE end-of-day files, derives rolling stats, and scores every
eligible security against seven pump-and-dump signal patterns.

The three pipeline stages are independently runnable and communicate
only through the database:

  go run ./cmd/tracker ingest --date 2026-08-28
  go run ./cmd/tracker score  --date 2026-08-28
  go run ./cmd/tracker api

Or let the scheduler drive the nightly run:

  go run ./cmd/tracker scheduler`,
}

// Execute runs the root command. Called once, from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
