// Command ffsplit is an autosplitter for FF1 Pixel Remaster. The run
// subcommand attaches to the game, polls its memory for battle and inventory
// changes, and routes split events to LiveSplit, the run log, and the status
// monitor. The remaining subcommands are offset-maintenance tools for when a
// game patch moves things.
package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:          "ffsplit",
	Short:        "FF1 Pixel Remaster autosplitter",
	SilenceUsage: true,
}

// Execute runs the CLI and exits through atexit so registered flushes (the
// run log batcher) always happen.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
