package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ffsplit/procfind"
)

var psCmd = &cobra.Command{
	Use:   "ps [name]",
	Short: "List processes matching a name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}

		infos, err := procfind.List(filter)
		if err != nil {
			return err
		}

		for _, info := range infos {
			fmt.Printf("%8d  %-24s %s\n", info.PID, info.Name, info.Exe)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(psCmd)
}
