package main

import (
	"errors"
	"fmt"

	gops "github.com/shirou/gopsutil/process"
	"github.com/spf13/cobra"

	"ffsplit/process"
	"ffsplit/process_blob"
)

var (
	snapPID  int
	snapOut  string
	snapName string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a process image for offline dump and scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapPID == 0 {
			return errors.New("need --pid")
		}

		proc := newPlatformProcess()
		if err := proc.Open(process.ProcessID(snapPID)); err != nil {
			return err
		}
		defer proc.Close()
		if err := proc.UpdateMemoryMap(); err != nil {
			return err
		}

		name := snapName
		if name == "" {
			if p, err := gops.NewProcess(int32(snapPID)); err == nil {
				name, _ = p.Name()
			}
		}

		snap, err := process_blob.Capture(proc, name)
		if err != nil {
			return err
		}
		if err := snap.Save(snapOut); err != nil {
			return err
		}

		fmt.Println("snapshot saved to", snapOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().IntVar(&snapPID, "pid", 0, "live process id")
	snapshotCmd.Flags().StringVar(&snapOut, "out", "snapshot", "output directory")
	snapshotCmd.Flags().StringVar(&snapName, "name", "", "label stored in the snapshot")
}
