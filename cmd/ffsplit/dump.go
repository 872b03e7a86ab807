package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ffsplit/game"
	"ffsplit/hexdump"
	"ffsplit/il2cpp"
	"ffsplit/pod"
	"ffsplit/process"
	"ffsplit/process/memory_map"
)

var (
	dumpPID     int
	dumpFrom    string
	dumpOffsets string
	dumpSize    uint
	dumpAs      string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] Class.field...",
	Short: "Resolve pointer paths and hexdump what they reach",
	Long: `Resolve each path through the offsets table and dump memory at the
final field's address, with slots that point into mapped regions annotated.
Paths use the table's dotted form, e.g. BattlePlugManager.instance.isBattle.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().IntVar(&dumpPID, "pid", 0, "live process id")
	dumpCmd.Flags().StringVar(&dumpFrom, "from", "", "snapshot directory")
	dumpCmd.Flags().StringVar(&dumpOffsets, "offsets", "offsets/ffpr-1.0.yaml", "offsets table")
	dumpCmd.Flags().UintVar(&dumpSize, "size", 256, "bytes to dump")
	dumpCmd.Flags().StringVar(&dumpAs, "as", "", "decode as a known shape (transportation)")
}

func runDump(cmd *cobra.Command, args []string) error {
	table, err := il2cpp.LoadTable(dumpOffsets)
	if err != nil {
		return err
	}

	proc, err := openTarget(dumpPID, dumpFrom)
	if err != nil {
		return err
	}
	defer proc.Close()

	resolver, err := il2cpp.NewTableResolver(table, proc)
	if err != nil {
		return err
	}
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return err
	}

	for _, arg := range args {
		path, err := parseFieldPath(arg)
		if err != nil {
			return err
		}
		base, offsets, err := resolver.Resolve(path)
		if err != nil {
			return err
		}
		addr, err := process.WalkPointerChain(proc, base, offsets...)
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		fmt.Printf("%s -> %v\n", path, addr)
		if err := printTarget(proc, addr, mm); err != nil {
			return err
		}
	}
	return nil
}

func printTarget(proc process.Process, addr process.ProcessMemoryAddress, mm memory_map.MemoryMap) error {
	switch dumpAs {
	case "":
		data, err := proc.ReadMemory(addr, process.ProcessMemorySize(dumpSize))
		if err != nil {
			return err
		}
		fmt.Print(hexdump.Annotated(data, uint64(addr), mm))
	case "transportation":
		save, err := pod.ReadT[game.TransportationSave](proc, addr)
		if err != nil {
			return err
		}
		pod.Print(save, pod.WithPointerCheck(mm.IsValidAddress))
	default:
		return fmt.Errorf("unknown shape %q", dumpAs)
	}
	return nil
}
