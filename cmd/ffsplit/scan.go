package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ffsplit/hexdump"
	"ffsplit/process"
	"ffsplit/search"
)

var (
	scanPID    int
	scanFrom   string
	scanModule string
	scanBase   string
	scanType   string
	scanDepth  int
	scanStruct uint
	scanAlign  uint
	scanMax    int
	scanWindow bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <value>",
	Short: "Brute-force pointer paths to a known value",
	Long: `Scan objects reachable from the module base (or --base) for a value
you can read in game, like the gil count or a character's HP. Change the
value in game and re-run against a fresh snapshot to narrow the candidates;
surviving paths go into the offsets table.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanPID, "pid", 0, "live process id")
	scanCmd.Flags().StringVar(&scanFrom, "from", "", "snapshot directory")
	scanCmd.Flags().StringVar(&scanModule, "module", "GameAssembly.dll", "module whose base anchors the scan")
	scanCmd.Flags().StringVar(&scanBase, "base", "", "scan from this address instead of a module base")
	scanCmd.Flags().StringVar(&scanType, "type", "u32", "value encoding (u8, u16, u32, u64, f32, f64)")
	scanCmd.Flags().IntVar(&scanDepth, "max-depth", 3, "pointer hops to follow")
	scanCmd.Flags().UintVar(&scanStruct, "struct-size", 256, "bytes scanned per object")
	scanCmd.Flags().UintVar(&scanAlign, "align", 4, "step between candidate offsets")
	scanCmd.Flags().IntVar(&scanMax, "max-results", 64, "stop after this many hits (0 for no limit)")
	scanCmd.Flags().BoolVar(&scanWindow, "window", false, "hexdump a window around each hit")
}

func runScan(cmd *cobra.Command, args []string) error {
	opt, err := valueOption(scanType, args[0])
	if err != nil {
		return err
	}

	proc, err := openTarget(scanPID, scanFrom)
	if err != nil {
		return err
	}
	defer proc.Close()

	var base process.ProcessMemoryAddress
	if scanBase != "" {
		base, err = parseAddr(scanBase)
	} else {
		base, err = proc.ModuleBase(scanModule)
	}
	if err != nil {
		return err
	}

	results, err := search.Search(proc, base,
		opt,
		search.WithMaxDepth(scanDepth),
		search.WithMaxStructSize(scanStruct),
		search.WithMinAlignment(scanAlign),
		search.WithMaxResults(scanMax),
	)
	if err != nil {
		return err
	}

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("%v  %s\n", r.Addr, r)
		if scanWindow {
			start := r.Addr - r.Addr%16
			if data, err := proc.ReadMemory(start, 48); err == nil {
				fmt.Print(hexdump.Annotated(data, uint64(start), mm))
			}
		}
	}
	fmt.Println(len(results), "candidates")
	return nil
}

func valueOption(kind, raw string) (search.Option, error) {
	switch kind {
	case "u8", "u16", "u32", "u64":
		bits := map[string]int{"u8": 8, "u16": 16, "u32": 32, "u64": 64}[kind]
		n, err := strconv.ParseUint(raw, 0, bits)
		if err != nil {
			return nil, fmt.Errorf("value %q as %s: %w", raw, kind, err)
		}
		switch kind {
		case "u8":
			return search.WithValue(uint8(n)), nil
		case "u16":
			return search.WithValue(uint16(n)), nil
		case "u32":
			return search.WithValue(uint32(n)), nil
		default:
			return search.WithValue(n), nil
		}
	case "f32", "f64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q as %s: %w", raw, kind, err)
		}
		if kind == "f32" {
			return search.WithValue(float32(f)), nil
		}
		return search.WithValue(f), nil
	default:
		return nil, fmt.Errorf("unknown value type %q", kind)
	}
}
