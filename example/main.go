// Reads battle state and the key item list from a saved snapshot. This is
// the minimal wiring: offsets table -> resolver -> game bindings -> reads.
// Take a snapshot with `ffsplit snapshot --pid <game pid> --out <dir>`.
package main

import (
	"fmt"
	"os"

	"ffsplit/game"
	"ffsplit/il2cpp"
	"ffsplit/process_blob"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("usage: example <snapshot-dir> <offsets.yaml>")
		os.Exit(1)
	}

	snap, err := process_blob.Load(os.Args[1])
	if err != nil {
		fmt.Println("load snapshot:", err)
		os.Exit(1)
	}

	table, err := il2cpp.LoadTable(os.Args[2])
	if err != nil {
		fmt.Println("load offsets:", err)
		os.Exit(1)
	}

	resolver, err := il2cpp.NewTableResolver(table, snap)
	if err != nil {
		fmt.Println("resolve module base:", err)
		os.Exit(1)
	}

	data := game.New(resolver)

	active, err := data.BattleActive(snap)
	if err != nil {
		fmt.Println("battle flag:", err)
		os.Exit(1)
	}
	fmt.Println("in battle:", active)

	if active {
		if monster, err := data.Encounter(snap); err == nil {
			fmt.Println("fighting:", monster)
		}
	}

	fmt.Println("key items:")
	err = data.KeyItems(snap, func(p game.Pickup) {
		fmt.Println("  -", p)
	})
	if err != nil {
		fmt.Println("key items:", err)
	}
}
