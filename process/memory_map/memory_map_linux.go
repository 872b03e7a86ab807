//go:build linux

package memory_map

import (
	"fmt"
	"os"
)

// ReadForPID reads and parses the memory map for a process from /proc/[pid]/maps
func ReadForPID(pid int) (MemoryMap, error) {
	file, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseLinuxMaps(file)
}
