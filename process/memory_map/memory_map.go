// Package memory_map models the mapped regions of a process's address
// space and answers validity and module-base queries against them.
package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string // Backing file, if any (module lookups key on its basename)
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

// Contains reports whether addr falls inside the region.
func (mmItem MemoryMapItem) Contains(addr uint64) bool {
	return addr >= mmItem.Address && addr < mmItem.Address+uint64(mmItem.Size)
}

// MemoryMap is a list of regions sorted by start address. FindRegion
// requires the sorted order; Sort restores it after manual edits.
type MemoryMap []MemoryMapItem

// Sort orders the regions by start address.
func (mm MemoryMap) Sort() {
	sort.Slice(mm, func(i, j int) bool {
		return mm[i].Address < mm[j].Address
	})
}

// FindRegion returns the region containing addr, or nil. Binary search over
// the sorted region list.
func (mm MemoryMap) FindRegion(addr uint64) *MemoryMapItem {
	i := sort.Search(len(mm), func(i int) bool {
		return mm[i].Address+uint64(mm[i].Size) > addr
	})
	if i < len(mm) && mm[i].Address <= addr {
		return &mm[i]
	}

	return nil
}

// IsValidAddress checks if an address is within a valid, readable memory region
func (mm MemoryMap) IsValidAddress(addr uint64) bool {
	if item := mm.FindRegion(addr); item != nil {
		return item.IsReadable()
	}
	return false
}

// ModuleBase returns the lowest mapped address of the module whose backing
// file basename matches name. Matching is case-insensitive because Windows
// module names arrive in whatever case the game's loader used.
func (mm MemoryMap) ModuleBase(name string) (uint64, bool) {
	base := uint64(0)
	found := false
	for _, item := range mm {
		if item.Path == "" {
			continue
		}
		if !strings.EqualFold(filepath.Base(item.Path), name) {
			continue
		}
		if !found || item.Address < base {
			base = item.Address
			found = true
		}
	}
	return base, found
}

// ParseLinuxMaps parses the /proc/[pid]/maps text format. Unparseable lines
// are skipped rather than failing the whole map.
func ParseLinuxMaps(r io.Reader) (MemoryMap, error) {
	var mm MemoryMap
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		// Parse address range (e.g., "00400000-0040b000")
		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}

		startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil {
			continue
		}

		// Pathname is the optional sixth column; [heap]/[stack] markers and
		// real file paths both land here.
		path := ""
		if len(fields) >= 6 {
			path = fields[5]
		}

		mm = append(mm, MemoryMapItem{
			Address: startAddr,
			Size:    uint(endAddr - startAddr),
			Perms:   fields[1],
			Path:    path,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	mm.Sort()
	return mm, nil
}
