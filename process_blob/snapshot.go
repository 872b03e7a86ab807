package process_blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ffsplit/process"
	"ffsplit/process/memory_map"
)

// Regions larger than this are skipped by Capture; nothing interesting to
// this library lives in multi-gigabyte mappings and dumping them makes the
// snapshot dirs unwieldy.
const captureRegionLimit = 1 << 30

// Snapshot implements process.Process over a captured process image. Reads
// hit the captured bytes, so a snapshot replays identically forever, which
// makes it both the offline-analysis vehicle and the test double for
// everything built on process.Process.
type Snapshot struct {
	PID   process.ProcessID
	Name  string
	mm    memory_map.MemoryMap
	blobs map[uint64][]byte // region start -> data
}

var _ process.Process = (*Snapshot)(nil)

func NewSnapshot() *Snapshot {
	return &Snapshot{
		blobs: make(map[uint64][]byte),
	}
}

// AddRegion appends a region with backing data. The data slice is aliased,
// not copied; tests mutate it between polls to simulate the game writing.
func (s *Snapshot) AddRegion(addr uint64, perms, path string, data []byte) {
	s.mm = append(s.mm, memory_map.MemoryMapItem{
		Address: addr,
		Size:    uint(len(data)),
		Perms:   perms,
		Path:    path,
	})
	s.mm.Sort()
	s.blobs[addr] = data
}

// Capture reads every readable region of src into a new snapshot. Regions
// that fail to read are recorded in the map without data.
func Capture(src process.Process, name string) (*Snapshot, error) {
	mm, err := src.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	s := NewSnapshot()
	s.PID = src.GetPID()
	s.Name = name
	s.mm = mm

	for _, region := range mm {
		if !region.IsReadable() || region.Size > captureRegionLimit {
			continue
		}
		data, err := src.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			continue // region vanished or is unreadable despite perms
		}
		s.blobs[region.Address] = data
	}

	return s, nil
}

func (s *Snapshot) Open(pid process.ProcessID) error {
	return fmt.Errorf("Open not supported for Snapshot, use Load")
}

func (s *Snapshot) Close() error {
	s.blobs = nil
	s.mm = nil
	return nil
}

func (s *Snapshot) GetPID() process.ProcessID {
	return s.PID
}

func (s *Snapshot) UpdateMemoryMap() error {
	return nil // static in a snapshot
}

func (s *Snapshot) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	if !process.CanonicalAddress(addr) {
		return false
	}
	return s.mm.IsValidAddress(uint64(addr))
}

func (s *Snapshot) GetMemoryMap() (memory_map.MemoryMap, error) {
	result := make(memory_map.MemoryMap, len(s.mm))
	copy(result, s.mm)
	return result, nil
}

func (s *Snapshot) ModuleBase(name string) (process.ProcessMemoryAddress, error) {
	base, ok := s.mm.ModuleBase(name)
	if !ok {
		return 0, fmt.Errorf("module %q: %w", name, process.ErrModuleNotFound)
	}
	return process.ProcessMemoryAddress(base), nil
}

func (s *Snapshot) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	region := s.mm.FindRegion(uint64(addr))
	if region == nil {
		return nil, fmt.Errorf("read at %v: %w", addr, process.ErrAddressNotMapped)
	}

	data, ok := s.blobs[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data captured for region 0x%x", region.Address)
	}

	offset := uint64(addr) - region.Address
	if offset+uint64(size) > uint64(len(data)) {
		return nil, fmt.Errorf("read %v at %v crosses region end: %w", size, addr, process.ErrPartialRead)
	}

	result := make([]byte, size)
	copy(result, data[offset:offset+uint64(size)])
	return result, nil
}

type snapshotMetadata struct {
	PID  process.ProcessID `json:"pid"`
	Name string            `json:"name"`
}

// Save writes the snapshot to a directory: metadata.json, the memory map,
// and one blob file per captured region.
func (s *Snapshot) Save(dirname string) error {
	if err := os.MkdirAll(dirname, 0o755); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	meta, err := json.MarshalIndent(snapshotMetadata{PID: s.PID, Name: s.Name}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dirname, "metadata.json"), meta, 0o644); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	mm, err := json.MarshalIndent(s.mm, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dirname, "process_memory_map.json"), mm, 0o644); err != nil {
		return fmt.Errorf("save memory map: %w", err)
	}

	for addr, data := range s.blobs {
		filename := filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", addr, len(data)))
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return fmt.Errorf("save blob 0x%x: %w", addr, err)
		}
	}

	return nil
}

// Load reads a snapshot directory written by Save.
func Load(dirname string) (*Snapshot, error) {
	s := NewSnapshot()

	metaBytes, err := os.ReadFile(filepath.Join(dirname, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	var meta snapshotMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	s.PID = meta.PID
	s.Name = meta.Name

	mmBytes, err := os.ReadFile(filepath.Join(dirname, "process_memory_map.json"))
	if err != nil {
		return nil, fmt.Errorf("load memory map: %w", err)
	}
	if err := json.Unmarshal(mmBytes, &s.mm); err != nil {
		return nil, fmt.Errorf("parse memory map: %w", err)
	}
	s.mm.Sort()

	for _, region := range s.mm {
		filename := filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", region.Address, region.Size))
		data, err := os.ReadFile(filename)
		if err != nil {
			if os.IsNotExist(err) {
				continue // region was not captured
			}
			return nil, fmt.Errorf("load blob 0x%x: %w", region.Address, err)
		}
		s.blobs[region.Address] = data
	}

	return s, nil
}
