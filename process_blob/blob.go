// Package process_blob provides process.ProcessRead implementations backed
// by captured bytes: a single-region blob and a whole-process snapshot that
// can be saved to and loaded from disk. Tests across the module use these
// as their memory fixture.
package process_blob

import (
	"fmt"

	"ffsplit/process"
)

// ProcessBlob is a contiguous byte region positioned at a base address.
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
}

var _ process.ProcessRead = (*ProcessBlob)(nil)

func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	return &ProcessBlob{
		baseaddress: baseAddress,
		data:        data,
	}
}

// Base returns the address the first byte of the blob corresponds to.
func (p *ProcessBlob) Base() process.ProcessMemoryAddress {
	return p.baseaddress
}

func (p *ProcessBlob) Data() []byte {
	return p.data
}

func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if addr < p.baseaddress {
		return nil, fmt.Errorf("read at %v below blob base %v: %w", addr, p.baseaddress, process.ErrAddressNotMapped)
	}

	offset := uint64(addr - p.baseaddress)
	if offset+uint64(size) > uint64(len(p.data)) {
		return nil, fmt.Errorf("read %v at %v past blob end: %w", size, addr, process.ErrAddressNotMapped)
	}

	return p.data[offset : offset+uint64(size)], nil
}
