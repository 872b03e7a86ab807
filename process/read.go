package process

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Typed read helpers over ProcessRead. All multi-byte values are
// little-endian, matching the x86-64 targets this library reads.

// ReadUINT8 reads an unsigned 8-bit integer from the specified address
func ReadUINT8(r ProcessRead, addr ProcessMemoryAddress) (uint8, error) {
	data, err := r.ReadMemory(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadUINT16 reads an unsigned 16-bit integer from the specified address
func ReadUINT16(r ProcessRead, addr ProcessMemoryAddress) (uint16, error) {
	data, err := r.ReadMemory(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

// ReadUINT32 reads an unsigned 32-bit integer from the specified address
func ReadUINT32(r ProcessRead, addr ProcessMemoryAddress) (uint32, error) {
	data, err := r.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

// ReadUINT64 reads an unsigned 64-bit integer from the specified address
func ReadUINT64(r ProcessRead, addr ProcessMemoryAddress) (uint64, error) {
	data, err := r.ReadMemory(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// ReadINT8 reads a signed 8-bit integer from the specified address
func ReadINT8(r ProcessRead, addr ProcessMemoryAddress) (int8, error) {
	v, err := ReadUINT8(r, addr)
	return int8(v), err
}

// ReadINT16 reads a signed 16-bit integer from the specified address
func ReadINT16(r ProcessRead, addr ProcessMemoryAddress) (int16, error) {
	v, err := ReadUINT16(r, addr)
	return int16(v), err
}

// ReadINT32 reads a signed 32-bit integer from the specified address
func ReadINT32(r ProcessRead, addr ProcessMemoryAddress) (int32, error) {
	v, err := ReadUINT32(r, addr)
	return int32(v), err
}

// ReadINT64 reads a signed 64-bit integer from the specified address
func ReadINT64(r ProcessRead, addr ProcessMemoryAddress) (int64, error) {
	v, err := ReadUINT64(r, addr)
	return int64(v), err
}

// ReadFLOAT32 reads a 32-bit floating point number from the specified address
func ReadFLOAT32(r ProcessRead, addr ProcessMemoryAddress) (float32, error) {
	bits, err := ReadUINT32(r, addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadFLOAT64 reads a 64-bit floating point number from the specified address
func ReadFLOAT64(r ProcessRead, addr ProcessMemoryAddress) (float64, error) {
	bits, err := ReadUINT64(r, addr)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadNTS reads a null-terminated string from the specified address with a maximum length
func ReadNTS(r ProcessRead, addr ProcessMemoryAddress, maxLength ProcessMemorySize) (string, error) {
	if maxLength == 0 {
		return "", nil
	}

	data, err := r.ReadMemory(addr, maxLength)
	if err != nil {
		return "", err
	}

	for i, b := range data {
		if b == 0 {
			return string(data[:i]), nil
		}
	}

	// No terminator within maxLength, return the whole buffer
	return string(data), nil
}

// ReadPOINTER reads a pointer value from the specified address
func ReadPOINTER(r ProcessRead, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	if addr == 0 {
		return 0, fmt.Errorf("ReadPOINTER at NULL: %w", ErrInvalidPointer)
	}

	v, err := ReadUINT64(r, addr)
	if err != nil {
		return 0, err
	}
	return ProcessMemoryAddress(v), nil
}

// ReadPOINTER2 reads a pointer value from the specified address, zero on error
func ReadPOINTER2(r ProcessRead, addr ProcessMemoryAddress) ProcessMemoryAddress {
	if addr == 0 {
		return 0
	}

	ptr, err := ReadPOINTER(r, addr)
	if err != nil {
		return 0
	}
	if !CanonicalAddress(ptr) {
		return 0
	}
	return ptr
}

// CanonicalAddress reports whether addr falls in the userland range this
// library is willing to chase. Low pages and kernel-half addresses are
// rejected before any map lookup.
func CanonicalAddress(addr ProcessMemoryAddress) bool {
	return addr > 0x10000 && addr <= 0x7FFFFFFFFFFF
}
