package pod

import (
	"errors"
	"fmt"

	"ffsplit/process"
)

// ErrBitPattern is returned when remote bytes do not form a valid value of
// the requested type. The game writes its fields non-atomically, so a read
// can land mid-update; callers treat this as "unknown this poll".
var ErrBitPattern = errors.New("invalid bit pattern")

// Bool decodes a remote C# bool. Only 0 and 1 are accepted; anything else
// is garbage, not a truthy value.
func Bool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bool 0x%02X: %w", b, ErrBitPattern)
	}
}

// Enum decodes a remote u32-backed enum whose members run 0..last.
func Enum[T ~uint32](raw uint32, last T) (T, error) {
	if raw > uint32(last) {
		return 0, fmt.Errorf("enum value %d past last member %d: %w", raw, uint32(last), ErrBitPattern)
	}
	return T(raw), nil
}

// ReadBool reads one byte at addr and decodes it with Bool.
func ReadBool(r process.ProcessRead, addr process.ProcessMemoryAddress) (bool, error) {
	b, err := process.ReadUINT8(r, addr)
	if err != nil {
		return false, err
	}
	return Bool(b)
}

// ReadEnum reads a u32 at addr and decodes it with Enum.
func ReadEnum[T ~uint32](r process.ProcessRead, addr process.ProcessMemoryAddress, last T) (T, error) {
	raw, err := process.ReadUINT32(r, addr)
	if err != nil {
		return 0, err
	}
	return Enum(raw, last)
}
