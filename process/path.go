package process

import (
	"fmt"
	"unsafe"
)

// WalkPointerChain dereferences a pointer at every offset except the last,
// which is added to the final pointer as a raw byte offset. The returned
// address is where the target value lives; nothing is read at it.
//
// Example:
//
//	// base -> [ +0 ]ptrA -> [ +24 ]ptrB -> value at ptrB+144
//	addr, err := process.WalkPointerChain(p, base, 0, 24, 144)
func WalkPointerChain(r ProcessRead, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (ProcessMemoryAddress, error) {
	if len(offsets) == 0 {
		return base, nil
	}

	current := base

	// Deref each offset except the last
	for i := 0; i < len(offsets)-1; i++ {
		addr := current + ProcessMemoryAddress(offsets[i])

		ptr, err := ReadPOINTER(r, addr)
		if err != nil {
			return 0, fmt.Errorf("pointer chain step %d (%v + 0x%X): %w", i, current, uint(offsets[i]), err)
		}
		if ptr == 0 {
			return 0, fmt.Errorf("pointer chain step %d (%v + 0x%X): NULL: %w", i, current, uint(offsets[i]), ErrInvalidPointer)
		}
		if !CanonicalAddress(ptr) {
			return 0, fmt.Errorf("pointer chain step %d (%v + 0x%X): non-canonical %v: %w", i, current, uint(offsets[i]), ptr, ErrInvalidPointer)
		}
		current = ptr
	}

	// Last offset is a raw byte offset into `current` (no deref)
	return current + ProcessMemoryAddress(offsets[len(offsets)-1]), nil
}

// ReadPointerChain walks the chain like WalkPointerChain and then reads size
// bytes at the final address.
func ReadPointerChain(r ProcessRead, base ProcessMemoryAddress, size ProcessMemorySize, offsets ...ProcessMemorySize) ([]byte, error) {
	addr, err := WalkPointerChain(r, base, offsets...)
	if err != nil {
		return nil, err
	}

	data, err := r.ReadMemory(addr, size)
	if err != nil {
		return nil, fmt.Errorf("pointer chain final read at %v (%v): %w", addr, size, err)
	}
	return data, nil
}

// ReadPath reads a value of type T at the end of a pointer path. It walks
// the chain with WalkPointerChain and reinterprets the final bytes as T.
// With no offsets it reads T directly at base.
func ReadPath[T any](r ProcessRead, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (T, error) {
	addr, err := WalkPointerChain(r, base, offsets...)
	if err != nil {
		var zero T
		return zero, err
	}

	val, err := readT[T](r, addr)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("pointer chain final read at %v: %w", addr, err)
	}
	return val, nil
}

func readT[T any](r ProcessRead, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := ProcessMemorySize(unsafe.Sizeof(t))
	if size == 0 {
		return t, nil
	}

	data, err := r.ReadMemory(addr, size)
	if err != nil {
		return t, err
	}

	copyTo(&t, data)
	return t, nil
}

// copyTo copies bytes into *T through its in-memory representation. T must
// not contain Go pointers; the pod package enforces that for callers, here
// the instantiations are all flat structs and scalars.
func copyTo[T any](dst *T, src []byte) {
	size := int(unsafe.Sizeof(*dst))
	if len(src) < size {
		return
	}

	dstBytes := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	copy(dstBytes, src)
}
