// Package pod reinterprets raw remote bytes as plain-old-data Go values.
// Types must be flat: any pointer, slice, map, string, func or interface
// anywhere in T is rejected, because remote addresses must never masquerade
// as Go pointers in front of the garbage collector.
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"ffsplit/process"

	"golang.org/x/exp/constraints"
)

var ErrNotPOD = errors.New("type contains Go pointers; not POD-safe")

func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

// ReadT reads sizeof(T) bytes at addr and reinterprets them as a T.
func ReadT[T any](r process.ProcessRead, addr process.ProcessMemoryAddress) (T, error) {
	var zero T

	size := SizeOf[T]()
	if size == 0 {
		return zero, errors.New("ReadT: size of T is zero")
	}

	data, err := r.ReadMemory(addr, size)
	if err != nil {
		return zero, err
	}

	return FromBytes[T](data)
}

// ReadSliceT reads count consecutive T values starting at addr with a single
// remote read.
func ReadSliceT[T any](r process.ProcessRead, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if count < 0 {
		return nil, errors.New("ReadSliceT: count must be positive")
	}

	size := SizeOf[T]()
	if size == 0 || count == 0 {
		return []T{}, nil
	}

	data, err := r.ReadMemory(addr, size*process.ProcessMemorySize(count))
	if err != nil {
		return nil, err
	}

	result := make([]T, count)
	for i := range result {
		elem, err := FromBytes[T](data[i*int(size):])
		if err != nil {
			return nil, fmt.Errorf("ReadSliceT: element %d: %w", i, err)
		}
		result[i] = elem
	}

	return result, nil
}

// FromBytes copies the first sizeof(T) bytes of data into a new T.
func FromBytes[T any](data []byte) (T, error) {
	var tmp T

	if hasPointers[T]() {
		return tmp, fmt.Errorf("FromBytes[%T]: %w", tmp, ErrNotPOD)
	}

	size := int(unsafe.Sizeof(tmp))
	if len(data) < size {
		return tmp, fmt.Errorf("FromBytes[%T]: buffer too small (%d < %d)", tmp, len(data), size)
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&tmp)), size)
	copy(dst, data[:size])

	return tmp, nil
}

// Align rounds n up to the next multiple of boundary, which must be a power
// of two.
func Align[I constraints.Integer](n, boundary I) I {
	return (n + boundary - 1) &^ (boundary - 1)
}

var podCache sync.Map // reflect.Type -> bool

// hasPointers reports whether T (recursively) contains any pointer-like fields.
func hasPointers[T any]() bool {
	var t T
	rt := reflect.TypeOf(t)
	if rt == nil {
		return true // interface-typed T
	}

	if cached, ok := podCache.Load(rt); ok {
		return cached.(bool)
	}

	result := typeHasPointers(rt)
	podCache.Store(rt, result)
	return result
}

func typeHasPointers(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if typeHasPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// bool, ints, uints, floats, complex, etc.
		return false
	}
}
