package il2cpp

import (
	"fmt"

	"ffsplit/pod"
	"ffsplit/process"
)

// Ptr is a typed remote pointer. Its in-memory representation is the 8-byte
// pointer value itself, so a Ptr can be decoded straight out of remote bytes
// (as a struct field, array element or dictionary value).
//
// The type parameter never touches memory; it only keeps pointer targets
// from being mixed up at compile time.
type Ptr[T any] struct {
	Addr Address
}

func (p Ptr[T]) IsNull() bool {
	return p.Addr == 0
}

func (p Ptr[T]) String() string {
	return fmt.Sprintf("Ptr(%v)", p.Addr)
}

// Deref reads the pointee as a plain-old-data T.
func Deref[T any](r process.ProcessRead, p Ptr[T]) (T, error) {
	var zero T
	if p.IsNull() {
		return zero, fmt.Errorf("deref NULL %v: %w", p, process.ErrInvalidPointer)
	}
	return pod.ReadT[T](r, p.Addr)
}
