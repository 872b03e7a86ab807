package il2cpp

import (
	"fmt"

	"ffsplit/pod"
	"ffsplit/process"
)

// Array is a view over a managed T[]. Like Ptr, its representation is the
// 8-byte address of the array object, so reading an "array field" out of an
// object yields a usable view directly.
type Array[T any] struct {
	Addr Address
}

func (a Array[T]) IsNull() bool {
	return a.Addr == 0
}

func (a Array[T]) String() string {
	return fmt.Sprintf("Array(%v)", a.Addr)
}

// Len reads the element count from the array header. Corrupt lengths are
// truncated to maxElements.
func (a Array[T]) Len(r process.ProcessRead) (uint32, error) {
	if a.IsNull() {
		return 0, fmt.Errorf("length of NULL %v: %w", a, process.ErrInvalidPointer)
	}

	n, err := process.ReadUINT32(r, a.Addr+arrayLenOffset)
	if err != nil {
		return 0, fmt.Errorf("length of %v: %w", a, err)
	}
	if n > maxElements {
		n = maxElements
	}
	return n, nil
}

// At reads element i. The caller provides the bound from Len; At itself only
// rejects the NULL view.
func (a Array[T]) At(r process.ProcessRead, i uint32) (T, error) {
	var zero T
	if a.IsNull() {
		return zero, fmt.Errorf("element %d of NULL %v: %w", i, a, process.ErrInvalidPointer)
	}

	elem := a.Addr + arrayDataOffset + Address(uint64(i)*uint64(pod.SizeOf[T]()))
	v, err := pod.ReadT[T](r, elem)
	if err != nil {
		return zero, fmt.Errorf("element %d of %v: %w", i, a, err)
	}
	return v, nil
}

// Iter returns an iterator over the array. The length is sampled once, at
// iterator construction; elements are read live, one per Next. A concurrent
// mutation in the remote process can therefore yield stale or torn elements,
// never an out-of-bounds read.
func (a Array[T]) Iter(r process.ProcessRead) *ArrayIter[T] {
	it := &ArrayIter[T]{r: r, arr: a}
	it.n, it.err = a.Len(r)
	return it
}

// ArrayIter yields array elements in index order.
type ArrayIter[T any] struct {
	r   process.ProcessRead
	arr Array[T]
	n   uint32
	i   uint32
	err error
}

// Next returns the next element. It returns false at the end of the array
// or on the first read error; Err distinguishes the two.
func (it *ArrayIter[T]) Next() (T, bool) {
	var zero T
	if it.err != nil || it.i >= it.n {
		return zero, false
	}

	v, err := it.arr.At(it.r, it.i)
	if err != nil {
		it.err = err
		return zero, false
	}
	it.i++
	return v, true
}

// Err returns the error that stopped iteration, if any.
func (it *ArrayIter[T]) Err() error {
	return it.err
}
