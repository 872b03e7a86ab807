package il2cpp

import (
	"fmt"

	"ffsplit/process"
)

// List is a view over a managed List<T>. The list object holds a pointer to
// a backing T[] plus a live count; the count can briefly exceed the backing
// array's capacity while the game grows the list, so iteration clamps to
// whichever is smaller.
type List[T any] struct {
	Addr Address
}

func (l List[T]) IsNull() bool {
	return l.Addr == 0
}

func (l List[T]) String() string {
	return fmt.Sprintf("List(%v)", l.Addr)
}

// Len reads the live element count.
func (l List[T]) Len(r process.ProcessRead) (uint32, error) {
	if l.IsNull() {
		return 0, fmt.Errorf("length of NULL %v: %w", l, process.ErrInvalidPointer)
	}

	n, err := process.ReadUINT32(r, l.Addr+listSizeOffset)
	if err != nil {
		return 0, fmt.Errorf("length of %v: %w", l, err)
	}
	if n > maxElements {
		n = maxElements
	}
	return n, nil
}

// items reads the backing array pointer.
func (l List[T]) items(r process.ProcessRead) (Array[T], error) {
	if l.IsNull() {
		return Array[T]{}, fmt.Errorf("items of NULL %v: %w", l, process.ErrInvalidPointer)
	}

	ptr, err := process.ReadPOINTER(r, l.Addr+listItemsOffset)
	if err != nil {
		return Array[T]{}, fmt.Errorf("items of %v: %w", l, err)
	}
	return Array[T]{Addr: ptr}, nil
}

// Iter returns an iterator over the live elements. Count and backing array
// are sampled once; elements are read live per Next, as with Array.Iter.
func (l List[T]) Iter(r process.ProcessRead) *ArrayIter[T] {
	it := &ArrayIter[T]{r: r}

	count, err := l.Len(r)
	if err != nil {
		it.err = err
		return it
	}

	arr, err := l.items(r)
	if err != nil {
		it.err = err
		return it
	}

	capacity, err := arr.Len(r)
	if err != nil {
		it.err = err
		return it
	}

	// Clamp a mid-grow count to what the backing array actually holds
	if count > capacity {
		count = capacity
	}

	it.arr = arr
	it.n = count
	return it
}
