package il2cpp

import (
	"fmt"

	"ffsplit/process"
)

// Map is a view over a managed Dictionary<K,V>. Iteration walks the entry
// array in slot order and skips tombstones; the bucket chains are never
// followed, so a torn hash table still iterates safely.
type Map[K, V any] struct {
	Addr Address
}

// Entry is one dictionary slot. The layout matches the runtime's Entry
// struct for the K/V widths this library instantiates: two u32 hash-chain
// words, then key and value at their natural alignment.
type Entry[K, V any] struct {
	Hash  uint32
	Next  uint32
	Key   K
	Value V
}

// Tombstone reports whether the slot holds no live entry. A live entry
// always has a nonzero hash word or a nonzero chain link.
func (e Entry[K, V]) Tombstone() bool {
	return e.Hash == 0 && e.Next == 0
}

func (m Map[K, V]) IsNull() bool {
	return m.Addr == 0
}

func (m Map[K, V]) String() string {
	return fmt.Sprintf("Map(%v)", m.Addr)
}

// Len reads the live entry count.
func (m Map[K, V]) Len(r process.ProcessRead) (uint32, error) {
	if m.IsNull() {
		return 0, fmt.Errorf("length of NULL %v: %w", m, process.ErrInvalidPointer)
	}

	n, err := process.ReadUINT32(r, m.Addr+mapCountOffset)
	if err != nil {
		return 0, fmt.Errorf("length of %v: %w", m, err)
	}
	if n > maxElements {
		n = maxElements
	}
	return n, nil
}

// entries reads the entry array pointer.
func (m Map[K, V]) entries(r process.ProcessRead) (Array[Entry[K, V]], error) {
	if m.IsNull() {
		return Array[Entry[K, V]]{}, fmt.Errorf("entries of NULL %v: %w", m, process.ErrInvalidPointer)
	}

	ptr, err := process.ReadPOINTER(r, m.Addr+mapEntriesOffset)
	if err != nil {
		return Array[Entry[K, V]]{}, fmt.Errorf("entries of %v: %w", m, err)
	}
	return Array[Entry[K, V]]{Addr: ptr}, nil
}

// Iter returns an iterator over the live entries. It yields at most Len
// entries; if the slot array runs out first (a torn or shrinking map), the
// iterator simply ends early.
func (m Map[K, V]) Iter(r process.ProcessRead) *MapIter[K, V] {
	it := &MapIter[K, V]{r: r}

	count, err := m.Len(r)
	if err != nil {
		it.err = err
		return it
	}

	arr, err := m.entries(r)
	if err != nil {
		it.err = err
		return it
	}

	slots, err := arr.Len(r)
	if err != nil {
		it.err = err
		return it
	}

	it.arr = arr
	it.slots = slots
	it.remaining = count
	return it
}

// MapIter yields live dictionary entries in slot order.
type MapIter[K, V any] struct {
	r         process.ProcessRead
	arr       Array[Entry[K, V]]
	slot      uint32
	slots     uint32
	remaining uint32
	err       error
}

// Next returns the next live entry, skipping tombstoned slots.
func (it *MapIter[K, V]) Next() (Entry[K, V], bool) {
	var zero Entry[K, V]
	if it.err != nil {
		return zero, false
	}

	for it.remaining > 0 && it.slot < it.slots {
		e, err := it.arr.At(it.r, it.slot)
		if err != nil {
			it.err = err
			return zero, false
		}
		it.slot++

		if e.Tombstone() {
			continue
		}

		it.remaining--
		return e, true
	}

	return zero, false
}

// Err returns the error that stopped iteration, if any.
func (it *MapIter[K, V]) Err() error {
	return it.err
}
