// Package search brute-forces pointer paths to a known value. When a game
// patch shifts field offsets, scanning from the module base for a value the
// player can control (gil, an HP total) recovers candidate paths for the
// offsets table. Works against a live process or a loaded snapshot.
package search

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"ffsplit/process"
)

// Searcher holds the walk limits. Zero values are filled with defaults by
// Search.
type Searcher struct {
	MaxStructSize uint
	MaxDepth      int
	MinAlignment  uint
	MaxResults    int
	Match         func([]byte) bool
}

type Option func(*Searcher)

// WithMaxStructSize bounds how many bytes of each object are scanned.
func WithMaxStructSize(size uint) Option {
	return func(s *Searcher) {
		s.MaxStructSize = size
	}
}

// WithMaxDepth bounds how many pointers deep the walk follows.
func WithMaxDepth(depth int) Option {
	return func(s *Searcher) {
		s.MaxDepth = depth
	}
}

// WithMinAlignment sets the step between candidate field offsets.
func WithMinAlignment(align uint) Option {
	return func(s *Searcher) {
		s.MinAlignment = align
	}
}

// WithMaxResults stops the walk after this many hits. Zero means unbounded.
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		s.MaxResults = n
	}
}

// WithValue matches the in-memory encoding of val. Assumes little-endian POD
// layout, the same assumption the pod package makes.
func WithValue[T any](val T) Option {
	size := int(unsafe.Sizeof(val))
	want := make([]byte, size)
	copy(want, unsafe.Slice((*byte)(unsafe.Pointer(&val)), size))

	return func(s *Searcher) {
		s.Match = func(data []byte) bool {
			if len(data) < size {
				return false
			}
			for i := range want {
				if data[i] != want[i] {
					return false
				}
			}
			return true
		}
	}
}

// Result is one discovered path. Path holds offsets from the search base:
// every element but the last is dereferenced, the last is a plain byte
// offset, matching how the offsets table walks chains.
type Result struct {
	Path []process.ProcessMemorySize
	Addr process.ProcessMemoryAddress
}

// Spec splits the path into the root offset and the remaining chain, the two
// fields a table entry wants.
func (r Result) Spec() (root uint64, offsets []uint64) {
	if len(r.Path) == 0 {
		return 0, nil
	}
	root = uint64(r.Path[0])
	for _, off := range r.Path[1:] {
		offsets = append(offsets, uint64(off))
	}
	return root, offsets
}

func (r Result) String() string {
	root, offsets := r.Spec()
	parts := make([]string, len(offsets))
	for i, off := range offsets {
		parts[i] = fmt.Sprintf("0x%X", off)
	}
	return fmt.Sprintf("root: 0x%X, offsets: [%s]", root, strings.Join(parts, ", "))
}

// Search walks objects reachable from base looking for the configured value.
// Each visited object is scanned at MinAlignment steps; 8-byte aligned slots
// holding a mapped address are followed as pointers up to MaxDepth.
func Search(proc process.Process, base process.ProcessMemoryAddress, options ...Option) ([]Result, error) {
	s := &Searcher{
		MaxStructSize: 256,
		MaxDepth:      3,
		MinAlignment:  4,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.Match == nil {
		return nil, errors.New("search: no target value configured")
	}

	var results []Result
	visited := make(map[process.ProcessMemoryAddress]bool)

	full := func() bool {
		return s.MaxResults > 0 && len(results) >= s.MaxResults
	}

	var walk func(addr process.ProcessMemoryAddress, depth int, path []process.ProcessMemorySize)
	walk = func(addr process.ProcessMemoryAddress, depth int, path []process.ProcessMemorySize) {
		if depth > s.MaxDepth || visited[addr] || full() {
			return
		}
		visited[addr] = true

		// Unreadable objects are skipped, not fatal; the region may be
		// smaller than MaxStructSize or gone since the map was taken.
		data, err := proc.ReadMemory(addr, process.ProcessMemorySize(s.MaxStructSize))
		if err != nil {
			return
		}

		for offset := uint(0); offset+s.MinAlignment <= uint(len(data)); offset += s.MinAlignment {
			if full() {
				return
			}

			if s.Match(data[offset:]) {
				hit := make([]process.ProcessMemorySize, len(path), len(path)+1)
				copy(hit, path)
				hit = append(hit, process.ProcessMemorySize(offset))

				results = append(results, Result{
					Path: hit,
					Addr: addr + process.ProcessMemoryAddress(offset),
				})
			}

			if offset%8 != 0 || depth == s.MaxDepth || offset+8 > uint(len(data)) {
				continue
			}
			ptr := binary.LittleEndian.Uint64(data[offset:])
			if ptr == 0 || !proc.IsValidAddress(process.ProcessMemoryAddress(ptr)) {
				continue
			}

			next := make([]process.ProcessMemorySize, len(path), len(path)+1)
			copy(next, path)
			next = append(next, process.ProcessMemorySize(offset))

			walk(process.ProcessMemoryAddress(ptr), depth+1, next)
		}
	}

	walk(base, 0, nil)
	return results, nil
}
