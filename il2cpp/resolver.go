package il2cpp

import (
	"errors"
	"fmt"
	"strings"

	"ffsplit/process"
)

var (
	// ErrUnknownPath is returned when a resolver has no entry for a path.
	ErrUnknownPath = errors.New("unknown pointer path")

	// ErrUnknownField is returned when a resolver has no offset for a
	// class field.
	ErrUnknownField = errors.New("unknown class field")
)

// Path names a value inside the managed heap: a class plus the chain of
// field names leading to it. Resolvers turn a Path into a root address and
// byte offsets.
type Path struct {
	Class  string
	Fields []string
}

func (p Path) String() string {
	if len(p.Fields) == 0 {
		return p.Class
	}
	return p.Class + "." + strings.Join(p.Fields, ".")
}

// Resolver maps symbolic paths and fields to concrete addresses and offsets
// for one attached game build.
type Resolver interface {
	// Resolve returns the root address and the offset chain for a path.
	// All offsets except the last are pointer hops; the last is a raw byte
	// offset into the final object.
	Resolve(path Path) (base Address, offsets []process.ProcessMemorySize, err error)

	// FieldOffset returns the byte offset of a field within instances of a
	// class. Used when walking containers of objects.
	FieldOffset(class, field string) (process.ProcessMemorySize, error)
}

// Value is a lazily resolved pointer path to a T. The first successful Read
// resolves the path and caches the root and offsets; every Read replays the
// full pointer chase, so objects the game moved since the last poll are
// followed to their new location. Only resolution is cached, never any
// address past the root.
type Value[T any] struct {
	resolver Resolver
	path     Path
	base     Address
	offsets  []process.ProcessMemorySize
	resolved bool
}

// NewValue builds a Value for the path class.fields[0].fields[1]...
func NewValue[T any](r Resolver, class string, fields ...string) *Value[T] {
	return &Value[T]{
		resolver: r,
		path:     Path{Class: class, Fields: fields},
	}
}

// Path returns the symbolic path this value reads.
func (v *Value[T]) Path() Path {
	return v.path
}

// Read resolves the path if needed and reads the current T. A resolution
// failure is returned but not cached; the next Read retries it.
func (v *Value[T]) Read(r process.ProcessRead) (T, error) {
	if !v.resolved {
		base, offsets, err := v.resolver.Resolve(v.path)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("resolve %s: %w", v.path, err)
		}
		v.base = base
		v.offsets = offsets
		v.resolved = true
	}

	val, err := process.ReadPath[T](r, v.base, v.offsets...)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", v.path, err)
	}
	return val, nil
}
