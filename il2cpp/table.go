package il2cpp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ffsplit/process"
)

// PathSpec is one pointer path in an offset table: a root offset relative to
// the game module base, then the offset chain.
type PathSpec struct {
	Root    uint64   `yaml:"root"`
	Offsets []uint64 `yaml:"offsets"`
}

// Table is a static offset table for one game build, typically loaded from
// YAML produced by an IL2CPP dumper. Path keys are the dotted form
// "Class.field1.field2".
type Table struct {
	Module  string                       `yaml:"module"`
	Paths   map[string]PathSpec          `yaml:"paths"`
	Classes map[string]map[string]uint64 `yaml:"classes"`
}

// LoadTable reads a Table from a YAML file.
func LoadTable(path string) (Table, error) {
	var t Table
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("load offset table: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse offset table %s: %w", path, err)
	}
	if t.Module == "" {
		return t, fmt.Errorf("parse offset table %s: missing module name", path)
	}
	return t, nil
}

// TableResolver resolves paths against a static offset table. The module
// base is captured once at construction, so a resolver is only valid for
// the process it was built against.
type TableResolver struct {
	table Table
	base  Address
}

// NewTableResolver locates the table's module inside proc and binds the
// table to its base address.
func NewTableResolver(table Table, proc process.Process) (*TableResolver, error) {
	base, err := proc.ModuleBase(table.Module)
	if err != nil {
		return nil, fmt.Errorf("resolve module %q: %w", table.Module, err)
	}
	return &TableResolver{table: table, base: base}, nil
}

// NewTableResolverAt binds the table to an explicit module base. Used with
// snapshots, where the memory map already carries the original addresses.
func NewTableResolverAt(table Table, base Address) *TableResolver {
	return &TableResolver{table: table, base: base}
}

// Base returns the module base the resolver is bound to.
func (t *TableResolver) Base() Address {
	return t.base
}

func (t *TableResolver) Resolve(path Path) (Address, []process.ProcessMemorySize, error) {
	spec, ok := t.table.Paths[path.String()]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	offsets := make([]process.ProcessMemorySize, len(spec.Offsets))
	for i, off := range spec.Offsets {
		offsets[i] = process.ProcessMemorySize(off)
	}
	return t.base + Address(spec.Root), offsets, nil
}

func (t *TableResolver) FieldOffset(class, field string) (process.ProcessMemorySize, error) {
	fields, ok := t.table.Classes[class]
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, class, field)
	}
	off, ok := fields[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, class, field)
	}
	return process.ProcessMemorySize(off), nil
}

var _ Resolver = (*TableResolver)(nil)
