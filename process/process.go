// Package process provides read-only access to the memory of another
// process. Implementations live in process_linux, process_windows and
// process_blob; everything above them works against the interfaces here.
package process

import (
	"errors"

	"ffsplit/process/memory_map"
)

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrInvalidPointer is returned when a pointer read yields NULL or a non-canonical address.
	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrPartialRead is returned when fewer bytes than requested could be read.
	ErrPartialRead = errors.New("partial read")

	// ErrProcessNotFound is returned when no process matches a name lookup.
	ErrProcessNotFound = errors.New("process not found")

	// ErrModuleNotFound is returned when a loaded module name is not present in the memory map.
	ErrModuleNotFound = errors.New("module not found")
)

// ProcessRead is the minimal surface for reading remote memory. The typed
// helpers in read.go and the pointer-chain walkers in path.go are built on it.
type ProcessRead interface {
	// ReadMemory reads size bytes from the process at the specified address.
	// A short read is an error; callers always get size bytes or nil.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// Process is the interface that defines operations for inspecting a system process
type Process interface {
	ProcessRead

	// Open opens a process with the given PID for memory reads
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// UpdateMemoryMap refreshes the memory map for the process. The map is
	// never refreshed implicitly; staleness between calls surfaces as read
	// errors, which callers treat as an unknown value for that poll.
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() (memory_map.MemoryMap, error)

	// ModuleBase returns the load address of a mapped module (executable or
	// shared object) by its basename, e.g. "GameAssembly.dll".
	ModuleBase(name string) (ProcessMemoryAddress, error)
}
