package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ffsplit/il2cpp"
	"ffsplit/process"
	"ffsplit/process_blob"
)

// openTarget opens either a live process by pid or a saved snapshot
// directory, so the inspection commands work the same against both.
func openTarget(pid int, from string) (process.Process, error) {
	if from != "" && pid != 0 {
		return nil, errors.New("use --pid or --from, not both")
	}
	if from != "" {
		return process_blob.Load(from)
	}
	if pid == 0 {
		return nil, errors.New("need --pid or --from")
	}

	proc := newPlatformProcess()
	if err := proc.Open(process.ProcessID(pid)); err != nil {
		return nil, err
	}
	if err := proc.UpdateMemoryMap(); err != nil {
		proc.Close()
		return nil, err
	}
	return proc, nil
}

// parseAddr accepts 0x-prefixed hex or plain decimal.
func parseAddr(s string) (process.ProcessMemoryAddress, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", s, err)
	}
	return process.ProcessMemoryAddress(n), nil
}

// parseFieldPath turns "Class.field.field" into a resolvable path.
func parseFieldPath(arg string) (il2cpp.Path, error) {
	parts := strings.Split(arg, ".")
	if len(parts) < 2 {
		return il2cpp.Path{}, fmt.Errorf("path %q needs at least Class.field", arg)
	}
	return il2cpp.Path{Class: parts[0], Fields: parts[1:]}, nil
}
