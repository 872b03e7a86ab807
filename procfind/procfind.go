// Package procfind locates the game process by executable name.
package procfind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Info describes one candidate process.
type Info struct {
	PID  int
	Name string
	Exe  string
}

// List returns processes whose name or exe basename contains filter,
// case-insensitively. An empty filter matches everything. The calling
// process is never listed.
func List(filter string) ([]Info, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("procfind: list processes: %w", err)
	}

	filter = strings.ToLower(filter)
	self := os.Getpid()

	var out []Info
	for _, p := range procs {
		if int(p.Pid) == self {
			continue
		}

		// Name and Exe both fail on processes we cannot inspect.
		name, _ := p.Name()
		exe, _ := p.Exe()
		if name == "" && exe == "" {
			continue
		}

		base := filepath.Base(exe)
		if filter != "" &&
			!strings.Contains(strings.ToLower(name), filter) &&
			!strings.Contains(strings.ToLower(base), filter) {
			continue
		}

		out = append(out, Info{PID: int(p.Pid), Name: name, Exe: exe})
	}

	return out, nil
}

// FindByName returns the lowest pid whose name or exe basename equals name,
// case-insensitively. Returns an error wrapping os.ErrNotExist when nothing
// matches.
func FindByName(name string) (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, fmt.Errorf("procfind: list processes: %w", err)
	}

	self := os.Getpid()
	found := 0

	for _, p := range procs {
		pid := int(p.Pid)
		if pid == self {
			continue
		}

		procName, _ := p.Name()
		exe, _ := p.Exe()
		if !strings.EqualFold(procName, name) && !strings.EqualFold(filepath.Base(exe), name) {
			continue
		}

		if found == 0 || pid < found {
			found = pid
		}
	}

	if found == 0 {
		return 0, fmt.Errorf("procfind: %s: %w", name, os.ErrNotExist)
	}
	return found, nil
}

// WaitFor polls FindByName every interval until the process shows up or ctx
// ends. Errors other than not-found abort the wait.
func WaitFor(ctx context.Context, name string, interval time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pid, err := FindByName(name)
		if err == nil {
			return pid, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("procfind: waiting for %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}
