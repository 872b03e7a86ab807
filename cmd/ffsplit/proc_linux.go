//go:build linux

package main

import (
	"ffsplit/process"
	"ffsplit/process_linux"
)

func newPlatformProcess() process.Process {
	return process_linux.New()
}
