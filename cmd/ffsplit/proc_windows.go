//go:build windows

package main

import (
	"ffsplit/process"
	"ffsplit/process_windows"
)

func newPlatformProcess() process.Process {
	return process_windows.New()
}
