//go:build windows

package main

import (
	"wizmind/process"
	"wizmind/process_windows"
)

func processFinder() process.ProcessFinder {
	return process_windows.NewProcessFinder()
}

func openProcess(pid process.ProcessID) (process.Process, error) {
	return process_windows.NewWithPID(pid)
}
