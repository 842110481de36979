//go:build linux

package main

import (
	"wizmind/process"
	"wizmind/process_linux"
)

func processFinder() process.ProcessFinder {
	return process_linux.NewProcessFinder()
}

func openProcess(pid process.ProcessID) (process.Process, error) {
	return process_linux.NewWithPID(pid)
}
