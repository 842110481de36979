//go:build !windows && !linux

package main

import (
	"errors"
	"runtime"

	"wizmind/process"
)

var errPlatform = errors.New("reading game memory is not supported on " + runtime.GOOS)

type unsupportedFinder struct{}

func (unsupportedFinder) FindProcessByName(string) ([]process.ProcessInfo, error) {
	return nil, errPlatform
}

func processFinder() process.ProcessFinder {
	return unsupportedFinder{}
}

func openProcess(process.ProcessID) (process.Process, error) {
	return nil, errPlatform
}
