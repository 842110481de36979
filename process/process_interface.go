package process

import (
	"wizmind/process/memory_map"
)

// Process is the interface that defines read operations against a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// HasExited reports whether the process is no longer running
	HasExited() bool

	// ExePath returns the full path of the process executable
	ExePath() (string, error)

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// ReadMemory reads exactly size bytes from the process at the specified address.
	// A partial read is reported as ErrShortRead.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}
