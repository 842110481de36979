// Package process provides interfaces and types for reading the memory of another process
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessExited is returned when the target process is gone.
	ErrProcessExited = errors.New("process exited")

	// ErrShortRead is returned when fewer bytes arrived than were requested.
	ErrShortRead = errors.New("read incomplete")
)
