//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"unsafe"

	"wizmind/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory from another process
func process_vm_readv(
	pid process.ProcessID,
	remoteAddr process.ProcessMemoryAddress,
	bytesToRead process.ProcessMemorySize,
) ([]byte, error) {
	localBuf := make([]byte, bytesToRead)

	// Create iovec for local buffer
	localIov := unix.Iovec{
		Base: &localBuf[0],
		Len:  uint64(bytesToRead),
	}

	// Create iovec for remote buffer
	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	// Call process_vm_readv
	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	// Check for errors
	if errno != 0 {
		return nil, errno
	}

	// Check if we read the expected number of bytes
	if int(n) != int(bytesToRead) {
		return nil, fmt.Errorf("%w: expected %d, got %d", process.ErrShortRead, bytesToRead, n)
	}

	return localBuf, nil
}

// ReadMemory reads memory from the process at the specified address. The
// memory map is refreshed once when addr falls outside it, since the game
// maps new tile and entity arrays whenever it changes map.
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	// Copy the PID and check the address under the lock
	p.mu.Lock()
	pid := p.pid
	valid := p.isValidAddressInternal(addr)
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	if !valid {
		if !procExists(int(pid)) {
			return nil, process.ErrProcessExited
		}
		// Region may have been mapped after the last snapshot
		if err := p.UpdateMemoryMap(); err != nil {
			return nil, err
		}
		if !p.IsValidAddress(addr) {
			return nil, process.ErrAddressNotMapped
		}
	}

	// Read without holding the lock
	data, err := process_vm_readv(pid, addr, size)
	if err != nil {
		switch {
		case errors.Is(err, unix.ESRCH):
			return nil, process.ErrProcessExited
		case errors.Is(err, unix.EFAULT):
			// Unmapped since the last snapshot
			return nil, process.ErrAddressNotMapped
		}
		return nil, fmt.Errorf("process_vm_readv: failed to read process memory: %w", err)
	}

	return data, nil
}
