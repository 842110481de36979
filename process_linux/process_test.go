//go:build linux

package process_linux

import (
	"os"
	"testing"
	"unsafe"

	"wizmind/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestReadMemoryNotOpen(t *testing.T) {
	_, err := New().ReadMemory(0x20000, 4)
	assert.ErrorIs(t, err, process.ErrProcessNotOpen)
}

func TestReadMemoryMappedAfterOpen(t *testing.T) {
	proc, err := NewWithPID(process.ProcessID(os.Getpid()))
	require.NoError(t, err)
	defer proc.Close()

	region, err := unix.Mmap(-1, 0, 1<<20, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(t, err)
	copy(region[0x800:], "wizmind")
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&region[0])))

	data, err := proc.ReadMemory(addr+0x800, 7)
	require.NoError(t, err)
	assert.Equal(t, "wizmind", string(data))
	assert.True(t, proc.IsValidAddress(addr), "map refreshed by the read")

	require.NoError(t, unix.Munmap(region))
	_, err = proc.ReadMemory(addr+0x800, 7)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}
