package process_blob

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"wizmind/process"
	"wizmind/process/memory_map"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(values ...uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func TestProcessDumpReadMemory(t *testing.T) {
	dump := NewProcessDump()
	dump.AddRegion(0x1000, words(1, 2, 3, 4), "rw-p")

	data, err := dump.ReadMemory(0x1004, 8)
	require.NoError(t, err)
	assert.Equal(t, words(2, 3), data)

	_, err = dump.ReadMemory(0x100c, 8)
	assert.ErrorIs(t, err, process.ErrShortRead)

	_, err = dump.ReadMemory(0x2000, 4)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)

	dump.SetExited(true)
	assert.True(t, dump.HasExited())
	_, err = dump.ReadMemory(0x1000, 4)
	assert.ErrorIs(t, err, process.ErrProcessExited)
}

func TestProcessDumpWriteAtAndOnRead(t *testing.T) {
	dump := NewProcessDump()
	dump.AddRegion(0x1000, words(0, 0), "rw-p")

	reads := 0
	dump.OnRead = func(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) {
		reads++
		require.NoError(t, dump.WriteAt(0x1004, words(uint32(reads))))
	}

	for want := uint32(1); want <= 3; want++ {
		data, err := dump.ReadMemory(0x1004, 4)
		require.NoError(t, err)
		assert.Equal(t, want, binary.LittleEndian.Uint32(data))
	}

	assert.ErrorIs(t, dump.WriteAt(0x5000, words(1)), process.ErrAddressNotMapped)
	assert.Error(t, dump.WriteAt(0x1006, words(1)))
}

func TestProcessDumpSaveLoad(t *testing.T) {
	dir := t.TempDir()

	dump := NewProcessDump()
	dump.PID = 4242
	dump.Name = "Cogmind"
	dump.Exe = "/games/cogmind/COGMIND.exe"
	dump.AddRegion(0x20000, words(10, 20, 30), "rw-p")
	dump.AddRegion(0x10000, make([]byte, 4096), "r--p")
	require.NoError(t, dump.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "blob_0x20000_12.bin.zst"))
	require.NoError(t, err)

	loaded := NewProcessDump()
	require.NoError(t, loaded.Load(dir))
	assert.Equal(t, process.ProcessID(4242), loaded.GetPID())
	assert.Equal(t, "Cogmind", loaded.Name)

	exe, err := loaded.ExePath()
	require.NoError(t, err)
	assert.Equal(t, "/games/cogmind/COGMIND.exe", exe)

	mm, err := loaded.GetMemoryMap()
	require.NoError(t, err)
	require.Len(t, mm, 2)
	assert.Equal(t, uint64(0x10000), mm[0].Address)

	data, err := loaded.ReadMemory(0x20008, 4)
	require.NoError(t, err)
	assert.Equal(t, words(30), data)
}

func TestCapture(t *testing.T) {
	live := NewProcessDump()
	live.PID = 7
	live.AddRegion(0x1000, words(1, 2), "rw-p")
	live.AddRegion(0x9000, words(3), "r-xp")

	dump, err := Capture(live, "Cogmind", func(region memory_map.MemoryMapItem) bool { return region.IsReadWrite() })
	require.NoError(t, err)

	mm, err := dump.GetMemoryMap()
	require.NoError(t, err)
	require.Len(t, mm, 1)
	assert.Equal(t, uint64(0x1000), mm[0].Address)
	assert.Equal(t, process.ProcessID(7), dump.GetPID())
}

func TestProcessBlobOffsetUINT32(t *testing.T) {
	blob := NewProcessBlob(0x4000, append(words(0xffffffff, 7), 1))

	tests := []struct {
		name   string
		offset process.ProcessMemoryAddress
		want   uint32
		fails  bool
	}{
		{"first word", 0, 0xffffffff, false},
		{"second word", 4, 7, false},
		{"unaligned", 5, 0x01000000, false},
		{"past the end", 6, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := blob.OffsetUINT32(tt.offset)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
	assert.Equal(t, process.ProcessMemoryAddress(0x4000), blob.Address())
}
