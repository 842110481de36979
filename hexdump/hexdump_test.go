package hexdump

import (
	"encoding/binary"
	"strings"
	"testing"

	"wizmind/pod"
	"wizmind/process/memory_map"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    int32     `pod:"0,i32"`
	Next  pod.Ptr32 `pod:"4,ptr32"`
	Ready bool      `pod:"8,bool8"`
}

func TestFromLayout(t *testing.T) {
	l, err := pod.LayoutOf[record]()
	require.NoError(t, err)

	assert.Equal(t, []Annotation{
		{Offset: 0, Size: 4, Label: "ID"},
		{Offset: 4, Size: 4, Label: "Next"},
		{Offset: 8, Size: 1, Label: "Ready"},
	}, FromLayout(l))
}

func TestDumpLines(t *testing.T) {
	data := make([]byte, 40)
	copy(data[16:], "COGMIND")

	options := DefaultOptions()
	options.StartAddress = 0x10000
	out := Dump(data, options)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "00010000")
	assert.Contains(t, lines[1], "00010010")
	assert.Contains(t, lines[2], "00010020")
	for _, c := range "COGMIND" {
		assert.Contains(t, lines[1], string(c))
	}
}

func TestDumpAnnotationsAndPointers(t *testing.T) {
	l, err := pod.LayoutOf[record]()
	require.NoError(t, err)

	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:], 7)
	binary.LittleEndian.PutUint32(data[4:], 0x20010)
	data[8] = 1
	binary.LittleEndian.PutUint32(data[12:], 0x20ffe)

	options := DefaultOptions()
	options.Annotations = FromLayout(l)
	options.MemoryMap = []memory_map.MemoryMapItem{{Address: 0x20000, Size: 0x1000, Perms: "rw-p"}}
	out := Dump(data, options)

	assert.Contains(t, out, "+00 ID")
	assert.Contains(t, out, "+04 Next")
	assert.Contains(t, out, "+08 Ready")
	assert.Contains(t, out, "+04->0x00020010")
	assert.NotContains(t, out, "+00->", "small integers are not pointers")
	assert.NotContains(t, out, "+0c->", "word runs past the region end")
}

func TestDumpMaxLines(t *testing.T) {
	options := DefaultOptions()
	options.MaxLines = 1
	out := Dump(make([]byte, 64), options)

	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "... 48 more bytes")
}
