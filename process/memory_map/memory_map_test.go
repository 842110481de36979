package memory_map

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaps = `7f0000002000-7f0000003000 r--p 00000000 00:00 0
00400000-0040b000 r-xp 00000000 08:01 1234 /usr/bin/cat
00010000-00110000 rw-p 00000000 00:00 0 [heap]
garbage line
7f0000000000-7f0000001000 rwxp 00000000 00:00 0
`

func TestParseMaps(t *testing.T) {
	mm, err := ParseMaps(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	require.Len(t, mm, 4)

	assert.Equal(t, uint64(0x10000), mm[0].Address, "sorted by address")
	assert.Equal(t, uint(0x100000), mm[0].Size)
	assert.True(t, mm[0].IsReadWrite())
	assert.False(t, mm[1].IsReadWrite(), "executable code is not a data page")
	assert.False(t, mm[2].IsReadWrite(), "rwx is not plain read-write")
	assert.True(t, mm[3].IsReadable())
	assert.False(t, mm[3].IsWritable())
}

func TestRegionFor(t *testing.T) {
	mm := []MemoryMapItem{
		{Address: 0x3000, Size: 0x1000, Perms: "rw-p"},
		{Address: 0x1000, Size: 0x1000, Perms: "r--p"},
	}
	Sort(mm)

	assert.Nil(t, RegionFor(0x0fff, mm))
	require.NotNil(t, RegionFor(0x1000, mm))
	assert.Equal(t, uint64(0x1000), RegionFor(0x1fff, mm).Address)
	assert.Nil(t, RegionFor(0x2000, mm), "gap between regions")
	assert.Equal(t, uint64(0x3000), RegionFor(0x3800, mm).Address)
	assert.Nil(t, RegionFor(0x4000, mm))

	assert.True(t, Contains(0x3000, 0x1000, mm))
	assert.False(t, Contains(0x3800, 0x1000, mm))
}
