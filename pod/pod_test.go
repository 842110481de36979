package pod

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID        int32 `pod:"0,i32"`
	Integrity int32 `pod:"4,i32"`
	Equipped  bool  `pod:"8,bool8"`
	Note      string
}

type testTile struct {
	Cell   int32  `pod:"8,i32"`
	Open   bool   `pod:"12,bool8"`
	Prop   Ptr32  `pod:"16,ptr32"`
	Entity Ptr32  `pod:"20,ptr32"`
	Item   uint32 `pod:"24,ptr32"`
	Action uint32 `pod:"0,u32"`
}

type misaligned struct {
	A int32 `pod:"2,i32"`
}

type overlapping struct {
	A int32 `pod:"0,i32"`
	B bool  `pod:"3,bool8"`
}

type wrongType struct {
	A int64 `pod:"0,i32"`
}

func TestLayoutOf(t *testing.T) {
	l, err := LayoutOf[testItem]()
	require.NoError(t, err)
	assert.Equal(t, uintptr(9), l.Extent)
	assert.Equal(t, uintptr(12), l.Stride)
	assert.Len(t, l.Fields, 3)

	tile, err := LayoutOf[testTile]()
	require.NoError(t, err)
	assert.Equal(t, uintptr(28), tile.Extent)
	assert.Equal(t, uintptr(28), tile.Stride)
	assert.Equal(t, "Action", tile.Fields[0].Name, "fields sorted by offset")

	again, err := LayoutOf[testItem]()
	require.NoError(t, err)
	assert.Same(t, l, again)
}

func TestLayoutRejects(t *testing.T) {
	_, err := LayoutOf[misaligned]()
	assert.ErrorIs(t, err, ErrBadLayout)
	_, err = LayoutOf[overlapping]()
	assert.ErrorIs(t, err, ErrBadLayout)
	_, err = LayoutOf[wrongType]()
	assert.ErrorIs(t, err, ErrBadLayout)
	_, err = LayoutOf[int]()
	assert.ErrorIs(t, err, ErrBadLayout)
}

func TestDecodeIgnoresPadding(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:], 77)
	binary.LittleEndian.PutUint32(data[4:], 0xfffffffe)
	data[8] = 1
	// garbage in the three pad bytes must not leak into the flag
	data[9], data[10], data[11] = 0xde, 0xad, 0xbe

	item, err := Decode[testItem](data)
	require.NoError(t, err)
	assert.Equal(t, int32(77), item.ID)
	assert.Equal(t, int32(-2), item.Integrity)
	assert.True(t, item.Equipped)

	data[8] = 0
	item, err = Decode[testItem](data[:9])
	require.NoError(t, err, "extent is enough, stride is not needed")
	assert.False(t, item.Equipped)

	_, err = Decode[testItem](data[:8])
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestDecodeArray(t *testing.T) {
	data := make([]byte, 12*2+9)
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(data[i*12:], uint32(100+i))
		data[i*12+8] = byte(i % 2)
	}

	items, err := DecodeArray[testItem](data, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int32(102), items[2].ID)
	assert.True(t, items[1].Equipped)
	assert.False(t, items[2].Equipped)

	_, err = DecodeArray[testItem](data, 4)
	assert.ErrorIs(t, err, ErrShortBuffer)

	empty, err := DecodeArray[testItem](nil, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, testTile{Cell: 5, Prop: 0x1234}))
	out := buf.String()
	assert.Contains(t, out, "Cell")
	assert.Contains(t, out, "0x00001234")
	assert.Contains(t, out, "28/28")
	assert.Equal(t, 10, strings.Count(out, "\n"), "header, rule, six fields, separator, footer")
}

func TestEncodeInto(t *testing.T) {
	buf := bytes.Repeat([]byte{0xCC}, 12)
	require.NoError(t, EncodeInto(buf, testItem{ID: -2, Integrity: 300, Equipped: true}))

	assert.Equal(t, []byte{0xFE, 0xFF, 0xFF, 0xFF}, buf[0:4])
	assert.Equal(t, uint32(300), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, byte(1), buf[8])
	assert.Equal(t, []byte{0xCC, 0xCC, 0xCC}, buf[9:12], "padding untouched")

	item, err := Decode[testItem](buf)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), item.ID)
	assert.True(t, item.Equipped)

	_, err = Encode(misaligned{})
	assert.ErrorIs(t, err, ErrBadLayout)

	err = EncodeInto(make([]byte, 4), testItem{})
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestTableRender(t *testing.T) {
	table := NewTable(
		ColumnSpec{Header: "Name"},
		ColumnSpec{Header: "Count", AlignRight: true},
	)
	table.AddRow("a", "10")
	table.AddRow("longer", "", "dropped")
	table.AddSeparator()
	assert.Equal(t, 3, table.Len())

	var out bytes.Buffer
	require.NoError(t, table.Render(&out))
	assert.Equal(t, strings.Join([]string{
		"Name   Count",
		"------ -----",
		"a         10",
		"longer     -",
		"------ -----",
	}, "\n")+"\n", out.String())
}

func TestVisibleLength(t *testing.T) {
	assert.Equal(t, 3, visibleLength("abc"))
	assert.Equal(t, 3, visibleLength("\033[31mabc\033[0m"))
	assert.Equal(t, "\033[31mab\033[0m  ", pad("\033[31mab\033[0m", 4, false))
}
