// Package telemetrytest builds an instrumented game process in memory for
// tests. Helpers panic on misuse, like net/http/httptest.
package telemetrytest

import (
	"bytes"
	"fmt"

	"wizmind/pod"
	"wizmind/process_blob"
	"wizmind/telemetry"
)

const (
	CodeBase = 0x00400000
	HeapBase = 0x02000000
	HeapSize = 0x00400000

	// BlockAddress is where New places the telemetry block
	BlockAddress = HeapBase + 0x40

	// garbage the game leaves in record padding
	fill = 0xCC
)

// Game is a fake game process: a code region plus one heap holding the
// block, the tile array and every record. Callers mutate Block and call
// Flush, or use the helpers which flush themselves.
type Game struct {
	Dump  *process_blob.ProcessDump
	Block telemetry.Block

	heap     []byte
	next     uint64
	playerAt [2]int
}

// New returns a game on the Scrapyard at depth 10 with a width x height map
// and the player standing at (0, 0)
func New(width, height int) *Game {
	g := &Game{
		Dump: process_blob.NewProcessDump(),
		heap: bytes.Repeat([]byte{fill}, HeapSize),
		next: HeapBase + 0x100,
	}
	g.Dump.PID = 4242
	g.Dump.Name = "COGMIND.EXE"
	g.Dump.AddRegion(CodeBase, make([]byte, 0x1000), "r-xp")
	g.Dump.AddRegion(HeapBase, g.heap, "rw-p")

	g.Block = telemetry.Block{
		Magic1:      telemetry.Magic1,
		Magic2:      telemetry.Magic2,
		ActionReady: 1,
	}
	g.Block.Player = g.AddEntity(telemetry.Entity{Integrity: 250})
	g.SetMap(telemetry.MapYRD, 10, width, height)
	return g
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("telemetrytest: %v", err))
	}
}

// Reader returns a telemetry reader over the fake process
func (g *Game) Reader() *telemetry.Reader {
	return telemetry.NewReader(g.Dump, BlockAddress)
}

// Alloc reserves size bytes of heap. The memory holds padding garbage.
func (g *Game) Alloc(size int) telemetry.Ptr32 {
	addr := g.next
	g.next += uint64(size+3) &^ 3
	if g.next > HeapBase+HeapSize {
		panic("telemetrytest: heap exhausted")
	}
	return telemetry.Ptr32(addr)
}

// heapAt returns the heap bytes backing addr. The dump shares the slice,
// so helpers never go through ReadMemory and never trigger Dump.OnRead.
func (g *Game) heapAt(addr telemetry.Ptr32) []byte {
	if uint64(addr) < HeapBase || uint64(addr) >= HeapBase+HeapSize {
		panic(fmt.Sprintf("telemetrytest: %s is outside the heap", addr))
	}
	return g.heap[uint64(addr)-HeapBase:]
}

// write encodes v over the bytes at addr, keeping its padding
func write[T any](g *Game, addr telemetry.Ptr32, v T) {
	must(pod.EncodeInto(g.heapAt(addr), v))
}

func read[T any](g *Game, addr telemetry.Ptr32) T {
	v, err := pod.Decode[T](g.heapAt(addr))
	must(err)
	return v
}

// Corrupt overwrites raw heap bytes at addr
func (g *Game) Corrupt(addr telemetry.Ptr32, data []byte) {
	copy(g.heapAt(addr), data)
}

// Flush writes Block into the fake process
func (g *Game) Flush() {
	write(g, BlockAddress, g.Block)
}

// Advance bumps the turn counter
func (g *Game) Advance() {
	g.Block.ActionReady++
	g.Flush()
}

// SetMap loads a fresh blank map. The player is placed at (0, 0).
func (g *Game) SetMap(mapType telemetry.MapType, depth, width, height int) {
	g.Block.LocationMap = mapType
	g.Block.LocationDepth = int32(depth)
	g.Block.MapWidth = int32(width)
	g.Block.MapHeight = int32(height)
	g.Block.MapData = g.Alloc(width * height * int(telemetry.TileLayout.Stride))
	g.Block.MapCursorIndex = 0
	for i := 0; i < width*height; i++ {
		write(g, g.tileAddr(i), telemetry.Tile{})
	}
	g.playerAt = [2]int{0, 0}
	g.UpdateTile(0, 0, func(t *telemetry.Tile) { t.Entity = g.Block.Player })
	g.Flush()
}

func (g *Game) index(x, y int) int {
	if x < 0 || y < 0 || x >= int(g.Block.MapWidth) || y >= int(g.Block.MapHeight) {
		panic(fmt.Sprintf("telemetrytest: tile (%d, %d) out of range", x, y))
	}
	return y + x*int(g.Block.MapHeight)
}

func (g *Game) tileAddr(i int) telemetry.Ptr32 {
	return g.Block.MapData + telemetry.Ptr32(uintptr(i)*telemetry.TileLayout.Stride)
}

// SetRawTile writes the tile at raw array index i
func (g *Game) SetRawTile(i int, tile telemetry.Tile) {
	write(g, g.tileAddr(i), tile)
}

func (g *Game) Tile(x, y int) telemetry.Tile {
	return read[telemetry.Tile](g, g.tileAddr(g.index(x, y)))
}

func (g *Game) SetTile(x, y int, tile telemetry.Tile) {
	write(g, g.tileAddr(g.index(x, y)), tile)
}

func (g *Game) UpdateTile(x, y int, update func(*telemetry.Tile)) {
	tile := g.Tile(x, y)
	update(&tile)
	g.SetTile(x, y, tile)
}

// SetCell sets the cell id of a tile
func (g *Game) SetCell(x, y int, cell int32) {
	g.UpdateTile(x, y, func(t *telemetry.Tile) { t.Cell = cell })
}

func (g *Game) AddEntity(e telemetry.Entity) telemetry.Ptr32 {
	addr := g.Alloc(int(telemetry.EntityLayout.Stride))
	write(g, addr, e)
	return addr
}

func (g *Game) AddItem(it telemetry.Item) telemetry.Ptr32 {
	addr := g.Alloc(int(telemetry.ItemLayout.Stride))
	write(g, addr, it)
	return addr
}

func (g *Game) AddProp(p telemetry.Prop) telemetry.Ptr32 {
	addr := g.Alloc(int(telemetry.PropLayout.Stride))
	write(g, addr, p)
	return addr
}

func (g *Game) Entity(addr telemetry.Ptr32) telemetry.Entity {
	return read[telemetry.Entity](g, addr)
}

func (g *Game) UpdateEntity(addr telemetry.Ptr32, update func(*telemetry.Entity)) {
	e := g.Entity(addr)
	update(&e)
	write(g, addr, e)
}

// PlaceProp puts a new prop on a tile
func (g *Game) PlaceProp(x, y int, p telemetry.Prop) telemetry.Ptr32 {
	addr := g.AddProp(p)
	g.UpdateTile(x, y, func(t *telemetry.Tile) { t.Prop = addr })
	return addr
}

// PlaceItem puts a new item on a tile
func (g *Game) PlaceItem(x, y int, it telemetry.Item) telemetry.Ptr32 {
	addr := g.AddItem(it)
	g.UpdateTile(x, y, func(t *telemetry.Tile) { t.Item = addr })
	return addr
}

// PlaceEntity puts a new entity on a tile
func (g *Game) PlaceEntity(x, y int, e telemetry.Entity) telemetry.Ptr32 {
	addr := g.AddEntity(e)
	g.UpdateTile(x, y, func(t *telemetry.Tile) { t.Entity = addr })
	return addr
}

// MovePlayer moves the player entity to (x, y)
func (g *Game) MovePlayer(x, y int) {
	g.UpdateTile(g.playerAt[0], g.playerAt[1], func(t *telemetry.Tile) { t.Entity = 0 })
	g.UpdateTile(x, y, func(t *telemetry.Tile) { t.Entity = g.Block.Player })
	g.playerAt = [2]int{x, y}
}

// PlayerPosition is where MovePlayer last put the player
func (g *Game) PlayerPosition() (int, int) {
	return g.playerAt[0], g.playerAt[1]
}

// SetInventory replaces the player inventory
func (g *Game) SetInventory(items ...telemetry.Item) {
	addr := g.Alloc(len(items) * int(telemetry.ItemLayout.Stride))
	for i, it := range items {
		write(g, addr+telemetry.Ptr32(uintptr(i)*telemetry.ItemLayout.Stride), it)
	}
	g.UpdateEntity(g.Block.Player, func(e *telemetry.Entity) {
		e.InventorySize = int32(len(items))
		e.Inventory = addr
		if len(items) == 0 {
			e.Inventory = 0
		}
	})
}

// SetCursor moves the map cursor to (x, y)
func (g *Game) SetCursor(x, y int) {
	g.Block.MapCursorIndex = int32(g.index(x, y))
	g.Flush()
}

// Cursor decodes the cursor index
func (g *Game) Cursor() (int, int) {
	h := int(g.Block.MapHeight)
	return int(g.Block.MapCursorIndex) / h, int(g.Block.MapCursorIndex) % h
}

// OpenHacking shows a hacking popup
func (g *Game) OpenHacking(h telemetry.Hacking) telemetry.Ptr32 {
	addr := g.Alloc(int(telemetry.HackingLayout.Stride))
	write(g, addr, h)
	g.Block.MachineHacking = addr
	g.Flush()
	return addr
}

func (g *Game) Hacking() (telemetry.Hacking, bool) {
	if g.Block.MachineHacking.IsNull() {
		return telemetry.Hacking{}, false
	}
	return read[telemetry.Hacking](g, g.Block.MachineHacking), true
}

func (g *Game) UpdateHacking(update func(*telemetry.Hacking)) {
	h, ok := g.Hacking()
	if !ok {
		panic("telemetrytest: no hacking popup open")
	}
	update(&h)
	write(g, g.Block.MachineHacking, h)
}

func (g *Game) CloseHacking() {
	g.Block.MachineHacking = 0
	g.Flush()
}
