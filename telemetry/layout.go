// Package telemetry describes the luigiAi block Cogmind exposes when started
// with -luigiai, and reads it out of the game process.
package telemetry

import (
	"wizmind/pod"
)

// LayoutVersion names the record layouts below. Bump it when the game
// changes a record and keep the old layouts reachable if both must be read.
const LayoutVersion = "luigiai-1"

// The block starts with these two words
const (
	Magic1 = 1689123404
	Magic2 = 2035498713
)

// Ptr32 is a pointer inside the 32-bit game process
type Ptr32 = pod.Ptr32

// Block is the fixed telemetry record the locator finds
type Block struct {
	Magic1         int32   `pod:"0,i32"`
	Magic2         int32   `pod:"4,i32"`
	ActionReady    int32   `pod:"8,i32"` // turn counter
	MapWidth       int32   `pod:"12,i32"`
	MapHeight      int32   `pod:"16,i32"`
	LocationDepth  int32   `pod:"20,i32"`
	LocationMap    MapType `pod:"24,i32"`
	MapData        Ptr32   `pod:"28,ptr32"` // Tile[MapWidth*MapHeight], column-major
	MapCursorIndex int32   `pod:"32,i32"`
	Player         Ptr32   `pod:"36,ptr32"` // Entity
	MachineHacking Ptr32   `pod:"40,ptr32"` // Hacking, null unless a hack popup is open
}

// Valid reports whether both marker words are intact
func (b Block) Valid() bool {
	return b.Magic1 == Magic1 && b.Magic2 == Magic2
}

// TileCount is the number of tiles MapData points at
func (b Block) TileCount() int {
	if b.MapWidth <= 0 || b.MapHeight <= 0 {
		return 0
	}
	return int(b.MapWidth) * int(b.MapHeight)
}

// Tile is one map cell. The three bytes after DoorOpen are not initialized
// by the game.
type Tile struct {
	LastAction int32 `pod:"0,i32"`
	LastFov    int32 `pod:"4,i32"`
	Cell       int32 `pod:"8,i32"`
	DoorOpen   bool  `pod:"12,bool8"`
	Prop       Ptr32 `pod:"16,ptr32"`
	Entity     Ptr32 `pod:"20,ptr32"`
	Item       Ptr32 `pod:"24,ptr32"`
}

type Entity struct {
	ID               int32 `pod:"0,i32"`
	Integrity        int32 `pod:"4,i32"`
	Relation         int32 `pod:"8,i32"`
	ActiveState      int32 `pod:"12,i32"`
	Exposure         int32 `pod:"16,i32"`
	Energy           int32 `pod:"20,i32"`
	Matter           int32 `pod:"24,i32"`
	Heat             int32 `pod:"28,i32"`
	SystemCorruption int32 `pod:"32,i32"`
	Speed            int32 `pod:"36,i32"`
	InventorySize    int32 `pod:"40,i32"`
	Inventory        Ptr32 `pod:"44,ptr32"` // Item[InventorySize]
}

type Item struct {
	ID        int32 `pod:"0,i32"`
	Integrity int32 `pod:"4,i32"`
	Equipped  bool  `pod:"8,bool8"`
}

type Prop struct {
	ID               int32 `pod:"0,i32"`
	InteractivePiece bool  `pod:"4,bool8"`
}

// Hacking is present while a machine hacking popup is open. ActionReady is
// its own counter and starts at 1 once the popup is ready for input.
type Hacking struct {
	ActionReady     int32 `pod:"0,i32"`
	DetectChance    int32 `pod:"4,i32"`
	TraceProgress   int32 `pod:"8,i32"`
	LastHackSuccess bool  `pod:"12,bool8"`
}

var (
	BlockLayout   = pod.MustLayout[Block]()
	TileLayout    = pod.MustLayout[Tile]()
	EntityLayout  = pod.MustLayout[Entity]()
	ItemLayout    = pod.MustLayout[Item]()
	PropLayout    = pod.MustLayout[Prop]()
	HackingLayout = pod.MustLayout[Hacking]()
)
