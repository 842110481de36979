package mirror

import (
	"fmt"

	"wizmind/analysis"
	"wizmind/telemetry"
)

// Grid is the decoded tile array in row-major order
type Grid struct {
	stamp
	width  int
	height int
	tiles  []*Tile
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// At returns the tile at (x, y). Coordinates off the map are a caller
// error and panic.
func (g *Grid) At(x, y int) *Tile {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		panic(fmt.Sprintf("mirror: tile (%d, %d) outside %dx%d map", x, y, g.width, g.height))
	}
	g.check()
	return g.tiles[x+y*g.width]
}

// Tiles returns every tile, left to right then top to bottom
func (g *Grid) Tiles() []*Tile {
	g.check()
	return g.tiles
}

// rawIndex is where (x, y) sits in the game's column-major array
func rawIndex(x, y, height int) int {
	return y + x*height
}

// Grid decodes the tile array once per generation
func (m *Mirror) Grid() (*Grid, error) {
	block, err := m.Read()
	if err != nil {
		return nil, err
	}
	if m.grid != nil {
		return m.grid, nil
	}

	width, height := int(block.MapWidth), int(block.MapHeight)
	raw, err := telemetry.ReadArray[telemetry.Tile](m.reader, block.MapData, block.TileCount())
	if err != nil {
		return nil, fmt.Errorf("map %dx%d: %w", width, height, err)
	}

	s := m.stamp()
	g := &Grid{stamp: s, width: width, height: height, tiles: make([]*Tile, len(raw))}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			i := rawIndex(x, y, height)
			g.tiles[x+y*width] = &Tile{
				stamp: s,
				x:     x,
				y:     y,
				addr:  block.MapData + telemetry.Ptr32(uintptr(i)*telemetry.TileLayout.Stride),
				raw:   raw[i],
			}
		}
	}
	m.grid = g
	return g, nil
}

// Tile returns the tile at (x, y). See Grid.At.
func (m *Mirror) Tile(x, y int) (*Tile, error) {
	g, err := m.Grid()
	if err != nil {
		return nil, err
	}
	return g.At(x, y), nil
}

// Player decodes the player entity once per generation
func (m *Mirror) Player() (*Entity, error) {
	block, err := m.Read()
	if err != nil {
		return nil, err
	}
	if m.player == nil {
		e, err := m.newEntity(block.Player)
		if err != nil {
			return nil, fmt.Errorf("player: %w", err)
		}
		m.player = e
	}
	return m.player, nil
}

// PlayerPosition finds the tile holding the player entity
func (m *Mirror) PlayerPosition() (analysis.Point, error) {
	block, err := m.Read()
	if err != nil {
		return analysis.Point{}, err
	}
	g, err := m.Grid()
	if err != nil {
		return analysis.Point{}, err
	}
	for _, t := range g.tiles {
		if t.raw.Entity == block.Player {
			return analysis.Point{X: t.x, Y: t.y}, nil
		}
	}
	return analysis.Point{}, fmt.Errorf("player %s not on the map", block.Player)
}

// Hacking returns the open hacking popup, nil when none is open
func (m *Mirror) Hacking() (*Hacking, error) {
	block, err := m.Read()
	if err != nil {
		return nil, err
	}
	if block.MachineHacking.IsNull() {
		return nil, nil
	}
	if m.hacking == nil {
		raw, err := telemetry.ReadRecord[telemetry.Hacking](m.reader, block.MachineHacking)
		if err != nil {
			return nil, fmt.Errorf("hacking: %w", err)
		}
		m.hacking = &Hacking{stamp: m.stamp(), addr: block.MachineHacking, raw: raw}
	}
	return m.hacking, nil
}

// CursorPosition decodes the map cursor index, which counts down columns
func (m *Mirror) CursorPosition() (analysis.Point, error) {
	block, err := m.Read()
	if err != nil {
		return analysis.Point{}, err
	}
	if block.MapHeight <= 0 {
		return analysis.Point{}, fmt.Errorf("map height %d", block.MapHeight)
	}
	idx := int(block.MapCursorIndex)
	height := int(block.MapHeight)
	return analysis.Point{X: idx / height, Y: idx % height}, nil
}

// Snapshot decodes the whole map, props, items and entities included, into
// a grid the analysis functions work on
func (m *Mirror) Snapshot() (*analysis.Grid, error) {
	g, err := m.Grid()
	if err != nil {
		return nil, err
	}

	out := analysis.NewGrid(g.width, g.height)
	for i, t := range g.tiles {
		cell := &out.Cells[i]
		cell.CellID = t.Cell()
		cell.Name = t.Name()
		cell.DoorOpen = t.DoorOpen()

		prop, err := t.Prop()
		if err != nil {
			return nil, err
		}
		if prop != nil {
			cell.Prop = &analysis.Prop{ID: prop.ID(), Name: prop.Name(), Interactive: prop.InteractivePiece()}
		}

		item, err := t.Item()
		if err != nil {
			return nil, err
		}
		if item != nil {
			cell.Item = &analysis.Item{ID: item.ID(), Name: item.Name(), Integrity: item.Integrity(), Equipped: item.Equipped()}
		}

		entity, err := t.Entity()
		if err != nil {
			return nil, err
		}
		if entity != nil {
			cell.Entity = &analysis.Entity{ID: entity.ID(), Name: entity.Name()}
		}
	}
	return out, nil
}
