package analysis

import "fmt"

// Prop is the prop standing on a cell
type Prop struct {
	ID          int32
	Name        string
	Interactive bool
}

// Item is the item lying on a cell
type Item struct {
	ID        int32
	Name      string
	Integrity int32
	Equipped  bool
}

// Entity is the entity standing on a cell
type Entity struct {
	ID   int32
	Name string
}

// Cell is one decoded map tile. Prop, Item and Entity are nil when absent.
type Cell struct {
	Point
	CellID   int32
	Name     string
	DoorOpen bool
	Prop     *Prop
	Item     *Item
	Entity   *Entity
}

// Grid is a row-major map snapshot
type Grid struct {
	Width  int
	Height int
	Cells  []Cell
}

// NewGrid returns a grid with every cell's coordinates filled in
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height, Cells: make([]Cell, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Cells[x+y*width].Point = Point{X: x, Y: y}
		}
	}
	return g
}

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

// At returns the cell at (x, y). Out of range coordinates are a programming
// error and panic.
func (g *Grid) At(x, y int) *Cell {
	if !g.InBounds(Point{X: x, Y: y}) {
		panic(fmt.Sprintf("analysis: (%d, %d) outside %dx%d grid", x, y, g.Width, g.Height))
	}
	return &g.Cells[x+y*g.Width]
}

func (g *Grid) Cell(p Point) *Cell {
	return g.At(p.X, p.Y)
}

var (
	cardinal = []Direction{Left, Right, Up, Down}
)

// Neighbors4 returns the in-bounds cardinal neighbours of p
func (g *Grid) Neighbors4(p Point) []Point {
	return g.neighbors(p, cardinal)
}

// Neighbors8 returns the in-bounds cardinal and diagonal neighbours of p
func (g *Grid) Neighbors8(p Point) []Point {
	return g.neighbors(p, Directions)
}

func (g *Grid) neighbors(p Point, dirs []Direction) []Point {
	out := make([]Point, 0, len(dirs))
	for _, d := range dirs {
		n := p.Add(d.Delta())
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Find returns the cells matching match in row-major order
func (g *Grid) Find(match func(*Cell) bool) []*Cell {
	var out []*Cell
	for i := range g.Cells {
		if match(&g.Cells[i]) {
			out = append(out, &g.Cells[i])
		}
	}
	return out
}

// Nearest returns the cell closest to p by MaxDistance. Ties go to the
// first cell in row-major order.
func Nearest(cells []*Cell, p Point) *Cell {
	var best *Cell
	for _, c := range cells {
		if best == nil || c.MaxDistance(p) < best.MaxDistance(p) {
			best = c
		}
	}
	return best
}
