package analysis

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint(t *testing.T) {
	assert.Equal(t, 5, Point{1, 2}.MaxDistance(Point{6, -1}))
	assert.Equal(t, Down, DirectionOf(0, 3))
	assert.Equal(t, UpLeft, DirectionOf(-2, -9))
	assert.Equal(t, None, DirectionOf(0, 0))
	assert.Equal(t, DownLeft, UpRight.Opposite())

	d, err := ParseDirection("down-right")
	require.NoError(t, err)
	assert.Equal(t, DownRight, d)
}

func TestNeighbors(t *testing.T) {
	g := NewGrid(3, 2)

	tests := []struct {
		name string
		p    Point
		n4   int
		n8   int
	}{
		{"corner", Point{0, 0}, 2, 3},
		{"edge", Point{1, 0}, 3, 5},
		{"far corner", Point{2, 1}, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n4 := g.Neighbors4(tt.p)
			n8 := g.Neighbors8(tt.p)
			assert.Len(t, n4, tt.n4)
			assert.Len(t, n8, tt.n8)
			for _, n := range n8 {
				assert.True(t, g.InBounds(n), "no wraparound: %v", n)
			}
		})
	}

	assert.Panics(t, func() { g.At(3, 0) })
	assert.Panics(t, func() { g.At(0, -1) })
}

func withProp(g *Grid, name string, points ...Point) {
	for _, p := range points {
		g.Cell(p).Prop = &Prop{Name: name}
	}
}

func groupSizes(groups [][]*Cell) []int {
	sizes := make([]int, 0, len(groups))
	for _, group := range groups {
		sizes = append(sizes, len(group))
	}
	sort.Ints(sizes)
	return sizes
}

func TestPropGroups(t *testing.T) {
	t.Run("two strips touching on a short edge", func(t *testing.T) {
		g := NewGrid(8, 3)
		withProp(g, "Fabricator", Point{0, 1}, Point{1, 1}, Point{2, 1})
		withProp(g, "Fabricator", Point{3, 1}, Point{4, 1}, Point{5, 1})

		groups := PropGroups(g)
		assert.Equal(t, []int{6}, groupSizes(groups))
		assert.Equal(t, map[string]int{"Fabricator": 1}, PropCounts(g))
	})

	t.Run("strip joined through a late cell", func(t *testing.T) {
		// row-major scan sees (0,0) and (2,0) before the cell joining them
		g := NewGrid(3, 2)
		withProp(g, "Terminal", Point{0, 0}, Point{2, 0}, Point{0, 1}, Point{1, 1}, Point{2, 1})
		assert.Equal(t, []int{5}, groupSizes(PropGroups(g)))
	})

	t.Run("different props never merge", func(t *testing.T) {
		g := NewGrid(4, 1)
		withProp(g, "Terminal", Point{0, 0}, Point{1, 0})
		withProp(g, "Scanalyzer", Point{2, 0}, Point{3, 0})
		assert.Equal(t, map[string]int{"Terminal": 1, "Scanalyzer": 1}, PropCounts(g))
	})

	t.Run("diagonal is not adjacent", func(t *testing.T) {
		g := NewGrid(2, 2)
		withProp(g, "Terminal", Point{0, 0}, Point{1, 1})
		assert.Equal(t, map[string]int{"Terminal": 2}, PropCounts(g))
	})

	t.Run("partition", func(t *testing.T) {
		g := NewGrid(6, 6)
		for i := range g.Cells {
			if (g.Cells[i].X*7+g.Cells[i].Y*3)%4 != 0 {
				name := "A"
				if g.Cells[i].X > 2 {
					name = "B"
				}
				g.Cells[i].Prop = &Prop{Name: name}
			}
		}

		seen := map[Point]int{}
		for _, group := range PropGroups(g) {
			for _, c := range group {
				seen[c.Point]++
				assert.Equal(t, group[0].Prop.Name, c.Prop.Name)
			}
		}
		for i := range g.Cells {
			if g.Cells[i].Prop != nil {
				assert.Equal(t, 1, seen[g.Cells[i].Point], "cell %v", g.Cells[i].Point)
			} else {
				assert.Zero(t, seen[g.Cells[i].Point])
			}
		}
	})
}

func TestCounts(t *testing.T) {
	g := NewGrid(2, 2)
	g.At(0, 0).Name = "FLOOR"
	g.At(1, 0).Name = "FLOOR"
	g.At(0, 1).Name = "WALL"
	g.At(1, 1).Name = "STAIRS_MAT"
	g.At(0, 0).Item = &Item{Name: "Ion Engine"}
	g.At(1, 0).Item = &Item{Name: "Ion Engine"}

	assert.Equal(t, map[string]int{"FLOOR": 2, "WALL": 1, "STAIRS_MAT": 1}, TileCounts(g))
	assert.Equal(t, map[string]int{"Ion Engine": 2}, ItemCounts(g))

	stairs := FindTilesByType(g, NewTileClassifier(), TileStairs)
	require.Len(t, stairs, 1)
	assert.Equal(t, Point{1, 1}, stairs[0].Point)
}

func TestClassify(t *testing.T) {
	props := NewPropClassifier()
	tests := []struct {
		name string
		want PropType
	}{
		{"Garrison Access", PropGarrisonAccess},
		{"Garrison Terminal", PropGarrisonTerminal},
		{"Terminal", PropTerminal},
		{"Terminal (Restricted)", PropTerminal},
		{"Garrison Accessway", PropOther},
		{"RIF Installer", PropRifInstaller},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, props.Classify(tt.name))
			assert.Equal(t, tt.want, props.Classify(tt.name), "memoized")
		})
	}

	g := NewGrid(3, 1)
	withProp(g, "Garrison Access", Point{0, 0}, Point{1, 0}, Point{2, 0})
	g.At(1, 0).Prop.Interactive = true
	assert.Len(t, FindPropTiles(g, props, PropGarrisonAccess, false), 3)
	interactive := FindPropTiles(g, props, PropGarrisonAccess, true)
	require.Len(t, interactive, 1)
	assert.Equal(t, Point{1, 0}, interactive[0].Point)

	assert.Equal(t, interactive[0], Nearest(interactive, Point{2, 0}))
}

func walk(c *CursorPlanner, from Point, plan []Step) Point {
	for _, s := range plan {
		from = c.apply(from, s)
	}
	return from
}

func TestCursorPlanner(t *testing.T) {
	c := NewCursorPlanner(40, 30)

	tests := []struct {
		name  string
		from  Point
		to    Point
		steps int
	}{
		{"same cell", Point{5, 5}, Point{5, 5}, 0},
		{"one unit", Point{5, 5}, Point{6, 5}, 1},
		{"one stride", Point{5, 5}, Point{9, 5}, 1},
		{"stride and unit", Point{5, 5}, Point{10, 5}, 2},
		{"seven along an axis", Point{5, 5}, Point{12, 5}, 3},
		{"eight along an axis", Point{5, 5}, Point{13, 5}, 2},
		{"diagonal stride", Point{5, 5}, Point{9, 9}, 1},
		{"mixed", Point{5, 5}, Point{14, 7}, 4},
		{"twenty left", Point{25, 5}, Point{5, 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := c.Plan(tt.from, tt.to)
			require.NotNil(t, plan)
			assert.Len(t, plan, tt.steps)
			assert.Equal(t, tt.to, walk(c, tt.from, plan))
		})
	}

	t.Run("five is one stride and one unit", func(t *testing.T) {
		plan := c.Plan(Point{0, 0}, Point{5, 0})
		require.Len(t, plan, 2)
		strides := 0
		for _, s := range plan {
			assert.Equal(t, Right, s.Direction)
			if s.Stride {
				strides++
			}
		}
		assert.Equal(t, 1, strides)
	})

	t.Run("stays on the map", func(t *testing.T) {
		// overshooting by one and stepping back beats three units
		plan := c.Plan(Point{0, 0}, Point{0, 3})
		assert.Len(t, plan, 2)
		assert.Equal(t, Point{0, 3}, walk(c, Point{0, 0}, plan))

		edge := NewCursorPlanner(4, 1)
		plan = edge.Plan(Point{0, 0}, Point{3, 0})
		assert.Len(t, plan, 3, "stride would leave the map")
	})

	t.Run("off the map", func(t *testing.T) {
		assert.Nil(t, c.Plan(Point{-1, 0}, Point{3, 3}))
		_, ok := c.Next(Point{3, 3}, Point{3, 3})
		assert.False(t, ok)
	})
}
