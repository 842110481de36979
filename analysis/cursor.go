package analysis

// DefaultCursorStride is how far one shifted cursor key moves
const DefaultCursorStride = 4

// Step is one cursor key press. Stride steps hold shift.
type Step struct {
	Direction Direction
	Stride    bool
}

// CursorPlanner finds the fewest key presses moving the map cursor between
// two cells. Every press moves one cell or Stride cells in one of eight
// directions and must stay on the map.
type CursorPlanner struct {
	Width  int
	Height int
	Stride int
}

func NewCursorPlanner(width, height int) *CursorPlanner {
	return &CursorPlanner{Width: width, Height: height, Stride: DefaultCursorStride}
}

func (c *CursorPlanner) inBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < c.Width && p.Y < c.Height
}

func (c *CursorPlanner) apply(p Point, s Step) Point {
	dx, dy := s.Direction.Delta()
	if s.Stride {
		dx, dy = dx*c.Stride, dy*c.Stride
	}
	return p.Add(dx, dy)
}

// Plan returns a shortest press sequence from from to to, empty when they
// are equal and nil when either point is off the map
func (c *CursorPlanner) Plan(from, to Point) []Step {
	if !c.inBounds(from) || !c.inBounds(to) {
		return nil
	}
	if from == to {
		return []Step{}
	}

	// breadth first over cells; prev holds the step that first reached a cell
	type visit struct {
		from Point
		step Step
		seen bool
	}
	index := func(p Point) int { return p.X + p.Y*c.Width }
	prev := make([]visit, c.Width*c.Height)
	prev[index(from)].seen = true

	queue := []Point{from}
	for len(queue) > 0 && !prev[index(to)].seen {
		p := queue[0]
		queue = queue[1:]
		for _, step := range c.steps(p, to) {
			n := c.apply(p, step)
			if !c.inBounds(n) || prev[index(n)].seen {
				continue
			}
			prev[index(n)] = visit{from: p, step: step, seen: true}
			queue = append(queue, n)
		}
	}

	var plan []Step
	for p := to; p != from; p = prev[index(p)].from {
		plan = append(plan, prev[index(p)].step)
	}
	for i, j := 0, len(plan)-1; i < j; i, j = i+1, j-1 {
		plan[i], plan[j] = plan[j], plan[i]
	}
	return plan
}

// steps lists candidate presses, those heading towards to first, so ties
// resolve to presses that never move away from the target
func (c *CursorPlanner) steps(p, to Point) []Step {
	toward := DirectionOf(to.X-p.X, to.Y-p.Y)
	out := make([]Step, 0, 2*len(Directions))
	if toward != None {
		out = append(out, Step{Direction: toward, Stride: true}, Step{Direction: toward})
	}
	for _, d := range Directions {
		if d != toward {
			out = append(out, Step{Direction: d, Stride: true}, Step{Direction: d})
		}
	}
	return out
}

// Next returns the first press of a shortest plan, and false when the
// cursor is already on target or no plan exists
func (c *CursorPlanner) Next(from, to Point) (Step, bool) {
	plan := c.Plan(from, to)
	if len(plan) == 0 {
		return Step{}, false
	}
	return plan[0], true
}
