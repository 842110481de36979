// Package analysis holds pure functions over a completed map snapshot
package analysis

import "fmt"

// Point is a map coordinate. Y grows downwards.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// MaxDistance is the Chebyshev distance, the number of king moves between p and q
func (p Point) MaxDistance(q Point) int {
	return max(abs(p.X-q.X), abs(p.Y-q.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Direction is one of the eight numpad directions, or None
type Direction int

const (
	None Direction = iota
	DownLeft
	Down
	DownRight
	Left
	Right
	UpLeft
	Up
	UpRight
)

// Directions lists the eight real directions
var Directions = []Direction{DownLeft, Down, DownRight, Left, Right, UpLeft, Up, UpRight}

var directionNames = map[Direction]string{
	None: "none", DownLeft: "down-left", Down: "down", DownRight: "down-right",
	Left: "left", Right: "right", UpLeft: "up-left", Up: "up", UpRight: "up-right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts the names String returns
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

// Delta returns the unit step of d
func (d Direction) Delta() (int, int) {
	switch d {
	case DownLeft:
		return -1, 1
	case Down:
		return 0, 1
	case DownRight:
		return 1, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case UpLeft:
		return -1, -1
	case Up:
		return 0, -1
	case UpRight:
		return 1, -1
	}
	return 0, 0
}

// Opposite returns the direction pointing back
func (d Direction) Opposite() Direction {
	dx, dy := d.Delta()
	return DirectionOf(-dx, -dy)
}

// DirectionOf returns the direction of the signs of dx and dy
func DirectionOf(dx, dy int) Direction {
	switch [2]int{sign(dx), sign(dy)} {
	case [2]int{-1, 1}:
		return DownLeft
	case [2]int{0, 1}:
		return Down
	case [2]int{1, 1}:
		return DownRight
	case [2]int{-1, 0}:
		return Left
	case [2]int{1, 0}:
		return Right
	case [2]int{-1, -1}:
		return UpLeft
	case [2]int{0, -1}:
		return Up
	case [2]int{1, -1}:
		return UpRight
	}
	return None
}
