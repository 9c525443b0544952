package grid

import (
	"fmt"
	"math"
)

// Coordinate is a row/column position. Both components are non-negative.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// At is a convenience constructor for Coordinate.
func At(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// String returns the coordinate as "(row,col)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Add returns c offset by the signed deltas. ok is false if either component
// would drop below zero or overflow.
func (c Coordinate) Add(dRow, dCol int) (Coordinate, bool) {
	row, ok := checkedAdd(c.Row, dRow)
	if !ok {
		return Coordinate{}, false
	}
	col, ok := checkedAdd(c.Col, dCol)
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Row: row, Col: col}, true
}

// Step returns the coordinate one step in direction d.
func (c Coordinate) Step(d Direction) (Coordinate, bool) {
	dRow, dCol := d.Delta()
	return c.Add(dRow, dCol)
}

func checkedAdd(v, delta int) (int, bool) {
	if v < 0 {
		return 0, false
	}
	if delta > 0 && v > math.MaxInt-delta {
		return 0, false
	}
	sum := v + delta
	if sum < 0 {
		return 0, false
	}
	return sum, true
}
