package grid

import (
	"fmt"
	"iter"
	"strings"
)

// View is the read-only surface of a Grid.
type View[T any] interface {
	Rows() int
	Cols() int
	Contains(c Coordinate) bool
	Get(c Coordinate) (T, bool)
	Relative(c Coordinate, d Direction) (Coordinate, T, bool)
}

// Grid is a dense, row-major 2-D container with fixed dimensions.
type Grid[T any] struct {
	rows  int
	cols  int
	cells []T
}

var _ View[int] = (*Grid[int])(nil)

// New returns a rows x cols grid filled with the zero value of T.
// Negative dimensions are treated as zero.
func New[T any](rows, cols int) *Grid[T] {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid[T]{
		rows:  rows,
		cols:  cols,
		cells: make([]T, rows*cols),
	}
}

// FromLines builds a grid from equal-length lines, converting every rune with
// cellFn. The first error returned by cellFn aborts the build.
func FromLines[T any](lines []string, cellFn func(r rune, c Coordinate) (T, error)) (*Grid[T], error) {
	if len(lines) == 0 {
		return New[T](0, 0), nil
	}
	cols := len([]rune(lines[0]))
	g := New[T](len(lines), cols)
	for row, line := range lines {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, &RaggedError{Row: row, Want: cols, Got: len(runes)}
		}
		for col, r := range runes {
			c := Coordinate{Row: row, Col: col}
			v, err := cellFn(r, c)
			if err != nil {
				return nil, err
			}
			g.cells[g.index(c)] = v
		}
	}
	return g, nil
}

// RaggedError reports a line whose width differs from the first line.
type RaggedError struct {
	Row  int
	Want int
	Got  int
}

func (e *RaggedError) Error() string {
	return fmt.Sprintf("grid row %d has width %d, expected %d", e.Row, e.Got, e.Want)
}

// Rows returns the number of rows.
func (g *Grid[T]) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid[T]) Cols() int { return g.cols }

// Contains reports whether c lies inside the grid.
func (g *Grid[T]) Contains(c Coordinate) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < g.rows && c.Col < g.cols
}

func (g *Grid[T]) index(c Coordinate) int {
	return c.Row*g.cols + c.Col
}

// Get returns the value at c.
func (g *Grid[T]) Get(c Coordinate) (T, bool) {
	if !g.Contains(c) {
		var zero T
		return zero, false
	}
	return g.cells[g.index(c)], true
}

// Set stores v at c. It returns false, leaving the grid untouched, when c is
// out of range.
func (g *Grid[T]) Set(c Coordinate, v T) bool {
	if !g.Contains(c) {
		return false
	}
	g.cells[g.index(c)] = v
	return true
}

// Relative returns the neighbour of c in direction d along with its value.
func (g *Grid[T]) Relative(c Coordinate, d Direction) (Coordinate, T, bool) {
	next, ok := c.Step(d)
	if !ok {
		var zero T
		return Coordinate{}, zero, false
	}
	v, ok := g.Get(next)
	if !ok {
		return Coordinate{}, v, false
	}
	return next, v, true
}

// Cardinal returns the in-bounds cardinal neighbours of c, clockwise from North.
func (g *Grid[T]) Cardinal(c Coordinate) []Coordinate {
	var out []Coordinate
	for _, d := range Cardinals() {
		if next, _, ok := g.Relative(c, d); ok {
			out = append(out, next)
		}
	}
	return out
}

// All iterates over every cell in row-major order.
func (g *Grid[T]) All() iter.Seq2[Coordinate, T] {
	return func(yield func(Coordinate, T) bool) {
		for i, v := range g.cells {
			c := Coordinate{Row: i / g.cols, Col: i % g.cols}
			if !yield(c, v) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the cell storage. Values are copied by
// assignment.
func (g *Grid[T]) Clone() *Grid[T] {
	cells := make([]T, len(g.cells))
	copy(cells, g.cells)
	return &Grid[T]{rows: g.rows, cols: g.cols, cells: cells}
}

// Format renders the grid one line per row using cellFn for each value.
func (g *Grid[T]) Format(cellFn func(T) rune) string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < g.cols; col++ {
			b.WriteRune(cellFn(g.cells[row*g.cols+col]))
		}
	}
	return b.String()
}
