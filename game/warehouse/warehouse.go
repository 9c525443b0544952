package warehouse

import (
	"fmt"
	"iter"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// Warehouse owns a cell grid and caches the robot's coordinate.
type Warehouse struct {
	cells *grid.Grid[Cell]
	robot grid.Coordinate
}

// New scans cells for the unique robot and takes ownership of the grid.
func New(cells *grid.Grid[Cell]) (*Warehouse, error) {
	var (
		robot grid.Coordinate
		found int
	)
	for c, cell := range cells.All() {
		if cell.Kind == Robot {
			robot = c
			found++
		}
	}
	switch {
	case found == 0:
		return nil, ErrNoRobot
	case found > 1:
		return nil, fmt.Errorf("%w (found %d)", ErrMultipleRobots, found)
	}
	return &Warehouse{cells: cells, robot: robot}, nil
}

// Robot returns the robot's current coordinate.
func (w *Warehouse) Robot() grid.Coordinate { return w.robot }

// Rows returns the number of grid rows.
func (w *Warehouse) Rows() int { return w.cells.Rows() }

// Cols returns the number of grid columns.
func (w *Warehouse) Cols() int { return w.cells.Cols() }

// Cell returns the cell at c.
func (w *Warehouse) Cell(c grid.Coordinate) (Cell, bool) { return w.cells.Get(c) }

// View exposes the grid read-only.
func (w *Warehouse) View() grid.View[Cell] { return w.cells }

// All iterates over every cell in row-major order.
func (w *Warehouse) All() iter.Seq2[grid.Coordinate, Cell] { return w.cells.All() }

// Clone returns an independent copy.
func (w *Warehouse) Clone() *Warehouse {
	return &Warehouse{cells: w.cells.Clone(), robot: w.robot}
}

// IsWide reports whether the grid holds any double-width box half.
func (w *Warehouse) IsWide() bool {
	for _, cell := range w.cells.All() {
		if cell.IsWide() {
			return true
		}
	}
	return false
}

// BoxCount returns the number of logical boxes; a Left/Right pair counts once.
func (w *Warehouse) BoxCount() int {
	n := 0
	for _, cell := range w.cells.All() {
		if cell.Kind == Box && cell.Half != Right {
			n++
		}
	}
	return n
}

// Score returns the GPS sum: 100*row+col for every Single box and every Left
// half.
func (w *Warehouse) Score() int {
	sum := 0
	for c, cell := range w.cells.All() {
		if cell.Kind == Box && cell.Half != Right {
			sum += 100*c.Row + c.Col
		}
	}
	return sum
}

// String renders the grid using # . O [ ] @.
func (w *Warehouse) String() string {
	return w.cells.Format(Cell.Rune)
}

// Validate checks the structural invariants: a single robot matching the
// cached coordinate, and every wide half paired with its partner.
func (w *Warehouse) Validate() error {
	robots := 0
	for c, cell := range w.cells.All() {
		switch {
		case cell.Kind == Robot:
			robots++
			if c != w.robot {
				return fmt.Errorf("%w: robot at %s but cached at %s", ErrStructuralViolation, c, w.robot)
			}
		case cell.IsWide():
			other, ok := partner(c, cell.Half)
			want := RightCell
			if cell.Half == Right {
				want = LeftCell
			}
			got, inside := w.cells.Get(other)
			if !ok || !inside || got != want {
				return fmt.Errorf("%w: %s half at %s has no partner", ErrStructuralViolation, cell.Half, c)
			}
		}
	}
	switch {
	case robots == 0:
		return ErrNoRobot
	case robots > 1:
		return ErrMultipleRobots
	}
	return nil
}

// partner returns the coordinate of the other half of a wide box.
func partner(c grid.Coordinate, h Half) (grid.Coordinate, bool) {
	switch h {
	case Left:
		return c.Step(grid.East)
	case Right:
		return c.Step(grid.West)
	default:
		return grid.Coordinate{}, false
	}
}
