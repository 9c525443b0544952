package warehouse

import (
	"fmt"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// Widen returns a new warehouse twice as wide. Every single box becomes a
// Left/Right pair and the robot keeps the left square of its pair. The source
// is left untouched; widening an already wide warehouse fails.
func Widen(w *Warehouse) (*Warehouse, error) {
	wide := grid.New[Cell](w.Rows(), w.Cols()*2)
	for c, cell := range w.cells.All() {
		var left, right Cell
		switch {
		case cell.Kind == Wall:
			left, right = WallCell, WallCell
		case cell.Kind == Empty:
			left, right = EmptyCell, EmptyCell
		case cell.Kind == Box && cell.Half == Single:
			left, right = LeftCell, RightCell
		case cell.Kind == Robot:
			left, right = RobotCell, EmptyCell
		default:
			return nil, fmt.Errorf("%w: %s half at %s", ErrAlreadyWidened, cell.Half, c)
		}
		wide.Set(grid.At(c.Row, 2*c.Col), left)
		wide.Set(grid.At(c.Row, 2*c.Col+1), right)
	}
	return New(wide)
}
