package warehouse

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

var (
	// ErrMalformedInput covers unknown symbols, ragged or empty grids and a
	// missing move section.
	ErrMalformedInput = errors.New("malformed input")

	// ErrStructuralViolation covers grids that break the warehouse invariants.
	ErrStructuralViolation = errors.New("structural violation")

	ErrNoRobot        = fmt.Errorf("%w: no robot found in map", ErrStructuralViolation)
	ErrMultipleRobots = fmt.Errorf("%w: more than one robot found in map", ErrStructuralViolation)
	ErrAlreadyWidened = fmt.Errorf("%w: warehouse is already widened", ErrStructuralViolation)
)

// PreconditionError is the panic value raised when a move is committed that
// was not feasible.
type PreconditionError struct {
	From grid.Coordinate
	Dir  grid.Direction
	At   grid.Coordinate
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("apply move %s from %s: blocked at %s", e.Dir, e.From, e.At)
}
