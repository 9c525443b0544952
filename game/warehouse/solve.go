package warehouse

import (
	"time"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// Result holds the scores for the original and the widened warehouse after
// replaying the same move sequence on each.
type Result struct {
	PartOne int `json:"part_one"`
	PartTwo int `json:"part_two"`

	Narrow *Warehouse `json:"-"`
	Wide   *Warehouse `json:"-"`

	Moves        int           `json:"moves"`
	ParseTime    time.Duration `json:"parse_time"`
	PartOneTime  time.Duration `json:"part_one_time"`
	PartTwoTime  time.Duration `json:"part_two_time"`
	NarrowMoved  int           `json:"narrow_moved"`
	WideMoved    int           `json:"wide_moved"`
	BoxesPerGrid int           `json:"boxes"`
}

// Solve parses input and replays the move sequence on both variants.
func Solve(input string) (*Result, error) {
	start := time.Now()
	w, moves, err := Parse(input)
	if err != nil {
		return nil, err
	}
	res := &Result{Moves: len(moves), ParseTime: time.Since(start), BoxesPerGrid: w.BoxCount()}

	if err := res.solve(w, moves); err != nil {
		return nil, err
	}
	return res, nil
}

// SolveWarehouse replays moves on a copy of w and on its widened form. w is
// not modified.
func SolveWarehouse(w *Warehouse, moves []grid.Direction) (*Result, error) {
	res := &Result{Moves: len(moves), BoxesPerGrid: w.BoxCount()}
	if err := res.solve(w, moves); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Result) solve(w *Warehouse, moves []grid.Direction) error {
	start := time.Now()
	wide, err := Widen(w)
	if err != nil {
		return err
	}

	narrow := w.Clone()
	r.NarrowMoved = narrow.Run(moves)
	r.PartOne = narrow.Score()
	r.Narrow = narrow
	r.PartOneTime = time.Since(start)

	start = time.Now()
	r.WideMoved = wide.Run(moves)
	r.PartTwo = wide.Score()
	r.Wide = wide
	r.PartTwoTime = time.Since(start)
	return nil
}
