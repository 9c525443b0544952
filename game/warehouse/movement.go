package warehouse

import (
	"sort"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// Plan is the outcome of a feasibility check. When Feasible, Cells lists
// every coordinate whose occupant moves, ordered so that committing them in
// sequence only ever writes into a vacated or empty square. When not
// Feasible, BlockedAt is the first obstacle found. If the move would leave
// the grid, OffGrid is set and BlockedAt is the last in-bounds coordinate.
type Plan struct {
	From      grid.Coordinate
	Dir       grid.Direction
	Feasible  bool
	BlockedAt grid.Coordinate
	OffGrid   bool
	Cells     []grid.Coordinate
	// Boxes is the number of logical boxes the move pushes.
	Boxes int
}

// CanMove reports whether the occupant of from can move one step in d,
// pushing every box in its way. It only reads v.
func CanMove(v grid.View[Cell], from grid.Coordinate, d grid.Direction) bool {
	return PlanMove(v, from, d).Feasible
}

// PlanMove runs the feasibility check and records what would move.
//
// A box pushed horizontally behaves like any other occupant. A wide box
// pushed vertically moves both halves, so both must have room. Only cardinal
// directions are feasible.
func PlanMove(v grid.View[Cell], from grid.Coordinate, d grid.Direction) Plan {
	p := Plan{From: from, Dir: d}
	if !d.IsCardinal() || !v.Contains(from) {
		p.BlockedAt = from
		return p
	}

	seen := map[grid.Coordinate]bool{from: true}
	stack := []grid.Coordinate{from}
	cells := []grid.Coordinate{from}
	push := func(c grid.Coordinate, cell Cell) {
		if seen[c] {
			return
		}
		seen[c] = true
		stack = append(stack, c)
		cells = append(cells, c)
		if cell.Kind == Box && cell.Half != Right {
			p.Boxes++
		}
	}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		to, cell, ok := v.Relative(c, d)
		if !ok {
			p.BlockedAt = c
			p.OffGrid = true
			return p
		}
		switch cell.Kind {
		case Empty:
		case Box:
			push(to, cell)
			if d.IsVertical() && cell.IsWide() {
				other, ok := partner(to, cell.Half)
				otherCell, inside := v.Get(other)
				if !ok || !inside {
					p.BlockedAt = to
					return p
				}
				push(other, otherCell)
			}
		default:
			// Wall, or a second robot in a corrupt grid.
			p.BlockedAt = to
			return p
		}
	}

	// Furthest along d first.
	dRow, dCol := d.Delta()
	sort.SliceStable(cells, func(i, j int) bool {
		return dRow*cells[i].Row+dCol*cells[i].Col > dRow*cells[j].Row+dCol*cells[j].Col
	})
	p.Feasible = true
	p.Cells = cells
	return p
}

// CanMove is CanMove over the warehouse grid.
func (w *Warehouse) CanMove(from grid.Coordinate, d grid.Direction) bool {
	return CanMove(w.cells, from, d)
}

// ApplyMove moves the occupant of from one step in d together with every box
// it pushes. The move must be feasible; committing an infeasible move panics
// with a *PreconditionError.
func (w *Warehouse) ApplyMove(from grid.Coordinate, d grid.Direction) Plan {
	p := PlanMove(w.cells, from, d)
	if !p.Feasible {
		panic(&PreconditionError{From: from, Dir: d, At: p.BlockedAt})
	}
	w.commit(p)
	return p
}

func (w *Warehouse) commit(p Plan) {
	for _, c := range p.Cells {
		cell, _ := w.cells.Get(c)
		to, ok := c.Step(p.Dir)
		if !ok || !w.cells.Set(to, cell) {
			panic(&PreconditionError{From: p.From, Dir: p.Dir, At: c})
		}
		w.cells.Set(c, EmptyCell)
		if cell.Kind == Robot {
			w.robot = to
		}
	}
}

// Step plans a robot move in d and commits it when feasible. A blocked move
// leaves the warehouse untouched.
func (w *Warehouse) Step(d grid.Direction) Plan {
	p := PlanMove(w.cells, w.robot, d)
	if p.Feasible {
		w.commit(p)
	}
	return p
}

// Tick advances the simulation by one requested direction and reports whether
// the robot moved.
func (w *Warehouse) Tick(d grid.Direction) bool {
	return w.Step(d).Feasible
}

// Run ticks through moves in order and returns how many succeeded.
func (w *Warehouse) Run(moves []grid.Direction) int {
	moved := 0
	for _, d := range moves {
		if w.Tick(d) {
			moved++
		}
	}
	return moved
}
