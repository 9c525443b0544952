// Package warehouse simulates a robot pushing boxes around a walled grid.
//
// A move is resolved in two phases. PlanMove walks every cell that would be
// displaced without touching the grid; only when nothing blocks does the
// warehouse commit the plan, writing the furthest cells first so no occupant
// is overwritten. Boxes come in two shapes: single boxes, and double-width
// boxes produced by Widen whose halves always move together when pushed
// vertically.
//
// Usage:
//
//	w, moves, err := warehouse.Parse(input)
//	if err != nil {
//		log.Fatal(err)
//	}
//	w.Run(moves)
//	fmt.Println(w.Score())
//
// Solve runs both the original and the widened warehouse in one call.
package warehouse
