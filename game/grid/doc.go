// Package grid provides the coordinate, direction and dense 2-D container
// types the warehouse simulation is built on.
//
// Coordinates are non-negative row/column pairs with row 0 at the top.
// Stepping off the top or left edge is reported through a boolean rather
// than wrapping; callers combine that with Grid.Contains to detect the
// bottom and right edges.
package grid
