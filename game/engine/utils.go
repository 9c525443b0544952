package engine

import (
	"strings"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
)

// ParseDirection accepts up/down/left/right, compass names or an arrow
// symbol. Diagonals are rejected.
func ParseDirection(s string) (grid.Direction, bool) {
	return grid.ParseCardinal(s)
}

// DirectionName returns the up/down/left/right name of a cardinal direction
func DirectionName(d grid.Direction) string {
	switch d {
	case grid.North:
		return "up"
	case grid.South:
		return "down"
	case grid.West:
		return "left"
	case grid.East:
		return "right"
	default:
		return d.String()
	}
}

// LocalView3x3 renders the 3x3 neighbourhood of center. Cells outside the
// grid are shown as walls.
func LocalView3x3(w *warehouse.Warehouse, center grid.Coordinate) []string {
	rows := make([]string, 0, 3)
	for dRow := -1; dRow <= 1; dRow++ {
		var b strings.Builder
		for dCol := -1; dCol <= 1; dCol++ {
			b.WriteRune(runeAt(w, center, dRow, dCol))
		}
		rows = append(rows, b.String())
	}
	return rows
}

func runeAt(w *warehouse.Warehouse, center grid.Coordinate, dRow, dCol int) rune {
	c, ok := center.Add(dRow, dCol)
	if !ok {
		return warehouse.WallCell.Rune()
	}
	cell, ok := w.Cell(c)
	if !ok {
		return warehouse.WallCell.Rune()
	}
	return cell.Rune()
}

// CountCells counts the cells of a given kind. Both halves of a wide box are
// counted.
func CountCells(w *warehouse.Warehouse, kind warehouse.Kind) int {
	count := 0
	for _, cell := range w.All() {
		if cell.Kind == kind {
			count++
		}
	}
	return count
}

// gridLines renders the warehouse as one string per row.
func gridLines(w *warehouse.Warehouse) []string {
	return strings.Split(w.String(), "\n")
}
