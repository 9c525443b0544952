// Package render draws warehouses and solve results for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
)

// Theme holds one style per cell kind.
type Theme struct {
	Wall  lipgloss.Style
	Box   lipgloss.Style
	Robot lipgloss.Style
	Floor lipgloss.Style
	Frame lipgloss.Style
	Label lipgloss.Style
}

// DefaultTheme colours walls grey, boxes amber and the robot green.
func DefaultTheme() Theme {
	return Theme{
		Wall:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Box:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Robot: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Floor: lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Label: lipgloss.NewStyle().Bold(true),
	}
}

// PlainTheme applies no styling at all.
func PlainTheme() Theme {
	return Theme{
		Wall:  lipgloss.NewStyle(),
		Box:   lipgloss.NewStyle(),
		Robot: lipgloss.NewStyle(),
		Floor: lipgloss.NewStyle(),
		Frame: lipgloss.NewStyle(),
		Label: lipgloss.NewStyle(),
	}
}

func (t Theme) cell(c warehouse.Cell) string {
	s := string(c.Rune())
	switch c.Kind {
	case warehouse.Wall:
		return t.Wall.Render(s)
	case warehouse.Box:
		return t.Box.Render(s)
	case warehouse.Robot:
		return t.Robot.Render(s)
	default:
		return t.Floor.Render(s)
	}
}

// Warehouse renders the grid one row per line.
func Warehouse(w *warehouse.Warehouse, t Theme) string {
	v := w.View()
	lines := make([]string, 0, v.Rows())
	for row := 0; row < v.Rows(); row++ {
		var b strings.Builder
		for col := 0; col < v.Cols(); col++ {
			cell, _ := w.Cell(grid.At(row, col))
			b.WriteString(t.cell(cell))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// Panel renders a titled, framed warehouse with its score underneath.
func Panel(title string, w *warehouse.Warehouse, t Theme) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		t.Label.Render(title),
		Warehouse(w, t),
		fmt.Sprintf("boxes %d  score %d", w.BoxCount(), w.Score()),
	)
	return t.Frame.Render(body)
}

// Result renders both final warehouses side by side followed by the two
// scores.
func Result(res *warehouse.Result, t Theme) string {
	var panels []string
	if res.Narrow != nil {
		panels = append(panels, Panel("original", res.Narrow, t))
	}
	if res.Wide != nil {
		panels = append(panels, Panel("widened", res.Wide, t))
	}
	summary := fmt.Sprintf("%s %d\n%s %d",
		t.Label.Render("Part 1:"), res.PartOne,
		t.Label.Render("Part 2:"), res.PartTwo)
	if len(panels) == 0 {
		return summary
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, panels...),
		summary,
	)
}
