// Command validate checks the puzzle configs in a directory. For each
// .json, .yaml or .yml file it checks:
//   - the file decodes and passes engine.ValidateGameConfig
//   - the outer ring of the layout is wall (warning only)
//   - no box starts wedged in a corner where it can never move (warning only)
//   - the script replays on both the narrow and the widened warehouse
//
// It exits non-zero if any config is invalid.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/grid"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
)

// ValidationResult captures the outcome of validating a single file.
// Warnings never make a config invalid.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateConfig loads and checks a single config file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := engine.LoadGameConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	w, err := config.Warehouse()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	moves, _ := config.Script()

	result.Info = append(result.Info,
		fmt.Sprintf("✓ %dx%d warehouse, %d boxes, robot at %s", w.Rows(), w.Cols(), w.BoxCount(), w.Robot()),
		fmt.Sprintf("✓ %d scripted moves", len(moves)),
	)

	if gaps := openBorder(config.Layout); len(gaps) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("outer ring is not all wall at %s", joinCoords(gaps, 5)))
	}
	if stuck := corneredBoxes(w); len(stuck) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d box(es) start in a corner and can never move: %s", len(stuck), joinCoords(stuck, 5)))
	}

	res, err := warehouse.SolveWarehouse(w, moves)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("script replay failed: %v", err))
		return result
	}
	result.Info = append(result.Info, fmt.Sprintf("✓ Part one %d, part two %d", res.PartOne, res.PartTwo))

	if config.Wide {
		result.Info = append(result.Info, "✓ Sessions start widened")
	}
	return result
}

// openBorder lists the non-wall cells on the outer ring of layout.
func openBorder(layout []string) []grid.Coordinate {
	var gaps []grid.Coordinate
	last := len(layout) - 1
	for r, row := range layout {
		for c, ch := range row {
			onEdge := r == 0 || r == last || c == 0 || c == len(row)-1
			if onEdge && ch != '#' {
				gaps = append(gaps, grid.At(r, c))
			}
		}
	}
	return gaps
}

// corneredBoxes lists the narrow boxes with a wall (or the grid edge) on one
// vertical and one horizontal side. Such a box can never be pushed.
func corneredBoxes(w *warehouse.Warehouse) []grid.Coordinate {
	blocked := func(c grid.Coordinate, d grid.Direction) bool {
		n, ok := c.Step(d)
		if !ok {
			return true
		}
		cell, ok := w.Cell(n)
		return !ok || cell.Kind == warehouse.Wall
	}

	var stuck []grid.Coordinate
	for c, cell := range w.All() {
		if cell.Kind != warehouse.Box || cell.IsWide() {
			continue
		}
		vertical := blocked(c, grid.North) || blocked(c, grid.South)
		horizontal := blocked(c, grid.West) || blocked(c, grid.East)
		if vertical && horizontal {
			stuck = append(stuck, c)
		}
	}
	return stuck
}

// joinCoords prints at most limit coordinates.
func joinCoords(coords []grid.Coordinate, limit int) string {
	parts := make([]string, 0, limit+1)
	for i, c := range coords {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(coords)-limit))
			break
		}
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// configFiles lists the config files of dir in name order.
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && slices.Contains(engine.ConfigExtensions, filepath.Ext(entry.Name())) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// report prints one result and returns its validity.
func report(result ValidationResult) bool {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Info {
			fmt.Println("  " + info)
		}
	} else {
		fmt.Println("❌ INVALID")
		for _, err := range result.Errors {
			fmt.Println("  ❌ " + err)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Println("  ⚠️  " + warning)
	}
	return result.Valid
}

func run(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if cmd.Args().Len() > 0 {
		dir = cmd.Args().First()
	}

	files, err := configFiles(dir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error finding config files: %v", err), 1)
	}
	if len(files) == 0 {
		return cli.Exit(fmt.Sprintf("No config files in %s", dir), 1)
	}

	allValid := true
	for _, file := range files {
		if !report(validateConfig(file)) {
			allValid = false
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some configurations have errors", 1)
	}
	fmt.Println("✅ All configurations are valid!")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "check warehouse puzzle configs",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "directory holding the configs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
