// Command analyze prints quick, human-readable facts about warehouse puzzle
// configs: dimensions, box and move counts, how much floor the robot can
// reach, and how many scripted moves end up blocked on the narrow and the
// widened warehouse.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/grid"
	"github.com/wricardo/mcp-training/warehouse/game/render"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
)

// Analysis summarises one config.
type Analysis struct {
	File  string
	Name  string
	Rows  int
	Cols  int
	Boxes int
	Moves int

	// DirCounts counts scripted moves per direction name.
	DirCounts map[string]int

	// Floor is every non-wall cell, Reachable the part of it the robot can
	// walk to when boxes are ignored.
	Floor     int
	Reachable int

	PartOne       int
	PartTwo       int
	NarrowBlocked int
	WideBlocked   int

	result *warehouse.Result
}

func analyzeConfig(path string) (*Analysis, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, err
	}
	w, err := config.Warehouse()
	if err != nil {
		return nil, err
	}
	moves, err := config.Script()
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		File:      filepath.Base(path),
		Name:      config.Name,
		Rows:      w.Rows(),
		Cols:      w.Cols(),
		Boxes:     w.BoxCount(),
		Moves:     len(moves),
		DirCounts: make(map[string]int),
	}
	for _, d := range moves {
		a.DirCounts[engine.DirectionName(d)]++
	}
	a.Floor, a.Reachable = floorReach(w)

	res, err := warehouse.SolveWarehouse(w, moves)
	if err != nil {
		return nil, err
	}
	a.PartOne, a.PartTwo = res.PartOne, res.PartTwo
	a.NarrowBlocked = len(moves) - res.NarrowMoved
	a.WideBlocked = len(moves) - res.WideMoved
	a.result = res
	return a, nil
}

// floorReach flood-fills from the robot through every non-wall cell.
func floorReach(w *warehouse.Warehouse) (floor, reachable int) {
	for _, cell := range w.All() {
		if cell.Kind != warehouse.Wall {
			floor++
		}
	}

	seen := map[grid.Coordinate]bool{w.Robot(): true}
	queue := []grid.Coordinate{w.Robot()}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		reachable++
		for _, d := range grid.Cardinals() {
			n, ok := c.Step(d)
			if !ok || seen[n] {
				continue
			}
			if cell, ok := w.Cell(n); ok && cell.Kind != warehouse.Wall {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return floor, reachable
}

func printAnalysis(out io.Writer, a *Analysis, theme *render.Theme) {
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Warehouse: %d x %d, %d boxes\n", a.Rows, a.Cols, a.Boxes)

	dirs := make([]string, 0, len(a.DirCounts))
	for _, name := range []string{"up", "down", "left", "right"} {
		dirs = append(dirs, fmt.Sprintf("%s %d", name, a.DirCounts[name]))
	}
	fmt.Fprintf(out, "Script: %d moves (%s)\n", a.Moves, strings.Join(dirs, ", "))

	if a.Reachable < a.Floor {
		fmt.Fprintf(out, "⚠️  Robot can reach %d of %d floor cells\n", a.Reachable, a.Floor)
	} else {
		fmt.Fprintf(out, "✅ Robot can reach all %d floor cells\n", a.Floor)
	}

	fmt.Fprintf(out, "Part one: %d (%d moves blocked)\n", a.PartOne, a.NarrowBlocked)
	fmt.Fprintf(out, "Part two: %d (%d moves blocked)\n", a.PartTwo, a.WideBlocked)

	if theme != nil && a.result != nil {
		fmt.Fprintln(out, render.Result(a.result, *theme))
	}
}

func configPaths(dir string, names []string) ([]string, error) {
	if len(names) > 0 {
		paths := make([]string, 0, len(names))
		for _, name := range names {
			path, err := engine.FindConfigFile(dir, name)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && slices.Contains(engine.ConfigExtensions, filepath.Ext(entry.Name())) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	paths, err := configPaths(cmd.String("config-dir"), cmd.Args().Slice())
	if err != nil {
		return err
	}

	var theme *render.Theme
	if cmd.Bool("render") {
		t := render.PlainTheme()
		if cmd.Bool("color") {
			t = render.DefaultTheme()
		}
		theme = &t
	}

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		a, err := analyzeConfig(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, a, theme)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "summarise warehouse puzzle configs",
		ArgsUsage: "[config...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory holding the configs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "render",
				Usage: "draw the final warehouses",
			},
			&cli.BoolFlag{
				Name:  "color",
				Usage: "colour the drawing",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
