package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/warehouse/game/render"
)

const classicJSON = `{
	"name": "Classic",
	"description": "Small example",
	"layout": [
		"########",
		"#..O.O.#",
		"##@.O..#",
		"#...O..#",
		"#.#.O..#",
		"#...O..#",
		"#......#",
		"########"
	],
	"moves": "<^^>>>vv<v>>v<<"
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestAnalyzeConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "classic.json", classicJSON)

	a, err := analyzeConfig(path)
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}

	if a.Name != "Classic" || a.File != "classic.json" {
		t.Errorf("Unexpected name/file: %s %s", a.Name, a.File)
	}
	if a.Rows != 8 || a.Cols != 8 || a.Boxes != 6 || a.Moves != 15 {
		t.Errorf("Unexpected dimensions: %+v", a)
	}

	wantDirs := map[string]int{"up": 2, "down": 4, "left": 4, "right": 5}
	for dir, want := range wantDirs {
		if a.DirCounts[dir] != want {
			t.Errorf("DirCounts[%s] = %d, want %d", dir, a.DirCounts[dir], want)
		}
	}

	if a.Floor != 34 || a.Reachable != 34 {
		t.Errorf("Expected 34 reachable floor cells, got %d of %d", a.Reachable, a.Floor)
	}
	if a.PartOne != 2028 {
		t.Errorf("Expected part one 2028, got %d", a.PartOne)
	}
	if a.NarrowBlocked != 5 {
		t.Errorf("Expected 5 blocked moves, got %d", a.NarrowBlocked)
	}
}

func TestAnalyzeConfig_UnreachableFloor(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "split.json", `{
		"name": "Split",
		"description": "Two rooms",
		"layout": ["#######", "#@.#..#", "#######"],
		"moves": ">>"
	}`)

	a, err := analyzeConfig(path)
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}
	if a.Floor != 4 || a.Reachable != 2 {
		t.Errorf("Expected 2 of 4 floor cells reachable, got %d of %d", a.Reachable, a.Floor)
	}
	if a.NarrowBlocked != 1 || a.WideBlocked != 0 {
		t.Errorf("Unexpected blocked counts: narrow %d wide %d", a.NarrowBlocked, a.WideBlocked)
	}

	var out bytes.Buffer
	printAnalysis(&out, a, nil)
	if !strings.Contains(out.String(), "Robot can reach 2 of 4 floor cells") {
		t.Errorf("Expected reach warning, got:\n%s", out.String())
	}
}

func TestAnalyzeConfig_Invalid(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.json", `{"name": "Bad", "description": "no robot", "layout": ["#.#"], "moves": ""}`)

	if _, err := analyzeConfig(path); err == nil {
		t.Error("Expected error for a layout without robot")
	}
}

func TestPrintAnalysis(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "classic.json", classicJSON)
	a, err := analyzeConfig(path)
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}

	theme := render.PlainTheme()
	var out bytes.Buffer
	printAnalysis(&out, a, &theme)

	for _, want := range []string{
		"Name: Classic",
		"Warehouse: 8 x 8, 6 boxes",
		"Script: 15 moves (up 2, down 4, left 4, right 5)",
		"Robot can reach all 34 floor cells",
		"Part one: 2028 (5 moves blocked)",
		"Part 1: 2028",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out.String())
		}
	}
}

func TestConfigPaths(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "classic.json", classicJSON)
	writeConfig(t, dir, "other.yml", "")
	writeConfig(t, dir, "readme.md", "")

	paths, err := configPaths(dir, nil)
	if err != nil {
		t.Fatalf("configPaths failed: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("Expected 2 config files, got %v", paths)
	}

	paths, err = configPaths(dir, []string{"classic"})
	if err != nil || len(paths) != 1 || filepath.Base(paths[0]) != "classic.json" {
		t.Errorf("Expected classic.json by name, got %v (%v)", paths, err)
	}

	if _, err := configPaths(dir, []string{"missing"}); err == nil {
		t.Error("Expected error for an unknown config")
	}
}
