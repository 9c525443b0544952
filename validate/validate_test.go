package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
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

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func containsLine(lines []string, sub string) bool {
	for _, line := range lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "classic.json", classicJSON)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "classic.json" {
		t.Errorf("Expected file name classic.json, got %s", result.File)
	}
	if !containsLine(result.Info, "8x8 warehouse, 6 boxes, robot at (2,2)") {
		t.Errorf("Missing dimensions in info: %v", result.Info)
	}
	if !containsLine(result.Info, "Part one 2028") {
		t.Errorf("Missing part one score in info: %v", result.Info)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateConfig_YAML(t *testing.T) {
	yamlConfig := `name: Tiny
description: One box to the right
layout:
  - "#####"
  - "#@O.#"
  - "#####"
moves: ">>"
`
	path := writeFile(t, t.TempDir(), "tiny.yaml", yamlConfig)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	// The box ends against the wall at (1,3) after one push
	if !containsLine(result.Info, "Part one 103") {
		t.Errorf("Unexpected info: %v", result.Info)
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "malformed json",
			content: `{"name": "broken",`,
			want:    "unexpected end of JSON input",
		},
		{
			name:    "missing description",
			content: `{"name": "x", "layout": ["#@#"], "moves": ""}`,
			want:    "description is required",
		},
		{
			name:    "two robots",
			content: `{"name": "x", "description": "d", "layout": ["#@@#"], "moves": ""}`,
			want:    "robot",
		},
		{
			name:    "bad move character",
			content: `{"name": "x", "description": "d", "layout": ["#@.#"], "moves": "<x>"}`,
			want:    "moves",
		},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.Repeat("c", i+1)+".json", tt.content)
			result := validateConfig(path)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !containsLine(result.Errors, tt.want) {
				t.Errorf("Expected an error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateConfig_Warnings(t *testing.T) {
	content := `{
		"name": "Corner",
		"description": "A box that never moves",
		"layout": ["#.###", "#O..#", "#.@.#", "#####"],
		"moves": "<"
	}`
	path := writeFile(t, t.TempDir(), "corner.json", content)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Warnings must not invalidate the config: %v", result.Errors)
	}
	if !containsLine(result.Warnings, "outer ring is not all wall at (0,1)") {
		t.Errorf("Expected open border warning, got %v", result.Warnings)
	}
	if containsLine(result.Warnings, "corner") {
		t.Errorf("Box at (1,1) has an open cell above it, got %v", result.Warnings)
	}
}

func TestCorneredBoxes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stuck.json", `{
		"name": "Stuck",
		"description": "Boxes wedged in corners",
		"layout": ["######", "#O..O#", "#.@..#", "#..O.#", "######"],
		"moves": ""
	}`)

	result := validateConfig(path)
	if !containsLine(result.Warnings, "2 box(es) start in a corner and can never move: (1,1), (1,4)") {
		t.Errorf("Unexpected warnings: %v", result.Warnings)
	}
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.json", "")
	writeFile(t, dir, "notes.txt", "")
	os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	files, err := configFiles(dir)
	if err != nil {
		t.Fatalf("configFiles failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.json" || filepath.Base(files[1]) != "b.yaml" {
		t.Errorf("Unexpected files: %v", files)
	}

	if _, err := configFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestJoinCoords(t *testing.T) {
	coords := []grid.Coordinate{grid.At(0, 0), grid.At(0, 1), grid.At(0, 2)}

	if got := joinCoords(coords, 5); got != "(0,0), (0,1), (0,2)" {
		t.Errorf("Unexpected join: %s", got)
	}
	if got := joinCoords(coords, 2); got != "(0,0), (0,1), and 1 more" {
		t.Errorf("Unexpected truncated join: %s", got)
	}
}
