package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
)

// ConfigExtensions lists the file extensions a puzzle config may use, in
// lookup order.
var ConfigExtensions = []string{".json", ".yaml", ".yml"}

// DefaultMessages fills any message a config leaves empty.
var DefaultMessages = ConfigMessages{
	Welcome: "Welcome to the warehouse! Push every box into place.",
	Moved:   "Robot moved %s",
	Pushed:  "Pushed %d box(es)",
	Blocked: "Can't move %s: blocked at %s",
	Widened: "Warehouse widened: every box is now two cells wide",
	Reset:   "Warehouse reset",
}

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate layout dimensions
	if len(config.Layout) < MinGridSize || len(config.Layout) > MaxGridSize {
		return fmt.Errorf("config validation: layout must have between %d and %d rows, got %d",
			MinGridSize, MaxGridSize, len(config.Layout))
	}
	width := len(config.Layout[0])
	if width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("config validation: layout rows must have between %d and %d characters, got %d",
			MinGridSize, MaxGridSize, width)
	}
	for i, row := range config.Layout {
		if len(row) != width {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", i+1, width, len(row))
		}
	}

	// Characters, rectangularity and robot uniqueness
	if _, err := config.Warehouse(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	moves, err := config.Script()
	if err != nil {
		return fmt.Errorf("config validation: moves: %w", err)
	}
	if len(moves) > MaxScriptMoves {
		return fmt.Errorf("config validation: moves must have at most %d directions, got %d", MaxScriptMoves, len(moves))
	}

	// Legend is optional but must agree with the fixed alphabet when present
	for key, value := range config.Legend {
		expected, ok := DefaultLegend[key]
		if !ok {
			return fmt.Errorf("config validation: legend has unknown key '%s'", key)
		}
		if value != expected {
			return fmt.Errorf("config validation: legend['%s'] must be '%s', got '%s'", key, expected, value)
		}
	}

	// Validate format strings
	if config.Messages.Pushed != "" && !strings.Contains(config.Messages.Pushed, "%d") {
		return fmt.Errorf("config validation: messages.pushed must contain %%d for the box count")
	}
	if config.Messages.Blocked != "" && strings.Count(config.Messages.Blocked, "%s") != 2 {
		return fmt.Errorf("config validation: messages.blocked must contain two %%s for direction and position")
	}

	return nil
}

// Warehouse parses the layout into a fresh narrow warehouse.
func (c *GameConfig) Warehouse() (*warehouse.Warehouse, error) {
	return warehouse.ParseGrid(strings.Join(c.Layout, "\n"))
}

// Script parses the configured move sequence.
func (c *GameConfig) Script() ([]grid.Direction, error) {
	return warehouse.ParseMoves(c.Moves)
}

// PuzzleText renders the config in the plain puzzle format: layout, blank
// line, moves.
func (c *GameConfig) PuzzleText() string {
	return strings.Join(c.Layout, "\n") + "\n\n" + c.Moves + "\n"
}

// messages returns the config messages with defaults applied.
func (c *GameConfig) messages() ConfigMessages {
	m := c.Messages
	if m.Welcome == "" {
		m.Welcome = DefaultMessages.Welcome
	}
	if m.Moved == "" {
		m.Moved = DefaultMessages.Moved
	}
	if m.Pushed == "" {
		m.Pushed = DefaultMessages.Pushed
	}
	if m.Blocked == "" {
		m.Blocked = DefaultMessages.Blocked
	}
	if m.Widened == "" {
		m.Widened = DefaultMessages.Widened
	}
	if m.Reset == "" {
		m.Reset = DefaultMessages.Reset
	}
	return m
}

// DecodeGameConfig unmarshals config data. ext selects the format: ".yaml"
// and ".yml" use YAML, anything else JSON.
func DecodeGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeGameConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigByName loads a game configuration by name from the configs
// directory, trying each of ConfigExtensions.
func LoadConfigByName(configName string) (*GameConfig, error) {
	dir := "configs"
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		dir = configDir
	}

	path, err := FindConfigFile(dir, configName)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	config, err := DecodeGameConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", configName, err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}

	return config, nil
}

// ErrConfigFileNotFound is returned by FindConfigFile when no candidate
// exists.
var ErrConfigFileNotFound = errors.New("config file not found")

// FindConfigFile resolves name inside dir. A name that already carries one of
// ConfigExtensions is used as is.
func FindConfigFile(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	for _, known := range ConfigExtensions {
		if ext == known {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				return "", fmt.Errorf("%w: '%s'", ErrConfigFileNotFound, name)
			}
			return path, nil
		}
	}

	for _, known := range ConfigExtensions {
		path := filepath.Join(dir, name+known)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'", ErrConfigFileNotFound, name)
}

// DefaultConfig is the puzzle used when no config directory is available.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "default",
		Description: "Default minimal warehouse",
		Layout: []string{
			"########",
			"#..O.O.#",
			"##@.O..#",
			"#...O..#",
			"#.#.O..#",
			"#...O..#",
			"#......#",
			"########",
		},
		Moves:  "<^^>>>vv<v>>v<<",
		Legend: maps.Clone(DefaultLegend),
	}
}
