package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/service"
)

var (
	// ErrConfigNotFound is the service-level sentinel so callers can match it
	// without importing this package.
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// validID bounds config IDs to a single file name inside the config dir.
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id can name a saved config.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// DefaultConfigName is the puzzle preferred as default when present.
const DefaultConfigName = "classic"

// Manager loads puzzle configs from a directory of .json, .yaml and .yml
// files and caches them by name.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.defaultConfig = m.pickDefault()
	return m, nil
}

// Dir returns the directory configs are read from.
func (m *Manager) Dir() string {
	return m.configDir
}

// LoadConfig loads a configuration by name. The name may omit its extension.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)

	m.mu.RLock()
	config, cached := m.configs[id]
	m.mu.RUnlock()
	if cached {
		return config, nil
	}

	path, err := engine.FindConfigFile(m.configDir, name)
	if err != nil {
		if errors.Is(err, engine.ErrConfigFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err = engine.DecodeGameConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.configs[id]; ok {
		return existing, nil
	}
	m.configs[id] = config
	return config, nil
}

// ListConfigs describes every loadable config, sorted by ID. Files that fail
// validation are left out. When a name exists with several extensions only
// the one LoadConfig would pick is listed.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	seen := make(map[string]bool)
	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(engine.ConfigExtensions, filepath.Ext(entry.Name())) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}
		path, err := engine.FindConfigFile(m.configDir, id)
		if err != nil || filepath.Base(path) != entry.Name() {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			continue
		}
		configs = append(configs, describe(entry.Name(), id, config))
	}

	slices.SortFunc(configs, func(a, b *service.ConfigInfo) int {
		return strings.Compare(a.ConfigID, b.ConfigID)
	})
	return configs, nil
}

// describe summarises a validated config.
func describe(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	info := &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		Wide:        config.Wide,
	}
	if w, err := config.Warehouse(); err == nil {
		info.Rows, info.Cols, info.Boxes = w.Rows(), w.Cols(), w.BoxCount()
	}
	if moves, err := config.Script(); err == nil {
		info.Moves = len(moves)
	}
	return info
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached config and picks the default again.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	def := m.pickDefault()
	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// pickDefault prefers DefaultConfigName, then the first listed config, then
// the built-in puzzle.
func (m *Manager) pickDefault() *engine.GameConfig {
	if config, err := m.LoadConfig(DefaultConfigName); err == nil {
		return config
	}
	if configs, err := m.ListConfigs(); err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return config
		}
	}
	return engine.DefaultConfig()
}

// SaveConfig validates config and writes it as JSON. A name with a YAML
// extension is rejected; YAML configs are authored by hand.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch ext := filepath.Ext(name); ext {
	case "", ".json":
	default:
		return fmt.Errorf("%w: configs are saved as .json, got %s", ErrInvalidConfig, ext)
	}
	id := configID(name)
	if !ValidID(id) {
		return fmt.Errorf("%w: config id %q", ErrInvalidConfig, id)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}

// configID strips a known config extension from name.
func configID(name string) string {
	ext := filepath.Ext(name)
	if slices.Contains(engine.ConfigExtensions, ext) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
