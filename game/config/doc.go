// Package config loads warehouse puzzle configurations from a directory.
//
// A config file holds a layout (rows of # . O @), an optional scripted move
// sequence of ^ > v < arrows, a wide flag and player-facing messages. Files
// may be JSON (.json) or YAML (.yaml, .yml); when the same name exists in
// several formats the JSON file wins. Every file is validated with
// engine.ValidateGameConfig before it is cached.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("classic")
//	if errors.Is(err, config.ErrConfigNotFound) {
//		gameConfig = manager.GetDefault()
//	}
//
//	configs, err := manager.ListConfigs()
//
// The default config is classic when present, otherwise the first config in
// ID order, otherwise the built-in engine.DefaultConfig puzzle.
package config
