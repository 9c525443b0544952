// Package engine runs a warehouse puzzle as an interactive game.
//
// A GameConfig carries the layout, the scripted move sequence and the
// player-facing messages. GameEngine wraps a warehouse.Warehouse built from
// it and exposes the operations the service layer needs:
//   - single, bulk and scripted moves with a move history
//   - reset to the initial layout and widening to double-width boxes
//   - replay of recorded actions for session restore
//   - a GameState snapshot for transports
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Push the robot left
//	success := gameEngine.Move("left")
//	state := gameEngine.GetState()
//
// Directions are accepted as up/down/left/right, compass names or the arrows
// ^ v < >. Blocked moves leave the warehouse unchanged and are recorded with
// the coordinate that stopped them.
package engine
