// Package session keeps warehouse sessions: one GameEngine per session ID,
// created from a puzzle config and touched on every move.
//
// IDs are case-insensitive. Generated IDs are 4 hex characters; caller
// chosen IDs may use letters, digits, '-' and '_'.
//
// Persistence:
//
// FilePersistence writes one JSON file per session. It stores the config
// ID, the wide flag and the actions of the current segment, not the grid.
// Loading rebuilds the engine from the config, widens it when needed and
// replays the actions; the stored score guards against a config that has
// changed since the session was saved.
//
//	configs, _ := config.NewManager("configs")
//	store, _ := session.NewFilePersistence("sessions", configs)
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Printf("Warning: %v", err)
//	}
//
//	sess, err := manager.Create("", configs.GetDefault())
//
// Manager is safe for concurrent use. The engines it hands out are not;
// the service layer serialises access to them.
package session
