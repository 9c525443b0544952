// Package websocket pushes live warehouse updates to browser viewers.
//
// A Hub keeps, per session ID, the set of connected clients. Every state
// change made through the REST API is broadcast as a JSON Message holding
// the session ID, an event name and the full engine.GameState, so a viewer
// can redraw the grid without polling. Viewers are read-only: anything they
// send is discarded.
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
//
// The client map is owned by the Run goroutine; ServeWS, the broadcast
// methods and ClientCount talk to it over channels. Clients whose send
// buffer fills up are dropped.
package websocket
