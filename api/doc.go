// Package api serves the warehouse simulator over HTTP with gorilla/mux.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create, body {"config_id": "classic"}
//   - GET    /api/sessions                 list, ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/unified         several sessions side by side, ?sessionIds=a,b or ?configName=x
//   - GET    /api/sessions/{id}            session info with state
//   - DELETE /api/sessions/{id}            delete, including the persisted copy
//
// Warehouse operations:
//   - GET  /api/sessions/{id}/state        current grid, robot, score
//   - POST /api/sessions/{id}/move         {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move    {"moves": ["up", "<"]} or {"script": "<^^>"}
//   - POST /api/sessions/{id}/reset        restore the initial layout, keeping the width
//   - POST /api/sessions/{id}/widen        switch to the double-width warehouse
//   - POST /api/sessions/{id}/play         run the config's move script, ?reset=true
//   - GET  /api/sessions/{id}/history      ?page=1&limit=20&order=desc
//
// Configs:
//   - GET  /api/configs                    list with dimensions, box and move counts
//   - POST /api/configs                    save a config, optional "id" next to the config fields
//   - GET  /api/configs/{name}             the config itself
//   - GET  /api/configs/{name}/solve       score of the original and the widened warehouse
//
// Other:
//   - GET /ws?session={id}                 websocket viewer, see package websocket
//   - GET /health
//
// Directions may be given as up/down/left/right, north/south/west/east or
// the arrows ^ v < >. A blocked move is not an error: the response has
// success false and attempted_to names the obstacle.
//
// Errors are JSON objects {"error": "..."}. Unknown sessions and configs
// give 404, a second widen or a duplicate session 409, invalid configs and
// move scripts 400.
package api
