package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/warehouse/game/config"
	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/service"
	"github.com/wricardo/mcp-training/warehouse/game/session"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
	"github.com/wricardo/mcp-training/warehouse/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case no
// websocket route is served.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Sessions
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Must be registered before the {id} pattern
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Warehouse operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-move", s.handleBulkMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/widen", s.handleWiden).Methods("POST")
	api.HandleFunc("/sessions/{id}/play", s.handlePlay).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configs
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/configs/{name}/solve", s.handleSolveConfig).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSessionAlreadyExists), errors.Is(err, warehouse.ErrAlreadyWidened):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidSessionID), errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, warehouse.ErrMalformedInput), errors.Is(err, warehouse.ErrStructuralViolation):
		status = http.StatusBadRequest
	}
	respondError(w, status, err.Error())
}

func (s *Server) broadcast(sessionID, event string, state *engine.GameState, data interface{}) {
	if s.hub == nil || state == nil {
		return
	}
	if event == websocket.EventStateUpdate {
		s.hub.BroadcastToSession(sessionID, state)
		return
	}
	s.hub.BroadcastEvent(sessionID, event, state, data)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SESSION] created id=%s config=%s", info.ID, info.ConfigName)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created" or "accessed"
	if sortBy != "created" {
		sortBy = "accessed"
	}
	order := query.Get("order")
	if order != "asc" {
		order = "desc"
	}

	slices.SortStableFunc(sessions, func(a, b *service.SessionInfo) int {
		ta, tb := a.LastAccessedAt, b.LastAccessedAt
		if sortBy == "created" {
			ta, tb = a.CreatedAt, b.CreatedAt
		}
		if order == "asc" {
			return ta.Compare(tb)
		}
		return tb.Compare(ta)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Warehouse Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Direction string `json:"direction"`
		Reset     bool   `json:"reset,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Move(r.Context(), sessionID, req.Direction, req.Reset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, websocket.EventStateUpdate, result.GameState, nil)

	switch {
	case result.Step != nil:
		st := result.Step
		log.Printf("[MOVE] session=%s dir=%s %s->%s pushed=%d score=%d status=OK",
			sessionID, st.Dir, st.From, st.To, st.Pushed, st.ScoreAfter)
	case result.AttemptedTo != nil:
		a := result.AttemptedTo
		log.Printf("[MOVE] session=%s dir=%s BLOCKED at=(%d,%d) tile=%s type=%s",
			sessionID, req.Direction, a.Row, a.Col, a.TileChar, a.TileType)
	default:
		log.Printf("[MOVE] session=%s dir=%q status=FAIL", sessionID, req.Direction)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Moves []string `json:"moves"`
		// Script is an alternative to Moves: a string of ^ > v < arrows.
		Script string `json:"script,omitempty"`
		Reset  bool   `json:"reset,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	moves := req.Moves
	if req.Script != "" {
		dirs, err := warehouse.ParseMoves(req.Script)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		for _, d := range dirs {
			moves = append(moves, string(d.Symbol()))
		}
	}

	result, err := s.service.BulkMove(r.Context(), sessionID, moves, req.Reset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, websocket.EventStateUpdate, result.GameState, nil)

	stop := result.StopReasonCode
	if stop == "" {
		stop = "none"
	}
	log.Printf("[BULK] session=%s exec=%d/%d stop=%s end=%s pushed=%d score_delta=%d",
		sessionID, result.MovesExecuted, result.RequestedMoves, stop, result.EndPos, result.BoxesPushed, result.ScoreDelta)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, websocket.EventReset, state, nil)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": state.Message,
		"state":   state,
	})
}

func (s *Server) handleWiden(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Widen(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[WIDEN] session=%s cols=%d score=%d", sessionID, state.Cols, state.Score)
	s.broadcast(sessionID, websocket.EventWiden, state, nil)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": state.Message,
		"state":   state,
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	reset, _ := strconv.ParseBool(r.URL.Query().Get("reset"))
	result, err := s.service.PlayScript(r.Context(), sessionID, reset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[PLAY] session=%s played=%d moved=%d score=%d",
		sessionID, result.MovesPlayed, result.MovesSucceeded, result.GameState.Score)
	s.broadcast(sessionID, websocket.EventScript, result.GameState, map[string]int{
		"moves_played":    result.MovesPlayed,
		"moves_succeeded": result.MovesSucceeded,
	})
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}
	opts.Current = query.Get("segment") == "current"

	history, err := s.service.GetMoveHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Config Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	gameConfig, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gameConfig)
}

func (s *Server) handleSolveConfig(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := s.service.Solve(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SOLVE] config=%s part1=%d part2=%d moves=%d elapsed=%.2fms",
		name, result.PartOne, result.PartTwo, result.Moves, result.ElapsedMS)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id,omitempty"`
		engine.GameConfig
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	id := req.ID
	if id == "" {
		id = configIDFromName(req.Name)
	}
	if !config.ValidID(id) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid config id %q", id))
		return
	}

	gameConfig := req.GameConfig
	if err := s.service.SaveConfig(r.Context(), id, &gameConfig); err != nil {
		respondServiceError(w, fmt.Errorf("failed to save config: %w", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": id,
	})
}

// configIDFromName turns a display name into a file-safe ID.
func configIDFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// handleUnifiedSessions serves the multi-session view: a set of sessions
// selected by ID list or config name, side by side.
func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo
	if ids := query.Get("sessionIds"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if info, err := s.service.GetSession(r.Context(), id); err == nil {
				sessions = append(sessions, info)
			}
		}
	} else {
		all, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		configName := query.Get("configName")
		for _, info := range all {
			if configName == "" || info.ConfigName == configName {
				sessions = append(sessions, info)
			}
		}
	}

	type unifiedSession struct {
		SessionID    string            `json:"session_id"`
		ConfigName   string            `json:"config_name"`
		GameState    *engine.GameState `json:"game_state"`
		CreatedAt    time.Time         `json:"created_at"`
		LastAccessed time.Time         `json:"last_accessed"`
	}

	response := struct {
		ConfigName string           `json:"config_name"`
		TotalBoxes int              `json:"total_boxes"`
		BestScore  int              `json:"best_score"`
		Sessions   []unifiedSession `json:"sessions"`
	}{Sessions: make([]unifiedSession, 0, len(sessions))}

	for _, info := range sessions {
		if response.ConfigName == "" {
			response.ConfigName = info.ConfigName
			if info.GameState != nil {
				response.TotalBoxes = info.GameState.Boxes
			}
		}
		if info.GameState != nil && info.GameState.Score > response.BestScore {
			response.BestScore = info.GameState.Score
		}
		response.Sessions = append(response.Sessions, unifiedSession{
			SessionID:    info.ID,
			ConfigName:   info.ConfigName,
			GameState:    info.GameState,
			CreatedAt:    info.CreatedAt,
			LastAccessed: info.LastAccessedAt,
		})
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
