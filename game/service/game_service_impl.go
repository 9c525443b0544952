package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// ErrConfigNotFound is returned by a ConfigManager for an unknown config name
var ErrConfigNotFound = errors.New("configuration not found")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// loadConfig resolves configName, falling back to the default config when
// it is empty.
func (s *gameServiceImpl) loadConfig(configName string) (*engine.GameConfig, error) {
	if configName == "" {
		return s.configs.GetDefault(), nil
	}

	config, err := s.configs.LoadConfig(configName)
	if err == nil {
		return config, nil
	}
	if errors.Is(err, ErrConfigNotFound) {
		availableConfigs, listErr := s.configs.ListConfigs()
		if listErr == nil && len(availableConfigs) > 0 {
			var configIDs []string
			for _, cfg := range availableConfigs {
				configIDs = append(configIDs, cfg.ConfigID)
			}
			return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
		}
		return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
	}
	return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// save persists a session and logs failures without surfacing them
func (s *gameServiceImpl) save(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, after, err)
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadConfig(configName)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the requested identifier; otherwise look it up by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, newEvent("reset", "Game reset to initial state", sess.Engine.GetRobotPosition()))
	}

	scoreBefore := sess.Engine.GetScore()
	success := sess.Engine.Move(direction)
	state := sess.Engine.GetState()
	last := sess.Engine.GetLastMove()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, moveEvents(last, state.Message)...),
	}

	step := stepFromEntry(1, last, scoreBefore)
	if success {
		result.Step = &step
	} else {
		result.AttemptedTo = attemptFromEntry(state, last)
	}

	s.save(sessionID, "move")
	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first move
// that does not succeed.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, newEvent("reset", "Game reset to initial state", sess.Engine.GetRobotPosition()))
	}

	result.StartPos = sess.Engine.GetRobotPosition()
	startScore := sess.Engine.GetScore()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		scoreBefore := sess.Engine.GetScore()
		success := sess.Engine.Move(move)
		last := sess.Engine.GetLastMove()
		state := sess.Engine.GetState()

		result.Events = append(result.Events, moveEvents(last, state.Message)...)

		if !success {
			result.Success = false
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptFromEntry(state, last)
			switch {
			case result.AttemptedTo == nil:
				result.StopReasonCode = StopInvalidDirection
				result.StoppedReason = fmt.Sprintf("move %d invalid: %s", i+1, move)
			case result.AttemptedTo.TileType == "wall":
				result.StopReasonCode = StopBlockedWall
				result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			default:
				result.StopReasonCode = StopBlockedBoundary
				result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			}
			break
		}

		result.MovesExecuted++
		result.BoxesPushed += last.Pushed
		result.Steps = append(result.Steps, stepFromEntry(i+1, last, scoreBefore))
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndPos = endState.RobotPos
	result.ScoreDelta = endState.Score - startScore
	result.Message = endState.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = endState.LocalView3x3

	s.save(sessionID, "bulk moves")
	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	s.save(sessionID, "reset")
	return state, nil
}

// Widen switches a session to the double-width warehouse
func (s *gameServiceImpl) Widen(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	if err := sess.Engine.Widen(); err != nil {
		return nil, err
	}

	s.save(sessionID, "widen")
	return sess.Engine.GetState(), nil
}

// PlayScript replays the session config's move sequence
func (s *gameServiceImpl) PlayScript(ctx context.Context, sessionID string, reset bool) (*PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &PlayResult{Events: []GameEvent{}}
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, newEvent("reset", "Game reset to initial state", sess.Engine.GetRobotPosition()))
	}

	startScore := sess.Engine.GetScore()
	before := sess.Engine.GetState().TotalMoves
	result.MovesSucceeded = sess.Engine.PlayScript()

	state := sess.Engine.GetState()
	result.MovesPlayed = state.TotalMoves - before
	result.ScoreDelta = state.Score - startScore
	result.GameState = state
	result.Events = append(result.Events, newEvent("script",
		fmt.Sprintf("Played %d moves, %d succeeded. Score: %d", result.MovesPlayed, result.MovesSucceeded, state.Score),
		state.RobotPos))

	s.save(sessionID, "script")
	return result, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	if opts.Current {
		history = sess.Engine.GetState().CurrentMoves
	}
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
		Current:     opts.Current,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Solve runs a config's full move sequence on the original and the widened
// warehouse without touching any session.
func (s *gameServiceImpl) Solve(ctx context.Context, configName string) (*SolveResult, error) {
	config, err := s.loadConfig(configName)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := eng.Solve()
	if err != nil {
		return nil, err
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SolveResult{
		ConfigID:    configID,
		PartOne:     res.PartOne,
		PartTwo:     res.PartTwo,
		Moves:       res.Moves,
		Boxes:       res.BoxesPerGrid,
		NarrowMoved: res.NarrowMoved,
		WideMoved:   res.WideMoved,
		NarrowGrid:  strings.Split(res.Narrow.String(), "\n"),
		WideGrid:    strings.Split(res.Wide.String(), "\n"),
		ElapsedMS:   float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

func newEvent(kind, message string, at grid.Coordinate) GameEvent {
	return GameEvent{
		Type:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Position:  at,
	}
}

// moveEvents generates events from a recorded move
func moveEvents(entry *engine.MoveHistoryEntry, message string) []GameEvent {
	if entry == nil {
		return nil
	}
	switch {
	case !entry.Success:
		return []GameEvent{newEvent("blocked", message, entry.FromPosition)}
	case entry.Pushed > 0:
		return []GameEvent{
			newEvent("move", fmt.Sprintf("Moved %s to %s", entry.Action, entry.ToPosition), entry.ToPosition),
			newEvent("push", message, entry.ToPosition),
		}
	default:
		return []GameEvent{newEvent("move", fmt.Sprintf("Moved %s to %s", entry.Action, entry.ToPosition), entry.ToPosition)}
	}
}

func stepFromEntry(idx int, entry *engine.MoveHistoryEntry, scoreBefore int) StepInfo {
	return StepInfo{
		Idx:         idx,
		Dir:         entry.Action,
		From:        entry.FromPosition,
		To:          entry.ToPosition,
		Pushed:      entry.Pushed,
		ScoreBefore: scoreBefore,
		ScoreAfter:  entry.Score,
		Success:     entry.Success,
	}
}

// attemptFromEntry describes the obstacle of a blocked move, or returns nil
// for a move that was never attempted.
func attemptFromEntry(state *engine.GameState, entry *engine.MoveHistoryEntry) *AttemptInfo {
	if entry == nil || entry.BlockedAt == nil {
		return nil
	}
	at := *entry.BlockedAt
	if entry.OffGrid {
		// Report the square past the edge, which may have a negative component.
		row, col := at.Row, at.Col
		if d, ok := engine.ParseDirection(entry.Action); ok {
			dRow, dCol := d.Delta()
			row, col = row+dRow, col+dCol
		}
		return &AttemptInfo{Row: row, Col: col, TileChar: "#", TileType: "boundary"}
	}
	tileChar, tileType := tileAt(state, at)
	return &AttemptInfo{Row: at.Row, Col: at.Col, TileChar: tileChar, TileType: tileType}
}

func tileAt(state *engine.GameState, c grid.Coordinate) (string, string) {
	if c.Row < 0 || c.Row >= len(state.Grid) || c.Col < 0 || c.Col >= len(state.Grid[c.Row]) {
		return "#", "boundary"
	}
	ch := state.Grid[c.Row][c.Col]
	switch ch {
	case '#':
		return "#", "wall"
	case 'O', '[', ']':
		return string(ch), "box"
	case '@':
		return "@", "robot"
	default:
		return string(ch), "empty"
	}
}
