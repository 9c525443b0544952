package service

import (
	"time"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// Stop reason codes reported by BulkMove
const (
	StopBlockedWall      = "blocked_wall"
	StopBlockedBoundary  = "blocked_boundary"
	StopInvalidDirection = "invalid_direction"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_boundary|invalid_direction
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos    grid.Coordinate `json:"start_pos"`
	EndPos      grid.Coordinate `json:"end_pos"`
	ScoreDelta  int             `json:"score_delta"`
	BoxesPushed int             `json:"boxes_pushed"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int             `json:"idx"`
	Dir         string          `json:"dir"`
	From        grid.Coordinate `json:"from"`
	To          grid.Coordinate `json:"to"`
	Pushed      int             `json:"pushed"`
	ScoreBefore int             `json:"score_before"`
	ScoreAfter  int             `json:"score_after"`
	Success     bool            `json:"success"`
}

// AttemptInfo details the obstacle that stopped a move
type AttemptInfo struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "push", "blocked", "reset", "widen", "script"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  grid.Coordinate `json:"position,omitempty"`
}

// PlayResult reports a scripted replay of the config's move sequence
type PlayResult struct {
	MovesPlayed    int               `json:"moves_played"`
	MovesSucceeded int               `json:"moves_succeeded"`
	ScoreDelta     int               `json:"score_delta"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
}

// SolveResult holds both scores of a config's puzzle
type SolveResult struct {
	ConfigID    string   `json:"config_id"`
	PartOne     int      `json:"part_one"`
	PartTwo     int      `json:"part_two"`
	Moves       int      `json:"moves"`
	Boxes       int      `json:"boxes"`
	NarrowMoved int      `json:"narrow_moved"`
	WideMoved   int      `json:"wide_moved"`
	NarrowGrid  []string `json:"narrow_grid"`
	WideGrid    []string `json:"wide_grid"`
	ElapsedMS   float64  `json:"elapsed_ms"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
	// Current pages only the moves since the last reset or widen.
	Current bool `json:"current"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
	Current     bool                      `json:"current,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Boxes       int    `json:"boxes"`
	Moves       int    `json:"moves"`
	Wide        bool   `json:"wide"`
}
