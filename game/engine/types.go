package engine

import "github.com/wricardo/mcp-training/warehouse/game/grid"

const (
	// Validation constants
	MinGridSize         = 1
	MaxGridSize         = 100
	MaxScriptMoves      = 50000
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// DefaultLegend names the characters a layout may contain.
var DefaultLegend = map[string]string{
	"#": "wall",
	".": "empty",
	"O": "box",
	"@": "robot",
}

// ConfigMessages holds the player-facing texts of a puzzle. Empty entries
// fall back to DefaultMessages.
type ConfigMessages struct {
	Welcome string `json:"welcome" yaml:"welcome"`
	Moved   string `json:"moved,omitempty" yaml:"moved,omitempty"`
	Pushed  string `json:"pushed,omitempty" yaml:"pushed,omitempty"`   // %d boxes
	Blocked string `json:"blocked,omitempty" yaml:"blocked,omitempty"` // %s direction, %s obstacle coordinate
	Widened string `json:"widened,omitempty" yaml:"widened,omitempty"`
	Reset   string `json:"reset,omitempty" yaml:"reset,omitempty"`
}

// GameConfig describes a puzzle: the warehouse layout and the robot's
// scripted move sequence.
type GameConfig struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Layout      []string          `json:"layout" yaml:"layout"`
	Moves       string            `json:"moves" yaml:"moves"`
	Wide        bool              `json:"wide,omitempty" yaml:"wide,omitempty"`
	Legend      map[string]string `json:"legend,omitempty" yaml:"legend,omitempty"`
	Messages    ConfigMessages    `json:"messages" yaml:"messages"`
}

// GameState is the serialisable snapshot of a running puzzle.
type GameState struct {
	Grid         []string           `json:"grid"`
	Rows         int                `json:"rows"`
	Cols         int                `json:"cols"`
	RobotPos     grid.Coordinate    `json:"robot_pos"`
	Score        int                `json:"score"`
	Boxes        int                `json:"boxes"`
	Wide         bool               `json:"wide"`
	Message      string             `json:"message"`
	ConfigName   string             `json:"config_name"`
	ScriptLength int                `json:"script_length"`
	MoveHistory  []MoveHistoryEntry `json:"move_history"`
	TotalMoves   int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset or widen. It
	// mirrors MoveHistory entries but gets cleared on reset while MoveHistory
	// remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string           `json:"action"`
	FromPosition grid.Coordinate  `json:"from_position"`
	ToPosition   grid.Coordinate  `json:"to_position"`
	Pushed       int              `json:"pushed"`
	Score        int              `json:"score"`
	BlockedAt    *grid.Coordinate `json:"blocked_at,omitempty"`
	OffGrid      bool             `json:"off_grid,omitempty"`
	Timestamp    int64            `json:"timestamp"`
	Success      bool             `json:"success"`
	MoveNumber   int              `json:"move_number"`
}
