package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
	"github.com/wricardo/mcp-training/warehouse/game/warehouse"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	GetScore() int
	GetRobotPosition() grid.Coordinate
	GetBoxCount() int
	IsWide() bool

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool
	PlayScript() int
	Widen() error
	Replay(actions []string) int

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Local view
	GetLocalView() []string

	// Whole-puzzle operations
	Snapshot() *warehouse.Warehouse
	Solve() (*warehouse.Result, error)
}

var _ Engine = (*GameEngine)(nil)

// GameEngine implements the Engine interface
type GameEngine struct {
	config   *GameConfig
	messages ConfigMessages

	// initial is the pristine narrow warehouse; it is never moved.
	initial *warehouse.Warehouse
	script  []grid.Direction

	current *warehouse.Warehouse
	wide    bool
	state   *GameState
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{}
	if err := e.load(config); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with DefaultConfig
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) load(config *GameConfig) error {
	initial, err := config.Warehouse()
	if err != nil {
		return err
	}
	script, err := config.Script()
	if err != nil {
		return err
	}

	e.config = config
	e.messages = config.messages()
	e.initial = initial
	e.script = script
	e.wide = false
	e.current = initial.Clone()
	if config.Wide {
		wide, err := warehouse.Widen(initial)
		if err != nil {
			return err
		}
		e.current = wide
		e.wide = true
	}

	e.state = &GameState{
		Message:      e.messages.Welcome,
		ConfigName:   config.Name,
		ScriptLength: len(script),
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	e.sync()
	return nil
}

// sync copies the warehouse view into the serialisable state.
func (e *GameEngine) sync() {
	e.state.Grid = gridLines(e.current)
	e.state.Rows = e.current.Rows()
	e.state.Cols = e.current.Cols()
	e.state.RobotPos = e.current.Robot()
	e.state.Score = e.current.Score()
	e.state.Boxes = e.current.BoxCount()
	e.state.Wide = e.wide
	e.state.LocalView3x3 = LocalView3x3(e.current, e.current.Robot())
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Reset rebuilds the warehouse from the config, keeping the current width
func (e *GameEngine) Reset() *GameState {
	e.rebuild(e.wide)
	e.state.Message = e.messages.Reset
	return e.state
}

// rebuild restores the initial layout, widened when wide is set. Cumulative
// history survives; the current segment is cleared.
func (e *GameEngine) rebuild(wide bool) {
	e.current = e.initial.Clone()
	if wide {
		// initial is always narrow, so widening cannot fail
		w, err := warehouse.Widen(e.initial)
		if err != nil {
			panic(err)
		}
		e.current = w
	}
	e.wide = wide
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0
	e.sync()
}

// Widen replaces the warehouse with the widened initial layout. Moves made so
// far are discarded from the current segment.
func (e *GameEngine) Widen() error {
	if e.wide {
		return warehouse.ErrAlreadyWidened
	}
	e.rebuild(true)
	e.state.Message = e.messages.Widened
	return nil
}

// IsWide reports whether the engine runs the widened warehouse
func (e *GameEngine) IsWide() bool {
	return e.wide
}

// GetScore returns the current GPS score
func (e *GameEngine) GetScore() int {
	return e.current.Score()
}

// GetRobotPosition returns the current robot position
func (e *GameEngine) GetRobotPosition() grid.Coordinate {
	return e.current.Robot()
}

// GetBoxCount returns the number of logical boxes
func (e *GameEngine) GetBoxCount() int {
	return e.current.BoxCount()
}

// CanMove checks if the robot can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	d, ok := ParseDirection(direction)
	if !ok {
		return false
	}
	return e.current.CanMove(e.current.Robot(), d)
}

// GetPossibleMoves returns all directions the robot can currently move
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range directionOrder {
		if e.current.CanMove(e.current.Robot(), d) {
			possible = append(possible, DirectionName(d))
		}
	}
	return possible
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))
	for _, direction := range moves {
		results = append(results, e.Move(direction))
	}
	return results
}

// PlayScript replays the config's move sequence from the current position
// and returns how many of its moves succeeded.
func (e *GameEngine) PlayScript() int {
	moved := 0
	for _, d := range e.script {
		if e.Move(string(d.Symbol())) {
			moved++
		}
	}
	return moved
}

// Replay re-applies recorded actions, used when restoring a session.
func (e *GameEngine) Replay(actions []string) int {
	moved := 0
	for _, action := range actions {
		if e.Move(action) {
			moved++
		}
	}
	return moved
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	return e.load(config)
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetLocalView returns the 3x3 neighbourhood of the robot
func (e *GameEngine) GetLocalView() []string {
	return LocalView3x3(e.current, e.current.Robot())
}

// Snapshot returns an independent copy of the current warehouse
func (e *GameEngine) Snapshot() *warehouse.Warehouse {
	return e.current.Clone()
}

// Solve replays the full script on the initial layout and on its widened
// form. The running game is not affected.
func (e *GameEngine) Solve() (*warehouse.Result, error) {
	return warehouse.SolveWarehouse(e.initial, e.script)
}
