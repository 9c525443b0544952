package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

// Move attempts to move the robot in the specified direction, pushing any
// boxes in the way. Blocked and invalid moves leave the warehouse unchanged
// but are still recorded in the history.
func (e *GameEngine) Move(direction string) bool {
	from := e.current.Robot()
	before := e.current.Score()

	d, ok := ParseDirection(direction)
	if !ok {
		e.state.Message = fmt.Sprintf("Invalid direction: %s", direction)
		e.addMoveToHistory(MoveHistoryEntry{
			Action:       direction,
			FromPosition: from,
			ToPosition:   from,
			Score:        before,
		})
		return false
	}

	p := e.current.Step(d)
	entry := MoveHistoryEntry{
		Action:       DirectionName(d),
		FromPosition: from,
		ToPosition:   e.current.Robot(),
		Success:      p.Feasible,
	}

	switch {
	case !p.Feasible:
		blocked := p.BlockedAt
		entry.BlockedAt = &blocked
		entry.OffGrid = p.OffGrid
		e.state.Message = fmt.Sprintf(e.messages.Blocked, DirectionName(d), blocked)
	case p.Boxes > 0:
		entry.Pushed = p.Boxes
		e.state.Message = fmt.Sprintf(e.messages.Pushed, p.Boxes)
	default:
		e.state.Message = formatOptional(e.messages.Moved, DirectionName(d))
	}

	e.sync()
	entry.Score = e.state.Score
	e.addMoveToHistory(entry)
	return p.Feasible
}

// formatOptional applies arg only when format has a %s verb for it.
func formatOptional(format string, arg string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, arg)
	}
	return format
}

// addMoveToHistory adds a move to the game's move history
func (e *GameEngine) addMoveToHistory(entry MoveHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = e.state.TotalMoves + 1

	// Append to cumulative history (never cleared by reset) and increment total
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++

	// Append to current segment history and increment its counter
	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
	e.state.CurrentMovesCount++
}

// CurrentActions returns the actions of the current segment in order, the
// form persisted and fed back through Replay.
func (e *GameEngine) CurrentActions() []string {
	actions := make([]string, 0, len(e.state.CurrentMoves))
	for _, m := range e.state.CurrentMoves {
		actions = append(actions, m.Action)
	}
	return actions
}

// directionOrder is the order GetPossibleMoves reports in.
var directionOrder = []grid.Direction{grid.North, grid.South, grid.West, grid.East}
