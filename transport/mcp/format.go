package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/service"
)

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	mode := "narrow"
	if state.Wide {
		mode = "wide"
	}
	fmt.Fprintf(&b, "Robot: %s | Score: %d | Boxes: %d | Warehouse: %dx%d %s | Moves: %d\n\n",
		state.RobotPos, state.Score, state.Boxes, state.Rows, state.Cols, mode, state.TotalMoves)

	if len(state.LocalView3x3) == 3 {
		b.WriteString("Local 3x3:\n")
		for _, line := range state.LocalView3x3 {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	for _, line := range state.Grid {
		b.WriteString(line + "\n")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	switch {
	case result.Step != nil:
		st := result.Step
		fmt.Fprintf(&b, "✓ %s %s -> %s", st.Dir, st.From, st.To)
		if st.Pushed > 0 {
			fmt.Fprintf(&b, " pushed %d box(es), score %d -> %d", st.Pushed, st.ScoreBefore, st.ScoreAfter)
		}
		b.WriteString("\n\n")
	case result.AttemptedTo != nil:
		a := result.AttemptedTo
		fmt.Fprintf(&b, "✗ Blocked by %s '%s' at (%d,%d)\n\n", a.TileType, a.TileChar, a.Row, a.Col)
	case !result.Success:
		b.WriteString("✗ Move failed\n\n")
	}

	if result.Message != "" {
		b.WriteString(result.Message + "\n\n")
	}
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d/%d moves, %s -> %s, pushed %d box(es), score delta %+d\n",
		sessionID, result.MovesExecuted, result.RequestedMoves,
		result.StartPos, result.EndPos, result.BoxesPushed, result.ScoreDelta)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, st := range result.Steps {
			fmt.Fprintf(&b, "%d. %s %s -> %s pushed=%d score=%d\n",
				st.Idx, st.Dir, st.From, st.To, st.Pushed, st.ScoreAfter)
		}
	}

	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "\nStopped on move %d (%s): %s\n",
			result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
		if a := result.AttemptedTo; a != nil {
			fmt.Fprintf(&b, "Obstacle: %s '%s' at (%d,%d)\n", a.TileType, a.TileChar, a.Row, a.Col)
		}
	}
	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(result.PossibleMoves, ", "))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatPlayResult(result *service.PlayResult) string {
	return fmt.Sprintf("Played %d moves, %d moved the robot, score delta %+d\n\n%s",
		result.MovesPlayed, result.MovesSucceeded, result.ScoreDelta, formatGameState(result.GameState))
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config %s: %d boxes, %d moves (%.2fms)\n\n", result.ConfigID, result.Boxes, result.Moves, result.ElapsedMS)
	fmt.Fprintf(&b, "Part one (narrow): %d, robot moved %d times\n", result.PartOne, result.NarrowMoved)
	for _, line := range result.NarrowGrid {
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\nPart two (wide): %d, robot moved %d times\n", result.PartTwo, result.WideMoved)
	for _, line := range result.WideGrid {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	title := "Move History"
	if history.Current {
		title = "Current Segment History"
	}
	fmt.Fprintf(&b, "%s (Page %d/%d), total: %d\n\n", title, history.Page, history.TotalPages, history.TotalMoves)
	for _, move := range history.Moves {
		b.WriteString(formatHistoryLine(move.MoveNumber, move))
	}
	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment, moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryLine(i+1, move))
	}
	return b.String()
}

func formatHistoryLine(num int, move engine.MoveHistoryEntry) string {
	if !move.Success {
		at := ""
		if move.BlockedAt != nil {
			at = " at " + move.BlockedAt.String()
		}
		return fmt.Sprintf("%d. %s ✗ blocked%s [Score: %d]\n", num, move.Action, at, move.Score)
	}
	return fmt.Sprintf("%d. %s ✓ %s -> %s pushed=%d [Score: %d]\n",
		num, move.Action, move.FromPosition, move.ToPosition, move.Pushed, move.Score)
}

// describeCell explains the cell at row, col. The bounds are checked by the
// caller.
func describeCell(state *engine.GameState, row, col int) string {
	char := state.Grid[row][col]

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d): '%c' ", row, col, char)
	switch char {
	case '#':
		b.WriteString("wall. Nothing can enter it and it never moves.")
	case '.':
		b.WriteString("empty floor.")
	case '@':
		b.WriteString("the robot.")
	case 'O':
		fmt.Fprintf(&b, "box worth %d.", 100*row+col)
	case '[':
		fmt.Fprintf(&b, "left half of a wide box, its other half is at (%d,%d). Worth %d.", row, col+1, 100*row+col)
	case ']':
		fmt.Fprintf(&b, "right half of a wide box, its other half is at (%d,%d). Worth %d.", row, col-1, 100*row+col-1)
	default:
		b.WriteString("unknown.")
	}

	if rp := state.RobotPos; rp.Row == row || rp.Col == col {
		dRow, dCol := row-rp.Row, col-rp.Col
		switch {
		case dRow == 0 && dCol == 0:
		case dRow == 0:
			fmt.Fprintf(&b, "\nSame row as the robot, %d step(s) %s.", abs(dCol), pick(dCol > 0, "right", "left"))
		default:
			fmt.Fprintf(&b, "\nSame column as the robot, %d step(s) %s.", abs(dRow), pick(dRow > 0, "down", "up"))
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
