package warehouse

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

const smallExample = `########
#..O.O.#
##@.O..#
#...O..#
#.#.O..#
#...O..#
#......#
########

<^^>>>vv<v>>v<<
`

const wideExample = `#######
#...#.#
#.....#
#..OO@#
#..O..#
#.....#
#######

<vv<<^^<<^^
`

// mustWarehouse builds a warehouse from lines that may already contain wide
// halves.
func mustWarehouse(t *testing.T, lines ...string) *Warehouse {
	t.Helper()
	cells, err := grid.FromLines(lines, func(r rune, _ grid.Coordinate) (Cell, error) {
		switch r {
		case '[':
			return LeftCell, nil
		case ']':
			return RightCell, nil
		default:
			return CellFromRune(r)
		}
	})
	require.NoError(t, err)
	w, err := New(cells)
	require.NoError(t, err)
	return w
}

func rows(w *Warehouse) []string {
	return strings.Split(w.String(), "\n")
}

func TestSolveSmallExample(t *testing.T) {
	res, err := Solve(smallExample)
	require.NoError(t, err)
	assert.Equal(t, 2028, res.PartOne)
	assert.Equal(t, 15, res.Moves)
}

func TestSolveWideExample(t *testing.T) {
	res, err := Solve(wideExample)
	require.NoError(t, err)
	assert.Equal(t, 908, res.PartOne)
	assert.Equal(t, 618, res.PartTwo)
	assert.Equal(t, []string{
		"##############",
		"##...[].##..##",
		"##...@.[]...##",
		"##....[]....##",
		"##..........##",
		"##..........##",
		"##############",
	}, rows(res.Wide))
}

func TestPushUpdatesScore(t *testing.T) {
	w := mustWarehouse(t,
		"#######",
		"#..O@O#",
		"#######",
	)
	assert.Equal(t, 208, w.Score())

	moved := w.Tick(grid.West)
	require.True(t, moved)
	assert.Equal(t, 207, w.Score())
	assert.Equal(t, grid.At(1, 3), w.Robot())
	assert.Equal(t, "#.O@.O#", rows(w)[1])
}

func TestBlockedTickLeavesGridUntouched(t *testing.T) {
	w := mustWarehouse(t,
		"#######",
		"###O@O#",
		"#######",
	)
	before := w.String()

	p := w.Step(grid.West)
	assert.False(t, p.Feasible)
	assert.Equal(t, grid.At(1, 2), p.BlockedAt)
	assert.Equal(t, before, w.String())
	assert.Equal(t, 208, w.Score())
	assert.Equal(t, grid.At(1, 4), w.Robot())
}

func TestPushChainCommitsFurthestFirst(t *testing.T) {
	w := mustWarehouse(t, "@OOO.")

	p := w.Step(grid.East)
	require.True(t, p.Feasible)
	assert.Equal(t, 3, p.Boxes)
	assert.Equal(t, []grid.Coordinate{grid.At(0, 3), grid.At(0, 2), grid.At(0, 1), grid.At(0, 0)}, p.Cells)
	assert.Equal(t, ".@OOO", w.String())
}

func TestGridEdgeBlocksLikeAWall(t *testing.T) {
	w := mustWarehouse(t, "O@")
	assert.False(t, w.Tick(grid.West))
	assert.False(t, w.Tick(grid.North))
	assert.False(t, w.Tick(grid.East))
	assert.Equal(t, "O@", w.String())

	p := w.Step(grid.West)
	assert.True(t, p.OffGrid)
	assert.Equal(t, grid.At(0, 0), p.BlockedAt)

	wall := mustWarehouse(t, "#O@")
	assert.False(t, wall.Step(grid.West).OffGrid)

	single := mustWarehouse(t, "@")
	for _, d := range grid.Cardinals() {
		assert.False(t, single.Tick(d), d.String())
	}
}

func TestDiagonalIsNeverFeasible(t *testing.T) {
	w := mustWarehouse(t,
		"...",
		".@.",
		"...",
	)
	for _, d := range []grid.Direction{grid.NorthEast, grid.NorthWest, grid.SouthEast, grid.SouthWest} {
		assert.False(t, w.CanMove(w.Robot(), d), d.String())
	}
}

func TestPlanFromOutsideGrid(t *testing.T) {
	w := mustWarehouse(t, "@.")
	assert.False(t, CanMove(w.View(), grid.At(5, 5), grid.North))
}

func TestWideVerticalPushNeedsBothHalves(t *testing.T) {
	w := mustWarehouse(t,
		"######",
		"#.#..#",
		"#.[].#",
		"#..@.#",
		"######",
	)
	before := w.String()

	p := w.Step(grid.North)
	assert.False(t, p.Feasible)
	assert.Equal(t, grid.At(1, 2), p.BlockedAt)
	assert.Equal(t, before, w.String())
}

func TestWideVerticalPushMovesPyramid(t *testing.T) {
	w := mustWarehouse(t,
		"########",
		"#......#",
		"#.[][].#",
		"#..[]..#",
		"#...@..#",
		"########",
	)

	p := w.Step(grid.North)
	require.True(t, p.Feasible)
	assert.Equal(t, 3, p.Boxes)
	assert.Equal(t, []string{
		"########",
		"#.[][].#",
		"#..[]..#",
		"#...@..#",
		"#......#",
		"########",
	}, rows(w))
	require.NoError(t, w.Validate())
}

func TestWideHorizontalPush(t *testing.T) {
	w := mustWarehouse(t, "#.[][]@#")

	require.True(t, w.Tick(grid.West))
	assert.Equal(t, "#[][]@.#", w.String())
	assert.False(t, w.Tick(grid.West))
}

func TestApplyMovePanicsWhenBlocked(t *testing.T) {
	w := mustWarehouse(t, "#@.")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var pe *PreconditionError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, grid.West, pe.Dir)
		assert.Equal(t, grid.At(0, 0), pe.At)
	}()
	w.ApplyMove(w.Robot(), grid.West)
}

func TestApplyMoveCommitsFeasibleMove(t *testing.T) {
	w := mustWarehouse(t, "#@O.")
	p := w.ApplyMove(w.Robot(), grid.East)
	assert.True(t, p.Feasible)
	assert.Equal(t, "#.@O", w.String())
	assert.Equal(t, grid.At(0, 2), w.Robot())
}

func TestInvariantsHoldAcrossRun(t *testing.T) {
	w, moves, err := Parse(wideExample)
	require.NoError(t, err)
	wide, err := Widen(w)
	require.NoError(t, err)

	for _, variant := range []*Warehouse{w, wide} {
		boxes := variant.BoxCount()
		for i, d := range moves {
			variant.Tick(d)
			require.NoError(t, variant.Validate(), "after move %d", i)
			assert.Equal(t, boxes, variant.BoxCount(), "after move %d", i)
		}
	}
}

func TestWiden(t *testing.T) {
	w := mustWarehouse(t,
		"######",
		"#..O@#",
		"######",
	)
	wide, err := Widen(w)
	require.NoError(t, err)

	assert.Equal(t, w.Rows(), wide.Rows())
	assert.Equal(t, 2*w.Cols(), wide.Cols())
	assert.Equal(t, "##....[]@.##", rows(wide)[1])
	assert.Equal(t, grid.At(1, 8), wide.Robot())

	left, _ := wide.Cell(grid.At(1, 6))
	right, _ := wide.Cell(grid.At(1, 7))
	assert.Equal(t, LeftCell, left)
	assert.Equal(t, RightCell, right)

	assert.Equal(t, 103, w.Score())
	assert.Equal(t, 106, wide.Score())
	assert.Equal(t, 1, wide.BoxCount())
	assert.True(t, wide.IsWide())
	assert.False(t, w.IsWide())
	assert.Equal(t, "#..O@#", rows(w)[1], "source must not change")
}

func TestWidenWithoutBoxesScoresZero(t *testing.T) {
	w := mustWarehouse(t, "#.@#")
	wide, err := Widen(w)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Score())
	assert.Equal(t, 0, wide.Score())
}

func TestWidenTwiceFails(t *testing.T) {
	w := mustWarehouse(t, "O@")
	wide, err := Widen(w)
	require.NoError(t, err)

	_, err = Widen(wide)
	assert.ErrorIs(t, err, ErrAlreadyWidened)
	assert.ErrorIs(t, err, ErrStructuralViolation)
}

func TestValidateDetectsOrphanHalf(t *testing.T) {
	w := mustWarehouse(t, "@[.")
	err := w.Validate()
	assert.ErrorIs(t, err, ErrStructuralViolation)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing move section", "#@#\n", ErrMalformedInput},
		{"unknown grid character", "#@X#\n\n<\n", ErrMalformedInput},
		{"ragged grid", "####\n#@#\n\n<\n", ErrMalformedInput},
		{"unknown move character", "#@.#\n\n<x>\n", ErrMalformedInput},
		{"empty input", "", ErrMalformedInput},
		{"no robot", "#..#\n\n<\n", ErrNoRobot},
		{"two robots", "#@@#\n\n<\n", ErrMultipleRobots},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseStructuralErrorsShareSentinel(t *testing.T) {
	_, _, err := Parse("#..#\n\n<\n")
	assert.ErrorIs(t, err, ErrStructuralViolation)
	assert.NotErrorIs(t, err, ErrMalformedInput)
}

func TestParseMovesIgnoresWhitespace(t *testing.T) {
	moves, err := ParseMoves("<^\n> v\r\n")
	require.NoError(t, err)
	assert.Equal(t, []grid.Direction{grid.West, grid.North, grid.East, grid.South}, moves)
	assert.Equal(t, "<^>v", FormatMoves(moves))
}

func TestParseEmptyMoveSection(t *testing.T) {
	w, moves, err := Parse("#@.#\n\n")
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, grid.At(0, 1), w.Robot())
}

func TestParseCRLF(t *testing.T) {
	w, moves, err := Parse("#@.#\r\n\r\n>>\r\n")
	require.NoError(t, err)
	assert.Len(t, moves, 2)
	assert.Equal(t, 1, w.Run(moves))
}

func TestSolveDoesNotMutateInput(t *testing.T) {
	w, moves, err := Parse(smallExample)
	require.NoError(t, err)
	before := w.String()

	res, err := SolveWarehouse(w, moves)
	require.NoError(t, err)
	assert.Equal(t, 2028, res.PartOne)
	assert.Equal(t, before, w.String())
}
