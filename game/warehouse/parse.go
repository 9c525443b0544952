package warehouse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/wricardo/mcp-training/warehouse/game/grid"
)

type moveSequence struct {
	Moves []string `parser:"@Move*"`
}

var moveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Move", Pattern: `[\^>v<]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var moveParser = participle.MustBuild[moveSequence](
	participle.Lexer(moveLexer),
	participle.Elide("Whitespace"),
)

// Parse reads a puzzle: a grid block, a blank line, then the move sequence.
func Parse(input string) (*Warehouse, []grid.Direction, error) {
	input = strings.TrimLeft(strings.ReplaceAll(input, "\r\n", "\n"), "\n")

	gridText, movesText, found := strings.Cut(input, "\n\n")
	if !found {
		return nil, nil, fmt.Errorf("%w: missing move section", ErrMalformedInput)
	}

	w, err := ParseGrid(gridText)
	if err != nil {
		return nil, nil, err
	}

	moves, err := ParseMoves(movesText)
	if err != nil {
		return nil, nil, err
	}
	return w, moves, nil
}

// ParseGrid builds a warehouse from lines of # . O @.
func ParseGrid(text string) (*Warehouse, error) {
	text = strings.Trim(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil, fmt.Errorf("%w: grid must contain at least one line", ErrMalformedInput)
	}

	cells, err := grid.FromLines(strings.Split(text, "\n"), func(r rune, c grid.Coordinate) (Cell, error) {
		cell, err := CellFromRune(r)
		if err != nil {
			return Cell{}, fmt.Errorf("%w at %s", err, c)
		}
		return cell, nil
	})
	if err != nil {
		var ragged *grid.RaggedError
		if errors.As(err, &ragged) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return nil, err
	}
	return New(cells)
}

// ParseMoves reads a sequence of ^ > v < arrows. Whitespace, including line
// breaks, is ignored.
func ParseMoves(text string) ([]grid.Direction, error) {
	if strings.TrimSpace(text) == "" {
		return []grid.Direction{}, nil
	}
	seq, err := moveParser.ParseString("moves", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	moves := make([]grid.Direction, 0, len(seq.Moves))
	for _, m := range seq.Moves {
		d, ok := grid.DirectionFromSymbol([]rune(m)[0])
		if !ok {
			return nil, fmt.Errorf("%w: invalid direction code %q", ErrMalformedInput, m)
		}
		moves = append(moves, d)
	}
	return moves, nil
}

// FormatMoves is the inverse of ParseMoves.
func FormatMoves(moves []grid.Direction) string {
	var b strings.Builder
	b.Grow(len(moves))
	for _, d := range moves {
		if r := d.Symbol(); r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
