package warehouse

import "fmt"

// Kind is the occupant type of a cell.
type Kind uint8

const (
	Empty Kind = iota
	Wall
	Box
	Robot
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Box:
		return "box"
	case Robot:
		return "robot"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Half says which part of a logical box a Box cell holds. Left and Right
// always appear as horizontally adjacent pairs.
type Half uint8

const (
	Single Half = iota
	Left
	Right
)

func (h Half) String() string {
	switch h {
	case Single:
		return "single"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Half(%d)", uint8(h))
	}
}

// Cell is a single warehouse square. The zero value is Empty; Half is only
// meaningful when Kind is Box.
type Cell struct {
	Kind Kind
	Half Half
}

// Predefined cells.
var (
	EmptyCell = Cell{Kind: Empty}
	WallCell  = Cell{Kind: Wall}
	BoxCell   = Cell{Kind: Box, Half: Single}
	LeftCell  = Cell{Kind: Box, Half: Left}
	RightCell = Cell{Kind: Box, Half: Right}
	RobotCell = Cell{Kind: Robot}
)

// IsBox reports whether c holds any box half.
func (c Cell) IsBox() bool { return c.Kind == Box }

// IsWide reports whether c is one half of a double-width box.
func (c Cell) IsWide() bool {
	return c.Kind == Box && (c.Half == Left || c.Half == Right)
}

// Rune returns the display character for c.
func (c Cell) Rune() rune {
	switch c.Kind {
	case Wall:
		return '#'
	case Robot:
		return '@'
	case Box:
		switch c.Half {
		case Left:
			return '['
		case Right:
			return ']'
		default:
			return 'O'
		}
	default:
		return '.'
	}
}

func (c Cell) String() string { return string(c.Rune()) }

// CellFromRune parses one input-grid character. Wide halves are not accepted
// in input; they only appear after widening.
func CellFromRune(r rune) (Cell, error) {
	switch r {
	case '#':
		return WallCell, nil
	case '.':
		return EmptyCell, nil
	case 'O':
		return BoxCell, nil
	case '@':
		return RobotCell, nil
	default:
		return Cell{}, fmt.Errorf("%w: invalid cell character %q", ErrMalformedInput, r)
	}
}
