package grid

import (
	"fmt"
	"strings"
)

// Direction is one of the eight compass directions.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

// Cardinals returns the four cardinal directions in clockwise order.
func Cardinals() []Direction {
	return []Direction{North, East, South, West}
}

// Principals returns all eight directions.
func Principals() []Direction {
	return []Direction{North, East, South, West, NorthEast, NorthWest, SouthEast, SouthWest}
}

// Delta returns the row and column offsets for d. North is (-1, 0).
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	case NorthEast:
		return -1, 1
	case NorthWest:
		return -1, -1
	case SouthEast:
		return 1, 1
	case SouthWest:
		return 1, -1
	default:
		return 0, 0
	}
}

// IsCardinal reports whether d is North, South, East or West.
func (d Direction) IsCardinal() bool {
	return d >= North && d <= West
}

// IsVertical reports whether d is North or South.
func (d Direction) IsVertical() bool {
	return d == North || d == South
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case NorthEast:
		return SouthWest
	case NorthWest:
		return SouthEast
	case SouthEast:
		return NorthWest
	case SouthWest:
		return NorthEast
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case NorthWest:
		return "northwest"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Symbol returns the arrow character used in move sequences, or 0 for
// diagonals.
func (d Direction) Symbol() rune {
	switch d {
	case North:
		return '^'
	case South:
		return 'v'
	case East:
		return '>'
	case West:
		return '<'
	default:
		return 0
	}
}

// DirectionFromSymbol maps a move-sequence arrow to its cardinal direction.
func DirectionFromSymbol(r rune) (Direction, bool) {
	switch r {
	case '^':
		return North, true
	case 'v':
		return South, true
	case '>':
		return East, true
	case '<':
		return West, true
	default:
		return 0, false
	}
}

// ParseCardinal accepts "up/down/left/right", compass names or a single
// arrow symbol, case-insensitively.
func ParseCardinal(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north", "n", "^":
		return North, true
	case "down", "south", "s", "v":
		return South, true
	case "right", "east", "e", ">":
		return East, true
	case "left", "west", "w", "<":
		return West, true
	default:
		return 0, false
	}
}
