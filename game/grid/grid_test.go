package grid

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digitGrid(t *testing.T, lines ...string) *Grid[int] {
	t.Helper()
	g, err := FromLines(lines, func(r rune, _ Coordinate) (int, error) {
		return strconv.Atoi(string(r))
	})
	require.NoError(t, err)
	return g
}

func TestCoordinateStep(t *testing.T) {
	tests := []struct {
		name string
		from Coordinate
		dir  Direction
		want Coordinate
		ok   bool
	}{
		{"north", At(2, 2), North, At(1, 2), true},
		{"south", At(2, 2), South, At(3, 2), true},
		{"east", At(2, 2), East, At(2, 3), true},
		{"west", At(2, 2), West, At(2, 1), true},
		{"northwest", At(2, 2), NorthWest, At(1, 1), true},
		{"off top edge", At(0, 3), North, Coordinate{}, false},
		{"off left edge", At(3, 0), West, Coordinate{}, false},
		{"diagonal off corner", At(0, 0), NorthEast, Coordinate{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.from.Step(tt.dir)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoordinateAddOverflow(t *testing.T) {
	_, ok := At(math.MaxInt, 0).Add(1, 0)
	assert.False(t, ok)

	_, ok = At(0, math.MaxInt).Step(East)
	assert.False(t, ok)
}

func TestDirectionOpposite(t *testing.T) {
	for _, d := range Principals() {
		assert.Equal(t, d, d.Opposite().Opposite(), d.String())
		dr, dc := d.Delta()
		or, oc := d.Opposite().Delta()
		assert.Equal(t, -dr, or)
		assert.Equal(t, -dc, oc)
	}
}

func TestDirectionSymbols(t *testing.T) {
	for _, d := range Cardinals() {
		got, ok := DirectionFromSymbol(d.Symbol())
		require.True(t, ok)
		assert.Equal(t, d, got)
		assert.True(t, d.IsCardinal())
	}
	assert.Equal(t, rune(0), NorthEast.Symbol())
	assert.False(t, SouthWest.IsCardinal())

	_, ok := DirectionFromSymbol('x')
	assert.False(t, ok)
}

func TestParseCardinal(t *testing.T) {
	tests := map[string]Direction{
		"up":    North,
		"DOWN":  South,
		" left": West,
		"east":  East,
		"n":     North,
		">":     East,
		"v":     South,
	}
	for in, want := range tests {
		got, ok := ParseCardinal(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseCardinal("northeast")
	assert.False(t, ok)
}

func TestFromLines(t *testing.T) {
	g := digitGrid(t, "123", "456")
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 3, g.Cols())

	v, ok := g.Get(At(1, 2))
	require.True(t, ok)
	assert.Equal(t, 6, v)

	_, ok = g.Get(At(2, 0))
	assert.False(t, ok)
}

func TestFromLinesRagged(t *testing.T) {
	_, err := FromLines([]string{"12", "3"}, func(r rune, _ Coordinate) (int, error) { return 0, nil })
	var ragged *RaggedError
	require.True(t, errors.As(err, &ragged))
	assert.Equal(t, 1, ragged.Row)
	assert.Equal(t, 2, ragged.Want)
	assert.Equal(t, 1, ragged.Got)
}

func TestFromLinesCellError(t *testing.T) {
	_, err := FromLines([]string{"1x"}, func(r rune, _ Coordinate) (int, error) {
		return strconv.Atoi(string(r))
	})
	assert.Error(t, err)
}

func TestRelative(t *testing.T) {
	g := digitGrid(t, "123", "456", "789")

	c, v, ok := g.Relative(At(1, 1), North)
	require.True(t, ok)
	assert.Equal(t, At(0, 1), c)
	assert.Equal(t, 2, v)

	_, _, ok = g.Relative(At(2, 2), South)
	assert.False(t, ok)
	_, _, ok = g.Relative(At(2, 2), East)
	assert.False(t, ok)
	_, _, ok = g.Relative(At(0, 0), West)
	assert.False(t, ok)
}

func TestCardinalNeighbours(t *testing.T) {
	g := New[int](3, 3)
	assert.Len(t, g.Cardinal(At(1, 1)), 4)
	assert.Equal(t, []Coordinate{At(0, 1), At(1, 0)}, g.Cardinal(At(0, 0)))
}

func TestSetOutOfRange(t *testing.T) {
	g := New[int](2, 2)
	assert.True(t, g.Set(At(1, 1), 5))
	assert.False(t, g.Set(At(2, 0), 5))
}

func TestCloneIsIndependent(t *testing.T) {
	g := digitGrid(t, "12", "34")
	c := g.Clone()
	c.Set(At(0, 0), 9)

	v, _ := g.Get(At(0, 0))
	assert.Equal(t, 1, v)
}

func TestAllRowMajor(t *testing.T) {
	g := digitGrid(t, "12", "34")
	var got []int
	for c, v := range g.All() {
		assert.True(t, g.Contains(c))
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestFormat(t *testing.T) {
	g := digitGrid(t, "12", "34")
	out := g.Format(func(v int) rune { return rune('0' + v) })
	assert.Equal(t, "12\n34", out)
}

func TestNegativeDimensions(t *testing.T) {
	g := New[int](-1, 3)
	assert.Equal(t, 0, g.Rows())
	assert.False(t, g.Contains(At(0, 0)))
}
