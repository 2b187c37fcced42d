package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordRoundTrip(t *testing.T) {
	for _, c := range []Coord{{0, 0}, {12, 34}, {-3, 7}} {
		got, err := ParseCoord(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCoord("12")
	assert.Error(t, err)
	_, err = ParseCoord("a,b")
	assert.Error(t, err)
}

func TestDistances(t *testing.T) {
	a := Coord{2, 3}
	b := Coord{5, 1}
	assert.Equal(t, 5, Manhattan(a, b))
	assert.Equal(t, 3, Chebyshev(a, b))
	assert.Equal(t, 0, Manhattan(a, a))
}

func TestRing(t *testing.T) {
	center := Coord{10, 10}

	assert.Equal(t, []Coord{center}, Ring(center, 0))

	r1 := Ring(center, 1)
	require.Len(t, r1, 8)
	// Scan order: top row first, left to right.
	assert.Equal(t, Coord{9, 9}, r1[0])
	assert.Equal(t, Coord{11, 9}, r1[2])

	r3 := Ring(center, 3)
	assert.Len(t, r3, 24)
	seen := make(map[Coord]bool)
	for _, c := range r3 {
		assert.Equal(t, 3, Chebyshev(center, c))
		assert.False(t, seen[c], "duplicate ring coord %s", c)
		seen[c] = true
	}
}

func TestParseTerrain(t *testing.T) {
	terr, err := ParseTerrain([]string{
		"###",
		"#.~",
		"###",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, terr.Width)
	assert.Equal(t, TilePlain, terr.At(Coord{1, 1}))
	assert.Equal(t, TileRough, terr.At(Coord{2, 1}))
	assert.True(t, terr.Walkable(Coord{1, 1}))
	assert.False(t, terr.Walkable(Coord{0, 0}))

	// Out of bounds reads as wall.
	assert.Equal(t, TileWall, terr.At(Coord{-1, 0}))
	assert.False(t, terr.Walkable(Coord{3, 1}))

	_, err = ParseTerrain([]string{"..", "..."})
	assert.Error(t, err)
	_, err = ParseTerrain([]string{"x"})
	assert.Error(t, err)
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Width, cfg.Height = 24, 24
	cfg.Seed = 7

	a := Generate(cfg)
	b := Generate(cfg)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			c := Coord{X: x, Y: y}
			require.Equal(t, a.At(c), b.At(c), "tile mismatch at %s", c)
		}
	}

	// Border is always wall.
	assert.Equal(t, TileWall, a.At(Coord{0, 5}))
	assert.Equal(t, TileWall, a.At(Coord{23, 5}))

	counts := TileCounts(a)
	assert.Greater(t, counts[TilePlain], 0)
}
