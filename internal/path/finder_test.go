package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colonyplan/internal/grid"
)

func terrainCost(t *grid.Terrain) CostFunc {
	return func(c grid.Coord) int {
		switch t.At(c) {
		case grid.TileWall:
			return CostBlocked
		case grid.TileRough:
			return 5
		default:
			return 2
		}
	}
}

func TestFindStraightLine(t *testing.T) {
	terr := grid.NewTerrain(20, 20)
	res := Find(Request{
		Start: grid.Coord{X: 2, Y: 2},
		Goal:  grid.Coord{X: 7, Y: 2},
		Cost:  terrainCost(terr),
	})

	require.False(t, res.Incomplete)
	require.Len(t, res.Path, 6)
	assert.Equal(t, grid.Coord{X: 2, Y: 2}, res.Path[0])
	assert.Equal(t, grid.Coord{X: 7, Y: 2}, res.Path[5])
}

func TestFindDetoursAroundWall(t *testing.T) {
	terr := grid.MustParseTerrain([]string{
		".......",
		"...#...",
		"...#...",
		"...#...",
		".......",
	})
	res := Find(Request{
		Start: grid.Coord{X: 1, Y: 2},
		Goal:  grid.Coord{X: 5, Y: 2},
		Cost:  terrainCost(terr),
	})

	require.False(t, res.Incomplete)
	assert.Equal(t, grid.Coord{X: 5, Y: 2}, res.Path[len(res.Path)-1])
	for _, c := range res.Path {
		assert.NotEqual(t, grid.TileWall, terr.At(c), "path crosses wall at %s", c)
	}
	// Detour is longer than the straight line.
	assert.Greater(t, len(res.Path), 5)
}

func TestFindPrefersCheapTiles(t *testing.T) {
	// Rough band across the middle; cheap corridor along the top.
	terr := grid.MustParseTerrain([]string{
		".....",
		"~~~~.",
		".....",
	})
	res := Find(Request{
		Start: grid.Coord{X: 0, Y: 1},
		Goal:  grid.Coord{X: 4, Y: 1},
		Cost: func(c grid.Coord) int {
			switch terr.At(c) {
			case grid.TileWall:
				return CostBlocked
			case grid.TileRough:
				return 10
			default:
				return 1
			}
		},
	})

	require.False(t, res.Incomplete)
	rough := 0
	for _, c := range res.Path {
		if terr.At(c) == grid.TileRough {
			rough++
		}
	}
	assert.Zero(t, rough, "expected path to avoid the rough band: %v", res.Path)
}

func TestFindRangeGoal(t *testing.T) {
	// Goal tile is a wall (a deposit); range 1 stops adjacent to it.
	terr := grid.MustParseTerrain([]string{
		".....",
		"...#.",
		".....",
	})
	goal := grid.Coord{X: 3, Y: 1}
	res := Find(Request{
		Start: grid.Coord{X: 0, Y: 1},
		Goal:  goal,
		Range: 1,
		Cost:  terrainCost(terr),
	})

	require.False(t, res.Incomplete)
	end := res.Path[len(res.Path)-1]
	assert.Equal(t, 1, grid.Chebyshev(end, goal))
}

func TestFindBudgetExhaustion(t *testing.T) {
	terr := grid.NewTerrain(50, 50)
	res := Find(Request{
		Start:  grid.Coord{X: 1, Y: 1},
		Goal:   grid.Coord{X: 48, Y: 48},
		Cost:   terrainCost(terr),
		Budget: 10,
	})

	assert.True(t, res.Incomplete)
	assert.LessOrEqual(t, res.Ops, 10)
	assert.NotEmpty(t, res.Path)
}

func TestFindUnreachable(t *testing.T) {
	terr := grid.MustParseTerrain([]string{
		".#.",
		".#.",
		".#.",
	})
	res := Find(Request{
		Start: grid.Coord{X: 0, Y: 1},
		Goal:  grid.Coord{X: 2, Y: 1},
		Cost:  terrainCost(terr),
	})
	assert.True(t, res.Incomplete)
}

func TestFindDeterministic(t *testing.T) {
	cfg := grid.DefaultGenConfig()
	cfg.Width, cfg.Height = 30, 30
	cfg.Seed = 3
	terr := grid.Generate(cfg)

	req := Request{Start: grid.Coord{X: 1, Y: 1}, Goal: grid.Coord{X: 28, Y: 28}, Range: 1, Cost: terrainCost(terr)}
	a := Find(req)
	b := Find(req)
	assert.Equal(t, a.Path, b.Path)
	assert.Equal(t, a.Incomplete, b.Incomplete)
}
