// Terrain generation using layered simplex noise.
// A single elevation field is thresholded into wall / rough / plain,
// with the map border forced to wall so paths cannot leave the grid.
package grid

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Width    int     // Grid width in tiles
	Height   int     // Grid height in tiles
	Seed     int64   // Random seed (0 = random)
	WallLvl  float64 // Elevation threshold above which tiles are wall
	RoughLvl float64 // Elevation threshold above which tiles are rough
	Scale    float64 // Noise sampling scale (tiles per noise unit)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:    50,
		Height:   50,
		Seed:     0,
		WallLvl:  0.72,
		RoughLvl: 0.55,
		Scale:    12.0,
	}
}

// Generate creates a terrain from layered simplex noise, deterministic
// for a fixed non-zero seed.
func Generate(cfg GenConfig) *Terrain {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	base := opensimplex.NewNormalized(seed)
	detail := opensimplex.NewNormalized(seed + 1)

	t := NewTerrain(cfg.Width, cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			c := Coord{X: x, Y: y}
			if x == 0 || y == 0 || x == cfg.Width-1 || y == cfg.Height-1 {
				t.Set(c, TileWall)
				continue
			}

			fx := float64(x) / cfg.Scale
			fy := float64(y) / cfg.Scale

			// Two octaves: broad shape plus finer variation.
			e := base.Eval2(fx, fy)*0.7 + detail.Eval2(fx*2.3, fy*2.3)*0.3

			switch {
			case e >= cfg.WallLvl:
				t.Set(c, TileWall)
			case e >= cfg.RoughLvl:
				t.Set(c, TileRough)
			default:
				t.Set(c, TilePlain)
			}
		}
	}
	return t
}

// TileCounts tallies tiles by kind, mainly for startup logging.
func TileCounts(t *Terrain) map[Tile]int {
	counts := make(map[Tile]int)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			counts[t.At(Coord{X: x, Y: y})]++
		}
	}
	return counts
}
