// Node and anchor seeding for generated worlds. Deterministic for a
// fixed seed so a restarted simulation reproduces the same colonies.
package colony

import (
	"fmt"
	"math/rand"

	"github.com/talgya/colonyplan/internal/grid"
)

// SeedConfig controls how many fixed points a generated colony gets.
type SeedConfig struct {
	Resources  int // Resource deposits to place
	Minerals   int // Mineral deposits to place
	MinSpacing int // Minimum Manhattan distance between seeded points
}

// DefaultSeedConfig matches a small starter colony.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{Resources: 2, Minerals: 1, MinSpacing: 10}
}

// Seed places an anchor, storage point, resource and mineral deposits,
// and a control point on the colony. Deposits sit on wall tiles with at
// least one walkable neighbor, like natural outcrops; the control point
// and anchor sit on open ground.
func Seed(c *Colony, cfg SeedConfig, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	center := grid.Coord{X: c.Terrain.Width / 2, Y: c.Terrain.Height / 2}
	anchorPos, ok := nearestFree(c, center)
	if !ok {
		return fmt.Errorf("seed colony %s: no walkable anchor tile", c.ID)
	}
	c.Anchors = append(c.Anchors, Anchor{ID: "anchor-0", Pos: anchorPos})

	// Storage point: first free ring tile a couple of steps out.
	for r := 2; r <= 4 && c.Storage == nil; r++ {
		for _, pos := range grid.Ring(anchorPos, r) {
			if c.Free(pos) {
				p := pos
				c.Storage = &p
				break
			}
		}
	}
	if c.Storage == nil {
		p := anchorPos
		c.Storage = &p
	}

	placed := []grid.Coord{anchorPos}
	farEnough := func(pos grid.Coord) bool {
		for _, p := range placed {
			if grid.Manhattan(pos, p) < cfg.MinSpacing {
				return false
			}
		}
		return true
	}

	for i := 0; i < cfg.Resources; i++ {
		pos, ok := pickDeposit(c, rng, farEnough)
		if !ok {
			return fmt.Errorf("seed colony %s: no site for resource %d", c.ID, i)
		}
		placed = append(placed, pos)
		c.Resources = append(c.Resources, Node{
			ID:   fmt.Sprintf("res-%d", i),
			Kind: NodeResource,
			Pos:  pos,
		})
	}

	for i := 0; i < cfg.Minerals; i++ {
		pos, ok := pickDeposit(c, rng, farEnough)
		if !ok {
			return fmt.Errorf("seed colony %s: no site for mineral %d", c.ID, i)
		}
		placed = append(placed, pos)
		c.Minerals = append(c.Minerals, Node{
			ID:   fmt.Sprintf("min-%d", i),
			Kind: NodeMineral,
			Pos:  pos,
		})
	}

	// Control point: farthest free tile from the anchor among a sample.
	var control grid.Coord
	bestDist := -1
	for i := 0; i < 200; i++ {
		pos := grid.Coord{X: rng.Intn(c.Terrain.Width), Y: rng.Intn(c.Terrain.Height)}
		if !c.Free(pos) {
			continue
		}
		if d := grid.Manhattan(pos, anchorPos); d > bestDist {
			control = pos
			bestDist = d
		}
	}
	if bestDist < 0 {
		return fmt.Errorf("seed colony %s: no control point tile", c.ID)
	}
	c.Control = &Node{ID: "control", Kind: NodeControl, Pos: control}

	return nil
}

// pickDeposit samples wall tiles with a walkable neighbor until one
// satisfies the spacing predicate.
func pickDeposit(c *Colony, rng *rand.Rand, farEnough func(grid.Coord) bool) (grid.Coord, bool) {
	for i := 0; i < 500; i++ {
		pos := grid.Coord{X: rng.Intn(c.Terrain.Width), Y: rng.Intn(c.Terrain.Height)}
		if c.Terrain.At(pos) != grid.TileWall || !pos.Within(c.Terrain.Width, c.Terrain.Height) {
			continue
		}
		open := false
		for _, n := range pos.Neighbors4() {
			if c.Free(n) {
				open = true
				break
			}
		}
		if open && farEnough(pos) {
			return pos, true
		}
	}
	// Sparse maps may have no suitable outcrop; fall back to open ground.
	for i := 0; i < 500; i++ {
		pos := grid.Coord{X: rng.Intn(c.Terrain.Width), Y: rng.Intn(c.Terrain.Height)}
		if c.Free(pos) && farEnough(pos) {
			return pos, true
		}
	}
	return grid.Coord{}, false
}

// nearestFree spirals outward from a point to the first free tile.
func nearestFree(c *Colony, from grid.Coord) (grid.Coord, bool) {
	if c.Free(from) {
		return from, true
	}
	maxR := c.Terrain.Width
	if c.Terrain.Height > maxR {
		maxR = c.Terrain.Height
	}
	for r := 1; r <= maxR; r++ {
		for _, pos := range grid.Ring(from, r) {
			if c.Free(pos) {
				return pos, true
			}
		}
	}
	return grid.Coord{}, false
}
