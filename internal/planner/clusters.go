// Cluster connection: flood-fill the planned road tiles into connected
// components and bridge disjoint ones with short connector paths,
// rate-limited per tick. Large layouts converge over several ticks.
package planner

import (
	"sort"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/plan"
)

// connectClusters runs at most cfg.MaxClusterPasses passes and creates
// at most cfg.MaxConnectorsPerTick connectors. After every successful
// bridge the components are recomputed from scratch, since clusters may
// have merged. Returns the number of connectors created.
func (p *Planner) connectClusters(col *colony.Colony, store *plan.Store, tick uint64) int {
	created := 0
	for pass := 0; pass < p.cfg.MaxClusterPasses; pass++ {
		if created >= p.cfg.MaxConnectorsPerTick {
			return created
		}
		comps := components(store.RoadCoords())
		if len(comps) <= 1 {
			return created
		}

		merged := false
		for i := 0; i < len(comps) && !merged; i++ {
			for j := i + 1; j < len(comps) && !merged; j++ {
				a, b, dist := closestPair(comps[i], comps[j])
				if dist > p.cfg.MaxConnectorLength {
					continue
				}
				key := plan.ConnectorKey(a, b)
				if store.Has(key) {
					continue
				}
				coords, err := p.findRoad(col, a, b, 0)
				if err != nil {
					continue
				}
				store.Upsert(key, coords, tick)
				created++
				merged = true
			}
		}
		if !merged {
			return created
		}
	}
	return created
}

// components extracts 4-adjacency connected components from a tile set.
// Tiles and components are visited in sorted order so component indices
// are deterministic within a pass.
func components(tiles map[grid.Coord]bool) [][]grid.Coord {
	sorted := make([]grid.Coord, 0, len(tiles))
	for c := range tiles {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	visited := make(map[grid.Coord]bool, len(tiles))
	var comps [][]grid.Coord
	for _, start := range sorted {
		if visited[start] {
			continue
		}
		var comp []grid.Coord
		queue := []grid.Coord{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, nb := range cur.Neighbors4() {
				if tiles[nb] && !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// closestPair returns the minimum-Manhattan-distance tile pair across
// two components.
func closestPair(a, b []grid.Coord) (grid.Coord, grid.Coord, int) {
	bestA, bestB := a[0], b[0]
	best := grid.Manhattan(bestA, bestB)
	for _, ca := range a {
		for _, cb := range b {
			if d := grid.Manhattan(ca, cb); d < best {
				best = d
				bestA, bestB = ca, cb
			}
		}
	}
	return bestA, bestB, best
}
