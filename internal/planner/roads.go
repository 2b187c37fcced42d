// Road network building: one cached least-cost path per node pair.
package planner

import (
	"sort"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/path"
	"github.com/talgya/colonyplan/internal/plan"
)

// roadCost builds the cost function shared by road and connector
// pathfinding: walls block, built or pending roads are cheap, any other
// structure blocks, and bare terrain uses the flat plain/rough weights.
func (p *Planner) roadCost(col *colony.Colony) path.CostFunc {
	return func(c grid.Coord) int {
		if !col.Walkable(c) {
			return path.CostBlocked
		}
		if col.RoadAt(c) {
			return p.cfg.RoadCost
		}
		if col.Blocked(c) {
			return path.CostBlocked
		}
		if col.Terrain.At(c) == grid.TileRough {
			return p.cfg.RoughCost
		}
		return p.cfg.PlainCost
	}
}

// findRoad runs one budgeted road search. The goal is reached at the
// given range so roads can stop adjacent to an occupied site.
func (p *Planner) findRoad(col *colony.Colony, from, to grid.Coord, rng int) ([]grid.Coord, error) {
	res := path.Find(path.Request{
		Start:  from,
		Goal:   to,
		Range:  rng,
		Cost:   p.roadCost(col),
		Budget: p.cfg.PathBudget,
	})
	if res.Incomplete {
		return nil, ErrPathIncomplete
	}
	return res.Path, nil
}

// netNode is one endpoint of the road network: a movement anchor or a
// planned infrastructure site.
type netNode struct {
	id  string
	pos grid.Coord
}

// networkNodes collects the road network's endpoints: anchors plus every
// planned extraction, control-buffer, and mineral site.
func (p *Planner) networkNodes(col *colony.Colony, store *plan.Store) []netNode {
	var nodes []netNode
	for _, a := range col.SortedAnchors() {
		nodes = append(nodes, netNode{id: a.ID, pos: a.Pos})
	}

	site := func(k plan.Key, id string) {
		if e, ok := store.Get(k); ok && len(e.Coords) > 0 {
			nodes = append(nodes, netNode{id: id, pos: e.Coords[0]})
		}
	}
	for _, n := range col.Resources {
		site(plan.ExtractionKey(n.ID), n.ID)
	}
	site(plan.ControlBufferKey(), "buffer")
	for _, n := range col.Minerals {
		site(plan.MineralKey(n.ID), n.ID)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return nodes
}

// planRoadNetwork ensures a road entry exists for every node pair. Paths
// are computed once and cached verbatim; an incomplete search simply
// leaves the pair for a later cycle.
func (p *Planner) planRoadNetwork(col *colony.Colony, store *plan.Store, tick uint64) {
	nodes := p.networkNodes(col, store)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			key := plan.RoadKey(nodes[i].id, nodes[j].id)
			if store.Has(key) {
				continue
			}
			coords, err := p.findRoad(col, nodes[i].pos, nodes[j].pos, 1)
			if err != nil {
				continue // retry next cycle
			}
			store.Upsert(key, coords, tick)
		}
	}
}
