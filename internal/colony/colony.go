package colony

import (
	"fmt"
	"sort"

	"github.com/talgya/colonyplan/internal/grid"
)

// Colony is one independently-planned grid with its own occupancy state.
// All mutation happens from the single tick goroutine; there is no
// locking by design.
type Colony struct {
	ID   string
	Tier int

	Terrain *grid.Terrain

	Resources []Node
	Minerals  []Node
	Control   *Node
	Anchors   []Anchor

	// Storage is the colony's storage point, used to orient depot and
	// conduit placement. Nil until assigned.
	Storage *grid.Coord

	occupants map[grid.Coord][]Occupant
}

// New creates an empty colony over the given terrain.
func New(id string, tier int, t *grid.Terrain) *Colony {
	return &Colony{
		ID:        id,
		Tier:      tier,
		Terrain:   t,
		occupants: make(map[grid.Coord][]Occupant),
	}
}

// String returns a summary of the colony.
func (c *Colony) String() string {
	return fmt.Sprintf("Colony(%s tier=%d %dx%d)", c.ID, c.Tier, c.Terrain.Width, c.Terrain.Height)
}

// Walkable reports whether the tile is in bounds and passable terrain.
func (c *Colony) Walkable(pos grid.Coord) bool {
	return c.Terrain.Walkable(pos)
}

// At returns the occupants of a tile (structures and pending markers).
func (c *Colony) At(pos grid.Coord) []Occupant {
	occ := c.occupants[pos]
	out := make([]Occupant, len(occ))
	copy(out, occ)
	return out
}

// AddStructure records a built structure on the tile.
func (c *Colony) AddStructure(pos grid.Coord, typ StructureType) {
	c.occupants[pos] = append(c.occupants[pos], Occupant{Type: typ})
}

// AddMarker records a pending construction marker on the tile.
func (c *Colony) AddMarker(pos grid.Coord, typ StructureType) {
	c.occupants[pos] = append(c.occupants[pos], Occupant{Type: typ, Pending: true})
}

// RemoveStructure removes one built structure of the given type from the
// tile. Reports whether anything was removed.
func (c *Colony) RemoveStructure(pos grid.Coord, typ StructureType) bool {
	return c.remove(pos, typ, false)
}

// RemoveMarker removes one pending marker of the given type from the tile.
func (c *Colony) RemoveMarker(pos grid.Coord, typ StructureType) bool {
	return c.remove(pos, typ, true)
}

func (c *Colony) remove(pos grid.Coord, typ StructureType, pending bool) bool {
	occ := c.occupants[pos]
	for i, o := range occ {
		if o.Type == typ && o.Pending == pending {
			occ = append(occ[:i], occ[i+1:]...)
			if len(occ) == 0 {
				delete(c.occupants, pos)
			} else {
				c.occupants[pos] = occ
			}
			return true
		}
	}
	return false
}

// Has reports whether a built structure of the given type stands on the tile.
func (c *Colony) Has(pos grid.Coord, typ StructureType) bool {
	for _, o := range c.occupants[pos] {
		if o.Type == typ && !o.Pending {
			return true
		}
	}
	return false
}

// HasAny reports whether a built structure or pending marker of the given
// type is on the tile.
func (c *Colony) HasAny(pos grid.Coord, typ StructureType) bool {
	for _, o := range c.occupants[pos] {
		if o.Type == typ {
			return true
		}
	}
	return false
}

// Blocked reports whether a blocking structure or blocking pending marker
// occupies the tile.
func (c *Colony) Blocked(pos grid.Coord) bool {
	for _, o := range c.occupants[pos] {
		if o.Type.Blocking() {
			return true
		}
	}
	return false
}

// RoadAt reports whether a built road or pending road marker is on the tile.
func (c *Colony) RoadAt(pos grid.Coord) bool {
	return c.HasAny(pos, StructureRoad)
}

// Free reports whether the tile is walkable terrain with no blocking
// occupant — the basic placement test every selector uses.
func (c *Colony) Free(pos grid.Coord) bool {
	return c.Walkable(pos) && !c.Blocked(pos)
}

// NearestAnchor returns the anchor closest to the coordinate by Manhattan
// distance, with ties broken by anchor id for determinism.
func (c *Colony) NearestAnchor(to grid.Coord) (Anchor, bool) {
	if len(c.Anchors) == 0 {
		return Anchor{}, false
	}
	best := c.Anchors[0]
	bestDist := grid.Manhattan(best.Pos, to)
	for _, a := range c.Anchors[1:] {
		d := grid.Manhattan(a.Pos, to)
		if d < bestDist || (d == bestDist && a.ID < best.ID) {
			best = a
			bestDist = d
		}
	}
	return best, true
}

// SortedAnchors returns the anchors ordered by id. The tower selector
// relies on this ordering to keep round-robin allocation stable.
func (c *Colony) SortedAnchors() []Anchor {
	out := make([]Anchor, len(c.Anchors))
	copy(out, c.Anchors)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StructureCount tallies built structures of the given type.
func (c *Colony) StructureCount(typ StructureType) int {
	n := 0
	for _, occ := range c.occupants {
		for _, o := range occ {
			if o.Type == typ && !o.Pending {
				n++
			}
		}
	}
	return n
}
