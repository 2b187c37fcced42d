// Site selection: per facility category, one best coordinate this cycle
// or a recoverable "none". Out-of-bounds and occupied candidates are
// skipped silently, never reported as errors.
package planner

import (
	"sort"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/path"
	"github.com/talgya/colonyplan/internal/plan"
)

// siteFree is the basic legality test: walkable, no blocking occupant,
// and not claimed by another non-road plan entry.
func siteFree(col *colony.Colony, store *plan.Store, c grid.Coord) bool {
	return col.Free(c) && !store.ClaimedNonRoad(c)
}

// siteFreeOffRoad additionally rejects tiles carrying planned or built
// roads, for blocking facilities that must not sever the network.
func siteFreeOffRoad(col *colony.Colony, store *plan.Store, c grid.Coord) bool {
	return siteFree(col, store, c) && !store.ClaimedRoad(c) && !col.RoadAt(c)
}

// roadAdjacency counts the orthogonal neighbors carrying a planned or
// built road.
func roadAdjacency(col *colony.Colony, store *plan.Store, c grid.Coord) int {
	n := 0
	for _, nb := range c.Neighbors4() {
		if col.RoadAt(nb) || store.ClaimedRoad(nb) {
			n++
		}
	}
	return n
}

// ── Extraction sites ─────────────────────────────────────────────────

func (p *Planner) planExtractionSites(col *colony.Colony, store *plan.Store, tick uint64) {
	for _, node := range col.Resources {
		key := plan.ExtractionKey(node.ID)
		if store.Has(key) {
			continue
		}
		c, err := p.selectExtractionSite(col, store, node)
		if err != nil {
			continue
		}
		store.Upsert(key, []grid.Coord{c}, tick)
	}
}

// selectExtractionSite picks a tile in the ring around a resource node,
// preferring tiles on the least-cost path from the nearest anchor so
// haulers end their trip on the road. Walks the path from its far end
// inward before falling back to a plain ring scan.
func (p *Planner) selectExtractionSite(col *colony.Colony, store *plan.Store, node colony.Node) (grid.Coord, error) {
	radius := p.cfg.ExtractionRadius

	// Idempotent: a site already present in the ring means done.
	for r := 0; r <= radius; r++ {
		for _, c := range grid.Ring(node.Pos, r) {
			if col.HasAny(c, colony.StructureExtractor) {
				return grid.Coord{}, ErrNoCandidate
			}
		}
	}
	for _, k := range store.ByCategory(plan.CategoryExtraction) {
		if e, ok := store.Get(k); ok {
			for _, c := range e.Coords {
				if grid.Chebyshev(c, node.Pos) <= radius {
					return grid.Coord{}, ErrNoCandidate
				}
			}
		}
	}

	if anchor, ok := col.NearestAnchor(node.Pos); ok {
		if route := p.anchorRoute(col, store, anchor, node); len(route) > 0 {
			for i := len(route) - 1; i >= 0; i-- {
				tile := route[i]
				if grid.Chebyshev(tile, node.Pos) <= radius && siteFree(col, store, tile) {
					return tile, nil
				}
				for _, nb := range tile.Neighbors4() {
					if grid.Chebyshev(nb, node.Pos) <= radius && siteFree(col, store, nb) {
						return nb, nil
					}
				}
			}
		}
	}

	// Full ring scan fallback.
	for r := 1; r <= radius; r++ {
		for _, c := range grid.Ring(node.Pos, r) {
			if siteFree(col, store, c) {
				return c, nil
			}
		}
	}
	return grid.Coord{}, ErrNoCandidate
}

// anchorRoute returns the cached road path between an anchor and a node
// when one exists, else a fresh budgeted search. An incomplete search
// yields nil: the preference step is skipped this cycle.
func (p *Planner) anchorRoute(col *colony.Colony, store *plan.Store, anchor colony.Anchor, node colony.Node) []grid.Coord {
	if e, ok := store.Get(plan.RoadKey(anchor.ID, node.ID)); ok && len(e.Coords) > 0 {
		return e.Coords
	}
	coords, err := p.findRoad(col, anchor.Pos, node.Pos, 1)
	if err != nil {
		return nil
	}
	return coords
}

// ── Control buffer and mineral sites ─────────────────────────────────

func (p *Planner) planBufferSite(col *colony.Colony, store *plan.Store, tick uint64) {
	if col.Control == nil || store.Has(plan.ControlBufferKey()) {
		return
	}
	c, err := p.selectRingSite(col, store, col.Control.Pos, p.cfg.BufferMaxRadius)
	if err != nil {
		return
	}
	store.Upsert(plan.ControlBufferKey(), []grid.Coord{c}, tick)
}

func (p *Planner) planMineralSites(col *colony.Colony, store *plan.Store, tick uint64) {
	for _, node := range col.Minerals {
		key := plan.MineralKey(node.ID)
		if store.Has(key) {
			continue
		}
		c, err := p.selectRingSite(col, store, node.Pos, p.cfg.BufferMaxRadius)
		if err != nil {
			continue
		}
		store.Upsert(key, []grid.Coord{c}, tick)
	}
}

// selectRingSite scans concentric square rings outward from a center and
// returns the first walkable unoccupied tile.
func (p *Planner) selectRingSite(col *colony.Colony, store *plan.Store, center grid.Coord, maxRadius int) (grid.Coord, error) {
	for r := 1; r <= maxRadius; r++ {
		for _, c := range grid.Ring(center, r) {
			if siteFree(col, store, c) {
				return c, nil
			}
		}
	}
	return grid.Coord{}, ErrNoCandidate
}

// ── Conduit sites ────────────────────────────────────────────────────

func (p *Planner) planConduits(col *colony.Colony, store *plan.Store, tick uint64) {
	ensure := func(key plan.Key, target grid.Coord, kind plan.ConduitKind) {
		if store.Has(key) {
			return
		}
		c, err := p.selectConduitSite(col, store, target, kind)
		if err != nil {
			return
		}
		store.Upsert(key, []grid.Coord{c}, tick)
	}

	for _, node := range col.Resources {
		ensure(plan.ConduitNodeKey(node.ID), node.Pos, plan.ConduitNode)
	}
	if col.Control != nil {
		ensure(plan.ConduitControlKey(), col.Control.Pos, plan.ConduitControl)
	}
	if col.Storage != nil {
		ensure(plan.ConduitStorageKey(), *col.Storage, plan.ConduitStorage)
	}
}

// selectConduitSite scores candidate tiles within a bounded radius of
// the target. Every candidate must be reachable from the nearest anchor
// under the path budget; incomplete paths disqualify the tile. Highest
// score wins, scan order breaks ties.
func (p *Planner) selectConduitSite(col *colony.Colony, store *plan.Store, target grid.Coord, kind plan.ConduitKind) (grid.Coord, error) {
	anchor, ok := col.NearestAnchor(target)
	if !ok {
		return grid.Coord{}, ErrNoCandidate
	}

	var best grid.Coord
	bestScore := 0
	found := false

	for r := 1; r <= p.cfg.ConduitRadius; r++ {
		for _, c := range grid.Ring(target, r) {
			if !siteFreeOffRoad(col, store, c) {
				continue
			}
			res := path.Find(path.Request{
				Start:  anchor.Pos,
				Goal:   c,
				Cost:   p.roadCost(col),
				Budget: p.cfg.PathBudget,
			})
			if res.Incomplete {
				continue
			}

			score := -len(res.Path)
			if kind == plan.ConduitControl && r <= p.cfg.ConduitInnerRadius {
				score = 10
			}
			score += 2 * roadAdjacency(col, store, c)
			if p.nearSupplySite(col, store, c) {
				score += 3
			}

			if !found || score > bestScore {
				best = c
				bestScore = score
				found = true
			}
		}
	}
	if !found {
		return grid.Coord{}, ErrNoCandidate
	}
	return best, nil
}

// nearSupplySite reports whether the tile sits close to an existing
// extraction or storage site, planned or built.
func (p *Planner) nearSupplySite(col *colony.Colony, store *plan.Store, c grid.Coord) bool {
	for _, k := range store.ByCategory(plan.CategoryExtraction) {
		if e, ok := store.Get(k); ok {
			for _, sc := range e.Coords {
				if grid.Chebyshev(sc, c) <= 2 {
					return true
				}
			}
		}
	}
	if col.Storage != nil && grid.Chebyshev(*col.Storage, c) <= 2 {
		return true
	}
	for r := 0; r <= 2; r++ {
		for _, rc := range grid.Ring(c, r) {
			if col.HasAny(rc, colony.StructureStorage) || col.HasAny(rc, colony.StructureExtractor) {
				return true
			}
		}
	}
	return false
}

// ── Trade depot ──────────────────────────────────────────────────────

func (p *Planner) planDepot(col *colony.Colony, store *plan.Store, tick uint64) {
	if col.Storage == nil || store.Has(plan.TradeDepotKey()) {
		return
	}
	c, err := p.selectDepotSite(col, store, *col.Storage)
	if err != nil {
		return
	}
	store.Upsert(plan.TradeDepotKey(), []grid.Coord{c}, tick)
}

// selectDepotSite rings outward from the storage point to the maximum
// radius, scoring each reachable candidate by its deviation from the
// preferred offset, path length, and road adjacency.
func (p *Planner) selectDepotSite(col *colony.Colony, store *plan.Store, storagePt grid.Coord) (grid.Coord, error) {
	anchor, ok := col.NearestAnchor(storagePt)
	if !ok {
		return grid.Coord{}, ErrNoCandidate
	}

	var best grid.Coord
	bestScore := 0
	found := false

	for r := 1; r <= p.cfg.DepotMaxRadius; r++ {
		deviation := r - p.cfg.DepotPreferredOffset
		if deviation < 0 {
			deviation = -deviation
		}
		for _, c := range grid.Ring(storagePt, r) {
			if !siteFreeOffRoad(col, store, c) {
				continue
			}
			res := path.Find(path.Request{
				Start:  anchor.Pos,
				Goal:   c,
				Cost:   p.roadCost(col),
				Budget: p.cfg.PathBudget,
			})
			if res.Incomplete {
				continue
			}
			score := -deviation*p.cfg.DepotOffsetScale - len(res.Path) + 2*roadAdjacency(col, store, c)
			if !found || score > bestScore {
				best = c
				bestScore = score
				found = true
			}
		}
	}
	if !found {
		return grid.Coord{}, ErrNoCandidate
	}
	return best, nil
}

// ── Towers ───────────────────────────────────────────────────────────

// planTowers assigns the tier-dependent tower quota round-robin across
// anchors in id order, so the partition is stable across runs.
func (p *Planner) planTowers(col *colony.Colony, store *plan.Store, tick uint64) {
	anchors := col.SortedAnchors()
	if len(anchors) == 0 {
		return
	}
	quota := towerQuota(col.Tier)
	for slot := 0; slot < quota; slot++ {
		anchor := anchors[slot%len(anchors)]
		key := plan.TowerKey(anchor.ID, slot/len(anchors))
		if store.Has(key) {
			continue
		}
		for _, off := range towerOffsets {
			c := anchor.Pos.Add(off[0], off[1])
			if siteFreeOffRoad(col, store, c) {
				store.Upsert(key, []grid.Coord{c}, tick)
				break
			}
		}
	}
}

// ── Extensions ───────────────────────────────────────────────────────

// planExtensions fills each anchor's extension quota: preferred offsets
// first, then widening ring search, then an unrestricted scan sorted by
// Manhattan distance. The assembled set is entrance-pruned before being
// committed.
func (p *Planner) planExtensions(col *colony.Colony, store *plan.Store, tick uint64) {
	quota := extensionQuota(col.Tier)
	if quota == 0 {
		return
	}
	for _, anchor := range col.SortedAnchors() {
		p.planAnchorExtensions(col, store, anchor, quota, tick)
	}
}

func (p *Planner) planAnchorExtensions(col *colony.Colony, store *plan.Store, anchor colony.Anchor, quota int, tick uint64) {
	usedIndex := make(map[int]bool)
	existing := 0
	for _, k := range store.ByCategory(plan.CategoryExtension) {
		if k.Anchor == anchor.ID {
			usedIndex[k.Index] = true
			existing++
		}
	}
	need := quota - existing
	if need <= 0 {
		return
	}

	chosen := make(map[grid.Coord]bool)
	var selected []grid.Coord
	legal := func(c grid.Coord) bool {
		if chosen[c] || grid.Chebyshev(c, anchor.Pos) < p.cfg.ExtensionMinDistance {
			return false
		}
		return siteFreeOffRoad(col, store, c)
	}
	take := func(c grid.Coord) {
		chosen[c] = true
		selected = append(selected, c)
	}

	// Preferred offset list.
	for _, off := range extensionOffsets {
		if len(selected) >= need {
			break
		}
		if c := anchor.Pos.Add(off[0], off[1]); legal(c) {
			take(c)
		}
	}

	// Widening ring search.
	if len(selected) < need && p.cfg.ExtensionRingSearch {
		for r := p.cfg.ExtensionRingRadius; r <= p.cfg.ExtensionRingMax && len(selected) < need; r++ {
			for _, c := range grid.Ring(anchor.Pos, r) {
				if len(selected) >= need {
					break
				}
				if legal(c) {
					take(c)
				}
			}
		}
	}

	// Unrestricted scan, nearest first.
	if len(selected) < need {
		var rest []grid.Coord
		for y := 0; y < col.Terrain.Height; y++ {
			for x := 0; x < col.Terrain.Width; x++ {
				if c := (grid.Coord{X: x, Y: y}); legal(c) {
					rest = append(rest, c)
				}
			}
		}
		sort.SliceStable(rest, func(i, j int) bool {
			return grid.Manhattan(rest[i], anchor.Pos) < grid.Manhattan(rest[j], anchor.Pos)
		})
		for _, c := range rest {
			if len(selected) >= need {
				break
			}
			take(c)
		}
	}

	selected = p.pruneEntrances(col, store, selected)

	idx := 0
	for _, c := range selected {
		for usedIndex[idx] {
			idx++
		}
		usedIndex[idx] = true
		store.Upsert(plan.ExtensionKey(anchor.ID, idx), []grid.Coord{c}, tick)
	}
}

// pruneEntrances keeps access corridors open: when the assembled set
// exceeds the entrance quota, the sites most adjacent to roads are
// removed first, then evenly-spaced removal by index covers whatever
// road adjacency could not.
func (p *Planner) pruneEntrances(col *colony.Colony, store *plan.Store, selected []grid.Coord) []grid.Coord {
	excess := len(selected) - p.cfg.EntranceQuota
	if excess <= 0 {
		return selected
	}

	type scored struct {
		idx int
		adj int
	}
	var byAdj []scored
	for i, c := range selected {
		if adj := roadAdjacency(col, store, c); adj > 0 {
			byAdj = append(byAdj, scored{idx: i, adj: adj})
		}
	}
	sort.SliceStable(byAdj, func(i, j int) bool { return byAdj[i].adj > byAdj[j].adj })

	remove := make(map[int]bool)
	for i := 0; i < len(byAdj) && len(remove) < excess; i++ {
		remove[byAdj[i].idx] = true
	}
	// Fallback: evenly spaced by index.
	if len(remove) < excess {
		step := len(selected) / (excess - len(remove) + 1)
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(selected) && len(remove) < excess; i += step {
			if !remove[i] {
				remove[i] = true
			}
		}
		for i := 0; i < len(selected) && len(remove) < excess; i++ {
			remove[i] = true
		}
	}

	out := selected[:0]
	for i, c := range selected {
		if !remove[i] {
			out = append(out, c)
		}
	}
	return out
}

// ── Defensive overlays ───────────────────────────────────────────────

// planOverlays records an overlay entry for every protect-listed
// facility whose structure is confirmed built — planned-only facilities
// do not qualify.
func (p *Planner) planOverlays(col *colony.Colony, store *plan.Store, tick uint64) {
	for _, cat := range p.cfg.ProtectedCategories() {
		typ, ok := categoryStructure(cat)
		if !ok {
			continue
		}
		for _, k := range store.ByCategory(cat) {
			e, ok := store.Get(k)
			if !ok {
				continue
			}
			for _, c := range e.Coords {
				if col.Has(c, typ) && !store.Has(plan.OverlayKey(c)) {
					store.Upsert(plan.OverlayKey(c), []grid.Coord{c}, tick)
				}
			}
		}
	}
}
