package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/plan"
)

func TestExtractionSiteOnAnchorPath(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 5, Y: 5})
	node := colony.Node{ID: "res-0", Kind: colony.NodeResource, Pos: grid.Coord{X: 10, Y: 10}}
	col.Resources = []colony.Node{node}

	p := New(DefaultConfig())
	site, err := p.selectExtractionSite(col, p.Store(col.ID), node)
	require.NoError(t, err)

	// Adjacent to the node, and on a least-cost route from the anchor:
	// on uniform terrain that means the Manhattan distances add up.
	anchor := grid.Coord{X: 5, Y: 5}
	assert.Equal(t, 1, grid.Chebyshev(site, node.Pos))
	assert.Equal(t, grid.Manhattan(anchor, node.Pos),
		grid.Manhattan(anchor, site)+grid.Manhattan(site, node.Pos),
		"site %s must lie on the anchor-to-node shortest path", site)
}

func TestExtractionSiteIdempotentAgainstBuilt(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 5, Y: 5})
	node := colony.Node{ID: "res-0", Kind: colony.NodeResource, Pos: grid.Coord{X: 10, Y: 10}}
	col.Resources = []colony.Node{node}
	col.AddStructure(grid.Coord{X: 9, Y: 10}, colony.StructureExtractor)

	p := New(DefaultConfig())
	_, err := p.selectExtractionSite(col, p.Store(col.ID), node)
	assert.ErrorIs(t, err, ErrNoCandidate, "an extractor already in the ring means no new site")
}

func TestExtractionSiteRingFallback(t *testing.T) {
	// Node walled off from the anchor beyond the path budget's reach is
	// still served by the plain ring scan.
	rows := []string{
		"..........",
		"..........",
		"...####...",
		"...#..#...",
		"...#..#...",
		"...####...",
		"..........",
	}
	col := colony.New("col-walled", 2, grid.MustParseTerrain(rows))
	col.Anchors = append(col.Anchors, colony.Anchor{ID: "anchor-0", Pos: grid.Coord{X: 0, Y: 0}})
	node := colony.Node{ID: "res-0", Kind: colony.NodeResource, Pos: grid.Coord{X: 4, Y: 3}}
	col.Resources = []colony.Node{node}

	p := New(DefaultConfig())
	site, err := p.selectExtractionSite(col, p.Store(col.ID), node)
	require.NoError(t, err)
	assert.Equal(t, grid.Coord{X: 5, Y: 3}, site, "only open tile in the ring")
}

func TestRingSiteScansOutward(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 5, Y: 5})
	p := New(DefaultConfig())
	store := p.Store(col.ID)

	center := grid.Coord{X: 10, Y: 10}
	site, err := p.selectRingSite(col, store, center, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, grid.Chebyshev(site, center), "nearest ring wins first")

	// Claim the whole radius-1 ring; the scan moves to radius 2.
	for _, c := range grid.Ring(center, 1) {
		store.Upsert(plan.OverlayKey(c), []grid.Coord{c}, 1)
	}
	site, err = p.selectRingSite(col, store, center, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Chebyshev(site, center))
}

func TestDepotSitePrefersConfiguredOffset(t *testing.T) {
	col := openWorld(t, 30, 30, grid.Coord{X: 15, Y: 15})
	storage := grid.Coord{X: 15, Y: 15}
	col.Storage = &storage

	cfg := DefaultConfig()
	cfg.DepotPreferredOffset = 3
	p := New(cfg)

	site, err := p.selectDepotSite(col, p.Store(col.ID), storage)
	require.NoError(t, err)
	assert.Equal(t, 3, grid.Chebyshev(site, storage),
		"open terrain offers no reason to deviate from the preferred radius")
}

func TestTowersRoundRobinAcrossAnchors(t *testing.T) {
	col := openWorld(t, 40, 40, grid.Coord{X: 10, Y: 10})
	col.Anchors = append(col.Anchors, colony.Anchor{ID: "anchor-1", Pos: grid.Coord{X: 30, Y: 30}})
	col.Tier = 8

	p := New(DefaultConfig())
	store := p.Store(col.ID)
	p.planTowers(col, store, 1)

	keys := store.ByCategory(plan.CategoryTower)
	require.Len(t, keys, towerQuota(8))

	perAnchor := make(map[string]int)
	for _, k := range keys {
		perAnchor[k.Anchor]++
	}
	assert.Equal(t, towerQuota(8)/2, perAnchor["anchor-0"])
	assert.Equal(t, towerQuota(8)/2, perAnchor["anchor-1"])

	// Re-running changes nothing.
	p.planTowers(col, store, 2)
	assert.Len(t, store.ByCategory(plan.CategoryTower), towerQuota(8))
}

func TestExtensionQuotaPreferredPlusRing(t *testing.T) {
	// All-wall terrain with exactly four preferred-offset tiles and two
	// radius-3 ring tiles carved open: quota 6 fills 4 + 2.
	terr := grid.NewTerrain(15, 15)
	for y := 0; y < 15; y++ {
		for x := 0; x < 15; x++ {
			terr.Set(grid.Coord{X: x, Y: y}, grid.TileWall)
		}
	}
	anchor := grid.Coord{X: 7, Y: 7}
	preferred := []grid.Coord{
		anchor.Add(-2, 0), anchor.Add(2, 0), anchor.Add(0, -2), anchor.Add(0, 2),
	}
	ring := []grid.Coord{anchor.Add(-3, -3), anchor.Add(3, 3)}
	for _, c := range append(append([]grid.Coord{anchor}, preferred...), ring...) {
		terr.Set(c, grid.TilePlain)
	}

	col := colony.New("col-ext", 2, terr)
	a := colony.Anchor{ID: "anchor-0", Pos: anchor}
	col.Anchors = append(col.Anchors, a)

	p := New(DefaultConfig())
	store := p.Store(col.ID)
	p.planAnchorExtensions(col, store, a, 6, 1)

	keys := store.ByCategory(plan.CategoryExtension)
	require.Len(t, keys, 6)
	got := make(map[grid.Coord]bool)
	for _, k := range keys {
		e, ok := store.Get(k)
		require.True(t, ok)
		require.Len(t, e.Coords, 1)
		got[e.Coords[0]] = true
		assert.GreaterOrEqual(t, grid.Chebyshev(e.Coords[0], anchor), p.cfg.ExtensionMinDistance,
			"site %s inside the exclusion zone", e.Coords[0])
	}
	for _, c := range append(preferred, ring...) {
		assert.True(t, got[c], "expected site %s in the final set", c)
	}
}

func TestEntrancePruneRemovesRoadAdjacentFirst(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 10, Y: 10})
	cfg := DefaultConfig()
	cfg.EntranceQuota = 3
	p := New(cfg)
	store := p.Store(col.ID)

	// One candidate hugs a planned road, the rest sit in the open.
	store.Upsert(plan.RoadKey("a", "b"), []grid.Coord{{X: 5, Y: 4}}, 1)
	selected := []grid.Coord{
		{X: 5, Y: 5}, {X: 8, Y: 8}, {X: 12, Y: 12}, {X: 14, Y: 14},
	}
	out := p.pruneEntrances(col, store, selected)
	require.Len(t, out, 3)
	assert.NotContains(t, out, grid.Coord{X: 5, Y: 5},
		"the road-adjacent site goes first")
}

func TestEntrancePruneEvenlySpacedFallback(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 10, Y: 10})
	cfg := DefaultConfig()
	cfg.EntranceQuota = 2
	p := New(cfg)

	// No roads anywhere: removal falls back to index spacing.
	selected := []grid.Coord{
		{X: 3, Y: 3}, {X: 5, Y: 5}, {X: 7, Y: 7}, {X: 9, Y: 9},
	}
	out := p.pruneEntrances(col, p.Store(col.ID), selected)
	assert.Len(t, out, 2)
}

func TestConduitSiteRequiresCompletePath(t *testing.T) {
	col := openWorld(t, 30, 30, grid.Coord{X: 5, Y: 5})
	target := grid.Coord{X: 20, Y: 20}

	cfg := DefaultConfig()
	cfg.PathBudget = 1 // nothing is reachable under this budget
	p := New(cfg)
	_, err := p.selectConduitSite(col, p.Store(col.ID), target, plan.ConduitStorage)
	assert.ErrorIs(t, err, ErrNoCandidate)

	cfg.PathBudget = 4000
	p = New(cfg)
	site, err := p.selectConduitSite(col, p.Store(col.ID), target, plan.ConduitStorage)
	require.NoError(t, err)
	assert.LessOrEqual(t, grid.Chebyshev(site, target), cfg.ConduitRadius)
}
