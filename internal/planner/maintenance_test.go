package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/plan"
)

func TestSweepCollapsesSingletons(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 5, Y: 5})
	p := New(DefaultConfig())
	store := p.Store(col.ID)

	store.Upsert(plan.TradeDepotKey(),
		[]grid.Coord{{X: 3, Y: 3}, {X: 4, Y: 4}, {X: 5, Y: 5}}, 10)

	results := p.Maintain([]*colony.Colony{col}, 500)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Collapsed)

	e, ok := store.Get(plan.TradeDepotKey())
	require.True(t, ok)
	assert.Equal(t, []grid.Coord{{X: 3, Y: 3}}, e.Coords)
	assert.Equal(t, uint64(500), e.CreatedAt, "collapse refreshes the creation tick")
}

func TestSweepDedupesAndDropsOutOfBounds(t *testing.T) {
	col := openWorld(t, 10, 10, grid.Coord{X: 5, Y: 5})
	p := New(DefaultConfig())
	store := p.Store(col.ID)

	store.Upsert(plan.RoadKey("a", "b"), []grid.Coord{
		{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 1}, {X: 14, Y: 1}, {X: -1, Y: 3},
	}, 10)
	store.Upsert(plan.RoadKey("c", "d"), []grid.Coord{{X: 20, Y: 20}}, 10)

	results := p.Maintain([]*colony.Colony{col}, 100)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Deduped)
	assert.Equal(t, 3, results[0].DroppedOOB)

	e, ok := store.Get(plan.RoadKey("a", "b"))
	require.True(t, ok)
	assert.Equal(t, []grid.Coord{{X: 1, Y: 1}, {X: 2, Y: 1}}, e.Coords)
	assert.False(t, store.Has(plan.RoadKey("c", "d")), "entry emptied by cleanup is deleted")
}

func TestSweepResolvesRoadConflicts(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 5, Y: 5})
	p := New(DefaultConfig())
	store := p.Store(col.ID)

	conflict := grid.Coord{X: 3, Y: 1}
	store.Upsert(plan.RoadKey("a", "b"),
		[]grid.Coord{{X: 1, Y: 1}, {X: 2, Y: 1}, conflict, {X: 4, Y: 1}}, 10)
	col.AddStructure(conflict, colony.StructureTower)
	col.AddStructure(conflict, colony.StructureRoad)

	results := p.Maintain([]*colony.Colony{col}, 100)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].RoadConflicts)
	assert.Equal(t, 1, results[0].Demolitions)

	e, ok := store.Get(plan.RoadKey("a", "b"))
	require.True(t, ok)
	assert.NotContains(t, e.Coords, conflict)
	assert.False(t, col.Has(conflict, colony.StructureRoad), "physical road under the tower is demolished")
	assert.True(t, col.Has(conflict, colony.StructureTower))
}

func TestSweepIsolatesColonyFailure(t *testing.T) {
	good := openWorld(t, 10, 10, grid.Coord{X: 5, Y: 5})
	bad := colony.New("col-bad", 1, nil) // nil terrain trips the sweep
	p := New(DefaultConfig())
	p.Store(bad.ID).Upsert(plan.TradeDepotKey(), []grid.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}}, 1)
	p.Store(good.ID).Upsert(plan.TradeDepotKey(), []grid.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}}, 1)

	results := p.Maintain([]*colony.Colony{bad, good}, 100)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	require.NoError(t, results[1].Err, "one colony's failure must not stop the others")
	assert.Equal(t, 1, results[1].Collapsed)
}

func TestPruneStaleSparesBuilt(t *testing.T) {
	col := openWorld(t, 20, 20, grid.Coord{X: 5, Y: 5})
	cfg := DefaultConfig()
	cfg.PruneAge = 100
	p := New(cfg)
	store := p.Store(col.ID)

	builtRoad := grid.Coord{X: 2, Y: 2}
	store.Upsert(plan.RoadKey("a", "b"), []grid.Coord{{X: 1, Y: 2}, builtRoad, {X: 3, Y: 2}}, 0)
	col.AddStructure(builtRoad, colony.StructureRoad)

	store.Upsert(plan.ExtractionKey("res-0"), []grid.Coord{{X: 8, Y: 8}}, 0)

	markedSite := grid.Coord{X: 9, Y: 9}
	store.Upsert(plan.MineralKey("min-0"), []grid.Coord{markedSite}, 0)
	col.AddMarker(markedSite, colony.StructureExtractor)

	store.Upsert(plan.TowerKey("anchor-0", 0), []grid.Coord{{X: 6, Y: 6}}, 450)

	res := p.PruneStale(col, 500)
	assert.Equal(t, 1, res.Pruned)

	assert.True(t, store.Has(plan.RoadKey("a", "b")), "a built road tile exempts the whole entry")
	assert.False(t, store.Has(plan.ExtractionKey("res-0")), "old and unbuilt: pruned")
	assert.True(t, store.Has(plan.MineralKey("min-0")), "pending marker counts as presence")
	assert.True(t, store.Has(plan.TowerKey("anchor-0", 0)), "young entries are never pruned")
}

func TestUnseenColonyStoreDiscarded(t *testing.T) {
	seen := openWorld(t, 10, 10, grid.Coord{X: 5, Y: 5})
	cfg := DefaultConfig()
	cfg.UnseenAge = 1000
	p := New(cfg)

	p.Store(seen.ID).Upsert(plan.TradeDepotKey(), []grid.Coord{{X: 1, Y: 1}}, 50)
	p.Store("col-gone").Upsert(plan.TradeDepotKey(), []grid.Coord{{X: 1, Y: 1}}, 50)
	p.Store("col-idle").Upsert(plan.TradeDepotKey(), []grid.Coord{{X: 1, Y: 1}}, 4500)

	p.Maintain([]*colony.Colony{seen}, 5000)

	ids := p.StoreIDs()
	assert.Contains(t, ids, seen.ID, "observed colonies are always kept")
	assert.Contains(t, ids, "col-idle", "recent entries keep an unobserved store alive")
	assert.NotContains(t, ids, "col-gone", "unobserved past the age threshold: discarded")
}
