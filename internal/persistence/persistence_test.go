package persistence

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/plan"
)

func sampleStore(t *testing.T) *plan.Store {
	t.Helper()
	s := plan.NewStore()
	s.Upsert(plan.ExtractionKey("res-0"), []grid.Coord{{X: 3, Y: 4}}, 10)
	s.Upsert(plan.RoadKey("anchor-0", "res-0"),
		[]grid.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, 20)
	s.Upsert(plan.TradeDepotKey(), []grid.Coord{{X: 8, Y: 8}}, 30)
	s.Upsert(plan.OverlayKey(grid.Coord{X: 8, Y: 8}), []grid.Coord{{X: 8, Y: 8}}, 40)
	return s
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlanStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := sampleStore(t)

	require.NoError(t, db.SavePlans("col-1", store))

	loaded, err := db.LoadPlans("col-1")
	require.NoError(t, err)
	assert.Equal(t, store.Encode(), loaded.Encode())
}

func TestSavePlansReplaces(t *testing.T) {
	db := openTestDB(t)
	store := sampleStore(t)
	require.NoError(t, db.SavePlans("col-1", store))

	store.Delete(plan.TradeDepotKey())
	store.Upsert(plan.MineralKey("min-0"), []grid.Coord{{X: 5, Y: 5}}, 50)
	require.NoError(t, db.SavePlans("col-1", store))

	loaded, err := db.LoadPlans("col-1")
	require.NoError(t, err)
	assert.False(t, loaded.Has(plan.TradeDepotKey()), "deleted entries do not survive a save")
	assert.True(t, loaded.Has(plan.MineralKey("min-0")))
}

func TestLoadAllPlans(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveWorldState(map[string]*plan.Store{
		"col-1": sampleStore(t),
		"col-2": sampleStore(t),
	}, 777))

	all, err := db.LoadAllPlans()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, sampleStore(t).Encode(), all["col-1"].Encode())

	tick, err := db.GetMeta("last_tick")
	require.NoError(t, err)
	assert.Equal(t, "777", tick)
}

func TestLoadPlansUnknownColony(t *testing.T) {
	db := openTestDB(t)
	store, err := db.LoadPlans("col-nobody")
	require.NoError(t, err)
	assert.Zero(t, store.Len())
}

func TestSnapshotRoundTrip(t *testing.T) {
	stores := map[string]map[string]plan.EntryJSON{
		"col-1": sampleStore(t).Encode(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, stores, 123))

	loaded, tick, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), tick)
	require.Contains(t, loaded, "col-1")
	assert.Equal(t, stores["col-1"], loaded["col-1"].Encode())
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.snap.zst")
	stores := map[string]map[string]plan.EntryJSON{"col-1": sampleStore(t).Encode()}

	require.NoError(t, ExportSnapshotFile(path, stores, 9))
	loaded, tick, err := ImportSnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), tick)
	assert.Equal(t, stores["col-1"], loaded["col-1"].Encode())
}

func TestReadSnapshotGarbage(t *testing.T) {
	_, _, err := ReadSnapshot(bytes.NewReader([]byte("not a snapshot")))
	assert.Error(t, err)
}
