// Maintenance: the periodic sweep that keeps plan stores consistent with
// ground truth. Every failure mode here degrades to "drop the stale
// entry"; a sweep never aborts planning and one colony's failure never
// stops the others.
package planner

import (
	"fmt"
	"log/slog"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/plan"
)

// SweepResult reports one colony's maintenance outcome. Results are
// collected and logged by the caller, never silently discarded.
type SweepResult struct {
	ColonyID      string
	Collapsed     int // singleton entries collapsed to one coordinate
	Deduped       int // duplicate coordinates removed
	DroppedOOB    int // out-of-bounds coordinates removed
	RoadConflicts int // road plan tiles removed under non-road structures
	Demolitions   int // physical roads destroyed under conflicts
	Pruned        int // stale unbuilt entries deleted
	Err           error
}

// Maintain sweeps every observed colony, isolating failures per colony,
// then discards stores of colonies unobserved past the unseen age.
func (p *Planner) Maintain(cols []*colony.Colony, tick uint64) []SweepResult {
	results := make([]SweepResult, 0, len(cols))
	observed := make(map[string]bool, len(cols))
	for _, col := range cols {
		observed[col.ID] = true
		results = append(results, p.maintainOne(col, tick))
	}

	for _, id := range p.discardUnseen(observed, tick) {
		slog.Info("discarded abandoned plan store", "colony", id, "tick", tick)
	}
	return results
}

func (p *Planner) maintainOne(col *colony.Colony, tick uint64) (res SweepResult) {
	res.ColonyID = col.ID
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("sweep colony %s: %v", col.ID, r)
		}
	}()

	store := p.Store(col.ID)
	p.cleanEntries(col, store, tick, &res)
	p.resolveRoadConflicts(col, store, &res)
	return res
}

// cleanEntries collapses singleton-prone entries to their first
// coordinate (refreshing their creation tick) and deduplicates and
// bounds-checks everything else.
func (p *Planner) cleanEntries(col *colony.Colony, store *plan.Store, tick uint64, res *SweepResult) {
	w, h := col.Terrain.Width, col.Terrain.Height
	for _, k := range store.Keys() {
		e, ok := store.Get(k)
		if !ok {
			continue
		}

		if k.Singleton() && len(e.Coords) > 1 {
			store.Upsert(k, e.Coords[:1], tick)
			store.Touch(k, tick)
			res.Collapsed++
			continue
		}

		seen := make(map[grid.Coord]bool, len(e.Coords))
		kept := make([]grid.Coord, 0, len(e.Coords))
		for _, c := range e.Coords {
			if !c.Within(w, h) {
				res.DroppedOOB++
				continue
			}
			if seen[c] {
				res.Deduped++
				continue
			}
			seen[c] = true
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			store.Delete(k)
			continue
		}
		if len(kept) != len(e.Coords) {
			store.Upsert(k, kept, tick)
		}
	}
}

// resolveRoadConflicts removes road plan tiles now covered by a blocking
// structure; a physical road standing on such a tile is demolished so
// the plan never lags behind ground truth.
func (p *Planner) resolveRoadConflicts(col *colony.Colony, store *plan.Store, res *SweepResult) {
	for _, k := range store.Keys() {
		if !k.RoadLike() {
			continue
		}
		e, ok := store.Get(k)
		if !ok {
			continue
		}
		kept := make([]grid.Coord, 0, len(e.Coords))
		for _, c := range e.Coords {
			if !col.Blocked(c) {
				kept = append(kept, c)
				continue
			}
			res.RoadConflicts++
			if col.Has(c, colony.StructureRoad) {
				col.RemoveStructure(c, colony.StructureRoad)
				res.Demolitions++
			}
		}
		if len(kept) == 0 {
			store.Delete(k)
		} else if len(kept) != len(e.Coords) {
			store.Upsert(k, kept, 0)
		}
	}
}

// PruneStale is the lower-frequency deep sweep: entries past the prune
// age with no built structure or pending marker anywhere along them are
// deleted. Entries with any physical presence are exempt regardless of
// age.
func (p *Planner) PruneStale(col *colony.Colony, tick uint64) SweepResult {
	res := SweepResult{ColonyID: col.ID}
	store := p.Store(col.ID)
	for _, k := range store.Keys() {
		e, ok := store.Get(k)
		if !ok {
			continue
		}
		if e.CreatedAt+p.cfg.PruneAge > tick {
			continue
		}
		typ, ok := categoryStructure(k.Category)
		if !ok {
			continue
		}
		present := false
		for _, c := range e.Coords {
			if col.HasAny(c, typ) {
				present = true
				break
			}
		}
		if !present {
			store.Delete(k)
			res.Pruned++
		}
	}
	return res
}

// discardUnseen drops the whole store of any colony that was not
// observed this sweep and whose newest entry is past the unseen age.
func (p *Planner) discardUnseen(observed map[string]bool, tick uint64) []string {
	var dropped []string
	for id, s := range p.stores {
		if observed[id] {
			continue
		}
		if newest := s.NewestCreatedAt(); newest+p.cfg.UnseenAge <= tick {
			delete(p.stores, id)
			delete(p.lastPlan, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}
