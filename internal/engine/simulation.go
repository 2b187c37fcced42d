// Simulation ties the colonies, the planner, and the construction
// collaborator together and runs them each tick.
package engine

import (
	"log/slog"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/planner"
)

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	Colonies    []*colony.Colony
	ColonyIndex map[string]*colony.Colony
	Planner     *planner.Planner
	Builder     *Builder
	Events      []Event
	LastTick    uint64 // Most recent tick processed

	// Statistics refreshed on each maintenance sweep.
	Stats SimStats
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "plan", "build", "maintain"
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Colonies       int `json:"colonies"`
	PlanEntries    int `json:"plan_entries"`
	Structures     int `json:"structures"`
	PendingOrders  int `json:"pending_orders"`
	SweepConflicts int `json:"sweep_conflicts"`
	SweepPruned    int `json:"sweep_pruned"`
}

// NewSimulation wires colonies to a planner and a builder.
func NewSimulation(cols []*colony.Colony, p *planner.Planner) *Simulation {
	index := make(map[string]*colony.Colony, len(cols))
	for _, c := range cols {
		index[c.ID] = c
	}
	return &Simulation{
		Colonies:    cols,
		ColonyIndex: index,
		Planner:     p,
		Builder:     NewBuilder(p),
	}
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// TickPlan runs every tick: one planning step per colony when its
// replanning interval has elapsed, then bounded construction progress.
func (s *Simulation) TickPlan(tick uint64) {
	s.LastTick = tick
	for _, col := range s.Colonies {
		if s.Planner.Step(col, tick) {
			s.record(tick, "plan", "planning cycle for "+col.ID)
		}
		for _, done := range s.Builder.Advance(col, tick) {
			s.record(tick, "build", done)
		}
	}
}

// TickMaintain runs the maintenance sweep across all colonies and
// refreshes aggregate statistics.
func (s *Simulation) TickMaintain(tick uint64) {
	conflicts := 0
	for _, res := range s.Planner.Maintain(s.Colonies, tick) {
		if res.Err != nil {
			slog.Error("maintenance sweep failed", "colony", res.ColonyID, "error", res.Err)
			continue
		}
		conflicts += res.RoadConflicts
		if res.Collapsed+res.Deduped+res.DroppedOOB+res.RoadConflicts > 0 {
			slog.Info("maintenance sweep",
				"colony", res.ColonyID,
				"collapsed", res.Collapsed,
				"deduped", res.Deduped,
				"dropped_oob", res.DroppedOOB,
				"road_conflicts", res.RoadConflicts,
				"demolitions", res.Demolitions,
			)
		}
	}
	s.Stats.SweepConflicts = conflicts
	s.updateStats()

	slog.Info("world report",
		"tick", tick,
		"colonies", s.Stats.Colonies,
		"plan_entries", s.Stats.PlanEntries,
		"structures", s.Stats.Structures,
		"pending_orders", s.Stats.PendingOrders,
	)
}

// TickDeepSweep runs the low-frequency staleness prune.
func (s *Simulation) TickDeepSweep(tick uint64) {
	pruned := 0
	for _, col := range s.Colonies {
		res := s.Planner.PruneStale(col, tick)
		pruned += res.Pruned
	}
	s.Stats.SweepPruned = pruned
	if pruned > 0 {
		slog.Info("stale plan entries pruned", "tick", tick, "pruned", pruned)
	}

	// Trim old events to prevent unbounded growth (keep last 1000).
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

func (s *Simulation) record(tick uint64, category, description string) {
	s.Events = append(s.Events, Event{Tick: tick, Description: description, Category: category})
}

func (s *Simulation) updateStats() {
	entries := 0
	structures := 0
	orders := 0
	for _, col := range s.Colonies {
		entries += s.Planner.Store(col.ID).Len()
		orders += len(s.Planner.Orders(col))
		for _, typ := range []colony.StructureType{
			colony.StructureRoad, colony.StructureExtractor, colony.StructureStorage,
			colony.StructureConduit, colony.StructureDepot, colony.StructureTower,
			colony.StructureExtension, colony.StructureOverlay,
		} {
			structures += col.StructureCount(typ)
		}
	}
	s.Stats.Colonies = len(s.Colonies)
	s.Stats.PlanEntries = entries
	s.Stats.Structures = structures
	s.Stats.PendingOrders = orders
}
