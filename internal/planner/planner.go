package planner

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/plan"
)

// Recoverable planning outcomes. Both mean "nothing this cycle, retry
// on a later one" — never a failure of the planner itself.
var (
	// ErrNoCandidate means a selector found no legal site this cycle.
	ErrNoCandidate = errors.New("no candidate site")
	// ErrPathIncomplete means the pathfinder exhausted its budget.
	ErrPathIncomplete = errors.New("path incomplete")
)

// Planner owns one Plan Store per colony and runs the planning cycle.
// Colonies are processed sequentially by a single goroutine; the planner
// performs no locking by contract.
type Planner struct {
	cfg      Config
	stores   map[string]*plan.Store
	lastPlan map[string]uint64
}

// New creates a planner with the given tunables.
func New(cfg Config) *Planner {
	return &Planner{
		cfg:      cfg,
		stores:   make(map[string]*plan.Store),
		lastPlan: make(map[string]uint64),
	}
}

// Config returns the planner's tunables.
func (p *Planner) Config() Config { return p.cfg }

// Store returns the colony's Plan Store, creating it on first observation.
func (p *Planner) Store(colonyID string) *plan.Store {
	s, ok := p.stores[colonyID]
	if !ok {
		s = plan.NewStore()
		p.stores[colonyID] = s
	}
	return s
}

// AttachStore installs a store loaded from persistence.
func (p *Planner) AttachStore(colonyID string, s *plan.Store) {
	p.stores[colonyID] = s
}

// StoreIDs returns the ids of all held stores, sorted.
func (p *Planner) StoreIDs() []string {
	ids := make([]string, 0, len(p.stores))
	for id := range p.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EncodeStores renders every store in its portable form, for persistence
// and snapshot export.
func (p *Planner) EncodeStores() map[string]map[string]plan.EntryJSON {
	out := make(map[string]map[string]plan.EntryJSON, len(p.stores))
	for id, s := range p.stores {
		out[id] = s.Encode()
	}
	return out
}

// Step runs at most one planning cycle for the colony, respecting the
// replanning interval. Reports whether a cycle ran.
func (p *Planner) Step(col *colony.Colony, tick uint64) bool {
	if last, ok := p.lastPlan[col.ID]; ok && tick-last < p.cfg.ReplanEvery {
		return false
	}
	p.lastPlan[col.ID] = tick
	p.PlanColony(col, tick)
	return true
}

// PlanColony runs one full planning cycle: missing facility sites, road
// network, defensive overlays, then bounded cluster connection. Every
// sub-step is idempotent against an unchanged world and store.
func (p *Planner) PlanColony(col *colony.Colony, tick uint64) {
	store := p.Store(col.ID)

	p.planExtractionSites(col, store, tick)
	p.planBufferSite(col, store, tick)
	p.planMineralSites(col, store, tick)
	p.planRoadNetwork(col, store, tick)
	p.planConduits(col, store, tick)
	p.planDepot(col, store, tick)
	p.planTowers(col, store, tick)
	p.planExtensions(col, store, tick)
	p.planOverlays(col, store, tick)

	if n := p.connectClusters(col, store, tick); n > 0 {
		slog.Debug("connected road clusters", "colony", col.ID, "connectors", n)
	}
}
