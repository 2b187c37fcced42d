// Construction order stream: the planner's output surface, read by the
// external construction collaborator.
package planner

import (
	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/plan"
)

// Request is one construction order: build the facility's structure at
// the coordinate.
type Request struct {
	Category plan.Category `json:"category"`
	Pos      grid.Coord    `json:"pos"`
}

// categoryStructure maps a facility category to the structure the
// construction collaborator builds for it.
func categoryStructure(c plan.Category) (colony.StructureType, bool) {
	switch c {
	case plan.CategoryExtraction, plan.CategoryMineral:
		return colony.StructureExtractor, true
	case plan.CategoryControlBuffer:
		return colony.StructureStorage, true
	case plan.CategoryRoad, plan.CategoryConnector:
		return colony.StructureRoad, true
	case plan.CategoryConduit:
		return colony.StructureConduit, true
	case plan.CategoryTradeDepot:
		return colony.StructureDepot, true
	case plan.CategoryTower:
		return colony.StructureTower, true
	case plan.CategoryExtension:
		return colony.StructureExtension, true
	case plan.CategoryOverlay:
		return colony.StructureOverlay, true
	default:
		return 0, false
	}
}

// RequestStructure resolves the structure type a request builds.
func RequestStructure(r Request) (colony.StructureType, bool) {
	return categoryStructure(r.Category)
}

// Orders diffs the colony's plan against its built and pending
// structures, yielding the ordered stream of outstanding construction
// requests. The order is deterministic: category declaration order, then
// key storage order, then path order within an entry.
func (p *Planner) Orders(col *colony.Colony) []Request {
	store := p.Store(col.ID)
	var out []Request
	for _, cat := range plan.Categories {
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
				if col.HasAny(c, typ) {
					continue // built or already marked
				}
				out = append(out, Request{Category: cat, Pos: c})
			}
		}
	}
	return out
}
