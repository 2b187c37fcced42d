// Builder plays the external construction collaborator: it consumes the
// planner's order stream, marks sites as pending, and completes them
// after a fixed delay.
package engine

import (
	"fmt"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/planner"
)

type pendingBuild struct {
	pos     grid.Coord
	typ     colony.StructureType
	started uint64
}

// Builder consumes construction orders at a bounded rate.
type Builder struct {
	planner *planner.Planner

	// OrdersPerTick caps new construction starts per colony per tick.
	OrdersPerTick int
	// BuildDelay is how many ticks a site stays pending before completing.
	BuildDelay uint64

	pending map[string][]pendingBuild // colony id -> in-progress builds
}

// NewBuilder creates a builder with default pacing.
func NewBuilder(p *planner.Planner) *Builder {
	return &Builder{
		planner:       p,
		OrdersPerTick: 3,
		BuildDelay:    10,
		pending:       make(map[string][]pendingBuild),
	}
}

// Advance completes due builds and starts new ones from the order
// stream. Returns a description per completed structure.
func (b *Builder) Advance(col *colony.Colony, tick uint64) []string {
	var done []string

	remaining := b.pending[col.ID][:0]
	for _, pb := range b.pending[col.ID] {
		if tick < pb.started+b.BuildDelay {
			remaining = append(remaining, pb)
			continue
		}
		col.RemoveMarker(pb.pos, pb.typ)
		col.AddStructure(pb.pos, pb.typ)
		done = append(done, fmt.Sprintf("%s built %s at %s",
			col.ID, colony.StructureName(pb.typ), pb.pos))
	}
	b.pending[col.ID] = remaining

	started := 0
	for _, req := range b.planner.Orders(col) {
		if started >= b.OrdersPerTick {
			break
		}
		typ, ok := planner.RequestStructure(req)
		if !ok {
			continue
		}
		col.AddMarker(req.Pos, typ)
		b.pending[col.ID] = append(b.pending[col.ID], pendingBuild{
			pos: req.Pos, typ: typ, started: tick,
		})
		started++
	}
	return done
}

// InFlight returns how many builds are pending for a colony.
func (b *Builder) InFlight(colonyID string) int {
	return len(b.pending[colonyID])
}
