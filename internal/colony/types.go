// Package colony holds per-colony world state: terrain, nodes, anchors,
// and the structure/marker occupancy the planner reads.
package colony

import (
	"fmt"

	"github.com/talgya/colonyplan/internal/grid"
)

// NodeKind classifies the fixed points infrastructure is sited around.
type NodeKind uint8

const (
	NodeResource NodeKind = iota // Harvestable resource deposit
	NodeMineral                  // Mineral deposit
	NodeControl                  // Colony control point
)

// Node is a resource, mineral, or control point on the grid.
type Node struct {
	ID   string     `json:"id"`
	Kind NodeKind   `json:"kind"`
	Pos  grid.Coord `json:"pos"`
}

// Anchor is a fixed reference point (spawn-equivalent) used to orient
// pathfinding and scoring.
type Anchor struct {
	ID  string     `json:"id"`
	Pos grid.Coord `json:"pos"`
}

// StructureType enumerates buildable structures.
type StructureType uint8

const (
	StructureRoad StructureType = iota
	StructureExtractor
	StructureStorage
	StructureConduit
	StructureDepot
	StructureTower
	StructureExtension
	StructureOverlay // Defensive overlay on top of another structure
)

// StructureName returns a stable lowercase name for a structure type.
func StructureName(s StructureType) string {
	switch s {
	case StructureRoad:
		return "road"
	case StructureExtractor:
		return "extractor"
	case StructureStorage:
		return "storage"
	case StructureConduit:
		return "conduit"
	case StructureDepot:
		return "depot"
	case StructureTower:
		return "tower"
	case StructureExtension:
		return "extension"
	case StructureOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("structure(%d)", s)
	}
}

// Blocking reports whether the structure type occupies its tile for
// movement and placement. Roads and overlays share tiles; everything
// else claims its tile exclusively.
func (s StructureType) Blocking() bool {
	return s != StructureRoad && s != StructureOverlay
}

// Occupant describes one structure or pending construction marker on a
// tile, as reported by the occupancy oracle.
type Occupant struct {
	Type    StructureType `json:"type"`
	Pending bool          `json:"pending"` // true for construction markers
}
