// Package plan defines facility keys, plan entries, and the colony-scoped
// Plan Store that survives across ticks.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/colonyplan/internal/grid"
)

// Category is the closed set of plannable facility kinds. Dispatch is by
// switch on this value; the string form exists only for storage.
type Category uint8

const (
	CategoryExtraction Category = iota // one per resource node
	CategoryControlBuffer              // singleton
	CategoryMineral                    // one per mineral node
	CategoryRoad                       // keyed by ordered node pair
	CategoryConnector                  // keyed by bridge endpoint pair
	CategoryConduit                    // power link, see ConduitKind
	CategoryTradeDepot                 // singleton
	CategoryTower                      // bounded count per anchor
	CategoryExtension                  // bounded count per anchor
	CategoryOverlay                    // defensive overlay on a facility tile
)

// Categories lists every category in a fixed order.
var Categories = []Category{
	CategoryExtraction, CategoryControlBuffer, CategoryMineral,
	CategoryRoad, CategoryConnector, CategoryConduit,
	CategoryTradeDepot, CategoryTower, CategoryExtension, CategoryOverlay,
}

// ConduitKind distinguishes the conduit variants.
type ConduitKind uint8

const (
	ConduitNode    ConduitKind = iota // near a resource node
	ConduitControl                    // near the control point
	ConduitStorage                    // near the storage point
)

// CategoryName returns the stable lowercase name used in key strings.
func CategoryName(c Category) string {
	switch c {
	case CategoryExtraction:
		return "extract"
	case CategoryControlBuffer:
		return "buffer"
	case CategoryMineral:
		return "mineral"
	case CategoryRoad:
		return "road"
	case CategoryConnector:
		return "connector"
	case CategoryConduit:
		return "conduit"
	case CategoryTradeDepot:
		return "depot"
	case CategoryTower:
		return "tower"
	case CategoryExtension:
		return "ext"
	case CategoryOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("category(%d)", c)
	}
}

// Key identifies one plan entry. It is a tagged value: Category selects
// which payload fields are meaningful. Keys are comparable and usable as
// map keys.
type Key struct {
	Category Category

	Node               string      // extraction, mineral, conduit-node
	PairA, PairB       string      // road endpoints, PairA < PairB
	ClusterA, ClusterB grid.Coord  // connector bridge endpoints, normalized order
	Conduit            ConduitKind // conduit only
	Anchor             string      // tower, extension
	Index              int         // tower, extension
	At                 grid.Coord  // overlay
}

// RoadLike reports whether the key holds a road or connector path.
func (k Key) RoadLike() bool {
	return k.Category == CategoryRoad || k.Category == CategoryConnector
}

// Singleton reports whether the key's category is singleton-prone:
// maintenance collapses these entries to their first coordinate.
func (k Key) Singleton() bool {
	switch k.Category {
	case CategoryControlBuffer, CategoryTradeDepot, CategoryConduit:
		return true
	}
	return false
}

// ExtractionKey keys the extraction site for a resource node.
func ExtractionKey(nodeID string) Key {
	return Key{Category: CategoryExtraction, Node: nodeID}
}

// ControlBufferKey keys the colony's single control-buffer site.
func ControlBufferKey() Key { return Key{Category: CategoryControlBuffer} }

// MineralKey keys the site for a mineral node.
func MineralKey(nodeID string) Key {
	return Key{Category: CategoryMineral, Node: nodeID}
}

// RoadKey keys the road between two nodes; endpoint order is normalized.
func RoadKey(a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key{Category: CategoryRoad, PairA: a, PairB: b}
}

// ConnectorKey keys the connector bridging two road clusters by its
// endpoint tiles. Coordinates are stable across re-clustering, unlike
// component indices; the endpoint order is normalized.
func ConnectorKey(a, b grid.Coord) Key {
	if b.Y < a.Y || (b.Y == a.Y && b.X < a.X) {
		a, b = b, a
	}
	return Key{Category: CategoryConnector, ClusterA: a, ClusterB: b}
}

// ConduitNodeKey keys the conduit serving a resource node.
func ConduitNodeKey(nodeID string) Key {
	return Key{Category: CategoryConduit, Conduit: ConduitNode, Node: nodeID}
}

// ConduitControlKey keys the control-point conduit.
func ConduitControlKey() Key {
	return Key{Category: CategoryConduit, Conduit: ConduitControl}
}

// ConduitStorageKey keys the storage-point conduit.
func ConduitStorageKey() Key {
	return Key{Category: CategoryConduit, Conduit: ConduitStorage}
}

// TradeDepotKey keys the colony's single trade depot site.
func TradeDepotKey() Key { return Key{Category: CategoryTradeDepot} }

// TowerKey keys one tower slot for an anchor.
func TowerKey(anchorID string, index int) Key {
	return Key{Category: CategoryTower, Anchor: anchorID, Index: index}
}

// ExtensionKey keys one extension slot for an anchor.
func ExtensionKey(anchorID string, index int) Key {
	return Key{Category: CategoryExtension, Anchor: anchorID, Index: index}
}

// OverlayKey keys the defensive overlay for a facility at a coordinate.
func OverlayKey(at grid.Coord) Key {
	return Key{Category: CategoryOverlay, At: at}
}

// String renders the key in its storage form.
func (k Key) String() string {
	name := CategoryName(k.Category)
	switch k.Category {
	case CategoryExtraction, CategoryMineral:
		return name + "/" + k.Node
	case CategoryControlBuffer, CategoryTradeDepot:
		return name
	case CategoryRoad:
		return fmt.Sprintf("%s/%s/%s", name, k.PairA, k.PairB)
	case CategoryConnector:
		return fmt.Sprintf("%s/%s/%s", name, k.ClusterA, k.ClusterB)
	case CategoryConduit:
		switch k.Conduit {
		case ConduitControl:
			return name + "/control"
		case ConduitStorage:
			return name + "/storage"
		default:
			return name + "/node/" + k.Node
		}
	case CategoryTower, CategoryExtension:
		return fmt.Sprintf("%s/%s/%d", name, k.Anchor, k.Index)
	case CategoryOverlay:
		return name + "/" + k.At.String()
	default:
		return name
	}
}

// ParseKey parses the storage form produced by String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "/")
	bad := func() (Key, error) { return Key{}, fmt.Errorf("plan key %q: malformed", s) }

	switch parts[0] {
	case "extract":
		if len(parts) != 2 || parts[1] == "" {
			return bad()
		}
		return ExtractionKey(parts[1]), nil
	case "buffer":
		if len(parts) != 1 {
			return bad()
		}
		return ControlBufferKey(), nil
	case "mineral":
		if len(parts) != 2 || parts[1] == "" {
			return bad()
		}
		return MineralKey(parts[1]), nil
	case "road":
		if len(parts) != 3 {
			return bad()
		}
		return RoadKey(parts[1], parts[2]), nil
	case "connector":
		if len(parts) != 3 {
			return bad()
		}
		a, err := grid.ParseCoord(parts[1])
		if err != nil {
			return bad()
		}
		b, err := grid.ParseCoord(parts[2])
		if err != nil {
			return bad()
		}
		return ConnectorKey(a, b), nil
	case "conduit":
		switch {
		case len(parts) == 2 && parts[1] == "control":
			return ConduitControlKey(), nil
		case len(parts) == 2 && parts[1] == "storage":
			return ConduitStorageKey(), nil
		case len(parts) == 3 && parts[1] == "node" && parts[2] != "":
			return ConduitNodeKey(parts[2]), nil
		}
		return bad()
	case "depot":
		if len(parts) != 1 {
			return bad()
		}
		return TradeDepotKey(), nil
	case "tower", "ext":
		if len(parts) != 3 {
			return bad()
		}
		idx, err := strconv.Atoi(parts[2])
		if err != nil {
			return bad()
		}
		if parts[0] == "tower" {
			return TowerKey(parts[1], idx), nil
		}
		return ExtensionKey(parts[1], idx), nil
	case "overlay":
		if len(parts) != 2 {
			return bad()
		}
		at, err := grid.ParseCoord(parts[1])
		if err != nil {
			return bad()
		}
		return OverlayKey(at), nil
	}
	return Key{}, fmt.Errorf("plan key %q: unknown category", s)
}
