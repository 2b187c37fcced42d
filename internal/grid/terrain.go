package grid

import "fmt"

// Tile classifies a terrain tile.
type Tile uint8

const (
	TilePlain Tile = iota // Open ground, cheap to cross
	TileRough             // Passable but slow (swamp, scree)
	TileWall              // Impassable
)

// TileName returns a human-readable tile name.
func TileName(t Tile) string {
	switch t {
	case TilePlain:
		return "plain"
	case TileRough:
		return "rough"
	case TileWall:
		return "wall"
	default:
		return fmt.Sprintf("tile(%d)", t)
	}
}

// Terrain is one colony's fixed-size tile raster.
type Terrain struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	tiles []Tile
}

// NewTerrain creates an all-plain terrain of the given size.
func NewTerrain(w, h int) *Terrain {
	return &Terrain{Width: w, Height: h, tiles: make([]Tile, w*h)}
}

// InBounds reports whether the coordinate lies on this terrain.
func (t *Terrain) InBounds(c Coord) bool {
	return c.Within(t.Width, t.Height)
}

// At returns the tile at c. Out-of-bounds coordinates read as wall.
func (t *Terrain) At(c Coord) Tile {
	if !t.InBounds(c) {
		return TileWall
	}
	return t.tiles[c.Y*t.Width+c.X]
}

// Set writes the tile at c. Out-of-bounds writes are ignored.
func (t *Terrain) Set(c Coord, tile Tile) {
	if !t.InBounds(c) {
		return
	}
	t.tiles[c.Y*t.Width+c.X] = tile
}

// Walkable reports whether c is in bounds and not a wall.
func (t *Terrain) Walkable(c Coord) bool {
	return t.At(c) != TileWall
}

// String returns a summary of the terrain.
func (t *Terrain) String() string {
	return fmt.Sprintf("Terrain(%dx%d)", t.Width, t.Height)
}

// ParseTerrain builds a terrain from string rows, one byte per tile:
// '.' plain, '~' rough, '#' wall. Rows must all be the same length.
// Intended for tests and fixtures.
func ParseTerrain(rows []string) (*Terrain, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse terrain: no rows")
	}
	w := len(rows[0])
	t := NewTerrain(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("parse terrain: row %d has width %d, want %d", y, len(row), w)
		}
		for x := 0; x < w; x++ {
			c := Coord{X: x, Y: y}
			switch row[x] {
			case '.':
				t.Set(c, TilePlain)
			case '~':
				t.Set(c, TileRough)
			case '#':
				t.Set(c, TileWall)
			default:
				return nil, fmt.Errorf("parse terrain: unknown tile %q at %s", row[x], c)
			}
		}
	}
	return t, nil
}

// MustParseTerrain is ParseTerrain that panics on malformed input.
func MustParseTerrain(rows []string) *Terrain {
	t, err := ParseTerrain(rows)
	if err != nil {
		panic(err)
	}
	return t
}
