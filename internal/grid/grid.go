// Package grid provides the square tile grid: coordinates, distances,
// ring iteration, and terrain.
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a position on a colony's tile grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinate offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Within reports whether the coordinate lies inside [0,w)×[0,h).
func (c Coord) Within(w, h int) bool {
	return c.X >= 0 && c.X < w && c.Y >= 0 && c.Y < h
}

// String returns the coordinate as "x,y".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// ParseCoord parses the "x,y" form produced by String.
func ParseCoord(s string) (Coord, error) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return Coord{}, fmt.Errorf("coord %q: missing comma", s)
	}
	x, err := strconv.Atoi(s[:i])
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	y, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}

// Manhattan returns the 4-neighbor walking distance between a and b.
func Manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns the 8-neighbor (king move) distance between a and b.
func Chebyshev(a, b Coord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Neighbors4 returns the four orthogonal neighbors in N, E, S, W order.
func (c Coord) Neighbors4() [4]Coord {
	return [4]Coord{
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
	}
}

// Ring returns the perimeter of the square ring at Chebyshev radius r
// around center, in a fixed scan order (top row left→right, then each
// middle row's left and right edge, then bottom row left→right).
// Radius 0 yields just the center. Coordinates are not bounds-checked.
func Ring(center Coord, r int) []Coord {
	if r <= 0 {
		return []Coord{center}
	}
	out := make([]Coord, 0, 8*r)
	for dx := -r; dx <= r; dx++ {
		out = append(out, center.Add(dx, -r))
	}
	for dy := -r + 1; dy <= r-1; dy++ {
		out = append(out, center.Add(-r, dy), center.Add(r, dy))
	}
	for dx := -r; dx <= r; dx++ {
		out = append(out, center.Add(dx, r))
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
