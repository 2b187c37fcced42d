// Package path implements budgeted least-cost pathfinding over a colony
// grid. The search is A* on 4-neighbor moves with a caller-supplied
// per-tile cost function and a hard operation budget: when the budget
// runs out before the goal is reached, the result is marked incomplete
// rather than returned as an error.
package path

import (
	"container/heap"

	"github.com/talgya/colonyplan/internal/grid"
)

// CostBlocked marks a tile as impassable when returned by a CostFunc.
const CostBlocked = -1

// DefaultBudget is the operation budget used when a request leaves it zero.
const DefaultBudget = 2000

// CostFunc returns the cost of entering a tile, or CostBlocked.
type CostFunc func(grid.Coord) int

// Request describes one pathfinding call.
type Request struct {
	Start grid.Coord
	Goal  grid.Coord
	// Range makes any tile within this Chebyshev distance of Goal count
	// as reaching it. Zero means the goal tile itself.
	Range  int
	Cost   CostFunc
	Budget int // Max node expansions; zero or negative uses DefaultBudget
}

// Result holds the outcome of a pathfinding call. Path runs from Start
// to the final tile inclusive. When Incomplete is true the budget ran
// out and Path leads to the closest tile explored instead of the goal.
type Result struct {
	Path       []grid.Coord
	Incomplete bool
	Ops        int
}

type node struct {
	pos grid.Coord
	f   int // g + heuristic
	g   int
	seq int // insertion order, breaks ties deterministically
}

type openHeap []*node

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g > h[j].g // deeper nodes first, steers toward the goal
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *openHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// Find runs one budgeted search.
func Find(req Request) Result {
	budget := req.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	reached := func(c grid.Coord) bool {
		return grid.Chebyshev(c, req.Goal) <= req.Range
	}
	if reached(req.Start) {
		return Result{Path: []grid.Coord{req.Start}}
	}

	nodes := map[grid.Coord]*node{}
	parent := map[grid.Coord]grid.Coord{}
	closed := map[grid.Coord]bool{}

	seq := 0
	start := &node{pos: req.Start, f: grid.Manhattan(req.Start, req.Goal)}
	nodes[req.Start] = start
	open := openHeap{start}
	heap.Init(&open)

	// Track the tile that got closest to the goal for incomplete results.
	best := req.Start
	bestH := grid.Manhattan(req.Start, req.Goal)

	ops := 0
	for open.Len() > 0 {
		if ops >= budget {
			return Result{Path: rebuild(parent, req.Start, best), Incomplete: true, Ops: ops}
		}
		ops++

		cur := heap.Pop(&open).(*node)
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true

		if h := grid.Manhattan(cur.pos, req.Goal); h < bestH {
			bestH = h
			best = cur.pos
		}

		if reached(cur.pos) {
			return Result{Path: rebuild(parent, req.Start, cur.pos), Ops: ops}
		}

		for _, next := range cur.pos.Neighbors4() {
			if closed[next] {
				continue
			}
			stepCost := req.Cost(next)
			if stepCost == CostBlocked {
				continue
			}
			g := cur.g + stepCost
			existing, ok := nodes[next]
			if ok && existing.g <= g {
				continue
			}
			seq++
			n := &node{
				pos: next,
				g:   g,
				f:   g + grid.Manhattan(next, req.Goal),
				seq: seq,
			}
			nodes[next] = n
			parent[next] = cur.pos
			heap.Push(&open, n)
		}
	}

	// Exhausted the frontier without reaching the goal: unreachable.
	return Result{Path: rebuild(parent, req.Start, best), Incomplete: true, Ops: ops}
}

func rebuild(parent map[grid.Coord]grid.Coord, start, end grid.Coord) []grid.Coord {
	rev := []grid.Coord{end}
	for cur := end; cur != start; {
		prev, ok := parent[cur]
		if !ok {
			break
		}
		rev = append(rev, prev)
		cur = prev
	}
	out := make([]grid.Coord, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}
