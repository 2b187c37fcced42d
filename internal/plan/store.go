package plan

import (
	"sort"

	"github.com/talgya/colonyplan/internal/grid"
)

// Entry is the Plan Store's record for one facility key: the claimed
// coordinates (a path for road-like keys, at most one coordinate for
// site keys) and the tick the entry was created.
type Entry struct {
	Coords    []grid.Coord `json:"coords"`
	CreatedAt uint64       `json:"created_at"`
}

// clone returns a deep copy of the entry.
func (e *Entry) clone() *Entry {
	coords := make([]grid.Coord, len(e.Coords))
	copy(coords, e.Coords)
	return &Entry{Coords: coords, CreatedAt: e.CreatedAt}
}

// Store is one colony's plan: facility key → entry. It is mutated by a
// single logical writer per tick and holds the subsystem's only
// persistent state.
type Store struct {
	entries map[Key]*Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]*Entry)}
}

// Get returns a copy-safe view of the entry for a key. Mutating the
// result never touches the store; writes go through Upsert and Touch.
func (s *Store) Get(k Key) (*Entry, bool) {
	e, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Has reports whether the key exists.
func (s *Store) Has(k Key) bool {
	_, ok := s.entries[k]
	return ok
}

// Upsert sets the coordinates for a key. A new key records tick as its
// creation time; an existing key keeps its original creation time.
func (s *Store) Upsert(k Key, coords []grid.Coord, tick uint64) {
	cp := make([]grid.Coord, len(coords))
	copy(cp, coords)
	if e, ok := s.entries[k]; ok {
		e.Coords = cp
		return
	}
	s.entries[k] = &Entry{Coords: cp, CreatedAt: tick}
}

// Touch refreshes the creation tick of an existing entry.
func (s *Store) Touch(k Key, tick uint64) {
	if e, ok := s.entries[k]; ok {
		e.CreatedAt = tick
	}
}

// Delete removes the entry for a key.
func (s *Store) Delete(k Key) {
	delete(s.entries, k)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Keys returns all keys sorted by their storage form.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// ByCategory returns the keys of one category, sorted by storage form.
func (s *Store) ByCategory(c Category) []Key {
	var keys []Key
	for k := range s.entries {
		if k.Category == c {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// NewestCreatedAt returns the largest creation tick across all entries,
// or zero for an empty store. Maintenance uses this to decide whether a
// colony's whole store is stale.
func (s *Store) NewestCreatedAt() uint64 {
	var newest uint64
	for _, e := range s.entries {
		if e.CreatedAt > newest {
			newest = e.CreatedAt
		}
	}
	return newest
}

// ClaimedNonRoad reports whether any non-road facility entry claims the
// coordinate. Selectors consult this to keep the exclusivity invariant.
func (s *Store) ClaimedNonRoad(c grid.Coord) bool {
	for k, e := range s.entries {
		if k.RoadLike() {
			continue
		}
		for _, cc := range e.Coords {
			if cc == c {
				return true
			}
		}
	}
	return false
}

// ClaimedRoad reports whether any road or connector entry claims the
// coordinate.
func (s *Store) ClaimedRoad(c grid.Coord) bool {
	for k, e := range s.entries {
		if !k.RoadLike() {
			continue
		}
		for _, cc := range e.Coords {
			if cc == c {
				return true
			}
		}
	}
	return false
}

// RoadCoords collects every coordinate claimed by road and connector
// entries. The cluster connector builds its adjacency graph from this.
func (s *Store) RoadCoords() map[grid.Coord]bool {
	out := make(map[grid.Coord]bool)
	for k, e := range s.entries {
		if !k.RoadLike() {
			continue
		}
		for _, c := range e.Coords {
			out[c] = true
		}
	}
	return out
}

// Clone deep-copies the store.
func (s *Store) Clone() *Store {
	out := NewStore()
	for k, e := range s.entries {
		out.entries[k] = e.clone()
	}
	return out
}
