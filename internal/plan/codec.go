package plan

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/colonyplan/internal/grid"
)

// EntryJSON is the portable form of one entry. Stores serialize to a
// flat string-keyed map so any key/value backend can hold them.
type EntryJSON struct {
	Coords    []coordJSON `json:"coords"`
	CreatedAt uint64      `json:"created_at"`
}

type coordJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func coordFromJSON(c coordJSON) grid.Coord {
	return grid.Coord{X: c.X, Y: c.Y}
}

// Encode renders the store as a flat map keyed by Key storage strings.
func (s *Store) Encode() map[string]EntryJSON {
	out := make(map[string]EntryJSON, len(s.entries))
	for k, e := range s.entries {
		coords := make([]coordJSON, len(e.Coords))
		for i, c := range e.Coords {
			coords[i] = coordJSON{X: c.X, Y: c.Y}
		}
		out[k.String()] = EntryJSON{Coords: coords, CreatedAt: e.CreatedAt}
	}
	return out
}

// Decode rebuilds a store from its flat encoded form.
func Decode(m map[string]EntryJSON) (*Store, error) {
	s := NewStore()
	for ks, ej := range m {
		k, err := ParseKey(ks)
		if err != nil {
			return nil, fmt.Errorf("decode plan store: %w", err)
		}
		e := &Entry{CreatedAt: ej.CreatedAt}
		for _, c := range ej.Coords {
			e.Coords = append(e.Coords, coordFromJSON(c))
		}
		s.entries[k] = e
	}
	return s, nil
}

// MarshalJSON implements json.Marshaler over the flat encoded form.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Encode())
}

// UnmarshalJSON implements json.Unmarshaler over the flat encoded form.
func (s *Store) UnmarshalJSON(data []byte) error {
	var m map[string]EntryJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	decoded, err := Decode(m)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}
