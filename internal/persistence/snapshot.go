// Snapshot export/import: a zstd-compressed JSON dump of every plan
// store, for offline inspection and transfer between hosts.
package persistence

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/colonyplan/internal/plan"
)

// Snapshot is the on-disk snapshot payload.
type Snapshot struct {
	Version int                                  `json:"version"`
	Tick    uint64                               `json:"tick"`
	Stores  map[string]map[string]plan.EntryJSON `json:"stores"`
}

// SnapshotVersion is bumped on incompatible payload changes.
const SnapshotVersion = 1

// WriteSnapshot compresses and writes a snapshot of the given stores.
func WriteSnapshot(w io.Writer, stores map[string]map[string]plan.EntryJSON, tick uint64) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot writer: %w", err)
	}

	snap := Snapshot{Version: SnapshotVersion, Tick: tick, Stores: stores}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

// ReadSnapshot decompresses and decodes a snapshot, returning the
// rebuilt stores and the tick they were captured at.
func ReadSnapshot(r io.Reader) (map[string]*plan.Store, uint64, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot reader: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, 0, fmt.Errorf("snapshot version %d unsupported", snap.Version)
	}

	stores := make(map[string]*plan.Store, len(snap.Stores))
	for id, encoded := range snap.Stores {
		store, err := plan.Decode(encoded)
		if err != nil {
			return nil, 0, fmt.Errorf("snapshot colony %s: %w", id, err)
		}
		stores[id] = store
	}
	return stores, snap.Tick, nil
}

// ExportSnapshotFile writes a snapshot to a file path.
func ExportSnapshotFile(path string, stores map[string]map[string]plan.EntryJSON, tick uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := WriteSnapshot(f, stores, tick); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportSnapshotFile reads a snapshot from a file path.
func ImportSnapshotFile(path string) (map[string]*plan.Store, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
