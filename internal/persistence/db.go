// Package persistence provides SQLite-based storage for plan stores.
// Stores are written at cycle boundaries and loaded once at startup;
// the planner never touches the database mid-cycle.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/colonyplan/internal/plan"
)

// DB wraps a SQLite connection for plan store persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plan_entries (
		colony_id TEXT NOT NULL,
		key TEXT NOT NULL,
		coords_json TEXT NOT NULL,
		created_tick INTEGER NOT NULL,
		PRIMARY KEY (colony_id, key)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plan_entries_colony ON plan_entries(colony_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SavePlans writes one colony's plan store (full replace).
func (db *DB) SavePlans(colonyID string, store *plan.Store) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM plan_entries WHERE colony_id = ?", colonyID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO plan_entries
		(colony_id, key, coords_json, created_tick) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, entry := range store.Encode() {
		coordsJSON, err := json.Marshal(entry.Coords)
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", key, err)
		}
		if _, err := stmt.Exec(colonyID, key, string(coordsJSON), entry.CreatedAt); err != nil {
			return fmt.Errorf("insert entry %s/%s: %w", colonyID, key, err)
		}
	}

	return tx.Commit()
}

type planRow struct {
	ColonyID    string `db:"colony_id"`
	Key         string `db:"key"`
	CoordsJSON  string `db:"coords_json"`
	CreatedTick uint64 `db:"created_tick"`
}

func decodeRows(rows []planRow) (*plan.Store, error) {
	encoded := make(map[string]plan.EntryJSON, len(rows))
	for _, r := range rows {
		var e plan.EntryJSON
		if err := json.Unmarshal([]byte(r.CoordsJSON), &e.Coords); err != nil {
			return nil, fmt.Errorf("entry %s/%s: %w", r.ColonyID, r.Key, err)
		}
		e.CreatedAt = r.CreatedTick
		encoded[r.Key] = e
	}
	return plan.Decode(encoded)
}

// LoadPlans reads one colony's plan store. A colony with no rows gets an
// empty store, not an error.
func (db *DB) LoadPlans(colonyID string) (*plan.Store, error) {
	var rows []planRow
	err := db.conn.Select(&rows,
		"SELECT colony_id, key, coords_json, created_tick FROM plan_entries WHERE colony_id = ?",
		colonyID)
	if err != nil {
		return nil, fmt.Errorf("load plans %s: %w", colonyID, err)
	}
	return decodeRows(rows)
}

// LoadAllPlans reads every persisted plan store, keyed by colony id.
func (db *DB) LoadAllPlans() (map[string]*plan.Store, error) {
	var rows []planRow
	err := db.conn.Select(&rows,
		"SELECT colony_id, key, coords_json, created_tick FROM plan_entries")
	if err != nil {
		return nil, fmt.Errorf("load all plans: %w", err)
	}

	byColony := make(map[string][]planRow)
	for _, r := range rows {
		byColony[r.ColonyID] = append(byColony[r.ColonyID], r)
	}

	out := make(map[string]*plan.Store, len(byColony))
	for id, colonyRows := range byColony {
		store, err := decodeRows(colonyRows)
		if err != nil {
			return nil, err
		}
		out[id] = store
	}
	return out, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState writes every colony's plan store and the tick marker.
func (db *DB) SaveWorldState(stores map[string]*plan.Store, tick uint64) error {
	ids := make([]string, 0, len(stores))
	for id := range stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := db.SavePlans(id, stores[id]); err != nil {
			return fmt.Errorf("save plans %s: %w", id, err)
		}
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", tick)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved", "colonies", len(ids), "tick", tick)
	return nil
}
