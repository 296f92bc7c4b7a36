// Package persistence stores engine snapshots and the emergent event log in
// SQLite (default) or PostgreSQL.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/talgya/hearsay/internal/engine"
)

// ErrNoSnapshot is returned when the store holds no snapshot yet.
var ErrNoSnapshot = errors.New("no saved snapshot")

// DB wraps a database connection for world persistence.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// Open connects to driver ("sqlite" or "postgres") and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var name string
	switch driver {
	case "sqlite":
		name = "sqlite"
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case "postgres":
		name = "postgres"
	default:
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}

	conn, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == "sqlite" {
		// One writer; WAL readers share the file.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the driver the store was opened with.
func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.driver == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	schema := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id ` + serial + `,
			saved_at BIGINT NOT NULL,
			tick BIGINT NOT NULL,
			sim_time DOUBLE PRECISION NOT NULL,
			npcs INTEGER NOT NULL,
			rumors INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS emergent_events (
			id ` + serial + `,
			sim_time DOUBLE PRECISION NOT NULL,
			kind TEXT NOT NULL,
			from_npc TEXT NOT NULL,
			to_npc TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS world_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emergent_time ON emergent_events(sim_time)`,
	}
	for _, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	ID      int64   `db:"id" json:"id"`
	SavedAt int64   `db:"saved_at" json:"saved_at"` // Unix seconds
	Tick    int64   `db:"tick" json:"tick"`
	SimTime float64 `db:"sim_time" json:"sim_time"`
	NPCs    int     `db:"npcs" json:"npcs"`
	Rumors  int     `db:"rumors" json:"rumors"`
}

// Time returns when the snapshot was saved.
func (s SnapshotInfo) Time() time.Time {
	return time.Unix(s.SavedAt, 0)
}

// SaveSnapshot stores a snapshot taken at tick and returns its row id.
func (db *DB) SaveSnapshot(ctx context.Context, tick uint64, snap *engine.Snapshot) (int64, error) {
	data, err := snap.Marshal()
	if err != nil {
		return 0, err
	}
	var id int64
	err = db.conn.QueryRowxContext(ctx, db.conn.Rebind(`INSERT INTO snapshots
		(saved_at, tick, sim_time, npcs, rumors, data)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		time.Now().Unix(), int64(tick), snap.Now, len(snap.NPCs), len(snap.Rumors), string(data),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot loads the most recently saved snapshot.
func (db *DB) LatestSnapshot(ctx context.Context) (*engine.Snapshot, SnapshotInfo, error) {
	var row struct {
		SnapshotInfo
		Data string `db:"data"`
	}
	err := db.conn.GetContext(ctx, &row,
		"SELECT id, saved_at, tick, sim_time, npcs, rumors, data FROM snapshots ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, SnapshotInfo{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := engine.DecodeSnapshot([]byte(row.Data))
	if err != nil {
		return nil, row.SnapshotInfo, fmt.Errorf("snapshot %d: %w", row.ID, err)
	}
	return snap, row.SnapshotInfo, nil
}

// Snapshots lists stored snapshots, newest first.
func (db *DB) Snapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	var out []SnapshotInfo
	err := db.conn.SelectContext(ctx, &out, db.conn.Rebind(
		"SELECT id, saved_at, tick, sim_time, npcs, rumors FROM snapshots ORDER BY id DESC LIMIT ?"),
		limit,
	)
	return out, err
}

// PruneSnapshots deletes all but the newest keep snapshots.
func (db *DB) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM snapshots WHERE id NOT IN
		(SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`), keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// EmergentRecord is one stored emergent social event.
type EmergentRecord struct {
	ID          int64   `db:"id" json:"id"`
	SimTime     float64 `db:"sim_time" json:"time"`
	Kind        string  `db:"kind" json:"kind"`
	From        string  `db:"from_npc" json:"from"`
	To          string  `db:"to_npc" json:"to"`
	Description string  `db:"description" json:"description"`
}

// SaveEmergent appends emergent events to the log.
func (db *DB) SaveEmergent(ctx context.Context, events []engine.EmergentEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO emergent_events
		(sim_time, kind, from_npc, to_npc, description) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.Time, string(e.Kind), e.From, e.To, e.Description); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentEmergent returns the most recent limit emergent events, newest first.
func (db *DB) RecentEmergent(ctx context.Context, limit int) ([]EmergentRecord, error) {
	var out []EmergentRecord
	err := db.conn.SelectContext(ctx, &out, db.conn.Rebind(
		"SELECT id, sim_time, kind, from_npc, to_npc, description FROM emergent_events ORDER BY id DESC LIMIT ?"),
		limit,
	)
	return out, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(
		"INSERT INTO world_meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value"),
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, db.conn.Rebind("SELECT value FROM world_meta WHERE key = ?"), key)
	return value, err
}

// SaveWorldState stores a snapshot, records the tick and keeps the newest
// keep snapshots.
func (db *DB) SaveWorldState(ctx context.Context, tick uint64, snap *engine.Snapshot, keep int) error {
	slog.Info("saving world state", "tick", tick, "npcs", len(snap.NPCs), "rumors", len(snap.Rumors))

	id, err := db.SaveSnapshot(ctx, tick, snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := db.SaveMeta(ctx, "last_tick", strconv.FormatUint(tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if _, err := db.PruneSnapshots(ctx, keep); err != nil {
		return err
	}

	slog.Info("world state saved", "snapshot", id)
	return nil
}

// LastTick returns the tick recorded by the last save, or 0.
func (db *DB) LastTick(ctx context.Context) (uint64, error) {
	v, err := db.GetMeta(ctx, "last_tick")
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}
