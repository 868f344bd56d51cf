package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bvf-cli/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "bvf.sqlite"

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when CLI and TUI overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS frameworks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			framework_id TEXT NOT NULL,
			category TEXT NOT NULL,
			seq INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_framework ON items(framework_id, category, seq);`,
		`CREATE TABLE IF NOT EXISTS placements (
			framework_id TEXT NOT NULL,
			slot_key TEXT NOT NULL,
			item_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(framework_id, slot_key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_item ON placements(framework_id, item_id);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts_unixms INTEGER NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, ts_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s Store) loadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	out := &DB{Version: 1}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if v := readMeta("version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.Version = n
		}
	}
	out.ActiveFrameworkID = readMeta("active_framework_id")

	if xs, err := readJSONRows[model.Framework](ctx, db, `SELECT json FROM frameworks ORDER BY updated_at_unixms, id`); err == nil {
		out.Frameworks = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Item](ctx, db, `SELECT json FROM items ORDER BY seq`); err == nil {
		out.Items = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Placement](ctx, db, `SELECT json FROM placements`); err == nil {
		out.Placements = xs
	} else {
		return nil, err
	}

	if out.Frameworks == nil {
		out.Frameworks = []model.Framework{}
	}
	if out.Items == nil {
		out.Items = []model.Item{}
	}
	if out.Placements == nil {
		out.Placements = []model.Placement{}
	}
	return out, nil
}

func (s Store) saveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", fmt.Sprintf("%d", st.Version)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "active_framework_id", strings.TrimSpace(st.ActiveFrameworkID)); err != nil {
		return err
	}

	// Replace-all strategy: the state is small (tens of frameworks, hundreds
	// of items) and whole-save keeps the cascade invariants trivially atomic.
	for _, t := range []string{"frameworks", "items", "placements"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	for i, f := range st.Frameworks {
		raw, _ := json.Marshal(f)
		// Preserve collection order across reloads: updated_at carries the
		// slice index so ORDER BY reproduces it ("first remaining" promotion
		// depends on stable order).
		if _, err := tx.ExecContext(ctx, `INSERT INTO frameworks(id, name, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			f.ID, f.Name, string(raw), nowMs+int64(i)); err != nil {
			return err
		}
	}
	for i, it := range st.Items {
		raw, _ := json.Marshal(it)
		if _, err := tx.ExecContext(ctx, `INSERT INTO items(id, framework_id, category, seq, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			it.ID, it.FrameworkID, string(it.Category), i, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, p := range st.Placements {
		raw, _ := json.Marshal(p)
		if _, err := tx.ExecContext(ctx, `INSERT INTO placements(framework_id, slot_key, item_id, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			p.FrameworkID, p.SlotKey, p.ItemID, string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
