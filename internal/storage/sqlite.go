/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DataDirName holds the embedded database under the data directory.
	DataDirName = ".gsw"
	DBFileName  = "drafts.sqlite"

	// schemaVersion tracks the local SQLite schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2

	// tsLayout is fixed width so timestamps sort lexically.
	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// language=SQL
// dialect=SQLite
const insertDraftSQL = `INSERT INTO drafts(slot, title, body, ts) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestDraftSQL = `SELECT title, body, ts FROM drafts WHERE slot = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listDraftsSQL = `SELECT title, body, ts FROM drafts WHERE slot = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldDraftsSQL = `DELETE FROM drafts WHERE slot = ? AND id NOT IN (
	SELECT id FROM drafts WHERE slot = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// DBPath returns the full path to the embedded drafts database.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DataDirName, DBFileName)
}

// SQLiteStore keeps drafts in an embedded SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	slot   string
	path   string
	closed atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite ensures that <dataDir>/.gsw/drafts.sqlite exists, opens it with WAL enabled,
// and brings the meta/version tables and schema up to date.
func OpenSQLite(dataDir, slot string) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(
		slog.String("data_dir", dataDir),
	)
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, DataDirName), 0o755); err != nil {
		l.Error("create .gsw dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .gsw dir: %w", err)
	}

	path := DBPath(dataDir)
	// Forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureDraftSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure draft schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	s := &SQLiteStore{db: db, slot: normalizeSlot(slot), path: path}
	l.Info("draft store ready", slog.String("path", path), slog.String("slot", s.slot))
	return s, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh databases start at schema 1 and migrate forward.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema for migrations.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureDraftSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			id    INTEGER PRIMARY KEY,
			slot  TEXT    NOT NULL,
			title TEXT    NOT NULL,
			body  TEXT    NOT NULL,
			ts    TEXT    NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure draft schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_drafts_slot_ts ON drafts(slot, ts);`,
				`INSERT INTO meta(key, value) VALUES('default_slot', '` + DefaultSlot + `')
					ON CONFLICT(key) DO NOTHING;`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// SchemaVersion reports the schema recorded in the version table.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// Path is the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Slot() string { return s.slot }

// SaveDraft persists a draft with its timestamp.
func (s *SQLiteStore) SaveDraft(ctx context.Context, d Draft) error {
	if s.closed.Load() {
		return ErrClosed
	}
	d = stamp(d, s.slot)
	_, err := s.db.ExecContext(ctx, insertDraftSQL, d.Slot, d.Title, d.Body, d.TS.Format(tsLayout))
	return err
}

// LoadDraft returns the latest draft, or a zero Draft if none was saved.
func (s *SQLiteStore) LoadDraft(ctx context.Context) (Draft, error) {
	if s.closed.Load() {
		return Draft{}, ErrClosed
	}
	var tsStr string
	d := Draft{Slot: s.slot}
	err := s.db.QueryRowContext(ctx, selectLatestDraftSQL, s.slot).Scan(&d.Title, &d.Body, &tsStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, nil
	}
	if err != nil {
		return Draft{}, err
	}
	d.TS, _ = time.Parse(tsLayout, tsStr)
	return d, nil
}

// ListDrafts returns up to limit most recent drafts.
func (s *SQLiteStore) ListDrafts(ctx context.Context, limit int) ([]Draft, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listDraftsSQL, s.slot, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []Draft{}
	for rows.Next() {
		var tsStr string
		d := Draft{Slot: s.slot}
		if err := rows.Scan(&d.Title, &d.Body, &tsStr); err != nil {
			return nil, err
		}
		d.TS, _ = time.Parse(tsLayout, tsStr)
		out = append(out, d)
	}
	return out, rows.Err()
}

// PruneDrafts keeps at most keepLast drafts and deletes older ones.
func (s *SQLiteStore) PruneDrafts(ctx context.Context, keepLast int) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, pruneOldDraftsSQL, s.slot, s.slot, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
