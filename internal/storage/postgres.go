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
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	applog "goscreenwriter/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps drafts in a PostgreSQL database shared between machines.
type PostgresStore struct {
	db     *sql.DB
	slot   string
	closed atomic.Bool
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects through the pgx stdlib driver and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn, slot string) (*PostgresStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "postgres_open")
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(pctx, db); err != nil {
		_ = db.Close()
		l.Error("migrate failed", slog.Any("err", err))
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s := &PostgresStore{db: db, slot: normalizeSlot(slot)}
	l.Info("draft store ready", slog.String("slot", s.slot))
	return s, nil
}

// applyMigrations runs every embedded NNNN_name.sql file that is not yet recorded in schema_migrations.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range files {
		v, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if applied[v] {
			continue
		}
		body, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES ($1, $2)`, v, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
	}
	return nil
}

// migrationVersion parses the numeric prefix of names like 0002_drafts_slot_ts.sql.
func migrationVersion(name string) (int64, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %q: missing version prefix", name)
	}
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("migration %q: %w", name, err)
	}
	return v, nil
}

func (s *PostgresStore) Slot() string { return s.slot }

func (s *PostgresStore) SaveDraft(ctx context.Context, d Draft) error {
	if s.closed.Load() {
		return ErrClosed
	}
	d = stamp(d, s.slot)
	_, err := s.db.ExecContext(ctx, `INSERT INTO drafts(slot, title, body, ts) VALUES ($1, $2, $3, $4)`, d.Slot, d.Title, d.Body, d.TS)
	return err
}

func (s *PostgresStore) LoadDraft(ctx context.Context) (Draft, error) {
	if s.closed.Load() {
		return Draft{}, ErrClosed
	}
	d := Draft{Slot: s.slot}
	err := s.db.QueryRowContext(ctx, `SELECT title, body, ts FROM drafts WHERE slot = $1 ORDER BY ts DESC, id DESC LIMIT 1`, s.slot).
		Scan(&d.Title, &d.Body, &d.TS)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, nil
	}
	if err != nil {
		return Draft{}, err
	}
	d.TS = d.TS.UTC()
	return d, nil
}

func (s *PostgresStore) ListDrafts(ctx context.Context, limit int) ([]Draft, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT title, body, ts FROM drafts WHERE slot = $1 ORDER BY ts DESC, id DESC LIMIT $2`, s.slot, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []Draft{}
	for rows.Next() {
		d := Draft{Slot: s.slot}
		if err := rows.Scan(&d.Title, &d.Body, &d.TS); err != nil {
			return nil, err
		}
		d.TS = d.TS.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PruneDrafts(ctx context.Context, keepLast int) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE slot = $1 AND id NOT IN (
		SELECT id FROM drafts WHERE slot = $1 ORDER BY ts DESC, id DESC LIMIT $2
	)`, s.slot, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
