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
	"errors"
	"os"
	"testing"
	"time"

	"goscreenwriter/internal/config"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(t.TempDir(), "")
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLite_CreatesFileAndSchema(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLite(dir, "")
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, err := os.Stat(DBPath(dir)); err != nil {
		t.Fatalf("expected db file at %s: %v", DBPath(dir), err)
	}
	if s.Slot() != DefaultSlot {
		t.Fatalf("Slot() = %q, want %q", s.Slot(), DefaultSlot)
	}
	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion error: %v", err)
	}
	if v != schemaVersion {
		t.Fatalf("schema = %d, want %d", v, schemaVersion)
	}
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := OpenSQLite(dir, "a")
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	if err := s.SaveDraft(ctx, Draft{Title: "Big Fish", Body: "INT. HOUSE - DAY"}); err != nil {
		t.Fatalf("SaveDraft error: %v", err)
	}
	_ = s.Close()

	s2, err := OpenSQLite(dir, "a")
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() { _ = s2.Close() }()
	d, err := s2.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("LoadDraft error: %v", err)
	}
	if d.Title != "Big Fish" || d.Body != "INT. HOUSE - DAY" || d.Slot != "a" {
		t.Fatalf("unexpected draft after reopen: %#v", d)
	}
}

func TestOpenSQLite_RequiresDir(t *testing.T) {
	if _, err := OpenSQLite("  ", ""); err == nil {
		t.Fatalf("expected error for blank data dir")
	}
}

func TestLoadDraft_EmptyReturnsZero(t *testing.T) {
	s := openTestStore(t)
	d, err := s.LoadDraft(context.Background())
	if err != nil {
		t.Fatalf("LoadDraft error: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("expected zero draft, got %#v", d)
	}
}

func TestDraftHistory_ListAndPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range []string{"one", "two", "three", "four"} {
		// Sub-second offsets exercise timestamp ordering.
		ts := base.Add(time.Duration(i) * 150 * time.Millisecond)
		if err := s.SaveDraft(ctx, Draft{Title: "T", Body: body, TS: ts}); err != nil {
			t.Fatalf("SaveDraft %d: %v", i, err)
		}
	}
	latest, err := s.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("LoadDraft error: %v", err)
	}
	if latest.Body != "four" {
		t.Fatalf("latest body = %q, want four", latest.Body)
	}
	if !latest.TS.Equal(base.Add(450 * time.Millisecond)) {
		t.Fatalf("latest ts = %v", latest.TS)
	}
	list, err := s.ListDrafts(ctx, 2)
	if err != nil {
		t.Fatalf("ListDrafts error: %v", err)
	}
	if len(list) != 2 || list[0].Body != "four" || list[1].Body != "three" {
		t.Fatalf("unexpected list: %#v", list)
	}
	n, err := s.PruneDrafts(ctx, 1)
	if err != nil {
		t.Fatalf("PruneDrafts error: %v", err)
	}
	if n != 3 {
		t.Fatalf("pruned %d, want 3", n)
	}
	all, _ := s.ListDrafts(ctx, 0)
	if len(all) != 1 || all[0].Body != "four" {
		t.Fatalf("after prune: %#v", all)
	}
	if n, _ := s.PruneDrafts(ctx, 0); n != 0 {
		t.Fatalf("keepLast=0 should not delete, got %d", n)
	}
}

func TestSlotsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	a, err := OpenSQLite(dir, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()
	if err := a.SaveDraft(ctx, Draft{Title: "A", Body: "a"}); err != nil {
		t.Fatal(err)
	}
	_ = a.Close()
	b, err := OpenSQLite(dir, "b")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = b.Close() }()
	d, err := b.LoadDraft(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Fatalf("slot b should be empty, got %#v", d)
	}
}

func TestClosedStore(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if err := s.SaveDraft(context.Background(), Draft{Body: "x"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("SaveDraft after close = %v, want ErrClosed", err)
	}
	if _, err := s.LoadDraft(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("LoadDraft after close = %v, want ErrClosed", err)
	}
	if _, err := s.ListDrafts(context.Background(), 5); !errors.Is(err, ErrClosed) {
		t.Fatalf("ListDrafts after close = %v, want ErrClosed", err)
	}
	if _, err := s.PruneDrafts(context.Background(), 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("PruneDrafts after close = %v, want ErrClosed", err)
	}
}

func TestOpen_PicksDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.General.DataDir = t.TempDir()
	cfg.Storage.Slot = "picked"
	st, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer func() { _ = st.Close() }()
	if _, ok := st.(*SQLiteStore); !ok || st.Slot() != "picked" {
		t.Fatalf("expected sqlite store for slot picked, got %T %q", st, st.Slot())
	}

	cfg.Storage.Driver = "mongo"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
