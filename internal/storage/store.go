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
	"fmt"
	"strings"
	"time"

	"goscreenwriter/internal/config"
)

// DefaultSlot is the slot drafts are saved under when none is given.
const DefaultSlot = config.DefaultSlot

// ErrClosed is returned by stores and autosavers used after Close.
var ErrClosed = errors.New("storage: closed")

// Draft is one saved version of the editor contents.
type Draft struct {
	Slot  string    `json:"slot"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	TS    time.Time `json:"ts"`
}

// IsZero reports whether d is the empty draft returned when nothing was saved yet.
func (d Draft) IsZero() bool { return d.TS.IsZero() && d.Title == "" && d.Body == "" }

// Store saves and loads drafts for a single slot.
type Store interface {
	// SaveDraft appends d to the slot history. A zero TS is replaced by the current time.
	SaveDraft(ctx context.Context, d Draft) error
	// LoadDraft returns the latest draft of the slot, or a zero Draft when there is none.
	LoadDraft(ctx context.Context) (Draft, error)
	// ListDrafts returns up to limit drafts, newest first.
	ListDrafts(ctx context.Context, limit int) ([]Draft, error)
	// PruneDrafts keeps the newest keepLast drafts and reports how many were deleted.
	PruneDrafts(ctx context.Context, keepLast int) (int64, error)
	Slot() string
	Close() error
}

// Open picks the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.AppConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "sqlite":
		return OpenSQLite(cfg.General.DataDir, cfg.Storage.Slot)
	case "postgres", "postgresql", "pgx":
		return OpenPostgres(ctx, cfg.Storage.DSN, cfg.Storage.Slot)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}
}

func normalizeSlot(slot string) string {
	if s := strings.TrimSpace(slot); s != "" {
		return s
	}
	return DefaultSlot
}

func stamp(d Draft, slot string) Draft {
	d.Slot = slot
	if d.TS.IsZero() {
		d.TS = time.Now()
	}
	d.TS = d.TS.UTC()
	return d
}
