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
	"log/slog"
	"sync"
	"time"

	applog "goscreenwriter/internal/log"
)

// DefaultAutosaveDelay is the quiet period before a scheduled draft is written.
const DefaultAutosaveDelay = 300 * time.Millisecond

// Autosaver coalesces rapid edits into a single SaveDraft once edits pause for Delay.
// Only the most recent scheduled draft is written.
type Autosaver struct {
	store Store
	delay time.Duration
	keep  int
	log   *slog.Logger

	// saveMu is held from taking the pending draft until it is written,
	// so Flush returns only after any in-flight write has landed.
	saveMu sync.Mutex

	mu      sync.Mutex
	pending *Draft
	timer   *time.Timer
	closed  bool
	lastErr error
	saves   int
}

// NewAutosaver wraps store. A non-positive delay uses DefaultAutosaveDelay; keepLast <= 0 disables pruning.
func NewAutosaver(store Store, delay time.Duration, keepLast int) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		store: store,
		delay: delay,
		keep:  keepLast,
		log:   applog.WithComponent("autosave").With(slog.String("slot", store.Slot())),
	}
}

// Schedule replaces the pending draft and restarts the debounce timer.
func (a *Autosaver) Schedule(d Draft) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if d.TS.IsZero() {
		d.TS = time.Now()
	}
	a.pending = &d
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() { _ = a.FlushNow() })
	return nil
}

// Flush writes the pending draft now, if any. It waits for a write already in progress.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	d := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	if d == nil {
		return nil
	}
	err := a.save(ctx, *d)
	a.mu.Lock()
	a.lastErr = err
	if err == nil {
		a.saves++
	}
	a.mu.Unlock()
	return err
}

func (a *Autosaver) save(ctx context.Context, d Draft) error {
	if err := a.store.SaveDraft(ctx, d); err != nil {
		a.log.Warn("autosave failed", slog.Any("err", err))
		return err
	}
	if a.keep > 0 {
		if n, err := a.store.PruneDrafts(ctx, a.keep); err != nil {
			a.log.Warn("prune failed", slog.Any("err", err))
		} else if n > 0 {
			a.log.Debug("pruned drafts", slog.Int64("deleted", n))
		}
	}
	a.log.Debug("draft saved", slog.Int("bytes", len(d.Body)))
	return nil
}

// FlushNow is Flush bounded by a 5s timeout, shaped for crash.Recover.
func (a *Autosaver) FlushNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.Flush(ctx)
}

// Pending reports whether a draft is waiting for the timer.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Saves returns how many drafts were written and the error of the latest attempt.
func (a *Autosaver) Saves() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves, a.lastErr
}

// Close flushes the pending draft and rejects further Schedule calls. The store stays open.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}
