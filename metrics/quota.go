// Copyright (C) 2026 Columnstore, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"sync"

	"github.com/columnstore/columnstore/errs"
)

// Usage is one user's running totals within the current quota window
// (spec §4.K: "{queries, errors, result_rows, result_bytes, read_rows,
// read_bytes, execution_time}").
type Usage struct {
	Queries       int64
	Errors        int64
	ResultRows    int64
	ResultBytes   int64
	ReadRows      int64
	ReadBytes     int64
	ExecutionNano int64
}

// Limits are the per-window thresholds; a zero field means unlimited.
type Limits struct {
	Queries       int64
	Errors        int64
	ResultRows    int64
	ResultBytes   int64
	ReadRows      int64
	ReadBytes     int64
	ExecutionNano int64
}

func (u Usage) exceeds(l Limits) bool {
	return (l.Queries > 0 && u.Queries > l.Queries) ||
		(l.Errors > 0 && u.Errors > l.Errors) ||
		(l.ResultRows > 0 && u.ResultRows > l.ResultRows) ||
		(l.ResultBytes > 0 && u.ResultBytes > l.ResultBytes) ||
		(l.ReadRows > 0 && u.ReadRows > l.ReadRows) ||
		(l.ReadBytes > 0 && u.ReadBytes > l.ReadBytes) ||
		(l.ExecutionNano > 0 && u.ExecutionNano > l.ExecutionNano)
}

// Window tracks one user's Usage against Limits for one quota interval.
type Window struct {
	mu     sync.Mutex
	limits Limits
	usage  Usage
}

// NewWindow creates a fresh, empty Window for the given limits.
func NewWindow(limits Limits) *Window {
	return &Window{limits: limits}
}

// CheckBlock folds one block's contribution into the window's running
// usage and returns errs.ErrQuotaExpired the moment any limit is
// crossed (spec §4.K: "checks at block boundaries; exceeding a
// threshold raises QUOTA_EXPIRED").
func (w *Window) CheckBlock(rows, bytes int64, isRead bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if isRead {
		w.usage.ReadRows += rows
		w.usage.ReadBytes += bytes
	} else {
		w.usage.ResultRows += rows
		w.usage.ResultBytes += bytes
	}
	if w.usage.exceeds(w.limits) {
		return errs.ErrQuotaExpired
	}
	return nil
}

// RecordQuery accounts for the start of one query, failing if the
// per-window query count limit is already exhausted.
func (w *Window) RecordQuery() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.usage.Queries++
	if w.usage.exceeds(w.limits) {
		return errs.ErrQuotaExpired
	}
	return nil
}

// RecordError accounts for one failed query.
func (w *Window) RecordError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.usage.Errors++
	if w.usage.exceeds(w.limits) {
		return errs.ErrQuotaExpired
	}
	return nil
}

// Snapshot returns a copy of the window's current usage.
func (w *Window) Snapshot() Usage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.usage
}

// Reset zeroes the window's usage, called when a new quota interval
// begins.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.usage = Usage{}
}
