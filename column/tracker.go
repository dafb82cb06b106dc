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

package column

import "sync/atomic"

// Tracker accounts for memory allocated by PODArrays and aggregate state
// arenas belonging to a single query or background job. It is a plain
// struct, not a process-wide singleton: callers thread an explicit
// *Tracker down through readers/columns/aggregators instead of reaching
// for global state.
type Tracker struct {
	used  atomic.Int64
	limit int64 // 0 means unbounded
}

// NewTracker creates a tracker with an optional byte limit (0 = unbounded).
func NewTracker(limit int64) *Tracker {
	return &Tracker{limit: limit}
}

// Alloc charges n bytes against the tracker. It never fails -- callers that
// need a hard memory limit should call Used()/Exceeded() after the fact,
// matching the spec's resource-exhaustion errors being raised by the
// stream/limit layer rather than deep inside column code.
func (t *Tracker) Alloc(n int64) {
	if t == nil {
		return
	}
	t.used.Add(n)
}

// Free releases n bytes previously charged via Alloc.
func (t *Tracker) Free(n int64) {
	if t == nil {
		return
	}
	t.used.Add(-n)
}

// Used returns the currently charged byte count.
func (t *Tracker) Used() int64 {
	if t == nil {
		return 0
	}
	return t.used.Load()
}

// Exceeded reports whether the tracker has a limit and has gone over it.
func (t *Tracker) Exceeded() bool {
	if t == nil || t.limit <= 0 {
		return false
	}
	return t.used.Load() > t.limit
}
