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

package block

import "sync/atomic"

// Progress is reported to a stream's progress callback as blocks flow
// through it.
type Progress struct {
	Rows  int64
	Bytes int64
}

// ProgressFunc is called after every successfully read block.
type ProgressFunc func(Progress)

// Stream is a pull-based input in the block pipeline: Read returns
// successive Blocks, terminated by an empty Block (spec §4.B). A Stream
// is never re-entered concurrently -- readImpl calls are serialized by
// the caller.
type Stream interface {
	// ReadPrefix performs one-shot setup before the first Read.
	ReadPrefix() error
	// Read returns the next Block, or an empty Block to signal
	// end-of-stream.
	Read() (*Block, error)
	// ReadSuffix performs one-shot teardown after the last Read.
	ReadSuffix() error
	// Cancel requests the stream (and, transitively, its children) stop
	// producing blocks. It is idempotent and safe to call concurrently
	// with Read.
	Cancel()
	// Cancelled reports whether Cancel has been called.
	Cancelled() bool
	// SetProgressCallback installs fn to be invoked after each Read.
	SetProgressCallback(fn ProgressFunc)
}

// Base is embedded by concrete Stream implementations to provide the
// cancellation and progress-callback machinery uniformly, the way the
// teacher's streams share a common cancellation primitive rather than
// reimplementing a compare-and-set flag in every leaf stream.
type Base struct {
	cancelled atomic.Bool
	progress  atomic.Pointer[ProgressFunc]
}

// Cancel idempotently marks the stream cancelled with an atomic store.
func (b *Base) Cancel() { b.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called.
func (b *Base) Cancelled() bool { return b.cancelled.Load() }

// SetProgressCallback installs fn.
func (b *Base) SetProgressCallback(fn ProgressFunc) {
	b.progress.Store(&fn)
}

// Report invokes the installed progress callback, if any, with p.
func (b *Base) Report(p Progress) {
	if f := b.progress.Load(); f != nil {
		(*f)(p)
	}
}

// ReadPrefix/ReadSuffix default to no-ops; embedding types override them
// only when they need one-shot setup/teardown.
func (b *Base) ReadPrefix() error { return nil }
func (b *Base) ReadSuffix() error { return nil }
