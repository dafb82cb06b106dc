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

import (
	"time"

	"github.com/columnstore/columnstore/errs"
)

// OverflowMode governs what happens when a Limits threshold is crossed
// (spec §4.B).
type OverflowMode int

const (
	// Throw raises TOO_MUCH_ROWS / TIMEOUT_EXCEEDED.
	Throw OverflowMode = iota
	// Break returns end-of-stream cleanly instead of erroring.
	Break
)

// Limits bounds a single query's resource consumption as it passes
// through a ProfiledStream.
type Limits struct {
	MaxRows  int64 // 0 = unbounded
	MaxBytes int64 // 0 = unbounded

	MaxExecutionTime time.Duration // 0 = unbounded

	// MinRowsPerSecond, if non-zero, is checked once WarmupPeriod has
	// elapsed; falling below it raises TIMEOUT_EXCEEDED under Throw.
	MinRowsPerSecond float64
	WarmupPeriod     time.Duration

	Overflow OverflowMode
}

// Quota accumulates per-window usage totals and is charged at block
// boundaries (spec §4.K).
type Quota struct {
	MaxQueries     int64
	MaxResultRows  int64
	MaxResultBytes int64

	queries     int64
	resultRows  int64
	resultBytes int64
}

// ChargeQuery increments the query counter, failing if MaxQueries is set
// and already reached.
func (q *Quota) ChargeQuery() error {
	if q == nil {
		return nil
	}
	if q.MaxQueries > 0 && q.queries >= q.MaxQueries {
		return errs.ErrQuotaExpired
	}
	q.queries++
	return nil
}

// Charge accounts rows/bytes against the quota, failing once either
// configured ceiling is exceeded.
func (q *Quota) Charge(rows, bytes int64) error {
	if q == nil {
		return nil
	}
	q.resultRows += rows
	q.resultBytes += bytes
	if q.MaxResultRows > 0 && q.resultRows > q.MaxResultRows {
		return errs.ErrQuotaExpired
	}
	if q.MaxResultBytes > 0 && q.resultBytes > q.MaxResultBytes {
		return errs.ErrQuotaExpired
	}
	return nil
}

// ProfiledStream wraps a child Stream with timers, row/byte counters,
// limit enforcement, and quota charging (spec §4.B). Cancel() propagates
// to the child, matching top-down cancellation (spec §5).
type ProfiledStream struct {
	Base
	Child  Stream
	Limits Limits
	Quota  *Quota

	RowsRead  int64
	BytesRead int64
	started   time.Time
	elapsed   time.Duration
}

// NewProfiledStream wraps child with the given limits and optional quota.
func NewProfiledStream(child Stream, lim Limits, quota *Quota) *ProfiledStream {
	return &ProfiledStream{Child: child, Limits: lim, Quota: quota}
}

func (p *ProfiledStream) ReadPrefix() error {
	p.started = time.Now()
	return p.Child.ReadPrefix()
}

func (p *ProfiledStream) ReadSuffix() error { return p.Child.ReadSuffix() }

func (p *ProfiledStream) Cancel() {
	p.Base.Cancel()
	p.Child.Cancel()
}

// Read pulls the next block from the child, updating counters and
// enforcing Limits; once the limit is breached, behavior is governed by
// Limits.Overflow.
func (p *ProfiledStream) Read() (*Block, error) {
	if p.Cancelled() {
		return &Block{}, nil
	}
	t0 := time.Now()
	b, err := p.Child.Read()
	p.elapsed += time.Since(t0)
	if err != nil {
		return nil, err
	}
	if b.Empty() {
		return b, nil
	}
	rows := int64(b.RowCount())
	bytes := int64(b.ByteSize())
	p.RowsRead += rows
	p.BytesRead += bytes

	if err := p.checkLimits(); err != nil {
		if p.Limits.Overflow == Break {
			p.Cancel()
			return &Block{}, nil
		}
		return nil, err
	}
	if p.Quota != nil {
		if err := p.Quota.Charge(rows, bytes); err != nil {
			return nil, err
		}
	}
	p.Report(Progress{Rows: rows, Bytes: bytes})
	return b, nil
}

func (p *ProfiledStream) checkLimits() error {
	l := p.Limits
	if l.MaxRows > 0 && p.RowsRead > l.MaxRows {
		return errs.ErrTooManyRows
	}
	if l.MaxBytes > 0 && p.BytesRead > l.MaxBytes {
		return errs.ErrTooManyRows
	}
	if l.MaxExecutionTime > 0 && p.elapsed > l.MaxExecutionTime {
		return errs.ErrTimeoutExceeded
	}
	if l.MinRowsPerSecond > 0 && l.WarmupPeriod > 0 && p.elapsed > l.WarmupPeriod {
		speed := float64(p.RowsRead) / p.elapsed.Seconds()
		if speed < l.MinRowsPerSecond {
			return errs.ErrTimeoutExceeded
		}
	}
	return nil
}
