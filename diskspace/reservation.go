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

// Package diskspace tracks how much of each configured disk path is
// spoken for by in-flight writes (spec §4.J), so a MergeTree write or
// merge can fail fast with "not enough space" instead of filling a disk
// out from under a concurrent writer.
package diskspace

import (
	"sync"

	"github.com/columnstore/columnstore/log"
)

var logger = log.WithComponent("diskspace")

// keepFreeSlack mirrors ClickHouse's fixed 30 MiB safety margin below
// keep_free_space_bytes that tryToReserve always subtracts.
const keepFreeSlack = 30 << 20

// Disk tracks reservations against one filesystem path. All mutation
// happens under mu, matching the teacher's single-global-mutex-per-disk
// shape for this kind of small, frequently-touched accounting state
// (compare tenant.linuxUsage's one-shot statfs probe, which this reuses
// as the underlying free-space source).
type Disk struct {
	Path          string
	KeepFreeBytes int64

	mu              sync.Mutex
	reservedBytes   int64
	reservationCount int64
}

// NewDisk creates a Disk tracker for path, refusing to let reservations
// eat into the last keepFreeBytes of free space.
func NewDisk(path string, keepFreeBytes int64) *Disk {
	return &Disk{Path: path, KeepFreeBytes: keepFreeBytes}
}

// Reservation is an RAII-style handle: call Release exactly once to
// give the reserved bytes back (spec §4.J: "returns an RAII Reservation
// that decrements on destruction").
type Reservation struct {
	disk    *Disk
	size    int64
	released bool
}

// Release returns the reserved bytes to the disk's free pool. Safe to
// call multiple times; only the first call has an effect.
func (r *Reservation) Release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	r.disk.mu.Lock()
	r.disk.reservedBytes -= r.size
	r.disk.reservationCount--
	r.disk.mu.Unlock()
}

// Size reports the number of bytes this reservation holds.
func (r *Reservation) Size() int64 { return r.size }

// TryReserve attempts to reserve size bytes on d, returning (nil, false)
// if the disk's actual free space minus its keep-free margin minus
// already-reserved bytes can't cover it (spec §4.J's tryToReserve).
func (d *Disk) TryReserve(size int64) (*Reservation, bool) {
	free, _, err := usage(d.Path)
	if err != nil {
		logger.Error().Err(err).Str("path", d.Path).Msg("statfs failed, refusing reservation")
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	available := free - d.KeepFreeBytes - keepFreeSlack - d.reservedBytes
	if available < size {
		logger.Warn().Str("path", d.Path).Int64("requested", size).Int64("available", available).Msg("disk reservation denied")
		return nil, false
	}
	d.reservedBytes += size
	d.reservationCount++
	return &Reservation{disk: d, size: size}, true
}

// Reserved reports the disk's currently-reserved byte total.
func (d *Disk) Reserved() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reservedBytes
}

// ReservationCount reports the number of live reservations on d.
func (d *Disk) ReservationCount() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reservationCount
}
