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

package diskspace

import (
	"fmt"
	"sync/atomic"
)

// Volume is an ordered list of disks with a round-robin chooser for
// where to place the next part (spec §4.J).
type Volume struct {
	Name         string
	Disks        []*Disk
	MaxPartBytes int64 // 0 means unconstrained

	counter uint64
}

// NewVolume creates a Volume over the given disks.
func NewVolume(name string, disks []*Disk, maxPartBytes int64) *Volume {
	return &Volume{Name: name, Disks: disks, MaxPartBytes: maxPartBytes}
}

// Reserve walks the volume's disks starting from the next round-robin
// position, returning the first reservation that succeeds. It fails
// fast if size exceeds MaxPartBytes.
func (v *Volume) Reserve(size int64) (*Reservation, error) {
	if v.MaxPartBytes > 0 && size > v.MaxPartBytes {
		return nil, fmt.Errorf("diskspace: part of %d bytes exceeds volume %q's max part size %d", size, v.Name, v.MaxPartBytes)
	}
	if len(v.Disks) == 0 {
		return nil, fmt.Errorf("diskspace: volume %q has no disks", v.Name)
	}
	start := atomic.AddUint64(&v.counter, 1)
	for i := range v.Disks {
		d := v.Disks[(int(start)+i)%len(v.Disks)]
		if r, ok := d.TryReserve(size); ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("diskspace: no disk in volume %q has %d free bytes", v.Name, size)
}

// Schema is an ordered list of volumes, used to fall through from a
// preferred, fast volume to a larger, slower one when space runs out.
type Schema struct {
	Name    string
	Volumes []*Volume
}

// NewSchema creates a Schema over the given volumes, in preference
// order.
func NewSchema(name string, volumes []*Volume) *Schema {
	return &Schema{Name: name, Volumes: volumes}
}

// Reserve tries each volume in order, returning the first successful
// reservation.
func (s *Schema) Reserve(size int64) (*Reservation, error) {
	var lastErr error
	for _, v := range s.Volumes {
		r, err := v.Reserve(size)
		if err == nil {
			return r, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("diskspace: schema %q has no volumes", s.Name)
	}
	return nil, lastErr
}
