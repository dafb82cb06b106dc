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

package mergetree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/columnstore/columnstore/errs"
)

// PartName encodes a part directory's identity: the partition it belongs
// to, the inclusive block-number range it covers, its merge level (0 for
// a freshly-inserted part, incremented by one on every merge), and an
// optional mutation counter appended by ALTER ... UPDATE/DELETE.
type PartName struct {
	Partition string
	MinBlock  int64
	MaxBlock  int64
	Level     int
	Mutation  int // 0 means "no mutation suffix"
}

// String renders the canonical "<partition>_<min>_<max>_<level>[_<mutation>]"
// directory name.
func (p PartName) String() string {
	base := fmt.Sprintf("%s_%d_%d_%d", p.Partition, p.MinBlock, p.MaxBlock, p.Level)
	if p.Mutation > 0 {
		return fmt.Sprintf("%s_%d", base, p.Mutation)
	}
	return base
}

// ParsePartName parses a directory name back into a PartName.
func ParsePartName(name string) (PartName, error) {
	fields := strings.Split(name, "_")
	if len(fields) < 4 {
		return PartName{}, fmt.Errorf("%q: %w", name, errs.ErrBadDataPartName)
	}
	n := len(fields)
	var mutation int
	levelIdx := n - 1
	if n >= 5 {
		if m, err := strconv.Atoi(fields[n-1]); err == nil {
			mutation = m
			levelIdx = n - 2
		}
	}
	level, err := strconv.Atoi(fields[levelIdx])
	if err != nil {
		return PartName{}, fmt.Errorf("%q: %w", name, errs.ErrBadDataPartName)
	}
	maxBlock, err := strconv.ParseInt(fields[levelIdx-1], 10, 64)
	if err != nil {
		return PartName{}, fmt.Errorf("%q: %w", name, errs.ErrBadDataPartName)
	}
	minBlock, err := strconv.ParseInt(fields[levelIdx-2], 10, 64)
	if err != nil {
		return PartName{}, fmt.Errorf("%q: %w", name, errs.ErrBadDataPartName)
	}
	partition := strings.Join(fields[:levelIdx-2], "_")
	return PartName{
		Partition: partition,
		MinBlock:  minBlock,
		MaxBlock:  maxBlock,
		Level:     level,
		Mutation:  mutation,
	}, nil
}

// Overlaps reports whether p and other cover any common block number,
// which would violate the "parts within a partition are non-overlapping"
// invariant (spec §3, Part entity).
func (p PartName) Overlaps(other PartName) bool {
	if p.Partition != other.Partition {
		return false
	}
	return p.MinBlock <= other.MaxBlock && other.MinBlock <= p.MaxBlock
}

// Part is an immutable, sorted, on-disk fragment of a partition: a
// directory of per-column .bin/.mrk files plus checksums, columns.txt,
// and primary.idx (spec §3, Part entity). This port keeps only the
// in-memory index metadata a read plan actually needs; file I/O is left
// to the storage backend a deployment plugs in.
type Part struct {
	Name PartName
	// Marks holds one granule-boundary mark per index_granularity rows,
	// each a (compressed, decompressed) offset pair -- enough to let PK
	// pruning address a granule by index.
	Marks []Mark
	// PrimaryIndex holds the first PK tuple of each granule, sampled
	// every index_granularity rows ("primary.idx").
	PrimaryIndex []Tuple
	Rows         int
	ByteSize     int64
}

// Mark addresses one granule boundary.
type Mark struct {
	CompressedOffset   int64
	DecompressedOffset int64
}

// Tuple is a primary-key tuple sample, compared lexicographically
// column-by-column.
type Tuple []int64

// Compare orders two tuples lexicographically.
func (t Tuple) Compare(o Tuple) int {
	for i := 0; i < len(t) && i < len(o); i++ {
		if t[i] < o[i] {
			return -1
		}
		if t[i] > o[i] {
			return 1
		}
	}
	switch {
	case len(t) < len(o):
		return -1
	case len(t) > len(o):
		return 1
	default:
		return 0
	}
}

// GranuleCount returns the number of granules addressable in this part.
func (p *Part) GranuleCount() int { return len(p.PrimaryIndex) }
