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

import (
	"bytes"
	"sort"

	"github.com/columnstore/columnstore/errs"
)

// StringColumn is the variable-width string variant: a single contiguous
// byte buffer plus a per-row end-offset index. offsets[i] is the
// one-past-end byte of value i, including a trailing zero byte, so the
// fast-path comparator can memcmp up to the first zero byte (spec §4.A).
type StringColumn struct {
	chars   *PODArray[byte]
	offsets *PODArray[int]
	tracker *Tracker
}

// NewStringColumn creates an empty string column.
func NewStringColumn(tracker *Tracker) *StringColumn {
	return &StringColumn{
		chars:   NewPODArray[byte](tracker),
		offsets: NewPODArray[int](tracker),
		tracker: tracker,
	}
}

func (s *StringColumn) CloneEmpty() Column { return NewStringColumn(s.tracker) }

func (s *StringColumn) Len() int { return s.offsets.Len() }

// InsertData appends raw bytes directly, bypassing Field boxing -- the
// only Column operation specific to the string variant (spec §4.A).
func (s *StringColumn) InsertData(p []byte) {
	s.chars.Reserve(s.chars.Len() + len(p) + 1)
	for _, b := range p {
		s.chars.PushBack(b)
	}
	s.chars.PushBack(0) // trailing zero byte enables the memcmp fast path
	s.offsets.PushBack(s.chars.Len())
}

func (s *StringColumn) InsertField(f Field) error {
	s.InsertData([]byte(f.S))
	return nil
}

func (s *StringColumn) InsertFrom(src Column, row int) error {
	o, ok := src.(*StringColumn)
	if !ok {
		return errs.ErrLogical("column: InsertFrom type mismatch")
	}
	if err := checkBounds(row, o.Len()); err != nil {
		return err
	}
	s.InsertData(o.bytesAt(row))
	return nil
}

func (s *StringColumn) bytesAt(i int) []byte {
	end := s.offsets.At(i)
	start := 0
	if i > 0 {
		start = s.offsets.At(i - 1)
	}
	return s.chars.Slice()[start : end-1] // drop trailing zero byte
}

func (s *StringColumn) Get(i int) Field { return String(string(s.bytesAt(i))) }

func (s *StringColumn) Filter(mask []bool) (Column, error) {
	if err := checkMaskLen(len(mask), s.Len()); err != nil {
		return nil, err
	}
	out := NewStringColumn(s.tracker)
	for i, keep := range mask {
		if keep {
			out.InsertData(s.bytesAt(i))
		}
	}
	return out, nil
}

func (s *StringColumn) Permute(perm []int, limit int) (Column, error) {
	n := limit
	if n < 0 || n > len(perm) {
		n = len(perm)
	}
	out := NewStringColumn(s.tracker)
	for i := 0; i < n; i++ {
		if err := checkBounds(perm[i], s.Len()); err != nil {
			return nil, err
		}
		out.InsertData(s.bytesAt(perm[i]))
	}
	return out, nil
}

func (s *StringColumn) Replicate(offsets []int) (Column, error) {
	if err := checkMaskLen(len(offsets), s.Len()); err != nil {
		return nil, err
	}
	out := NewStringColumn(s.tracker)
	prev := 0
	for i, end := range offsets {
		if end < prev {
			return nil, errs.New(errs.InvalidInput, "PARAMETER_OUT_OF_BOUND", "offsets must be non-decreasing")
		}
		val := s.bytesAt(i)
		for j := prev; j < end; j++ {
			out.InsertData(val)
		}
		prev = end
	}
	return out, nil
}

func (s *StringColumn) CompareAt(i int, other Column, j int, nullsDir NullsDirection) int {
	o, ok := other.(*StringColumn)
	if !ok {
		panic("column: CompareAt type mismatch")
	}
	return bytes.Compare(s.bytesAt(i), o.bytesAt(j))
}

func (s *StringColumn) GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error) {
	perm := identityPerm(s.Len())
	sort.SliceStable(perm, func(a, b int) bool {
		c := bytes.Compare(s.bytesAt(perm[a]), s.bytesAt(perm[b]))
		if reverse {
			return c > 0
		}
		return c < 0
	})
	return perm, nil
}

func (s *StringColumn) ByteSize() int { return s.chars.ByteSize() + s.offsets.ByteSize() }
