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
	"sort"

	"github.com/columnstore/columnstore/errs"
)

// LowCardinality is the dictionary-encoded column variant: a deduped
// dictionary of distinct string values plus a small-int index column, one
// index entry per row. The dictionary grows via the same PODArray-backed
// StringColumn as every other string storage in this package, probed by a
// simple map for dedup -- not wrapped in a generic container type, per the
// spec's "flat, realloc-backed storage" preference (spec §4.A addition).
type LowCardinality struct {
	dict    *StringColumn
	byValue map[string]int32
	index   *PODArray[int32]
}

// NewLowCardinality creates an empty dictionary-encoded column.
func NewLowCardinality(tracker *Tracker) *LowCardinality {
	return &LowCardinality{
		dict:    NewStringColumn(tracker),
		byValue: make(map[string]int32),
		index:   NewPODArray[int32](tracker),
	}
}

func (l *LowCardinality) CloneEmpty() Column {
	return NewLowCardinality(l.dict.tracker)
}

func (l *LowCardinality) Len() int { return l.index.Len() }

func (l *LowCardinality) internValue(s string) int32 {
	if id, ok := l.byValue[s]; ok {
		return id
	}
	l.dict.InsertData([]byte(s))
	id := int32(l.dict.Len() - 1)
	l.byValue[s] = id
	return id
}

func (l *LowCardinality) InsertField(f Field) error {
	l.index.PushBack(l.internValue(f.S))
	return nil
}

func (l *LowCardinality) InsertFrom(src Column, row int) error {
	o, ok := src.(*LowCardinality)
	if !ok {
		return errs.ErrLogical("column: InsertFrom type mismatch")
	}
	if err := checkBounds(row, o.Len()); err != nil {
		return err
	}
	id := o.index.At(row)
	l.index.PushBack(l.internValue(string(o.dict.bytesAt(int(id)))))
	return nil
}

func (l *LowCardinality) Get(i int) Field {
	id := l.index.At(i)
	return String(string(l.dict.bytesAt(int(id))))
}

func (l *LowCardinality) Filter(mask []bool) (Column, error) {
	if err := checkMaskLen(len(mask), l.Len()); err != nil {
		return nil, err
	}
	out := l.CloneEmpty().(*LowCardinality)
	for i, keep := range mask {
		if keep {
			out.index.PushBack(l.index.At(i))
		}
	}
	out.shareDict(l)
	return out, nil
}

// shareDict lets a derived LowCardinality reuse the parent's dictionary
// directly instead of re-interning every value, since filter/permute never
// introduce new distinct values.
func (l *LowCardinality) shareDict(parent *LowCardinality) {
	l.dict = parent.dict
	l.byValue = parent.byValue
}

func (l *LowCardinality) Permute(perm []int, limit int) (Column, error) {
	n := limit
	if n < 0 || n > len(perm) {
		n = len(perm)
	}
	out := l.CloneEmpty().(*LowCardinality)
	for i := 0; i < n; i++ {
		if err := checkBounds(perm[i], l.Len()); err != nil {
			return nil, err
		}
		out.index.PushBack(l.index.At(perm[i]))
	}
	out.shareDict(l)
	return out, nil
}

func (l *LowCardinality) Replicate(offsets []int) (Column, error) {
	if err := checkMaskLen(len(offsets), l.Len()); err != nil {
		return nil, err
	}
	out := l.CloneEmpty().(*LowCardinality)
	prev := 0
	for i, end := range offsets {
		v := l.index.At(i)
		for j := prev; j < end; j++ {
			out.index.PushBack(v)
		}
		prev = end
	}
	out.shareDict(l)
	return out, nil
}

func (l *LowCardinality) CompareAt(i int, other Column, j int, nullsDir NullsDirection) int {
	o, ok := other.(*LowCardinality)
	if !ok {
		panic("column: CompareAt type mismatch")
	}
	return bytesCompare(l.dict.bytesAt(int(l.index.At(i))), o.dict.bytesAt(int(o.index.At(j))))
}

func (l *LowCardinality) GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error) {
	perm := identityPerm(l.Len())
	sort.SliceStable(perm, func(a, b int) bool {
		c := l.CompareAt(perm[a], l, perm[b], nullsDir)
		if reverse {
			return c > 0
		}
		return c < 0
	})
	return perm, nil
}

func (l *LowCardinality) ByteSize() int { return l.dict.ByteSize() + l.index.ByteSize() }

func bytesCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
