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

// Nullable wraps an inner column with a byte mask where 1 means null.
// Nullable-in-nullable is an illegal construction (spec §4.A) and is
// rejected by NewNullable.
type Nullable struct {
	inner Column
	mask  *PODArray[byte]
}

// NewNullable wraps inner in a Nullable column. It returns
// errs.ErrIllegalNullable if inner is itself Nullable.
func NewNullable(inner Column, tracker *Tracker) (*Nullable, error) {
	if _, bad := inner.(*Nullable); bad {
		return nil, errs.ErrIllegalNullable
	}
	return &Nullable{inner: inner, mask: NewPODArray[byte](tracker)}, nil
}

func (n *Nullable) CloneEmpty() Column {
	return &Nullable{inner: n.inner.CloneEmpty(), mask: NewPODArray[byte](nil)}
}

func (n *Nullable) Len() int { return n.mask.Len() }

func (n *Nullable) IsNullAt(i int) bool { return n.mask.At(i) == 1 }

func (n *Nullable) Inner() Column { return n.inner }

func (n *Nullable) InsertField(f Field) error {
	if f.IsNull() {
		n.mask.PushBack(1)
		// push a default value into inner to keep row counts aligned;
		// the value is never observed since Get short-circuits on the mask
		return n.inner.InsertField(n.defaultInner())
	}
	n.mask.PushBack(0)
	return n.inner.InsertField(f)
}

func (n *Nullable) InsertFrom(src Column, row int) error {
	o, ok := src.(*Nullable)
	if !ok {
		return errs.ErrLogical("column: InsertFrom type mismatch")
	}
	if err := checkBounds(row, o.Len()); err != nil {
		return err
	}
	if o.IsNullAt(row) {
		n.mask.PushBack(1)
		return n.inner.InsertField(n.defaultInner())
	}
	n.mask.PushBack(0)
	return n.inner.InsertFrom(o.inner, row)
}

// defaultInner returns a zero value of the appropriate Kind for the
// wrapped column, used to keep inner's row count aligned with the mask
// when a null is inserted.
func (n *Nullable) defaultInner() Field {
	switch n.inner.(type) {
	case *StringColumn:
		return String("")
	case *Vector[float64]:
		return Float(0)
	case *Vector[bool]:
		return Bool(false)
	default:
		return Int(0)
	}
}

func (n *Nullable) Get(i int) Field {
	if n.IsNullAt(i) {
		return Null()
	}
	return n.inner.Get(i)
}

func (n *Nullable) Filter(mask []bool) (Column, error) {
	if err := checkMaskLen(len(mask), n.Len()); err != nil {
		return nil, err
	}
	innerMask := make([]bool, n.inner.Len())
	copy(innerMask, mask)
	filteredInner, err := n.inner.Filter(mask)
	if err != nil {
		return nil, err
	}
	out := &Nullable{inner: filteredInner, mask: NewPODArray[byte](nil)}
	for i, keep := range mask {
		if keep {
			out.mask.PushBack(n.mask.At(i))
		}
	}
	return out, nil
}

func (n *Nullable) Permute(perm []int, limit int) (Column, error) {
	filteredInner, err := n.inner.Permute(perm, limit)
	if err != nil {
		return nil, err
	}
	nlim := limit
	if nlim < 0 || nlim > len(perm) {
		nlim = len(perm)
	}
	out := &Nullable{inner: filteredInner, mask: NewPODArray[byte](nil)}
	for i := 0; i < nlim; i++ {
		out.mask.PushBack(n.mask.At(perm[i]))
	}
	return out, nil
}

func (n *Nullable) Replicate(offsets []int) (Column, error) {
	filteredInner, err := n.inner.Replicate(offsets)
	if err != nil {
		return nil, err
	}
	out := &Nullable{inner: filteredInner, mask: NewPODArray[byte](nil)}
	prev := 0
	for i, end := range offsets {
		v := n.mask.At(i)
		for j := prev; j < end; j++ {
			out.mask.PushBack(v)
		}
		prev = end
	}
	return out, nil
}

// CompareAt implements the spec's null-direction-hint rule: when exactly
// one side is null, nullsDir decides the ordering instead of comparing
// underlying values.
func (n *Nullable) CompareAt(i int, other Column, j int, nullsDir NullsDirection) int {
	o, ok := other.(*Nullable)
	if !ok {
		panic("column: CompareAt type mismatch")
	}
	ni, nj := n.IsNullAt(i), o.IsNullAt(j)
	switch {
	case ni && nj:
		return 0
	case ni && !nj:
		if nullsDir == NullsFirst {
			return -1
		}
		return 1
	case !ni && nj:
		if nullsDir == NullsFirst {
			return 1
		}
		return -1
	default:
		return n.inner.CompareAt(i, o.inner, j, nullsDir)
	}
}

func (n *Nullable) GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error) {
	perm := identityPerm(n.Len())
	sort.SliceStable(perm, func(a, b int) bool {
		c := n.CompareAt(perm[a], n, perm[b], nullsDir)
		if reverse {
			return c > 0
		}
		return c < 0
	})
	return perm, nil
}

func (n *Nullable) ByteSize() int { return n.inner.ByteSize() + n.mask.ByteSize() }

// WrapNullable builds a Nullable directly from an already-populated inner
// column and a parallel null mask (mask[i] true means row i is null),
// without any inner re-insertion. It is the fast path used when a
// function result and its null mask are computed independently (e.g. the
// expression engine's default nullable-propagation wrapper) and just need
// to be paired up.
func WrapNullable(inner Column, mask []bool) (*Nullable, error) {
	if _, bad := inner.(*Nullable); bad {
		return nil, errs.ErrIllegalNullable
	}
	if err := checkMaskLen(len(mask), inner.Len()); err != nil {
		return nil, err
	}
	m := NewPODArray[byte](nil)
	m.ResizeWithoutConstruct(len(mask))
	for i, v := range mask {
		if v {
			m.Set(i, 1)
		} else {
			m.Set(i, 0)
		}
	}
	return &Nullable{inner: inner, mask: m}, nil
}
