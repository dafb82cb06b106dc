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

// Array is the array-of-offsets column variant: a child column holding the
// flattened element values plus a per-row end-offset index, the same
// layout idea as StringColumn generalized to an arbitrary child Column.
type Array struct {
	child   Column
	offsets *PODArray[int]
}

// NewArray creates an empty array column over the given (empty) child.
func NewArray(child Column) *Array {
	return &Array{child: child, offsets: NewPODArray[int](nil)}
}

func (a *Array) CloneEmpty() Column {
	return &Array{child: a.child.CloneEmpty(), offsets: NewPODArray[int](nil)}
}

func (a *Array) Len() int { return a.offsets.Len() }

func (a *Array) bounds(i int) (start, end int) {
	end = a.offsets.At(i)
	if i > 0 {
		start = a.offsets.At(i - 1)
	}
	return
}

// AppendRow appends one row whose elements are vals, growing the child
// column and offset index together.
func (a *Array) AppendRow(vals []Field) error {
	for _, v := range vals {
		if err := a.child.InsertField(v); err != nil {
			return err
		}
	}
	a.offsets.PushBack(a.child.Len())
	return nil
}

func (a *Array) InsertField(f Field) error {
	if f.Kind != KindArray {
		return errs.ErrLogical("column: Array.InsertField requires a KindArray Field")
	}
	return a.AppendRow(f.A)
}

func (a *Array) InsertFrom(src Column, row int) error {
	o, ok := src.(*Array)
	if !ok {
		return errs.ErrLogical("column: InsertFrom type mismatch")
	}
	if err := checkBounds(row, o.Len()); err != nil {
		return err
	}
	start, end := o.bounds(row)
	for i := start; i < end; i++ {
		if err := a.child.InsertFrom(o.child, i); err != nil {
			return err
		}
	}
	a.offsets.PushBack(a.child.Len())
	return nil
}

func (a *Array) Get(i int) Field {
	start, end := a.bounds(i)
	out := make([]Field, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, a.child.Get(j))
	}
	return ArrayField(out)
}

func (a *Array) Filter(mask []bool) (Column, error) {
	if err := checkMaskLen(len(mask), a.Len()); err != nil {
		return nil, err
	}
	out := a.CloneEmpty().(*Array)
	for i, keep := range mask {
		if !keep {
			continue
		}
		start, end := a.bounds(i)
		for j := start; j < end; j++ {
			if err := out.child.InsertFrom(a.child, j); err != nil {
				return nil, err
			}
		}
		out.offsets.PushBack(out.child.Len())
	}
	return out, nil
}

func (a *Array) Permute(perm []int, limit int) (Column, error) {
	n := limit
	if n < 0 || n > len(perm) {
		n = len(perm)
	}
	out := a.CloneEmpty().(*Array)
	for i := 0; i < n; i++ {
		if err := checkBounds(perm[i], a.Len()); err != nil {
			return nil, err
		}
		start, end := a.bounds(perm[i])
		for j := start; j < end; j++ {
			if err := out.child.InsertFrom(a.child, j); err != nil {
				return nil, err
			}
		}
		out.offsets.PushBack(out.child.Len())
	}
	return out, nil
}

func (a *Array) Replicate(offsets []int) (Column, error) {
	if err := checkMaskLen(len(offsets), a.Len()); err != nil {
		return nil, err
	}
	out := a.CloneEmpty().(*Array)
	prev := 0
	for i, end := range offsets {
		start, stop := a.bounds(i)
		for k := prev; k < end; k++ {
			for j := start; j < stop; j++ {
				if err := out.child.InsertFrom(a.child, j); err != nil {
					return nil, err
				}
			}
			out.offsets.PushBack(out.child.Len())
		}
		prev = end
	}
	return out, nil
}

func (a *Array) CompareAt(i int, other Column, j int, nullsDir NullsDirection) int {
	o, ok := other.(*Array)
	if !ok {
		panic("column: CompareAt type mismatch")
	}
	si, ei := a.bounds(i)
	sj, ej := o.bounds(j)
	for k := 0; ; k++ {
		li, lj := si+k < ei, sj+k < ej
		if !li && !lj {
			return 0
		}
		if !li {
			return -1
		}
		if !lj {
			return 1
		}
		if c := a.child.CompareAt(si+k, o.child, sj+k, nullsDir); c != 0 {
			return c
		}
	}
}

func (a *Array) GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error) {
	perm := identityPerm(a.Len())
	sort.SliceStable(perm, func(x, y int) bool {
		c := a.CompareAt(perm[x], a, perm[y], nullsDir)
		if reverse {
			return c > 0
		}
		return c < 0
	})
	return perm, nil
}

func (a *Array) ByteSize() int { return a.child.ByteSize() + a.offsets.ByteSize() }
