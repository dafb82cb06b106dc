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

// numeric is the set of fixed-width scalar kinds a Vector column can hold.
type numeric interface {
	~int64 | ~float64 | ~bool
}

// Vector is the fixed-width column variant: a flat PODArray of T with no
// per-row overhead beyond sizeof(T). Int64Column, Float64Column, and
// BoolColumn are instantiations of it.
type Vector[T numeric] struct {
	data    *PODArray[T]
	tracker *Tracker
	toField func(T) Field
	fromF   func(Field) T
	less    func(a, b T) bool
}

func newVector[T numeric](tracker *Tracker, toField func(T) Field, fromF func(Field) T, less func(a, b T) bool) *Vector[T] {
	return &Vector[T]{
		data:    NewPODArray[T](tracker),
		tracker: tracker,
		toField: toField,
		fromF:   fromF,
		less:    less,
	}
}

// NewInt64Column creates an empty fixed-width column of int64 values.
func NewInt64Column(tracker *Tracker) *Vector[int64] {
	return newVector[int64](tracker,
		func(v int64) Field { return Int(v) },
		func(f Field) int64 { return f.I },
		func(a, b int64) bool { return a < b },
	)
}

// NewFloat64Column creates an empty fixed-width column of float64 values.
func NewFloat64Column(tracker *Tracker) *Vector[float64] {
	return newVector[float64](tracker,
		func(v float64) Field { return Float(v) },
		func(f Field) float64 { return f.F },
		func(a, b float64) bool { return a < b },
	)
}

// NewBoolColumn creates an empty fixed-width column of bool values.
func NewBoolColumn(tracker *Tracker) *Vector[bool] {
	return newVector[bool](tracker,
		func(v bool) Field { return Bool(v) },
		func(f Field) bool { return f.AsBool() },
		func(a, b bool) bool { return !a && b },
	)
}

func (v *Vector[T]) CloneEmpty() Column {
	return &Vector[T]{data: NewPODArray[T](v.tracker), tracker: v.tracker, toField: v.toField, fromF: v.fromF, less: v.less}
}

func (v *Vector[T]) Len() int { return v.data.Len() }

func (v *Vector[T]) InsertField(f Field) error {
	v.data.PushBack(v.fromF(f))
	return nil
}

func (v *Vector[T]) InsertFrom(src Column, row int) error {
	o, ok := src.(*Vector[T])
	if !ok {
		return errs.ErrLogical("column: InsertFrom type mismatch")
	}
	if err := checkBounds(row, o.Len()); err != nil {
		return err
	}
	v.data.PushBack(o.data.At(row))
	return nil
}

func (v *Vector[T]) Get(i int) Field {
	return v.toField(v.data.At(i))
}

func (v *Vector[T]) Filter(mask []bool) (Column, error) {
	if err := checkMaskLen(len(mask), v.Len()); err != nil {
		return nil, err
	}
	out := v.CloneEmpty().(*Vector[T])
	out.data.Reserve(popcount(mask))
	for i, keep := range mask {
		if keep {
			out.data.PushBack(v.data.At(i))
		}
	}
	return out, nil
}

func (v *Vector[T]) Permute(perm []int, limit int) (Column, error) {
	n := limit
	if n < 0 || n > len(perm) {
		n = len(perm)
	}
	out := v.CloneEmpty().(*Vector[T])
	out.data.ResizeWithoutConstruct(n)
	for i := 0; i < n; i++ {
		if err := checkBounds(perm[i], v.Len()); err != nil {
			return nil, err
		}
		out.data.Set(i, v.data.At(perm[i]))
	}
	return out, nil
}

func (v *Vector[T]) Replicate(offsets []int) (Column, error) {
	if err := checkMaskLen(len(offsets), v.Len()); err != nil {
		return nil, err
	}
	out := v.CloneEmpty().(*Vector[T])
	prev := 0
	for i, end := range offsets {
		if end < prev {
			return nil, errs.New(errs.InvalidInput, "PARAMETER_OUT_OF_BOUND", "offsets must be non-decreasing")
		}
		val := v.data.At(i)
		for j := prev; j < end; j++ {
			out.data.PushBack(val)
		}
		prev = end
	}
	return out, nil
}

func (v *Vector[T]) CompareAt(i int, other Column, j int, nullsDir NullsDirection) int {
	o, ok := other.(*Vector[T])
	if !ok {
		panic("column: CompareAt type mismatch")
	}
	a, b := v.data.At(i), o.data.At(j)
	if v.less(a, b) {
		return -1
	}
	if v.less(b, a) {
		return 1
	}
	return 0
}

func (v *Vector[T]) GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error) {
	perm := identityPerm(v.Len())
	sort.SliceStable(perm, func(a, b int) bool {
		x, y := v.data.At(perm[a]), v.data.At(perm[b])
		if reverse {
			return v.less(y, x)
		}
		return v.less(x, y)
	})
	return perm, nil
}

func (v *Vector[T]) ByteSize() int { return v.data.ByteSize() }
