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

// Package column implements the columnar data model: polymorphic Column
// variants (vector, string, array, nullable, const, low-cardinality) over
// the shared PODArray growable-buffer primitive.
package column

import "github.com/columnstore/columnstore/errs"

// NullsDirection controls where nulls sort relative to non-null values,
// used by CompareAt and GetPermutation.
type NullsDirection int

const (
	NullsFirst NullsDirection = iota
	NullsLast
)

// Column is the capability set every column variant implements (spec §4.A).
// A Column never observes a row-count disagreement with its block siblings;
// every mutating method that would violate that returns an error instead of
// silently truncating or padding.
type Column interface {
	// CloneEmpty returns a new column of the same concrete type and zero
	// rows, suitable as an accumulation target.
	CloneEmpty() Column

	// Len returns the column's row count.
	Len() int

	// InsertField appends a boxed value, type-converting from the Field's
	// Kind to the column's native representation.
	InsertField(v Field) error

	// InsertFrom appends row `row` of src to the receiver.
	InsertFrom(src Column, row int) error

	// Get unboxes row i into a Field.
	Get(i int) Field

	// Filter returns a new column containing exactly popcount(mask) rows,
	// the rows for which mask[i] is true, preserving order.
	Filter(mask []bool) (Column, error)

	// Permute returns a new column with rows reordered according to perm
	// (perm[i] is the source row index for output row i). If limit >= 0,
	// only the first `limit` entries of perm are applied.
	Permute(perm []int, limit int) (Column, error)

	// Replicate expands row i into offsets[i]-offsets[i-1] copies
	// (offsets[-1] implicitly 0), returning a column of offsets[last] rows.
	Replicate(offsets []int) (Column, error)

	// CompareAt orders row i of the receiver against row j of other,
	// returning <0, 0, >0. When exactly one of the two rows is null, the
	// result is governed by nullsDir instead of the underlying value
	// comparison.
	CompareAt(i int, other Column, j int, nullsDir NullsDirection) int

	// GetPermutation returns a row permutation that sorts the column
	// (ascending unless reverse is set); ties preserve input order
	// (needed for Sort stability, spec §8). If limit >= 0, only the
	// smallest (or largest, if reverse) `limit` positions need be correct
	// -- callers must still get back len(column) indices.
	GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error)

	// ByteSize estimates the column's memory footprint.
	ByteSize() int
}

func checkBounds(i, n int) error {
	if i < 0 || i >= n {
		return errs.ErrOutOfBound(i, n)
	}
	return nil
}

func checkMaskLen(have, want int) error {
	if have != want {
		return errs.ErrSizesDontMatch(have, want)
	}
	return nil
}

// popcount counts the number of true entries in mask.
func popcount(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

// identityPerm returns [0, 1, ..., n-1].
func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
