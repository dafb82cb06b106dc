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

import "github.com/columnstore/columnstore/errs"

// Const is a single value wrapped to appear as N identical rows, avoiding
// materializing a repeated value until something downstream actually needs
// per-row storage (e.g. the expression engine's ADD_COLUMN action appends
// a Const). The wrapped inner column must hold exactly one row; wrapping a
// multi-valued column is an illegal construction (spec §4.A).
type Const struct {
	inner Column // exactly one row
	n     int
}

// NewConst wraps inner (which must have exactly one row) to present as n
// rows.
func NewConst(inner Column, n int) (*Const, error) {
	if inner.Len() != 1 {
		return nil, errs.ErrIllegalConstant
	}
	return &Const{inner: inner, n: n}, nil
}

func (c *Const) CloneEmpty() Column { return &Const{inner: c.inner, n: 0} }

func (c *Const) Len() int { return c.n }

func (c *Const) Value() Field { return c.inner.Get(0) }

func (c *Const) InsertField(f Field) error {
	// a constant column can only grow by repeating its existing value (a
	// null is also accepted and counted as one more row); inserting a
	// different value would break the "one value" invariant, so it is
	// rejected with an error -- callers needing a differing value should
	// build a non-const column.
	if f.Kind != KindNull && Compare(f, c.Value()) != 0 {
		return errs.ErrLogical("column: cannot insert a differing value into a Const column")
	}
	c.n++
	return nil
}

func (c *Const) InsertFrom(src Column, row int) error {
	o, ok := src.(*Const)
	if !ok {
		return errs.ErrLogical("column: InsertFrom type mismatch")
	}
	if err := checkBounds(row, o.Len()); err != nil {
		return err
	}
	c.n++
	return nil
}

func (c *Const) Get(i int) Field {
	if i < 0 || i >= c.n {
		return Field{}
	}
	return c.Value()
}

func (c *Const) Filter(mask []bool) (Column, error) {
	if err := checkMaskLen(len(mask), c.Len()); err != nil {
		return nil, err
	}
	return &Const{inner: c.inner, n: popcount(mask)}, nil
}

func (c *Const) Permute(perm []int, limit int) (Column, error) {
	n := limit
	if n < 0 || n > len(perm) {
		n = len(perm)
	}
	for i := 0; i < n; i++ {
		if err := checkBounds(perm[i], c.Len()); err != nil {
			return nil, err
		}
	}
	return &Const{inner: c.inner, n: n}, nil
}

func (c *Const) Replicate(offsets []int) (Column, error) {
	if err := checkMaskLen(len(offsets), c.Len()); err != nil {
		return nil, err
	}
	total := 0
	if len(offsets) > 0 {
		total = offsets[len(offsets)-1]
	}
	return &Const{inner: c.inner, n: total}, nil
}

func (c *Const) CompareAt(i int, other Column, j int, nullsDir NullsDirection) int {
	o, ok := other.(*Const)
	if !ok {
		panic("column: CompareAt type mismatch")
	}
	return Compare(c.Value(), o.Value())
}

func (c *Const) GetPermutation(reverse bool, limit int, nullsDir NullsDirection) ([]int, error) {
	// every row compares equal, so the identity permutation is already
	// stable-sorted.
	return identityPerm(c.Len()), nil
}

func (c *Const) ByteSize() int { return c.inner.ByteSize() }
