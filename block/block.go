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

// Package block implements the relational unit of transport (an ordered
// list of named columns, all of equal length) and the pull-based stream
// interface that moves blocks through the pipeline.
package block

import (
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/errs"
)

// Block is an ordered list of {name, column} pairs. All columns must have
// equal length, the block's row count; a block with zero columns or zero
// rows is, by convention, the end-of-stream marker (spec §3).
type Block struct {
	Names   []string
	Columns []column.Column
}

// New validates that every column has the same length and returns a
// Block, or errs.ErrSizesDontMatch if they disagree.
func New(names []string, cols []column.Column) (*Block, error) {
	if len(names) != len(cols) {
		return nil, errs.ErrLogical("block: names/columns length mismatch")
	}
	if len(cols) > 0 {
		n := cols[0].Len()
		for i := 1; i < len(cols); i++ {
			if cols[i].Len() != n {
				return nil, errs.ErrSizesDontMatch(cols[i].Len(), n)
			}
		}
	}
	return &Block{Names: names, Columns: cols}, nil
}

// RowCount returns the block's row count (0 for a columnless block).
func (b *Block) RowCount() int {
	if b == nil || len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// Empty reports whether the block is the end-of-stream marker: zero
// columns or zero rows.
func (b *Block) Empty() bool {
	return b == nil || len(b.Columns) == 0 || b.RowCount() == 0
}

// ColumnByName returns the column with the given name and whether it was
// found.
func (b *Block) ColumnByName(name string) (column.Column, bool) {
	for i, n := range b.Names {
		if n == name {
			return b.Columns[i], true
		}
	}
	return nil, false
}

// ByteSize sums the ByteSize of every column.
func (b *Block) ByteSize() int {
	n := 0
	for _, c := range b.Columns {
		n += c.ByteSize()
	}
	return n
}

// Project returns a new block retaining only the named columns, renamed
// according to the (name -> alias) pairs, in the given order -- the
// PROJECT expression action (spec §4.C).
func (b *Block) Project(pairs [][2]string) (*Block, error) {
	names := make([]string, 0, len(pairs))
	cols := make([]column.Column, 0, len(pairs))
	for _, p := range pairs {
		src, alias := p[0], p[1]
		c, ok := b.ColumnByName(src)
		if !ok {
			return nil, errs.New(errs.InvalidInput, "UNKNOWN_IDENTIFIER", "no such column %q", src)
		}
		names = append(names, alias)
		cols = append(cols, c)
	}
	return New(names, cols)
}

// Filter returns a new block keeping only rows where mask[i] is true,
// applied independently to every column (spec §8: "Filter commutes with
// projection").
func (b *Block) Filter(mask []bool) (*Block, error) {
	cols := make([]column.Column, len(b.Columns))
	for i, c := range b.Columns {
		fc, err := c.Filter(mask)
		if err != nil {
			return nil, err
		}
		cols[i] = fc
	}
	return New(append([]string(nil), b.Names...), cols)
}

// Permute returns a new block with rows reordered according to perm.
func (b *Block) Permute(perm []int, limit int) (*Block, error) {
	cols := make([]column.Column, len(b.Columns))
	for i, c := range b.Columns {
		pc, err := c.Permute(perm, limit)
		if err != nil {
			return nil, err
		}
		cols[i] = pc
	}
	return New(append([]string(nil), b.Names...), cols)
}

// Replicate returns a new block with every row expanded per offsets.
func (b *Block) Replicate(offsets []int) (*Block, error) {
	cols := make([]column.Column, len(b.Columns))
	for i, c := range b.Columns {
		rc, err := c.Replicate(offsets)
		if err != nil {
			return nil, err
		}
		cols[i] = rc
	}
	return New(append([]string(nil), b.Names...), cols)
}
