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

package block

import (
	"testing"

	"github.com/columnstore/columnstore/column"
)

func mkBlock(t *testing.T, vals []int64) *Block {
	t.Helper()
	c := column.NewInt64Column(nil)
	for _, v := range vals {
		if err := c.InsertField(column.Int(v)); err != nil {
			t.Fatal(err)
		}
	}
	b, err := New([]string{"x"}, []column.Column{c})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBlockSizeMismatch(t *testing.T) {
	a := column.NewInt64Column(nil)
	a.InsertField(column.Int(1))
	b := column.NewInt64Column(nil)
	b.InsertField(column.Int(1))
	b.InsertField(column.Int(2))
	_, err := New([]string{"a", "b"}, []column.Column{a, b})
	if err == nil {
		t.Fatal("expected a size mismatch error")
	}
}

// TestFilterCommutesWithProjection exercises spec §8's universal property:
// project(filter(B,m),π) == filter(project(B,π),m).
func TestFilterCommutesWithProjection(t *testing.T) {
	blk := mkBlock(t, []int64{10, 20, 30, 40})
	mask := []bool{true, false, true, true}
	pairs := [][2]string{{"x", "y"}}

	filtered, err := blk.Filter(mask)
	if err != nil {
		t.Fatal(err)
	}
	left, err := filtered.Project(pairs)
	if err != nil {
		t.Fatal(err)
	}

	projected, err := blk.Project(pairs)
	if err != nil {
		t.Fatal(err)
	}
	right, err := projected.Filter(mask)
	if err != nil {
		t.Fatal(err)
	}

	if left.RowCount() != right.RowCount() {
		t.Fatalf("row counts differ: %d vs %d", left.RowCount(), right.RowCount())
	}
	for i := 0; i < left.RowCount(); i++ {
		lc, _ := left.ColumnByName("y")
		rc, _ := right.ColumnByName("y")
		if lc.Get(i).I != rc.Get(i).I {
			t.Fatalf("row %d differs: %v vs %v", i, lc.Get(i), rc.Get(i))
		}
	}
}

func TestDrainStopsAtEmptyBlock(t *testing.T) {
	b1 := mkBlock(t, []int64{1, 2})
	b2 := mkBlock(t, []int64{3})
	src := NewSliceSource([]*Block{b1, b2})
	var total int
	err := Drain(src, func(b *Block) error {
		total += b.RowCount()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("got %d total rows, want 3", total)
	}
}

func TestProfiledStreamThrowsOnRowLimit(t *testing.T) {
	src := NewSliceSource([]*Block{mkBlock(t, []int64{1, 2, 3, 4, 5})})
	p := NewProfiledStream(src, Limits{MaxRows: 3, Overflow: Throw}, nil)
	_ = p.ReadPrefix()
	_, err := p.Read()
	if err == nil {
		t.Fatal("expected TOO_MUCH_ROWS error")
	}
}

func TestProfiledStreamBreaksCleanly(t *testing.T) {
	src := NewSliceSource([]*Block{mkBlock(t, []int64{1, 2, 3, 4, 5})})
	p := NewProfiledStream(src, Limits{MaxRows: 3, Overflow: Break}, nil)
	_ = p.ReadPrefix()
	b, err := p.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !b.Empty() {
		t.Fatal("expected Break mode to return an empty (EOS) block")
	}
}

func TestCancelPropagatesToChild(t *testing.T) {
	src := NewSliceSource([]*Block{mkBlock(t, []int64{1})})
	p := NewProfiledStream(src, Limits{}, nil)
	p.Cancel()
	if !src.Cancelled() {
		t.Fatal("expected Cancel to propagate to the child stream")
	}
	b, err := p.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !b.Empty() {
		t.Fatal("expected a cancelled stream to read as end-of-stream")
	}
}

func TestUnionReadsChildrenInOrder(t *testing.T) {
	u := NewUnion([]Stream{
		NewSliceSource([]*Block{mkBlock(t, []int64{1, 2})}),
		NewSliceSource([]*Block{mkBlock(t, []int64{3})}),
	})
	var rows []int64
	err := Drain(u, func(b *Block) error {
		c, _ := b.ColumnByName("x")
		for i := 0; i < b.RowCount(); i++ {
			rows = append(rows, c.Get(i).I)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{1, 2, 3}
	if len(rows) != len(want) {
		t.Fatalf("got %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("got %v, want %v", rows, want)
		}
	}
}
