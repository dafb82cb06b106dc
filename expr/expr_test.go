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

package expr

import (
	"testing"

	"github.com/columnstore/columnstore/block"
	"github.com/columnstore/columnstore/column"
)

func intBlock(t *testing.T, names []string, cols [][]int64) *block.Block {
	t.Helper()
	out := make([]column.Column, len(cols))
	for i, vals := range cols {
		c := column.NewInt64Column(nil)
		for _, v := range vals {
			if err := c.InsertField(column.Int(v)); err != nil {
				t.Fatal(err)
			}
		}
		out[i] = c
	}
	b, err := block.New(names, out)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestApplyFunctionArithmetic(t *testing.T) {
	b := intBlock(t, []string{"a", "b"}, [][]int64{{1, 2, 3}, {10, 20, 30}})
	list := &ActionList{Actions: []Action{
		ApplyFunction{ArgNames: []string{"a", "b"}, Function: Add, ResultName: "sum"},
	}}
	out, err := list.Execute(b)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := out.ColumnByName("sum")
	if !ok {
		t.Fatal("missing sum column")
	}
	want := []int64{11, 22, 33}
	for i, w := range want {
		if got := c.Get(i).I; got != w {
			t.Fatalf("row %d: got %d want %d", i, got, w)
		}
	}
}

func TestApplyFunctionNullPropagation(t *testing.T) {
	na, err := column.WrapNullable(mustInt64(t, []int64{1, 2, 0}), []bool{false, false, true})
	if err != nil {
		t.Fatal(err)
	}
	b := column.NewInt64Column(nil)
	for _, v := range []int64{10, 20, 30} {
		b.InsertField(column.Int(v))
	}
	blk, err := block.New([]string{"a", "b"}, []column.Column{na, b})
	if err != nil {
		t.Fatal(err)
	}
	list := &ActionList{Actions: []Action{
		ApplyFunction{ArgNames: []string{"a", "b"}, Function: Add, ResultName: "sum"},
	}}
	out, err := list.Execute(blk)
	if err != nil {
		t.Fatal(err)
	}
	sum, _ := out.ColumnByName("sum")
	ns, ok := sum.(*column.Nullable)
	if !ok {
		t.Fatal("expected a Nullable result column")
	}
	if ns.IsNullAt(0) || ns.IsNullAt(1) {
		t.Fatal("rows 0,1 should not be null")
	}
	if !ns.IsNullAt(2) {
		t.Fatal("row 2 should be null (propagated from input a)")
	}
	if got := ns.Get(0).I; got != 11 {
		t.Fatalf("row 0: got %d want 11", got)
	}
}

func mustInt64(t *testing.T, vals []int64) *column.Vector[int64] {
	t.Helper()
	c := column.NewInt64Column(nil)
	for _, v := range vals {
		if err := c.InsertField(column.Int(v)); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestPrepareCatchesUnknownIdentifier(t *testing.T) {
	list := &ActionList{Actions: []Action{
		CopyColumn{SourceName: "missing", ResultName: "out"},
	}}
	if err := list.Prepare([]string{"a"}); err == nil {
		t.Fatal("expected UNKNOWN_IDENTIFIER")
	}
}

func TestPrepareCatchesDuplicateResult(t *testing.T) {
	list := &ActionList{Actions: []Action{
		CopyColumn{SourceName: "a", ResultName: "a"},
	}}
	if err := list.Prepare([]string{"a"}); err == nil {
		t.Fatal("expected DUPLICATE_COLUMN")
	}
}

func TestPrepareOK(t *testing.T) {
	list := &ActionList{Actions: []Action{
		CopyColumn{SourceName: "a", ResultName: "b"},
		RemoveColumn{SourceName: "a"},
		Project{Pairs: [][2]string{{"b", "b"}}},
	}}
	if err := list.Prepare([]string{"a"}); err != nil {
		t.Fatal(err)
	}
}

func TestArrayMapDoublesElements(t *testing.T) {
	arr := column.NewArray(column.NewInt64Column(nil))
	if err := arr.AppendRow([]column.Field{column.Int(1), column.Int(2)}); err != nil {
		t.Fatal(err)
	}
	if err := arr.AppendRow([]column.Field{column.Int(3)}); err != nil {
		t.Fatal(err)
	}
	blk, err := block.New([]string{"xs"}, []column.Column{arr})
	if err != nil {
		t.Fatal(err)
	}
	list := &ActionList{Actions: []Action{
		ArrayMap{ArrayName: "xs", ResultName: "ys", Fn: func(f column.Field) (column.Field, error) {
			return column.Int(f.I * 2), nil
		}},
	}}
	out, err := list.Execute(blk)
	if err != nil {
		t.Fatal(err)
	}
	ys, _ := out.ColumnByName("ys")
	if got := ys.Get(0).A; len(got) != 2 || got[0].I != 2 || got[1].I != 4 {
		t.Fatalf("row 0: got %v", got)
	}
	if got := ys.Get(1).A; len(got) != 1 || got[0].I != 6 {
		t.Fatalf("row 1: got %v", got)
	}
}

func TestFusedKernelMatchesUnfused(t *testing.T) {
	b := intBlock(t, []string{"a", "b", "c"}, [][]int64{{1, 2}, {10, 20}, {100, 200}})
	fused := FuseArithmetic("a_plus_b_plus_c", []arithOp{Add, Add})
	list := &ActionList{Actions: []Action{
		ApplyFunction{ArgNames: []string{"a", "b", "c"}, Function: fused, ResultName: "total"},
	}}
	out, err := list.Execute(b)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := out.ColumnByName("total")
	want := []int64{111, 222}
	for i, w := range want {
		if got := c.Get(i).I; got != w {
			t.Fatalf("row %d: got %d want %d", i, got, w)
		}
	}
}
