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

import "testing"

func TestRoundTripInt64(t *testing.T) {
	c := NewInt64Column(nil)
	for _, v := range []int64{1, -2, 3, 0, 42} {
		if err := c.InsertField(Int(v)); err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range []int64{1, -2, 3, 0, 42} {
		if got := c.Get(i).I; got != v {
			t.Fatalf("row %d: got %d, want %d", i, got, v)
		}
	}
}

func TestRoundTripString(t *testing.T) {
	c := NewStringColumn(nil)
	vals := []string{"", "a", "hello world", "unicode: é"}
	for _, v := range vals {
		if err := c.InsertField(String(v)); err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range vals {
		if got := c.Get(i).S; got != v {
			t.Fatalf("row %d: got %q, want %q", i, got, v)
		}
	}
}

func TestRoundTripNullable(t *testing.T) {
	inner := NewInt64Column(nil)
	n, err := NewNullable(inner, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.InsertField(Null()); err != nil {
		t.Fatal(err)
	}
	if err := n.InsertField(Int(7)); err != nil {
		t.Fatal(err)
	}
	if !n.Get(0).IsNull() {
		t.Fatal("row 0 should be null")
	}
	if n.Get(1).I != 7 {
		t.Fatal("row 1 should be 7")
	}
}

func TestNullableInNullableIllegal(t *testing.T) {
	inner := NewInt64Column(nil)
	n1, err := NewNullable(inner, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewNullable(n1, nil)
	if err == nil {
		t.Fatal("expected error wrapping a nullable in a nullable")
	}
}

func TestConstOfMultiValuedIllegal(t *testing.T) {
	inner := NewInt64Column(nil)
	inner.InsertField(Int(1))
	inner.InsertField(Int(2))
	_, err := NewConst(inner, 10)
	if err == nil {
		t.Fatal("expected error constructing Const over a multi-valued column")
	}
}

func TestFilterSizeMismatch(t *testing.T) {
	c := NewInt64Column(nil)
	c.InsertField(Int(1))
	c.InsertField(Int(2))
	_, err := c.Filter([]bool{true})
	if err == nil {
		t.Fatal("expected a size mismatch error")
	}
}

func TestFilterPopcount(t *testing.T) {
	c := NewInt64Column(nil)
	for i := int64(0); i < 5; i++ {
		c.InsertField(Int(i))
	}
	out, err := c.Filter([]bool{true, false, true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 3 {
		t.Fatalf("got %d rows, want 3", out.Len())
	}
	want := []int64{0, 2, 4}
	for i, w := range want {
		if got := out.Get(i).I; got != w {
			t.Fatalf("row %d: got %d want %d", i, got, w)
		}
	}
}

func TestReplicatePreservesTotalSize(t *testing.T) {
	c := NewInt64Column(nil)
	for i := int64(0); i < 3; i++ {
		c.InsertField(Int(i))
	}
	offsets := []int{2, 2, 5} // row0 x2, row1 x0, row2 x3
	out, err := c.Replicate(offsets)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != offsets[len(offsets)-1] {
		t.Fatalf("got %d rows, want %d", out.Len(), offsets[len(offsets)-1])
	}
}

func TestSortStability(t *testing.T) {
	c := NewInt64Column(nil)
	// two equal keys (value 1) at positions 0 and 2; stability requires
	// their relative order in the permutation match input order.
	vals := []int64{1, 0, 1, -1}
	for _, v := range vals {
		c.InsertField(Int(v))
	}
	perm, err := c.GetPermutation(false, -1, NullsFirst)
	if err != nil {
		t.Fatal(err)
	}
	// expect ascending: -1(idx3), 0(idx1), 1(idx0), 1(idx2)
	want := []int{3, 1, 0, 2}
	for i, w := range want {
		if perm[i] != w {
			t.Fatalf("perm[%d] = %d, want %d (perm=%v)", i, perm[i], w, perm)
		}
	}
}

func TestPermuteOutOfBounds(t *testing.T) {
	c := NewInt64Column(nil)
	c.InsertField(Int(1))
	_, err := c.Permute([]int{5}, -1)
	if err == nil {
		t.Fatal("expected out-of-bound error")
	}
}

func TestLowCardinalityDedup(t *testing.T) {
	c := NewLowCardinality(nil)
	for _, s := range []string{"a", "b", "a", "a", "c"} {
		c.InsertField(String(s))
	}
	if c.dict.Len() != 3 {
		t.Fatalf("dictionary has %d entries, want 3", c.dict.Len())
	}
	if c.Get(2).S != "a" {
		t.Fatalf("row 2 = %q, want a", c.Get(2).S)
	}
}

func TestConstMaterializesNRows(t *testing.T) {
	one := NewInt64Column(nil)
	one.InsertField(Int(99))
	c, err := NewConst(one, 4)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 4 {
		t.Fatalf("got %d rows, want 4", c.Len())
	}
	for i := 0; i < 4; i++ {
		if c.Get(i).I != 99 {
			t.Fatalf("row %d = %d, want 99", i, c.Get(i).I)
		}
	}
}
