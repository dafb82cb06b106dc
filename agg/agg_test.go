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

package agg

import (
	"math"
	"testing"
)

func TestTableGetOrCreateAndMerge(t *testing.T) {
	a := NewTable(NewSumState)
	a.GetOrCreate("x").(*SumState).Add(1)
	a.GetOrCreate("x").(*SumState).Add(2)
	a.GetOrCreate("y").(*SumState).Add(10)

	b := NewTable(NewSumState)
	b.GetOrCreate("x").(*SumState).Add(5)
	b.GetOrCreate("z").(*SumState).Add(7)

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("got %d groups, want 3", a.Len())
	}
	if got := a.GetOrCreate("x").(*SumState).Sum; got != 8 {
		t.Fatalf("x sum = %v, want 8", got)
	}
}

// TestAggregationMergeAssociativity exercises spec §8's "merge is
// associative" property: (A merge B) merge C == A merge (B merge C).
func TestAggregationMergeAssociativity(t *testing.T) {
	build := func(vals map[Key]float64) *Table {
		tb := NewTable(NewSumState)
		for k, v := range vals {
			tb.GetOrCreate(k).(*SumState).Add(v)
		}
		return tb
	}
	c := build(map[Key]float64{"y": 5, "z": 6})

	left := build(map[Key]float64{"x": 1, "y": 2})
	left.Merge(build(map[Key]float64{"x": 3, "z": 4}))
	left.Merge(c)

	right := build(map[Key]float64{"x": 1, "y": 2})
	bc := build(map[Key]float64{"x": 3, "z": 4})
	bc.Merge(c)
	right.Merge(bc)

	for _, k := range []Key{"x", "y", "z"} {
		lv := left.GetOrCreate(k).(*SumState).Sum
		rv := right.GetOrCreate(k).(*SumState).Sum
		if lv != rv {
			t.Fatalf("key %q: left=%v right=%v, merge not associative", k, lv, rv)
		}
	}
}

func TestTwoLevelTableShardsDeterministically(t *testing.T) {
	tl1 := NewTwoLevelTable(NewSumState)
	tl2 := NewTwoLevelTable(NewSumState)
	for i := 0; i < 1000; i++ {
		k := Key(rune('a' + i%26))
		tl1.GetOrCreate(k).(*SumState).Add(1)
	}
	for i := 0; i < 500; i++ {
		k := Key(rune('a' + i%26))
		tl2.GetOrCreate(k).(*SumState).Add(1)
	}
	tl1.Merge(tl2)
	if tl1.Len() == 0 {
		t.Fatal("expected groups after merge")
	}
}

func TestQuantileTimingPromotionAndMonotonicity(t *testing.T) {
	q := NewQuantileTiming()
	for i := 0; i < 31; i++ {
		q.Insert(uint32(i))
	}
	if q.dense {
		t.Fatal("should still be Tiny at 31 samples")
	}
	q.Insert(31)
	if !q.dense {
		t.Fatal("should promote to Dense on the 32nd insert")
	}

	prev := -1.0
	for _, lvl := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		v := q.Get(lvl)
		if v < prev {
			t.Fatalf("quantile not monotonic: level %v gave %v after %v", lvl, v, prev)
		}
		prev = v
	}
}

func TestQuantileTimingSaturates(t *testing.T) {
	q := NewQuantileTiming()
	for i := 0; i < 40; i++ {
		q.Insert(qtBigCeiling + 1000)
	}
	if got := q.Get(1.0); got != qtBigCeiling {
		t.Fatalf("expected saturation at %d, got %v", qtBigCeiling, got)
	}
}

func TestQuantileTimingEmptyIsNaN(t *testing.T) {
	q := NewQuantileTiming()
	if v := q.Get(0.5); !math.IsNaN(v) {
		t.Fatalf("expected NaN for empty state, got %v", v)
	}
}

func TestQuantileTimingMergeStaysTinyUnderCapacity(t *testing.T) {
	a := NewQuantileTiming()
	b := NewQuantileTiming()
	for i := 0; i < 10; i++ {
		a.Insert(uint32(i))
	}
	for i := 0; i < 10; i++ {
		b.Insert(uint32(i))
	}
	a.Merge(b)
	if a.dense {
		t.Fatal("combined count (20) is within capacity, should stay Tiny")
	}
}

func TestHyperLogLogMergeIsBucketwiseMax(t *testing.T) {
	a := NewHyperLogLog()
	b := NewHyperLogLog()
	for i := uint64(0); i < 5000; i++ {
		a.Add(splitmix(i))
	}
	for i := uint64(5000); i < 10000; i++ {
		b.Add(splitmix(i))
	}
	a.Merge(b)
	est := a.Estimate()
	if est < 7000 || est > 13000 {
		t.Fatalf("estimate %d too far from true cardinality 10000", est)
	}
}

func splitmix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
