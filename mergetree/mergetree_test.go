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

package mergetree

import "testing"

func TestPartNameRoundTrip(t *testing.T) {
	p := PartName{Partition: "202607", MinBlock: 10, MaxBlock: 20, Level: 1}
	parsed, err := ParsePartName(p.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != p {
		t.Fatalf("got %+v, want %+v", parsed, p)
	}
}

func TestPartNameRoundTripWithMutation(t *testing.T) {
	p := PartName{Partition: "202607", MinBlock: 10, MaxBlock: 20, Level: 1, Mutation: 5}
	parsed, err := ParsePartName(p.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != p {
		t.Fatalf("got %+v, want %+v", parsed, p)
	}
}

func TestPartNameOverlap(t *testing.T) {
	a := PartName{Partition: "p", MinBlock: 0, MaxBlock: 10}
	b := PartName{Partition: "p", MinBlock: 5, MaxBlock: 15}
	c := PartName{Partition: "p", MinBlock: 11, MaxBlock: 15}
	if !a.Overlaps(b) {
		t.Fatal("expected overlap")
	}
	if a.Overlaps(c) {
		t.Fatal("expected no overlap")
	}
}

func rangeOf(col int, min, max int64) Range {
	return Range{Column: col, Min: &min, Max: &max}
}

// TestPKConditionPruningSoundness exercises spec §8's PK-pruning soundness
// property: whenever the condition evaluates CanBeTrue=false for a
// granule's tuple range, no row in that range could actually satisfy the
// underlying predicate -- so pruning it never drops a real match. This
// checks the contrapositive directly: for every tuple actually inside
// [left,right] that satisfies the scalar condition, MayMatch must report
// true (i.e. the granule is never wrongly pruned).
func TestPKConditionPruningSoundness(t *testing.T) {
	cond := &Condition{RPN: []Element{{Kind: InRange, Range: rangeOf(0, 10, 20)}}}

	cases := []struct {
		left, right Tuple
		matches     bool // whether some value of col 0 in [left,right] could be in [10,20]
	}{
		{Tuple{0}, Tuple{5}, false},
		{Tuple{25}, Tuple{30}, false},
		{Tuple{15}, Tuple{15}, true},
		{Tuple{5}, Tuple{15}, true},
		{Tuple{15}, Tuple{25}, true},
		{Tuple{10}, Tuple{20}, true},
	}
	for _, c := range cases {
		got := cond.MayMatch(c.left, c.right)
		if c.matches && !got {
			t.Fatalf("range [%v,%v]: MayMatch=false but a real match exists -- unsound pruning", c.left, c.right)
		}
		// a conservative false positive (MayMatch=true when no row actually
		// matches) is fine -- only a false negative would drop real rows.
	}
}

func TestPKConditionAndOrNot(t *testing.T) {
	cond := &Condition{RPN: []Element{
		{Kind: InRange, Range: rangeOf(0, 0, 10)},
		{Kind: InRange, Range: rangeOf(1, 0, 10)},
		{Kind: And},
	}}
	if !cond.MayMatch(Tuple{5, 5}, Tuple{5, 5}) {
		t.Fatal("expected AND of two matching ranges to be true")
	}
	if cond.MayMatch(Tuple{50, 5}, Tuple{60, 5}) {
		t.Fatal("expected AND to prune when first range cannot match")
	}
}

func TestReadPoolGetTaskTakesWholePartUnderMinMarks(t *testing.T) {
	pool := NewReadPool(
		[]*Part{{Name: PartName{Partition: "p", MaxBlock: 1}}},
		[][]MarkRange{{{Begin: 0, End: 3}}},
		[]string{"x"}, nil,
	)
	task, ok := pool.GetTask(10, 0, 1)
	if !ok {
		t.Fatal("expected a task")
	}
	if len(task.Ranges) != 1 || task.Ranges[0] != (MarkRange{Begin: 0, End: 3}) {
		t.Fatalf("expected the whole part taken, got %+v", task.Ranges)
	}
	if _, ok := pool.GetTask(10, 0, 1); ok {
		t.Fatal("expected pool to be exhausted")
	}
}

func TestReadPoolGetTaskTrimsTail(t *testing.T) {
	pool := NewReadPool(
		[]*Part{{Name: PartName{Partition: "p", MaxBlock: 1}}},
		[][]MarkRange{{{Begin: 0, End: 100}}},
		[]string{"x"}, nil,
	)
	task, ok := pool.GetTask(10, 0, 1)
	if !ok {
		t.Fatal("expected a task")
	}
	if got := task.Ranges[0].len(); got != 10 {
		t.Fatalf("expected 10 marks taken, got %d", got)
	}
	// the part should still have 90 marks remaining
	task2, ok := pool.GetTask(10, 0, 1)
	if !ok || task2.Ranges[0].len() != 10 {
		t.Fatal("expected another 10-mark task from the same part")
	}
}

func TestSchedulerDecideMergeGroupsSmallParts(t *testing.T) {
	s := &Scheduler{MinMergeSize: 1000}
	parts := []*Part{
		{Name: PartName{MinBlock: 1}, ByteSize: 500},
		{Name: PartName{MinBlock: 2}, ByteSize: 5000},
		{Name: PartName{MinBlock: 3}, ByteSize: 200},
	}
	prepend, merge := s.DecideMerge(parts)
	if len(prepend) != 1 || len(merge) != 2 {
		t.Fatalf("got prepend=%d merge=%d, want 1,2", len(prepend), len(merge))
	}
}

func TestParseTTLParsesIntervalClause(t *testing.T) {
	ttl, err := ParseTTL("event_date + INTERVAL 30 DAY")
	if err != nil {
		t.Fatal(err)
	}
	if ttl.Column != "event_date" || ttl.Duration.Day != 30 {
		t.Fatalf("got %+v, want column event_date, 30 days", ttl)
	}
}

func TestParseTTLRejectsMalformedClause(t *testing.T) {
	if _, err := ParseTTL("event_date"); err == nil {
		t.Fatal("expected an error for a clause with no INTERVAL")
	}
}

func TestReadPoolGetTaskInjectsDefaultsAndSetsReorder(t *testing.T) {
	available := map[string]ColumnFile{
		"x": {Name: "x", BinBytes: 100, MrkBytes: 10, PresentInPart: true},
	}
	pool := NewReadPool(
		[]*Part{{Name: PartName{Partition: "p", MaxBlock: 1}}},
		[][]MarkRange{{{Begin: 0, End: 3}}},
		[]string{"x", "y"}, nil,
		available,
	)
	task, ok := pool.GetTask(10, 0, 1)
	if !ok {
		t.Fatal("expected a task")
	}
	if !task.ShouldReorder {
		t.Fatal("expected should_reorder when a requested column has no file in the part")
	}
	if len(task.Columns) != 1 || task.Columns[0] != "x" {
		t.Fatalf("expected only the present column 'x' to be read, got %v", task.Columns)
	}
}

func TestReadPoolGetTaskRemovesSyntheticPrewhereColumn(t *testing.T) {
	pool := NewReadPool(
		[]*Part{{Name: PartName{Partition: "p", MaxBlock: 1}}},
		[][]MarkRange{{{Begin: 0, End: 3}}},
		[]string{"x"}, []string{"filter_only"},
	)
	task, ok := pool.GetTask(10, 0, 1)
	if !ok {
		t.Fatal("expected a task")
	}
	if !task.RemovePrewhereColumn {
		t.Fatal("expected remove_prewhere_column when the PREWHERE column isn't a requested output column")
	}
}

func TestInjectDefaultsPicksSmallestColumnWhenNoneRequested(t *testing.T) {
	available := map[string]ColumnFile{
		"a": {Name: "a", BinBytes: 100, MrkBytes: 10, PresentInPart: true},
		"b": {Name: "b", BinBytes: 5, MrkBytes: 1, PresentInPart: true},
	}
	read, reorder, err := InjectDefaults([]string{"missing"}, available)
	if err != nil {
		t.Fatal(err)
	}
	if !reorder {
		t.Fatal("expected should_reorder when a requested column is absent")
	}
	if len(read) != 1 || read[0] != "b" {
		t.Fatalf("expected smallest column 'b' injected, got %v", read)
	}
}
