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

import (
	"testing"

	"github.com/columnstore/columnstore/date"
)

func TestMergeTuplesProducesSortedOrder(t *testing.T) {
	a := &Part{PrimaryIndex: []Tuple{{1}, {4}, {7}}}
	b := &Part{PrimaryIndex: []Tuple{{2}, {3}, {9}}}
	c := &Part{PrimaryIndex: []Tuple{{5}, {6}, {8}}}

	got := MergeTuples([]*Part{a, b, c})
	if len(got) != 9 {
		t.Fatalf("expected 9 merged tuples, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Compare(got[i]) > 0 {
			t.Fatalf("merged sequence not sorted at index %d: %v then %v", i, got[i-1], got[i])
		}
	}
	want := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for i, w := range want {
		if got[i][0] != w {
			t.Fatalf("index %d: want %d, got %d", i, w, got[i][0])
		}
	}
}

func TestMergeTuplesSkipsEmptyParts(t *testing.T) {
	a := &Part{PrimaryIndex: []Tuple{{1}, {2}}}
	empty := &Part{}
	got := MergeTuples([]*Part{a, empty})
	if len(got) != 2 {
		t.Fatalf("expected empty part to contribute nothing, got %d entries", len(got))
	}
}

func TestTTLExpired(t *testing.T) {
	policy := TTL{Column: "d", Duration: date.Duration{Day: 30}}
	partMax := date.Date(2026, 1, 1, 0, 0, 0, 0)

	notYet := date.Date(2026, 1, 20, 0, 0, 0, 0)
	if policy.Expired(partMax, notYet) {
		t.Fatal("part should not be expired after only 19 days")
	}
	expired := date.Date(2026, 2, 5, 0, 0, 0, 0)
	if !policy.Expired(partMax, expired) {
		t.Fatal("part should be expired more than 30 days after its max value")
	}
}

func TestExpiredPartsFiltersOnlyExpired(t *testing.T) {
	policy := TTL{Column: "d", Duration: date.Duration{Day: 30}}
	old := &Part{Name: PartName{Partition: "p", MinBlock: 1, MaxBlock: 1}}
	fresh := &Part{Name: PartName{Partition: "p", MinBlock: 2, MaxBlock: 2}}
	maxValues := map[PartName]date.Time{
		old.Name:   date.Date(2026, 1, 1, 0, 0, 0, 0),
		fresh.Name: date.Date(2026, 7, 1, 0, 0, 0, 0),
	}
	now := date.Date(2026, 7, 31, 0, 0, 0, 0)

	got := ExpiredParts(policy, []*Part{old, fresh}, maxValues, now)
	if len(got) != 1 || got[0] != old {
		t.Fatalf("expected only the old part to be expired, got %v", got)
	}
}
