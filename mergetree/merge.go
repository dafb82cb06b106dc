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

import "sort"

// DefaultMinMergeSize is the byte-size floor a part must reach before the
// scheduler leaves it alone instead of folding it into the next merge,
// grounded on db.Builder's DefaultMinMerge heuristic.
const DefaultMinMergeSize = 4 << 20

// Scheduler decides which parts in a partition to fold into the next
// merge using the same "super-simple heuristic" the teacher's builder
// uses: group everything under the size floor, leave the rest alone.
type Scheduler struct {
	MinMergeSize int64
}

func (s *Scheduler) minMergeSize() int64 {
	if s.MinMergeSize > 0 {
		return s.MinMergeSize
	}
	return DefaultMinMergeSize
}

// DecideMerge splits existing parts into prepend (left as-is) and merge
// (folded into the new part), sorted oldest-first within each group so
// merges consume parts in creation order.
func (s *Scheduler) DecideMerge(existing []*Part) (prepend, merge []*Part) {
	for _, p := range existing {
		if p.ByteSize < s.minMergeSize() {
			merge = append(merge, p)
		} else {
			prepend = append(prepend, p)
		}
	}
	byName := func(lst []*Part) {
		sort.Slice(lst, func(i, j int) bool {
			return lst[i].Name.MinBlock < lst[j].Name.MinBlock
		})
	}
	byName(prepend)
	byName(merge)
	return prepend, merge
}

// MergedName computes the PartName a merge of parts produces: the union
// of their block ranges at one level above the highest input level.
func MergedName(parts []*Part) PartName {
	out := parts[0].Name
	maxLevel := out.Level
	for _, p := range parts[1:] {
		if p.Name.MinBlock < out.MinBlock {
			out.MinBlock = p.Name.MinBlock
		}
		if p.Name.MaxBlock > out.MaxBlock {
			out.MaxBlock = p.Name.MaxBlock
		}
		if p.Name.Level > maxLevel {
			maxLevel = p.Name.Level
		}
	}
	out.Level = maxLevel + 1
	out.Mutation = 0
	return out
}

// mergeCursor tracks one input part's position while k-way merging its
// (already PK-sorted) primary-index samples alongside its siblings.
type mergeCursor struct {
	part *Part
	pos  int
}

func (c *mergeCursor) exhausted() bool { return c.pos >= len(c.part.PrimaryIndex) }
func (c *mergeCursor) tuple() Tuple    { return c.part.PrimaryIndex[c.pos] }

// MergeTuples produces the merged part's primary-index sample sequence
// by k-way merging each input part's already-sorted PrimaryIndex,
// preserving the "rows within a part are sorted by the primary
// expression" invariant (spec §3, Part entity) across the merge. A
// cursorHeap keyed by each part's current tuple keeps the merge at
// O(n log k) rather than an O(n*k) repeated linear scan.
func MergeTuples(parts []*Part) []Tuple {
	cursors := make(cursorHeap, 0, len(parts))
	for _, p := range parts {
		if len(p.PrimaryIndex) > 0 {
			cursors = append(cursors, &mergeCursor{part: p})
		}
	}
	cursors.order()

	out := make([]Tuple, 0, totalSamples(parts))
	for len(cursors) > 0 {
		top := cursors[0]
		out = append(out, top.tuple())
		top.pos++
		if top.exhausted() {
			cursors.pop()
		} else {
			cursors.fix()
		}
	}
	return out
}

func totalSamples(parts []*Part) int {
	n := 0
	for _, p := range parts {
		n += len(p.PrimaryIndex)
	}
	return n
}
