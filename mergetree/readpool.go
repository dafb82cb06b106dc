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

import "sync"

// MarkRange is a half-open [Begin, End) span of granule indices within one
// part that survived PK pruning.
type MarkRange struct {
	Begin, End int
}

func (r MarkRange) len() int { return r.End - r.Begin }

// partWork is the read pool's mutable per-part bookkeeping: the part plus
// its remaining (unconsumed) mark ranges and, if known, the column files
// available within it (for default-value injection, spec §4.E step 4).
type partWork struct {
	part      *Part
	ranges    []MarkRange
	available map[string]ColumnFile
}

func (w *partWork) remaining() int {
	n := 0
	for _, r := range w.ranges {
		n += r.len()
	}
	return n
}

// Task is what GetTask hands a worker thread: a slice of one part to read.
type Task struct {
	Part                *Part
	Ranges              []MarkRange
	Columns, PreColumns  []string
	ShouldReorder        bool
	RemovePrewhereColumn bool
}

// ReadPool hands out fixed-cost read tasks to worker threads, selecting
// parts to keep cache locality and trimming their tail of mark ranges
// (spec §4.E read path step 2), then resolving PREWHERE column removal
// (step 3) and default-value injection (step 4) into every task it hands
// out.
type ReadPool struct {
	mu             sync.Mutex
	parts          []*partWork
	columns        []string
	pre            []string
	removePrewhere bool
}

// NewReadPool creates a pool over parts (each already pruned to its
// surviving mark ranges) that will read columns, with preColumns read
// first to evaluate PREWHERE if non-empty. available holds, per part in
// the same order as parts, the column files known to exist in that part;
// a nil or short entry means column availability is unknown and
// GetTask skips default-value injection for that part.
func NewReadPool(parts []*Part, ranges [][]MarkRange, columns, preColumns []string, available ...map[string]ColumnFile) *ReadPool {
	pw := make([]*partWork, len(parts))
	for i, p := range parts {
		var avail map[string]ColumnFile
		if i < len(available) {
			avail = available[i]
		}
		pw[i] = &partWork{part: p, ranges: append([]MarkRange(nil), ranges[i]...), available: avail}
	}

	// remove_prewhere_column: the PREWHERE columns were read only to
	// evaluate the filter, not because the caller asked for them as
	// output -- drop them from the final projection when none of them
	// also appears in the requested column list.
	removePrewhere := false
	if len(preColumns) > 0 {
		requested := make(map[string]bool, len(columns))
		for _, c := range columns {
			requested[c] = true
		}
		removePrewhere = true
		for _, c := range preColumns {
			if requested[c] {
				removePrewhere = false
				break
			}
		}
	}

	return &ReadPool{parts: pw, columns: columns, pre: preColumns, removePrewhere: removePrewhere}
}

// GetTask implements the spec's getTask(min_marks, thread_id): pick the
// part at index size-1-(size*thread/threads), trim its tail of mark
// ranges by up to minMarks granules (taking the whole part if fewer than
// minMarks remain), and remove exhausted parts from the pool via
// swap-and-pop. Returns (nil, false) once every part is exhausted.
func (p *ReadPool) GetTask(minMarks, threadID, threads int) (*Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	size := len(p.parts)
	if size == 0 {
		return nil, false
	}
	idx := size - 1 - (size*threadID)/threads
	if idx < 0 {
		idx = 0
	}
	if idx >= size {
		idx = size - 1
	}
	pw := p.parts[idx]

	var taken []MarkRange
	remaining := minMarks
	for remaining > 0 && len(pw.ranges) > 0 && pw.remaining() > 0 {
		last := &pw.ranges[len(pw.ranges)-1]
		if pw.remaining() <= minMarks {
			// the part has fewer than min_marks remaining: take it whole.
			taken = append(taken, pw.ranges...)
			pw.ranges = nil
			break
		}
		if last.len() <= remaining {
			taken = append(taken, *last)
			remaining -= last.len()
			pw.ranges = pw.ranges[:len(pw.ranges)-1]
			continue
		}
		split := last.End - remaining
		taken = append(taken, MarkRange{Begin: split, End: last.End})
		last.End = split
		remaining = 0
	}
	// reverse taken back into ascending order (we consumed tail-first)
	for i, j := 0, len(taken)-1; i < j; i, j = i+1, j-1 {
		taken[i], taken[j] = taken[j], taken[i]
	}

	if pw.remaining() == 0 {
		// swap-and-pop: removal order across threads need not be FIFO,
		// only deterministic given the same input, per spec.
		p.parts[idx] = p.parts[size-1]
		p.parts = p.parts[:size-1]
	}

	task := &Task{
		Part:                 pw.part,
		Ranges:               taken,
		Columns:              p.columns,
		PreColumns:           p.pre,
		RemovePrewhereColumn: p.removePrewhere,
	}

	if pw.available != nil {
		read, shouldReorder, err := InjectDefaults(p.columns, pw.available)
		if err != nil {
			panic(err)
		}
		task.Columns = read
		task.ShouldReorder = shouldReorder
	}

	return task, true
}
