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

import "github.com/columnstore/columnstore/errs"

// ColumnFile describes one column's on-disk footprint within a part,
// enough to pick the smallest column when a row count is needed but no
// requested column has data (spec §4.E step 4).
type ColumnFile struct {
	Name           string
	BinBytes       int64
	MrkBytes       int64
	DefaultOf      []string // columns DEFAULT(col) reads to compute its value
	PresentInPart  bool
}

// InjectDefaults implements the ALTER ADD default-value-injection rule:
// for every requested column missing from the part, pull in the columns
// its DEFAULT expression needs and mark the task for re-projection; if no
// requested column is present at all, inject the smallest column (by
// .bin+.mrk size) purely to learn the row count.
func InjectDefaults(requested []string, available map[string]ColumnFile) (read []string, shouldReorder bool, err error) {
	anyPresent := false
	need := make(map[string]bool)
	for _, name := range requested {
		cf, ok := available[name]
		if !ok || !cf.PresentInPart {
			shouldReorder = true
			continue
		}
		anyPresent = true
		need[name] = true
	}
	for _, name := range requested {
		cf, ok := available[name]
		if !ok || cf.PresentInPart {
			continue
		}
		for _, dep := range cf.DefaultOf {
			need[dep] = true
		}
	}
	if !anyPresent {
		smallest, ok := smallestColumn(available)
		if !ok {
			return nil, false, errs.ErrLogical("mergetree: no column available to source a row count")
		}
		need[smallest] = true
	}
	for name := range need {
		read = append(read, name)
	}
	return read, shouldReorder, nil
}

func smallestColumn(available map[string]ColumnFile) (string, bool) {
	best := ""
	var bestSize int64 = -1
	for name, cf := range available {
		if !cf.PresentInPart {
			continue
		}
		size := cf.BinBytes + cf.MrkBytes
		if bestSize == -1 || size < bestSize {
			bestSize = size
			best = name
		}
	}
	return best, bestSize != -1
}
