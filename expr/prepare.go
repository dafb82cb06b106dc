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

import "github.com/columnstore/columnstore/errs"

// Prepare dry-runs the action list's Describe() bookkeeping against the
// names present in a sample block (normally a zero-row clone of the real
// input) so that unknown identifiers and duplicate result names surface
// before a single row is processed, per spec §4.C's "compiled once, ahead
// of execution" requirement.
func (l *ActionList) Prepare(inputNames []string) error {
	live := make(map[string]bool, len(inputNames))
	for _, n := range inputNames {
		live[n] = true
	}
	for _, a := range l.Actions {
		reads, result := a.Describe()
		for _, r := range reads {
			if !live[r] {
				return errs.New(errs.InvalidInput, "UNKNOWN_IDENTIFIER", "no such column %q", r)
			}
		}
		switch act := a.(type) {
		case RemoveColumn:
			delete(live, act.SourceName)
		case Project:
			kept := make(map[string]bool, len(act.Pairs))
			for _, p := range act.Pairs {
				kept[p[1]] = true
			}
			live = kept
		default:
			if result != "" {
				if live[result] {
					return errs.New(errs.InvalidInput, "DUPLICATE_COLUMN", "duplicate result column %q", result)
				}
				live[result] = true
			}
		}
	}
	return nil
}
