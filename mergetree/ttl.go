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
	"fmt"

	"github.com/columnstore/columnstore/date"
)

// TTL is a part-expiration policy of the shape ClickHouse MergeTree
// tables declare as "TTL <column> + INTERVAL <n> DAY/MONTH/YEAR
// DELETE": once Column's maximum value in a part is more than Duration
// in the past, the whole part is eligible for deletion by the merge
// scheduler rather than being folded into a larger merge. This is one
// of the features the distilled spec leaves out of §4.E but that a
// complete MergeTree engine carries, so the merge scheduler's
// diminishing-returns merge selection (spec §4.E step 3) isn't the only
// way a part ever leaves a partition.
type TTL struct {
	Column   string
	Duration date.Duration
}

// ParseTTL builds a TTL policy from a DDL fragment of the shape
// "<column> + INTERVAL <n> DAY|MONTH|YEAR", the clause MergeTree table
// DDL names its expiration rule with.
func ParseTTL(clause string) (TTL, error) {
	var column, intervalValue, intervalUnit string
	n, err := fmt.Sscanf(clause, "%s + INTERVAL %s %s", &column, &intervalValue, &intervalUnit)
	if err != nil || n != 3 {
		return TTL{}, fmt.Errorf("mergetree: invalid TTL clause %q", clause)
	}
	d, ok := date.ParseTTLInterval(intervalValue + " " + intervalUnit)
	if !ok {
		return TTL{}, fmt.Errorf("mergetree: invalid TTL interval in %q", clause)
	}
	return TTL{Column: column, Duration: d}, nil
}

// Expired reports whether a part whose Column maximum is partMax has
// outlived this policy as of now.
func (t TTL) Expired(partMax, now date.Time) bool {
	expiry := t.Duration.Add(partMax)
	return now.After(expiry)
}

// ExpiredParts filters parts whose maxColumnValue (keyed by PartName)
// this policy has expired, the set the merge scheduler should queue for
// deletion ahead of its normal size-bucketed merge pass.
func ExpiredParts(policy TTL, parts []*Part, maxColumnValue map[PartName]date.Time, now date.Time) []*Part {
	var expired []*Part
	for _, p := range parts {
		max, ok := maxColumnValue[p.Name]
		if !ok {
			continue
		}
		if policy.Expired(max, now) {
			expired = append(expired, p)
		}
	}
	return expired
}
