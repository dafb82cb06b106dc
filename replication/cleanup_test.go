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

package replication

import (
	"fmt"
	"testing"
)

func logNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("log-%010d", i)
	}
	return names
}

func TestPruneLogKeepsAtLeastMinLogs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLogsToKeep = 5
	cfg.MaxLogsToKeep = 1000
	entries := logNames(20)

	toDelete, _, err := PruneLog(cfg, entries, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(toDelete) != 15 {
		t.Fatalf("expected 15 entries eligible for deletion, got %d", len(toDelete))
	}
	for _, d := range toDelete {
		for _, kept := range entries[15:] {
			if d == kept {
				t.Fatalf("deleted an entry that should have been kept: %s", d)
			}
		}
	}
}

func TestPruneLogMarksInactiveReplicasLost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLogsToKeep = 5
	entries := logNames(20)
	replicas := []ReplicaState{
		{Name: "r1", LogPointer: 0, IsActive: false},  // far behind -> lost
		{Name: "r2", LogPointer: 19, IsActive: false},  // caught up -> not lost
		{Name: "r3", LogPointer: 18, IsActive: true},  // active -> never marked lost
	}
	_, lost, err := PruneLog(cfg, entries, replicas)
	if err != nil {
		t.Fatal(err)
	}
	if len(lost) != 1 || lost[0].Name != "r1" {
		t.Fatalf("expected only r1 marked lost, got %+v", lost)
	}
}

func TestPruneLogAbortsIfAllReplicasWouldBeLost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLogsToKeep = 5
	entries := logNames(20)
	replicas := []ReplicaState{
		{Name: "r1", LogPointer: 0, IsActive: false},
		{Name: "r2", LogPointer: 1, IsActive: false},
	}
	_, _, err := PruneLog(cfg, entries, replicas)
	if err != ErrAllReplicasLost {
		t.Fatalf("expected ErrAllReplicasLost, got %v", err)
	}
}

func TestPruneBlocksKeepsRecentWindowAndFreshCtimes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeduplicationWindow = 2
	cfg.DeduplicationWindowSeconds = 100

	blocks := []BlockCtime{
		{Name: "old-stale", Ctime: 0},      // outside window, stale -> delete
		{Name: "old-fresh", Ctime: 950},    // outside window count, but within 100s of newest(1000) -> keep
		{Name: "mid", Ctime: 999},          // within recent-count window -> keep
		{Name: "newest", Ctime: 1000},      // within recent-count window -> keep
	}
	toDelete := PruneBlocks(cfg, blocks)
	if len(toDelete) != 1 || toDelete[0] != "old-stale" {
		t.Fatalf("expected only old-stale deleted, got %v", toDelete)
	}
}

func TestPruneMutationsRetainsMinPointerAndRecentTail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FinishedMutationsToKeep = 1

	ids := []int64{1, 2, 3, 4, 5}
	replicaPointers := []int64{3, 5} // min pointer is 3

	toDelete := PruneMutations(cfg, ids, replicaPointers)
	// ids below min pointer (3) and not in the always-kept tail of 1 (id 5) are deleted.
	want := map[int64]bool{1: true, 2: true}
	if len(toDelete) != len(want) {
		t.Fatalf("got %v, want deletions for %v", toDelete, want)
	}
	for _, id := range toDelete {
		if !want[id] {
			t.Fatalf("unexpected deletion of id %d", id)
		}
	}
}

// TestReplicationCleanupIdempotent exercises the cleanup-bounds property
// from spec §8: running the same pass twice over unchanged input
// produces the same decision, since two leader-believers racing must be
// safe.
func TestReplicationCleanupIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLogsToKeep = 3
	entries := logNames(10)
	replicas := []ReplicaState{{Name: "r1", LogPointer: 9, IsActive: true}}

	d1, l1, err1 := PruneLog(cfg, entries, replicas)
	d2, l2, err2 := PruneLog(cfg, entries, replicas)
	if err1 != err2 {
		t.Fatalf("errors differ across identical passes: %v vs %v", err1, err2)
	}
	if len(d1) != len(d2) || len(l1) != len(l2) {
		t.Fatalf("results differ across identical passes: (%v,%v) vs (%v,%v)", d1, l1, d2, l2)
	}
}
