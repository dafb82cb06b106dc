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

package diskspace

import (
	"os"
	"path/filepath"
	"testing"
)

func withFakeUsage(t *testing.T, free, total int64) {
	t.Helper()
	old := usage
	t.Cleanup(func() { usage = old })
	usage = func(dir string) (int64, int64, error) { return free, total, nil }
}

func TestTryReserveSucceedsUnderFreeSpace(t *testing.T) {
	withFakeUsage(t, 100<<20, 200<<20)
	d := NewDisk("/data", 0)
	r, ok := d.TryReserve(10 << 20)
	if !ok {
		t.Fatal("expected reservation to succeed")
	}
	if d.Reserved() != 10<<20 {
		t.Fatalf("got reserved=%d, want %d", d.Reserved(), 10<<20)
	}
	r.Release()
	if d.Reserved() != 0 {
		t.Fatalf("expected reserved=0 after release, got %d", d.Reserved())
	}
}

func TestTryReserveFailsWhenBelowKeepFree(t *testing.T) {
	withFakeUsage(t, 20<<20, 200<<20) // only 20 MiB free
	d := NewDisk("/data", 0)          // keepFreeSlack alone (30 MiB) already exceeds free
	_, ok := d.TryReserve(1)
	if ok {
		t.Fatal("expected reservation to fail when free space is under the keep-free slack")
	}
}

func TestTryReserveAccountsForPriorReservations(t *testing.T) {
	withFakeUsage(t, 100<<20, 200<<20)
	d := NewDisk("/data", 0)
	r1, ok := d.TryReserve(60 << 20)
	if !ok {
		t.Fatal("first reservation should succeed")
	}
	// 100 MiB free - 30 MiB slack - 60 MiB reserved = 10 MiB available; a
	// second 20 MiB reservation must fail.
	_, ok = d.TryReserve(20 << 20)
	if ok {
		t.Fatal("second reservation should fail: insufficient remaining space")
	}
	r1.Release()
	r2, ok := d.TryReserve(20 << 20)
	if !ok {
		t.Fatal("reservation should succeed again once the first is released")
	}
	r2.Release()
}

func TestVolumeReserveRoundRobins(t *testing.T) {
	withFakeUsage(t, 100<<20, 200<<20)
	d1 := NewDisk("/d1", 0)
	d2 := NewDisk("/d2", 0)
	v := NewVolume("main", []*Disk{d1, d2}, 0)

	for i := 0; i < 4; i++ {
		r, err := v.Reserve(1 << 20)
		if err != nil {
			t.Fatal(err)
		}
		r.Release()
	}
	// with both disks always having room, we just confirm no panics/errors
	// occur across repeated round-robin picks.
}

func TestVolumeReserveRejectsOversizedPart(t *testing.T) {
	withFakeUsage(t, 100<<20, 200<<20)
	d1 := NewDisk("/d1", 0)
	v := NewVolume("main", []*Disk{d1}, 10<<20)
	_, err := v.Reserve(20 << 20)
	if err == nil {
		t.Fatal("expected an error when the part exceeds the volume's max part size")
	}
}

func TestSchemaReserveFailsWhenEveryVolumeIsFull(t *testing.T) {
	withFakeUsage(t, 5<<20, 200<<20) // too little free for anything
	full := NewVolume("full", []*Disk{NewDisk("/full", 0)}, 0)

	schema := NewSchema("default", []*Volume{full})
	if _, err := schema.Reserve(1 << 20); err == nil {
		t.Fatal("expected reservation to fail when every volume is full")
	}
}

func TestPartitionUsageBytesGroupsByPartition(t *testing.T) {
	root := t.TempDir()
	mk := func(part string, data []byte) {
		dir := filepath.Join(root, part)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "col.bin"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mk("202607_1_1_0", make([]byte, 10))
	mk("202607_2_2_0", make([]byte, 20))
	mk("202608_1_1_0", make([]byte, 5))
	if err := os.MkdirAll(filepath.Join(root, "detached"), 0o755); err != nil {
		t.Fatal(err)
	}

	totals, err := PartitionUsageBytes(root)
	if err != nil {
		t.Fatal(err)
	}
	if totals["202607"] != 30 {
		t.Fatalf("got 202607=%d, want 30", totals["202607"])
	}
	if totals["202608"] != 5 {
		t.Fatalf("got 202608=%d, want 5", totals["202608"])
	}
	if _, ok := totals["detached"]; ok {
		t.Fatal("a non-part directory should not contribute a partition total")
	}
}
