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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/columnstore/columnstore/fsutil"
)

// ListPartDirs lists the immediate subdirectories of root (a disk's
// configured path) matching pattern, in lexicographical order, falling
// back to fsutil.PartDirPattern (the canonical part-directory name
// shape) when pattern is empty. A MergeTree storage backend reopening
// after restart uses this to rediscover which part directories already
// exist on a disk before it starts accepting new merges or inserts.
func ListPartDirs(root, pattern string) ([]string, error) {
	f := os.DirFS(root)
	var names []string
	err := fsutil.VisitPartDirs(f, ".", pattern, func(d fsutil.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		names = append(names, d.Name())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("diskspace: list part dirs under %q: %w", root, err)
	}
	return names, nil
}

// PartitionUsageBytes sums on-disk bytes under root grouped by the
// partition component of each part directory's name, letting an
// operator see which partitions (e.g. which months, for a date-keyed
// table) are consuming the most space on a disk. Entries that don't
// parse as a part directory name are skipped rather than erroring, since
// a disk root may also hold a temporary or detached directory.
func PartitionUsageBytes(root string) (map[string]int64, error) {
	f := os.DirFS(root)
	totals := make(map[string]int64)
	err := fsutil.VisitPartDirs(f, ".", "", func(d fsutil.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		partition, _, _, _, ok := fsutil.MatchPartDir(d.Name())
		if !ok {
			return nil
		}
		size, err := DiskUsageBytes(filepath.Join(root, d.Name()))
		if err != nil {
			return err
		}
		totals[partition] += size
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("diskspace: partition usage under %q: %w", root, err)
	}
	return totals, nil
}

// DiskUsageBytes sums the apparent size of every regular file under a
// disk's root, used to cross-check Disk's in-memory reservation
// accounting against what's actually on the filesystem.
func DiskUsageBytes(root string) (int64, error) {
	f := os.DirFS(root)
	var total int64
	err := fsutil.WalkDir(f, ".", "", "", func(path string, d fsutil.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil && err != fs.SkipDir {
		return 0, fmt.Errorf("diskspace: walk %q: %w", root, err)
	}
	return total, nil
}
