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
	"os"
	"path/filepath"
)

// Commit atomically renames a temporary part directory into its final
// visible location (spec §3, Part lifecycle: "created under a temporary
// name and atomically renamed on commit"). Because os.Rename is atomic
// within one filesystem, readers either see the part fully or not at all
// -- there is no WAL or intermediate visible state.
func Commit(baseDir, tmpDirName string, final PartName) error {
	dst := filepath.Join(baseDir, final.Partition, final.String())
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Rename(filepath.Join(baseDir, tmpDirName), dst)
}
