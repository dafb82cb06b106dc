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

//go:build linux
// +build linux

package diskspace

import "golang.org/x/sys/unix"

func init() {
	usage = linuxUsage
}

// linuxUsage probes free/total space with statfs(2), the same call
// spec §4.J describes ("statvfs.f_bfree * f_bsize"); we use
// golang.org/x/sys/unix's Statfs_t instead of the narrower stdlib
// syscall package so the field names stay portable across the other
// Unixes this package may eventually build on.
func linuxUsage(dir string) (free, total int64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, 0, err
	}
	bsize := int64(st.Bsize)
	return int64(st.Bfree) * bsize, int64(st.Blocks) * bsize, nil
}
