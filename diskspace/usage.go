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

// usage reports (free bytes, total bytes) for the filesystem backing
// dir. It's a package-level var rather than a plain function so tests
// can swap it for a fake statvfs reading without touching the real
// filesystem, the same seam the teacher uses for its own disk-usage
// probe.
var usage func(dir string) (free, total int64, err error)
