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

package wire

// Progress reports cumulative read/write counters for a running query,
// sent periodically so a client (or a coordinator aggregating several
// shards) can show liveness before the first Data packet arrives.
type Progress struct {
	ReadRows        uint64
	ReadBytes       uint64
	TotalRowsToRead uint64
	WrittenRows     uint64
	WrittenBytes    uint64
}

// WriteProgress sends a Progress packet.
func (c *Conn) WriteProgress(p Progress) error {
	return writeJSONFrame(c.fw, byte(ServerProgressPacket), p)
}

// Add folds another Progress's counters into p, used by a distributed
// coordinator merging progress reports from several shards into one
// stream the original client sees.
func (p *Progress) Add(other Progress) {
	p.ReadRows += other.ReadRows
	p.ReadBytes += other.ReadBytes
	p.TotalRowsToRead += other.TotalRowsToRead
	p.WrittenRows += other.WrittenRows
	p.WrittenBytes += other.WrittenBytes
}

// ProfileInfo reports final per-query execution statistics, sent once
// just before EndOfStream.
type ProfileInfo struct {
	Rows                 uint64
	Blocks               uint64
	Bytes                uint64
	AppliedLimit         bool
	RowsBeforeLimit      uint64
}

// WriteProfileInfo sends a ProfileInfo packet.
func (c *Conn) WriteProfileInfo(p ProfileInfo) error {
	return writeJSONFrame(c.fw, byte(ServerProfileInfoPacket), p)
}
