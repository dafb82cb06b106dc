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

package distributed

import "github.com/dchest/siphash"

// shardKey0/shardKey1 are the same fixed siphash keys the teacher's own
// Splitter.partition uses ("just two fixed random values"); reusing them
// means a key routed here and a blob routed by the teacher's own
// Splitter land in the same bucket for the same input, which is exactly
// the property a sharding router needs to be stable across restarts
// without persisting anything.
const (
	shardKey0 = uint64(0x5d1ec810)
	shardKey1 = uint64(0xfebed702)
)

// ShardFor deterministically maps a sharding-key value to one of
// numShards buckets, the routing function an INSERT into a Distributed
// table with a `sharding_key` parameter uses to pick exactly one shard
// (spec §4.G: "writes require a single shard target or an explicit
// sharding key").
func ShardFor(key string, numShards int) int {
	if numShards <= 0 {
		return 0
	}
	hash := siphash.Hash(shardKey0, shardKey1, []byte(key))
	maxUint64 := ^uint64(0)
	idx := hash / (maxUint64 / uint64(numShards))
	if int(idx) >= numShards {
		return numShards - 1 // guards the idx==numShards edge when hash==maxUint64
	}
	return int(idx)
}
