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

import (
	"github.com/columnstore/columnstore/block"
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/errs"
	"github.com/columnstore/columnstore/wire"
)

// StorageDistributed is the Distributed table engine: a thin view over
// (Cluster, RemoteDatabase, RemoteTable) that fans SELECT out to every
// shard and requires INSERT to target exactly one shard, the engine
// definition spec §4.G assigns the "Distributed(cluster, db, table,
// [sharding_key])" storage parameters.
type StorageDistributed struct {
	Cluster        Cluster
	RemoteDatabase string
	RemoteTable    string
	ShardingKeyExpr string // empty means "no sharding key configured"
	Policy         LoadBalancing
	SelfHostname   string
}

// Select fans a query out to every shard at the given processing stage,
// returning a single merged block.Stream. With stage ==
// StageWithMergeableState, each shard returns its partial aggregation
// state rather than final rows, and the caller is expected to merge
// those states locally (spec §4.G's two-stage distributed GROUP BY).
func (s *StorageDistributed) Select(sql string, stage wire.ProcessingStage, tracker *column.Tracker) (block.Stream, error) {
	if len(s.Cluster.Shards) == 0 {
		return nil, errs.New(errs.InvalidInput, "STORAGE_REQUIRES_PARAMETER", "cluster %q has no shards configured", s.Cluster.Name)
	}
	rewritten := RewriteForShard(sql, s.RemoteDatabase, s.RemoteTable)
	streams := make([]block.Stream, len(s.Cluster.Shards))
	for i, shard := range s.Cluster.Shards {
		q := wire.NewQuery(rewritten)
		q.Stage = stage
		addrs, err := s.orderedReplicas(shard)
		if err != nil {
			return nil, err
		}
		streams[i] = NewReplicaFailover(addrs, q, tracker)
	}
	return block.NewUnion(streams), nil
}

// orderedReplicas returns shard's replica addresses ordered so the
// caller's ReplicaFailover tries the policy-preferred replica first,
// falling back to the remainder in their existing order.
func (s *StorageDistributed) orderedReplicas(shard Shard) ([]string, error) {
	first, err := PickReplica(shard, s.Policy, s.SelfHostname)
	if err != nil {
		return nil, err
	}
	ordered := make([]string, 0, len(shard.Replicas))
	ordered = append(ordered, first)
	for _, r := range shard.Replicas {
		if r != first {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// ShardForInsert picks the single shard an INSERT row belongs to. It
// fails with errs.ErrStorageParameter unless the table either has
// exactly one shard or a sharding key was configured, matching spec
// §4.G's write-path restriction exactly ("STORAGE_REQUIRES_PARAMETER
// unless a single shard or an explicit sharding key is available").
func (s *StorageDistributed) ShardForInsert(shardingKeyValue string) (Shard, error) {
	switch {
	case len(s.Cluster.Shards) == 1:
		return s.Cluster.Shards[0], nil
	case s.ShardingKeyExpr != "":
		idx := ShardFor(shardingKeyValue, len(s.Cluster.Shards))
		return s.Cluster.Shards[idx], nil
	default:
		return Shard{}, errs.ErrStorageParameter
	}
}
