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

// ReplicaFailover wraps one shard's ordered replica list as a single
// block.Stream, trying each address in turn until one accepts the
// query, so a dead replica doesn't fail the whole shard's read (spec
// §4.G: "the parallel-replica wrapper retries the next replica on a
// connection failure before giving up on the shard").
type ReplicaFailover struct {
	block.Base

	Addrs []string
	Query wire.Query

	tracker *column.Tracker
	active  *RemoteBlockInputStream
}

// NewReplicaFailover creates a failover stream over addrs in the order
// given -- callers order addrs per their chosen LoadBalancing policy
// before constructing this (e.g. via PickReplica for a single choice,
// or the shard's full replica list for try-them-all failover).
func NewReplicaFailover(addrs []string, query wire.Query, tracker *column.Tracker) *ReplicaFailover {
	return &ReplicaFailover{Addrs: addrs, Query: query, tracker: tracker}
}

// ReadPrefix dials replicas in order until one succeeds, or returns
// errs.ErrAllTriesFailed once every address has failed.
func (r *ReplicaFailover) ReadPrefix() error {
	for _, addr := range r.Addrs {
		s := NewRemoteBlockInputStream(addr, r.Query, r.tracker)
		if err := s.ReadPrefix(); err != nil {
			logger.Warn().Str("addr", addr).Err(err).Msg("replica unreachable, trying next")
			continue
		}
		r.active = s
		return nil
	}
	return errs.ErrAllTriesFailed
}

func (r *ReplicaFailover) Read() (*block.Block, error) {
	if r.active == nil {
		return &block.Block{}, nil
	}
	return r.active.Read()
}

func (r *ReplicaFailover) ReadSuffix() error {
	if r.active == nil {
		return nil
	}
	return r.active.ReadSuffix()
}

func (r *ReplicaFailover) Cancel() {
	r.Base.Cancel()
	if r.active != nil {
		r.active.Cancel()
	}
}
