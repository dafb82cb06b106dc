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

// Package agg implements the hash aggregation engine (spec §4.D): a
// key-layout-specialized hash table over bump-allocated per-group state
// blobs, plus the two subtle specialized states, quantileTiming and
// HyperLogLog cardinality.
package agg

import "github.com/dchest/siphash"

// Key is the dispatch-on-layout group key, matching the spec's four key
// shapes: single fixed-width key, serialized composite key, single string
// key, and the empty key set (a single bucket, used for a bare GROUP BY ()
// i.e. a whole-input aggregation).
type Key string

// State is a per-group aggregate state blob. New allocates one per key on
// first sight (the "bump arena sized by sizeOfData()" of the spec, modeled
// here as a factory rather than a real arena since Go already densely packs
// the map's value storage).
type State interface {
	Merge(other State)
}

// NewState is a per-aggregate-function constructor used to allocate a
// State the first time a key is seen.
type NewState func() State

// Table is an open-addressing-equivalent hash aggregation table, keyed by
// Key (the caller is responsible for producing a Key that matches the
// chosen layout: raw fixed-width bytes, packed composite bytes, a string
// ref, or the empty string for the empty key set).
type Table struct {
	new    NewState
	groups map[Key]State
}

// NewTable creates an empty aggregation table whose states are built by
// newState.
func NewTable(newState NewState) *Table {
	return &Table{new: newState, groups: make(map[Key]State)}
}

// GetOrCreate returns the State for key, allocating one via the table's
// NewState factory on first sight -- the "insert-or-return-slot" API the
// spec requires every hash table variant to expose uniformly.
func (t *Table) GetOrCreate(key Key) State {
	if s, ok := t.groups[key]; ok {
		return s
	}
	s := t.new()
	t.groups[key] = s
	return s
}

// Len reports the number of distinct groups seen so far.
func (t *Table) Len() int { return len(t.groups) }

// Each calls fn once per (key, state) pair. Iteration order is unspecified,
// matching a real hash table.
func (t *Table) Each(fn func(Key, State)) {
	for k, s := range t.groups {
		fn(k, s)
	}
}

// Merge folds other's groups into t, creating new groups as needed and
// calling State.Merge for groups present in both -- the "embarrassingly
// parallel" cross-thread merge step used by two-level aggregation.
func (t *Table) Merge(other *Table) {
	other.Each(func(k Key, s State) {
		if existing, ok := t.groups[k]; ok {
			existing.Merge(s)
		} else {
			t.groups[k] = s
		}
	})
}

// twoLevelThreshold is the group count past which a Table's owner should
// switch to TwoLevelTable for the rest of the aggregation (spec §4.D:
// "kicks in when the primary table exceeds a threshold"). ClickHouse uses
// 100,000; this port keeps the same order of magnitude.
const twoLevelThreshold = 100_000

// subTableCount is the fixed fan-out of a TwoLevelTable, dispatched on the
// high byte of the key's hash.
const subTableCount = 256

// TwoLevelTable shards group state across subTableCount independent Tables
// keyed by the high bits of each key's hash, so that once a single-level
// Table crosses twoLevelThreshold groups, per-thread partial tables can be
// merged one bucket at a time without any shared-table locking.
type TwoLevelTable struct {
	new  NewState
	subs [subTableCount]*Table
}

// NewTwoLevelTable creates a sharded aggregation table.
func NewTwoLevelTable(newState NewState) *TwoLevelTable {
	tl := &TwoLevelTable{new: newState}
	for i := range tl.subs {
		tl.subs[i] = NewTable(newState)
	}
	return tl
}

// ShouldPromote reports whether a single-level Table has grown past the
// point where per-thread partial tables should be kept two-level instead.
func ShouldPromote(t *Table) bool { return t.Len() > twoLevelThreshold }

// bucketKey0/bucketKey1 are fixed siphash keys, matching the
// unauthenticated, anti-collision (not cryptographic) role the teacher
// gives siphash.Hash at every other sharding/bucketing call site
// (splitter.go's Splitter.partition, ion/zion/hash.go's hash64).
const bucketKey0 = 0x5d1ec810
const bucketKey1 = 0xfebed702

func bucketOf(k Key) int {
	h := siphash.Hash(bucketKey0, bucketKey1, []byte(k))
	return int(h >> 56 % subTableCount)
}

func (tl *TwoLevelTable) GetOrCreate(key Key) State {
	return tl.subs[bucketOf(key)].GetOrCreate(key)
}

// Len sums the group counts across every sub-table.
func (tl *TwoLevelTable) Len() int {
	n := 0
	for _, s := range tl.subs {
		n += s.Len()
	}
	return n
}

// Merge merges other bucket-for-bucket, which is why the sharding is
// embarrassingly parallel: bucket i of tl only ever needs bucket i of
// other.
func (tl *TwoLevelTable) Merge(other *TwoLevelTable) {
	for i := range tl.subs {
		tl.subs[i].Merge(other.subs[i])
	}
}
