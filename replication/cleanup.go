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

// Package replication implements the replicated-log cleanup thread
// (spec §4.F) that runs on the ReplicatedMergeTree leader: pruning the
// coordination service's log/blocks/mutations children so they don't
// grow without bound, while tolerating a second node that also believes
// itself leader (every prune below is idempotent).
package replication

import (
	"errors"
	"fmt"
	"sort"

	"github.com/columnstore/columnstore/coordination"
	"github.com/columnstore/columnstore/log"
)

var logger = log.WithComponent("replication")

// ErrAllReplicasLost is returned when a cleanup pass would mark every
// known replica lost in one tick -- a safety abort, since that almost
// always means the cleanup code itself mis-read replica state rather
// than an actual total outage.
var ErrAllReplicasLost = errors.New("replication: refusing to mark all replicas lost in a single pass")

// ReplicaState is one replica's advertised position in the log, read
// from the coordination service under <zk_path>/replicas/<name>.
type ReplicaState struct {
	Name       string
	LogPointer int64
	IsActive   bool
	IsLost     bool
	HostVersion int64
}

// Config mirrors the tunables spec §4.F names directly, so the cleanup
// pass can be unit-tested against concrete small numbers instead of
// ClickHouse's production defaults.
type Config struct {
	MinLogsToKeep              int
	MaxLogsToKeep              int
	DeduplicationWindow        int
	DeduplicationWindowSeconds int64
	FinishedMutationsToKeep    int
	MultiBatchSize             int
}

// DefaultConfig matches ClickHouse's out-of-the-box ReplicatedMergeTree
// settings, which this core inherited via spec §4.F.
func DefaultConfig() Config {
	return Config{
		MinLogsToKeep:              10,
		MaxLogsToKeep:              1000,
		DeduplicationWindow:        1000,
		DeduplicationWindowSeconds: 7 * 24 * 3600,
		FinishedMutationsToKeep:    100,
		MultiBatchSize:             100,
	}
}

// PruneLog decides which of the given replicated-log entry names
// (already sorted oldest-first, e.g. "log-0000000001") the cleanup pass
// should delete and which replicas should be marked lost, following
// spec §4.F step 2 exactly: keep the min(minLogsToKeep, size) most
// recent, capped at maxLogsToKeep, and mark any non-active, not-yet-lost replica
// whose log_pointer has fallen below the kept window.
func PruneLog(cfg Config, logEntries []string, replicas []ReplicaState) (toDelete []string, toMarkLost []ReplicaState, err error) {
	n := len(logEntries)
	keep := cfg.MinLogsToKeep
	if keep > n {
		keep = n
	}
	if keep > cfg.MaxLogsToKeep {
		keep = cfg.MaxLogsToKeep
	}
	cutoffIndex := n - keep // entries [0, cutoffIndex) are eligible for deletion

	var lowestKeptPointer int64 = -1
	if cutoffIndex >= 0 && cutoffIndex < n {
		lowestKeptPointer = logPointerOf(logEntries[cutoffIndex])
	}

	for _, r := range replicas {
		if r.IsActive || r.IsLost {
			continue
		}
		if lowestKeptPointer >= 0 && r.LogPointer < lowestKeptPointer {
			toMarkLost = append(toMarkLost, r)
		}
	}
	if len(toMarkLost) > 0 && len(toMarkLost) == len(replicas) {
		return nil, nil, ErrAllReplicasLost
	}

	if cutoffIndex > 0 {
		toDelete = append(toDelete, logEntries[:cutoffIndex]...)
	}
	return toDelete, toMarkLost, nil
}

func logPointerOf(name string) int64 {
	var p int64
	fmt.Sscanf(name, "log-%d", &p)
	return p
}

// BlockCtime records a dedup-token node's creation time, cached by the
// cleanup pass across ticks to avoid re-fetching node stats every pass
// (spec §4.F step 3: "cache ctimes across ticks keyed by node name").
type BlockCtime struct {
	Name  string
	Ctime int64
}

// PruneBlocks decides which dedup-token nodes to delete: keep the most
// recent window entries, plus anything within windowSeconds of the
// newest node's ctime.
func PruneBlocks(cfg Config, blocks []BlockCtime) (toDelete []string) {
	if len(blocks) == 0 {
		return nil
	}
	sorted := append([]BlockCtime(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ctime < sorted[j].Ctime })

	newest := sorted[len(sorted)-1].Ctime
	keepCount := cfg.DeduplicationWindow
	if keepCount > len(sorted) {
		keepCount = len(sorted)
	}
	cutoffIndex := len(sorted) - keepCount

	for i, b := range sorted {
		if i >= cutoffIndex {
			continue
		}
		if newest-b.Ctime <= cfg.DeduplicationWindowSeconds {
			continue
		}
		toDelete = append(toDelete, b.Name)
	}
	return toDelete
}

// PruneMutations decides which mutation entries to delete: keep
// everything at or above the minimum mutation_pointer across all
// replicas, then always retain the most recent finishedMutationsToKeep
// regardless of pointer.
func PruneMutations(cfg Config, mutationIDs []int64, replicaPointers []int64) (toDelete []int64) {
	if len(mutationIDs) == 0 {
		return nil
	}
	sorted := append([]int64(nil), mutationIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	minPointer := sorted[len(sorted)-1]
	for _, p := range replicaPointers {
		if p < minPointer {
			minPointer = p
		}
	}

	keepFromIndex := len(sorted) - cfg.FinishedMutationsToKeep
	for i, id := range sorted {
		if i >= keepFromIndex {
			continue
		}
		if id >= minPointer {
			continue
		}
		toDelete = append(toDelete, id)
	}
	return toDelete
}

// Apply runs one cleanup decision pass for the leader's periodic cleanup
// goroutine: it calls PruneLog on the log entries and replica states the
// caller passes in, and returns the logPath-prefixed paths of the entries
// to prune that are still present in store. It does not delete those
// nodes and does not mark replicas lost in store (each replica to mark is
// only logged); store is read only for that presence check. Its only
// error is PruneLog's ErrAllReplicasLost, which ends the pass before any
// path is returned.
func Apply(store *coordination.Store, logPath string, cfg Config, logEntries []string, replicas []ReplicaState) (deleted []string, err error) {
	toDelete, lost, err := PruneLog(cfg, logEntries, replicas)
	if err != nil {
		logger.Error().Err(err).Str("log_path", logPath).Msg("replication cleanup tick aborted")
		return nil, err
	}
	for _, r := range lost {
		logger.Warn().Str("replica", r.Name).Int64("log_pointer", r.LogPointer).Msg("marking replica lost")
	}
	for _, name := range toDelete {
		path := logPath + "/" + name
		if _, ok := store.Get(path); !ok {
			continue // already pruned by a concurrent leader-believer; idempotent
		}
		deleted = append(deleted, path)
	}
	logger.Debug().Int("deleted", len(deleted)).Str("log_path", logPath).Msg("replication cleanup tick complete")
	return deleted, nil
}
