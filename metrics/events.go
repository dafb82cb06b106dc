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

// Package metrics implements the introspection surface from spec §4.K:
// a fixed enum of per-event counters, exposed both via Prometheus
// (client_golang, the way warren exposes its own counters) and as plain
// in-process values the coordination front-end's 4-letter commands can
// read without round-tripping through an HTTP scrape.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Event identifies one counter in the fixed enum spec §4.K describes
// ("per-event counters use a fixed enum with a monotonic increment").
type Event int

const (
	EventQuery Event = iota
	EventQueryFailed
	EventSelectedRows
	EventSelectedBytes
	EventInsertedRows
	EventInsertedBytes
	EventMergedRows
	EventMergedUncompressedBytes
	EventMergeTreeDataWriterBlocks
	EventReplicatedPartFetches
	EventReplicatedPartFailedFetches
	EventZooKeeperTransactions
	eventCount
)

func (e Event) String() string {
	switch e {
	case EventQuery:
		return "Query"
	case EventQueryFailed:
		return "FailedQuery"
	case EventSelectedRows:
		return "SelectedRows"
	case EventSelectedBytes:
		return "SelectedBytes"
	case EventInsertedRows:
		return "InsertedRows"
	case EventInsertedBytes:
		return "InsertedBytes"
	case EventMergedRows:
		return "MergedRows"
	case EventMergedUncompressedBytes:
		return "MergedUncompressedBytes"
	case EventMergeTreeDataWriterBlocks:
		return "MergeTreeDataWriterBlocks"
	case EventReplicatedPartFetches:
		return "ReplicatedPartFetches"
	case EventReplicatedPartFailedFetches:
		return "ReplicatedPartFailedFetches"
	case EventZooKeeperTransactions:
		return "CoordinationTransactions"
	default:
		return "Unknown"
	}
}

// Counters holds one atomic counter per Event plus a mirrored
// Prometheus CounterVec, so a single Increment call satisfies both the
// "system.events pseudo-table" and the Prometheus scrape endpoint the
// spec mentions as alternate readers of the same data.
type Counters struct {
	values  [eventCount]uint64
	vec     *prometheus.CounterVec
	latency *LatencyDigest
}

// NewCounters creates and registers a Counters against reg.
func NewCounters(reg prometheus.Registerer) *Counters {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "columnstore_events_total",
		Help: "Total count of each named introspection event.",
	}, []string{"event"})
	if reg != nil {
		reg.MustRegister(vec)
	}
	return &Counters{vec: vec, latency: NewLatencyDigest()}
}

// ObserveQueryLatency folds one query's wall-clock duration into the
// server-lifetime latency digest the "stat"/"mntr" commands report.
func (c *Counters) ObserveQueryLatency(seconds float64) {
	c.latency.Observe(seconds)
}

// LatencySummary reports the p50/p90/p99 query latency estimates
// accumulated so far.
func (c *Counters) LatencySummary() (p50, p90, p99 float32) {
	return c.latency.Summary()
}

// Increment adds delta to event's counter.
func (c *Counters) Increment(event Event, delta uint64) {
	atomic.AddUint64(&c.values[event], delta)
	if c.vec != nil {
		c.vec.WithLabelValues(event.String()).Add(float64(delta))
	}
}

// Get reads event's current count.
func (c *Counters) Get(event Event) uint64 {
	return atomic.LoadUint64(&c.values[event])
}

// Snapshot returns every event's current count, keyed by name, the
// shape the "system.events" pseudo-table and the "mntr" 4-letter
// command both want.
func (c *Counters) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, eventCount)
	for e := Event(0); e < eventCount; e++ {
		out[e.String()] = c.Get(e)
	}
	return out
}
