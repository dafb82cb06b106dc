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

package metrics

import (
	"sync"

	"github.com/columnstore/columnstore/internal/percentile"
)

// defaultCompression matches the conservative accuracy/size tradeoff
// percentile.NewTDigest's own tests exercise.
const defaultCompression = 16

// LatencyDigest accumulates query execution-time samples into a
// t-digest, giving the "stat"/"mntr" 4-letter commands an approximate
// p50/p99 without keeping every raw sample -- the same role
// agg.QuantileTiming plays inside a query, but scoped to whole-query
// wall-clock time across the server's lifetime.
type LatencyDigest struct {
	mu sync.Mutex
	td *percentile.TDigest
}

// NewLatencyDigest creates an empty digest.
func NewLatencyDigest() *LatencyDigest {
	return &LatencyDigest{td: percentile.NewTDigest(nil, defaultCompression)}
}

// Observe folds one query's duration (in seconds) into the digest.
func (l *LatencyDigest) Observe(seconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sample := percentile.NewTDigest([]float32{float32(seconds)}, defaultCompression)
	l.td.Merge(sample, defaultCompression)
}

// Percentile returns the estimated value at quantile p (0..1).
func (l *LatencyDigest) Percentile(p float32) float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.td.Percentile(p)
}

// Summary reports the p50/p90/p99 latency estimates in one call, the
// trio "stat"/"mntr" report alongside node and replication counts.
func (l *LatencyDigest) Summary() (p50, p90, p99 float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.td.LatencySummary()
}
