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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCountersIncrementAndSnapshot(t *testing.T) {
	c := NewCounters(prometheus.NewRegistry())
	c.Increment(EventQuery, 1)
	c.Increment(EventQuery, 2)
	c.Increment(EventSelectedRows, 100)

	if got := c.Get(EventQuery); got != 3 {
		t.Fatalf("got %d queries, want 3", got)
	}
	snap := c.Snapshot()
	if snap["Query"] != 3 || snap["SelectedRows"] != 100 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestCountersLatencySummaryTracksObservations(t *testing.T) {
	c := NewCounters(prometheus.NewRegistry())
	for _, s := range []float64{0.01, 0.02, 0.05, 0.1, 1.0} {
		c.ObserveQueryLatency(s)
	}
	p50, p90, p99 := c.LatencySummary()
	if p50 <= 0 || p90 < p50 || p99 < p90 {
		t.Fatalf("expected p50 <= p90 <= p99, got %v %v %v", p50, p90, p99)
	}
}

func TestQuotaWindowRaisesOnceLimitExceeded(t *testing.T) {
	w := NewWindow(Limits{ResultRows: 100})
	if err := w.CheckBlock(50, 0, false); err != nil {
		t.Fatalf("unexpected error under the limit: %v", err)
	}
	if err := w.CheckBlock(60, 0, false); err == nil {
		t.Fatal("expected a quota error once result rows exceed the limit")
	}
}

func TestQuotaWindowUnlimitedByDefault(t *testing.T) {
	w := NewWindow(Limits{})
	for i := 0; i < 1000; i++ {
		if err := w.RecordQuery(); err != nil {
			t.Fatalf("unexpected error with no configured limits: %v", err)
		}
	}
}

func TestQuotaWindowResetClearsUsage(t *testing.T) {
	w := NewWindow(Limits{Queries: 1})
	if err := w.RecordQuery(); err != nil {
		t.Fatal(err)
	}
	if err := w.RecordQuery(); err == nil {
		t.Fatal("expected the second query to exceed the limit")
	}
	w.Reset()
	if err := w.RecordQuery(); err != nil {
		t.Fatalf("expected the window to accept queries again after reset: %v", err)
	}
}

func TestLatencyDigestTracksPercentiles(t *testing.T) {
	d := NewLatencyDigest()
	for i := 1; i <= 100; i++ {
		d.Observe(float64(i) / 100)
	}
	p50 := d.Percentile(0.5)
	if p50 < 0.3 || p50 > 0.7 {
		t.Fatalf("p50 estimate %v outside the expected loose range", p50)
	}
}
