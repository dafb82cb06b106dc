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

package agg

import (
	"math"

	"golang.org/x/exp/slices"
)

// Quantile-timing bucket layout constants (spec §4: "Specialized aggregate
// states"). S marks the boundary below which values get an exact counter;
// B is the saturating ceiling; values are assumed to be millisecond timings.
const (
	qtSmallBoundary = 1024       // S: exact counters cover [0, S)
	qtBigCeiling    = 30 * 1000  // B: values saturate here
	qtBigBucket     = 16         // big-range bucket width in ms
	qtTinyCapacity  = 31         // Tiny holds at most this many samples
)

// QuantileTiming is the sum-type timing-quantile aggregate state: a small
// inline sample array that promotes one-way to a dense two-range histogram
// once it would overflow. The Tiny count field doubles as the
// Tiny-vs-Dense discriminator: count==32 means "promoted," since a real
// Tiny array can never legitimately hold more than 31 samples.
type QuantileTiming struct {
	tiny  []uint16 // len <= qtTinyCapacity while count < 32
	count int      // 32 once promoted to dense

	small []uint32 // exact counts for [0, qtSmallBoundary)
	big   []uint32 // qtBigBucket-wide counts for [qtSmallBoundary, qtBigCeiling]
	dense bool
}

// NewQuantileTiming returns an empty Tiny(count=0) state.
func NewQuantileTiming() *QuantileTiming {
	return &QuantileTiming{}
}

// Insert records one timing sample, in milliseconds.
func (q *QuantileTiming) Insert(x uint32) {
	if x > qtBigCeiling {
		x = qtBigCeiling
	}
	if q.dense {
		q.insertDense(x)
		return
	}
	if len(q.tiny) < qtTinyCapacity {
		q.tiny = append(q.tiny, uint16(x))
		q.count = len(q.tiny)
		return
	}
	// count==31 already and this is sample #32: promote, then insert.
	q.promote()
	q.insertDense(x)
}

func (q *QuantileTiming) promote() {
	q.small = make([]uint32, qtSmallBoundary)
	q.big = make([]uint32, (qtBigCeiling-qtSmallBoundary)/qtBigBucket+1)
	for _, v := range q.tiny {
		q.insertDense(uint32(v))
	}
	q.tiny = nil
	q.dense = true
	q.count = 32
}

func (q *QuantileTiming) insertDense(x uint32) {
	switch {
	case x < qtSmallBoundary:
		q.small[x]++
	case x < qtBigCeiling:
		q.big[(x-qtSmallBoundary)/qtBigBucket]++
	default:
		q.big[len(q.big)-1]++
	}
}

// Merge folds other into q, per spec: Tiny+Tiny whose combined count stays
// within capacity remains Tiny; any other combination promotes self first.
func (q *QuantileTiming) Merge(other State) {
	o, ok := other.(*QuantileTiming)
	if !ok {
		panic("agg: QuantileTiming.Merge type mismatch")
	}
	if !q.dense && !o.dense && len(q.tiny)+len(o.tiny) <= qtTinyCapacity {
		q.tiny = append(q.tiny, o.tiny...)
		q.count = len(q.tiny)
		return
	}
	if !q.dense {
		q.promote()
	}
	if !o.dense {
		for _, v := range o.tiny {
			q.insertDense(uint32(v))
		}
		return
	}
	for i, c := range o.small {
		q.small[i] += c
	}
	for i, c := range o.big {
		q.big[i] += c
	}
}

// Get returns the value at the given quantile (level in [0,1]); the empty
// state returns NaN.
func (q *QuantileTiming) Get(level float64) float64 {
	if !q.dense {
		if len(q.tiny) == 0 {
			return math.NaN()
		}
		sorted := append([]uint16(nil), q.tiny...)
		slices.Sort(sorted)
		if level >= 1 {
			return float64(sorted[len(sorted)-1])
		}
		idx := int(float64(len(sorted)) * level)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return float64(sorted[idx])
	}

	total := uint64(0)
	for _, c := range q.small {
		total += uint64(c)
	}
	for _, c := range q.big {
		total += uint64(c)
	}
	if total == 0 {
		return math.NaN()
	}
	target := uint64(float64(total) * level)

	var accumulated uint64
	for i, c := range q.small {
		accumulated += uint64(c)
		if accumulated >= target+1 || (level >= 1 && accumulated >= target) {
			return float64(i)
		}
	}
	for i, c := range q.big {
		accumulated += uint64(c)
		if accumulated >= target+1 || (level >= 1 && accumulated >= target) {
			if i == len(q.big)-1 {
				// the last bucket holds only saturated samples
				return float64(qtBigCeiling)
			}
			dither := int32(hash32(uint32(i))%qtBigBucket) - qtBigBucket/2
			v := int32(i*qtBigBucket+qtSmallBoundary) + dither
			if v < qtSmallBoundary {
				v = qtSmallBoundary
			}
			return float64(v)
		}
	}
	return float64(qtBigCeiling)
}

// hash32 is a cheap integer disperser used only to dither which
// millisecond within a big bucket Get() reports, hiding the bucket
// boundary as the spec requires.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}
