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

// SumState is the minimal "count/sum" style aggregate state, used as the
// everyday counterpart to the specialized quantileTiming/HyperLogLog
// states above.
type SumState struct {
	Sum   float64
	Count int64
}

func NewSumState() State { return &SumState{} }

func (s *SumState) Add(v float64) {
	s.Sum += v
	s.Count++
}

func (s *SumState) Merge(other State) {
	o, ok := other.(*SumState)
	if !ok {
		panic("agg: SumState.Merge type mismatch")
	}
	s.Sum += o.Sum
	s.Count += o.Count
}

func (s *SumState) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}
