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

package column

import "unsafe"

// initialCapacityBytes is the first allocation size for a PODArray,
// matching the spec's "initial 4 KiB" growth policy.
const initialCapacityBytes = 4096

// PODArray is a non-copyable growable buffer of plain-old-data elements.
// It grows by power-of-two reallocation and is the universal vector
// primitive underneath every concrete Column implementation. Memory is
// tracked against an optional per-thread Tracker so that a query's total
// footprint can be charged and bounded.
type PODArray[T any] struct {
	buf     []T
	tracker *Tracker

	_ [0]func() // not comparable, discourages accidental copy-by-value misuse
}

// NewPODArray creates an empty array that charges allocations to tracker.
// tracker may be nil to opt out of accounting (used in tests).
func NewPODArray[T any](tracker *Tracker) *PODArray[T] {
	return &PODArray[T]{tracker: tracker}
}

func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Len returns the number of elements currently stored.
func (p *PODArray[T]) Len() int { return len(p.buf) }

// Cap returns the current element capacity.
func (p *PODArray[T]) Cap() int { return cap(p.buf) }

// At returns the element at index i without bounds-checking against the
// spec's PARAMETER_OUT_OF_BOUND error; callers that need that behavior
// should go through a Column method instead, which does check.
func (p *PODArray[T]) At(i int) T { return p.buf[i] }

// Set overwrites the element at index i.
func (p *PODArray[T]) Set(i int, v T) { p.buf[i] = v }

// Slice exposes the backing storage directly for bulk operations (vectorized
// expression kernels read/write through this).
func (p *PODArray[T]) Slice() []T { return p.buf }

// Reserve ensures capacity for at least n total elements, growing by
// doubling (starting from a 4 KiB byte footprint) rather than growing to
// exactly n, so that repeated PushBack calls stay amortized O(1).
func (p *PODArray[T]) Reserve(n int) {
	if cap(p.buf) >= n {
		return
	}
	newCap := p.nextCap(n)
	grown := make([]T, len(p.buf), newCap)
	copy(grown, p.buf)
	p.charge(newCap - cap(p.buf))
	p.buf = grown
}

func (p *PODArray[T]) nextCap(want int) int {
	size := elemSize[T]()
	if size == 0 {
		size = 1
	}
	minElems := initialCapacityBytes / size
	if minElems < 1 {
		minElems = 1
	}
	newCap := cap(p.buf)
	if newCap == 0 {
		newCap = minElems
	}
	for newCap < want {
		newCap *= 2
	}
	return newCap
}

func (p *PODArray[T]) charge(deltaElems int) {
	if p.tracker != nil && deltaElems > 0 {
		p.tracker.Alloc(int64(deltaElems * elemSize[T]()))
	}
}

// PushBack appends v, growing the backing array as needed.
func (p *PODArray[T]) PushBack(v T) {
	p.Reserve(len(p.buf) + 1)
	p.buf = append(p.buf, v)
}

// ResizeWithoutConstruct changes the logical length to n without
// initializing any newly exposed elements -- callers must fill them
// before reading. It still grows the backing storage if needed.
func (p *PODArray[T]) ResizeWithoutConstruct(n int) {
	p.Reserve(n)
	p.buf = p.buf[:n]
}

// ResizeWithZeroFill changes the logical length to n, zero-filling any
// newly exposed elements.
func (p *PODArray[T]) ResizeWithZeroFill(n int) {
	old := len(p.buf)
	p.Reserve(n)
	p.buf = p.buf[:n]
	if n > old {
		var zero T
		for i := old; i < n; i++ {
			p.buf[i] = zero
		}
	}
}

// ByteSize returns the number of bytes occupied by the logical elements.
func (p *PODArray[T]) ByteSize() int { return len(p.buf) * elemSize[T]() }

// Clone returns an independent copy of the array, sharing no storage with
// the receiver (and its own Tracker reference, since clones are commonly
// handed to a different thread/stage of the pipeline).
func (p *PODArray[T]) Clone(tracker *Tracker) *PODArray[T] {
	out := NewPODArray[T](tracker)
	out.ResizeWithoutConstruct(len(p.buf))
	copy(out.buf, p.buf)
	return out
}
