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

package block

// SliceSource is a leaf Stream that replays a fixed slice of Blocks, used
// by tests and by any component that already has materialized blocks to
// feed into the pipeline (e.g. a merged in-memory part).
type SliceSource struct {
	Base
	blocks []*Block
	pos    int
}

// NewSliceSource creates a Stream over blocks, in order.
func NewSliceSource(blocks []*Block) *SliceSource {
	return &SliceSource{blocks: blocks}
}

func (s *SliceSource) Read() (*Block, error) {
	if s.Cancelled() || s.pos >= len(s.blocks) {
		return &Block{}, nil
	}
	b := s.blocks[s.pos]
	s.pos++
	s.Report(Progress{Rows: int64(b.RowCount()), Bytes: int64(b.ByteSize())})
	return b, nil
}

// Drain pulls every block from s until end-of-stream, invoking fn for
// each non-empty block. This is the "iterate the root until end-of-stream"
// driver described in spec §2's control-flow summary.
func Drain(s Stream, fn func(*Block) error) error {
	if err := s.ReadPrefix(); err != nil {
		return err
	}
	defer s.ReadSuffix()
	for {
		b, err := s.Read()
		if err != nil {
			return err
		}
		if b.Empty() {
			return nil
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}

// Union concatenates several streams end-to-end into one, reading each
// child to exhaustion before advancing to the next -- the simple
// non-merging fan-in used by distributed dispatch when no ORDER BY merge
// is required (spec §4.G).
type Union struct {
	Base
	children []Stream
	idx      int
}

// NewUnion creates a Stream that reads each of children to completion, in
// order.
func NewUnion(children []Stream) *Union {
	return &Union{children: children}
}

func (u *Union) ReadPrefix() error {
	for _, c := range u.children {
		if err := c.ReadPrefix(); err != nil {
			return err
		}
	}
	return nil
}

func (u *Union) ReadSuffix() error {
	var first error
	for _, c := range u.children {
		if err := c.ReadSuffix(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (u *Union) Cancel() {
	u.Base.Cancel()
	for _, c := range u.children {
		c.Cancel()
	}
}

func (u *Union) Read() (*Block, error) {
	for u.idx < len(u.children) {
		if u.Cancelled() {
			return &Block{}, nil
		}
		b, err := u.children[u.idx].Read()
		if err != nil {
			return nil, err
		}
		if !b.Empty() {
			return b, nil
		}
		u.idx++
	}
	return &Block{}, nil
}
