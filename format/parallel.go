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

package format

import (
	"bytes"
	"io"
	"sync"

	"github.com/columnstore/columnstore/log"
)

var logger = log.WithComponent("format")

// unitState is one ring slot's lifecycle (spec §4.L): the segmentator
// fills it, the parser consumes it, the reader drains it, matching
// ClickHouse's READY_TO_PARSE / READY_TO_READ / READY_TO_INSERT names.
type unitState int

const (
	unitEmpty unitState = iota
	unitReadyToParse
	unitReadyToRead
	unitReadyToInsert
)

type unit struct {
	mu     sync.Mutex
	cond   *sync.Cond
	state  unitState
	rows   []Row
	err    error
}

// ParallelParsingInputFormat owns a fixed ring of units and the
// segmentator/parser/reader goroutines that drive them, as spec §4.L
// describes. It generalizes jsonrl.Splitter's window-striped,
// goroutine-per-chunk design to the JSONEachRow row model.
type ParallelParsingInputFormat struct {
	units   []*unit
	opts    Options
	cancel  chan struct{}
	cancelOnce sync.Once

	segErr  chan error
	readPos int

	doneMu  sync.Mutex
	done    bool
	doneErr error
}

// NewParallelParsingInputFormat builds a ring of ringSize units over
// source, parsing with the given Options.
func NewParallelParsingInputFormat(source []byte, ringSize, chunkSize int, opts Options) *ParallelParsingInputFormat {
	if ringSize <= 0 {
		ringSize = 1
	}
	p := &ParallelParsingInputFormat{
		opts:   opts,
		cancel: make(chan struct{}),
		segErr: make(chan error, 1),
	}
	p.units = make([]*unit, ringSize)
	for i := range p.units {
		u := &unit{}
		u.cond = sync.NewCond(&u.mu)
		p.units[i] = u
	}
	go p.run(source, chunkSize)
	return p
}

// run drives the segmentator and, for each produced segment, a parser
// goroutine, filling ring units in order so the reader can drain them
// strictly in input order even though parsing itself is unordered.
func (p *ParallelParsingInputFormat) run(source []byte, chunkSize int) {
	// Once segErr holds the final result, wake any reader parked on an
	// empty unit so it picks that result up instead of waiting forever.
	defer func() {
		for _, u := range p.units {
			u.mu.Lock()
			u.cond.Broadcast()
			u.mu.Unlock()
		}
	}()
	seg := NewSegmentator(source, chunkSize)
	var wg sync.WaitGroup
	idx := 0
	for {
		select {
		case <-p.cancel:
			p.segErr <- nil
			wg.Wait()
			return
		default:
		}
		chunk, ok, err := seg.Next()
		if err != nil {
			logger.Error().Err(err).Msg("segmentator failed, stopping parallel parse")
			p.segErr <- err
			wg.Wait()
			return
		}
		if !ok {
			break
		}
		u := p.units[idx%len(p.units)]
		u.mu.Lock()
		for u.state != unitEmpty {
			u.cond.Wait()
		}
		u.state = unitReadyToParse
		u.mu.Unlock()

		wg.Add(1)
		go p.parse(u, chunk, &wg)
		idx++
	}
	wg.Wait()
	p.segErr <- nil
}

func (p *ParallelParsingInputFormat) parse(u *unit, chunk []byte, wg *sync.WaitGroup) {
	defer wg.Done()
	r := NewJSONEachRowReader(bytes.NewReader(chunk), p.opts)
	var rows []Row
	var err error
	for {
		row, e := r.Next()
		if e == io.EOF {
			break
		}
		if e != nil {
			err = e
			break
		}
		rows = append(rows, row)
	}
	if err != nil {
		logger.Error().Err(err).Msg("parse unit failed")
	}

	u.mu.Lock()
	u.rows, u.err = rows, err
	u.state = unitReadyToRead
	u.cond.Broadcast()
	u.mu.Unlock()
}

// Next blocks for the next ring unit's rows in order, returning io.EOF
// once the segmentator has produced no further chunks and every unit
// has been drained.
func (p *ParallelParsingInputFormat) Next() ([]Row, error) {
	p.doneMu.Lock()
	if p.done {
		err := p.doneErr
		p.doneMu.Unlock()
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	p.doneMu.Unlock()

	u := p.units[p.readPos%len(p.units)]
	u.mu.Lock()
	for u.state != unitReadyToRead {
		if u.state == unitEmpty {
			select {
			case err := <-p.segErr:
				u.mu.Unlock()
				p.doneMu.Lock()
				p.done, p.doneErr = true, err
				p.doneMu.Unlock()
				if err != nil {
					return nil, err
				}
				return nil, io.EOF
			default:
			}
		}
		u.cond.Wait()
	}
	rows, err := u.rows, u.err
	u.rows, u.err = nil, nil
	u.state = unitEmpty
	u.cond.Broadcast()
	u.mu.Unlock()

	p.readPos++
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Cancel stops the segmentator from producing further work; in-flight
// parses still complete.
func (p *ParallelParsingInputFormat) Cancel() {
	p.cancelOnce.Do(func() { close(p.cancel) })
}
