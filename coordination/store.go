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

// Package coordination implements the coordination-service front-end
// (spec §4.I): session allocation, ephemeral nodes, watches, and a
// forwarding handler that tunnels follower requests to the Raft leader,
// replacing the original ZooKeeper-equivalent dependency with a
// hashicorp/raft-backed replicated state machine.
package coordination

import (
	"sync"

	"github.com/columnstore/columnstore/errs"
)

// Node is one znode-equivalent path entry: data plus metadata needed to
// reproduce ZooKeeper's stat semantics (version for CAS, owning session
// for ephemerals).
type Node struct {
	Path      string
	Data      []byte
	Version   int64
	Ephemeral bool
	OwnerID   SessionID
	Zxid      int64 // the transaction id that last modified this node
}

// Watch fires exactly once, the next time Path changes or is deleted,
// matching ZooKeeper's one-shot watch semantics.
type Watch struct {
	Path string
	Ch   chan Event
}

// Event describes what triggered a fired watch.
type Event struct {
	Path string
	Type EventType
}

type EventType int

const (
	EventNodeCreated EventType = iota
	EventNodeDataChanged
	EventNodeDeleted
)

// Store is the in-memory state the Raft FSM applies committed commands
// against: the authoritative node tree, session table, and watch
// registry. All mutation happens only from FSM.Apply, so Store itself
// need not be safe for concurrent writers -- only concurrent readers
// alongside the single Apply goroutine, hence the RWMutex.
type Store struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	sessions map[SessionID]*Session
	watches  map[string][]Watch
	zxid     int64
}

// NewStore creates an empty coordination store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[string]*Node),
		sessions: make(map[SessionID]*Session),
		watches:  make(map[string][]Watch),
	}
}

// nextZxid allocates the next transaction id. Zxids are monotonically
// increasing and assigned only while holding the write lock from within
// FSM.Apply, so a replica that applies the same log in order always sees
// the same sequence (spec §8: "zxid monotonicity").
func (s *Store) nextZxid() int64 {
	s.zxid++
	return s.zxid
}

// Get returns the node at path, if any.
func (s *Store) Get(path string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[path]
	return n, ok
}

// create inserts a new node, firing EventNodeCreated on any watch
// registered for path.
func (s *Store) create(path string, data []byte, ephemeral bool, owner SessionID) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[path]; exists {
		return nil, errs.New(errs.InvalidInput, "NODE_EXISTS", "node %q already exists", path)
	}
	zxid := s.nextZxid()
	n := &Node{Path: path, Data: data, Version: 0, Ephemeral: ephemeral, OwnerID: owner, Zxid: zxid}
	s.nodes[path] = n
	s.fireLocked(path, EventNodeCreated)
	return n, nil
}

// setData updates an existing node's payload, enforcing an optimistic CAS
// against expectVersion unless it is negative (meaning "any version").
func (s *Store) setData(path string, data []byte, expectVersion int64) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[path]
	if !ok {
		return nil, errs.New(errs.InvalidInput, "NO_NODE", "no node at %q", path)
	}
	if expectVersion >= 0 && n.Version != expectVersion {
		return nil, errs.New(errs.Cluster, "BAD_VERSION", "version mismatch on %q: have %d want %d", path, n.Version, expectVersion)
	}
	n.Data = data
	n.Version++
	n.Zxid = s.nextZxid()
	s.fireLocked(path, EventNodeDataChanged)
	return n, nil
}

// delete removes a node, firing EventNodeDeleted.
func (s *Store) delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[path]; !ok {
		return errs.New(errs.InvalidInput, "NO_NODE", "no node at %q", path)
	}
	delete(s.nodes, path)
	s.nextZxid()
	s.fireLocked(path, EventNodeDeleted)
	return nil
}

// deleteEphemeralsOwnedBy removes every ephemeral node owned by sid,
// called when a session expires.
func (s *Store) deleteEphemeralsOwnedBy(sid SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, n := range s.nodes {
		if n.Ephemeral && n.OwnerID == sid {
			delete(s.nodes, path)
			s.nextZxid()
			s.fireLocked(path, EventNodeDeleted)
		}
	}
}

// AddWatch registers a one-shot watch on path.
func (s *Store) AddWatch(path string, ch chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watches[path] = append(s.watches[path], Watch{Path: path, Ch: ch})
}

// fireLocked delivers and clears every watch on path; caller must hold
// s.mu for writing.
func (s *Store) fireLocked(path string, typ EventType) {
	ws := s.watches[path]
	delete(s.watches, path)
	for _, w := range ws {
		select {
		case w.Ch <- Event{Path: path, Type: typ}:
		default:
		}
	}
}

// Zxid returns the store's current (last-assigned) transaction id.
func (s *Store) Zxid() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zxid
}

// NodeCount reports the number of live nodes, used by the 4-letter "stat"
// introspection command.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
