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

package coordination

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/raft"
)

// Command is one committed state change, dispatched by Op the same way
// warren's WarrenFSM.Apply dispatches on cmd.Op -- a single typed
// envelope over a JSON payload, rather than one Raft log type per
// operation.
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

const (
	OpCreateSession = "create_session"
	OpHeartbeat     = "heartbeat"
	OpExpireSession = "expire_session"
	OpCreateNode    = "create_node"
	OpSetData       = "set_data"
	OpDeleteNode    = "delete_node"
)

// FSM implements raft.FSM over a Store, replaying committed Commands in
// log order so every replica converges on the same Store state --
// including the same zxid sequence, satisfying zxid monotonicity across
// the whole cluster, not just one process.
type FSM struct {
	mu    sync.Mutex
	store *Store
	alloc allocator
}

// NewFSM creates an FSM wrapping a fresh Store.
func NewFSM() *FSM {
	return &FSM{store: NewStore()}
}

// Store exposes the FSM's underlying Store for read-only queries; writes
// must go through Raft.Apply so that they're replicated.
func (f *FSM) Store() *Store { return f.store }

type createSessionData struct {
	TimeoutMillis int64 `json:"timeout_millis"`
}

type heartbeatData struct {
	SessionID SessionID `json:"session_id"`
	NowMillis int64     `json:"now_millis"`
}

type expireSessionData struct {
	SessionID SessionID `json:"session_id"`
}

type createNodeData struct {
	Path      string    `json:"path"`
	Data      []byte    `json:"data"`
	Ephemeral bool      `json:"ephemeral"`
	OwnerID   SessionID `json:"owner_id"`
}

type setDataData struct {
	Path          string `json:"path"`
	Data          []byte `json:"data"`
	ExpectVersion int64  `json:"expect_version"`
}

type deleteNodeData struct {
	Path string `json:"path"`
}

// Apply applies one committed Raft log entry, mirroring the teacher's
// Command{Op,Data} dispatch shape.
func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("coordination: bad command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case OpCreateSession:
		var d createSessionData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return err
		}
		id := f.alloc.alloc()
		sess := &Session{ID: id, TimeoutMillis: d.TimeoutMillis}
		f.store.mu.Lock()
		f.store.sessions[id] = sess
		f.store.mu.Unlock()
		return id

	case OpHeartbeat:
		var d heartbeatData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return err
		}
		f.store.mu.Lock()
		sess, ok := f.store.sessions[d.SessionID]
		f.store.mu.Unlock()
		if !ok {
			return fmt.Errorf("coordination: unknown session %d", d.SessionID)
		}
		sess.LastHeartbeat = d.NowMillis
		return nil

	case OpExpireSession:
		var d expireSessionData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return err
		}
		f.store.mu.Lock()
		delete(f.store.sessions, d.SessionID)
		f.store.mu.Unlock()
		f.store.deleteEphemeralsOwnedBy(d.SessionID)
		return nil

	case OpCreateNode:
		var d createNodeData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return err
		}
		return f.mustNodeResult(f.store.create(d.Path, d.Data, d.Ephemeral, d.OwnerID))

	case OpSetData:
		var d setDataData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return err
		}
		return f.mustNodeResult(f.store.setData(d.Path, d.Data, d.ExpectVersion))

	case OpDeleteNode:
		var d deleteNodeData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return err
		}
		return f.store.delete(d.Path)

	default:
		return fmt.Errorf("coordination: unknown command %q", cmd.Op)
	}
}

func (f *FSM) mustNodeResult(n *Node, err error) interface{} {
	if err != nil {
		return err
	}
	return n
}

// snapshot is the wire-format for FSM.Snapshot/Restore, grounded on
// warren's WarrenSnapshot JSON encode/decode round trip.
type snapshot struct {
	Nodes    map[string]*Node     `json:"nodes"`
	Sessions map[SessionID]*Session `json:"sessions"`
	Zxid     int64                `json:"zxid"`
}

func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	s := &snapshot{Nodes: make(map[string]*Node, len(f.store.nodes)), Sessions: make(map[SessionID]*Session, len(f.store.sessions)), Zxid: f.store.zxid}
	for k, v := range f.store.nodes {
		s.Nodes[k] = v
	}
	for k, v := range f.store.sessions {
		s.Sessions[k] = v
	}
	return s, nil
}

func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	var s snapshot
	if err := json.NewDecoder(rc).Decode(&s); err != nil {
		return err
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.nodes = s.Nodes
	f.store.sessions = s.Sessions
	f.store.zxid = s.Zxid
	return nil
}

func (s *snapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *snapshot) Release() {}
