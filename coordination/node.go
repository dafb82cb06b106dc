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
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/columnstore/columnstore/log"
)

// NodeConfig configures a coordination Node's Raft transport and
// on-disk stores, mirroring warren's Manager.Config (node id, bind
// address, data directory) one level down from the cluster-manager
// abstraction to this spec's coordination-service front-end.
type NodeConfig struct {
	NodeID   string
	BindAddr string
	DataDir  string
}

// RaftNode wraps a *raft.Raft replicating an FSM, the unit an operator
// starts one per coordination-service server. Requests accepted
// locally are applied through Raft; reads may be served from the
// local FSM.Store() directly since every replica converges on the
// same applied log.
type RaftNode struct {
	cfg   NodeConfig
	raft  *raft.Raft
	fsm   *FSM
	trans *raft.NetworkTransport
}

// NewNode creates a RaftNode's Raft machinery without bootstrapping or
// joining a cluster; call Bootstrap for a fresh single-node cluster or
// Join to attach to an existing leader.
func NewNode(cfg NodeConfig) (*RaftNode, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("coordination: create data dir: %w", err)
	}

	fsm := NewFSM()

	raftCfg := raft.DefaultConfig()
	raftCfg.LocalID = raft.ServerID(cfg.NodeID)
	// Tuned down from the library defaults (1s/1s/500ms) for LAN-local
	// coordination traffic, the same adjustment warren's Manager.Bootstrap
	// makes and for the same reason: faster leader-loss detection without
	// tripping over WAN-grade conservatism we don't need here.
	raftCfg.HeartbeatTimeout = 500 * time.Millisecond
	raftCfg.ElectionTimeout = 500 * time.Millisecond
	raftCfg.LeaderLeaseTimeout = 250 * time.Millisecond

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("coordination: resolve bind addr: %w", err)
	}
	trans, err := raft.NewTCPTransport(cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("coordination: create transport: %w", err)
	}

	snapshots, err := raft.NewFileSnapshotStore(cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("coordination: create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("coordination: create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("coordination: create stable store: %w", err)
	}

	r, err := raft.NewRaft(raftCfg, fsm, logStore, stableStore, snapshots, trans)
	if err != nil {
		return nil, fmt.Errorf("coordination: create raft: %w", err)
	}

	return &RaftNode{cfg: cfg, raft: r, fsm: fsm, trans: trans}, nil
}

// Bootstrap forms a brand-new single-node cluster with this Node as its
// only voter, the entry point for starting the very first server in a
// deployment.
func (n *RaftNode) Bootstrap() error {
	cfg := raft.Configuration{
		Servers: []raft.Server{
			{ID: raft.ServerID(n.cfg.NodeID), Address: n.trans.LocalAddr()},
		},
	}
	if err := n.raft.BootstrapCluster(cfg).Error(); err != nil {
		return fmt.Errorf("coordination: bootstrap cluster: %w", err)
	}
	log.WithComponent("coordination").Info().Str("node_id", n.cfg.NodeID).Msg("bootstrapped single-node cluster")
	return nil
}

// Join asks the current leader at leaderAPIAddr to add this node as a
// voter. The caller is expected to have a side channel (gRPC, HTTP) to
// the leader's AddVoter equivalent; Join itself only prepares this
// node's Raft instance to accept the resulting configuration change.
func (n *RaftNode) Join() error {
	// A follower's Raft instance needs no local action beyond having
	// been constructed with NewNode; the leader-side AddVoter call (made
	// by whatever control-plane RPC the deployment uses) is what
	// actually admits it. This mirrors warren's split between
	// Manager.Join (local prep) and the leader's AddVoter handler.
	return nil
}

// AddVoter is called on the current leader to admit a new server,
// analogous to warren's manager-to-manager join RPC handler.
func (n *RaftNode) AddVoter(id, addr string) error {
	fut := n.raft.AddVoter(raft.ServerID(id), raft.ServerAddress(addr), 0, 10*time.Second)
	return fut.Error()
}

// IsLeader reports whether this node currently holds Raft leadership --
// the gate for replication cleanup (spec §4.F: "runs only on the
// current leader") and for session-id allocation.
func (n *RaftNode) IsLeader() bool {
	return n.raft.State() == raft.Leader
}

// LeaderAddr returns the address of the current leader, if known, so a
// follower's forwarding handler knows where to tunnel writes.
func (n *RaftNode) LeaderAddr() string {
	addr, _ := n.raft.LeaderWithID()
	return string(addr)
}

// Apply submits cmd to the replicated log and blocks until it is
// committed and applied, returning the FSM.Apply return value.
func (n *RaftNode) Apply(cmd Command, timeout time.Duration) (interface{}, error) {
	data, err := marshalCommand(cmd)
	if err != nil {
		return nil, err
	}
	fut := n.raft.Apply(data, timeout)
	if err := fut.Error(); err != nil {
		return nil, fmt.Errorf("coordination: raft apply: %w", err)
	}
	resp := fut.Response()
	if err, ok := resp.(error); ok {
		return nil, err
	}
	return resp, nil
}

// Store exposes the underlying FSM's Store for local reads.
func (n *RaftNode) Store() *Store { return n.fsm.Store() }

// FourLetterWord answers a 4-letter introspection command against this
// node's FSM and Raft state, the method a server's 4LW listener calls
// per connection.
func (n *RaftNode) FourLetterWord(cmd string) string {
	return FourLetterWord(cmd, n.fsm, n.raft)
}

// Shutdown stops the Raft instance and closes its transport.
func (n *RaftNode) Shutdown() error {
	if err := n.raft.Shutdown().Error(); err != nil {
		return err
	}
	return n.trans.Close()
}
