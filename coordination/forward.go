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
	"sync"

	"github.com/hashicorp/raft"

	"github.com/columnstore/columnstore/log"
)

var logger = log.WithComponent("coordination")

func marshalCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

// ClientKey identifies one client's forwarding channel to the leader:
// (server_id it connected to, client_id it presented), so a follower
// serving many clients tunnels each client's requests through its own
// ordered queue rather than interleaving them (spec §4.I: "forwarding
// handler that tunnels follower requests to the leader").
type ClientKey struct {
	ServerID, ClientID string
}

// ForwardRequest is one write request a follower needs the leader to
// apply.
type ForwardRequest struct {
	Key     ClientKey
	Command Command
}

// ForwardResponse is the leader's answer to one ForwardRequest, keeping
// the request/response pairing the caller needs to match replies back to
// callers in FIFO order.
type ForwardResponse struct {
	Key    ClientKey
	Result interface{}
	Err    error
}

// Forwarder tunnels follower requests to the Raft leader and delivers
// results back to the submitting goroutine through a per-ClientKey FIFO
// queue, so two requests from the same client are never reordered even
// if the leader changes mid-flight.
type Forwarder struct {
	raft *raft.Raft
	fsm  *FSM

	mu     sync.Mutex
	queues map[ClientKey]chan ForwardResponse
}

// NewForwarder creates a Forwarder over a Raft node and its FSM.
func NewForwarder(r *raft.Raft, fsm *FSM) *Forwarder {
	return &Forwarder{raft: r, fsm: fsm, queues: make(map[ClientKey]chan ForwardResponse)}
}

// queueFor returns (creating if needed) the FIFO response channel for key.
func (f *Forwarder) queueFor(key ClientKey) chan ForwardResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queues[key]
	if !ok {
		q = make(chan ForwardResponse, 64)
		f.queues[key] = q
	}
	return q
}

// errLeaderUnknown maps directly onto the spec's
// "ZSESSIONEXPIRED aborts the tick" / "BAD_VERSION" failure-semantics
// idea applied to forwarding: a follower that itself has no leader, or
// whose forwarded Apply fails because leadership changed mid-flight,
// reports a typed error the client can retry on.
var (
	errLeaderUnknown = fmt.Errorf("coordination: no known leader to forward to")
)

// Forward submits req to the leader via raft.Apply and pushes the result
// onto req.Key's FIFO queue; callers drain their queue with Next.
func (f *Forwarder) Forward(req ForwardRequest) {
	q := f.queueFor(req.Key)
	if f.raft == nil || f.raft.Leader() == "" {
		logger.Warn().Str("client_id", req.Key.ClientID).Msg("forward failed: no known leader")
		q <- ForwardResponse{Key: req.Key, Err: errLeaderUnknown}
		return
	}
	payload, err := marshalCommand(req.Command)
	if err != nil {
		logger.Error().Err(err).Msg("forward failed: command marshal")
		q <- ForwardResponse{Key: req.Key, Err: err}
		return
	}
	future := f.raft.Apply(payload, 0)
	if err := future.Error(); err != nil {
		logger.Error().Err(err).Str("client_id", req.Key.ClientID).Msg("forward failed: raft apply, client should retry")
		q <- ForwardResponse{Key: req.Key, Err: err}
		return
	}
	resp := future.Response()
	if err, ok := resp.(error); ok {
		logger.Error().Err(err).Str("client_id", req.Key.ClientID).Msg("forward failed: fsm rejected command")
		q <- ForwardResponse{Key: req.Key, Err: err}
		return
	}
	q <- ForwardResponse{Key: req.Key, Result: resp}
}

// Next blocks for the next response queued for key, in submission order.
func (f *Forwarder) Next(key ClientKey) ForwardResponse {
	return <-f.queueFor(key)
}
