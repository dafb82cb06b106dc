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
	"testing"

	"github.com/hashicorp/raft"
)

func applyCmd(t *testing.T, f *FSM, op string, data interface{}) interface{} {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	cmd := Command{Op: op, Data: raw}
	b, err := json.Marshal(cmd)
	if err != nil {
		t.Fatal(err)
	}
	return f.Apply(&raft.Log{Data: b})
}

// TestZxidMonotonicity exercises spec §8's "zxid monotonicity" property:
// every committed mutation assigns a strictly increasing transaction id.
func TestZxidMonotonicity(t *testing.T) {
	f := NewFSM()
	applyCmd(t, f, OpCreateNode, createNodeData{Path: "/a"})
	z1 := f.Store().Zxid()
	applyCmd(t, f, OpCreateNode, createNodeData{Path: "/b"})
	z2 := f.Store().Zxid()
	applyCmd(t, f, OpSetData, setDataData{Path: "/a", Data: []byte("x"), ExpectVersion: -1})
	z3 := f.Store().Zxid()

	if !(z1 < z2 && z2 < z3) {
		t.Fatalf("zxids not strictly increasing: %d, %d, %d", z1, z2, z3)
	}
}

func TestSessionLiveness(t *testing.T) {
	f := NewFSM()
	idResp := applyCmd(t, f, OpCreateSession, createSessionData{TimeoutMillis: 1000})
	id, ok := idResp.(SessionID)
	if !ok {
		t.Fatalf("expected a SessionID, got %T: %v", idResp, idResp)
	}
	applyCmd(t, f, OpHeartbeat, heartbeatData{SessionID: id, NowMillis: 10_000})

	f.store.mu.RLock()
	sess := f.store.sessions[id]
	f.store.mu.RUnlock()

	if !sess.IsAlive(10_500) {
		t.Fatal("session should be alive 500ms after a heartbeat with a 1000ms timeout")
	}
	if sess.IsAlive(11_500) {
		t.Fatal("session should have expired 1500ms after its last heartbeat")
	}
}

func TestSessionExpiryDeletesEphemerals(t *testing.T) {
	f := NewFSM()
	idResp := applyCmd(t, f, OpCreateSession, createSessionData{TimeoutMillis: 1000})
	id := idResp.(SessionID)
	applyCmd(t, f, OpCreateNode, createNodeData{Path: "/ephemeral/foo", Ephemeral: true, OwnerID: id})

	if _, ok := f.Store().Get("/ephemeral/foo"); !ok {
		t.Fatal("expected the ephemeral node to exist before expiry")
	}

	applyCmd(t, f, OpExpireSession, expireSessionData{SessionID: id})

	if _, ok := f.Store().Get("/ephemeral/foo"); ok {
		t.Fatal("expected the ephemeral node to be removed on session expiry")
	}
}

func TestSetDataBadVersionRejected(t *testing.T) {
	f := NewFSM()
	applyCmd(t, f, OpCreateNode, createNodeData{Path: "/a", Data: []byte("v0")})
	result := applyCmd(t, f, OpSetData, setDataData{Path: "/a", Data: []byte("v1"), ExpectVersion: 7})
	if _, isErr := result.(error); !isErr {
		t.Fatalf("expected a BAD_VERSION error, got %T: %v", result, result)
	}
}

// TestForwardNoLeaderMapsToError exercises the forward-request error
// mapping seed scenario: a follower with no known leader must surface a
// typed error to the caller rather than hanging or silently dropping the
// request.
func TestForwardNoLeaderMapsToError(t *testing.T) {
	fwd := NewForwarder(nil, NewFSM())
	key := ClientKey{ServerID: "s1", ClientID: "c1"}
	fwd.Forward(ForwardRequest{Key: key, Command: Command{Op: OpCreateNode}})
	resp := fwd.Next(key)
	if resp.Err == nil {
		t.Fatal("expected an error when no leader is known")
	}
}

func TestFourLetterRuok(t *testing.T) {
	f := NewFSM()
	if got := FourLetterWord("ruok", f, nil); got != "imok" {
		t.Fatalf("got %q, want imok", got)
	}
}
