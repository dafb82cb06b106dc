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

import "time"

// SessionID is a leader-allocated, globally-unique, monotonically
// increasing session identifier (spec §3, Session entity).
type SessionID int64

// Session is a client's long-lived presence: its ID, its timeout and its
// last heartbeat. The ephemeral nodes it owns are the Store nodes whose
// OwnerID is its ID; watches are kept by the Store per path, not on the
// Session (spec §3: "session_id is
// globally unique and monotonically allocated by the leader; timeout
// expiration triggers ephemeral cleanup and watch firing").
type Session struct {
	ID            SessionID
	TimeoutMillis int64
	LastHeartbeat int64 // unix millis, set by the leader on every heartbeat
}

// IsAlive reports whether the session is still within its timeout as of
// nowMillis -- liveness is a pure function of (lastHeartbeat, timeout,
// now), never a background timer, so replicas agree on expiry.
func (s *Session) IsAlive(nowMillis int64) bool {
	return nowMillis-s.LastHeartbeat < s.TimeoutMillis
}

// allocator hands out strictly increasing SessionIDs; only the Raft FSM
// calls it, so all replicas allocate identically from the replicated log.
type allocator struct {
	next SessionID
}

func (a *allocator) alloc() SessionID {
	a.next++
	return a.next
}

// NowMillis is a seam for tests: production code should use
// time.Now().UnixMilli(), but liveness checks over a replicated log must
// not call time.Now() from inside FSM.Apply (determinism), so the leader
// stamps LastHeartbeat/deadlines into the command payload instead and
// IsAlive only ever compares two payload-supplied timestamps.
func NowMillis(t time.Time) int64 { return t.UnixMilli() }
