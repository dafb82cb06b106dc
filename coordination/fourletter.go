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
	"strings"

	"github.com/hashicorp/raft"
)

// FourLetterWord answers one 4-letter-word introspection command (spec
// §4.I), the same minimal text-protocol surface ZooKeeper exposes for
// health checks and dashboards.
func FourLetterWord(cmd string, f *FSM, r *raft.Raft) string {
	switch strings.ToLower(cmd) {
	case "ruok":
		return "imok"
	case "stat":
		return fmt.Sprintf("Nodes: %d\nSessions: %d\nZxid: 0x%x\n",
			f.store.NodeCount(), sessionCount(f), f.store.Zxid())
	case "mntr":
		return fmt.Sprintf("zk_znode_count\t%d\nzk_zxid\t0x%x\n",
			f.store.NodeCount(), f.store.Zxid())
	case "cons":
		return "" // connection list: left to the RPC front-end, which tracks sockets
	case "srvr":
		mode := "follower"
		if r != nil && r.State() == raft.Leader {
			mode = "leader"
		}
		return fmt.Sprintf("Mode: %s\nZxid: 0x%x\n", mode, f.store.Zxid())
	default:
		return fmt.Sprintf("unknown 4-letter command %q\n", cmd)
	}
}

func sessionCount(f *FSM) int {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	return len(f.store.sessions)
}
