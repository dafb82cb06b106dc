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

package wire

import (
	"fmt"

	"github.com/google/uuid"
)

// ProcessingStage tells the server how far to carry a forwarded query,
// the same three-way split spec §4.G's distributed dispatch needs to
// fan a query out to shards and merge their partial states locally.
type ProcessingStage int

const (
	// StageComplete runs the query to completion and returns final rows.
	StageComplete ProcessingStage = iota
	// StageWithMergeableState stops after local aggregation, returning
	// partial per-shard state for the coordinator to merge.
	StageWithMergeableState
	// StageFetchColumns only reads and returns raw columns, skipping
	// expression evaluation and aggregation entirely.
	StageFetchColumns
)

func (s ProcessingStage) String() string {
	switch s {
	case StageComplete:
		return "Complete"
	case StageWithMergeableState:
		return "WithMergeableState"
	case StageFetchColumns:
		return "FetchColumns"
	default:
		return fmt.Sprintf("ProcessingStage(%d)", int(s))
	}
}

// Query is the client's (or forwarding server's) Query packet.
type Query struct {
	QueryID     string
	Stage       ProcessingStage
	Compression bool
	SQL         string
	Settings    map[string]string
}

// NewQuery builds a complete-stage Query for sql with a fresh random
// QueryID; a caller propagating an existing query id sets QueryID on the
// returned value itself.
func NewQuery(sql string) Query {
	return Query{QueryID: uuid.NewString(), Stage: StageComplete, SQL: sql}
}

// WriteQuery sends a Query packet.
func (c *Conn) WriteQuery(q Query) error {
	if q.QueryID == "" {
		q.QueryID = uuid.NewString()
	}
	return writeJSONFrame(c.fw, byte(ClientQueryPacket), q)
}

// ReadQuery reads a Query packet off the wire.
func (c *Conn) ReadQuery(payload []byte) (Query, error) {
	return readJSONFrame[Query](payload)
}

// WriteCancel sends a Cancel packet, asking the peer to stop executing
// and drain any in-flight remote shard queries (spec §8 scenario 6).
func (c *Conn) WriteCancel() error {
	return c.fw.writeFrame(byte(ClientCancelPacket), nil)
}

// WritePing sends a liveness-check Ping packet.
func (c *Conn) WritePing() error {
	return c.fw.writeFrame(byte(ClientPingPacket), nil)
}

// WritePong replies to a Ping.
func (c *Conn) WritePong() error {
	return c.fw.writeFrame(byte(ServerPongPacket), nil)
}

// WriteEndOfStream signals that no further Data packets follow for this
// query.
func (c *Conn) WriteEndOfStream() error {
	return c.fw.writeFrame(byte(ServerEndOfStreamPacket), nil)
}
