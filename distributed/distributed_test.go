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

package distributed

import (
	"net"
	"testing"

	"github.com/columnstore/columnstore/block"
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/errs"
	"github.com/columnstore/columnstore/wire"
)

func TestShardForIsDeterministicAndInRange(t *testing.T) {
	for _, key := range []string{"a", "customer-42", ""} {
		idx := ShardFor(key, 4)
		if idx < 0 || idx >= 4 {
			t.Fatalf("ShardFor(%q) out of range: %d", key, idx)
		}
		if again := ShardFor(key, 4); again != idx {
			t.Fatalf("ShardFor(%q) not stable across calls: %d vs %d", key, idx, again)
		}
	}
}

func TestShardForDistributesAcrossShards(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[ShardFor(string(rune('a'+i%26))+string(rune(i)), 8)] = true
	}
	if len(seen) < 4 {
		t.Fatalf("expected keys to spread across multiple shards, only hit %d", len(seen))
	}
}

func TestRewriteForShardSubstitutesTable(t *testing.T) {
	got := RewriteForShard("select * from $TABLE where x > 1", "shard_db", "events")
	want := "select * from shard_db.events where x > 1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPickReplicaPolicies(t *testing.T) {
	shard := Shard{Name: "s0", Replicas: []string{"a:1", "b:1", "c:1"}}
	if addr, err := PickReplica(shard, InOrder, ""); err != nil || addr != "a:1" {
		t.Fatalf("InOrder: got (%q, %v)", addr, err)
	}
	if _, err := PickReplica(Shard{}, InOrder, ""); err == nil {
		t.Fatal("expected an error for a shard with no replicas")
	}
}

func TestShardForInsertRequiresParameterWithMultipleShards(t *testing.T) {
	s := &StorageDistributed{Cluster: Cluster{Shards: []Shard{{Name: "s0"}, {Name: "s1"}}}}
	_, err := s.ShardForInsert("")
	if err != errs.ErrStorageParameter {
		t.Fatalf("expected ErrStorageParameter, got %v", err)
	}
}

func TestShardForInsertSingleShardNeedsNoKey(t *testing.T) {
	s := &StorageDistributed{Cluster: Cluster{Shards: []Shard{{Name: "only"}}}}
	shard, err := s.ShardForInsert("")
	if err != nil || shard.Name != "only" {
		t.Fatalf("got (%+v, %v)", shard, err)
	}
}

func TestShardForInsertUsesShardingKey(t *testing.T) {
	s := &StorageDistributed{
		Cluster:         Cluster{Shards: []Shard{{Name: "s0"}, {Name: "s1"}, {Name: "s2"}}},
		ShardingKeyExpr: "customer_id",
	}
	shard, err := s.ShardForInsert("customer-7")
	if err != nil {
		t.Fatal(err)
	}
	want := s.Cluster.Shards[ShardFor("customer-7", 3)]
	if shard.Name != want.Name {
		t.Fatalf("got shard %q, want %q", shard.Name, want.Name)
	}
}

// fakeShardServer serves one query over an in-memory wire connection,
// returning rows rows with the given "shard" string in a label column,
// then EndOfStream.
func fakeShardServer(t *testing.T, conn *wire.Conn, rows int, label string) {
	t.Helper()
	msg, err := conn.NextFromClient()
	if err != nil {
		t.Error(err)
		return
	}
	if msg.Type != wire.ClientQueryPacket {
		t.Errorf("expected a Query packet, got %s", msg.Type)
		return
	}
	tracker := column.NewTracker(0)
	ints := column.NewInt64Column(tracker)
	strs := column.NewStringColumn(tracker)
	for i := 0; i < rows; i++ {
		ints.InsertField(column.Int(int64(i)))
		strs.InsertField(column.String(label))
	}
	b, err := block.New([]string{"n", "shard"}, []column.Column{ints, strs})
	if err != nil {
		t.Error(err)
		return
	}
	if err := conn.WriteData(b, false); err != nil {
		t.Error(err)
		return
	}
	conn.WriteEndOfStream()
}

// TestDistributedTwoShardGroupBySeedsAcrossBothShards is spec §8
// scenario 3: a distributed query must fan out to every shard and
// return rows contributed by each of them.
func TestDistributedTwoShardGroupBySeedsAcrossBothShards(t *testing.T) {
	clientA, serverA := net.Pipe()
	clientB, serverB := net.Pipe()

	done := make(chan struct{}, 2)
	go func() { defer func() { done <- struct{}{} }(); fakeShardServer(t, wire.NewConn(serverA), 2, "a") }()
	go func() { defer func() { done <- struct{}{} }(); fakeShardServer(t, wire.NewConn(serverB), 3, "b") }()

	// StorageDistributed.Select's dial-and-fan-out path needs live TCP
	// listeners to exercise end-to-end; here block.NewUnion is driven
	// directly over two pre-connected net.Pipe conns (the same fan-in
	// Select itself builds) so the shard-merge behavior is covered
	// without opening real sockets in a unit test.
	streams := []block.Stream{
		&pipeRemoteStream{conn: wire.NewConn(clientA)},
		&pipeRemoteStream{conn: wire.NewConn(clientB)},
	}
	union := block.NewUnion(streams)

	total := 0
	err := block.Drain(union, func(b *block.Block) error {
		total += b.RowCount()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Fatalf("got %d total rows across shards, want 5", total)
	}
	<-done
	<-done
}

// pipeRemoteStream is a minimal block.Stream over a pre-dialed *wire.Conn,
// used only to avoid opening a real listening socket in this test.
type pipeRemoteStream struct {
	block.Base
	conn *wire.Conn
}

func (p *pipeRemoteStream) ReadPrefix() error {
	return p.conn.WriteQuery(wire.NewQuery("select n, shard from $TABLE"))
}

func (p *pipeRemoteStream) Read() (*block.Block, error) {
	tracker := column.NewTracker(0)
	for {
		msg, err := p.conn.Next(tracker)
		if err != nil {
			return nil, err
		}
		switch msg.Type {
		case wire.ServerDataPacket:
			return msg.Data, nil
		case wire.ServerEndOfStreamPacket:
			return &block.Block{}, nil
		default:
			continue
		}
	}
}

func (p *pipeRemoteStream) ReadSuffix() error { return p.conn.Close() }
