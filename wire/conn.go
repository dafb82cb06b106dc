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
	"io"
	"net"

	"github.com/columnstore/columnstore/block"
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/log"
)

var logger = log.WithComponent("wire")

// Conn wraps a net.Conn (or any io.ReadWriteCloser, for in-process
// testing) with the packet framing both the client and server sides
// use.
type Conn struct {
	rwc io.ReadWriteCloser
	fw  *frameWriter
	fr  *frameReader
}

// NewConn wraps rwc in the wire protocol's framing.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{rwc: rwc, fw: newFrameWriter(rwc), fr: newFrameReader(rwc)}
}

// Dial connects to a server address and wraps the resulting TCP
// connection.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire: dial %s: %w", addr, err)
	}
	return NewConn(c), nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.rwc.Close() }

// ServerMessage is one decoded server->client packet, at most one of
// whose fields is populated depending on Type (none for packets with no
// payload, such as Pong and EndOfStream).
type ServerMessage struct {
	Type        ServerPacket
	Hello       *ServerHello
	Data        *block.Block
	Exception   *Exception
	Progress    *Progress
	ProfileInfo *ProfileInfo
}

// Next reads and decodes the next server->client packet. tracker is
// used to account for memory of any decoded Data block's columns.
func (c *Conn) Next(tracker *column.Tracker) (ServerMessage, error) {
	typ, payload, err := c.fr.readFrame()
	if err != nil {
		return ServerMessage{}, err
	}
	msg := ServerMessage{Type: ServerPacket(typ)}
	switch ServerPacket(typ) {
	case ServerHelloPacket:
		h, err := readJSONFrame[ServerHello](payload)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.Hello = &h
	case ServerDataPacket:
		b, err := ReadData(payload, tracker)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.Data = b
	case ServerExceptionPacket:
		exc, err := readJSONFrame[Exception](payload)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.Exception = &exc
	case ServerProgressPacket:
		p, err := readJSONFrame[Progress](payload)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.Progress = &p
	case ServerProfileInfoPacket:
		p, err := readJSONFrame[ProfileInfo](payload)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.ProfileInfo = &p
	case ServerPongPacket, ServerEndOfStreamPacket, ServerTotalsPacket, ServerExtremesPacket:
		// no payload fields beyond the type tag itself.
	default:
		return ServerMessage{}, fmt.Errorf("wire: unknown server packet type %d", typ)
	}
	return msg, nil
}

// ClientMessage is one decoded client->server packet, at most one of
// whose fields is populated depending on Type (none for packets with no
// payload, such as Ping and Cancel).
type ClientMessage struct {
	Type  ClientPacket
	Hello *ClientHello
	Query *Query
}

// NextFromClient reads and decodes the next client->server packet, the
// receive side a query-serving node uses to learn what a connected
// client wants without already knowing which packet type is coming
// (ReadClientHello and ReadQuery each expect one specific type).
func (c *Conn) NextFromClient() (ClientMessage, error) {
	typ, payload, err := c.fr.readFrame()
	if err != nil {
		return ClientMessage{}, err
	}
	msg := ClientMessage{Type: ClientPacket(typ)}
	switch ClientPacket(typ) {
	case ClientHelloPacket:
		h, err := readJSONFrame[ClientHello](payload)
		if err != nil {
			return ClientMessage{}, err
		}
		msg.Hello = &h
	case ClientQueryPacket:
		q, err := c.ReadQuery(payload)
		if err != nil {
			return ClientMessage{}, err
		}
		msg.Query = &q
	case ClientCancelPacket, ClientPingPacket:
		// no payload fields beyond the type tag itself.
	default:
		return ClientMessage{}, fmt.Errorf("wire: unknown client packet type %d", typ)
	}
	return msg, nil
}

// Drain reads and discards server packets until EndOfStream, Exception,
// or a read error, the behavior a client (or a forwarding server) uses
// after sending Cancel so it doesn't leave a half-read stream of Data
// packets on the wire (spec §8 scenario 6: "cancel drains remote").
func (c *Conn) Drain(tracker *column.Tracker) error {
	for {
		msg, err := c.Next(tracker)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch msg.Type {
		case ServerEndOfStreamPacket:
			return nil
		case ServerExceptionPacket:
			logger.Debug().Str("name", msg.Exception.Name).Msg("drain observed exception after cancel")
			return nil
		}
	}
}
