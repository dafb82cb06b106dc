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
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ClientHello is the first packet a client sends: its identity, the
// protocol revision it speaks, the database it wants, and credentials
// for whatever auth the server demands.
type ClientHello struct {
	ClientName    string
	VersionMajor  uint64
	VersionMinor  uint64
	Revision      uint64
	DefaultDB     string
	User          string
	Password      string
}

// ServerHello is the server's reply once it accepts a ClientHello.
type ServerHello struct {
	ServerName   string
	VersionMajor uint64
	VersionMinor uint64
	Revision     uint64
}

func writeJSONFrame[T any](fw *frameWriter, typ byte, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return fw.writeFrame(typ, payload)
}

func readJSONFrame[T any](payload []byte) (T, error) {
	var v T
	err := json.Unmarshal(payload, &v)
	return v, err
}

// WriteHello sends a ClientHello frame.
func (c *Conn) WriteHello(h ClientHello) error {
	return writeJSONFrame(c.fw, byte(ClientHelloPacket), h)
}

// ReadClientHello reads a ClientHello frame, rejecting any packet type
// other than Hello (the handshake must come first, spec §4.H).
func (c *Conn) ReadClientHello() (ClientHello, error) {
	typ, payload, err := c.fr.readFrame()
	if err != nil {
		return ClientHello{}, err
	}
	if ClientPacket(typ) != ClientHelloPacket {
		return ClientHello{}, fmt.Errorf("wire: expected Hello packet, got %s", ClientPacket(typ))
	}
	return readJSONFrame[ClientHello](payload)
}

// WriteServerHello sends the server's ServerHello reply.
func (c *Conn) WriteServerHello(h ServerHello) error {
	return writeJSONFrame(c.fw, byte(ServerHelloPacket), h)
}

// ReadServerHello reads the server's handshake reply, or surfaces an
// Exception packet sent in its place (the server rejects a Hello it
// can't service -- bad revision, bad credentials -- with Exception
// rather than a malformed ServerHello).
func (c *Conn) ReadServerHello() (ServerHello, error) {
	typ, payload, err := c.fr.readFrame()
	if err != nil {
		return ServerHello{}, err
	}
	switch ServerPacket(typ) {
	case ServerHelloPacket:
		return readJSONFrame[ServerHello](payload)
	case ServerExceptionPacket:
		exc, err := readJSONFrame[Exception](payload)
		if err != nil {
			return ServerHello{}, err
		}
		return ServerHello{}, exc.AsError()
	default:
		return ServerHello{}, fmt.Errorf("wire: expected Hello or Exception, got %s", ServerPacket(typ))
	}
}

// CheckRevision reports whether a peer-advertised revision is new
// enough to interoperate with this build.
func CheckRevision(peerRevision uint64) error {
	if peerRevision < MinRevision {
		return fmt.Errorf("wire: peer revision %d is older than the minimum supported revision %d", peerRevision, MinRevision)
	}
	return nil
}

// HashPassword produces a password hash suitable for storing against a
// user's Hello credentials, using the same cost-factor bcrypt scheme as
// the rest of the ecosystem's auth code.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

// CheckPassword verifies a ClientHello's password against a stored
// bcrypt hash. On mismatch it returns an "authentication failed" error
// that wraps bcrypt's own error (so errors.Is still sees bcrypt's
// sentinel), ready for callers to route into an Exception packet.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("wire: authentication failed: %w", err)
	}
	return nil
}
