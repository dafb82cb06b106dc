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

	"github.com/columnstore/columnstore/errs"
)

// Exception is the wire representation of an errs.Code, the Exception
// packet a server sends in place of Data/EndOfStream when query
// execution fails (spec §4.H, and the error-mapping spec §8 scenario 5
// requires of a forwarding follower).
type Exception struct {
	Family  errs.Family
	Name    string
	Message string
}

func (e Exception) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// AsError converts an Exception back into an *errs.Code so a local
// caller sees the same typed error a direct (non-forwarded) call would
// have produced.
func (e Exception) AsError() error {
	return &errs.Code{Family: e.Family, Name: e.Name, Message: e.Message}
}

// FromError builds an Exception from any error, preserving the full
// Family/Name/Message when the error is already an *errs.Code, and
// otherwise classifying it as a logic error -- the errs package is the
// one source of truth every packet type derives from (errs.go's doc
// comment).
func FromError(err error) Exception {
	if err == nil {
		return Exception{}
	}
	if code, ok := err.(*errs.Code); ok {
		return Exception{Family: code.Family, Name: code.Name, Message: code.Message}
	}
	return Exception{Family: errs.Logic, Name: "LOGICAL_ERROR", Message: err.Error()}
}

// WriteException sends an Exception packet, the mapping a forwarding
// server applies to a remote failure so the original client sees a
// typed error instead of a dropped connection.
func (c *Conn) WriteException(err error) error {
	return writeJSONFrame(c.fw, byte(ServerExceptionPacket), FromError(err))
}
