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

// Package errs defines the stable error code families used across the
// engine so that wire-protocol Exception packets, gRPC status codes, and
// local callers can all be derived from one source of truth.
package errs

import "fmt"

// Family is one of the coarse error kinds from the error handling design:
// invalid input, resource exhaustion, I/O, corruption, cluster/replication,
// or a logic error that should never be caller-caused.
type Family uint8

const (
	InvalidInput Family = iota
	ResourceExhaustion
	IO
	Corruption
	Cluster
	Logic
)

func (f Family) String() string {
	switch f {
	case InvalidInput:
		return "InvalidInput"
	case ResourceExhaustion:
		return "ResourceExhaustion"
	case IO:
		return "IO"
	case Corruption:
		return "Corruption"
	case Cluster:
		return "Cluster"
	case Logic:
		return "Logic"
	default:
		return "Unknown"
	}
}

// Code is one of the stable, enumerable error codes named throughout
// spec.md's error handling design (§7) and invoked by component designs
// in §4.
type Code struct {
	Family  Family
	Name    string // e.g. "SIZES_OF_COLUMNS_DOESNT_MATCH"
	Message string
}

func (c *Code) Error() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Message)
}

// New constructs a Code wrapping a formatted message.
func New(f Family, name, format string, args ...any) *Code {
	return &Code{Family: f, Name: name, Message: fmt.Sprintf(format, args...)}
}

// Well-known codes referenced by the component specifications.
var (
	ErrSizesDontMatch   = func(have, want int) error { return New(InvalidInput, "SIZES_OF_COLUMNS_DOESNT_MATCH", "have %d rows, want %d", have, want) }
	ErrOutOfBound        = func(i, n int) error { return New(InvalidInput, "PARAMETER_OUT_OF_BOUND", "index %d out of bound [0,%d)", i, n) }
	ErrIllegalNullable   = New(Logic, "ILLEGAL_COLUMN", "nullable column cannot wrap another nullable column")
	ErrIllegalConstant   = New(Logic, "ILLEGAL_COLUMN", "constant column's inner column must hold exactly one value")
	ErrTooManyRows       = New(ResourceExhaustion, "TOO_MUCH_ROWS", "row limit exceeded")
	ErrTimeoutExceeded   = New(ResourceExhaustion, "TIMEOUT_EXCEEDED", "execution time limit exceeded")
	ErrQuotaExpired      = New(ResourceExhaustion, "QUOTA_EXPIRED", "quota exceeded for current window")
	ErrChecksumMismatch  = New(Corruption, "CHECKSUM_DOESNT_MATCH", "checksum mismatch")
	ErrNoFileInDataPart  = New(Corruption, "NO_FILE_IN_DATA_PART", "expected file not present in part")
	ErrBadDataPartName   = New(Corruption, "BAD_DATA_PART_NAME", "part directory name is malformed")
	ErrStorageParameter  = New(InvalidInput, "STORAGE_REQUIRES_PARAMETER", "distributed writes require a sharding key or single shard")
	ErrAllTriesFailed    = New(Cluster, "ALL_CONNECTION_TRIES_FAILED", "exhausted all replica connection attempts")
	ErrAllReplicasLost   = New(Cluster, "ALL_REPLICAS_LOST", "refusing to mark the last live replica as lost")
	ErrLogical           = func(format string, args ...any) error { return New(Logic, "LOGICAL_ERROR", format, args...) }
	ErrNotImplemented    = func(what string) error { return New(Logic, "NOT_IMPLEMENTED", "%s is not implemented", what) }
)
