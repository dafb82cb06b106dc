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

// Command columnctl is a minimal wire-protocol client: it dials a
// columnstored server, completes the Hello handshake, and issues one
// query or 4-letter-word command per invocation. It is deliberately
// thin -- the full interactive client UX is out of scope (spec §1).
// Subcommands are dispatched by hand and parsed with flag.NewFlagSet,
// following cmd/sdb's switch-on-args[0] style rather than cobra -- this
// is core client tooling, not the cluster-admin surface cobra is
// reserved for.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/wire"
)

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "usage:\n")
		fmt.Fprintf(os.Stderr, "    %s query [-server addr] <sql>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "    %s 4lw [-server addr] <command>\n", os.Args[0])
		os.Exit(1)
	}

	switch args[0] {
	case "query":
		queryCmd := flag.NewFlagSet("query", flag.ExitOnError)
		serverAddr := queryCmd.String("server", "127.0.0.1:9000", "columnstored wire-protocol address")
		if queryCmd.Parse(args[1:]) != nil {
			os.Exit(1)
		}
		if queryCmd.NArg() != 1 {
			exitf("usage: query [-server addr] <sql>\n")
		}
		if err := runQuery(*serverAddr, queryCmd.Arg(0)); err != nil {
			exitf("columnctl: %v\n", err)
		}
	case "4lw":
		lwCmd := flag.NewFlagSet("4lw", flag.ExitOnError)
		serverAddr := lwCmd.String("server", "127.0.0.1:9000", "columnstored wire-protocol address")
		if lwCmd.Parse(args[1:]) != nil {
			os.Exit(1)
		}
		if lwCmd.NArg() != 1 {
			exitf("usage: 4lw [-server addr] <command>\n")
		}
		if err := runFourLetterWord(*serverAddr, lwCmd.Arg(0)); err != nil {
			exitf("columnctl: %v\n", err)
		}
	default:
		exitf("invalid sub-command %q: commands are query, 4lw\n", args[0])
	}
}

func runQuery(serverAddr, sql string) error {
	conn, err := wire.Dial(serverAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteHello(wire.ClientHello{ClientName: "columnctl", Revision: wire.Revision}); err != nil {
		return err
	}
	hello, err := conn.ReadServerHello()
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}
	fmt.Printf("connected to %s (revision %d)\n", hello.ServerName, hello.Revision)

	if err := conn.WriteQuery(wire.NewQuery(sql)); err != nil {
		return err
	}

	tracker := column.NewTracker(0)
	rows := 0
	for {
		msg, err := conn.Next(tracker)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		switch msg.Type {
		case wire.ServerDataPacket:
			rows += msg.Data.RowCount()
		case wire.ServerProgressPacket:
			fmt.Printf("progress: %d rows read, %d bytes\n", msg.Progress.ReadRows, msg.Progress.ReadBytes)
		case wire.ServerExceptionPacket:
			return msg.Exception.AsError()
		case wire.ServerEndOfStreamPacket:
			fmt.Printf("%d rows returned\n", rows)
			return nil
		}
	}
}

func runFourLetterWord(serverAddr, word string) error {
	host, _, err := net.SplitHostPort(serverAddr)
	if err != nil {
		host = serverAddr
	}
	// 4-letter words are served on the coordination port, which is always
	// 2181 here (columnstored's default -4lw-addr port), whatever the wire
	// protocol port is.
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, "2181"), 3*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", word); err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	reply, err := io.ReadAll(conn)
	if err != nil && len(reply) == 0 {
		return err
	}
	fmt.Print(string(reply))
	return nil
}
