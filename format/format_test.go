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

package format

import (
	"io"
	"strings"
	"testing"
)

func TestJSONEachRowReaderParsesLines(t *testing.T) {
	input := `{"a":1,"b":"x"}
{"a":2,"b":"y"}
`
	r := NewJSONEachRowReader(strings.NewReader(input), Options{})
	var rows []Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1]["b"] != "y" {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
}

func TestJSONEachRowReaderRejectsUnknownField(t *testing.T) {
	r := NewJSONEachRowReader(strings.NewReader(`{"a":1,"extra":2}`+"\n"), Options{
		Schema: NewSchema([]string{"a"}),
	})
	_, err := r.Next()
	if err == nil {
		t.Fatal("expected an error for an unknown field with skip_unknown_fields=false")
	}
}

func TestJSONEachRowReaderSkipsUnknownFieldWhenConfigured(t *testing.T) {
	r := NewJSONEachRowReader(strings.NewReader(`{"a":1,"extra":2}`+"\n"), Options{
		Schema:            NewSchema([]string{"a"}),
		SkipUnknownFields: true,
	})
	row, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := row["extra"]; ok {
		t.Fatal("expected the unknown field to be dropped")
	}
}

func TestJSONEachRowReaderFlattensNested(t *testing.T) {
	r := NewJSONEachRowReader(strings.NewReader(`{"a":{"b":{"c":1}}}`+"\n"), Options{
		ImportNestedJSON: true,
	})
	row, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if row["a.b.c"] == nil {
		t.Fatalf("expected flattened key a.b.c, got %+v", row)
	}
}

func TestFindSegmentEndCutsAfterFirstNewlinePastMinSize(t *testing.T) {
	// a literal "\n" inside a JSON string must not be mistaken for a real
	// newline byte; here we only test real newline-byte placement since
	// JSON escapes \n as two characters, not a raw 0x0A inside the string.
	buf := []byte(`{"a":"x"}` + "\n" + `{"b":"y"}` + "\n")
	end, ok := FindSegmentEnd(buf, 5)
	if !ok {
		t.Fatal("expected a segment boundary")
	}
	if string(buf[:end]) != `{"a":"x"}`+"\n" {
		t.Fatalf("unexpected segment: %q", buf[:end])
	}
}

func TestSegmentatorProducesWholeLineChunks(t *testing.T) {
	src := []byte(`{"a":1}` + "\n" + `{"a":2}` + "\n" + `{"a":3}` + "\n")
	seg := NewSegmentator(src, 10)
	var chunks [][]byte
	for {
		chunk, ok, err := seg.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		chunks = append(chunks, chunk)
	}
	joined := 0
	for _, c := range chunks {
		joined += len(c)
	}
	if joined != len(src) {
		t.Fatalf("chunks don't cover the whole source: got %d bytes, want %d", joined, len(src))
	}
}

func TestParallelParsingInputFormatPreservesOrder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(`{"a":`)
		b.WriteString(string(rune('0' + i%10)))
		b.WriteString("}\n")
	}
	p := NewParallelParsingInputFormat([]byte(b.String()), 4, 64, Options{})

	var total int
	for {
		rows, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		total += len(rows)
	}
	if total != 50 {
		t.Fatalf("got %d rows, want 50", total)
	}
}

func TestParallelParsingInputFormatCancelStopsCleanly(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1000; i++ {
		b.WriteString(`{"a":1}` + "\n")
	}
	p := NewParallelParsingInputFormat([]byte(b.String()), 2, 32, Options{})
	p.Cancel()
	// draining after cancel must terminate rather than hang.
	for {
		_, err := p.Next()
		if err != nil {
			break
		}
	}
}
