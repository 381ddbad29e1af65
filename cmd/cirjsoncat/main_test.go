// Copyright (C) 2022 Sneller, Inc.
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

package main

import (
	"strings"
	"testing"

	"github.com/cirjson-go/cirjson"
)

func recopy(t *testing.T, doc string, pretty bool) string {
	t.Helper()
	factory := cirjson.NewBuilder().Build()
	reader := factory.NewReaderFromString(doc)
	defer reader.Close()
	writer := factory.NewWriterToBytes()
	if pretty {
		writer.SetPrettyPrinter(&indentPrinter{})
	}
	if err := copyDocument(reader, writer.Writer); err != nil {
		t.Fatalf("%s: %s", doc, err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return writer.String()
}

func TestCopyDocumentCompact(t *testing.T) {
	docs := []string{
		`{"__cirJsonId__":"root","x":1}`,
		`["ids",1,"two",true,null]`,
		`{"__cirJsonId__":"r","nest":{"__cirJsonId__":"r/nest","deep":["r/nest/deep",3.5]}}`,
	}
	for _, doc := range docs {
		if got := recopy(t, doc, false); got != doc {
			t.Errorf("round trip:\n in: %s\nout: %s", doc, got)
		}
	}
}

func TestCopyDocumentPreservesBigNumbers(t *testing.T) {
	doc := `["ids",123456789012345678901234567890]`
	if got := recopy(t, doc, false); got != doc {
		t.Errorf("big integer mangled:\n in: %s\nout: %s", doc, got)
	}
}

func TestCopyDocumentPretty(t *testing.T) {
	const compact = `{"__cirJsonId__":"r","a":1,"b":2}`
	got := recopy(t, compact, true)
	if !strings.Contains(got, "\n  ") {
		t.Fatalf("pretty output not indented: %q", got)
	}
	// pretty-printing is insignificant whitespace: re-reading the
	// pretty form compactly must give back the original document
	if back := recopy(t, got, false); back != compact {
		t.Fatalf("pretty output did not reparse to the original:\n%s\n-> %s", got, back)
	}
}

func TestIndentPrinterFresh(t *testing.T) {
	p := &indentPrinter{depth: 3}
	fresh := p.Fresh().(*indentPrinter)
	if fresh.depth != 0 {
		t.Fatal("Fresh did not reset depth")
	}
}
