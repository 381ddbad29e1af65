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
	"io"

	"github.com/cirjson-go/cirjson"
)

// indentPrinter is a minimal cirjson.PrettyPrinter: two-space indent,
// one entry per line. The core ships no such implementation (layout
// policy is explicitly out of its scope); this is cirjsoncat's own,
// the way a caller of the library is expected to supply one.
type indentPrinter struct {
	depth int
}

var _ cirjson.PrettyPrinter = (*indentPrinter)(nil)
var _ cirjson.Instantiatable = (*indentPrinter)(nil)

// Fresh returns a new indentPrinter at depth 0, so a single *indentPrinter
// value can be installed on many Writers (SetPrettyPrinter calls Fresh
// once per Writer) without them sharing indentation state.
func (p *indentPrinter) Fresh() cirjson.PrettyPrinter { return &indentPrinter{} }

func (p *indentPrinter) writeNewlineIndent(w io.Writer, depth int) error {
	buf := make([]byte, 0, 1+depth*2)
	buf = append(buf, '\n')
	for i := 0; i < depth; i++ {
		buf = append(buf, ' ', ' ')
	}
	_, err := w.Write(buf)
	return err
}

func (p *indentPrinter) WriteRootValueSeparator(w io.Writer) error { return nil }

func (p *indentPrinter) WriteStartObject(w io.Writer) error { return nil }

func (p *indentPrinter) WriteEndObject(w io.Writer, entryCount int) error {
	p.depth--
	if entryCount == 0 {
		return nil
	}
	return p.writeNewlineIndent(w, p.depth)
}

func (p *indentPrinter) WriteStartArray(w io.Writer) error { return nil }

func (p *indentPrinter) WriteEndArray(w io.Writer, entryCount int) error {
	p.depth--
	if entryCount <= 1 { // entryCount includes the mandatory identity slot
		return nil
	}
	return p.writeNewlineIndent(w, p.depth)
}

func (p *indentPrinter) WriteObjectEntrySeparator(w io.Writer) error {
	if _, err := w.Write([]byte{','}); err != nil {
		return err
	}
	return p.writeNewlineIndent(w, p.depth)
}

func (p *indentPrinter) WriteObjectNameValueSeparator(w io.Writer) error {
	_, err := w.Write([]byte{':', ' '})
	return err
}

func (p *indentPrinter) WriteArrayValueSeparator(w io.Writer) error {
	if _, err := w.Write([]byte{','}); err != nil {
		return err
	}
	return p.writeNewlineIndent(w, p.depth)
}

func (p *indentPrinter) BeforeArrayValues(w io.Writer) error {
	p.depth++
	return p.writeNewlineIndent(w, p.depth)
}

func (p *indentPrinter) BeforeObjectEntries(w io.Writer) error {
	p.depth++
	return p.writeNewlineIndent(w, p.depth)
}
