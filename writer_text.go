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

package cirjson

import "bytes"

// TextWriter is a Writer targeting an in-memory buffer, for callers
// that want the finished document as a string/[]byte rather than
// streaming it straight to a socket or file.
type TextWriter struct {
	*Writer
	buf *bytes.Buffer
}

// NewTextWriter returns a TextWriter with its own internal buffer.
func NewTextWriter() *TextWriter {
	buf := new(bytes.Buffer)
	return &TextWriter{Writer: NewWriter(buf), buf: buf}
}

// String returns the document written so far.
func (w *TextWriter) String() string { return w.buf.String() }

// Bytes returns the document written so far without copying.
func (w *TextWriter) Bytes() []byte { return w.buf.Bytes() }
