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

import "fmt"

// Unknown is the sentinel value used for any Location field that
// could not be determined.
const Unknown = -1

// Location is an immutable source position. Any field may be Unknown
// when the underlying content reference cannot produce it (for
// example, char offsets are meaningless for a byte-oriented source
// that has not decoded any text yet).
type Location struct {
	// SourceRef is an opaque description of the content being read or
	// written (a file name, a URL, "<byte array>", etc). It is only
	// used for rendering diagnostics.
	SourceRef any

	ByteOffset int64
	CharOffset int64
	Line       int
	Column     int
}

// NoLocation is the sentinel rendered as "[No location information]".
var NoLocation = Location{ByteOffset: Unknown, CharOffset: Unknown, Line: Unknown, Column: Unknown}

// IsEmpty reports whether loc carries no information at all.
//
// This intentionally avoids Go's == on the struct: SourceRef is an
// any, and if a caller ever stashes an uncomparable dynamic value
// there (a slice, a map), a direct struct comparison would panic.
func (loc Location) IsEmpty() bool {
	return loc.SourceRef == nil &&
		loc.ByteOffset == Unknown && loc.CharOffset == Unknown &&
		loc.Line == Unknown && loc.Column == Unknown
}

func appendOffsetDescription(dst []byte, loc Location, includeSource bool) []byte {
	src := "UNKNOWN"
	if includeSource && loc.SourceRef != nil {
		src = fmt.Sprint(loc.SourceRef)
	}
	dst = append(dst, "Source: "...)
	dst = append(dst, src...)
	dst = append(dst, "; "...)
	if loc.Line != Unknown || loc.Column != Unknown {
		dst = append(dst, fmt.Sprintf("line: %s, column: %s", renderField(loc.Line), renderField(loc.Column))...)
		return dst
	}
	dst = append(dst, fmt.Sprintf("byte offset: #%s", renderField64(loc.ByteOffset))...)
	return dst
}

func renderField(v int) string {
	if v == Unknown {
		return "UNKNOWN"
	}
	return fmt.Sprintf("%d", v)
}

func renderField64(v int64) string {
	if v == Unknown {
		return "UNKNOWN"
	}
	return fmt.Sprintf("%d", v)
}

// String renders the location the way error messages suffix it:
// "[Source: ...; line: N, column: M]", or "[No location information]"
// for the zero-value sentinel.
func (loc Location) String() string {
	return loc.describe(true)
}

func (loc Location) describe(includeSource bool) string {
	if loc.IsEmpty() {
		return "[No location information]"
	}
	buf := make([]byte, 0, 64)
	buf = append(buf, '[')
	buf = appendOffsetDescription(buf, loc, includeSource)
	buf = append(buf, ']')
	return string(buf)
}
