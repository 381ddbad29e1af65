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

import (
	"strconv"
	"strings"
)

// pointerSegment is one path element: either a property name or a
// non-negative array index.
type pointerSegment struct {
	name    string
	index   int
	isIndex bool
}

// Pointer is an immutable CirJSON-Pointer (RFC 6901-style) path. It is
// built once, from a full path string plus per-segment offsets into
// that string plus a tail index, so String is an O(1) slice operation
// rather than repeated concatenation.
type Pointer struct {
	full    string
	offsets []int            // offsets[i] is the byte offset of segment i's "/..." in full
	tail    int              // index into offsets of the current tail segment (len(offsets) if empty)
	segs    []pointerSegment // retained for Segment(i); not needed for String()
}

// Root is the empty pointer.
var Root = Pointer{}

func escapeSegment(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '~':
			b.WriteString("~0")
		case '/':
			b.WriteString("~1")
		default:
			b.WriteRune(r)
		}
	}
}

func newPointer(segs []pointerSegment) Pointer {
	if len(segs) == 0 {
		return Root
	}
	var b strings.Builder
	offsets := make([]int, len(segs))
	for i, s := range segs {
		offsets[i] = b.Len()
		b.WriteByte('/')
		if s.isIndex {
			b.WriteString(strconv.Itoa(s.index))
		} else {
			escapeSegment(&b, s.name)
		}
	}
	return Pointer{full: b.String(), offsets: offsets, tail: len(offsets) - 1, segs: segs}
}

// Segment returns the i'th path segment for programmatic inspection:
// either a property name, or a non-negative array index with isIndex
// set to true.
func (p Pointer) Segment(i int) (name string, index int, isIndex bool) {
	s := p.segs[i]
	return s.name, s.index, s.isIndex
}

// String renders the full path, e.g. "/a/0/b".
func (p Pointer) String() string {
	if len(p.offsets) == 0 {
		return ""
	}
	return p.full
}

// IsRoot reports whether p addresses the document root.
func (p Pointer) IsRoot() bool { return len(p.offsets) == 0 }

// Depth is the number of segments in the pointer.
func (p Pointer) Depth() int { return len(p.offsets) }

// Tail returns the substring of the path from the last segment to the
// end, without reallocating.
func (p Pointer) Tail() string {
	if len(p.offsets) == 0 {
		return ""
	}
	return p.full[p.offsets[p.tail]:]
}

// ParsePointer parses an RFC 6901-style path string ("/a/0/b") into a
// Pointer. The empty string is the root pointer. Segments that parse
// as a non-negative integer with no leading zeros match by array
// index; everything else matches by property name.
func ParsePointer(s string) (Pointer, error) {
	segs, err := parsePointer(s)
	if err != nil {
		return Root, err
	}
	return newPointer(segs), nil
}

// parsePointer parses a "/a/0/b" string into segments. The streaming
// core itself only ever builds pointers forward from a ContextStack;
// this exists for callers that persist pointer strings and want them
// back in segment form.
func parsePointer(s string) ([]pointerSegment, error) {
	if s == "" {
		return nil, nil
	}
	if s[0] != '/' {
		return nil, errInvalidPointer("pointer must start with '/'")
	}
	parts := strings.Split(s[1:], "/")
	segs := make([]pointerSegment, 0, len(parts))
	for _, raw := range parts {
		name := unescapeSegment(raw)
		if idx, ok := parseArrayIndex(name); ok {
			segs = append(segs, pointerSegment{isIndex: true, index: idx})
		} else {
			segs = append(segs, pointerSegment{name: name})
		}
	}
	return segs, nil
}

func unescapeSegment(s string) string {
	if !strings.ContainsRune(s, '~') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '~' && i+1 < len(s) {
			switch s[i+1] {
			case '0':
				b.WriteByte('~')
				i++
				continue
			case '1':
				b.WriteByte('/')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// parseArrayIndex accepts only a non-negative decimal integer with no
// leading zeros (except the literal "0" itself) that fits in 32-bit
// signed range.
func parseArrayIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

type pointerError string

func (e pointerError) Error() string { return string(e) }

func errInvalidPointer(msg string) error { return pointerError(msg) }
