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

import "testing"

func TestPointerEscaping(t *testing.T) {
	p := newPointer([]pointerSegment{
		{name: "a/b"},
		{name: "t~ilde"},
		{isIndex: true, index: 3},
		{name: "plain"},
	})
	want := "/a~1b/t~0ilde/3/plain"
	if got := p.String(); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
	if p.Depth() != 4 {
		t.Fatalf("Depth = %d", p.Depth())
	}
	if got := p.Tail(); got != "/plain" {
		t.Fatalf("Tail = %q", got)
	}
	name, _, isIndex := p.Segment(0)
	if isIndex || name != "a/b" {
		t.Fatalf("Segment(0) = %q, %v", name, isIndex)
	}
	_, idx, isIndex := p.Segment(2)
	if !isIndex || idx != 3 {
		t.Fatalf("Segment(2) = %d, %v", idx, isIndex)
	}
}

func TestPointerRoot(t *testing.T) {
	if !Root.IsRoot() || Root.String() != "" || Root.Depth() != 0 || Root.Tail() != "" {
		t.Fatal("Root pointer misbehaves")
	}
}

func TestParsePointer(t *testing.T) {
	cases := []struct {
		in      string
		names   []string
		indices []int // -1 for name segments
	}{
		{"", nil, nil},
		{"/a/0/b", []string{"a", "", "b"}, []int{-1, 0, -1}},
		{"/a~1b/x~0y", []string{"a/b", "x~y"}, []int{-1, -1}},
		// leading zeros and out-of-range values match as names, not indices
		{"/01", []string{"01"}, []int{-1}},
		{"/99999999999", []string{"99999999999"}, []int{-1}},
		{"/0", []string{""}, []int{0}},
	}
	for _, tc := range cases {
		p, err := ParsePointer(tc.in)
		if err != nil {
			t.Fatalf("%q: %s", tc.in, err)
		}
		if p.Depth() != len(tc.names) {
			t.Fatalf("%q: depth %d, want %d", tc.in, p.Depth(), len(tc.names))
		}
		for i := range tc.names {
			name, idx, isIndex := p.Segment(i)
			if tc.indices[i] >= 0 {
				if !isIndex || idx != tc.indices[i] {
					t.Errorf("%q segment %d: got (%q,%d,%v), want index %d", tc.in, i, name, idx, isIndex, tc.indices[i])
				}
			} else if isIndex || name != tc.names[i] {
				t.Errorf("%q segment %d: got (%q,%v), want name %q", tc.in, i, name, isIndex, tc.names[i])
			}
		}
	}

	if _, err := ParsePointer("no-leading-slash"); err == nil {
		t.Fatal("missing leading slash accepted")
	}
}

func TestParsePointerRoundTrip(t *testing.T) {
	for _, s := range []string{"", "/a", "/a/0/b", "/a~1b/~0", "/x/12/y/0"} {
		p, err := ParsePointer(s)
		if err != nil {
			t.Fatal(err)
		}
		if p.String() != s {
			t.Errorf("round trip %q -> %q", s, p.String())
		}
	}
}

func TestParseArrayIndex(t *testing.T) {
	cases := []struct {
		in string
		v  int
		ok bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"42", 42, true},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false}, // overflows int32
		{"01", 0, false},         // leading zero
		{"", 0, false},
		{"-1", 0, false},
		{"1a", 0, false},
	}
	for _, tc := range cases {
		v, ok := parseArrayIndex(tc.in)
		if ok != tc.ok || (ok && v != tc.v) {
			t.Errorf("parseArrayIndex(%q) = (%d, %v), want (%d, %v)", tc.in, v, ok, tc.v, tc.ok)
		}
	}
}
