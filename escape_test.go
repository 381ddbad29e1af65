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

func TestAppendEscapedStringDefaults(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"abc", `"abc"`},
		{"a\"b", `"a\"b"`},
		{"a\\b", `"a\\b"`},
		{"\n\r\t", `"\n\r\t"`},
		{"\x00", `"\u0000"`},
		{"\x1f", `"\u001f"`},
		{"héllo", `"héllo"`},
	}
	for _, tc := range cases {
		got := string(appendEscapedString(nil, tc.in, nil, false))
		if got != tc.want {
			t.Errorf("escape(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestAppendEscapedStringNonASCII(t *testing.T) {
	got := string(appendEscapedString(nil, "héllo", nil, true))
	if got != `"h\u00e9llo"` {
		t.Fatalf("got %s", got)
	}
	// astral plane characters become surrogate pairs
	got = string(appendEscapedString(nil, "𝄞", nil, true))
	if got != `"\ud834\udd1e"` {
		t.Fatalf("got %s", got)
	}
}

func TestAppendEscapedStringInvalidUTF8(t *testing.T) {
	got := string(appendEscapedString(nil, "a\xffb", nil, false))
	if got != `"a\ufffdb"` {
		t.Fatalf("got %s", got)
	}
}

// hostileEscapes claims the characters the format must always escape
// itself, answering with an empty sequence that would corrupt the
// output if it were ever honored for them.
type hostileEscapes struct{}

func (hostileEscapes) EscapeFor(r rune) (string, bool) {
	switch r {
	case '"', '\\', '\n', 0x01, 'é':
		return "", true
	}
	return "", false
}

func TestMandatoryEscapesWinOverCustom(t *testing.T) {
	got := string(appendEscapedString(nil, "a\"b\\c\nd\x01", hostileEscapes{}, false))
	want := `"a\"b\\c\nd\u0001"`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	// with escape-non-ASCII on, characters above U+007F are also out
	// of the custom hook's reach
	got = string(appendEscapedString(nil, "é", hostileEscapes{}, true))
	if got != `"\u00e9"` {
		t.Fatalf("got %s", got)
	}
}

func TestUTF16Surrogates(t *testing.T) {
	hi, lo := utf16Surrogates(0x1F600)
	if hi != 0xD83D || lo != 0xDE00 {
		t.Fatalf("surrogates = %04x %04x", hi, lo)
	}
}

func TestEscapeDecodeRoundTrip(t *testing.T) {
	// every string the encoder can produce must decode back to the
	// original through the reader's string lexer
	inputs := []string{
		"plain",
		"with \"quotes\" and \\slashes\\",
		"\n\t\r\b\f",
		"control \x01\x02\x1f",
		"mixed é ☃ 😀 text",
		"",
	}
	for _, in := range inputs {
		quoted := string(appendEscapedString(nil, in, nil, false))
		r := readerOver(quoted)
		tok, err := r.NextToken()
		if err != nil || tok != ValueString {
			t.Fatalf("%s: token %d, err %v", quoted, tok, err)
		}
		got, _ := r.StringValue()
		if got != in {
			t.Errorf("round trip %q -> %s -> %q", in, quoted, got)
		}
		r.Close()

		// and the escape-everything form decodes identically
		quoted = string(appendEscapedString(nil, in, nil, true))
		r = readerOver(quoted)
		if _, err := r.NextToken(); err != nil {
			t.Fatalf("%s: %s", quoted, err)
		}
		got, _ = r.StringValue()
		if got != in {
			t.Errorf("escaped round trip %q -> %s -> %q", in, quoted, got)
		}
		r.Close()
	}
}
