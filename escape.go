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

import "unicode/utf8"

// Portions below copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
// distributed with the Go source.

// safeSet holds true for every ASCII byte that can appear literally
// inside a CirJSON string without escaping: every byte except the
// control characters (0-31), the double quote, and the backslash.
var safeSet = [utf8.RuneSelf]bool{
	' ': true, '!': true, '"': false, '#': true, '$': true, '%': true,
	'&': true, '\'': true, '(': true, ')': true, '*': true, '+': true,
	',': true, '-': true, '.': true, '/': true, '0': true, '1': true,
	'2': true, '3': true, '4': true, '5': true, '6': true, '7': true,
	'8': true, '9': true, ':': true, ';': true, '<': true, '=': true,
	'>': true, '?': true, '@': true, 'A': true, 'B': true, 'C': true,
	'D': true, 'E': true, 'F': true, 'G': true, 'H': true, 'I': true,
	'J': true, 'K': true, 'L': true, 'M': true, 'N': true, 'O': true,
	'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true, '[': true,
	'\\': false, ']': true, '^': true, '_': true, '`': true, 'a': true,
	'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true,
	'n': true, 'o': true, 'p': true, 'q': true, 'r': true, 's': true,
	't': true, 'u': true, 'v': true, 'w': true, 'x': true, 'y': true,
	'z': true, '{': true, '|': true, '}': true, '~': true, '\u007f': true,
}

var hexDigits = "0123456789abcdef"

// CharacterEscapes lets a caller override how individual characters
// are escaped when writing string content, e.g. to additionally escape
// HTML-sensitive characters. A nil CharacterEscapes means "use the
// default escape table."
type CharacterEscapes interface {
	// EscapeFor returns the literal escape sequence (without the
	// leading backslash) for r, or ("", false) to use the writer's
	// default handling.
	EscapeFor(r rune) (string, bool)
}

// appendEscapedString appends the quoted, escaped CirJSON
// representation of s to dst. The mandatory escapes always win:
// control characters, the quote and the backslash (and, with
// escapeNonASCII, everything above U+007F) are handled by the default
// table first, and esc (if non-nil) is only consulted for characters
// none of those rules claimed. A custom escape policy can therefore
// add escapes but never suppress one the format requires.
func appendEscapedString(dst []byte, s string, esc CharacterEscapes, escapeNonASCII bool) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			if safeSet[b] {
				if esc != nil {
					if seq, ok := esc.EscapeFor(rune(b)); ok {
						dst = appendPending(dst, s, start, i)
						dst = append(dst, '\\')
						dst = append(dst, seq...)
						i++
						start = i
						continue
					}
				}
				i++
				continue
			}
			dst = appendPending(dst, s, start, i)
			dst = append(dst, '\\')
			switch b {
			case '\\', '"':
				dst = append(dst, b)
			case '\n':
				dst = append(dst, 'n')
			case '\r':
				dst = append(dst, 'r')
			case '\t':
				dst = append(dst, 't')
			case '\b':
				dst = append(dst, 'b')
			case '\f':
				dst = append(dst, 'f')
			default:
				dst = appendUnicodeEscape(dst, rune(b))
			}
			i++
			start = i
			continue
		}
		c, size := utf8.DecodeRuneInString(s[i:])
		if c == utf8.RuneError && size == 1 {
			dst = appendPending(dst, s, start, i)
			dst = append(dst, '\\', 'u', 'f', 'f', 'f', 'd')
			i += size
			start = i
			continue
		}
		// U+2028/U+2029 are valid in CirJSON strings but break naive
		// embedding inside a <script> tag, so they are always escaped.
		if escapeNonASCII || c == ' ' || c == ' ' {
			dst = appendPending(dst, s, start, i)
			if c > 0xFFFF {
				r1, r2 := utf16Surrogates(c)
				dst = append(dst, '\\')
				dst = appendUnicodeEscape(dst, r1)
				dst = append(dst, '\\')
				dst = appendUnicodeEscape(dst, r2)
			} else {
				dst = append(dst, '\\')
				dst = appendUnicodeEscape(dst, c)
			}
			i += size
			start = i
			continue
		}
		if esc != nil {
			if seq, ok := esc.EscapeFor(c); ok {
				dst = appendPending(dst, s, start, i)
				dst = append(dst, '\\')
				dst = append(dst, seq...)
				i += size
				start = i
				continue
			}
		}
		i += size
	}
	dst = appendPending(dst, s, start, len(s))
	dst = append(dst, '"')
	return dst
}

func appendPending(dst []byte, s string, start, end int) []byte {
	if start < end {
		dst = append(dst, s[start:end]...)
	}
	return dst
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	return append(dst, 'u',
		hexDigits[(r>>12)&0xF], hexDigits[(r>>8)&0xF],
		hexDigits[(r>>4)&0xF], hexDigits[r&0xF])
}

func utf16Surrogates(r rune) (rune, rune) {
	const (
		surr1 = 0xd800
		surr2 = 0xdc00
		surrSelf = 0x10000
	)
	r -= surrSelf
	return surr1 + (r>>10)&0x3ff, surr2 + r&0x3ff
}
