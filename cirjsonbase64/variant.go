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

// Package cirjsonbase64 implements the variant-parameterized Base64
// codec used for CirJSON binary embedding. Unlike
// encoding/base64's fixed Encoding value, a Variant additionally
// carries a configurable max line length (with injected linefeeds) and
// a padding-read-behaviour policy governing how strict decoding is
// about a trailing padding character.
package cirjsonbase64

// PaddingRead controls how a Variant's Decode treats a trailing
// partial quartet with respect to the padding character.
type PaddingRead byte

const (
	// PadRequired rejects a final quartet that is missing its padding.
	PadRequired PaddingRead = iota
	// PadAllowed accepts the final quartet with or without padding.
	PadAllowed
	// PadForbidden rejects a final quartet that carries padding.
	PadForbidden
)

// NoPadding is the sentinel padChar value meaning "this variant never
// pads its output."
const NoPadding = 0

// Variant is one parameterization of Base64: alphabet, padding
// character (or NoPadding), max line length before a linefeed is
// injected, and the padding-read-behaviour used when decoding. Variant
// is a plain value type (its decode table is a fixed-size array, not a
// pointer), so it can be freely copied by WithPaddingRead without any
// shared mutable state.
type Variant struct {
	alphabet   [64]byte
	padChar    byte
	maxLineLen int
	padRead    PaddingRead
	decode6    [128]int8 // ASCII -> 6-bit value, -1 for "not in alphabet"
}

const stdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
const urlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func newVariant(alphabet string, pad byte, maxLine int, padRead PaddingRead) Variant {
	var v Variant
	copy(v.alphabet[:], alphabet)
	v.padChar = pad
	v.maxLineLen = maxLine
	v.padRead = padRead
	for i := range v.decode6 {
		v.decode6[i] = -1
	}
	for i, c := range v.alphabet {
		v.decode6[c] = int8(i)
	}
	if pad != NoPadding {
		v.decode6[pad] = -2 // distinguished "this is the pad char" marker
	}
	return v
}

// MIME is RFC 2045 Base64: '+'/'/' alphabet, '=' padding, a linefeed
// injected every 76 encoded characters.
var MIME = newVariant(stdAlphabet, '=', 76, PadRequired)

// MIMENoLinefeeds is MIME without any line-length limit. This is the
// default variant for CirJSON binary embedding.
var MIMENoLinefeeds = newVariant(stdAlphabet, '=', 0, PadRequired)

// PEM uses the MIME alphabet and padding with 76-character lines.
var PEM = newVariant(stdAlphabet, '=', 76, PadRequired)

// URLSafe uses '-'/'_' in place of '+'/'/' and never pads.
var URLSafe = newVariant(urlAlphabet, NoPadding, 0, PadForbidden)

// WithPaddingRead returns a copy of v with a different padding-read
// policy, sharing the same alphabet.
func (v Variant) WithPaddingRead(p PaddingRead) Variant {
	v.padRead = p
	return v
}

// PadChar reports the configured padding character, or (0, false) if
// the variant never pads.
func (v *Variant) PadChar() (byte, bool) {
	if v.padChar == NoPadding {
		return 0, false
	}
	return v.padChar, true
}

// MaxLineLength is the number of encoded characters per line before a
// linefeed is injected, or 0 for "no limit."
func (v *Variant) MaxLineLength() int { return v.maxLineLen }

// PaddingReadBehaviour reports the variant's decode-side padding
// policy.
func (v *Variant) PaddingReadBehaviour() PaddingRead { return v.padRead }
