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

import "unicode/utf16"

// SerializedString is a string whose UTF-8, UTF-16 and quoted-escaped
// forms are computed once up front, so a property name written
// thousands of times per document (via WriteNameSerialized) pays the
// escaping cost exactly once. The quoted form uses the default escape
// table; a Writer's custom CharacterEscapes does not apply to
// pre-serialized values.
type SerializedString struct {
	value  string
	utf8   []byte
	utf16  []uint16
	quoted []byte
}

// NewSerializedString precomputes every form of s.
func NewSerializedString(s string) *SerializedString {
	return &SerializedString{
		value:  s,
		utf8:   []byte(s),
		utf16:  utf16.Encode([]rune(s)),
		quoted: appendEscapedString(nil, s, nil, false),
	}
}

// Value returns the original string.
func (s *SerializedString) Value() string { return s.value }

// UTF8 returns the UTF-8 byte form. Callers must not modify it.
func (s *SerializedString) UTF8() []byte { return s.utf8 }

// UTF16 returns the UTF-16 code unit form. Callers must not modify it.
func (s *SerializedString) UTF16() []uint16 { return s.utf16 }

// Quoted returns the double-quoted, backslash-escaped byte form.
// Callers must not modify it.
func (s *SerializedString) Quoted() []byte { return s.quoted }

func (s *SerializedString) String() string { return s.value }
