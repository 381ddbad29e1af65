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

// TokenKind is the tag of a single lexical/structural event produced
// by a Reader and consumed (symmetrically) by a Writer.
type TokenKind byte

const (
	NoToken TokenKind = iota
	StartObject
	EndObject
	StartArray
	EndArray
	IDPropertyName
	PropertyName
	ValueString
	ValueNumberInt
	ValueNumberFloat
	ValueTrue
	ValueFalse
	ValueNull
	EmbeddedObject
	NotAvailable
)

// text is the canonical ASCII representation of kinds that have one
// fixed textual form; scalar/name kinds carry their own text instead.
var tokenText = [...]string{
	NoToken:        "",
	StartObject:    "{",
	EndObject:      "}",
	StartArray:     "[",
	EndArray:       "]",
	IDPropertyName: "__cirJsonId__",
	PropertyName:   "",
	ValueString:    "",
	ValueNumberInt: "",
	ValueNumberFloat: "",
	ValueTrue:      "true",
	ValueFalse:     "false",
	ValueNull:      "null",
	EmbeddedObject: "",
	NotAvailable:   "",
}

// tokenBytes precomputes the byte-array form of fixed-text kinds so
// the writer's fast path can append without allocating.
var tokenBytes = [...][]byte{
	StartObject:  []byte{'{'},
	EndObject:    []byte{'}'},
	StartArray:   []byte{'['},
	EndArray:     []byte{']'},
	IDPropertyName: []byte("__cirJsonId__"),
	ValueTrue:    []byte("true"),
	ValueFalse:   []byte("false"),
	ValueNull:    []byte("null"),
}

// String returns the canonical fixed text for kind, or "" for kinds
// whose text varies per-token (names, scalars).
func (k TokenKind) String() string {
	if int(k) < len(tokenText) {
		return tokenText[k]
	}
	return ""
}

// Bytes is the byte-array twin of String, used on the writer's raw
// emission fast path.
func (k TokenKind) Bytes() []byte {
	if int(k) < len(tokenBytes) {
		return tokenBytes[k]
	}
	return nil
}

// IsScalar reports whether the token carries a terminal value rather
// than structure.
func (k TokenKind) IsScalar() bool {
	switch k {
	case ValueString, ValueNumberInt, ValueNumberFloat, ValueTrue, ValueFalse, ValueNull, EmbeddedObject:
		return true
	default:
		return false
	}
}

// IsStructureStart reports whether the token opens a container.
func (k TokenKind) IsStructureStart() bool {
	return k == StartObject || k == StartArray
}

// IsStructureEnd reports whether the token closes a container.
func (k TokenKind) IsStructureEnd() bool {
	return k == EndObject || k == EndArray
}

// IsNumeric reports whether the token is one of the numeric kinds.
func (k TokenKind) IsNumeric() bool {
	return k == ValueNumberInt || k == ValueNumberFloat
}

// IsBoolean reports whether the token is a boolean literal.
func (k TokenKind) IsBoolean() bool {
	return k == ValueTrue || k == ValueFalse
}

// NumberType distinguishes the representations a ValueNumberInt or
// ValueNumberFloat token may resolve to once a typed accessor forces a
// conversion.
type NumberType byte

const (
	NumberUnknown NumberType = iota
	NumberInt32
	NumberInt64
	NumberBigInt
	NumberFloat // raw textual float, exact representation undecided
)

func (n NumberType) String() string {
	switch n {
	case NumberInt32:
		return "int32"
	case NumberInt64:
		return "int64"
	case NumberBigInt:
		return "bigint"
	case NumberFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ReaderCapability is a closed set of boolean properties of a Reader
// that callers can branch on.
type ReaderCapability uint32

const (
	CapDuplicateProperties ReaderCapability = 1 << iota
	CapScalarsAsObjects
	CapUntypedScalars
	CapExactFloats
)

// WriterCapability is the writer-side symmetric capability set.
type WriterCapability uint32

const (
	CapNativeTypeIDs WriterCapability = 1 << iota
	CapWriteBinaryNatively
)

// Has reports whether all bits in mask are set in caps.
func (caps ReaderCapability) Has(mask ReaderCapability) bool { return caps&mask == mask }

// Has reports whether all bits in mask are set in caps.
func (caps WriterCapability) Has(mask WriterCapability) bool { return caps&mask == mask }

// cirJSONIDName is the mandatory identity property name required by
// the wire format.
const cirJSONIDName = "__cirJsonId__"
