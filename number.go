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
	"math/big"
	"strconv"
)

// classifyInteger buckets a sequence of ASCII digits (sign already
// stripped, no leading zero beyond a single "0") by how large a type
// is needed to hold it: up to 9 digits always fits an int32, up to 18
// always fits an int64, and anything longer gets big.Int treatment.
func classifyInteger(digits []byte, negative bool) NumberType {
	switch {
	case len(digits) <= 9:
		return NumberInt32
	case len(digits) <= 18:
		return NumberInt64
	default:
		return NumberBigInt
	}
}

// parsedNumber is the deferred-conversion representation the reader
// builds while scanning a numeric token: it records byte offsets of
// the integer, fraction and exponent parts within the raw token text
// rather than eagerly converting, so a caller that only ever asks for
// the raw text (NumberText) pays no conversion cost at all.
type parsedNumber struct {
	raw       string
	negative  bool
	intStart  int
	intEnd    int
	fracStart int // -1 if absent
	fracEnd   int
	expStart  int // -1 if absent
	expEnd    int
	typ       NumberType
}

func (n *parsedNumber) isFloat() bool {
	return n.fracStart >= 0 || n.expStart >= 0
}

// Int32 converts n to an int32. The caller must have already verified
// n fits (NumberType == NumberInt32).
func (n *parsedNumber) Int32() (int32, error) {
	v, err := strconv.ParseInt(n.raw[:n.intEnd], 10, 32)
	return int32(v), err
}

// Int64 converts n to an int64.
func (n *parsedNumber) Int64() (int64, error) {
	return strconv.ParseInt(n.signedIntText(), 10, 64)
}

func (n *parsedNumber) signedIntText() string {
	if n.negative {
		return "-" + n.raw[n.intStart:n.intEnd]
	}
	return n.raw[n.intStart:n.intEnd]
}

// BigInt converts n to an arbitrary-precision integer.
func (n *parsedNumber) BigInt() (*big.Int, error) {
	z := new(big.Int)
	_, ok := z.SetString(n.signedIntText(), 10)
	if !ok {
		return nil, &MisuseError{StreamError: StreamError{Msg: "malformed integer literal: " + n.raw}}
	}
	return z, nil
}

// Float64 parses n with strconv.ParseFloat. It is the only float64
// conversion path: FormatFeatureUseFastDoubleParser is not consulted,
// and disabling it does not change how numbers are parsed.
func (n *parsedNumber) Float64() (float64, error) {
	return strconv.ParseFloat(n.raw, 64)
}

// Float32 parses n as a 32-bit float.
func (n *parsedNumber) Float32() (float32, error) {
	v, err := strconv.ParseFloat(n.raw, 32)
	return float32(v), err
}

// BigDecimal converts n to an arbitrary-precision decimal via
// math/big.Float with enough precision to round-trip the original
// digit count exactly.
func (n *parsedNumber) BigDecimal() (*big.Float, error) {
	prec := uint(len(n.raw)) * 4
	if prec < 64 {
		prec = 64
	}
	f, _, err := big.ParseFloat(n.raw, 10, prec, big.ToNearestEven)
	return f, err
}

// appendInt formats v in decimal into a reused buffer.
func appendInt(dst []byte, v int64) []byte {
	return strconv.AppendInt(dst, v, 10)
}

// appendFloat formats v in shortest round-trip form.
func appendFloat(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'g', -1, 64)
}

// appendBigDecimal renders f either in plain (non-exponential) form or
// canonical Go form depending on writeAsPlain
// (WriterFeatureWriteBigDecimalAsPlain).
func appendBigDecimal(dst []byte, f *big.Float, writeAsPlain bool) []byte {
	format := byte('g')
	if writeAsPlain {
		format = 'f'
	}
	return f.Append(dst, format, -1)
}

// defaultMaxNumberLength bounds the number of characters accepted in a
// single numeric token when StreamReadConstraints leaves it unset.
const defaultMaxNumberLength = 1000
