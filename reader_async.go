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
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/cirjson-go/cirjson/cirjsonbase64"
	"github.com/cirjson-go/cirjson/internal/symtab"
)

// errNeedMore is never returned to a caller; it is AsyncReader's
// internal signal that a lexing attempt ran off the end of the
// buffered input without a conclusive answer and must be retried once
// Feed supplies more bytes. Every scan* helper below is a pure
// function of (buffer, start position): it never mutates AsyncReader
// state, so a caller that gets errNeedMore can always retry from
// scratch after the next Feed with nothing to roll back. This is what
// keeps the feed-driven token sequence identical to the blocking one
// for any split of the same byte stream.
var errNeedMore = errors.New("cirjson: more input needed")

// AsyncReader is the non-blocking, feed-driven twin of Reader. It
// shares Reader's grammar -- the
// identity-element requirement, the context stack, duplicate
// detection, number/string lexing -- but never reads from an
// io.Reader itself: the caller supplies bytes through Feed and marks
// the end of the document with EndOfInput. NextToken never blocks;
// when the buffered input cannot yet decide the next token it returns
// NotAvailable, and the caller is expected to Feed more data and call
// NextToken again.
type AsyncReader struct {
	buf     []byte
	rpos    int
	flushed int64
	line    int
	col     int
	ended   bool

	// charset sniffing state: raw fed bytes accumulate in pending
	// until the encoding is decided (first four bytes, or EndOfInput),
	// then complete code units are transcoded into buf. UTF-8 input
	// bypasses pending entirely once sniffed.
	enc     Encoding
	sniffed bool
	pending []byte

	ctx  *ContextStack
	st   readState
	cfg  StreamReadConstraints
	errc ErrorReportConfiguration

	features        featureSet
	factoryFeatures featureSet
	names           *symtab.Table
	intern          *sharedNames      // non-nil when Close merges names back to the Factory
	dupStack        []map[string]bool // one set per open object frame, innermost last

	tok      TokenKind
	num      parsedNumber
	strVal   string
	strValid bool

	b64 cirjsonbase64.Variant

	closed bool
	err    error
}

// NewAsyncReader returns an AsyncReader with no input buffered yet.
func NewAsyncReader() *AsyncReader {
	return &AsyncReader{
		ctx:             NewContextStack(),
		st:              stInitial,
		cfg:             DefaultStreamReadConstraints,
		errc:            DefaultErrorReportConfiguration,
		features:        newFeatureSet(defaultParserFeatures),
		factoryFeatures: newFeatureSet(defaultFactoryFeatures),
		names:           &symtab.Table{},
		b64:             cirjsonbase64.MIMENoLinefeeds,
		line:            1,
	}
}

// Feed appends data to the reader's buffer, running the one-time
// charset sniff (when FactoryFeatureCharsetDetection is enabled) over
// the first bytes the same way the byte-input Factory constructors do.
// Feed must not be called after EndOfInput.
func (r *AsyncReader) Feed(data []byte) error {
	if r.ended {
		return misuseErr(r.loc(), r.errc, "Feed called after EndOfInput")
	}
	if r.sniffed && r.enc == EncodingUTF8 && len(r.pending) == 0 {
		r.buf = append(r.buf, data...)
		return nil
	}
	r.pending = append(r.pending, data...)
	return r.drainPending(false)
}

// EndOfInput signals that no further bytes will be fed. After this
// call, NextToken drains any tokens still decidable from the buffered
// tail and then returns (NoToken, nil) once the document is
// exhausted, never NotAvailable again. A truncated trailing UTF-16/32
// code unit surfaces as an error from the next NextToken call.
func (r *AsyncReader) EndOfInput() {
	r.ended = true
	r.drainPending(true)
}

// drainPending decides the input encoding once at least four raw
// bytes (or all of them) have been fed, then transcodes every
// complete code unit into the UTF-8 buffer the lexer reads. A
// trailing lone high surrogate is held back until its pair (or the
// end of input) arrives, so feeding a document one byte at a time
// transcodes identically to feeding it whole.
func (r *AsyncReader) drainPending(final bool) error {
	if !r.sniffed {
		if len(r.pending) < 4 && !final {
			return nil
		}
		if r.factoryFeatures.FactoryEnabled(FactoryFeatureCharsetDetection) {
			enc, rest := stripBOM(r.pending)
			r.enc = enc
			r.pending = append(r.pending[:0], rest...)
		}
		r.sniffed = true
	}
	if r.enc == EncodingUTF8 {
		r.buf = append(r.buf, r.pending...)
		r.pending = r.pending[:0]
		return nil
	}
	unit := 2
	if r.enc == EncodingUTF32BE || r.enc == EncodingUTF32LE {
		unit = 4
	}
	n := len(r.pending)
	if !final {
		n -= n % unit
		if unit == 2 && n >= 2 && r.endsInHighSurrogate(n) {
			n -= 2
		}
	}
	if n == 0 {
		return nil
	}
	out, err := decodeToUTF8(r.enc, r.pending[:n])
	if err != nil {
		return r.fail(readErr(r.loc(), r.errc, "%s", err.Error()))
	}
	r.buf = append(r.buf, out...)
	r.pending = append(r.pending[:0], r.pending[n:]...)
	return nil
}

// endsInHighSurrogate reports whether the code unit ending at byte n
// of pending is an unpaired-so-far UTF-16 high surrogate.
func (r *AsyncReader) endsInHighSurrogate(n int) bool {
	var u uint16
	if r.enc == EncodingUTF16BE {
		u = uint16(r.pending[n-2])<<8 | uint16(r.pending[n-1])
	} else {
		u = uint16(r.pending[n-1])<<8 | uint16(r.pending[n-2])
	}
	return u >= 0xD800 && u <= 0xDBFF
}

func (r *AsyncReader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	return err
}

func (r *AsyncReader) loc() Location {
	return Location{ByteOffset: r.flushed + int64(r.rpos), Line: r.line, Column: r.col}
}

// compact drops the already-consumed prefix of buf once it grows
// large, the feed-driven equivalent of source.shift() in the blocking
// reader: nothing ever rewinds past r.rpos, so the drop is always safe.
func (r *AsyncReader) compact() {
	if r.rpos < 64*1024 {
		return
	}
	r.flushed += int64(r.rpos)
	r.buf = append(r.buf[:0], r.buf[r.rpos:]...)
	r.rpos = 0
}

func (r *AsyncReader) advance(n int) {
	for i := 0; i < n; i++ {
		if r.buf[r.rpos+i] == '\n' {
			r.line++
			r.col = 0
		} else {
			r.col++
		}
	}
	r.rpos += n
}

// canonicalizeName mirrors Reader.canonicalizeName.
func (r *AsyncReader) canonicalizeName(name *string) error {
	if !r.factoryFeatures.FactoryEnabled(FactoryFeatureCanonicalizePropertyNames) {
		return nil
	}
	*name = r.names.Canonicalize(*name)
	if r.names.Overflowed() {
		if r.factoryFeatures.FactoryEnabled(FactoryFeatureFailOnSymbolHashOverflow) {
			return r.fail(resourceErr(r.loc(), r.errc, "symbol hash table overflow while canonicalizing property name %q", *name))
		}
		r.factoryFeatures.disableMask(maskFor(FactoryFeatureCanonicalizePropertyNames))
	}
	return nil
}

// skipSpaceFrom advances past whitespace starting at idx and returns
// the new index; it never looks past len(buf).
func skipSpaceFrom(buf []byte, idx int) int {
	for idx < len(buf) && isJSONSpace(buf[idx]) {
		idx++
	}
	return idx
}

// peekByte reports the next significant (non-space) byte without
// consuming anything but the whitespace run before it, which is
// always safe to commit immediately since re-scanning it after more
// input arrives would reach the same conclusion. It never blocks: if
// the buffer runs dry before a non-space byte is found and
// EndOfInput has not been called, it returns errNeedMore.
func (r *AsyncReader) peekByte() (byte, bool, error) {
	i := skipSpaceFrom(r.buf, r.rpos)
	r.advance(i - r.rpos)
	if r.rpos < len(r.buf) {
		return r.buf[r.rpos], true, nil
	}
	if r.ended {
		return 0, false, nil
	}
	return 0, false, errNeedMore
}

// CurrentToken returns the most recently produced token kind.
func (r *AsyncReader) CurrentToken() TokenKind { return r.tok }

// CurrentPath returns the CirJSON-Pointer path to the current token.
func (r *AsyncReader) CurrentPath() Pointer { return r.ctx.PathAsPointer(false) }

// Depth reports the reader's current nesting depth.
func (r *AsyncReader) Depth() int { return r.ctx.Depth() }

// NextToken advances the reader. It returns NotAvailable (with a nil
// error) when the buffered input does not yet contain enough bytes to
// decide the next token -- the caller should Feed more and retry --
// and (NoToken, nil) once EndOfInput has been called and every
// decidable token has been drained.
func (r *AsyncReader) NextToken() (TokenKind, error) {
	if r.st == stClosed {
		return NoToken, r.fail(misuseErr(r.loc(), r.errc, "NextToken called on a closed AsyncReader"))
	}
	if r.err != nil {
		return NoToken, r.err
	}
	r.strVal, r.strValid = "", false
	tok, err := r.step()
	if err == errNeedMore {
		r.tok = NotAvailable
		return NotAvailable, nil
	}
	if err != nil {
		return NoToken, err
	}
	r.compact()
	return tok, nil
}

func (r *AsyncReader) step() (TokenKind, error) {
	switch r.st {
	case stInitial:
		r.st = stRootValueExpect
		return r.readValue()
	case stRootValueExpect:
		return r.readValue()
	case stRootValueSeen:
		b, ok, err := r.peekByte()
		if err != nil {
			return NoToken, err
		}
		if !ok {
			return NoToken, nil
		}
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected trailing content %q after top-level value", b))
	case stObjectExpectIDValue:
		return r.readIdentityValue(false)
	case stObjectExpectNameOrEnd:
		return r.readObjectNameOrEnd()
	case stObjectExpectValue:
		return r.readValue()
	case stArrayExpectIDValue:
		return r.readIdentityValue(true)
	case stArrayExpectValueOrEnd:
		return r.readArrayValueOrEnd()
	default:
		return NoToken, r.fail(misuseErr(r.loc(), r.errc, "reader in an unexpected internal state"))
	}
}

func (r *AsyncReader) closeFrame(want FrameType) (TokenKind, error) {
	if r.ctx.Top().Type != want {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "mismatched close: expected end of %s", want))
	}
	r.ctx.Pop()
	if want == ObjectContext && len(r.dupStack) > 0 {
		r.dupStack = r.dupStack[:len(r.dupStack)-1]
	}
	if r.ctx.AtRoot() {
		r.st = stRootValueSeen
	} else {
		switch r.ctx.Top().Type {
		case ObjectContext:
			r.st = stObjectExpectNameOrEnd
		case ArrayContext:
			r.st = stArrayExpectValueOrEnd
		}
	}
	if want == ObjectContext {
		r.tok = EndObject
		return EndObject, nil
	}
	r.tok = EndArray
	return EndArray, nil
}

func (r *AsyncReader) readObjectNameOrEnd() (TokenKind, error) {
	b, ok, err := r.peekByte()
	if err != nil {
		return NoToken, err
	}
	if !ok {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF: unterminated object"))
	}
	if b == '}' {
		r.advance(1)
		return r.closeFrame(ObjectContext)
	}
	if b == ',' {
		r.advance(1)
		b, ok, err = r.peekByte()
		if err != nil {
			return NoToken, err
		}
		if !ok {
			return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF: unterminated object"))
		}
		if b != '"' {
			return NoToken, r.fail(readErr(r.loc(), r.errc, "expected a property name after ','"))
		}
	} else if b != '"' {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "expected '\"' (property name), ',' or '}' but got %q", b))
	}
	// commit the name only once the byte after it is buffered too, so a
	// retry after errNeedMore starts again at the name, not at its ':'
	if n, _, serr := scanString(r.buf, r.rpos, r.ended); serr == nil && n > 0 {
		if j := skipSpaceFrom(r.buf, r.rpos+n); j >= len(r.buf) && !r.ended {
			return NoToken, errNeedMore
		}
	}
	name, err := r.lexString()
	if err != nil {
		return NoToken, err
	}
	if err := r.canonicalizeName(&name); err != nil {
		return NoToken, err
	}
	if r.features.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		seen := r.dupStack[len(r.dupStack)-1]
		if seen[name] {
			return NoToken, r.fail(readErr(r.loc(), r.errc, "duplicate property name %q", name))
		}
		seen[name] = true
	}
	b, ok, err = r.peekByte()
	if err != nil {
		return NoToken, err
	}
	if !ok || b != ':' {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "expected ':' after property name"))
	}
	r.advance(1)
	r.ctx.SetCurrentName(name)
	r.ctx.AdvanceEntry()
	r.st = stObjectExpectValue
	r.tok = PropertyName
	r.strVal, r.strValid = name, true
	return PropertyName, nil
}

func (r *AsyncReader) readArrayValueOrEnd() (TokenKind, error) {
	b, ok, err := r.peekByte()
	if err != nil {
		return NoToken, err
	}
	if !ok {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF: unterminated array"))
	}
	if b == ']' {
		r.advance(1)
		return r.closeFrame(ArrayContext)
	}
	if b == ',' {
		r.advance(1)
	}
	return r.readValue()
}

func (r *AsyncReader) readIdentityValue(inArray bool) (TokenKind, error) {
	b, ok, err := r.peekByte()
	if err != nil {
		return NoToken, err
	}
	if !ok || b != '"' {
		kind := "object"
		if inArray {
			kind = "array"
		}
		return NoToken, r.fail(readErr(r.loc(), r.errc, "every %s must begin with a %q identity string", kind, cirJSONIDName))
	}
	s, err := r.lexString()
	if err != nil {
		return NoToken, err
	}
	r.ctx.AdvanceEntry()
	if inArray {
		r.st = stArrayExpectValueOrEnd
	} else {
		// the ':' after the "__cirJsonId__" key was already consumed;
		// what follows the identity value is ',' or '}'
		r.st = stObjectExpectNameOrEnd
	}
	r.tok = IDPropertyName
	r.strVal, r.strValid = s, true
	return IDPropertyName, nil
}

func (r *AsyncReader) readValue() (TokenKind, error) {
	b, ok, err := r.peekByte()
	if err != nil {
		return NoToken, err
	}
	if !ok {
		if r.ctx.AtRoot() && r.st == stRootValueExpect {
			return NoToken, nil
		}
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF while expecting a value"))
	}
	switch {
	case b == '{':
		if r.ctx.Depth()+1 > r.cfg.MaxNestingDepth {
			return NoToken, r.fail(resourceErr(r.loc(), r.errc, "maximum nesting depth %d exceeded", r.cfg.MaxNestingDepth))
		}
		consumed, err := r.scanExpectedPropertyName(cirJSONIDName)
		if err != nil {
			return NoToken, err
		}
		r.advance(consumed) // '{' plus the mandatory "__cirJsonId__": prefix
		if !r.ctx.AtRoot() && r.ctx.Top().Type == ArrayContext {
			r.ctx.AdvanceEntry()
		}
		r.ctx.PushObject(r.loc())
		if r.features.IsEnabled(ParserFeatureStrictDuplicateDetection) {
			r.dupStack = append(r.dupStack, make(map[string]bool))
		}
		r.st = stObjectExpectIDValue
		r.tok = StartObject
		return StartObject, nil
	case b == '[':
		if r.ctx.Depth()+1 > r.cfg.MaxNestingDepth {
			return NoToken, r.fail(resourceErr(r.loc(), r.errc, "maximum nesting depth %d exceeded", r.cfg.MaxNestingDepth))
		}
		r.advance(1)
		if !r.ctx.AtRoot() && r.ctx.Top().Type == ArrayContext {
			r.ctx.AdvanceEntry()
		}
		r.ctx.PushArray(r.loc())
		r.st = stArrayExpectIDValue
		r.tok = StartArray
		return StartArray, nil
	case b == '"':
		s, err := r.lexString()
		if err != nil {
			return NoToken, err
		}
		r.strVal, r.strValid = s, true
		r.tok = ValueString
		r.afterScalar()
		return ValueString, nil
	case b == 't' || b == 'f':
		if err := r.lexKeyword(b == 't'); err != nil {
			return NoToken, err
		}
		if b == 't' {
			r.tok = ValueTrue
		} else {
			r.tok = ValueFalse
		}
		r.afterScalar()
		return r.tok, nil
	case b == 'n':
		if err := r.lexNullKeyword(); err != nil {
			return NoToken, err
		}
		r.tok = ValueNull
		r.afterScalar()
		return ValueNull, nil
	case b == '-' || (b >= '0' && b <= '9'):
		if err := r.lexNumber(); err != nil {
			return NoToken, err
		}
		if r.num.isFloat() {
			r.tok = ValueNumberFloat
		} else {
			r.tok = ValueNumberInt
		}
		r.afterScalar()
		return r.tok, nil
	default:
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected character %q while expecting a value", b))
	}
}

func (r *AsyncReader) afterScalar() {
	if r.ctx.AtRoot() {
		r.st = stRootValueSeen
		return
	}
	switch r.ctx.Top().Type {
	case ObjectContext:
		r.st = stObjectExpectNameOrEnd
	case ArrayContext:
		r.ctx.AdvanceEntry()
		r.st = stArrayExpectValueOrEnd
	}
}

// scanExpectedPropertyName looks, without committing anything, at the
// bytes starting at r.rpos (which must be '{', not yet consumed) for
// `{ws*"name"ws*:`. It returns the total number of bytes that sequence
// occupies so the caller can advance() past all of it atomically in
// one commit, or errNeedMore if the buffered tail is merely a
// (so-far-matching) prefix of that sequence.
func (r *AsyncReader) scanExpectedPropertyName(name string) (int, error) {
	i := r.rpos + 1 // past the still-unconsumed '{'
	i = skipSpaceFrom(r.buf, i)
	if i >= len(r.buf) {
		if r.ended {
			return 0, r.fail(readErr(r.loc(), r.errc, "object must begin with %q", name))
		}
		return 0, errNeedMore
	}
	if r.buf[i] != '"' {
		return 0, r.fail(readErr(r.loc(), r.errc, "object must begin with %q", name))
	}
	consumed, got, err := scanString(r.buf, i, r.ended)
	if err != nil {
		return 0, r.fail(readErr(r.loc(), r.errc, "%s", err.Error()))
	}
	if consumed < 0 {
		return 0, errNeedMore
	}
	if got != name {
		return 0, r.fail(readErr(r.loc(), r.errc, "object must begin with %q, got %q", name, got))
	}
	i += consumed
	j := skipSpaceFrom(r.buf, i)
	if j >= len(r.buf) {
		if r.ended {
			return 0, r.fail(readErr(r.loc(), r.errc, "expected ':' after %q", name))
		}
		return 0, errNeedMore
	}
	if r.buf[j] != ':' {
		return 0, r.fail(readErr(r.loc(), r.errc, "expected ':' after %q", name))
	}
	return j + 1 - r.rpos, nil
}

// lexString consumes a double-quoted string starting at r.rpos (which
// must be '"') and returns its decoded value, committing r.rpos only
// once the whole literal (including its closing quote) is present in
// the buffer.
func (r *AsyncReader) lexString() (string, error) {
	consumed, val, err := scanString(r.buf, r.rpos, r.ended)
	if err != nil {
		return "", r.fail(readErr(r.loc(), r.errc, "%s", err.Error()))
	}
	if consumed < 0 {
		return "", errNeedMore
	}
	if len(val) > r.cfg.MaxStringLength {
		return "", r.fail(resourceErr(r.loc(), r.errc, "string value exceeds MaxStringLength (%d)", r.cfg.MaxStringLength))
	}
	r.advance(consumed)
	return val, nil
}

// scanString is a pure function: given buf and the index of an
// opening '"', it returns the number of bytes the whole literal
// occupies (including both quotes) and its decoded value. consumed is
// -1 (err nil) if buf runs out before the literal can be concluded one
// way or the other and ended is false; a non-nil err means the literal
// is definitively malformed regardless of further input.
func scanString(buf []byte, start int, ended bool) (consumed int, value string, err error) {
	i := start + 1
	segStart := i
	var out []byte
	for {
		if i >= len(buf) {
			if ended {
				return -1, "", errors.New("unexpected EOF inside string literal")
			}
			return -1, "", nil
		}
		b := buf[i]
		switch {
		case b == '"':
			out = append(out, buf[segStart:i]...)
			return i + 1 - start, string(out), nil
		case b == '\\':
			out = append(out, buf[segStart:i]...)
			esc, n, eerr := scanEscape(buf, i, ended)
			if eerr != nil {
				return -1, "", eerr
			}
			if n < 0 {
				return -1, "", nil
			}
			out = append(out, esc...)
			i += n
			segStart = i
		case b < 0x20:
			return -1, "", errors.New("unescaped control character in string")
		default:
			i++
		}
	}
}

// scanEscape parses a backslash escape beginning at i (buf[i] == '\\')
// and returns its decoded bytes and the number of input bytes consumed
// (including the leading backslash). n is -1 if more input may still
// be needed.
func scanEscape(buf []byte, i int, ended bool) ([]byte, int, error) {
	if i+1 >= len(buf) {
		if ended {
			return nil, -1, errors.New("unexpected EOF after '\\' in string literal")
		}
		return nil, -1, nil
	}
	c := buf[i+1]
	switch c {
	case '"', '\\', '/':
		return []byte{c}, 2, nil
	case 'b':
		return []byte{'\b'}, 2, nil
	case 'f':
		return []byte{'\f'}, 2, nil
	case 'n':
		return []byte{'\n'}, 2, nil
	case 'r':
		return []byte{'\r'}, 2, nil
	case 't':
		return []byte{'\t'}, 2, nil
	case 'u':
		return scanUnicodeEscape(buf, i, ended)
	default:
		return nil, -1, fmt.Errorf("unrecognized escape sequence '\\%c'", c)
	}
}

func scanUnicodeEscape(buf []byte, i int, ended bool) ([]byte, int, error) {
	if i+6 > len(buf) {
		if ended {
			return nil, -1, errors.New("unexpected EOF in \\u escape")
		}
		return nil, -1, nil
	}
	c1, ok := scanHex4(buf[i+2 : i+6])
	if !ok {
		return nil, -1, errors.New("invalid hex digit in \\u escape")
	}
	if c1 >= 0xD800 && c1 <= 0xDBFF {
		if i+12 > len(buf) {
			if ended {
				// unpaired high surrogate at EOF: emit a replacement char
				out := make([]byte, utf8.UTFMax)
				n := utf8.EncodeRune(out, utf8.RuneError)
				return out[:n], 6, nil
			}
			return nil, -1, nil
		}
		if buf[i+6] == '\\' && buf[i+7] == 'u' {
			c2, ok := scanHex4(buf[i+8 : i+12])
			if !ok {
				return nil, -1, errors.New("invalid hex digit in \\u escape")
			}
			if c2 >= 0xDC00 && c2 <= 0xDFFF {
				combined := ((c1 - 0xD800) << 10) | (c2 - 0xDC00) + 0x10000
				out := make([]byte, utf8.UTFMax)
				n := utf8.EncodeRune(out, combined)
				return out[:n], 12, nil
			}
			out := make([]byte, 0, utf8.UTFMax*2)
			out = appendUTF8(out, utf8.RuneError)
			out = appendUTF8(out, c2)
			return out, 12, nil
		}
	}
	out := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(out, c1)
	return out[:n], 6, nil
}

func scanHex4(digits []byte) (rune, bool) {
	var v rune
	for _, c := range digits {
		d, ok := hexVal(c)
		if !ok {
			return 0, false
		}
		v = v<<4 | rune(d)
	}
	return v, true
}

// lexNumber parses a JSON number literal starting at r.rpos into
// r.num, committing only once the full literal -- including the byte
// that terminates it -- is present in the buffer, since a trailing
// digit run is only safely concluded once a non-digit is actually
// observed (or EndOfInput has been called).
func (r *AsyncReader) lexNumber() error {
	n, num, err := scanNumber(r.buf, r.rpos, r.ended)
	if err != nil {
		return r.fail(readErr(r.loc(), r.errc, "%s", err.Error()))
	}
	if n < 0 {
		return errNeedMore
	}
	if n > r.cfg.MaxNumberLength {
		return r.fail(resourceErr(r.loc(), r.errc, "number literal exceeds MaxNumberLength (%d)", r.cfg.MaxNumberLength))
	}
	r.advance(n)
	r.num = num
	return nil
}

// scanNumber is a pure function mirroring lexNumber's grammar. It
// returns consumed < 0 (err nil) when the buffered tail is a
// (so-far-valid) prefix of a number and more bytes might extend it --
// true whenever the scan reaches len(buf) while still in a
// continuation position (mid digit run, just after '.', just after
// 'e'/'E'/a sign) and !ended.
func scanNumber(buf []byte, start int, ended bool) (consumed int, num parsedNumber, err error) {
	i := start
	negative := false
	if buf[i] == '-' {
		negative = true
		i++
	}
	if i >= len(buf) {
		if ended {
			return -1, num, errors.New("unexpected EOF while reading a number")
		}
		return -1, num, nil
	}
	intStart := i - start
	if !isDigit(buf[i]) {
		return -1, num, errors.New("invalid number: expected a digit")
	}
	if buf[i] == '0' {
		i++
	} else {
		for i < len(buf) && isDigit(buf[i]) {
			i++
		}
		if i >= len(buf) && !ended {
			return -1, num, nil
		}
	}
	intEnd := i - start
	fracStart, fracEnd := -1, -1
	if i < len(buf) && buf[i] == '.' {
		i++
		fs := i - start
		for i < len(buf) && isDigit(buf[i]) {
			i++
		}
		if i >= len(buf) && !ended {
			return -1, num, nil
		}
		fracStart, fracEnd = fs, i-start
		if fracEnd == fracStart {
			return -1, num, errors.New("invalid number: expected a digit after '.'")
		}
	} else if i >= len(buf) && !ended {
		return -1, num, nil // could still be the '.' of a longer number
	}
	expStart, expEnd := -1, -1
	if i < len(buf) && (buf[i] == 'e' || buf[i] == 'E') {
		i++
		if i < len(buf) && (buf[i] == '+' || buf[i] == '-') {
			i++
		}
		es := i - start
		for i < len(buf) && isDigit(buf[i]) {
			i++
		}
		if i >= len(buf) && !ended {
			return -1, num, nil
		}
		expStart, expEnd = es, i-start
		if expEnd == expStart {
			return -1, num, errors.New("invalid number: expected a digit in exponent")
		}
	} else if i >= len(buf) && !ended {
		return -1, num, nil // could still be the 'e' of a longer number
	}
	raw := string(buf[start:i])
	num = parsedNumber{
		raw:       raw,
		negative:  negative,
		intStart:  intStart,
		intEnd:    intEnd,
		fracStart: fracStart,
		fracEnd:   fracEnd,
		expStart:  expStart,
		expEnd:    expEnd,
	}
	if !num.isFloat() {
		num.typ = classifyInteger([]byte(raw[intStart:intEnd]), negative)
	} else {
		num.typ = NumberFloat
	}
	return i - start, num, nil
}

func (r *AsyncReader) lexKeyword(isTrue bool) error {
	word := "false"
	if isTrue {
		word = "true"
	}
	return r.lexKeywordWord(word)
}

func (r *AsyncReader) lexNullKeyword() error { return r.lexKeywordWord("null") }

func (r *AsyncReader) lexKeywordWord(word string) error {
	avail := len(r.buf) - r.rpos
	n := avail
	if n > len(word) {
		n = len(word)
	}
	for k := 0; k < n; k++ {
		if r.buf[r.rpos+k] != word[k] {
			return r.fail(readErr(r.loc(), r.errc, "invalid literal, expected %q", word))
		}
	}
	if avail < len(word) {
		if r.ended {
			return r.fail(readErr(r.loc(), r.errc, "invalid literal, expected %q", word))
		}
		return errNeedMore
	}
	r.advance(len(word))
	return nil
}

// StringValue returns the current string-valued token's value.
func (r *AsyncReader) StringValue() (string, error) {
	if !r.strValid {
		return "", coercionErr(r.loc(), r.errc, r.tok, "current token is not a string")
	}
	return r.strVal, nil
}

// Int32Value coerces the current numeric token to int32.
func (r *AsyncReader) Int32Value() (int32, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	v, err := r.num.Int32()
	if err != nil {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "numeric value %s out of range of int32", r.num.raw)
	}
	return v, nil
}

// Int64Value coerces the current numeric token to int64.
func (r *AsyncReader) Int64Value() (int64, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	v, err := r.num.Int64()
	if err != nil {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "numeric value %s out of range of int64", r.num.raw)
	}
	return v, nil
}

// BigIntegerValue coerces the current numeric token to *big.Int.
func (r *AsyncReader) BigIntegerValue() (*big.Int, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.BigInt()
}

// BigDecimalValue coerces the current numeric token to *big.Float.
func (r *AsyncReader) BigDecimalValue() (*big.Float, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.BigDecimal()
}

// DoubleValue coerces the current numeric token to float64.
func (r *AsyncReader) DoubleValue() (float64, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.Float64()
}

// FloatValue coerces the current numeric token to float32.
func (r *AsyncReader) FloatValue() (float32, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.Float32()
}

// BooleanValue returns the current boolean token's value.
func (r *AsyncReader) BooleanValue() (bool, error) {
	switch r.tok {
	case ValueTrue:
		return true, nil
	case ValueFalse:
		return false, nil
	default:
		return false, coercionErr(r.loc(), r.errc, r.tok, "current token is not a boolean")
	}
}

// NumberValueExact returns the current numeric token in its narrowest
// exact representation, mirroring Reader.NumberValueExact.
func (r *AsyncReader) NumberValueExact() (any, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	switch r.num.typ {
	case NumberInt32:
		return r.num.Int32()
	case NumberInt64:
		return r.num.Int64()
	case NumberBigInt:
		return r.num.BigInt()
	default:
		return r.num.BigDecimal()
	}
}

// TextValue returns the textual form of the current token.
func (r *AsyncReader) TextValue() string {
	switch {
	case r.strValid:
		return r.strVal
	case r.tok.IsNumeric():
		return r.num.raw
	default:
		return r.tok.String()
	}
}

// IsTextCharactersAvailable always reports false: AsyncReader decodes
// into freshly built strings (its input buffer is compacted between
// feeds), so TextCharacters necessarily copies.
func (r *AsyncReader) IsTextCharactersAvailable() bool { return false }

// TextCharacters returns the current token's text as a byte slice.
func (r *AsyncReader) TextCharacters() []byte { return []byte(r.TextValue()) }

// NumberType reports how the current numeric token was classified.
func (r *AsyncReader) NumberType() NumberType { return r.num.typ }

// NumberText returns the current numeric token's raw, unconverted text.
func (r *AsyncReader) NumberText() string { return r.num.raw }

// BinaryValue decodes the current string token as base64 using the
// reader's configured Variant.
func (r *AsyncReader) BinaryValue() ([]byte, error) {
	if !r.strValid {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a string")
	}
	return r.b64.Decode(r.strVal, nil)
}

// SetBase64Variant overrides the Variant used by BinaryValue.
func (r *AsyncReader) SetBase64Variant(v cirjsonbase64.Variant) { r.b64 = v }

// Close marks the reader closed. AsyncReader owns no recycled scratch
// buffers or underlying transport (its scratch is ordinary, locally
// grown slices), so beyond merging interned names back to its Factory
// this is purely a state transition.
func (r *AsyncReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.st = stClosed
	if r.intern != nil {
		r.intern.merge(r.names)
	}
	return nil
}
