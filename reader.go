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
	"io"
	"math/big"

	"github.com/cirjson-go/cirjson/cirjsonbase64"
	"github.com/cirjson-go/cirjson/internal/recycler"
	"github.com/cirjson-go/cirjson/internal/symtab"
)

// readState is the Reader's grammar state: which token kind(s) are
// legal next, and whether a mandatory identity value is still owed
// for the frame just opened. Keeping this explicit (instead of an
// implicit recursive-descent call stack) lets the reader suspend and
// resume one token at a time without goroutines; AsyncReader is built
// from the same states.
type readState byte

const (
	stInitial readState = iota
	stRootValueExpect
	stRootValueSeen
	stObjectExpectIDValue
	stObjectExpectNameOrEnd
	stObjectExpectValue
	stArrayExpectIDValue
	stArrayExpectValueOrEnd
	stClosed
)

// source is the Reader's byte-buffering front end: a growable buffer
// with a read cursor, refilled from an io.Reader on demand, tracking
// byte/line/column position for Location as bytes are consumed.
type source struct {
	buf     []byte
	rpos    int
	flushed int64
	input   io.Reader
	err     error
	atEOF   bool

	line   int
	col    int
	handle *recycler.Handle
}

func newSource(r io.Reader, rec *recycler.Recycler) *source {
	h := recycler.Checkout(rec, recycler.ReadIOBuffer)
	return &source{input: r, buf: h.Bytes(), line: 1, col: 0, handle: h}
}

func (s *source) buffered() int { return len(s.buf) - s.rpos }

func (s *source) avail() []byte { return s.buf[s.rpos:] }

func (s *source) shift() {
	s.flushed += int64(s.rpos)
	if s.rpos == len(s.buf) {
		s.buf = s.buf[:0]
	} else if s.rpos > 0 {
		s.buf = s.buf[:copy(s.buf, s.avail())]
	}
	s.rpos = 0
}

func (s *source) fill() error {
	if s.input == nil {
		s.atEOF = true
		return nil
	}
	s.shift()
	if s.atEOF {
		return nil
	}
	if len(s.buf) == cap(s.buf) {
		next := make([]byte, len(s.buf), 2*cap(s.buf)+64)
		copy(next, s.buf)
		s.buf = next
	}
	tail := s.buf[len(s.buf):cap(s.buf)]
	n, err := s.input.Read(tail)
	s.buf = s.buf[:len(s.buf)+n]
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.atEOF = true
		} else {
			s.err = err
		}
	}
	return s.err
}

// ensure guarantees at least n bytes are buffered (or EOF/err), used
// by the string/number lexers which need to look ahead past a single
// byte.
func (s *source) ensure(n int) error {
	for s.buffered() < n && !s.atEOF && s.err == nil {
		if err := s.fill(); err != nil {
			return err
		}
	}
	return s.err
}

func (s *source) advance(n int) {
	for i := 0; i < n; i++ {
		if s.buf[s.rpos+i] == '\n' {
			s.line++
			s.col = 0
		} else {
			s.col++
		}
	}
	s.rpos += n
}

func isJSONSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func (s *source) skipSpace() error {
	for {
		for s.rpos < len(s.buf) && isJSONSpace(s.buf[s.rpos]) {
			s.advance(1)
		}
		if s.buffered() > 0 || s.atEOF || s.err != nil {
			return s.err
		}
		if err := s.fill(); err != nil {
			return err
		}
	}
}

// peekByte returns the next non-space byte without consuming it, or
// (0, false) at EOF.
func (s *source) peekByte() (byte, bool, error) {
	if err := s.skipSpace(); err != nil {
		return 0, false, err
	}
	if s.buffered() == 0 {
		return 0, false, nil
	}
	return s.buf[s.rpos], true, nil
}

func (s *source) release() { s.handle.Release() }

// Reader is a pull-style CirJSON token stream reader. Reader enforces
// the mandatory "__cirJsonId__" identity property/element on every
// object and array, tracks a ContextStack for path reporting, and
// exposes typed scalar accessors that lazily convert the raw lexed
// token text.
type Reader struct {
	src  *source
	ctx  *ContextStack
	st   readState
	cfg  StreamReadConstraints
	errc ErrorReportConfiguration

	features        featureSet
	factoryFeatures featureSet
	names           *symtab.Table
	intern          *sharedNames      // non-nil when Close merges names back to the Factory
	dupStack        []map[string]bool // one set per open object frame, innermost last

	tok       TokenKind
	num       parsedNumber
	strVal    string
	strValid  bool
	rawHandle *recycler.Handle

	b64 cirjsonbase64.Variant

	// srcCloser is the caller's original source when charset
	// normalization wrapped it; Close must target the original, not
	// the wrapper.
	srcCloser io.Closer

	closed bool
	err    error
}

func NewReader(r io.Reader) *Reader {
	return newReaderWithRecycler(r, recycler.Shared())
}

func newReaderWithRecycler(r io.Reader, rec *recycler.Recycler) *Reader {
	rd := &Reader{
		src:             newSource(r, rec),
		ctx:             NewContextStack(),
		st:              stInitial,
		cfg:             DefaultStreamReadConstraints,
		errc:            DefaultErrorReportConfiguration,
		features:        newFeatureSet(defaultParserFeatures),
		factoryFeatures: newFeatureSet(defaultFactoryFeatures),
		names:           &symtab.Table{},
		b64:             cirjsonbase64.MIMENoLinefeeds,
	}
	rd.rawHandle = recycler.Checkout(rec, recycler.TextBuffer)
	return rd
}

func (r *Reader) loc() Location {
	return Location{ByteOffset: r.src.flushed + int64(r.src.rpos), Line: r.src.line, Column: r.src.col}
}

func (r *Reader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	return err
}

// canonicalizeName interns *name through the reader's symtab.Table
// when FactoryFeatureCanonicalizePropertyNames is on, so repeated
// property names within (and, via Factory-seeded clones, across)
// documents share one allocation. If the table's hash-overflow
// detector trips, FactoryFeatureFailOnSymbolHashOverflow decides
// whether that is a resource-limit error or a silent fallback to
// uncanonicalized names for the remainder of this reader only; other
// readers sharing the factory are unaffected.
func (r *Reader) canonicalizeName(name *string) error {
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

// CurrentToken returns the most recently read token kind.
func (r *Reader) CurrentToken() TokenKind { return r.tok }

// CurrentPath returns the CirJSON-Pointer path to the current token.
func (r *Reader) CurrentPath() Pointer { return r.ctx.PathAsPointer(false) }

// Depth reports the reader's current nesting depth.
func (r *Reader) Depth() int { return r.ctx.Depth() }

// NextToken advances the reader and returns the next token in the
// stream, or NotAvailable at a clean end of input. Every structural
// and scalar token transition dispatches on the current readState, the
// same way the writer's call-sequence state machine validates Write*
// calls.
func (r *Reader) NextToken() (TokenKind, error) {
	if r.st == stClosed {
		return NoToken, r.fail(misuseErr(r.loc(), r.errc, "NextToken called on a closed Reader"))
	}
	if r.err != nil {
		return NoToken, r.err
	}
	r.strVal, r.strValid = "", false
	switch r.st {
	case stInitial:
		r.st = stRootValueExpect
		return r.readValue()
	case stRootValueExpect:
		return r.readValue()
	case stRootValueSeen:
		b, ok, err := r.src.peekByte()
		if err != nil {
			return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
		}
		if !ok {
			r.tok = NotAvailable
			return NotAvailable, nil
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

func (r *Reader) readObjectNameOrEnd() (TokenKind, error) {
	b, ok, err := r.src.peekByte()
	if err != nil {
		return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	if !ok {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF: unterminated object"))
	}
	if b == '}' {
		r.src.advance(1)
		return r.closeFrame(ObjectContext)
	}
	if b == ',' {
		r.src.advance(1)
		if err := r.src.skipSpace(); err != nil {
			return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
		}
		b, ok, err = r.src.peekByte()
		if err != nil {
			return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
		}
		if !ok || b != '"' {
			return NoToken, r.fail(readErr(r.loc(), r.errc, "expected a property name after ','"))
		}
	} else if b != '"' {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "expected '\"' (property name), ',' or '}' but got %q", b))
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
	if err := r.src.skipSpace(); err != nil {
		return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	b, ok, err = r.src.peekByte()
	if err != nil {
		return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	if !ok || b != ':' {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "expected ':' after property name"))
	}
	r.src.advance(1)
	r.ctx.SetCurrentName(name)
	r.ctx.AdvanceEntry()
	r.st = stObjectExpectValue
	r.tok = PropertyName
	r.strVal, r.strValid = name, true
	return PropertyName, nil
}

func (r *Reader) readArrayValueOrEnd() (TokenKind, error) {
	b, ok, err := r.src.peekByte()
	if err != nil {
		return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	if !ok {
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF: unterminated array"))
	}
	if b == ']' {
		r.src.advance(1)
		return r.closeFrame(ArrayContext)
	}
	if b == ',' {
		r.src.advance(1)
	}
	return r.readValue()
}

func (r *Reader) closeFrame(want FrameType) (TokenKind, error) {
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

// readIdentityValue reads the mandatory identity string that must
// immediately follow StartObject/StartArray: a plain string scalar,
// reported to the caller as IDPropertyName so it is distinguishable
// from an ordinary property's value while still being a
// ValueString-shaped scalar underneath.
func (r *Reader) readIdentityValue(inArray bool) (TokenKind, error) {
	b, ok, err := r.src.peekByte()
	if err != nil {
		return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
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

// readValue reads one JSON value (object/array start, string, number,
// true/false/null) at the current position.
func (r *Reader) readValue() (TokenKind, error) {
	b, ok, err := r.src.peekByte()
	if err != nil {
		return NoToken, r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	if !ok {
		if r.ctx.AtRoot() && r.st == stRootValueExpect {
			r.tok = NotAvailable
			return NotAvailable, nil
		}
		return NoToken, r.fail(readErr(r.loc(), r.errc, "unexpected EOF while expecting a value"))
	}
	switch {
	case b == '{':
		r.src.advance(1)
		if r.ctx.Depth()+1 > r.cfg.MaxNestingDepth {
			return NoToken, r.fail(resourceErr(r.loc(), r.errc, "maximum nesting depth %d exceeded", r.cfg.MaxNestingDepth))
		}
		// Opening this object is itself one entry of an enclosing
		// ARRAY (an enclosing OBJECT's entry was already advanced when
		// its property name was read); advance the parent before
		// pushing the child, matching the writer's StartObject.
		if !r.ctx.AtRoot() && r.ctx.Top().Type == ArrayContext {
			r.ctx.AdvanceEntry()
		}
		r.ctx.PushObject(r.loc())
		if r.features.IsEnabled(ParserFeatureStrictDuplicateDetection) {
			r.dupStack = append(r.dupStack, make(map[string]bool))
		}
		if err := r.expectPropertyName(cirJSONIDName); err != nil {
			return NoToken, err
		}
		r.st = stObjectExpectIDValue
		r.tok = StartObject
		return StartObject, nil
	case b == '[':
		r.src.advance(1)
		if r.ctx.Depth()+1 > r.cfg.MaxNestingDepth {
			return NoToken, r.fail(resourceErr(r.loc(), r.errc, "maximum nesting depth %d exceeded", r.cfg.MaxNestingDepth))
		}
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

// expectPropertyName consumes a `"name":` sequence that must exactly
// match name. Used only for the "__cirJsonId__" key itself; the
// identity VALUE is read separately by readIdentityValue.
func (r *Reader) expectPropertyName(name string) error {
	if err := r.src.skipSpace(); err != nil {
		return r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	b, ok, err := r.src.peekByte()
	if err != nil {
		return r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	if !ok || b != '"' {
		return r.fail(readErr(r.loc(), r.errc, "object must begin with %q", name))
	}
	got, err := r.lexString()
	if err != nil {
		return err
	}
	if got != name {
		return r.fail(readErr(r.loc(), r.errc, "object must begin with %q, got %q", name, got))
	}
	if err := r.src.skipSpace(); err != nil {
		return r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	b, ok, err = r.src.peekByte()
	if err != nil {
		return r.fail(ioErr(r.loc(), r.errc, r, err))
	}
	if !ok || b != ':' {
		return r.fail(readErr(r.loc(), r.errc, "expected ':' after %q", name))
	}
	r.src.advance(1)
	return nil
}

// afterScalar picks the next expected token kind once a scalar value
// has been read. An object's own EntryIndex was already advanced when
// its property name was read (readObjectNameOrEnd); only an array
// value advances its frame's EntryIndex here, mirroring the writer's
// afterScalarValue.
func (r *Reader) afterScalar() {
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

// StringValue returns the current string-valued token's value.
func (r *Reader) StringValue() (string, error) {
	if !r.strValid {
		return "", coercionErr(r.loc(), r.errc, r.tok, "current token is not a string")
	}
	return r.strVal, nil
}

// Int32Value coerces the current numeric token to int32.
func (r *Reader) Int32Value() (int32, error) {
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
func (r *Reader) Int64Value() (int64, error) {
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
func (r *Reader) BigIntegerValue() (*big.Int, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.BigInt()
}

// DoubleValue coerces the current numeric token to float64.
func (r *Reader) DoubleValue() (float64, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.Float64()
}

// BigDecimalValue coerces the current numeric token to *big.Float.
func (r *Reader) BigDecimalValue() (*big.Float, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.BigDecimal()
}

// FloatValue coerces the current numeric token to float32.
func (r *Reader) FloatValue() (float32, error) {
	if r.tok != ValueNumberInt && r.tok != ValueNumberFloat {
		return 0, coercionErr(r.loc(), r.errc, r.tok, "current token is not a number")
	}
	return r.num.Float32()
}

// BooleanValue returns the current boolean token's value.
func (r *Reader) BooleanValue() (bool, error) {
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
// exact representation: int32/int64/*big.Int for integers, *big.Float
// for textual floats (the wire format does not preserve exact binary
// floating point, so a decimal representation is the only lossless
// choice).
func (r *Reader) NumberValueExact() (any, error) {
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

// NumberType reports how the current numeric token was classified.
func (r *Reader) NumberType() NumberType { return r.num.typ }

// TextValue returns the textual form of the current token: the decoded
// string for names and string values, the raw literal for numbers, and
// the canonical keyword for booleans and null.
func (r *Reader) TextValue() string {
	switch {
	case r.strValid:
		return r.strVal
	case r.tok.IsNumeric():
		return r.num.raw
	default:
		return r.tok.String()
	}
}

// IsTextCharactersAvailable reports whether TextCharacters can hand
// back the current token's text without copying.
func (r *Reader) IsTextCharactersAvailable() bool {
	return r.strValid || r.tok.IsNumeric()
}

// TextCharacters returns the current token's text as a byte slice,
// zero-copy when IsTextCharactersAvailable reports true (the slice
// aliases the reader's scratch buffer and is only valid until the next
// NextToken call).
func (r *Reader) TextCharacters() []byte {
	if r.strValid || r.tok.IsNumeric() {
		return r.rawHandle.Bytes()
	}
	return []byte(r.tok.String())
}

// Capabilities reports the boolean properties callers can branch on
// for this reader. CirJSON is a textual format, so exact binary float
// preservation is never advertised.
func (r *Reader) Capabilities() ReaderCapability {
	var caps ReaderCapability
	if !r.features.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		caps |= CapDuplicateProperties
	}
	return caps
}

// NumberText returns the current numeric token's raw, unconverted
// text, for callers that just want to echo the number back out
// without paying any conversion cost.
func (r *Reader) NumberText() string { return r.num.raw }

// BinaryValue decodes the current string token as base64 using the
// reader's configured Variant.
func (r *Reader) BinaryValue() ([]byte, error) {
	if !r.strValid {
		return nil, coercionErr(r.loc(), r.errc, r.tok, "current token is not a string")
	}
	return r.b64.Decode(r.strVal, nil)
}

// SetBase64Variant overrides the Variant used by BinaryValue.
func (r *Reader) SetBase64Variant(v cirjsonbase64.Variant) { r.b64 = v }

// Close releases the reader's pooled buffers. If
// ParserFeatureAutoCloseSource is enabled and the underlying source
// implements io.Closer, it is closed too.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.st = stClosed
	r.src.release()
	r.rawHandle.Release()
	if r.intern != nil {
		r.intern.merge(r.names)
	}
	if r.features.IsEnabled(ParserFeatureAutoCloseSource) {
		c := r.srcCloser
		if c == nil {
			c, _ = r.src.input.(io.Closer)
		}
		if c != nil {
			return c.Close()
		}
	}
	return nil
}
