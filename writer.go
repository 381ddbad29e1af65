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
	"io"
	"math/big"

	"github.com/google/uuid"

	"github.com/cirjson-go/cirjson/cirjsonbase64"
	"github.com/cirjson-go/cirjson/internal/recycler"
)

// uuidGenerator is the default IDGenerator: a fresh random (v4) UUID
// per call. The mandatory identity field has no required format, a
// UUID is simply a convenient, collision-resistant default.
type uuidGenerator struct{}

func (uuidGenerator) NextID() string { return uuid.NewString() }

// writerState is the Writer's call-sequence state machine, the
// writer-side mirror of the reader's state table: legal Write* calls
// depend on whether the writer is at the document
// root, just after a StartObject/StartArray (still owed the mandatory
// identity), mid-object awaiting a property name, or mid-array
// awaiting a value.
type writerState byte

const (
	wsInitial writerState = iota
	wsRootValueWritten
	wsObjectNeedsNameOrEnd
	wsObjectNeedsValue
	wsArrayNeedsValueOrEnd
	wsClosed
)

// Writer emits a CirJSON token stream to an io.Writer, enforcing the
// mandatory identity field and mirroring every write through a
// ContextStack so PathAsPointer stays accurate mid-document.
type Writer struct {
	out  io.Writer
	ctx  *ContextStack
	st   writerState
	cfg  StreamWriteConstraints
	errc ErrorReportConfiguration

	features featureSet
	escapes  CharacterEscapes
	pp       PrettyPrinter
	wctx     []ObjectWriteContext // parallel to ctx.frames, index 0 unused (root)
	idGen    IDGenerator
	dupStack []map[string]bool // one set per open object frame, innermost last

	scratch *recycler.Handle // TextBuffer-kind scratch for number/escape formatting
	rec     *recycler.Recycler

	closed bool
	err    error

	b64 cirjsonbase64.Variant
}

func NewWriter(w io.Writer) *Writer {
	return newWriterWithRecycler(w, recycler.Shared())
}

func newWriterWithRecycler(w io.Writer, rec *recycler.Recycler) *Writer {
	wr := &Writer{
		out:      w,
		ctx:      NewContextStack(),
		st:       wsInitial,
		cfg:      DefaultStreamWriteConstraints,
		errc:     DefaultErrorReportConfiguration,
		features: newFeatureSet(defaultWriterFeatures),
		idGen:    uuidGenerator{},
		rec:      rec,
	}
	wr.scratch = recycler.Checkout(wr.rec, recycler.TextBuffer)
	wr.wctx = make([]ObjectWriteContext, 1, 8)
	wr.b64 = cirjsonbase64.MIMENoLinefeeds
	return wr
}

// SetIDGenerator overrides the default UUID-backed identity generator
// used when the caller does not supply an explicit ObjectWriteContext
// for a frame.
func (w *Writer) SetIDGenerator(g IDGenerator) { w.idGen = g }

// SetCharacterEscapes installs a custom escape table.
func (w *Writer) SetCharacterEscapes(esc CharacterEscapes) { w.escapes = esc }

// SetPrettyPrinter installs a layout policy consulted at every
// structural/separator boundary. If pp implements Instantiatable, Fresh() is called once
// so each Writer gets its own mutable layout state; a nil pp restores
// the default compact output.
func (w *Writer) SetPrettyPrinter(pp PrettyPrinter) {
	if inst, ok := pp.(Instantiatable); ok {
		pp = inst.Fresh()
	}
	w.pp = pp
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return err
}

func (w *Writer) write(p []byte) error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.out.Write(p); err != nil {
		return w.fail(ioErr(w.loc(), w.errc, w, err))
	}
	return nil
}

func (w *Writer) loc() Location {
	return NoLocation
}

// top reports the writer-context frame type the writer is currently
// inside (ignoring the call-sequence sub-state).
func (w *Writer) top() FrameType { return w.ctx.Top().Type }

func (w *Writer) writeSeparatorIfNeeded() error {
	switch w.st {
	case wsObjectNeedsNameOrEnd:
		if w.pp != nil {
			return w.fail0(w.pp.WriteObjectEntrySeparator(w.out))
		}
		return w.write([]byte{','})
	case wsArrayNeedsValueOrEnd:
		if w.pp != nil {
			return w.fail0(w.pp.WriteArrayValueSeparator(w.out))
		}
		return w.write([]byte{','})
	}
	return nil
}

// fail0 wraps a PrettyPrinter hook's raw error (if any) as an IOError
// the same way Writer.write wraps the underlying io.Writer's errors,
// so a failing layout policy surfaces through the same channel as a
// failing transport.
func (w *Writer) fail0(err error) error {
	if err == nil {
		return nil
	}
	return w.fail(ioErr(w.loc(), w.errc, w, err))
}

// StartObject opens a new object frame and immediately emits its
// mandatory "__cirJsonId__" identity property, sourced from wctx if
// non-nil, else from the installed IDGenerator.
func (w *Writer) StartObject(wctx ObjectWriteContext) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if w.ctx.Depth()+1 > w.cfg.MaxNestingDepth {
		return w.fail(resourceErr(w.loc(), w.errc, "maximum nesting depth %d exceeded", w.cfg.MaxNestingDepth))
	}
	if err := w.write([]byte{'{'}); err != nil {
		return err
	}
	// Opening this object is itself one entry of the enclosing ARRAY
	// (an enclosing OBJECT's entry was already advanced by WriteName);
	// advance the parent before pushing the child frame (see
	// ContextStack.AdvanceEntry's doc comment).
	if !w.ctx.AtRoot() && w.top() == ArrayContext {
		w.ctx.AdvanceEntry()
	}
	w.ctx.PushObject(w.loc())
	w.wctx = append(w.wctx, wctx)
	if w.features.WriterEnabled(WriterFeatureStrictDuplicateDetection) {
		w.dupStack = append(w.dupStack, make(map[string]bool))
	}
	if w.pp != nil {
		if err := w.fail0(w.pp.WriteStartObject(w.out)); err != nil {
			return err
		}
		if err := w.fail0(w.pp.BeforeObjectEntries(w.out)); err != nil {
			return err
		}
	}
	id := w.identityFor(wctx, true)
	if err := w.writeStringLiteral(cirJSONIDName); err != nil {
		return err
	}
	if err := w.writeNameValueSeparator(); err != nil {
		return err
	}
	if err := w.writeStringLiteral(id); err != nil {
		return err
	}
	w.ctx.AdvanceEntry()
	w.st = wsObjectNeedsNameOrEnd
	return nil
}

func (w *Writer) writeNameValueSeparator() error {
	if w.pp != nil {
		return w.fail0(w.pp.WriteObjectNameValueSeparator(w.out))
	}
	return w.write([]byte{':'})
}

// StartArray opens a new array frame and immediately emits its
// mandatory identity string as the array's first element.
func (w *Writer) StartArray(wctx ObjectWriteContext) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if w.ctx.Depth()+1 > w.cfg.MaxNestingDepth {
		return w.fail(resourceErr(w.loc(), w.errc, "maximum nesting depth %d exceeded", w.cfg.MaxNestingDepth))
	}
	if err := w.write([]byte{'['}); err != nil {
		return err
	}
	if !w.ctx.AtRoot() && w.top() == ArrayContext {
		w.ctx.AdvanceEntry()
	}
	w.ctx.PushArray(w.loc())
	w.wctx = append(w.wctx, wctx)
	if w.pp != nil {
		if err := w.fail0(w.pp.WriteStartArray(w.out)); err != nil {
			return err
		}
		if err := w.fail0(w.pp.BeforeArrayValues(w.out)); err != nil {
			return err
		}
	}
	id := w.identityFor(wctx, false)
	if err := w.writeStringLiteral(id); err != nil {
		return err
	}
	w.ctx.AdvanceEntry()
	w.st = wsArrayNeedsValueOrEnd
	return nil
}

func (w *Writer) identityFor(wctx ObjectWriteContext, isObject bool) string {
	if wctx != nil {
		if isObject {
			return wctx.GetObjectID()
		}
		return wctx.GetArrayID()
	}
	return w.idGen.NextID()
}

// EndObject closes the innermost frame, which must be an OBJECT.
func (w *Writer) EndObject() error {
	if w.top() != ObjectContext {
		return w.fail(misuseErr(w.loc(), w.errc, "EndObject called while not inside an object"))
	}
	entries := w.ctx.Top().EntryIndex + 1
	if w.pp != nil {
		if err := w.fail0(w.pp.WriteEndObject(w.out, entries)); err != nil {
			return err
		}
	}
	if err := w.write([]byte{'}'}); err != nil {
		return err
	}
	w.ctx.Pop()
	w.wctx = w.wctx[:len(w.wctx)-1]
	if len(w.dupStack) > 0 {
		w.dupStack = w.dupStack[:len(w.dupStack)-1]
	}
	w.afterStructureClose()
	return nil
}

// EndArray closes the innermost frame, which must be an ARRAY.
func (w *Writer) EndArray() error {
	if w.top() != ArrayContext {
		return w.fail(misuseErr(w.loc(), w.errc, "EndArray called while not inside an array"))
	}
	entries := w.ctx.Top().EntryIndex + 1
	if w.pp != nil {
		if err := w.fail0(w.pp.WriteEndArray(w.out, entries)); err != nil {
			return err
		}
	}
	if err := w.write([]byte{']'}); err != nil {
		return err
	}
	w.ctx.Pop()
	w.wctx = w.wctx[:len(w.wctx)-1]
	w.afterStructureClose()
	return nil
}

// afterStructureClose picks the writer's next call-sequence state once
// a nested object/array has been popped. The parent frame's
// EntryIndex was already advanced when the child was pushed (see
// StartObject/StartArray), so this does not advance it again.
func (w *Writer) afterStructureClose() {
	if w.ctx.AtRoot() {
		w.st = wsRootValueWritten
		return
	}
	switch w.top() {
	case ObjectContext:
		w.st = wsObjectNeedsNameOrEnd
	case ArrayContext:
		w.st = wsArrayNeedsValueOrEnd
	}
}

// WriteName writes a property name inside the current object.
func (w *Writer) WriteName(name string) error {
	if w.top() != ObjectContext {
		return w.fail(misuseErr(w.loc(), w.errc, "WriteName called while not inside an object"))
	}
	if w.st != wsObjectNeedsNameOrEnd {
		return w.fail(misuseErr(w.loc(), w.errc, "WriteName called out of sequence"))
	}
	if w.features.WriterEnabled(WriterFeatureStrictDuplicateDetection) && len(w.dupStack) > 0 {
		seen := w.dupStack[len(w.dupStack)-1]
		if seen[name] {
			return w.fail(writeErr(w.loc(), w.errc, "duplicate property name %q", name))
		}
		seen[name] = true
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if err := w.writeStringLiteral(name); err != nil {
		return err
	}
	if err := w.writeNameValueSeparator(); err != nil {
		return err
	}
	w.ctx.SetCurrentName(name)
	w.ctx.AdvanceEntry()
	w.st = wsObjectNeedsValue
	return nil
}

func (w *Writer) checkValuePosition() error {
	switch w.st {
	case wsInitial, wsArrayNeedsValueOrEnd:
		return nil
	case wsObjectNeedsValue:
		return nil
	case wsClosed:
		return w.fail(misuseErr(w.loc(), w.errc, "write called on a closed Writer"))
	default:
		return w.fail(misuseErr(w.loc(), w.errc, "value written where a name or end was expected"))
	}
}

func (w *Writer) afterScalarValue() {
	if w.ctx.AtRoot() {
		w.st = wsRootValueWritten
		return
	}
	switch w.top() {
	case ObjectContext:
		w.st = wsObjectNeedsNameOrEnd
	case ArrayContext:
		w.ctx.AdvanceEntry()
		w.st = wsArrayNeedsValueOrEnd
	}
}

func (w *Writer) writeStringLiteral(s string) error {
	buf := appendEscapedString(w.scratch.Bytes()[:0], s, w.escapes, w.features.WriterEnabled(WriterFeatureEscapeNonASCII))
	w.scratch.SetBytes(buf)
	return w.write(buf)
}

// WriteString writes a scalar string value.
func (w *Writer) WriteString(s string) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if err := w.writeStringLiteral(s); err != nil {
		return err
	}
	w.afterScalarValue()
	return nil
}

func (w *Writer) writeRaw(p []byte) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if err := w.write(p); err != nil {
		return err
	}
	w.afterScalarValue()
	return nil
}

// WriteInt writes a scalar integer value.
func (w *Writer) WriteInt(v int64) error {
	buf := appendInt(w.scratch.Bytes()[:0], v)
	w.scratch.SetBytes(buf)
	return w.writeRaw(buf)
}

// WriteBigInt writes an arbitrary-precision integer value.
func (w *Writer) WriteBigInt(v *big.Int) error {
	buf := v.Append(w.scratch.Bytes()[:0], 10)
	w.scratch.SetBytes(buf)
	return w.writeRaw(buf)
}

// WriteFloat64 writes a scalar floating point value.
func (w *Writer) WriteFloat64(v float64) error {
	buf := appendFloat(w.scratch.Bytes()[:0], v)
	w.scratch.SetBytes(buf)
	return w.writeRaw(buf)
}

// WriteBigDecimal writes an arbitrary-precision decimal value.
func (w *Writer) WriteBigDecimal(v *big.Float) error {
	buf := appendBigDecimal(w.scratch.Bytes()[:0], v, w.features.WriterEnabled(WriterFeatureWriteBigDecimalAsPlain))
	w.scratch.SetBytes(buf)
	return w.writeRaw(buf)
}

// WriteBool writes a scalar boolean value.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.writeRaw(tokenBytes[ValueTrue])
	}
	return w.writeRaw(tokenBytes[ValueFalse])
}

// WriteNull writes a scalar null value.
func (w *Writer) WriteNull() error {
	return w.writeRaw(tokenBytes[ValueNull])
}

// WriteBinary base64-encodes data using the writer's configured
// Variant and writes it as a quoted scalar string.
// CapWriteBinaryNatively is the capability a binary-native backend
// would instead use to skip this text expansion.
func (w *Writer) WriteBinary(data []byte) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	encoded := w.b64.Encode(data, true)
	if err := w.write([]byte(encoded)); err != nil {
		return err
	}
	w.afterScalarValue()
	return nil
}

// SetBase64Variant overrides the Variant used by WriteBinary.
func (w *Writer) SetBase64Variant(v cirjsonbase64.Variant) { w.b64 = v }

// WriteBinaryFrom base64-encodes bytes read from src. If n >= 0,
// exactly n bytes are consumed and a shorter stream is a WriteError;
// if n is -1, src is consumed until EOF.
func (w *Writer) WriteBinaryFrom(src io.Reader, n int) error {
	var data []byte
	var err error
	if n < 0 {
		data, err = io.ReadAll(src)
		if err != nil {
			return w.fail(ioErr(w.loc(), w.errc, w, err))
		}
	} else {
		data = make([]byte, n)
		got, err := io.ReadFull(src, data)
		if err != nil {
			return w.fail(writeErr(w.loc(), w.errc, "binary stream ended after %d of %d expected bytes", got, n))
		}
	}
	return w.WriteBinary(data)
}

// WriteNumberText writes a pre-formatted numeric literal verbatim.
// The caller is responsible for s being valid CirJSON number syntax;
// this is the path for echoing a parsed number back out without a
// round trip through float64.
func (w *Writer) WriteNumberText(s string) error {
	buf := append(w.scratch.Bytes()[:0], s...)
	w.scratch.SetBytes(buf)
	return w.writeRaw(buf)
}

// WriteRawValue writes s with no escaping or quoting, but still
// inserts any separator the current position requires and advances the
// writer's state as if a scalar value had been written.
func (w *Writer) WriteRawValue(s string) error {
	buf := append(w.scratch.Bytes()[:0], s...)
	w.scratch.SetBytes(buf)
	return w.writeRaw(buf)
}

// WriteRaw copies s to the output with no escaping, no separators and
// no state validation. The caller takes full responsibility for the
// output remaining well-formed.
func (w *Writer) WriteRaw(s string) error {
	if w.st == wsClosed {
		return w.fail(misuseErr(w.loc(), w.errc, "write called on a closed Writer"))
	}
	return w.write([]byte(s))
}

// WriteNameSerialized writes a pre-encoded property name, reusing the
// quoted form computed when the SerializedString was built instead of
// re-escaping on every write.
func (w *Writer) WriteNameSerialized(name *SerializedString) error {
	if w.top() != ObjectContext {
		return w.fail(misuseErr(w.loc(), w.errc, "WriteName called while not inside an object"))
	}
	if w.st != wsObjectNeedsNameOrEnd {
		return w.fail(misuseErr(w.loc(), w.errc, "WriteName called out of sequence"))
	}
	if w.features.WriterEnabled(WriterFeatureStrictDuplicateDetection) && len(w.dupStack) > 0 {
		seen := w.dupStack[len(w.dupStack)-1]
		if seen[name.Value()] {
			return w.fail(writeErr(w.loc(), w.errc, "duplicate property name %q", name.Value()))
		}
		seen[name.Value()] = true
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if err := w.write(name.Quoted()); err != nil {
		return err
	}
	if err := w.writeNameValueSeparator(); err != nil {
		return err
	}
	w.ctx.SetCurrentName(name.Value())
	w.ctx.AdvanceEntry()
	w.st = wsObjectNeedsValue
	return nil
}

// WriteStringSerialized writes a pre-encoded scalar string value.
func (w *Writer) WriteStringSerialized(s *SerializedString) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if err := w.writeSeparatorIfNeeded(); err != nil {
		return err
	}
	if err := w.write(s.Quoted()); err != nil {
		return err
	}
	w.afterScalarValue()
	return nil
}

// OutputBuffered reports the number of bytes accepted by Write* calls
// but not yet handed to the underlying target. Writer emits its output
// synchronously, so this is always 0; callers that want buffering wrap
// the target in a bufio.Writer, where Flush (with
// WriterFeatureFlushPassedToStream) drains it.
func (w *Writer) OutputBuffered() int { return 0 }

// Flush flushes any buffered writer state downstream (WriterFeatureFlushPassedToStream
// forwards this through to the underlying io.Writer when it implements
// a Flush method, else it is a no-op).
func (w *Writer) Flush() error {
	if f, ok := w.out.(interface{ Flush() error }); ok && w.features.WriterEnabled(WriterFeatureFlushPassedToStream) {
		return f.Flush()
	}
	return nil
}

// Close finishes the stream: if WriterFeatureAutoCloseContent is set,
// any still-open object/array frames are closed automatically, so a
// caller that bails out early still leaves well-formed output behind.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.features.WriterEnabled(WriterFeatureAutoCloseContent) {
		for !w.ctx.AtRoot() {
			switch w.top() {
			case ObjectContext:
				if err := w.EndObject(); err != nil {
					return err
				}
			case ArrayContext:
				if err := w.EndArray(); err != nil {
					return err
				}
			}
		}
	}
	w.st = wsClosed
	w.scratch.Release()
	if w.features.WriterEnabled(WriterFeatureAutoCloseTarget) {
		if c, ok := w.out.(io.Closer); ok {
			return c.Close()
		}
	}
	return nil
}

// CurrentPath returns the CirJSON-Pointer path to the position the
// writer is about to write at.
func (w *Writer) CurrentPath() Pointer { return w.ctx.PathAsPointer(false) }

// Depth reports the writer's current nesting depth.
func (w *Writer) Depth() int { return w.ctx.Depth() }

// Capabilities reports the boolean properties callers can branch on
// for this writer. A textual target has no native type ids and no
// native binary representation, so the set is always empty for
// CirJSON.
func (w *Writer) Capabilities() WriterCapability { return 0 }
