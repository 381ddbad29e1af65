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
	"bytes"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/cirjson-go/cirjson/internal/recycler"
	"github.com/cirjson-go/cirjson/internal/symtab"
)

// sharedNames is the factory-scoped canonicalization table: readers
// take a copy-on-write snapshot at construction, so one reader's
// document-local growth never corrupts another reader of the same
// Factory, and (with FactoryFeatureInternPropertyNames) merge their
// additions back on Close so later readers start warm.
type sharedNames struct {
	mu    sync.Mutex
	table symtab.Table
}

func (s *sharedNames) snapshot() *symtab.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}

func (s *sharedNames) merge(t *symtab.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range t.All() {
		s.table.Canonicalize(name)
	}
}

// Factory is an immutable set of defaults (constraints, feature masks,
// error reporting, a Recycler) that every Reader/Writer it constructs
// starts from. It is built once via Builder and is safe to share
// across goroutines.
type Factory struct {
	parserFeatures  featureSet
	writerFeatures  featureSet
	factoryFeatures featureSet
	formatFeatures  featureSet

	readCfg  StreamReadConstraints
	writeCfg StreamWriteConstraints
	errc     ErrorReportConfiguration

	rec   *recycler.Recycler
	names *sharedNames
}

// Builder assembles a Factory fluently; every method returns the
// receiver so calls chain. No variadic options, just chained setters.
type Builder struct {
	f Factory
}

// NewBuilder returns a Builder seeded with the library defaults.
func NewBuilder() *Builder {
	return &Builder{f: Factory{
		parserFeatures:  newFeatureSet(defaultParserFeatures),
		writerFeatures:  newFeatureSet(defaultWriterFeatures),
		factoryFeatures: newFeatureSet(defaultFactoryFeatures),
		formatFeatures:  newFeatureSet(defaultFormatFeatures),
		readCfg:         DefaultStreamReadConstraints,
		writeCfg:        DefaultStreamWriteConstraints,
		errc:            DefaultErrorReportConfiguration,
		rec:             recycler.Shared(),
		names:           &sharedNames{},
	}}
}

// Enable/Disable toggle one feature bit; overloaded by family via the
// argument's static type.
func (b *Builder) Enable(f ParserFeature) *Builder  { b.f.parserFeatures.configureMask(maskFor(f), true); return b }
func (b *Builder) Disable(f ParserFeature) *Builder { b.f.parserFeatures.configureMask(maskFor(f), false); return b }

func (b *Builder) EnableWriter(f WriterFeature) *Builder {
	b.f.writerFeatures.configureMask(maskFor(f), true)
	return b
}
func (b *Builder) DisableWriter(f WriterFeature) *Builder {
	b.f.writerFeatures.configureMask(maskFor(f), false)
	return b
}

func (b *Builder) EnableFactory(f FactoryFeature) *Builder {
	b.f.factoryFeatures.configureMask(maskFor(f), true)
	return b
}
func (b *Builder) DisableFactory(f FactoryFeature) *Builder {
	b.f.factoryFeatures.configureMask(maskFor(f), false)
	return b
}

func (b *Builder) EnableFormat(f FormatFeature) *Builder {
	b.f.formatFeatures.configureMask(maskFor(f), true)
	return b
}
func (b *Builder) DisableFormat(f FormatFeature) *Builder {
	b.f.formatFeatures.configureMask(maskFor(f), false)
	return b
}

// Configure sets a ParserFeature on or off depending on the on argument,
// a convenience for callers driving Enable/Disable from config data
// (cmd/cirjsoncat's YAML loader uses this instead of branching).
func (b *Builder) Configure(f ParserFeature, on bool) *Builder {
	b.f.parserFeatures.configureMask(maskFor(f), on)
	return b
}

// StreamReadConstraints installs the read-side resource limits.
func (b *Builder) StreamReadConstraints(c StreamReadConstraints) *Builder {
	b.f.readCfg = c
	return b
}

// StreamWriteConstraints installs the write-side resource limits.
func (b *Builder) StreamWriteConstraints(c StreamWriteConstraints) *Builder {
	b.f.writeCfg = c
	return b
}

// ErrorReportConfiguration overrides how much raw content error
// messages are allowed to quote.
func (b *Builder) ErrorReportConfiguration(c ErrorReportConfiguration) *Builder {
	b.f.errc = c
	return b
}

// RecyclerPool installs an independent, non-shared Recycler instead of
// the package-level default pools, isolating this Factory's buffer
// reuse from every other Factory in the process.
func (b *Builder) RecyclerPool(rec *recycler.Recycler) *Builder {
	b.f.rec = rec
	return b
}

// Build freezes the accumulated settings into an immutable Factory.
func (b *Builder) Build() *Factory {
	f := b.f
	if !f.factoryFeatures.FactoryEnabled(FactoryFeatureIncludeSourceInLocation) {
		f.errc.IncludeSourceInLocation = false
	}
	return &f
}

func (f *Factory) applyReader(r *Reader) {
	r.cfg = f.readCfg.orDefault()
	r.errc = f.errc
	r.features = f.parserFeatures
	r.factoryFeatures = f.factoryFeatures
	if f.factoryFeatures.FactoryEnabled(FactoryFeatureCanonicalizePropertyNames) {
		r.names = f.names.snapshot()
		if f.factoryFeatures.FactoryEnabled(FactoryFeatureInternPropertyNames) {
			r.intern = f.names
		}
		if f.factoryFeatures.FactoryEnabled(FactoryFeatureFailOnSymbolHashOverflow) {
			r.names.EnableHashOverflowDetection(0x0123456789abcdef, 0xfedcba9876543210)
		}
	}
}

// FormatName identifies this factory's wire format for
// ObjectReadContext/ObjectWriteContext collaborators that branch on it.
func (f *Factory) FormatName() string { return "CirJSON" }

// CanUseSchema reports whether schema may be attached to a reader or
// writer this Factory builds. CirJSON defines no schema language of
// its own, so the only schema a CirJSON factory accepts is one that
// explicitly names itself as such.
func (f *Factory) CanUseSchema(schema FormatSchema) bool {
	return schema != nil && schema.FormatName() == f.FormatName()
}

func (f *Factory) applyWriter(w *Writer) {
	w.cfg = f.writeCfg.orDefault()
	w.errc = f.errc
	w.features = f.writerFeatures
}

func (f *Factory) applyAsyncReader(r *AsyncReader) {
	r.cfg = f.readCfg.orDefault()
	r.errc = f.errc
	r.features = f.parserFeatures
	r.factoryFeatures = f.factoryFeatures
	if f.factoryFeatures.FactoryEnabled(FactoryFeatureCanonicalizePropertyNames) {
		r.names = f.names.snapshot()
		if f.factoryFeatures.FactoryEnabled(FactoryFeatureInternPropertyNames) {
			r.intern = f.names
		}
		if f.factoryFeatures.FactoryEnabled(FactoryFeatureFailOnSymbolHashOverflow) {
			r.names.EnableHashOverflowDetection(0x0123456789abcdef, 0xfedcba9876543210)
		}
	}
}

// NewAsyncReader returns a feed-driven AsyncReader configured from this
// Factory's constraints and feature masks. Unlike the other
// NewReaderFrom* constructors, the caller owns feeding it bytes
// directly -- there is no source for the factory to own or close.
func (f *Factory) NewAsyncReader() *AsyncReader {
	r := NewAsyncReader()
	f.applyAsyncReader(r)
	return r
}

// ownedReader wraps a Reader together with an extra io.Closer the
// factory itself opened (a file or URL body) so Close tears both down
// in the right order regardless of ParserFeatureAutoCloseSource, which
// only governs caller-supplied sources.
type ownedReader struct {
	*Reader
	owned io.Closer
}

func (r *ownedReader) Close() error {
	err := r.Reader.Close()
	if r.owned != nil {
		if cerr := r.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (f *Factory) newReader(src io.Reader, owned io.Closer) *ownedReader {
	r := newReaderWithRecycler(src, f.rec)
	f.applyReader(r)
	return &ownedReader{Reader: r, owned: owned}
}

// detectAndNormalize applies RFC 4627 BOM/zero-byte encoding detection
// to data when FactoryFeatureCharsetDetection is enabled, transcoding
// UTF-16/32 input down to the UTF-8 the Reader's lexer expects; with
// the feature disabled, data is assumed to already be UTF-8 and passed
// through untouched.
func (f *Factory) detectAndNormalize(data []byte) ([]byte, error) {
	if !f.factoryFeatures.FactoryEnabled(FactoryFeatureCharsetDetection) {
		return data, nil
	}
	enc, rest := stripBOM(data)
	return decodeToUTF8(enc, rest)
}

// NewReaderFromBytes builds a Reader over an in-memory slice. When
// FactoryFeatureCharsetDetection is enabled (the default) data is
// first sniffed for a UTF-16/32 BOM or zero-byte pattern and
// transcoded to UTF-8; otherwise it is assumed to already be UTF-8 and
// used without copying.
func (f *Factory) NewReaderFromBytes(data []byte) (*Reader, error) {
	norm, err := f.detectAndNormalize(data)
	if err != nil {
		return nil, err
	}
	return f.newReader(bytes.NewReader(norm), nil).Reader, nil
}

// NewReaderFromBytesRange is NewReaderFromBytes over data[off:off+n].
// Out-of-range offsets are a MisuseError rather than a panic.
func (f *Factory) NewReaderFromBytesRange(data []byte, off, n int) (*Reader, error) {
	if off < 0 || n < 0 || off+n > len(data) {
		return nil, misuseErr(NoLocation, f.errc, "buffer range [%d:%d] out of bounds for %d bytes", off, off+n, len(data))
	}
	return f.NewReaderFromBytes(data[off : off+n])
}

// NewReaderFromString builds a Reader over an in-memory string,
// assumed to already be UTF-8 (charset detection only applies to byte
// input, since a Go string has no BOM/zero-byte ambiguity to resolve).
func (f *Factory) NewReaderFromString(data string) *Reader {
	return f.newReader(strings.NewReader(data), nil).Reader
}

// normalizeReader applies the same BOM/zero-byte charset pass as
// detectAndNormalize to a streaming source: the first four bytes are
// peeked, UTF-8 input resumes streaming with the peeked prefix
// stitched back on, and UTF-16/32 input is buffered and transcoded as
// one unit (the lexer only reads UTF-8, and a fixed-width encoding
// cannot be re-chunked without tracking code-unit alignment here).
func (f *Factory) normalizeReader(src io.Reader) (io.Reader, error) {
	if !f.factoryFeatures.FactoryEnabled(FactoryFeatureCharsetDetection) {
		return src, nil
	}
	var head [4]byte
	n, err := io.ReadFull(src, head[:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		norm, derr := f.detectAndNormalize(head[:n])
		if derr != nil {
			return nil, derr
		}
		return bytes.NewReader(norm), nil
	}
	if err != nil {
		return nil, err
	}
	enc, rest := stripBOM(head[:])
	if enc == EncodingUTF8 {
		return io.MultiReader(bytes.NewReader(rest), src), nil
	}
	tail, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(rest)+len(tail))
	data = append(data, rest...)
	data = append(data, tail...)
	norm, err := decodeToUTF8(enc, data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(norm), nil
}

// NewReaderFromIOReader builds a Reader over an arbitrary io.Reader,
// applying the same charset detection as NewReaderFromBytes when
// FactoryFeatureCharsetDetection is enabled. The caller retains
// ownership: the source is only closed on Reader.Close if
// ParserFeatureAutoCloseSource is enabled (the default) and r
// implements io.Closer.
func (f *Factory) NewReaderFromIOReader(r io.Reader) (*Reader, error) {
	norm, err := f.normalizeReader(r)
	if err != nil {
		return nil, err
	}
	rd := f.newReader(norm, nil).Reader
	if c, ok := r.(io.Closer); ok {
		rd.srcCloser = c
	}
	return rd, nil
}

// NewReaderFromFile opens path, memory-mapping it when the platform
// supports it (file_unix.go) and falling back to a single buffered read
// otherwise (file_other.go), and returns a Reader over the mapped
// bytes. The factory always owns (and closes/unmaps) a path it opened
// itself, independent of ParserFeatureAutoCloseSource.
func (f *Factory) NewReaderFromFile(path string) (io.Closer, *Reader, error) {
	mf, err := openMappedFile(path)
	if err != nil {
		return nil, nil, err
	}
	norm, err := f.detectAndNormalize(mf.Bytes())
	if err != nil {
		mf.Close()
		return nil, nil, err
	}
	owned := f.newReader(bytes.NewReader(norm), mappedFileCloser{mf})
	return owned, owned.Reader, nil
}

type mappedFileCloser struct{ mf *mappedFile }

func (c mappedFileCloser) Close() error { return c.mf.Close() }

// NewReaderFromURL fetches the resource at u over HTTP and returns a
// Reader over the response body; the factory owns the HTTP response
// body regardless of ParserFeatureAutoCloseSource, since the caller
// never had a handle to it in the first place.
func (f *Factory) NewReaderFromURL(u string) (io.Closer, *Reader, error) {
	resp, err := http.Get(u)
	if err != nil {
		return nil, nil, err
	}
	norm, err := f.normalizeReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, nil, err
	}
	owned := f.newReader(norm, resp.Body)
	return owned, owned.Reader, nil
}

// NewWriterToBytes returns a Writer whose output is buffered in memory,
// retrievable via TextWriter.Bytes/String.
func (f *Factory) NewWriterToBytes() *TextWriter {
	buf := new(bytes.Buffer)
	wr := newWriterWithRecycler(buf, f.rec)
	f.applyWriter(wr)
	return &TextWriter{Writer: wr, buf: buf}
}

// NewWriterToIOWriter builds a Writer over an arbitrary io.Writer. The
// caller retains ownership: the target is only closed on Writer.Close if
// WriterFeatureAutoCloseTarget is enabled (the default) and w implements
// io.Closer.
func (f *Factory) NewWriterToIOWriter(w io.Writer) *Writer {
	wr := newWriterWithRecycler(w, f.rec)
	f.applyWriter(wr)
	return wr
}

// NewWriterToFile creates (or truncates) path and returns a Writer over
// it; the factory always owns the file regardless of
// WriterFeatureAutoCloseTarget.
func (f *Factory) NewWriterToFile(path string) (*Writer, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wr := newWriterWithRecycler(fh, f.rec)
	f.applyWriter(wr)
	wr.features.enableMask(maskFor(WriterFeatureAutoCloseTarget))
	return wr, nil
}
