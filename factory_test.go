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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cirjson-go/cirjson/internal/recycler"
)

func TestBuilderFeatureToggles(t *testing.T) {
	f := NewBuilder().
		Disable(ParserFeatureStrictDuplicateDetection).
		EnableWriter(WriterFeatureEscapeNonASCII).
		DisableWriter(WriterFeatureAutoCloseContent).
		DisableFactory(FactoryFeatureCharsetDetection).
		EnableFormat(FormatFeatureUseFastDoubleWriter).
		Build()

	if f.parserFeatures.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		t.Error("parser feature still enabled")
	}
	if !f.writerFeatures.WriterEnabled(WriterFeatureEscapeNonASCII) {
		t.Error("writer feature not enabled")
	}
	if f.writerFeatures.WriterEnabled(WriterFeatureAutoCloseContent) {
		t.Error("writer feature still enabled")
	}
	if f.factoryFeatures.FactoryEnabled(FactoryFeatureCharsetDetection) {
		t.Error("factory feature still enabled")
	}
	if !f.formatFeatures.FormatEnabled(FormatFeatureUseFastDoubleWriter) {
		t.Error("format feature not enabled")
	}

	// the defaults a fresh builder starts from
	d := NewBuilder().Build()
	if !d.parserFeatures.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		t.Error("strict duplicate detection should default on")
	}
	if !d.factoryFeatures.FactoryEnabled(FactoryFeatureCanonicalizePropertyNames) {
		t.Error("canonicalization should default on")
	}
}

func TestBuilderConfigure(t *testing.T) {
	f := NewBuilder().Configure(ParserFeatureStrictDuplicateDetection, false).Build()
	if f.parserFeatures.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		t.Error("Configure(false) did not disable")
	}
}

func TestFactoryImmutableAfterBuild(t *testing.T) {
	b := NewBuilder()
	f1 := b.Build()
	b.Disable(ParserFeatureStrictDuplicateDetection)
	f2 := b.Build()
	if !f1.parserFeatures.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		t.Error("earlier Build affected by later mutation")
	}
	if f2.parserFeatures.IsEnabled(ParserFeatureStrictDuplicateDetection) {
		t.Error("later Build missing mutation")
	}
}

type testSchema string

func (s testSchema) FormatName() string { return string(s) }

func TestCanUseSchema(t *testing.T) {
	f := NewBuilder().Build()
	if f.FormatName() != "CirJSON" {
		t.Fatalf("FormatName = %q", f.FormatName())
	}
	if !f.CanUseSchema(testSchema("CirJSON")) {
		t.Error("CirJSON schema rejected")
	}
	if f.CanUseSchema(testSchema("Smile")) {
		t.Error("foreign schema accepted")
	}
	if f.CanUseSchema(nil) {
		t.Error("nil schema accepted")
	}
}

func TestNewReaderFromBytesRange(t *testing.T) {
	f := NewBuilder().Build()
	data := []byte(`xx{"__cirJsonId__":"r"}yy`)
	r, err := f.NewReaderFromBytesRange(data, 2, len(data)-4)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	events := traceAll(t, r)
	if len(events) != 3 {
		t.Fatalf("tokens: %v", events)
	}

	var merr *MisuseError
	if _, err := f.NewReaderFromBytesRange(data, -1, 2); !errors.As(err, &merr) {
		t.Fatalf("negative offset: %v", err)
	}
	if _, err := f.NewReaderFromBytesRange(data, 20, 20); !errors.As(err, &merr) {
		t.Fatalf("overlong range: %v", err)
	}
}

func TestNewReaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.cirjson")
	if err := os.WriteFile(path, []byte(`{"__cirJsonId__":"file","ok":true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewBuilder().Build()
	closer, r, err := f.NewReaderFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	events := traceAll(t, r)
	if len(events) != 5 || events[2].text != "ok" {
		t.Fatalf("tokens: %v", events)
	}
}

func TestNewReaderFromFileMissing(t *testing.T) {
	f := NewBuilder().Build()
	if _, _, err := f.NewReaderFromFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("missing file opened")
	}
}

func TestNewWriterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.cirjson")
	f := NewBuilder().Build()
	w, err := f.NewWriterToFile(path)
	if err != nil {
		t.Fatal(err)
	}
	w.StartObject(objID("r"))
	w.WriteName("n")
	w.WriteInt(9)
	w.EndObject()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"__cirJsonId__":"r","n":9}` {
		t.Fatalf("file contents %q", data)
	}
}

func TestFactoryRecyclerPool(t *testing.T) {
	rec := recycler.New()
	if !rec.IsExternal() {
		t.Fatal("New recycler not marked external")
	}
	f := NewBuilder().RecyclerPool(rec).Build()
	r := f.NewReaderFromString(`{"__cirJsonId__":"r"}`)
	traceAll(t, r)
	r.Close()
}

// closeTracker records whether Close was called on a caller-supplied
// source.
type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestReaderAutoCloseSource(t *testing.T) {
	const doc = `{"__cirJsonId__":"r"}`

	// AutoCloseSource defaults on: the caller's source is closed even
	// though charset normalization wrapped it
	src := &closeTracker{Reader: strings.NewReader(doc)}
	f := NewBuilder().Build()
	r, err := f.NewReaderFromIOReader(src)
	if err != nil {
		t.Fatal(err)
	}
	traceAll(t, r)
	r.Close()
	if !src.closed {
		t.Fatal("source not closed with AutoCloseSource on")
	}

	// with the feature off the caller keeps ownership
	src2 := &closeTracker{Reader: strings.NewReader(doc)}
	f2 := NewBuilder().Disable(ParserFeatureAutoCloseSource).Build()
	r2, err := f2.NewReaderFromIOReader(src2)
	if err != nil {
		t.Fatal(err)
	}
	traceAll(t, r2)
	r2.Close()
	if src2.closed {
		t.Fatal("source closed despite AutoCloseSource off")
	}
}

func TestInternPropertyNamesAcrossReaders(t *testing.T) {
	f := NewBuilder().EnableFactory(FactoryFeatureInternPropertyNames).Build()

	doc := `{"__cirJsonId__":"r","shared":1}`
	r1 := f.NewReaderFromString(doc)
	traceAll(t, r1)
	r1.Close()

	// after r1 merged its names back, a second reader's snapshot
	// already contains "shared"
	if _, ok := f.names.table.Lookup("shared"); !ok {
		t.Fatal("name not merged back into the factory table")
	}
	r2 := f.NewReaderFromString(doc)
	if _, ok := r2.names.Lookup("shared"); !ok {
		t.Fatal("snapshot missing merged name")
	}
	traceAll(t, r2)
	r2.Close()
}

func TestCanonicalizationSharesStorage(t *testing.T) {
	f := NewBuilder().Build()
	r := f.NewReaderFromString(`{"__cirJsonId__":"r","name":1,"other":{"__cirJsonId__":"r/o","name":2}}`)
	defer r.Close()
	var names []string
	for {
		tok, err := r.NextToken()
		if err != nil {
			t.Fatal(err)
		}
		if tok == NotAvailable || tok == NoToken {
			break
		}
		if tok == PropertyName {
			s, _ := r.StringValue()
			names = append(names, s)
		}
	}
	if len(names) != 3 || names[0] != "name" || names[2] != "name" {
		t.Fatalf("names: %v", names)
	}
	if r.names.Len() != 2 {
		t.Fatalf("interned %d names, want 2", r.names.Len())
	}
}

func TestFactoryAsyncReader(t *testing.T) {
	f := NewBuilder().
		StreamReadConstraints(StreamReadConstraints{MaxNestingDepth: 2}).
		Build()
	r := f.NewAsyncReader()
	defer r.Close()
	r.Feed([]byte(`["a",["b",["c"]]]`))
	r.EndOfInput()
	var err error
	for err == nil {
		var tok TokenKind
		tok, err = r.NextToken()
		if err == nil && tok == NoToken {
			t.Fatal("depth limit not applied through the factory")
		}
	}
	var rle *ResourceLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("error %T (%v)", err, err)
	}
}
