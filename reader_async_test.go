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
	"strings"
	"testing"
)

// feedAll drives an AsyncReader over data delivered in chunkSize-byte
// slices (padded with pad zero-length feeds between chunks) and
// returns the produced token trace.
func feedAll(t *testing.T, data []byte, chunkSize, pad int) []traceEvent {
	t.Helper()
	r := NewAsyncReader()
	defer r.Close()
	var events []traceEvent
	pos := 0
	for {
		tok, err := r.NextToken()
		if err != nil {
			t.Fatalf("chunk=%d: NextToken: %s", chunkSize, err)
		}
		switch tok {
		case NotAvailable:
			if pos >= len(data) {
				r.EndOfInput()
				continue
			}
			end := pos + chunkSize
			if end > len(data) {
				end = len(data)
			}
			for i := 0; i < pad; i++ {
				if err := r.Feed(nil); err != nil {
					t.Fatal(err)
				}
			}
			if err := r.Feed(data[pos:end]); err != nil {
				t.Fatal(err)
			}
			pos = end
		case NoToken:
			return events
		default:
			events = append(events, record(r, tok))
		}
	}
}

func TestAsyncReaderChunkedParity(t *testing.T) {
	data := []byte(nestedDoc)
	want := traceAll(t, readerOver(nestedDoc))
	for _, chunk := range []int{1000, 99, 7, 5, 3, 2, 1} {
		for _, pad := range []int{0, 1} {
			got := feedAll(t, data, chunk, pad)
			if len(got) != len(want) {
				t.Fatalf("chunk=%d pad=%d: %d tokens, want %d", chunk, pad, len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("chunk=%d pad=%d token %d: got %v, want %v", chunk, pad, i, got[i], want[i])
				}
			}
		}
	}
}

func TestAsyncReaderNotAvailableMidToken(t *testing.T) {
	r := NewAsyncReader()
	defer r.Close()

	// a split straight through the identity property name
	r.Feed([]byte(`{"__cirJso`))
	tok, err := r.NextToken()
	if err != nil || tok != NotAvailable {
		t.Fatalf("mid-name: token %d, err %v; want NotAvailable", tok, err)
	}
	r.Feed([]byte(`nId__":"root","n":12`))
	tok, err = r.NextToken()
	if err != nil || tok != StartObject {
		t.Fatalf("after feed: token %d, err %v; want StartObject", tok, err)
	}
	tok, _ = r.NextToken()
	if tok != IDPropertyName {
		t.Fatalf("token %d, want IDPropertyName", tok)
	}
	if s, _ := r.StringValue(); s != "root" {
		t.Fatalf("identity = %q", s)
	}
	tok, _ = r.NextToken()
	if tok != PropertyName {
		t.Fatalf("token %d, want PropertyName", tok)
	}

	// "12" may still grow into "123"; the reader must hold back
	tok, err = r.NextToken()
	if err != nil || tok != NotAvailable {
		t.Fatalf("mid-number: token %d, err %v; want NotAvailable", tok, err)
	}
	r.Feed([]byte(`3}`))
	tok, err = r.NextToken()
	if err != nil || tok != ValueNumberInt {
		t.Fatalf("number token %d, err %v", tok, err)
	}
	if v, err := r.Int64Value(); err != nil || v != 123 {
		t.Fatalf("Int64Value = %d, %v", v, err)
	}
	tok, _ = r.NextToken()
	if tok != EndObject {
		t.Fatalf("token %d, want EndObject", tok)
	}
	r.EndOfInput()
	tok, err = r.NextToken()
	if err != nil || tok != NoToken {
		t.Fatalf("after end: token %d, err %v; want NoToken", tok, err)
	}
}

func TestAsyncReaderRootNumberNeedsEnd(t *testing.T) {
	r := NewAsyncReader()
	defer r.Close()
	r.Feed([]byte(`42`))
	tok, err := r.NextToken()
	if err != nil || tok != NotAvailable {
		t.Fatalf("token %d, err %v; want NotAvailable while the number may grow", tok, err)
	}
	r.EndOfInput()
	tok, err = r.NextToken()
	if err != nil || tok != ValueNumberInt {
		t.Fatalf("token %d, err %v; want ValueNumberInt after EndOfInput", tok, err)
	}
	if v, _ := r.Int32Value(); v != 42 {
		t.Fatalf("value = %d", v)
	}
}

func TestAsyncReaderFeedAfterEnd(t *testing.T) {
	r := NewAsyncReader()
	defer r.Close()
	r.Feed([]byte(`1`))
	r.EndOfInput()
	err := r.Feed([]byte(`2`))
	var merr *MisuseError
	if !errors.As(err, &merr) {
		t.Fatalf("Feed after EndOfInput: %T (%v), want *MisuseError", err, err)
	}
}

func TestAsyncReaderTruncatedDocument(t *testing.T) {
	r := NewAsyncReader()
	defer r.Close()
	r.Feed([]byte(`{"__cirJsonId__":"a","x":`))
	r.EndOfInput()
	var err error
	for err == nil {
		var tok TokenKind
		tok, err = r.NextToken()
		if err == nil && (tok == NoToken || tok == NotAvailable) {
			t.Fatal("truncated document drained without error")
		}
	}
	var rerr *ReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("error %T (%v), want *ReadError", err, err)
	}
}

func TestAsyncReaderMissingIdentity(t *testing.T) {
	r := NewAsyncReader()
	defer r.Close()
	r.Feed([]byte(`{"x":1}`))
	r.EndOfInput()
	_, err := r.NextToken()
	if err == nil || !strings.Contains(err.Error(), "__cirJsonId__") {
		t.Fatalf("err = %v, want identity error", err)
	}
}

func TestAsyncReaderCharsetDetection(t *testing.T) {
	// a document with an astral-plane character, so chunked UTF-16
	// feeds split surrogate pairs across Feed calls
	const doc = `{"__cirJsonId__":"root","s":"mixed ☃ 😀 end","n":7}`
	want := traceAll(t, readerOver(doc))

	type variant struct {
		name string
		data []byte
	}
	variants := []variant{
		{"utf16be", utf16Bytes(doc, true)},
		{"utf16le", utf16Bytes(doc, false)},
		{"utf32be", utf32Bytes(doc, true)},
		{"utf32le", utf32Bytes(doc, false)},
	}
	for _, v := range variants {
		for _, chunk := range []int{len(v.data), 7, 3, 1} {
			got := feedAll(t, v.data, chunk, 0)
			if len(got) != len(want) {
				t.Fatalf("%s chunk=%d: %d tokens, want %d", v.name, chunk, len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("%s chunk=%d token %d: got %v, want %v", v.name, chunk, i, got[i], want[i])
				}
			}
		}
	}
}

func TestAsyncReaderTruncatedUTF16Unit(t *testing.T) {
	data := utf16Bytes(`{"__cirJsonId__":"r"}`, true)
	r := NewAsyncReader()
	defer r.Close()
	r.Feed(data[:len(data)-1]) // half of the final code unit
	r.EndOfInput()
	_, err := r.NextToken()
	if err == nil || !strings.Contains(err.Error(), "UTF-16") {
		t.Fatalf("err = %v, want a UTF-16 truncation error", err)
	}
}

func TestAsyncReaderCharsetDetectionDisabled(t *testing.T) {
	f := NewBuilder().DisableFactory(FactoryFeatureCharsetDetection).Build()
	r := f.NewAsyncReader()
	defer r.Close()
	r.Feed(utf16Bytes(`{"__cirJsonId__":"r"}`, true))
	r.EndOfInput()
	if _, err := r.NextToken(); err == nil {
		t.Fatal("undetected UTF-16 parsed cleanly")
	}
}

func TestAsyncReaderDuplicateNames(t *testing.T) {
	r := NewAsyncReader()
	defer r.Close()
	r.Feed([]byte(`{"__cirJsonId__":"r","a":1,"a":2}`))
	r.EndOfInput()
	var err error
	for err == nil {
		var tok TokenKind
		tok, err = r.NextToken()
		if err == nil && tok == NoToken {
			t.Fatal("duplicate not detected")
		}
	}
	if !strings.Contains(err.Error(), "duplicate property name") {
		t.Fatalf("err = %v", err)
	}
}
