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

package cirjsonbase64

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestEncodeBasics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"f", "Zg=="},
		{"fo", "Zm8="},
		{"foo", "Zm9v"},
		{"foob", "Zm9vYg=="},
		{"fooba", "Zm9vYmE="},
		{"foobar", "Zm9vYmFy"},
		{"Hello World", "SGVsbG8gV29ybGQ="},
	}
	for _, tc := range cases {
		if got := MIMENoLinefeeds.Encode([]byte(tc.in), false); got != tc.want {
			t.Errorf("Encode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncodeQuoted(t *testing.T) {
	if got := MIMENoLinefeeds.Encode([]byte("foo"), true); got != `"Zm9v"` {
		t.Fatalf("quoted = %q", got)
	}
}

func TestEncodeNoPadding(t *testing.T) {
	if got := URLSafe.Encode([]byte("f"), false); got != "Zg" {
		t.Fatalf("URLSafe single byte = %q", got)
	}
	// the url alphabet swaps '+'/'/' for '-'/'_'
	data := []byte{0xFB, 0xEF, 0xFF}
	std := MIMENoLinefeeds.Encode(data, false)
	url := URLSafe.Encode(data, false)
	if !strings.ContainsAny(std, "+/") {
		t.Fatalf("test data does not exercise the swapped alphabet: %q", std)
	}
	if strings.ContainsAny(url, "+/") {
		t.Fatalf("URLSafe output uses the standard alphabet: %q", url)
	}
}

func TestEncodeLinefeeds(t *testing.T) {
	data := make([]byte, 100)
	encoded := MIME.Encode(data, false)
	lines := strings.Split(encoded, "\n")
	if len(lines) < 2 {
		t.Fatalf("no linefeed injected: %q", encoded)
	}
	for i, line := range lines[:len(lines)-1] {
		if len(line) != 76 {
			t.Errorf("line %d is %d chars, want 76", i, len(line))
		}
	}
}

func TestDecodeWhitespaceBetweenQuartets(t *testing.T) {
	got, err := MIME.Decode("SGVsbG8g\nV29ybGQ=", nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Hello World" {
		t.Fatalf("decoded %q", got)
	}
}

func TestDecodeWhitespaceInsideQuartet(t *testing.T) {
	_, err := MIME.Decode("SG V sbG8=", nil)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error %T (%v), want *DecodeError", err, err)
	}
	if derr.Kind != OffenderWhitespace {
		t.Fatalf("kind %d, want whitespace", derr.Kind)
	}
	if derr.QuartetIndex != 2 {
		t.Fatalf("quartet index %d, want 2", derr.QuartetIndex)
	}
}

func TestDecodePaddingForbidden(t *testing.T) {
	v := MIME.WithPaddingRead(PadForbidden)
	got, err := v.Decode("SGVsbG8gV29ybGQ=", nil)
	_ = got
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error %T (%v), want *DecodeError", err, err)
	}
	if derr.Kind != OffenderPadding {
		t.Fatalf("kind %d, want padding", derr.Kind)
	}
	if !strings.Contains(err.Error(), "padding") {
		t.Fatalf("message %q", err)
	}
}

func TestDecodePaddingRequired(t *testing.T) {
	// missing '=' on a partial final quartet
	_, err := MIMENoLinefeeds.Decode("Zm8", nil)
	if err == nil {
		t.Fatal("missing padding accepted by PadRequired")
	}
	// allowed: both forms accepted
	v := MIMENoLinefeeds.WithPaddingRead(PadAllowed)
	for _, in := range []string{"Zm8", "Zm8="} {
		got, err := v.Decode(in, nil)
		if err != nil || string(got) != "fo" {
			t.Fatalf("%q: got %q, err %v", in, got, err)
		}
	}
}

func TestDecodeInvalidCharacter(t *testing.T) {
	_, err := MIMENoLinefeeds.Decode("Zm9*", nil)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error %T (%v)", err, err)
	}
	if derr.Kind != OffenderInvalid || derr.Offender != '*' || derr.QuartetIndex != 3 {
		t.Fatalf("got %+v", derr)
	}

	_, err = MIMENoLinefeeds.Decode("Zm9\x01", nil)
	if !errors.As(err, &derr) || derr.Kind != OffenderControl {
		t.Fatalf("control byte: %v", err)
	}
}

func TestDecodeEarlyPadding(t *testing.T) {
	// padding in the first two quartet positions is never legal
	_, err := MIMENoLinefeeds.Decode("=AAA", nil)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != OffenderPadding || derr.QuartetIndex != 0 {
		t.Fatalf("got %v", err)
	}
}

func TestRoundTripAllVariants(t *testing.T) {
	variants := map[string]Variant{
		"mime":            MIME,
		"mime-no-lf":      MIMENoLinefeeds,
		"pem":             PEM,
		"url-safe":        URLSafe,
		"pem-pad-allowed": PEM.WithPaddingRead(PadAllowed),
	}
	rng := rand.New(rand.NewSource(42))
	for name, v := range variants {
		v := v
		t.Run(name, func(t *testing.T) {
			for trial := 0; trial < 200; trial++ {
				n := rng.Intn(300)
				data := make([]byte, n)
				rng.Read(data)
				encoded := v.Encode(data, false)
				decoded, err := v.Decode(encoded, nil)
				if err != nil {
					t.Fatalf("n=%d: %s", n, err)
				}
				if !bytes.Equal(decoded, data) {
					t.Fatalf("n=%d: round trip mismatch", n)
				}
			}
		})
	}
}

func TestVariantAccessors(t *testing.T) {
	if c, ok := MIME.PadChar(); !ok || c != '=' {
		t.Errorf("MIME PadChar = %c, %v", c, ok)
	}
	if _, ok := URLSafe.PadChar(); ok {
		t.Error("URLSafe should not pad")
	}
	if MIME.MaxLineLength() != 76 || PEM.MaxLineLength() != 76 {
		t.Error("line lengths")
	}
	if MIME.PaddingReadBehaviour() != PadRequired {
		t.Error("MIME should require padding")
	}
	fp := MIME.WithPaddingRead(PadForbidden)
	if fp.PaddingReadBehaviour() != PadForbidden {
		t.Error("WithPaddingRead did not take")
	}
}

func FuzzDecodeEncode(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add([]byte{})
	f.Add([]byte{0, 1, 2, 255})
	f.Fuzz(func(t *testing.T, data []byte) {
		encoded := MIMENoLinefeeds.Encode(data, false)
		decoded, err := MIMENoLinefeeds.Decode(encoded, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatalf("round trip mismatch for %x", data)
		}
	})
}
