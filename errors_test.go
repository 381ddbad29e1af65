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
	"strings"
	"testing"
)

func TestStreamErrorRendering(t *testing.T) {
	loc := Location{SourceRef: "test.cirjson", ByteOffset: 10, CharOffset: 10, Line: 2, Column: 3}
	err := readErr(loc, DefaultErrorReportConfiguration, "bad token %q", "x")
	msg := err.Error()
	if !strings.HasPrefix(msg, `bad token "x"`) {
		t.Errorf("message prefix: %q", msg)
	}
	if !strings.Contains(msg, "\n at [Source: test.cirjson; line: 2, column: 3]") {
		t.Errorf("location suffix missing: %q", msg)
	}
}

func TestStreamErrorSourceSuppressed(t *testing.T) {
	cfg := DefaultErrorReportConfiguration
	cfg.IncludeSourceInLocation = false
	loc := Location{SourceRef: "secret", ByteOffset: 1, CharOffset: 1, Line: 1, Column: 1}
	msg := readErr(loc, cfg, "oops").Error()
	if strings.Contains(msg, "secret") {
		t.Fatalf("source leaked: %q", msg)
	}
	if !strings.Contains(msg, "UNKNOWN") {
		t.Fatalf("no UNKNOWN substitution: %q", msg)
	}
}

func TestStreamErrorTruncation(t *testing.T) {
	cfg := DefaultErrorReportConfiguration
	cfg.MaxErrorTokenLength = 10
	long := strings.Repeat("a", 100)
	msg := readErr(NoLocation, cfg, "%s", long).Error()
	if !strings.Contains(msg, "[truncated]") {
		t.Fatalf("not truncated: %q", msg)
	}
	if strings.Contains(msg, strings.Repeat("a", 11)) {
		t.Fatalf("message too long: %q", msg)
	}
}

func TestErrorKinds(t *testing.T) {
	cfg := DefaultErrorReportConfiguration

	var re *ReadError
	if !errors.As(readErr(NoLocation, cfg, "x"), &re) {
		t.Error("ReadError identity")
	}
	var we *WriteError
	if !errors.As(writeErr(NoLocation, cfg, "x"), &we) {
		t.Error("WriteError identity")
	}
	var me *MisuseError
	if !errors.As(misuseErr(NoLocation, cfg, "x"), &me) {
		t.Error("MisuseError identity")
	}
	var rl *ResourceLimitError
	if !errors.As(resourceErr(NoLocation, cfg, "x"), &rl) {
		t.Error("ResourceLimitError identity")
	}
	var ce *InputCoercionError
	cerr := coercionErr(NoLocation, cfg, ValueNull, "x")
	if !errors.As(cerr, &ce) || ce.Kind != ValueNull {
		t.Error("InputCoercionError identity/kind")
	}
}

func TestIOErrorWrapping(t *testing.T) {
	underlying := fmt.Errorf("connection reset")
	owner := &Reader{}
	err := ioErr(NoLocation, DefaultErrorReportConfiguration, owner, underlying)
	if !errors.Is(err, underlying) {
		t.Error("IOError does not unwrap to the transport error")
	}
	if err.Owner != owner {
		t.Error("IOError lost its owner reference")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("message: %q", err.Error())
	}
}
