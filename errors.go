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

import "fmt"

// ErrorReportConfiguration bounds how much raw content an error message
// is allowed to quote, so that security-sensitive payloads are not
// echoed back in full.
type ErrorReportConfiguration struct {
	MaxErrorTokenLength int
	MaxRawContentLength int
	// IncludeSourceInLocation controls whether error locations render
	// their SourceRef or substitute "UNKNOWN". Builder.Build clears it
	// when FactoryFeatureIncludeSourceInLocation is disabled.
	IncludeSourceInLocation bool
}

// DefaultErrorReportConfiguration matches the defaults a CirJSON
// factory ships with.
var DefaultErrorReportConfiguration = ErrorReportConfiguration{
	MaxErrorTokenLength:     256,
	MaxRawContentLength:     1000,
	IncludeSourceInLocation: true,
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "[truncated]"
}

// StreamError is the common shape of every lexical, structural, or
// input-coercion error produced by a Reader or Writer. It is never
// used directly; callers match on the specific *ReadError, *WriteError,
// *InputCoercionError, *ResourceLimitError or *MisuseError types (or use
// errors.As).
type StreamError struct {
	Loc           Location
	Msg           string
	includeSource bool
	Err           error
}

func (e *StreamError) Error() string {
	loc := e.Loc.describe(e.includeSource)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s\n at %s", e.Msg, e.Err.Error(), loc)
	}
	return fmt.Sprintf("%s\n at %s", e.Msg, loc)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ReadError is a lexical or structural error raised by a Reader.
type ReadError struct{ StreamError }

// WriteError is a structural error raised by a Writer (e.g. a call
// sequence that would produce an invalid document).
type WriteError struct{ StreamError }

// InputCoercionError is raised by a typed scalar accessor (Int32Value,
// DoubleValue, ...) when the current token's value cannot be
// represented in the requested type.
type InputCoercionError struct {
	StreamError
	Kind TokenKind
}

// ResourceLimitError is raised when a configured StreamReadConstraints
// or StreamWriteConstraints bound is exceeded.
type ResourceLimitError struct{ StreamError }

// MisuseError is raised when the caller invokes a Reader/Writer
// operation that is not valid in the current state (writing a scalar
// with no open context, mismatched End calls, out-of-range buffer
// offsets passed to a factory constructor, ...). Unlike the other
// error kinds, a MisuseError indicates a programming mistake by the
// caller rather than a problem with the data stream.
type MisuseError struct{ StreamError }

// IOError wraps a failure from the underlying transport (the
// io.Reader/io.Writer/file/URL backing a Reader or Writer). It carries
// a reference to the Reader or Writer that observed the failure so
// diagnostics can report which stream failed.
type IOError struct {
	StreamError
	Owner any
}

func newErr(loc Location, cfg ErrorReportConfiguration, format string, args ...any) StreamError {
	msg := fmt.Sprintf(format, args...)
	return StreamError{Loc: loc, Msg: truncate(msg, cfg.MaxErrorTokenLength), includeSource: cfg.IncludeSourceInLocation}
}

func readErr(loc Location, cfg ErrorReportConfiguration, format string, args ...any) *ReadError {
	return &ReadError{newErr(loc, cfg, format, args...)}
}

func writeErr(loc Location, cfg ErrorReportConfiguration, format string, args ...any) *WriteError {
	return &WriteError{newErr(loc, cfg, format, args...)}
}

func misuseErr(loc Location, cfg ErrorReportConfiguration, format string, args ...any) *MisuseError {
	return &MisuseError{newErr(loc, cfg, format, args...)}
}

func resourceErr(loc Location, cfg ErrorReportConfiguration, format string, args ...any) *ResourceLimitError {
	return &ResourceLimitError{newErr(loc, cfg, format, args...)}
}

func coercionErr(loc Location, cfg ErrorReportConfiguration, kind TokenKind, format string, args ...any) *InputCoercionError {
	return &InputCoercionError{StreamError: newErr(loc, cfg, format, args...), Kind: kind}
}

func ioErr(loc Location, cfg ErrorReportConfiguration, owner any, err error) *IOError {
	return &IOError{
		StreamError: StreamError{Loc: loc, Msg: "I/O error", includeSource: cfg.IncludeSourceInLocation, Err: err},
		Owner:       owner,
	}
}
