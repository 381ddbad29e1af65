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

// StreamReadConstraints bounds the resources a single Reader will
// consume on hostile or malformed input. Zero-value fields mean "use
// the package default."
type StreamReadConstraints struct {
	MaxNestingDepth    int
	MaxNumberLength    int
	MaxStringLength    int
	MaxNameLength      int
	MaxDocumentLength  int64
	MaxTokenCount      int64
}

// DefaultStreamReadConstraints is applied by a Factory that was not
// configured with its own.
var DefaultStreamReadConstraints = StreamReadConstraints{
	MaxNestingDepth:   1000,
	MaxNumberLength:   defaultMaxNumberLength,
	MaxStringLength:   20 << 20,
	MaxNameLength:     50000,
	MaxDocumentLength: 0, // unbounded
	MaxTokenCount:     0, // unbounded
}

func (c StreamReadConstraints) orDefault() StreamReadConstraints {
	d := DefaultStreamReadConstraints
	if c.MaxNestingDepth > 0 {
		d.MaxNestingDepth = c.MaxNestingDepth
	}
	if c.MaxNumberLength > 0 {
		d.MaxNumberLength = c.MaxNumberLength
	}
	if c.MaxStringLength > 0 {
		d.MaxStringLength = c.MaxStringLength
	}
	if c.MaxNameLength > 0 {
		d.MaxNameLength = c.MaxNameLength
	}
	if c.MaxDocumentLength > 0 {
		d.MaxDocumentLength = c.MaxDocumentLength
	}
	if c.MaxTokenCount > 0 {
		d.MaxTokenCount = c.MaxTokenCount
	}
	return d
}

// StreamWriteConstraints bounds what a Writer will attempt to emit.
type StreamWriteConstraints struct {
	MaxNestingDepth int
}

// DefaultStreamWriteConstraints mirrors DefaultStreamReadConstraints'
// nesting bound.
var DefaultStreamWriteConstraints = StreamWriteConstraints{MaxNestingDepth: 1000}

func (c StreamWriteConstraints) orDefault() StreamWriteConstraints {
	d := DefaultStreamWriteConstraints
	if c.MaxNestingDepth > 0 {
		d.MaxNestingDepth = c.MaxNestingDepth
	}
	return d
}
