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

import "io"

// ObjectReadContext is consulted by a Reader while it is inside an
// object or array, one collaborator per frame, so a data-binding layer
// built atop this core can track per-frame state without the core
// itself knowing anything about that layer. The core never calls these
// except to hand the frame to whoever asked for it; a nil
// ObjectReadContext is always legal.
type ObjectReadContext interface {
	// InObject/InArray report the frame kind this context was created
	// for, mirroring the ContextFrame it shadows.
	InObject() bool
	InArray() bool
}

// ObjectWriteContext mirrors ObjectReadContext for the Writer side,
// and additionally supplies the mandatory identity value for a new
// object or array frame. GetObjectID/GetArrayID are called once per
// StartObject/StartArray call, in that order, before any other content
// is written for the frame.
type ObjectWriteContext interface {
	InObject() bool
	InArray() bool

	// GetObjectID returns the identity string to emit for a newly
	// opened object frame.
	GetObjectID() string
	// GetArrayID returns the identity string to emit for a newly
	// opened array frame.
	GetArrayID() string
}

// IDGenerator produces identity values for callers that don't want to
// track their own; the Writer's default generator mints a random UUID
// per frame.
type IDGenerator interface {
	NextID() string
}

// FormatSchema is an opaque marker interface a Factory-level format
// extension could implement to hand a reader/writer format-specific
// validation hooks. CirJSON itself defines no schema language; this
// exists purely as the seam other formats built on this core (e.g. a
// typed superset) would plug into.
type FormatSchema interface {
	FormatName() string
}

// PrettyPrinter is the collaborator interface a Writer consults at
// every structural and separator boundary so layout policy (newlines,
// indentation) lives entirely outside the core. The core ships no
// concrete implementation of this interface, only the contract and the
// call sites a pretty-printing layer would need.
type PrettyPrinter interface {
	WriteRootValueSeparator(w io.Writer) error
	WriteStartObject(w io.Writer) error
	WriteEndObject(w io.Writer, entryCount int) error
	WriteStartArray(w io.Writer) error
	WriteEndArray(w io.Writer, entryCount int) error
	WriteObjectEntrySeparator(w io.Writer) error
	WriteObjectNameValueSeparator(w io.Writer) error
	WriteArrayValueSeparator(w io.Writer) error
	BeforeArrayValues(w io.Writer) error
	BeforeObjectEntries(w io.Writer) error
}

// Instantiatable is implemented by a PrettyPrinter that carries
// per-document mutable state (e.g. an indentation depth counter) and
// therefore must hand out a fresh instance per Writer rather than be
// shared.
type Instantiatable interface {
	// Fresh returns a new, independent instance in the same initial
	// state as the receiver.
	Fresh() PrettyPrinter
}

// defaultObjectWriteContext is the ObjectWriteContext a Writer uses
// when the caller supplies none: it generates a fresh UUID per frame.
type defaultObjectWriteContext struct {
	kind FrameType
	gen  IDGenerator
}

func (c *defaultObjectWriteContext) InObject() bool { return c.kind == ObjectContext }
func (c *defaultObjectWriteContext) InArray() bool  { return c.kind == ArrayContext }

func (c *defaultObjectWriteContext) GetObjectID() string { return c.gen.NextID() }
func (c *defaultObjectWriteContext) GetArrayID() string  { return c.gen.NextID() }
