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

// FrameType tags a ContextFrame: root, array, or object.
type FrameType byte

const (
	RootContext FrameType = iota
	ArrayContext
	ObjectContext
)

func (t FrameType) String() string {
	switch t {
	case RootContext:
		return "ROOT"
	case ArrayContext:
		return "ARRAY"
	case ObjectContext:
		return "OBJECT"
	default:
		return "UNKNOWN"
	}
}

// ContextFrame is one level of the nesting stack: a plain value held
// inside a flat []ContextFrame slice. "parent" is an index into that
// same slice rather than a pointer, so the whole stack is one
// contiguous allocation that grows by append.
type ContextFrame struct {
	Type       FrameType
	parent     int // index into the owning stack, -1 for the root
	EntryIndex int // -1 until the first complete entry
	CurrentName string
	// CurrentValue is an opaque slot for a data-binding layer built on
	// top of this core. The streaming reader/writer never read or
	// write it themselves.
	CurrentValue any
	StartLoc     Location
}

// ContextStack is the nesting stack owned by exactly one Reader or
// Writer; reader and writer instances never share frames.
type ContextStack struct {
	frames []ContextFrame
}

// NewContextStack returns a stack seeded with just the root frame.
func NewContextStack() *ContextStack {
	return &ContextStack{frames: []ContextFrame{{Type: RootContext, parent: -1, EntryIndex: -1}}}
}

// Depth is the nesting depth: the number of open (non-root) frames,
// which equals the number of start-* tokens emitted so far minus the
// number of end-* tokens.
func (s *ContextStack) Depth() int { return len(s.frames) - 1 }

// Top returns the innermost frame.
func (s *ContextStack) Top() *ContextFrame { return &s.frames[len(s.frames)-1] }

// AtRoot reports whether the stack is currently at the root (no open
// array/object).
func (s *ContextStack) AtRoot() bool { return len(s.frames) == 1 }

func (s *ContextStack) push(t FrameType, loc Location) {
	s.frames = append(s.frames, ContextFrame{
		Type:     t,
		parent:   len(s.frames) - 1,
		EntryIndex: -1,
		StartLoc: loc,
	})
}

// PushArray opens a new ARRAY frame.
func (s *ContextStack) PushArray(loc Location) { s.push(ArrayContext, loc) }

// PushObject opens a new OBJECT frame.
func (s *ContextStack) PushObject(loc Location) { s.push(ObjectContext, loc) }

// Pop closes the innermost frame and returns to its parent. Pop
// panics if called at the root, mirroring the "misuse" class of error
// (callers are expected to validate via Top().Type before popping).
func (s *ContextStack) Pop() {
	if len(s.frames) == 1 {
		panic("cirjson: Pop called on root context")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// SetCurrentName records the property name of the current OBJECT
// frame, between a property-name token and its value.
func (s *ContextStack) SetCurrentName(name string) {
	s.Top().CurrentName = name
}

// AdvanceEntry is called, on the innermost (enclosing) frame, once for
// every value token and once for every property-name token (after its
// separator has been consumed). For a value that is itself a nested
// array/object, the caller advances the *enclosing* frame before
// pushing the new child frame, since opening the child is itself one
// entry of the parent. EntryIndex is monotonically non-decreasing
// within a frame.
func (s *ContextStack) AdvanceEntry() {
	s.Top().EntryIndex++
}

// pathIndex is the pointer-visible array index. Slot 0 of every ARRAY
// frame is consumed by the mandatory identity string and is not itself
// addressable, so the visible index trails EntryIndex by one: the
// identity string occupies EntryIndex==0, and the first ordinary
// element is EntryIndex==1 / pathIndex==0.
func (f *ContextFrame) pathIndex() int { return f.EntryIndex - 1 }

// HasPathSegment reports whether the current frame contributes a
// pointer segment: an ARRAY positioned past its identity slot, or an
// OBJECT with a current name.
func (f *ContextFrame) HasPathSegment() bool {
	switch f.Type {
	case ArrayContext:
		return f.EntryIndex >= 1
	case ObjectContext:
		return f.CurrentName != ""
	default:
		return false
	}
}

// PathAsPointer builds the CirJSON-Pointer path to the current
// position, delegating segment construction to Pointer (component C).
func (s *ContextStack) PathAsPointer(includeRoot bool) Pointer {
	segs := make([]pointerSegment, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := &s.frames[i]
		if f.Type == RootContext {
			continue
		}
		if !f.HasPathSegment() {
			continue
		}
		if f.Type == ArrayContext {
			segs = append(segs, pointerSegment{isIndex: true, index: f.pathIndex()})
		} else {
			segs = append(segs, pointerSegment{name: f.CurrentName})
		}
	}
	// segs was built innermost-first; reverse it to outermost-first.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	_ = includeRoot // root contributes no segment of its own in CirJSON pointers
	return newPointer(segs)
}
