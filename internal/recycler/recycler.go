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

package recycler

// Gettable is implemented by a buffer handle that knows which Kind and
// Recycler it came from, so it can release itself without the caller
// threading that bookkeeping through every call site.
type Gettable interface {
	// Release returns the underlying buffer to its owning Recycler.
	// Release is a no-op if called more than once.
	Release()
}

// Handle pairs a live buffer with the Kind/Recycler it was checked out
// from. A Reader or Writer keeps a Handle per logical buffer role
// instead of raw []byte fields, so closing the stream can release
// every buffer uniformly.
type Handle struct {
	r        *Recycler
	kind     Kind
	buf      []byte
	released bool
}

// Checkout gets a buffer of kind from r and wraps it in a Handle.
func Checkout(r *Recycler, kind Kind) *Handle {
	return &Handle{r: r, kind: kind, buf: r.Get(kind)}
}

// Bytes returns the buffer currently held by h.
func (h *Handle) Bytes() []byte { return h.buf }

// SetBytes replaces the buffer held by h, e.g. after a grow via
// append; the caller is responsible for ensuring the replaced slice
// and buf share the same underlying Kind's sizing expectations.
func (h *Handle) SetBytes(buf []byte) { h.buf = buf }

// Release returns the buffer to its Recycler. Safe to call multiple
// times.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.r.Put(h.kind, h.buf)
	h.buf = nil
	h.released = true
}

var _ Gettable = (*Handle)(nil)
