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

// Package recycler implements the per-Factory buffer recycling pool:
// a small number of byte-slice pools, keyed by logical usage, built on
// sync.Pool.
package recycler

import "sync"

// Kind identifies what a recycled buffer is used for. Different kinds
// are pooled independently so a buffer sized for, say, name-copying
// never ends up serving a much larger read-IO role.
type Kind int

const (
	ReadIOBuffer Kind = iota
	WriteIOBuffer
	ReadConcatBuffer
	TextBuffer
	NameCopyBuffer
	numKinds
)

const defaultCapacity = 4000

var pools [numKinds]sync.Pool

func init() {
	for k := Kind(0); k < numKinds; k++ {
		kind := k
		pools[kind].New = func() any {
			b := make([]byte, 0, defaultCapacity)
			return &b
		}
	}
}

// Recycler hands out and reclaims []byte buffers for one Factory. A
// Recycler is safe for concurrent use: every Kind is backed by its own
// sync.Pool, so concurrent readers/writers sharing a Factory never
// contend on a single pool.
type Recycler struct {
	external bool // true if this Recycler wraps a caller-supplied pool, not the package-level one
	pools    *[numKinds]sync.Pool
}

// Shared returns the Recycler backed by the package-level pools, the
// default used by a Factory unless the caller opts into its own.
func Shared() *Recycler { return &Recycler{pools: &pools} }

// New returns a Recycler with its own independent set of pools, for
// callers that want buffer reuse isolated from every other Factory in
// the process (e.g. to bound peak memory for one tenant).
func New() *Recycler {
	r := &Recycler{external: true, pools: &[numKinds]sync.Pool{}}
	for k := Kind(0); k < numKinds; k++ {
		r.pools[k].New = func() any {
			b := make([]byte, 0, defaultCapacity)
			return &b
		}
	}
	return r
}

// IsExternal reports whether this Recycler was built with New (as
// opposed to the process-wide Shared pools).
func (r *Recycler) IsExternal() bool { return r.external }

// Get returns a zero-length buffer of the requested kind, reusing a
// previously Put-back allocation when one is available.
func (r *Recycler) Get(kind Kind) []byte {
	p := r.pools[kind].Get().(*[]byte)
	return (*p)[:0]
}

// Put returns buf to the pool for kind. Callers must not use buf after
// calling Put.
func (r *Recycler) Put(kind Kind, buf []byte) {
	if buf == nil {
		return
	}
	r.pools[kind].Put(&buf)
}
