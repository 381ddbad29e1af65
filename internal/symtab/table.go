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

// Package symtab canonicalizes CirJSON property names so that repeated
// occurrences of the same name across a document (or across documents
// sharing a Factory) are represented by a single interned string
// rather than allocating a fresh string per occurrence. Snapshots are
// aliased copy-on-write, so a shared Factory table is never corrupted
// by one reader's document-local growth.
package symtab

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dchest/siphash"
)

// Table interns property names. A zero Table is ready to use.
type Table struct {
	interned []string
	aliased  int // interned[:aliased] is shared with some other Table via Clone
	toindex  map[string]int

	hashSeed0, hashSeed1 uint64
	hashSeeded           bool
	hashBuckets          map[uint64]string

	overflowed bool // true once two distinct names have collided under the hash check
}

func (t *Table) init() {
	t.toindex = make(map[string]int)
}

// Canonicalize returns the single interned copy of name, adding it to
// the table on first occurrence. The returned string always shares
// storage with the first occurrence seen by this Table, so repeated
// property names across a large document do not multiply retained
// memory.
func (t *Table) Canonicalize(name string) string {
	if t.toindex == nil {
		t.init()
	}
	if id, ok := t.toindex[name]; ok {
		return t.interned[id]
	}
	t.checkHash(name)
	id := len(t.interned)
	t.toindex[name] = id
	t.append(name)
	return t.interned[id]
}

// Lookup reports whether name has already been interned, without
// adding it.
func (t *Table) Lookup(name string) (string, bool) {
	if t.toindex == nil {
		return "", false
	}
	if id, ok := t.toindex[name]; ok {
		return t.interned[id], true
	}
	return "", false
}

// Len is the number of distinct names interned so far.
func (t *Table) Len() int { return len(t.interned) }

// All returns every interned name, in insertion order. Callers must
// not modify the returned slice.
func (t *Table) All() []string { return t.interned }

// Reset clears the table back to empty, reusing its backing storage
// where a later Clone hasn't aliased it away.
func (t *Table) Reset() {
	maps.Clear(t.toindex)
	if t.aliased > 0 {
		t.interned = nil
	} else {
		t.interned = t.interned[:0]
	}
	t.aliased = 0
	t.overflowed = false
	maps.Clear(t.hashBuckets)
}

func (t *Table) append(v string) {
	t.detachIfAliased()
	if i := len(t.interned); i < cap(t.interned) {
		t.interned = t.interned[:i+1]
		t.interned[i] = v
	} else {
		t.interned = append(t.interned, v)
		t.aliased = 0
	}
}

// Clone returns a copy-on-write snapshot of t: the returned Table
// shares the current backing array with t until either is mutated,
// at which point the mutator clones its storage first.
func (t *Table) Clone() *Table {
	c := &Table{
		interned:   t.interned,
		aliased:    len(t.interned),
		toindex:    maps.Clone(t.toindex),
		hashSeed0:  t.hashSeed0,
		hashSeed1:  t.hashSeed1,
		hashSeeded: t.hashSeeded,
	}
	if t.hashBuckets != nil {
		c.hashBuckets = maps.Clone(t.hashBuckets)
	}
	t.aliased = len(t.interned)
	return c
}

func (t *Table) detachIfAliased() {
	if t.aliased > 0 {
		t.interned = slices.Clone(t.interned)
		t.aliased = 0
	}
}

// EnableHashOverflowDetection turns on SipHash-based collision
// tracking: a 64-bit keyed hash of every canonicalized name is
// recorded, and Overflowed reports true once two distinct names are
// observed to share a hash bucket.
func (t *Table) EnableHashOverflowDetection(seed0, seed1 uint64) {
	t.hashSeed0, t.hashSeed1 = seed0, seed1
	t.hashSeeded = true
	t.hashBuckets = make(map[uint64]string)
}

// Overflowed reports whether a hash collision between two distinct
// property names has been observed since the table was last Reset.
func (t *Table) Overflowed() bool { return t.overflowed }

// checkHash records name's hash and flips Overflowed if it collides
// with a different, previously seen name.
func (t *Table) checkHash(name string) {
	if !t.hashSeeded {
		return
	}
	h := siphash.Hash(t.hashSeed0, t.hashSeed1, []byte(name))
	if existing, ok := t.hashBuckets[h]; ok {
		if existing != name {
			t.overflowed = true
		}
		return
	}
	t.hashBuckets[h] = name
}
