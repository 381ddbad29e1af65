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

import (
	"sync"
	"testing"
)

func TestGetPutBasics(t *testing.T) {
	r := New()
	buf := r.Get(TextBuffer)
	if len(buf) != 0 {
		t.Fatalf("Get returned %d-length buffer, want 0", len(buf))
	}
	if cap(buf) == 0 {
		t.Fatal("Get returned zero-capacity buffer")
	}
	buf = append(buf, "hello"...)
	r.Put(TextBuffer, buf)

	again := r.Get(TextBuffer)
	if len(again) != 0 {
		t.Fatal("reused buffer not truncated")
	}
}

func TestPutNil(t *testing.T) {
	r := New()
	r.Put(ReadIOBuffer, nil) // must not panic or poison the pool
	if buf := r.Get(ReadIOBuffer); buf == nil {
		t.Fatal("pool handed back nil")
	}
}

func TestHandleRelease(t *testing.T) {
	r := New()
	h := Checkout(r, NameCopyBuffer)
	h.SetBytes(append(h.Bytes(), "name"...))
	if string(h.Bytes()) != "name" {
		t.Fatalf("Bytes = %q", h.Bytes())
	}
	h.Release()
	if h.Bytes() != nil {
		t.Fatal("buffer retained after Release")
	}
	h.Release() // double release is a no-op
}

func TestSharedVsExternal(t *testing.T) {
	if Shared().IsExternal() {
		t.Error("Shared recycler reported external")
	}
	if !New().IsExternal() {
		t.Error("New recycler reported shared")
	}
}

func TestKeepsLargestSeen(t *testing.T) {
	r := New()
	big := make([]byte, 0, 1<<20)
	r.Put(WriteIOBuffer, big)
	got := r.Get(WriteIOBuffer)
	if cap(got) != 1<<20 {
		t.Fatalf("cap = %d, want the grown buffer back", cap(got))
	}
}

func TestConcurrentUse(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				h := Checkout(r, ReadIOBuffer)
				h.SetBytes(append(h.Bytes(), byte(j)))
				h.Release()
			}
		}()
	}
	wg.Wait()
}
