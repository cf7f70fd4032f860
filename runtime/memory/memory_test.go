// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "testing"

func TestLoadStoreRoundTrip(t *testing.T) {
	m, err := New(1, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.StoreUint32(8, 0xdeadbeef); err != nil {
		t.Fatalf("StoreUint32: %v", err)
	}
	got, err := m.LoadUint32(8)
	if err != nil {
		t.Fatalf("LoadUint32: %v", err)
	}
	if got != 0xdeadbeef {
		t.Fatalf("LoadUint32 = %#x, want %#x", got, 0xdeadbeef)
	}
}

func TestOutOfBounds(t *testing.T) {
	m, err := New(1, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.LoadUint64(PageSize - 4); err != ErrOutOfBounds {
		t.Fatalf("LoadUint64 at page boundary: got %v, want ErrOutOfBounds", err)
	}
}

func TestGrowBeyondMax(t *testing.T) {
	m, err := New(1, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if prev := m.GrowReturningPrevious(1); prev != 1 {
		t.Fatalf("GrowReturningPrevious = %d, want 1", prev)
	}
	if prev := m.GrowReturningPrevious(1); prev != -1 {
		t.Fatalf("GrowReturningPrevious past max = %d, want -1", prev)
	}
}

func TestGrowPastMmapThreshold(t *testing.T) {
	m, err := New(0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pages := uint32(mmapThreshold/PageSize) + 2
	if err := m.Grow(pages); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if err := m.StoreByte(uint64(len(m.Bytes())-1), 0x42); err != nil {
		t.Fatalf("StoreByte: %v", err)
	}
	got, err := m.LoadByte(uint64(len(m.Bytes()) - 1))
	if err != nil {
		t.Fatalf("LoadByte: %v", err)
	}
	if got != 0x42 {
		t.Fatalf("LoadByte = %#x, want 0x42", got)
	}
}
