// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory implements the single linear memory a running
// function body reads and writes through load/store instructions.
package memory

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/edsrzf/mmap-go"
)

// PageSize is the Wasm linear memory page size: 64 KiB.
const PageSize = 65536

// maxPages bounds growth when a module declares no maximum.
const maxPages = 1 << 16

// mmapThreshold is the size above which Memory backs its buffer with
// an anonymous mmap region rather than a plain Go slice, keeping a
// large linear memory off the GC's scan list.
const mmapThreshold = 16 * PageSize

// ErrOutOfBounds is returned by any accessor whose address range
// falls outside the current memory size.
var ErrOutOfBounds = errors.New("memory: out of bounds access")

var endian = binary.LittleEndian

// Memory is a growable byte buffer addressed in page-sized units.
type Memory struct {
	buf    []byte
	region mmap.MMap // non-nil once buf has grown past mmapThreshold
	max    uint32    // declared maximum, in pages; 0 means unbounded
}

// New returns a Memory with the given initial size, in pages, and
// declared maximum (0 for unbounded).
func New(initialPages, max uint32) (*Memory, error) {
	m := &Memory{max: max}
	if initialPages > 0 {
		if _, err := m.grow(int(initialPages)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Pages returns the current size in pages.
func (m *Memory) Pages() uint32 {
	return uint32(len(m.buf) / PageSize)
}

// Bytes returns the memory's current backing slice. The slice is
// invalidated by any subsequent Grow.
func (m *Memory) Bytes() []byte {
	return m.buf
}

// Grow appends delta pages. It returns ErrOutOfBounds if growth would
// exceed the declared maximum or the hard 4 GiB address space limit,
// or the error from mapping the larger buffer; GrowReturningPrevious
// gives the previous-size/-1 form.
func (m *Memory) Grow(delta uint32) error {
	_, err := m.grow(int(delta))
	return err
}

// GrowReturningPrevious matches the Wasm memory.grow instruction's
// result convention: previous size on success, -1 on failure.
func (m *Memory) GrowReturningPrevious(delta uint32) int32 {
	prev, err := m.grow(int(delta))
	if err != nil {
		return -1
	}
	return int32(prev)
}

func (m *Memory) grow(deltaPages int) (prevPages int, err error) {
	prevPages = len(m.buf) / PageSize
	newPages := prevPages + deltaPages
	if uint64(newPages) > maxPages || (m.max != 0 && uint32(newPages) > m.max) {
		return prevPages, ErrOutOfBounds
	}
	newSize := newPages * PageSize
	if newSize <= mmapThreshold {
		grown := make([]byte, newSize)
		copy(grown, m.buf)
		m.buf = grown
		return prevPages, nil
	}
	region, err := mmap.MapRegion(nil, newSize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return prevPages, err
	}
	copy(region, m.buf)
	if m.region != nil {
		m.region.Unmap()
	}
	m.region = region
	m.buf = region
	return prevPages, nil
}

func (m *Memory) bounds(addr uint64, width int) ([]byte, error) {
	if addr+uint64(width) > uint64(len(m.buf)) {
		return nil, ErrOutOfBounds
	}
	return m.buf[addr : addr+uint64(width)], nil
}

// LoadUint32 reads a little-endian u32 at addr.
func (m *Memory) LoadUint32(addr uint64) (uint32, error) {
	b, err := m.bounds(addr, 4)
	if err != nil {
		return 0, err
	}
	return endian.Uint32(b), nil
}

// LoadUint64 reads a little-endian u64 at addr.
func (m *Memory) LoadUint64(addr uint64) (uint64, error) {
	b, err := m.bounds(addr, 8)
	if err != nil {
		return 0, err
	}
	return endian.Uint64(b), nil
}

// LoadByte reads a single byte at addr.
func (m *Memory) LoadByte(addr uint64) (byte, error) {
	b, err := m.bounds(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// LoadUint16 reads a little-endian u16 at addr.
func (m *Memory) LoadUint16(addr uint64) (uint16, error) {
	b, err := m.bounds(addr, 2)
	if err != nil {
		return 0, err
	}
	return endian.Uint16(b), nil
}

// StoreUint32 writes a little-endian u32 at addr.
func (m *Memory) StoreUint32(addr uint64, v uint32) error {
	b, err := m.bounds(addr, 4)
	if err != nil {
		return err
	}
	endian.PutUint32(b, v)
	return nil
}

// StoreUint64 writes a little-endian u64 at addr.
func (m *Memory) StoreUint64(addr uint64, v uint64) error {
	b, err := m.bounds(addr, 8)
	if err != nil {
		return err
	}
	endian.PutUint64(b, v)
	return nil
}

// StoreByte writes a single byte at addr.
func (m *Memory) StoreByte(addr uint64, v byte) error {
	b, err := m.bounds(addr, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// StoreUint16 writes a little-endian u16 at addr.
func (m *Memory) StoreUint16(addr uint64, v uint16) error {
	b, err := m.bounds(addr, 2)
	if err != nil {
		return err
	}
	endian.PutUint16(b, v)
	return nil
}

// Float32bits and Float64bits round-trip through math.Float*bits so
// callers working in IEEE-754 values don't need to import math too.
func Float32bits(f float32) uint32     { return math.Float32bits(f) }
func Float64bits(f float64) uint64     { return math.Float64bits(f) }
func Float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func Float64frombits(b uint64) float64 { return math.Float64frombits(b) }
