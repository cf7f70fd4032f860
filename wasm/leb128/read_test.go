// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import (
	"bytes"
	"fmt"
	"math"
	"testing"
)

var casesUint = []struct {
	v uint32
	b []byte
}{
	{b: []byte{0x08}, v: 8},
	{b: []byte{0x80, 0x7f}, v: 16256},
	{b: []byte{0x80, 0x80, 0x80, 0xfd, 0x07}, v: 2141192192},
}

func TestReadVarUint32(t *testing.T) {
	for _, c := range casesUint {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			n, err := ReadVarUint32(bytes.NewReader(c.b))
			if err != nil {
				t.Fatal(err)
			}
			if n != c.v {
				t.Fatalf("got = %d; want = %d", n, c.v)
			}
		})
	}
}

func TestReadVarUint32Err(t *testing.T) {
	_, err := ReadVarUint32(bytes.NewReader(nil))
	if got, want := err, ErrUnexpectedEOF; got != want {
		t.Fatalf("got err=%v, want=%v", got, want)
	}
}

var casesInt = []struct {
	v int64
	b []byte
}{
	{b: []byte{0xff, 0x7e}, v: -129},
	{b: []byte{0xe4, 0x00}, v: 100},
}

var varint32Cases = []struct {
	b []byte
	v int32
}{
	{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, -2147483648}, // int32 min
	{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 2147483647},  // int32 max
	{[]byte{0x80, 0x40}, -8192},
	{[]byte{0x80, 0xc0, 0x00}, 8192},
	{[]byte{135, 0x01}, 135},
}

func TestReadVarint32(t *testing.T) {
	for _, c := range varint32Cases {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			n, err := ReadVarint32(bytes.NewReader(c.b))
			if err != nil {
				t.Fatal(err)
			}
			if n != c.v {
				t.Fatalf("got = %d; want = %d", n, c.v)
			}
		})
	}
}

func TestReadVarint32Err(t *testing.T) {
	_, err := ReadVarint32(bytes.NewReader(nil))
	if got, want := err, ErrUnexpectedEOF; got != want {
		t.Fatalf("got err=%v, want=%v", got, want)
	}
}

// TestOverlongUint covers the case where the final group of an
// unsigned LEB128 value carries bits beyond the declared width.
func TestOverlongUint(t *testing.T) {
	// 5-byte encoding of a 32-bit value whose last group sets bit 4
	// (value would need 33 bits to represent faithfully).
	_, err := ReadVarUint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x10}))
	if err != ErrIntegerRepresentationTooLong {
		t.Fatalf("got err=%v, want=%v", err, ErrIntegerRepresentationTooLong)
	}
}

// TestOverlongContinuation covers a continuation bit set on the
// maximum-length group, which can never be followed by a legal group.
func TestOverlongContinuation(t *testing.T) {
	_, err := ReadVarUint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
	if err != ErrIntegerRepresentationTooLong {
		t.Fatalf("got err=%v, want=%v", err, ErrIntegerRepresentationTooLong)
	}
}

// TestInconsistentSignExtension covers a signed value whose final
// group's unused high bits don't repeat the sign bit.
func TestInconsistentSignExtension(t *testing.T) {
	// 5-byte encoding of an int32: last group should sign-extend with
	// all 1s (value is negative, bit 31 set) but instead sets a 0 bit
	// amongst the padding.
	_, err := ReadVarint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}))
	if err != ErrIntegerRepresentationTooLong {
		t.Fatalf("got err=%v, want=%v", err, ErrIntegerRepresentationTooLong)
	}
}

func TestReadFloat32(t *testing.T) {
	bits, err := ReadFloat32(bytes.NewReader([]byte{0x00, 0x00, 0x80, 0x3f})) // 1.0f
	if err != nil {
		t.Fatal(err)
	}
	if math.Float32frombits(bits) != 1.0 {
		t.Fatalf("got = %v; want = 1.0", math.Float32frombits(bits))
	}
}

func TestReadFloat64(t *testing.T) {
	bits, err := ReadFloat64(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f})) // 1.0
	if err != nil {
		t.Fatal(err)
	}
	if math.Float64frombits(bits) != 1.0 {
		t.Fatalf("got = %v; want = 1.0", math.Float64frombits(bits))
	}
}

func TestReadFloatEOF(t *testing.T) {
	if _, err := ReadFloat32(bytes.NewReader([]byte{0, 0})); err != ErrUnexpectedEOF {
		t.Fatalf("got err=%v, want=%v", err, ErrUnexpectedEOF)
	}
}

// TestRoundTripUint32 and TestRoundTripVarint64 verify
// decode(encode(x)) == x for unsigned 32-bit and signed 64-bit values,
// the round-trip property of spec §8.
func TestRoundTripUint32(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16384, 1<<31 - 1, math.MaxUint32} {
		buf := new(bytes.Buffer)
		if _, err := WriteVarUint32(buf, v); err != nil {
			t.Fatal(err)
		}
		got, err := ReadVarUint32(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Fatalf("got = %d; want = %d", got, v)
		}
	}
}

func TestRoundTripVarint64(t *testing.T) {
	for _, v := range []int64{0, -1, 1, 127, -127, 128, -128, math.MaxInt64, math.MinInt64} {
		buf := new(bytes.Buffer)
		if _, err := WriteVarint64(buf, v); err != nil {
			t.Fatal(err)
		}
		got, err := ReadVarint64(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Fatalf("got = %d; want = %d", got, v)
		}
	}
}
