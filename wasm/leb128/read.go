// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leb128 provides functions for reading and writing integer
// values encoded in the Little Endian Base 128 (LEB128) format:
// https://en.wikipedia.org/wiki/LEB128
//
// Unlike a tolerant decoder, these readers enforce the two failure
// modes a validating Wasm parser must catch: truncated input, and an
// "overlong" final group whose unused high bits are inconsistent with
// the value being encoded (zero for unsigned, the sign bit repeated
// for signed).
package leb128

import (
	"encoding/binary"
	"io"
)

// ReadVarUint32 reads a LEB128 encoded unsigned 32-bit integer from r.
func ReadVarUint32(r io.Reader) (uint32, error) {
	v, err := readVarUint(r, 32)
	return uint32(v), err
}

// ReadVarUint64 reads a LEB128 encoded unsigned 64-bit integer from r.
func ReadVarUint64(r io.Reader) (uint64, error) {
	return readVarUint(r, 64)
}

// ReadVarint32 reads a LEB128 encoded signed 32-bit integer from r.
func ReadVarint32(r io.Reader) (int32, error) {
	v, err := readVarint(r, 32)
	return int32(v), err
}

// ReadVarint64 reads a LEB128 encoded signed 64-bit integer from r.
func ReadVarint64(r io.Reader) (int64, error) {
	return readVarint(r, 64)
}

// ReadFloat32 reads 4 raw little-endian bytes and reinterprets them as
// an IEEE-754 bit pattern. No LEB128 decoding is involved.
func ReadFloat32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadFloat64 reads 8 raw little-endian bytes and reinterprets them as
// an IEEE-754 bit pattern. No LEB128 decoding is involved.
func ReadFloat64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, ErrUnexpectedEOF
	}
	return buf[0], nil
}

// readVarUint decodes an unsigned LEB128 value bounded to the given
// bit width. At most ceil(width/7) groups are consumed.
func readVarUint(r io.Reader, width uint) (uint64, error) {
	maxGroups := (width + 6) / 7

	var result uint64
	var shift uint
	for count := uint(0); ; count++ {
		if count >= maxGroups {
			return 0, ErrIntegerRepresentationTooLong
		}

		b, err := readByte(r)
		if err != nil {
			return 0, err
		}

		payload := uint64(b & 0x7f)
		if validBits := width - shift; validBits < 7 {
			if payload>>validBits != 0 {
				return 0, ErrIntegerRepresentationTooLong
			}
		}

		result |= payload << shift
		shift += 7

		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// readVarint decodes a signed LEB128 value bounded to the given bit
// width, sign-extending the result to a full int64.
func readVarint(r io.Reader, width uint) (int64, error) {
	maxGroups := (width + 6) / 7

	var result int64
	var shift uint
	for count := uint(0); ; count++ {
		if count >= maxGroups {
			return 0, ErrIntegerRepresentationTooLong
		}

		b, err := readByte(r)
		if err != nil {
			return 0, err
		}

		payload := int64(b & 0x7f)
		validBits := width - shift
		if validBits > 7 {
			validBits = 7
		}

		signBit := (payload >> (validBits - 1)) & 1
		if validBits < 7 {
			extra := payload >> validBits
			want := int64(0)
			if signBit == 1 {
				want = (int64(1) << (7 - validBits)) - 1
			}
			if extra != want {
				return 0, ErrIntegerRepresentationTooLong
			}
		}

		result |= payload << shift
		shift += 7

		if b&0x80 == 0 {
			if signBit == 1 {
				result |= int64(-1) << shift
			}
			return result, nil
		}
	}
}
