// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import "io"

// WriteVarUint32 writes v to w in unsigned LEB128 form.
func WriteVarUint32(w io.Writer, v uint32) (int, error) {
	return writeVarUint(w, uint64(v))
}

// WriteVarUint64 writes v to w in unsigned LEB128 form.
func WriteVarUint64(w io.Writer, v uint64) (int, error) {
	return writeVarUint(w, v)
}

// WriteVarint32 writes v to w in signed LEB128 form.
func WriteVarint32(w io.Writer, v int32) (int, error) {
	return WriteVarint64(w, int64(v))
}

// WriteVarint64 writes v to w in signed LEB128 form.
func WriteVarint64(w io.Writer, v int64) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if !done {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return n, err
		}
		n++
		if done {
			return n, nil
		}
	}
}

func writeVarUint(w io.Writer, v uint64) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return n, err
		}
		n++
		if v == 0 {
			return n, nil
		}
	}
}
