// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operators

import "testing"

func TestConversionOpMetrics(t *testing.T) {
	for _, name := range []Opcode{I32WrapI64, I32TruncF32S, F64PromoteF32, I64ReinterpretF64} {
		op, err := New(byte(name))
		if err != nil {
			t.Fatalf("%v: unexpected error from New: %v", name, err)
		}
		if op.Metrics.MinStackInputs != 1 {
			t.Fatalf("%v: unexpected MinStackInputs: got=%d, want=1", name, op.Metrics.MinStackInputs)
		}
		if op.Metrics.StackHeightChange != 0 {
			t.Fatalf("%v: unexpected StackHeightChange: got=%d, want=0", name, op.Metrics.StackHeightChange)
		}
	}
}

func TestMemoryAccessWidths(t *testing.T) {
	cases := []struct {
		op     Opcode
		width  uint8
		signed bool
	}{
		{I32Load8s, 1, true},
		{I32Load8u, 1, false},
		{I64Load32u, 4, false},
		{F64Load, 8, false},
	}
	for _, c := range cases {
		a, ok := MemoryAccess(c.op)
		if !ok {
			t.Fatalf("%v: expected a memory access entry", c.op)
		}
		if a.Width != c.width || a.Signed != c.signed {
			t.Fatalf("%v: got=%+v, want width=%d signed=%v", c.op, a, c.width, c.signed)
		}
	}
	if _, ok := MemoryAccess(I32Add); ok {
		t.Fatalf("i32.add: unexpectedly has a memory access entry")
	}
}
