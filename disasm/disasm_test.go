// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm_test

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/wasmcore/wasmcore/disasm"
	"github.com/wasmcore/wasmcore/wasm/operators"
)

func parseHex(t *testing.T, s string) *disasm.Code {
	t.Helper()
	body, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	c, err := disasm.Parse(body, nil, 0)
	if err != nil {
		t.Fatalf("Parse(%s): unexpected error: %v", s, err)
	}
	return c
}

func parseHexErr(t *testing.T, s string) error {
	t.Helper()
	body, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	_, err = disasm.Parse(body, nil, 0)
	if err == nil {
		t.Fatalf("Parse(%s): expected error, got none", s)
	}
	return err
}

func reason(t *testing.T, err error) disasm.Reason {
	t.Helper()
	pe, ok := err.(*disasm.ParseError)
	if !ok {
		t.Fatalf("error %v is not a *disasm.ParseError", err)
	}
	return pe.Reason
}

// loop void; end; end
func TestLoopVoid(t *testing.T) {
	c := parseHex(t, "03400b0b")
	want := []byte{byte(operators.Loop), byte(operators.End), byte(operators.End)}
	if string(c.Instructions) != string(want) {
		t.Fatalf("Instructions = %x, want %x", c.Instructions, want)
	}
	if len(c.Immediates) != 0 {
		t.Fatalf("Immediates = %x, want empty", c.Immediates)
	}
	if c.MaxStackHeight != 0 {
		t.Fatalf("MaxStackHeight = %d, want 0", c.MaxStackHeight)
	}
}

// nop; nop; block void; end; end
func TestNopBlockVoid(t *testing.T) {
	c := parseHex(t, "010102400b0b")
	want := []byte{byte(operators.Nop), byte(operators.Nop), byte(operators.Block), byte(operators.End), byte(operators.End)}
	if string(c.Instructions) != string(want) {
		t.Fatalf("Instructions = %x, want %x", c.Instructions, want)
	}
	wantImm := []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00}
	if string(c.Immediates) != string(wantImm) {
		t.Fatalf("Immediates = %x, want %x", c.Immediates, wantImm)
	}
}

// block i64; end; end
func TestBlockI64(t *testing.T) {
	c := parseHex(t, "027e0b0b")
	want := []byte{byte(operators.Block), byte(operators.End), byte(operators.End)}
	if string(c.Instructions) != string(want) {
		t.Fatalf("Instructions = %x, want %x", c.Instructions, want)
	}
	wantImm := []byte{0x01, 0x02, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00}
	if string(c.Immediates) != string(wantImm) {
		t.Fatalf("Immediates = %x, want %x", c.Immediates, wantImm)
	}
}

// block void { i32.const 10; local.set 1; br 0; i32.const 11; local.set 1 }; local.get 1; end
//
// The function itself returns one value (the trailing local.get), so
// it is parsed with arity 1.
func TestBlockWithBranch(t *testing.T) {
	body, err := hex.DecodeString("0240410a21010c00410b21010b20010b")
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	c, err := disasm.Parse(body, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantInstr := []byte{
		byte(operators.Block), byte(operators.I32Const), byte(operators.LocalSet),
		byte(operators.Br), byte(operators.I32Const), byte(operators.LocalSet),
		byte(operators.End), byte(operators.LocalGet), byte(operators.End),
	}
	if string(c.Instructions) != string(wantInstr) {
		t.Fatalf("Instructions = %x, want %x", c.Instructions, wantInstr)
	}
	if c.MaxStackHeight != 1 {
		t.Fatalf("MaxStackHeight = %d, want 1", c.MaxStackHeight)
	}
	// block's own open-immediates: arity=0, end_pc=7 (the instruction
	// right after the block's end, i.e. local.get), else_pc left at
	// its default of 9, one past the 9-byte header, since a block has
	// no else arm.
	if got, want := c.Immediates[0], byte(0); got != want {
		t.Fatalf("block arity = %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[1:5]), uint32(7); got != want {
		t.Fatalf("block end_pc = %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[5:9]), uint32(9); got != want {
		t.Fatalf("block else_pc = %d, want %d", got, want)
	}
	// br 0: arity=0, target_pc=7 (same as the block's end_pc, patched
	// once the block closes), target_stack_height=0 (the block's
	// parent height), at immediates offset 17.
	if got, want := c.Immediates[17], byte(0); got != want {
		t.Fatalf("br arity = %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[18:22]), uint32(7); got != want {
		t.Fatalf("br target_pc = %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[22:26]), uint32(0); got != want {
		t.Fatalf("br target_stack_height = %d, want %d", got, want)
	}
}

// InstrOffsets lets an engine resume reading immediates at any
// instruction index, e.g. after a branch jump.
func TestInstrOffsets(t *testing.T) {
	c := parseHex(t, "010102400b0b")
	if len(c.InstrOffsets) != len(c.Instructions) {
		t.Fatalf("len(InstrOffsets) = %d, want %d", len(c.InstrOffsets), len(c.Instructions))
	}
	want := []uint32{0, 0, 0, 9, 9}
	for i, off := range want {
		if c.InstrOffsets[i] != off {
			t.Fatalf("InstrOffsets[%d] = %d, want %d", i, c.InstrOffsets[i], off)
		}
	}
}

// i32.const 1; if void { i32.const 1; drop } else { i32.const 2; drop }; end; end
//
// else carries its own forward-patched jump immediate (to the if's
// end_pc) so the engine can skip the false arm once the true arm
// falls through to it.
func TestIfElse(t *testing.T) {
	c := parseHex(t, "4101044041011a0541021a0b0b")
	wantInstr := []byte{
		byte(operators.I32Const), byte(operators.If), byte(operators.I32Const),
		byte(operators.Drop), byte(operators.Else), byte(operators.I32Const),
		byte(operators.Drop), byte(operators.End), byte(operators.End),
	}
	if string(c.Instructions) != string(wantInstr) {
		t.Fatalf("Instructions = %x, want %x", c.Instructions, wantInstr)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[5:9]), uint32(8); got != want {
		t.Fatalf("if end_pc = %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[9:13]), uint32(5); got != want {
		t.Fatalf("if else_pc = %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(c.Immediates[17:21]), uint32(8); got != want {
		t.Fatalf("else jump target = %d, want %d", got, want)
	}
	wantOffsets := []uint32{0, 4, 13, 17, 17, 21, 25, 25, 25}
	if len(c.InstrOffsets) != len(wantOffsets) {
		t.Fatalf("len(InstrOffsets) = %d, want %d", len(c.InstrOffsets), len(wantOffsets))
	}
	for i, off := range wantOffsets {
		if c.InstrOffsets[i] != off {
			t.Fatalf("InstrOffsets[%d] = %d, want %d", i, c.InstrOffsets[i], off)
		}
	}
}

// else without a matching if
func TestElseWithoutIf(t *testing.T) {
	err := parseHexErr(t, "050b0b")
	if got, want := reason(t, err), disasm.ReasonUnexpectedElse; got != want {
		t.Fatalf("Reason = %v, want %v", got, want)
	}
}

// loop missing its outer end
func TestTruncatedLoop(t *testing.T) {
	err := parseHexErr(t, "03400b")
	if got, want := reason(t, err), disasm.ReasonUnexpectedEOF; got != want {
		t.Fatalf("Reason = %v, want %v", got, want)
	}
}

// block with an invalid block-type byte
func TestInvalidBlockType(t *testing.T) {
	err := parseHexErr(t, "0200")
	if got, want := reason(t, err), disasm.ReasonInvalidValType; got != want {
		t.Fatalf("Reason = %v, want %v", got, want)
	}
}

// call_indirect with a non-zero reserved table-index byte; i32.const
// first supplies the table-index operand call_indirect expects on
// the stack.
func TestCallIndirectBadTableIdx(t *testing.T) {
	err := parseHexErr(t, "4100110001")
	if got, want := reason(t, err), disasm.ReasonInvalidTableIdx; got != want {
		t.Fatalf("Reason = %v, want %v", got, want)
	}
}
