// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm parses a function body's raw bytecode into a linear
// Code artifact: a flat instruction stream, a side buffer of
// fixed-width immediates, and the peak operand-stack height observed
// while parsing. Structured control flow (block/loop/if/else/end) is
// linearized into absolute instruction indices in the same pass, so
// an execution engine never needs to re-scan the body to find a
// branch target.
package disasm

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/wasmcore/wasmcore/wasm"
	"github.com/wasmcore/wasmcore/wasm/leb128"
	"github.com/wasmcore/wasmcore/wasm/operators"
)

// Code is the output of parsing one function body.
type Code struct {
	// Instructions holds one byte per instruction, in the opcode's
	// own numeric encoding. end opcodes are preserved.
	Instructions []byte

	// Immediates is a contiguous little-endian buffer holding every
	// instruction's decoded operands, in instruction order. The
	// per-family layout is written by step and its helpers (openBlock,
	// doElse, emitTarget).
	Immediates []byte

	// MaxStackHeight is the peak operand-stack depth, above locals,
	// observed while parsing.
	MaxStackHeight uint32

	// InstrOffsets holds, for each entry in Instructions, the byte
	// offset in Immediates at which that instruction's own operands
	// begin. A branch target is an instruction index; this lets an
	// execution engine resume reading immediates at the jump target
	// without replaying the widths of every instruction in between
	// (br_table's width isn't derivable from its opcode alone).
	InstrOffsets []uint32
}

// frameKind distinguishes the four shapes of control frame a parse
// can be inside.
type frameKind uint8

const (
	frameFunction frameKind = iota
	frameBlock
	frameLoop
	frameIf
)

// controlFrame is a currently-open structured construct. block/if
// reserve placeholder bytes in the immediates buffer for their own
// end_pc/else_pc when opened (selfImmOffset); loop reserves nothing,
// since a branch to it targets its own instruction (loopStartIdx).
// Any frame (including the implicit function frame) may additionally
// accumulate forward branches referencing it in pendingTargets,
// patched once the frame's end is reached.
type controlFrame struct {
	kind              frameKind
	arity             uint8 // 0 or 1; the frame's declared result arity
	parentStackHeight int
	unreachable       bool
	hasElse           bool

	selfImmOffset int // valid for block/if only
	loopStartIdx  int // valid for loop only: instruction index of the loop opcode

	pendingTargets []int // offsets of target_pc:u32 fields awaiting this frame's end index
}

// Reason enumerates why parsing a function body failed.
type Reason string

const (
	ReasonUnexpectedEOF      Reason = "unexpected_eof"
	ReasonInvalidInstruction Reason = "invalid_instruction"
	ReasonInvalidValType     Reason = "invalid_valtype"
	ReasonInvalidTableIdx    Reason = "invalid_tableidx"
	ReasonInvalidMemIdx      Reason = "invalid_memidx"
	ReasonStackUnderflow     Reason = "stack_underflow"
	ReasonTypeMismatch       Reason = "type_mismatch"
	ReasonUnexpectedElse     Reason = "unexpected_else_instruction"
	ReasonGlobalIsImmutable  Reason = "global_is_immutable"
	ReasonIntegerTooLong     Reason = "integer_representation_too_long"
	ReasonUnknownLabel       Reason = "unknown_label"
)

// ParseError reports why parsing a function body was aborted. Parsing
// is single-shot: on any ParseError the partial Code is discarded.
type ParseError struct {
	Reason Reason
}

func (e *ParseError) Error() string {
	return "disasm: " + string(e.Reason)
}

func fail(r Reason) error {
	return &ParseError{Reason: r}
}

// globalModule is the slice of *wasm.Module behavior the parser
// needs: resolving a global index's declared mutability.
type globalModule interface {
	GetGlobal(index int) *wasm.GlobalEntry
}

// Parse linearizes the bytecode of a single function body. arity is
// 0 or 1, the declared result arity of the function itself (the
// implicit outermost control frame).
func Parse(body []byte, module globalModule, arity uint8) (*Code, error) {
	p := &parser{
		r:      bytes.NewReader(body),
		module: module,
	}
	fn := &controlFrame{kind: frameFunction, arity: arity}
	p.stack = []*controlFrame{fn}

	for {
		done, err := p.step()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	return &Code{
		Instructions:   p.instructions,
		Immediates:     p.immediates,
		MaxStackHeight: uint32(p.maxHeight),
		InstrOffsets:   p.instrOffsets,
	}, nil
}

type parser struct {
	r      *bytes.Reader
	module globalModule

	instructions []byte
	immediates   []byte
	instrOffsets []uint32

	stack     []*controlFrame
	curHeight int
	maxHeight int
}

func (p *parser) top() *controlFrame {
	return p.stack[len(p.stack)-1]
}

// step consumes one instruction. done reports whether the function
// frame's closing end was just processed.
func (p *parser) step() (done bool, err error) {
	opByte, err := p.readByte()
	if err != nil {
		return false, err
	}
	op := operators.Opcode(opByte)

	metrics, ok := operators.Lookup(op)
	if !ok {
		return false, fail(ReasonInvalidInstruction)
	}

	top := p.top()
	if !top.unreachable {
		if p.curHeight < int(metrics.MinStackInputs) {
			return false, fail(ReasonStackUnderflow)
		}
		p.curHeight += int(metrics.StackHeightChange)
		if p.curHeight > p.maxHeight {
			p.maxHeight = p.curHeight
		}
	}

	p.instrOffsets = append(p.instrOffsets, uint32(len(p.immediates)))
	p.instructions = append(p.instructions, opByte)

	switch op {
	case operators.Block, operators.Loop, operators.If:
		return false, p.openBlock(op, top)
	case operators.Else:
		return false, p.doElse(top)
	case operators.End:
		return p.doEnd(top)
	case operators.Br:
		return false, p.branch(top, false)
	case operators.BrIf:
		return false, p.branch(top, true)
	case operators.BrTable:
		return false, p.branchTable(top)
	case operators.Return, operators.Unreachable:
		top.unreachable = true
		return false, nil
	case operators.LocalGet, operators.LocalSet, operators.LocalTee, operators.GlobalGet, operators.Call:
		idx, err := leb128.ReadVarUint32(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		p.appendUint32(idx)
		return false, nil
	case operators.GlobalSet:
		idx, err := leb128.ReadVarUint32(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		if p.module != nil {
			if g := p.module.GetGlobal(int(idx)); g != nil && g.Type != nil && !g.Type.Mutable {
				return false, fail(ReasonGlobalIsImmutable)
			}
		}
		p.appendUint32(idx)
		return false, nil
	case operators.CallIndirect:
		typeIdx, err := leb128.ReadVarUint32(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		reserved, err := p.readByte()
		if err != nil {
			return false, err
		}
		if reserved != 0x00 {
			return false, fail(ReasonInvalidTableIdx)
		}
		p.appendUint32(typeIdx)
		return false, nil
	case operators.MemorySize, operators.MemoryGrow:
		reserved, err := p.readByte()
		if err != nil {
			return false, err
		}
		if reserved != 0x00 {
			return false, fail(ReasonInvalidMemIdx)
		}
		return false, nil
	case operators.I32Const:
		v, err := leb128.ReadVarint32(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		p.appendUint32(uint32(v))
		return false, nil
	case operators.I64Const:
		v, err := leb128.ReadVarint64(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		p.appendUint64(uint64(v))
		return false, nil
	case operators.F32Const:
		bits, err := leb128.ReadFloat32(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		p.appendUint32(bits)
		return false, nil
	case operators.F64Const:
		bits, err := leb128.ReadFloat64(p.r)
		if err != nil {
			return false, wrapLEB(err)
		}
		p.appendUint64(bits)
		return false, nil
	default:
		if operators.HasMemArg(op) {
			align, err := leb128.ReadVarUint32(p.r)
			if err != nil {
				return false, wrapLEB(err)
			}
			offset, err := leb128.ReadVarUint32(p.r)
			if err != nil {
				return false, wrapLEB(err)
			}
			p.appendUint32(align)
			p.appendUint32(offset)
		}
		return false, nil
	}
}

func wrapLEB(err error) error {
	if err == leb128.ErrIntegerRepresentationTooLong {
		return fail(ReasonIntegerTooLong)
	}
	return fail(ReasonUnexpectedEOF)
}

func (p *parser) readByte() (byte, error) {
	b, err := p.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, fail(ReasonUnexpectedEOF)
		}
		return 0, err
	}
	return b, nil
}

func (p *parser) appendUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	p.immediates = append(p.immediates, b[:]...)
}

func (p *parser) appendUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	p.immediates = append(p.immediates, b[:]...)
}

func (p *parser) patchUint32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(p.immediates[offset:offset+4], v)
}

func resultArity(blockType wasm.BlockType) (uint8, bool) {
	if blockType == wasm.BlockTypeEmpty {
		return 0, true
	}
	switch wasm.ValueType(blockType) {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64:
		return 1, true
	default:
		return 0, false
	}
}

func (p *parser) openBlock(op operators.Opcode, parent *controlFrame) error {
	sig, err := leb128.ReadVarint32(p.r)
	if err != nil {
		return wrapLEB(err)
	}
	arity, ok := resultArity(wasm.BlockType(sig))
	if !ok {
		return fail(ReasonInvalidValType)
	}

	nf := &controlFrame{
		arity:             arity,
		parentStackHeight: p.curHeight,
		unreachable:       parent.unreachable,
	}

	switch op {
	case operators.Block, operators.If:
		if op == operators.Block {
			nf.kind = frameBlock
		} else {
			nf.kind = frameIf
		}
		nf.selfImmOffset = len(p.immediates)
		// Reserve the 9-byte header: arity, end_pc (patched at the
		// matching end), else_pc. else_pc's placeholder points one
		// past this header; doElse overwrites it with the false arm's
		// index, and doEnd sets it to end_pc for an if with no else.
		// A block keeps the placeholder, which nothing reads.
		elseDefault := uint32(nf.selfImmOffset + 9)
		p.immediates = append(p.immediates, arity, 0, 0, 0, 0)
		p.appendUint32(elseDefault)
	case operators.Loop:
		// A loop's own entry point is its own instruction index, and
		// a branch to a loop always carries arity 0: both are known
		// to whoever resolves the branch without consulting a stored
		// immediate, so opening a loop reserves nothing here.
		nf.kind = frameLoop
		nf.loopStartIdx = len(p.instructions) - 1
	}

	p.stack = append(p.stack, nf)
	return nil
}

func (p *parser) doElse(top *controlFrame) error {
	if top.kind != frameIf {
		return fail(ReasonUnexpectedElse)
	}
	if !top.unreachable {
		if p.curHeight-top.parentStackHeight != int(top.arity) {
			return fail(ReasonTypeMismatch)
		}
	}
	elsePC := len(p.instructions) // first instruction of the false arm
	p.patchUint32(top.selfImmOffset+5, uint32(elsePC))
	top.hasElse = true

	// else's own immediate: the instruction index to resume at once
	// the true arm falls through to here, i.e. this frame's end_pc.
	// Unknown until doEnd; reuse the same pendingTargets patch the
	// frame's other forward branches wait on.
	top.pendingTargets = append(top.pendingTargets, len(p.immediates))
	p.appendUint32(0)

	p.curHeight = top.parentStackHeight
	top.unreachable = false
	return nil
}

func (p *parser) doEnd(top *controlFrame) (done bool, err error) {
	if !top.unreachable {
		if p.curHeight-top.parentStackHeight != int(top.arity) {
			return false, fail(ReasonTypeMismatch)
		}
	}
	// The index of the instruction following this end: a branch that
	// targets this frame resumes here, past the now-closed block.
	endPC := len(p.instructions)

	switch top.kind {
	case frameBlock, frameIf:
		p.patchUint32(top.selfImmOffset+1, uint32(endPC))
	}
	if top.kind == frameIf && !top.hasElse {
		p.patchUint32(top.selfImmOffset+5, uint32(endPC))
	}
	for _, off := range top.pendingTargets {
		p.patchUint32(off, uint32(endPC))
	}

	p.curHeight = top.parentStackHeight + int(top.arity)
	p.stack = p.stack[:len(p.stack)-1]

	return top.kind == frameFunction, nil
}

// frameAt resolves a label index (0 = innermost) to its control
// frame, counted from the top of the control stack.
func (p *parser) frameAt(label uint32) (*controlFrame, error) {
	idx := len(p.stack) - 1 - int(label)
	if idx < 0 {
		return nil, fail(ReasonUnknownLabel)
	}
	return p.stack[idx], nil
}

// branchArity is the arity this frame contributes when targeted by a
// br/br_if/br_table: its own declared arity, except a loop always
// contributes 0 (a branch to a loop restarts it; the loop's result is
// only produced by falling off its end).
func branchArity(f *controlFrame) uint8 {
	if f.kind == frameLoop {
		return 0
	}
	return f.arity
}

// emitTarget appends (target_pc, target_stack_height) for a branch
// to f, reserving a patch slot if f's end hasn't been seen yet.
func (p *parser) emitTarget(f *controlFrame) {
	if f.kind == frameLoop {
		p.appendUint32(uint32(f.loopStartIdx))
	} else {
		f.pendingTargets = append(f.pendingTargets, len(p.immediates))
		p.appendUint32(0)
	}
	p.appendUint32(uint32(f.parentStackHeight))
}

func (p *parser) branch(top *controlFrame, conditional bool) error {
	label, err := leb128.ReadVarUint32(p.r)
	if err != nil {
		return wrapLEB(err)
	}
	f, err := p.frameAt(label)
	if err != nil {
		return err
	}
	p.immediates = append(p.immediates, branchArity(f))
	p.emitTarget(f)
	if !conditional {
		top.unreachable = true
	}
	return nil
}

func (p *parser) branchTable(top *controlFrame) error {
	count, err := leb128.ReadVarUint32(p.r)
	if err != nil {
		return wrapLEB(err)
	}
	labels := make([]uint32, count+1)
	for i := range labels {
		labels[i], err = leb128.ReadVarUint32(p.r)
		if err != nil {
			return wrapLEB(err)
		}
	}
	frames := make([]*controlFrame, len(labels))
	for i, l := range labels {
		f, err := p.frameAt(l)
		if err != nil {
			return err
		}
		frames[i] = f
	}
	p.immediates = append(p.immediates, branchArity(frames[0]))
	for _, f := range frames {
		p.emitTarget(f)
	}
	top.unreachable = true
	return nil
}
