// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operators

// Metrics gives the static operand-stack contract of an opcode: how
// many operands it requires to already be on the stack, and the
// signed height delta it applies.
//
// call is modeled as (0, +1) and call_indirect as (1, 0); their true
// arity depends on the target function's type, which this table
// deliberately does not resolve — that is the engine's job. br,
// br_table, return and unreachable are modeled as (0, 0) because
// whatever stack shape they'd otherwise require is unreachable code
// until the next end/else.
type Metrics struct {
	MinStackInputs    uint8
	StackHeightChange int8
}

type entry struct {
	name    string
	metrics Metrics
}

var table [256]entry

func def(op Opcode, name string, minIn uint8, delta int8) {
	table[op] = entry{name: name, metrics: Metrics{MinStackInputs: minIn, StackHeightChange: delta}}
}

func init() {
	// 5.4.1 Control instructions
	def(Unreachable, "unreachable", 0, 0)
	def(Nop, "nop", 0, 0)
	def(Block, "block", 0, 0)
	def(Loop, "loop", 0, 0)
	def(If, "if", 1, -1)
	def(Else, "else", 0, 0)
	def(End, "end", 0, 0)

	// TODO: after br the stack height should be reset according to the
	// target label; a full validator would do so. See the Br/BrTable
	// handling in the expression parser's unreachable-region tracking.
	def(Br, "br", 0, 0)
	def(BrIf, "br_if", 1, -1)
	def(BrTable, "br_table", 1, -1)
	def(Return, "return", 0, 0)

	def(Call, "call", 0, 1)
	def(CallIndirect, "call_indirect", 1, 0)

	// 5.4.2 Parametric instructions
	def(Drop, "drop", 1, -1)
	def(Select, "select", 3, -2)

	// 5.4.3 Variable instructions
	def(LocalGet, "local.get", 0, 1)
	def(LocalSet, "local.set", 1, -1)
	def(LocalTee, "local.tee", 1, 0)
	def(GlobalGet, "global.get", 0, 1)
	def(GlobalSet, "global.set", 1, -1)

	// 5.4.4 Memory instructions
	def(I32Load, "i32.load", 1, 0)
	def(I64Load, "i64.load", 1, 0)
	def(F32Load, "f32.load", 1, 0)
	def(F64Load, "f64.load", 1, 0)
	def(I32Load8s, "i32.load8_s", 1, 0)
	def(I32Load8u, "i32.load8_u", 1, 0)
	def(I32Load16s, "i32.load16_s", 1, 0)
	def(I32Load16u, "i32.load16_u", 1, 0)
	def(I64Load8s, "i64.load8_s", 1, 0)
	def(I64Load8u, "i64.load8_u", 1, 0)
	def(I64Load16s, "i64.load16_s", 1, 0)
	def(I64Load16u, "i64.load16_u", 1, 0)
	def(I64Load32s, "i64.load32_s", 1, 0)
	def(I64Load32u, "i64.load32_u", 1, 0)
	def(I32Store, "i32.store", 2, -2)
	def(I64Store, "i64.store", 2, -2)
	def(F32Store, "f32.store", 2, -2)
	def(F64Store, "f64.store", 2, -2)
	def(I32Store8, "i32.store8", 2, -2)
	def(I32Store16, "i32.store16", 2, -2)
	def(I64Store8, "i64.store8", 2, -2)
	def(I64Store16, "i64.store16", 2, -2)
	def(I64Store32, "i64.store32", 2, -2)
	def(MemorySize, "memory.size", 0, 1)
	def(MemoryGrow, "memory.grow", 1, 0)

	// 5.4.5 Numeric instructions
	def(I32Const, "i32.const", 0, 1)
	def(I64Const, "i64.const", 0, 1)
	def(F32Const, "f32.const", 0, 1)
	def(F64Const, "f64.const", 0, 1)

	def(I32Eqz, "i32.eqz", 1, 0)
	for _, o := range []Opcode{I32Eq, I32Ne, I32LtS, I32LtU, I32GtS, I32GtU, I32LeS, I32LeU, I32GeS, I32GeU} {
		def(o, "i32.cmp", 2, -1)
	}
	def(I64Eqz, "i64.eqz", 1, 0)
	for _, o := range []Opcode{I64Eq, I64Ne, I64LtS, I64LtU, I64GtS, I64GtU, I64LeS, I64LeU, I64GeS, I64GeU} {
		def(o, "i64.cmp", 2, -1)
	}
	for _, o := range []Opcode{F32Eq, F32Ne, F32Lt, F32Gt, F32Le, F32Ge} {
		def(o, "f32.cmp", 2, -1)
	}
	for _, o := range []Opcode{F64Eq, F64Ne, F64Lt, F64Gt, F64Le, F64Ge} {
		def(o, "f64.cmp", 2, -1)
	}

	for _, o := range []Opcode{I32Clz, I32Ctz, I32Popcnt} {
		def(o, "i32.unop", 1, 0)
	}
	for _, o := range []Opcode{I32Add, I32Sub, I32Mul, I32DivS, I32DivU, I32RemS, I32RemU,
		I32And, I32Or, I32Xor, I32Shl, I32ShrS, I32ShrU, I32Rotl, I32Rotr} {
		def(o, "i32.binop", 2, -1)
	}
	for _, o := range []Opcode{I64Clz, I64Ctz, I64Popcnt} {
		def(o, "i64.unop", 1, 0)
	}
	for _, o := range []Opcode{I64Add, I64Sub, I64Mul, I64DivS, I64DivU, I64RemS, I64RemU,
		I64And, I64Or, I64Xor, I64Shl, I64ShrS, I64ShrU, I64Rotl, I64Rotr} {
		def(o, "i64.binop", 2, -1)
	}
	for _, o := range []Opcode{F32Abs, F32Neg, F32Ceil, F32Floor, F32Trunc, F32Nearest, F32Sqrt} {
		def(o, "f32.unop", 1, 0)
	}
	for _, o := range []Opcode{F32Add, F32Sub, F32Mul, F32Div, F32Min, F32Max, F32Copysign} {
		def(o, "f32.binop", 2, -1)
	}
	for _, o := range []Opcode{F64Abs, F64Neg, F64Ceil, F64Floor, F64Trunc, F64Nearest, F64Sqrt} {
		def(o, "f64.unop", 1, 0)
	}
	for _, o := range []Opcode{F64Add, F64Sub, F64Mul, F64Div, F64Min, F64Max, F64Copysign} {
		def(o, "f64.binop", 2, -1)
	}

	for _, o := range []Opcode{
		I32WrapI64, I32TruncF32S, I32TruncF32U, I32TruncF64S, I32TruncF64U,
		I64ExtendI32S, I64ExtendI32U, I64TruncF32S, I64TruncF32U, I64TruncF64S, I64TruncF64U,
		F32ConvertI32S, F32ConvertI32U, F32ConvertI64S, F32ConvertI64U, F32DemoteF64,
		F64ConvertI32S, F64ConvertI32U, F64ConvertI64S, F64ConvertI64U, F64PromoteF32,
		I32ReinterpretF32, I64ReinterpretF64, F32ReinterpretI32, F64ReinterpretI64,
	} {
		def(o, "cvtop", 1, 0)
	}
}

// Lookup returns the stack metrics for op and whether op is assigned
// in the Wasm MVP opcode space. An unassigned opcode byte is what the
// parser treats as invalid_instruction.
func Lookup(op Opcode) (Metrics, bool) {
	e := table[op]
	return e.metrics, e.name != ""
}
