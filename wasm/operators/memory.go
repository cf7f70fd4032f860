// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operators

// MemAccess describes the bytes a load or store instruction touches:
// the width actually read or written, and, for loads narrower than
// the pushed value type, whether the loaded byte or halfword is
// sign-extended.
type MemAccess struct {
	Width  uint8 // 1, 2, 4 or 8
	Signed bool  // only meaningful for loads
	Store  bool
}

var memAccessTable = map[Opcode]MemAccess{
	I32Load:    {Width: 4},
	I64Load:    {Width: 8},
	F32Load:    {Width: 4},
	F64Load:    {Width: 8},
	I32Load8s:  {Width: 1, Signed: true},
	I32Load8u:  {Width: 1},
	I32Load16s: {Width: 2, Signed: true},
	I32Load16u: {Width: 2},
	I64Load8s:  {Width: 1, Signed: true},
	I64Load8u:  {Width: 1},
	I64Load16s: {Width: 2, Signed: true},
	I64Load16u: {Width: 2},
	I64Load32s: {Width: 4, Signed: true},
	I64Load32u: {Width: 4},

	I32Store:   {Width: 4, Store: true},
	I64Store:   {Width: 8, Store: true},
	F32Store:   {Width: 4, Store: true},
	F64Store:   {Width: 8, Store: true},
	I32Store8:  {Width: 1, Store: true},
	I32Store16: {Width: 2, Store: true},
	I64Store8:  {Width: 1, Store: true},
	I64Store16: {Width: 2, Store: true},
	I64Store32: {Width: 4, Store: true},
}

// MemoryAccess returns the access width/signedness for a memory
// instruction, and false for any opcode that doesn't touch memory.
func MemoryAccess(op Opcode) (MemAccess, bool) {
	a, ok := memAccessTable[op]
	return a, ok
}

// HasMemArg reports whether op's immediates include the align/offset
// memarg pair (all loads, all stores, but not memory.size/memory.grow).
func HasMemArg(op Opcode) bool {
	if op == MemorySize || op == MemoryGrow {
		return false
	}
	_, ok := memAccessTable[op]
	return ok
}
