// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operandstack implements the value stack a compiled function
// runs on: its locals occupy the bottom of the same contiguous buffer
// the operand stack grows into, so local.get/local.set/local.tee
// never need a separate slice or bounds-check against a different
// backing array.
//
// Small functions are the common case, so the buffer starts out as an
// array embedded in the Stack value itself; only a function whose
// locals plus its validated maximum operand height exceed that inline
// capacity causes a heap allocation.
package operandstack

// inlineCapacity is the number of uint64 slots carried inline in a
// Stack value before it falls back to a heap-allocated slice. Chosen
// to match the 32-element small-object buffer used by comparable
// native Wasm interpreters: big enough that the overwhelming majority
// of real function bodies never allocate.
const inlineCapacity = 32

// Stack is a locals-prefixed operand stack: slots [0, numLocals) hold
// the current function's locals, and the operand region grows above
// them. It is not safe for concurrent use; a Stack belongs to exactly
// one in-flight function activation.
type Stack struct {
	inline    [inlineCapacity]uint64
	storage   []uint64 // either inline[:] or a heap slice
	numLocals int
	top       int // index one past the last pushed operand, counted over storage
}

// New returns a Stack sized for numLocals locals and an operand
// region that will never exceed maxOperandHeight entries, as proven
// by the caller's height tracking. Locals are zero-initialized.
func New(numLocals, maxOperandHeight int) *Stack {
	s := &Stack{numLocals: numLocals, top: numLocals}
	required := numLocals + maxOperandHeight
	if required <= inlineCapacity {
		s.storage = s.inline[:required]
	} else {
		s.storage = make([]uint64, required)
	}
	return s
}

// Local returns the value of local i.
func (s *Stack) Local(i int) uint64 {
	return s.storage[i]
}

// SetLocal overwrites local i.
func (s *Stack) SetLocal(i int, v uint64) {
	s.storage[i] = v
}

// Push appends v to the top of the operand region.
func (s *Stack) Push(v uint64) {
	s.storage[s.top] = v
	s.top++
}

// Pop removes and returns the top operand.
func (s *Stack) Pop() uint64 {
	s.top--
	return s.storage[s.top]
}

// Top returns the top operand without removing it.
func (s *Stack) Top() uint64 {
	return s.storage[s.top-1]
}

// Peek returns the operand i slots below the top; Peek(0) is
// equivalent to Top().
func (s *Stack) Peek(i int) uint64 {
	return s.storage[s.top-1-i]
}

// Height returns the current number of entries in the operand region,
// excluding locals.
func (s *Stack) Height() int {
	return s.top - s.numLocals
}

// Shrink discards operands down to height, an absolute operand-region
// height as produced by a branch target's recorded arity/discard.
func (s *Stack) Shrink(height int) {
	s.top = s.numLocals + height
}
