// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operators

// Op names an opcode and carries its static stack contract, so
// callers that already hold an Op never need a second table lookup.
type Op struct {
	Code    Opcode
	Name    string
	Metrics Metrics
}

// IsValid reports whether Op was produced by New for an opcode that
// is actually assigned in the Wasm MVP instruction space.
func (o Op) IsValid() bool {
	return o.Name != ""
}

// New looks up the instruction named by code. It returns
// InvalidOpcodeError for any byte not assigned in the MVP opcode
// space; the returned Op is still safe to use (IsValid reports
// false, Metrics is the zero value).
func New(code byte) (Op, error) {
	op := Opcode(code)
	e := table[op]
	if e.name == "" {
		return Op{Code: op}, InvalidOpcodeError(code)
	}
	return Op{Code: op, Name: e.name, Metrics: e.metrics}, nil
}
