// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operators

import "fmt"

// InvalidOpcodeError is returned by New for a byte that names no
// Wasm MVP instruction.
type InvalidOpcodeError byte

func (e InvalidOpcodeError) Error() string {
	return fmt.Sprintf("operators: invalid opcode 0x%02x", byte(e))
}
