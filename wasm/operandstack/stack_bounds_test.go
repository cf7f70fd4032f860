// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operandstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShrinkBounds(t *testing.T) {
	tests := []struct {
		name   string
		pushed int
		shrink int
		want   uint64
	}{
		{"shrink to top", 3, 2, 2},
		{"shrink to bottom", 3, 0, 0},
		{"no-op shrink", 2, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1, 8)
			for i := 0; i < tt.pushed; i++ {
				s.Push(uint64(i + 1))
			}
			s.Shrink(tt.shrink)
			require.Equal(t, tt.shrink, s.Height(), "Height after Shrink")
			if tt.shrink > 0 {
				assert.Equal(t, tt.want, s.Top(), "Top after Shrink")
			}
		})
	}
}

func TestLocalsIsolatedFromOperands(t *testing.T) {
	s := New(3, 8)
	s.SetLocal(0, 100)
	s.SetLocal(1, 200)
	s.SetLocal(2, 300)

	s.Push(1)
	s.Push(2)
	s.Shrink(0)

	require.Equal(t, 0, s.Height(), "operand region should be empty after Shrink(0)")
	assert.Equal(t, uint64(100), s.Local(0), "locals must survive Shrink of the operand region")
	assert.Equal(t, uint64(200), s.Local(1))
	assert.Equal(t, uint64(300), s.Local(2))
}
