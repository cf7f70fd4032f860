// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import "errors"

// ErrUnexpectedEOF is returned when the input is exhausted before a
// complete LEB128 group (or a fixed-width float) could be read.
var ErrUnexpectedEOF = errors.New("leb128: unexpected EOF")

// ErrIntegerRepresentationTooLong is returned when a LEB128 encoding
// either exceeds the maximum number of groups for its declared bit
// width, or its final group sets bits that are inconsistent with that
// width (for signed values, an inconsistent sign extension).
var ErrIntegerRepresentationTooLong = errors.New("leb128: integer representation too long")
