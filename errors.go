// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

import "github.com/pkg/errors"

// Configuration errors. Errors returned by Params.Config and NewDesign wrap one
// of these; use errors.Cause to test for them.
var (
	ErrWordNotPow2    = errors.New("word must be a power of two")
	ErrMuxNotPow2     = errors.New("mux must be a power of two")
	ErrMuxNotDivisor  = errors.New("word must be divisible by mux")
	ErrWordWidthRange = errors.New("word_width must be an integer in 1..1024")
	ErrFaultWidth     = errors.New("fault width must be > 0")
	ErrMaskSyntax     = errors.New("malformed mask")
	ErrMaskNegative   = errors.New("mask must not be negative")
)
