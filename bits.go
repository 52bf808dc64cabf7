// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

import (
	"math/big"
	"strings"
)

// Bits is a fixed width bit vector. Bit 0 is the lsb.
type Bits []bool

// NewBits returns a zeroed bit vector of the given width.
func NewBits(width int) Bits {
	return make(Bits, width)
}

// BitsOf returns the low width bits of v as a bit vector.
func BitsOf(v uint64, width int) Bits {
	b := make(Bits, width)
	for i := 0; i < width && i < 64; i++ {
		b[i] = v&(1<<uint(i)) != 0
	}
	return b
}

// BitsFromInt returns the low width bits of v as a bit vector. v must not be
// negative.
func BitsFromInt(v *big.Int, width int) Bits {
	b := make(Bits, width)
	for i := range b {
		b[i] = v.Bit(i) != 0
	}
	return b
}

// Clone returns a copy of b.
func (b Bits) Clone() Bits {
	c := make(Bits, len(b))
	copy(c, b)
	return c
}

// Uint64 returns the low 64 bits of b.
func (b Bits) Uint64() uint64 {
	var v uint64
	for i := 0; i < len(b) && i < 64; i++ {
		if b[i] {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Int returns b as a big.Int.
func (b Bits) Int() *big.Int {
	v := new(big.Int)
	for i, s := range b {
		if s {
			v.SetBit(v, i, 1)
		}
	}
	return v
}

// Bit returns the state of bit i. Out of range bits read as zero.
func (b Bits) Bit(i int) bool {
	if i < 0 || i >= len(b) {
		return false
	}
	return b[i]
}

// IsZero returns true if no bit is set.
func (b Bits) IsZero() bool {
	for _, s := range b {
		if s {
			return false
		}
	}
	return true
}

// Count returns the number of bits set.
func (b Bits) Count() int {
	n := 0
	for _, s := range b {
		if s {
			n++
		}
	}
	return n
}

// Xor returns b ^ o. The result has the width of b; missing bits in o read as
// zero.
func (b Bits) Xor(o Bits) Bits {
	r := make(Bits, len(b))
	for i := range b {
		r[i] = b[i] != o.Bit(i)
	}
	return r
}

// Equal returns true if b and o have the same width and value.
func (b Bits) Equal(o Bits) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

// String returns b in binary, msb first.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Hex returns b in upper case hexadecimal, msb first, zero padded to
// ceil(len(b)/4) digits.
func (b Bits) Hex() string {
	const digits = "0123456789ABCDEF"
	n := (len(b) + 3) / 4
	if n == 0 {
		n = 1
	}
	out := make([]byte, n)
	for d := 0; d < n; d++ {
		v := 0
		for k := 0; k < 4; k++ {
			if b.Bit(d*4 + k) {
				v |= 1 << uint(k)
			}
		}
		out[n-1-d] = digits[v]
	}
	return string(out)
}
