// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

import "github.com/pkg/errors"

// Design holds everything derived from a validated configuration. It is
// immutable once built.
type Design struct {
	*Config
	ECC        *ECCPlan
	Addr       *AddressMap
	Interleave Interleave
}

// NewDesign validates p and derives the complete macro description.
func NewDesign(p Params) (*Design, error) {
	c, err := p.Config()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return c.Design(), nil
}

// Design derives the macro description from c.
func (c *Config) Design() *Design {
	ecc := NewECCPlan(c.WordWidth, c.ECC)
	n := ecc.Width()
	return &Design{
		Config:     c,
		ECC:        ecc,
		Addr:       NewAddressMap(c.Words, c.Mux, n),
		Interleave: Interleave{Mux: c.Mux, Width: n},
	}
}

// Width returns the codeword width.
func (d *Design) Width() int { return d.ECC.Width() }

// Total returns the number of storage cells.
func (d *Design) Total() int { return d.Addr.Rows * d.Addr.Columns }

// Capacity returns the storage size in bytes.
func (d *Design) Capacity() int64 { return CapacityBytes(d.Words, d.Width()) }

// DataMask returns a word with all data bits set.
func (d *Design) DataMask() Bits {
	b := NewBits(d.WordWidth)
	for i := range b {
		b[i] = true
	}
	return b
}

// Pattern returns the test data written at addr by the self-checking
// testbench: (0xA + addr) truncated to the word width.
func (d *Design) Pattern(addr int) Bits {
	return BitsOf(uint64(0xA+addr), d.WordWidth)
}
