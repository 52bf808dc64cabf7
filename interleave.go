// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

// Interleave maps codeword bits onto the physical columns of a storage row.
//
// Bit j of the codeword in column slot m is stored in physical column m + j*Mux.
// Words sharing a row are thus interleaved bit by bit.
type Interleave struct {
	Mux   int
	Width int // codeword width
}

// Columns returns the physical row width.
func (il Interleave) Columns() int { return il.Mux * il.Width }

// Column returns the physical column of codeword bit j in slot m.
func (il Interleave) Column(m, j int) int {
	return m + j*il.Mux
}

// SlotColumns returns the physical columns of slot m, in codeword bit order.
func (il Interleave) SlotColumns(m int) []int {
	cols := make([]int, il.Width)
	for j := range cols {
		cols[j] = il.Column(m, j)
	}
	return cols
}

// Scatter returns the write enable and write data vectors driving a physical
// row when writing cw into the slot selected by the one-hot vector sel. Both are
// all zero if sel is not one-hot.
func (il Interleave) Scatter(sel Bits, cw Bits) (we, di Bits) {
	we, di = NewBits(il.Columns()), NewBits(il.Columns())
	m := OneHotIndex(sel)
	if m < 0 || m >= il.Mux {
		return we, di
	}
	for j := 0; j < il.Width; j++ {
		c := il.Column(m, j)
		we[c] = true
		di[c] = cw.Bit(j)
	}
	return we, di
}

// Gather extracts the codeword of the slot selected by the one-hot vector sel
// from a physical row. The result is all zero if sel is not one-hot.
func (il Interleave) Gather(sel Bits, row Bits) Bits {
	cw := NewBits(il.Width)
	m := OneHotIndex(sel)
	if m < 0 || m >= il.Mux {
		return cw
	}
	for j := range cw {
		cw[j] = row.Bit(il.Column(m, j))
	}
	return cw
}
