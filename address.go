// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

func log2(v int) int {
	n := 0
	for 1<<uint(n) < v {
		n++
	}
	return n
}

// AddressMap describes how a linear word address maps onto the storage grid.
//
// The low ColBits bits of an address select one of Mux column slots, the high
// RowBits bits select a row.
type AddressMap struct {
	Words    int
	Mux      int
	AddrBits int // aw = log2(Words)
	ColBits  int // ay = log2(Mux)
	RowBits  int // ax = aw - ay
	Rows     int // Words / Mux
	Columns  int // codeword width * Mux
}

// NewAddressMap returns the address map for the given word count, mux factor
// and codeword width.
func NewAddressMap(words, mux, width int) *AddressMap {
	aw, ay := log2(words), log2(mux)
	return &AddressMap{
		Words:    words,
		Mux:      mux,
		AddrBits: aw,
		ColBits:  ay,
		RowBits:  aw - ay,
		Rows:     words / mux,
		Columns:  width * mux,
	}
}

// Split returns the row and column slot selected by addr.
func (a *AddressMap) Split(addr int) (row, col int) {
	return addr >> uint(a.ColBits), addr & (1<<uint(a.ColBits) - 1)
}

// Join is the inverse of Split.
func (a *AddressMap) Join(row, col int) int {
	return row<<uint(a.ColBits) | col
}

// RowSelect returns the row decoder output for row: a 2^RowBits wide one-hot
// vector.
func (a *AddressMap) RowSelect(row int) Bits {
	return OneHot(row, 1<<uint(a.RowBits))
}

// ColumnSelect returns the column decoder output for col: a Mux wide one-hot
// vector.
func (a *AddressMap) ColumnSelect(col int) Bits {
	return OneHot(col, 1<<uint(a.ColBits))
}

// OneHot returns a width bit vector with only bit v set. The vector is all zero
// if v is out of range.
func OneHot(v, width int) Bits {
	b := make(Bits, width)
	if v >= 0 && v < width {
		b[v] = true
	}
	return b
}

// OneHotIndex returns the index of the single bit set in b, or -1 if b is not
// one-hot.
func OneHotIndex(b Bits) int {
	idx := -1
	for i, s := range b {
		if !s {
			continue
		}
		if idx >= 0 {
			return -1
		}
		idx = i
	}
	return idx
}
