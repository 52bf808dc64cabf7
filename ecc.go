// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

// ParityWidth returns the number of Hamming parity bits needed to protect a
// word of m data bits: the smallest r such that 2^r >= m + r + 1. It returns 0
// if ecc is false.
func ParityWidth(m int, ecc bool) int {
	if !ecc {
		return 0
	}
	r := 0
	for 1<<uint(r) < m+r+1 {
		r++
	}
	return r
}

// ECCPlan is the codeword layout of a Hamming SEC code.
//
// Codeword indices are 0-based. Index i holds a parity bit if its 1-based
// position i+1 is a power of two, and a data bit otherwise. Data bit j is stored
// at Data[j], parity bit j at Parity[j] = 2^j - 1.
//
// Parity and syndrome bits are inverted: each one is the complement of the
// plain XOR parity. Encoder and decoder must agree on this.
type ECCPlan struct {
	DataWidth   int   // m
	ParityWidth int   // r
	Data        []int // codeword index of each data bit, ascending
	Parity      []int // codeword index of each parity bit, ascending

	cover [][]int
}

// NewECCPlan returns the codeword layout for m data bits. If ecc is false the
// plan has no parity bits and data bit j is stored at index j.
func NewECCPlan(m int, ecc bool) *ECCPlan {
	r := ParityWidth(m, ecc)
	p := &ECCPlan{
		DataWidth:   m,
		ParityWidth: r,
		Data:        make([]int, 0, m),
		Parity:      make([]int, 0, r),
	}
	for i := 0; i < m+r; i++ {
		pos := i + 1
		if r > 0 && pos&(pos-1) == 0 {
			p.Parity = append(p.Parity, i)
		} else {
			p.Data = append(p.Data, i)
		}
	}
	p.cover = make([][]int, r)
	for j := range p.cover {
		p.cover[j] = p.coverage(j)
	}
	return p
}

// Width returns the codeword width n = m + r.
func (p *ECCPlan) Width() int {
	return p.DataWidth + p.ParityWidth
}

// Coverage returns the codeword indices covered by parity bit j, i.e. all
// indices i such that bit j of i+1 is set. This includes the parity bit's own
// index. The returned slice must not be modified.
func (p *ECCPlan) Coverage(j int) []int {
	if j >= 0 && j < len(p.cover) {
		return p.cover[j]
	}
	return p.coverage(j)
}

func (p *ECCPlan) coverage(j int) []int {
	mask := 1 << uint(j)
	var cov []int
	for i := 0; i < p.Width(); i++ {
		if (i+1)&mask != 0 {
			cov = append(cov, i)
		}
	}
	return cov
}

// Encode returns the codeword for data. Data bits beyond the data width are
// ignored.
func (p *ECCPlan) Encode(data Bits) Bits {
	cw := make(Bits, p.Width())
	for j, i := range p.Data {
		cw[i] = data.Bit(j)
	}
	for j, i := range p.Parity {
		v := true
		for _, c := range p.Coverage(j) {
			if c != i {
				v = v != cw[c]
			}
		}
		cw[i] = v
	}
	return cw
}

// Syndrome returns the syndrome of a received codeword. A zero syndrome means
// no error was detected. Otherwise, for a single bit error, it is the 1-based
// position of the faulty bit.
func (p *ECCPlan) Syndrome(cw Bits) int {
	s := 0
	for j := 0; j < p.ParityWidth; j++ {
		v := true
		for _, c := range p.Coverage(j) {
			v = v != cw.Bit(c)
		}
		if v {
			s |= 1 << uint(j)
		}
	}
	return s
}

// Decode corrects cw and extracts the data word. flagged reports whether a
// nonzero syndrome was found.
//
// A syndrome pointing past the end of the codeword cannot result from a single
// bit error. No bit is flipped in that case but the word is still flagged.
func (p *ECCPlan) Decode(cw Bits) (data Bits, flagged bool) {
	s := p.Syndrome(cw)
	fixed := cw
	if s != 0 {
		flagged = true
		if s-1 < len(cw) {
			fixed = cw.Clone()
			fixed[s-1] = !fixed[s-1]
		}
	}
	data = make(Bits, p.DataWidth)
	for j, i := range p.Data {
		data[j] = fixed.Bit(i)
	}
	return data, flagged
}
