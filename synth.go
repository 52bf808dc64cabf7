// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

// CodewordBit describes how the encoder produces one codeword bit.
//
// For a data bit, the codeword bit is input data bit DataBit. For a parity bit,
// it is the complement of the XOR of the input data bits listed in Terms. In
// both cases the bit is forced to zero when no write is in progress.
type CodewordBit struct {
	Index   int  // codeword index
	Parity  bool // parity bit
	DataBit int  // input data bit, valid if !Parity
	Check   int  // parity bit number, valid if Parity
	Terms   []int
}

// EncoderBits returns the encoder expression of every codeword bit, in
// codeword index order.
func (p *ECCPlan) EncoderBits() []CodewordBit {
	n := p.Width()
	bits := make([]CodewordBit, n)
	dataBit := make(map[int]int, len(p.Data))
	for j, i := range p.Data {
		dataBit[i] = j
		bits[i] = CodewordBit{Index: i, DataBit: j}
	}
	for j, i := range p.Parity {
		var terms []int
		for _, c := range p.Coverage(j) {
			if d, ok := dataBit[c]; ok {
				terms = append(terms, d)
			}
		}
		bits[i] = CodewordBit{Index: i, Parity: true, Check: j, Terms: terms}
	}
	return bits
}

// SyndromeTerms returns, for each syndrome bit, the received codeword indices
// XORed together (then complemented) to compute it.
func (p *ECCPlan) SyndromeTerms() [][]int {
	t := make([][]int, p.ParityWidth)
	for j := range t {
		t[j] = p.Coverage(j)
	}
	return t
}
