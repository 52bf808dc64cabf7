// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl

import (
	"strconv"
	"strings"

	"github.com/db47h/secmem"
)

// view is the data handed to every template. Everything that needs
// arithmetic is computed here so that templates only range and print.
type view struct {
	*secmem.Design

	M, R, N  int // data, parity and codeword widths
	Col, Row int
	AW       int
	AX, AXO  int
	AY, AYO  int

	WFWordHex, RDWordHex string
	WFBitBin, RDBitBin   string
	WFForceZero          string
	DataMask, DataStart  string

	Encoder    []assign
	Syndrome   []string
	ZeroSyn    string
	DataConcat string
	DataPos    string
	DataIdx    string
	RowCases   []decodeCase
	ColCases   []decodeCase
	Slots      []slot
	ArrayRows  []arrayRow
}

type assign struct {
	Index int
	Expr  string
}

type decodeCase struct {
	Label string
	Value string
}

// slot is one column mux position: Label is its one-hot select literal, Map
// lists the physical column of each codeword bit.
type slot struct {
	Label string
	Map   []colBit
}

type colBit struct {
	Bit int // codeword bit
	Col int // physical column
}

type arrayRow struct {
	Index       int
	First, Last int
	Label       string
	Cells       []cell
}

type cell struct {
	Name string
	Col  int
	Bit  int
	Pad  string
}

// binary returns v as a width digit binary string, msb first.
func binary(b secmem.Bits) string { return b.String() }

// underscored groups the digits of s by four, starting from the right.
func underscored(s string) string {
	if len(s) <= 4 {
		return s
	}
	var parts []string
	for i := len(s); i > 0; i -= 4 {
		lo := i - 4
		if lo < 0 {
			lo = 0
		}
		parts = append([]string{s[lo:i]}, parts...)
	}
	return strings.Join(parts, "_")
}

// hexLiteral formats b as a sized Verilog hexadecimal literal.
func hexLiteral(b secmem.Bits) string {
	return strconv.Itoa(len(b)) + "'h" + b.Hex()
}

// binLiteral formats b as a sized Verilog binary literal.
func binLiteral(b secmem.Bits) string {
	return strconv.Itoa(len(b)) + "'b" + binary(b)
}

func pad10(v int) string {
	if v < 10 {
		return " "
	}
	return ""
}

func newView(d *secmem.Design) *view {
	a := d.Addr
	v := &view{
		Design: d,
		M:      d.WordWidth,
		R:      d.ECC.ParityWidth,
		N:      d.Width(),
		Col:    a.Columns,
		Row:    a.Rows,
		AW:     a.AddrBits,
		AX:     a.RowBits,
		AXO:    1 << uint(a.RowBits),
		AY:     a.ColBits,
		AYO:    1 << uint(a.ColBits),

		WFWordHex:   hexLiteral(d.WriteFailure.Words),
		RDWordHex:   hexLiteral(d.ReadDisturb.Words),
		WFBitBin:    binLiteral(d.WriteFailure.Bits),
		RDBitBin:    binLiteral(d.ReadDisturb.Bits),
		WFForceZero: "1'b0",
		DataMask:    hexLiteral(d.DataMask()),
		DataStart:   hexLiteral(secmem.BitsOf(0xA, d.WordWidth)),
		ZeroSyn:     strings.Repeat("0", d.ECC.ParityWidth),
	}
	if d.WriteFailure.ForceZero {
		v.WFForceZero = "1'b1"
	}
	v.encoder()
	v.decoder()
	v.decoders()
	v.columns()
	v.array()
	return v
}

// encoder lists the codeword assignments from the highest index down.
func (v *view) encoder() {
	bits := v.ECC.EncoderBits()
	for i := len(bits) - 1; i >= 0; i-- {
		b := bits[i]
		if !b.Parity {
			v.Encoder = append(v.Encoder, assign{b.Index, "pDATA_i[" + strconv.Itoa(b.DataBit) + "]"})
			continue
		}
		var terms []string
		for _, t := range b.Terms {
			terms = append(terms, "pDATA_i["+strconv.Itoa(t)+"]")
		}
		terms = append(terms, "1'b1")
		v.Encoder = append(v.Encoder, assign{b.Index, "{" + strings.Join(terms, " ^ ") + "}"})
	}
}

func (v *view) decoder() {
	for _, cov := range v.ECC.SyndromeTerms() {
		var terms []string
		for _, c := range cov {
			terms = append(terms, "pPARITYDATA_i["+strconv.Itoa(c)+"]")
		}
		terms = append(terms, "1'b1")
		v.Syndrome = append(v.Syndrome, strings.Join(terms, " ^ "))
	}
	var concat, pos, idx []string
	for i := len(v.ECC.Data) - 1; i >= 0; i-- {
		p := v.ECC.Data[i]
		concat = append(concat, "CorrectedCode_w["+strconv.Itoa(p)+"]")
		pos = append(pos, strconv.Itoa(p+1))
		idx = append(idx, strconv.Itoa(p))
	}
	v.DataConcat = strings.Join(concat, ", ")
	v.DataPos = strings.Join(pos, ", ")
	v.DataIdx = strings.Join(idx, ", ")
}

func (v *view) decoders() {
	a := v.Addr
	for r := 0; r < a.Rows; r++ {
		v.RowCases = append(v.RowCases, decodeCase{
			Label: strconv.Itoa(v.AX) + "'d" + strconv.Itoa(r),
			Value: strconv.Itoa(v.AXO) + "'b" + underscored(binary(secmem.OneHot(r, v.AXO))),
		})
	}
	for m := 0; m < v.Mux; m++ {
		v.ColCases = append(v.ColCases, decodeCase{
			Label: strconv.Itoa(v.AY) + "'d" + strconv.Itoa(m),
			Value: strconv.Itoa(v.AYO) + "'b" + binary(secmem.OneHot(m, v.AYO)),
		})
	}
}

func (v *view) columns() {
	for m := 0; m < v.Mux; m++ {
		s := slot{Label: strconv.Itoa(v.AYO) + "'b" + binary(secmem.OneHot(m, v.AYO))}
		for j, c := range v.Interleave.SlotColumns(m) {
			s.Map = append(s.Map, colBit{Bit: j, Col: c})
		}
		v.Slots = append(v.Slots, s)
	}
}

func (v *view) array() {
	bit := 0
	for r := 0; r < v.Row; r++ {
		row := arrayRow{
			Index: r,
			First: bit,
			Last:  bit + v.Col - 1,
			Label: strconv.Itoa(v.Row) + "'b" + underscored(binary(secmem.OneHot(r, v.Row))),
		}
		for c := 0; c < v.Col; c++ {
			name := "Bit_" + strconv.Itoa(bit)
			if len(name) < 7 {
				name += strings.Repeat(" ", 7-len(name))
			}
			row.Cells = append(row.Cells, cell{Name: name, Col: c, Bit: bit, Pad: pad10(c)})
			bit++
		}
		v.ArrayRows = append(v.ArrayRows, row)
	}
}
