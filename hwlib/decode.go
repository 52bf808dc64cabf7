// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"fmt"
	"strings"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

// span returns a bus range name[lo..lo+n-1].
func span(name string, lo, n int) string {
	return fmt.Sprintf("%s[%d..%d]", name, lo, lo+n-1)
}

// link connects n pins of bus pp starting at plo to the pins of bus cp
// starting at clo. It returns an empty string if n is zero.
func link(pp string, plo int, cp string, clo, n int) string {
	if n == 0 {
		return ""
	}
	return span(pp, plo, n) + "=" + span(cp, clo, n)
}

// wire returns a connection for bus pp of the given width, or an empty string
// if the bus has zero width.
func wire(pp, cp string, width int) string {
	if width == 0 {
		return ""
	}
	return pp + "=" + cp
}

// conns joins connections, skipping empty ones.
func conns(cs ...string) string {
	var b strings.Builder
	for _, c := range cs {
		if c == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
	}
	return b.String()
}

// pins joins pin list declarations.
func pins(ps ...string) string {
	return strings.Join(ps, ", ")
}

func oneHotDecoder(name, in, out string, inBits, outBits int) circuit.NewPartFn {
	return (&circuit.PartSpec{
		Name:    name,
		Inputs:  circuit.IO(bus(in, inBits)),
		Outputs: circuit.IO(bus(out, outBits)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			a, y := s.Bus(in, inBits), s.Bus(out, outBits)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					set(c, y, secmem.OneHot(getInt(c, a), outBits))
				}}
		}}).NewPart
}

// RowDecode returns the row decoder of d.
//
//	Inputs: ar[RowBits]
//	Outputs: arx[Rows]
//	Function: arx = 1 << ar
func RowDecode(d *secmem.Design) circuit.NewPartFn {
	return oneHotDecoder("RowDecode", "ar", "arx", d.Addr.RowBits, d.Addr.Rows)
}

// ColumnDecode returns the column decoder of d.
//
//	Inputs: ac[ColBits]
//	Outputs: acy[Mux]
//	Function: acy = 1 << ac
func ColumnDecode(d *secmem.Design) circuit.NewPartFn {
	return oneHotDecoder("ColumnDecode", "ac", "acy", d.Addr.ColBits, d.Mux)
}

// ControlCircuit decodes the active-low chip enable and write enable inputs.
//
//	Inputs: ncen, nwen
//	Outputs: write, read
//	Function: write = !ncen && !nwen
//	          read = !ncen && nwen
func ControlCircuit(w string) circuit.Part {
	return controlCircuit(w)
}

var controlCircuit = mustChip(circuit.Chip("ControlCircuit", "ncen, nwen", "write, read",
	Nor("a=ncen, b=nwen, out=write"),
	Not("in=ncen, out=cen"),
	And("a=cen, b=nwen, out=read"),
))

func mustChip(p circuit.NewPartFn, err error) circuit.NewPartFn {
	if err != nil {
		panic(err)
	}
	return p
}
