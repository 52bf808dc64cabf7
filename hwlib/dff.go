// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

// DFF returns a clocked data flip flop with asynchronous active-low reset.
//
//	Inputs: in, nrst
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//	          out = 0 while nrst is low.
func DFF(w string) circuit.Part {
	return dff.NewPart(w)
}

var dff = circuit.PartSpec{
	Name:    "DFF",
	Inputs:  []string{pIn, pNRst},
	Outputs: []string{pOut},
	Mount: func(s *circuit.Socket) []circuit.Component {
		in, nrst, out := s.Pin(pIn), s.Pin(pNRst), s.Pin(pOut)
		var curOut bool
		return []circuit.Component{
			func(c *circuit.Circuit) {
				switch {
				case !c.Get(nrst):
					curOut = false
				case c.AtTick():
					curOut = c.Get(in)
				}
				c.Set(out, curOut)
			}}
	}}

// Register returns a register of the given width with load enable and
// asynchronous active-low reset.
//
//	Inputs: in[bits], load, nrst
//	Outputs: out[bits]
//	Function: if load { out(t) = in(t-1) } else { out(t) = 0 }
//	          out = 0 while nrst is low.
//
// The register is cleared, not held, on cycles where load is not asserted.
// This is how every pipeline stage of the macro avoids presenting stale data.
func Register(bits int) circuit.NewPartFn {
	return (&circuit.PartSpec{
		Name:    "REG" + strconv.Itoa(bits),
		Inputs:  circuit.IO(bus(pIn, bits) + ", load, nrst"),
		Outputs: circuit.IO(bus(pOut, bits)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			in, out := s.Bus(pIn, bits), s.Bus(pOut, bits)
			load, nrst := s.Pin("load"), s.Pin(pNRst)
			r := secmem.NewBits(bits)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					switch {
					case !c.Get(nrst):
						r = secmem.NewBits(bits)
					case c.AtTick():
						if c.Get(load) {
							r = get(c, in)
						} else {
							r = secmem.NewBits(bits)
						}
					}
					set(c, out, r)
				}}
		}}).NewPart
}
