// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides the parts of a SEC memory macro for the circuit
// simulator: logic gates, registers, the macro building blocks derived from a
// secmem.Design and the integrated macro itself.
package hwlib

import (
	"strconv"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

// common pin names
const (
	pA    = "a"
	pB    = "b"
	pIn   = "in"
	pOut  = "out"
	pNRst = "nrst"
)

// bus returns a pin list declaring a bus of the given width.
func bus(name string, width int) string {
	return name + "[" + strconv.Itoa(width) + "]"
}

// get returns the state of the given pins as a bit vector.
func get(c *circuit.Circuit, pins []int) secmem.Bits {
	b := make(secmem.Bits, len(pins))
	for i, p := range pins {
		b[i] = c.Get(p)
	}
	return b
}

// set sets pins to the bits of v. Missing bits are set to false.
func set(c *circuit.Circuit, pins []int, v secmem.Bits) {
	for i, p := range pins {
		c.Set(p, v.Bit(i))
	}
}

// getInt returns the state of the given pins as an integer.
func getInt(c *circuit.Circuit, pins []int) int {
	v := 0
	for i, p := range pins {
		if c.Get(p) {
			v |= 1 << uint(i)
		}
	}
	return v
}

var notGate = circuit.PartSpec{Name: "NOT", Inputs: []string{pIn}, Outputs: []string{pOut},
	Mount: func(s *circuit.Socket) []circuit.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		return []circuit.Component{
			func(c *circuit.Circuit) { c.Set(out, !c.Get(in)) },
		}
	},
}

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
func Not(w string) circuit.Part {
	return notGate.NewPart(w)
}

// other gates
type gate func(a, b bool) bool

func (g gate) mount(s *circuit.Socket) []circuit.Component {
	a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
	return []circuit.Component{
		func(c *circuit.Circuit) { c.Set(out, g(c.Get(a), c.Get(b))) },
	}
}

func newGate(name string, fn func(a, b bool) bool) *circuit.PartSpec {
	return &circuit.PartSpec{
		Name:    name,
		Inputs:  gateIn,
		Outputs: gateOut,
		Mount:   gate(fn).mount,
	}
}

var (
	gateIn  = []string{pA, pB}
	gateOut = []string{pOut}

	and  = newGate("AND", func(a, b bool) bool { return a && b })
	nand = newGate("NAND", func(a, b bool) bool { return !(a && b) })
	or   = newGate("OR", func(a, b bool) bool { return a || b })
	nor  = newGate("NOR", func(a, b bool) bool { return !(a || b) })
	xor  = newGate("XOR", func(a, b bool) bool { return a != b })
	xnor = newGate("XNOR", func(a, b bool) bool { return a == b })
)

// And returns a AND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
func And(w string) circuit.Part { return and.NewPart(w) }

// Nand returns a NAND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a && b)
func Nand(w string) circuit.Part { return nand.NewPart(w) }

// Or returns a OR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a || b
func Or(w string) circuit.Part { return or.NewPart(w) }

// Nor returns a NOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a || b)
func Nor(w string) circuit.Part { return nor.NewPart(w) }

// Xor returns a XOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a != b
func Xor(w string) circuit.Part { return xor.NewPart(w) }

// Xnor returns a XNOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a == b
func Xnor(w string) circuit.Part { return xnor.NewPart(w) }

// AndNWay returns a N-Way AND gate.
//
//	Inputs: in[n]
//	Outputs: out
//	Function: out = in[0] && in[1] && ... && in[n-1]
func AndNWay(ways int) circuit.NewPartFn {
	return (&circuit.PartSpec{
		Name:    "AND" + strconv.Itoa(ways) + "Way",
		Inputs:  circuit.IO(bus(pIn, ways)),
		Outputs: []string{pOut},
		Mount: func(s *circuit.Socket) []circuit.Component {
			in := s.Bus(pIn, ways)
			out := s.Pin(pOut)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					for _, i := range in {
						if !c.Get(i) {
							c.Set(out, false)
							return
						}
					}
					c.Set(out, true)
				}}
		}}).NewPart
}

// Buffer returns a bus buffer. It is used as a stand-in for parts that are
// disabled in a design.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: out = in
func Buffer(bits int) circuit.NewPartFn {
	return (&circuit.PartSpec{
		Name:    "BUF" + strconv.Itoa(bits),
		Inputs:  circuit.IO(bus(pIn, bits)),
		Outputs: circuit.IO(bus(pOut, bits)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			in, out := s.Bus(pIn, bits), s.Bus(pOut, bits)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					for i, p := range in {
						c.Set(out[i], c.Get(p))
					}
				}}
		}}).NewPart
}
