// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

// Input creates a function based input.
//
//	Outputs: out
//	Function: out = f()
func Input(f func() bool) circuit.NewPartFn {
	p := &circuit.PartSpec{
		Name:    "Input",
		Inputs:  nil,
		Outputs: []string{pOut},
		Mount: func(s *circuit.Socket) []circuit.Component {
			pin := s.Pin(pOut)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					c.Set(pin, f())
				},
			}
		},
	}
	return p.NewPart
}

// Output creates an output or probe. The fn function is
// called with the named pin state on every circuit update.
//
//	Inputs: in
//	Function: f(in)
func Output(f func(bool)) circuit.NewPartFn {
	p := &circuit.PartSpec{
		Name:    "Output",
		Inputs:  []string{pIn},
		Outputs: nil,
		Mount: func(s *circuit.Socket) []circuit.Component {
			pin := s.Pin(pIn)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					f(c.Get(pin))
				},
			}
		},
	}
	return p.NewPart
}

// InputN creates an input bus of the given width. Missing bits in the value
// returned by f are set to false.
//
//	Outputs: out[bits]
//	Function: out = f()
func InputN(bits int, f func() secmem.Bits) circuit.NewPartFn {
	return (&circuit.PartSpec{
		Name:    "Input" + strconv.Itoa(bits),
		Inputs:  nil,
		Outputs: circuit.IO(bus(pOut, bits)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			pins := s.Bus(pOut, bits)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					set(c, pins, f())
				}}
		}}).NewPart
}

// OutputN creates an output bus of the given width.
//
//	Inputs: in[bits]
//	Function: f(in)
func OutputN(bits int, f func(secmem.Bits)) circuit.NewPartFn {
	return (&circuit.PartSpec{
		Name:    "Output" + strconv.Itoa(bits),
		Inputs:  circuit.IO(bus(pIn, bits)),
		Outputs: nil,
		Mount: func(s *circuit.Socket) []circuit.Component {
			pins := s.Bus(pIn, bits)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					f(get(c, pins))
				}}
		}}).NewPart
}
