// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

func encoderLogic(d *secmem.Design) circuit.NewPartFn {
	m, n := d.WordWidth, d.Width()
	return (&circuit.PartSpec{
		Name:    "EncoderLogic",
		Inputs:  circuit.IO(pins(bus("d", m), "write")),
		Outputs: circuit.IO(pins(bus("cw", n), "valid")),
		Mount: func(s *circuit.Socket) []circuit.Component {
			data, cw := s.Bus("d", m), s.Bus("cw", n)
			write, valid := s.Pin("write"), s.Pin("valid")
			return []circuit.Component{
				func(c *circuit.Circuit) {
					w := c.Get(write)
					if w {
						set(c, cw, d.ECC.Encode(get(c, data)))
					} else {
						set(c, cw, nil)
					}
					c.Set(valid, w)
				}}
		}}).NewPart
}

// Encoder returns the Hamming encoder stage of d.
//
//	Inputs: d[WordWidth], write, nrst
//	Outputs: cw[Width], ccw[Width], valid
//	Function: cw = write ? encode(d) : 0
//	          valid = write
//	          ccw(t) = cw(t-1)
//
// cw is combinational and feeds the column access stage in the same cycle. ccw
// is a registered copy exposed for observation.
func Encoder(d *secmem.Design) circuit.NewPartFn {
	m, n := d.WordWidth, d.Width()
	return mustChip(circuit.Chip("Encoder",
		pins(bus("d", m), "write, nrst"),
		pins(bus("cw", n), bus("ccw", n), "valid"),
		encoderLogic(d)("d=d, write=write, cw=cw, valid=valid"),
		Register(n)("in=cw, load=valid, nrst=nrst, out=ccw"),
	))
}

func decoderLogic(d *secmem.Design) circuit.NewPartFn {
	m, n := d.WordWidth, d.Width()
	return (&circuit.PartSpec{
		Name:    "DecoderLogic",
		Inputs:  circuit.IO(pins(bus("cw", n), "read")),
		Outputs: circuit.IO(pins(bus("q", m), "err")),
		Mount: func(s *circuit.Socket) []circuit.Component {
			cw, q := s.Bus("cw", n), s.Bus("q", m)
			read, flag := s.Pin("read"), s.Pin("err")
			return []circuit.Component{
				func(c *circuit.Circuit) {
					if !c.Get(read) {
						set(c, q, nil)
						c.Set(flag, false)
						return
					}
					data, e := d.ECC.Decode(get(c, cw))
					set(c, q, data)
					c.Set(flag, e)
				}}
		}}).NewPart
}

// Decoder returns the Hamming decoder stage of d. With ECC disabled, it passes
// data through and never flags an error.
//
//	Inputs: cw[Width], read, nrst
//	Outputs: q[WordWidth], err
//	Function: q(t), err(t) = decode(cw(t-1)) if read(t-1), 0 otherwise
func Decoder(d *secmem.Design) circuit.NewPartFn {
	m, n := d.WordWidth, d.Width()
	return mustChip(circuit.Chip("Decoder",
		pins(bus("cw", n), "read, nrst"),
		pins(bus("q", m), "err"),
		decoderLogic(d)("cw=cw, read=read, q=next, err=flag"),
		Register(m+1)(conns(
			link("in", 0, "next", 0, m),
			"in["+strconv.Itoa(m)+"]=flag",
			"load=read, nrst=nrst",
			link("out", 0, "q", 0, m),
			"out["+strconv.Itoa(m)+"]=err",
		)),
	))
}
