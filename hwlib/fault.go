// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

// WriteFailure returns the write failure injector of d. If write failures are
// disabled in d, the returned part is a plain buffer with the same pins.
//
//	Inputs: a[AddrBits], write, fs[FaultWidth], in[Width]
//	Outputs: out[Width]
//	Function: out = wf.ApplyWrite(a, write, fs[0], in)
func WriteFailure(d *secmem.Design) circuit.NewPartFn {
	aw, f, n := d.Addr.AddrBits, d.FaultWidth, d.Width()
	ins := pins(bus("a", aw), "write", bus("fs", f), bus(pIn, n))
	if !d.WriteFailure.Enabled {
		return mustChip(circuit.Chip("FiWrFail", ins, bus(pOut, n),
			Buffer(n)("in=in, out=out"),
		))
	}
	wf := &d.WriteFailure
	return (&circuit.PartSpec{
		Name:    "FiWrFail",
		Inputs:  circuit.IO(ins),
		Outputs: circuit.IO(bus(pOut, n)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			a, fs := s.Bus("a", aw), s.Bus("fs", f)
			in, out := s.Bus(pIn, n), s.Bus(pOut, n)
			write := s.Pin("write")
			return []circuit.Component{
				func(c *circuit.Circuit) {
					set(c, out, wf.ApplyWrite(getInt(c, a), c.Get(write), c.Get(fs[0]), get(c, in)))
				}}
		}}).NewPart
}

// ReadDisturb returns the read disturb injector of d. If read disturbs are
// disabled in d, the returned part is a plain buffer with the same pins.
//
//	Inputs: a[AddrBits], read, en, in[Width]
//	Outputs: out[Width]
//	Function: out = rd.ApplyRead(a, read, en, in)
//
// a and en are expected to come from a ReadLatch.
func ReadDisturb(d *secmem.Design) circuit.NewPartFn {
	aw, n := d.Addr.AddrBits, d.Width()
	ins := pins(bus("a", aw), "read, en", bus(pIn, n))
	if !d.ReadDisturb.Enabled {
		return mustChip(circuit.Chip("FiRdDist", ins, bus(pOut, n),
			Buffer(n)("in=in, out=out"),
		))
	}
	rd := &d.ReadDisturb
	return (&circuit.PartSpec{
		Name:    "FiRdDist",
		Inputs:  circuit.IO(ins),
		Outputs: circuit.IO(bus(pOut, n)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			a, in, out := s.Bus("a", aw), s.Bus(pIn, n), s.Bus(pOut, n)
			read, en := s.Pin("read"), s.Pin("en")
			return []circuit.Component{
				func(c *circuit.Circuit) {
					set(c, out, rd.ApplyRead(getInt(c, a), c.Get(read), c.Get(en), get(c, in)))
				}}
		}}).NewPart
}

// ReadLatch returns the read disturb latch of d. It captures the address and
// fault strobe when a read command is issued and disarms once the read data
// reaches the decoder.
//
//	Inputs: a[AddrBits], fs0, read, read1, nrst
//	Outputs: addr[AddrBits], en
//	Function: if read(t-1) { addr(t), en(t) = a(t-1), fs0(t-1) }
//	          else if read1(t-1) { en(t) = 0 }
func ReadLatch(d *secmem.Design) circuit.NewPartFn {
	aw := d.Addr.AddrBits
	return (&circuit.PartSpec{
		Name:    "ReadLatch",
		Inputs:  circuit.IO(pins(bus("a", aw), "fs0, read, read1", pNRst)),
		Outputs: circuit.IO(pins(bus("addr", aw), "en")),
		Mount: func(s *circuit.Socket) []circuit.Component {
			a, addr := s.Bus("a", aw), s.Bus("addr", aw)
			fs0, read, read1, nrst, en := s.Pin("fs0"), s.Pin("read"), s.Pin("read1"), s.Pin(pNRst), s.Pin("en")
			var l secmem.ReadDisturbLatch
			return []circuit.Component{
				func(c *circuit.Circuit) {
					switch {
					case !c.Get(nrst):
						l = secmem.ReadDisturbLatch{}
					case c.AtTick():
						if c.Get(read) {
							l.Issue(getInt(c, a), c.Get(fs0))
						} else if c.Get(read1) {
							l.Disarm()
						}
					}
					set(c, addr, secmem.BitsOf(uint64(l.Addr), aw))
					c.Set(en, l.Armed)
				}}
		}}).NewPart
}
