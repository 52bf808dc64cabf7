// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

// MacroSPC is the number of simulation steps per clock cycle needed by Macro.
// The longest combinational path in any pipeline stage is well under this.
const MacroSPC = 16

// Pipeline latencies of Macro, in clock cycles following the one where the
// command is presented.
const (
	WriteLatency = 2 // cycles until the codeword is stored
	ReadLatency  = 4 // cycles until q and err are valid
)

// Macro returns the complete memory macro of d.
//
//	Inputs: a[AddrBits], fs[FaultWidth], d[WordWidth], nrst, ncen, nwen
//	Outputs: q[WordWidth], err, ccw[Width]
//
// A command is presented for one clock cycle: ncen low selects the macro, nwen
// low selects a write. The stages run in order: control and address decoding,
// encoding, write failure injection, column access and row selection, storage,
// read multiplexing, read disturb injection and decoding.
//
// Read data appears on q and err ReadLatency cycles after the read command
// cycle and is held for one cycle only.
func Macro(d *secmem.Design) circuit.NewPartFn {
	m, n, f := d.WordWidth, d.Width(), d.FaultWidth
	aw, ax, ay := d.Addr.AddrBits, d.Addr.RowBits, d.Addr.ColBits
	return mustChip(circuit.Chip("SecMemory",
		pins(bus("a", aw), bus("fs", f), bus("d", m), "nrst, ncen, nwen"),
		pins(bus("q", m), "err", bus("ccw", n)),

		ControlCircuit("ncen=ncen, nwen=nwen, write=write, read=read"),
		RowDecode(d)(conns(link("ar", 0, "a", ay, ax), "arx=arx")),
		ColumnDecode(d)(conns(link("ac", 0, "a", 0, ay), "acy=acy")),
		Encoder(d)("d=d, write=write, nrst=nrst, cw=cw, ccw=ccw, valid=valid"),
		WriteFailure(d)(conns(wire("a", "a", aw), "write=write, fs=fs, in=cw, out=cwfi")),
		ColumnAccess(d)("acy=acy, valid=valid, cw=cwfi, nrst=nrst, we=we, di=di, acy1=acy1"),
		RowSelection(d)("valid=valid, arx=arx, read=read, nrst=nrst, read0=read0, wl=wl"),
		MemoryArray(d)("we=we, di=di, wl=wl, read0=read0, nrst=nrst, acy1=acy1, dto=dto, read01=read01, acy2=acy2"),
		ReadMux(d)("dto=dto, acy2=acy2, read01=read01, nrst=nrst, do=do, read1=read1"),
		ReadLatch(d)(conns(wire("a", "a", aw), "fs0=fs[0], read=read, read1=read1, nrst=nrst", wire("addr", "rda", aw), "en=rden")),
		ReadDisturb(d)(conns(wire("a", "rda", aw), "read=read1, en=rden, in=do, out=dofi")),
		Decoder(d)("cw=dofi, read=read1, nrst=nrst, q=q, err=err"),
	))
}
