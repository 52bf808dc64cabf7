// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
)

func scatter(d *secmem.Design) circuit.NewPartFn {
	k, n, cols := d.Mux, d.Width(), d.Addr.Columns
	return (&circuit.PartSpec{
		Name:    "Scatter",
		Inputs:  circuit.IO(pins(bus("acy", k), bus("cw", n))),
		Outputs: circuit.IO(pins(bus("we", cols), bus("di", cols))),
		Mount: func(s *circuit.Socket) []circuit.Component {
			acy, cw := s.Bus("acy", k), s.Bus("cw", n)
			we, di := s.Bus("we", cols), s.Bus("di", cols)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					wv, dv := d.Interleave.Scatter(get(c, acy), get(c, cw))
					set(c, we, wv)
					set(c, di, dv)
				}}
		}}).NewPart
}

// ColumnAccess returns the column access stage of d. It spreads a codeword over
// the physical columns of its slot.
//
//	Inputs: acy[Mux], valid, cw[Width], nrst
//	Outputs: we[Columns], di[Columns], acy1[Mux]
//	Function: we(t), di(t) = scatter(acy, cw)(t-1) if valid(t-1), 0 otherwise
//	          acy1(t) = acy(t-1)
func ColumnAccess(d *secmem.Design) circuit.NewPartFn {
	k, n, cols := d.Mux, d.Width(), d.Addr.Columns
	return mustChip(circuit.Chip("ColumnAccess",
		pins(bus("acy", k), "valid", bus("cw", n), "nrst"),
		pins(bus("we", cols), bus("di", cols), bus("acy1", k)),
		scatter(d)("acy=acy, cw=cw, we=wem, di=dim"),
		Register(2*cols)(conns(
			link("in", 0, "wem", 0, cols),
			link("in", cols, "dim", 0, cols),
			"load=valid, nrst=nrst",
			link("out", 0, "we", 0, cols),
			link("out", cols, "di", 0, cols),
		)),
		Register(k)("in=acy, load=true, nrst=nrst, out=acy1"),
	))
}

// RowSelection returns the word line driver of d.
//
//	Inputs: valid, arx[Rows], read, nrst
//	Outputs: read0, wl[Rows]
//	Function: wl(t) = arx(t-1) if valid(t-1) || read(t-1), 0 otherwise
//	          read0(t) = read(t-1) && !valid(t-1)
func RowSelection(d *secmem.Design) circuit.NewPartFn {
	rows := d.Addr.Rows
	return mustChip(circuit.Chip("RowSelection",
		pins("valid", bus("arx", rows), "read, nrst"),
		pins("read0", bus("wl", rows)),
		Or("a=valid, b=read, out=load"),
		Not("in=valid, out=nvalid"),
		And("a=read, b=nvalid, out=rd"),
		Register(rows+1)(conns(
			link("in", 0, "arx", 0, rows),
			"in["+strconv.Itoa(rows)+"]=rd",
			"load=load, nrst=nrst",
			link("out", 0, "wl", 0, rows),
			"out["+strconv.Itoa(rows)+"]=read0",
		)),
	))
}

// Cell returns a storage cell.
//
//	Inputs: wec, dic, nrst
//	Outputs: dtoc
//	Function: if wec { dtoc(t) = dic(t-1) } else { dtoc(t) = dtoc(t-1) }
//	          dtoc = 0 while nrst is low.
func Cell(w string) circuit.Part {
	return cell.NewPart(w)
}

var cell = circuit.PartSpec{
	Name:    "Ffbit",
	Inputs:  []string{"wec", "dic", pNRst},
	Outputs: []string{"dtoc"},
	Mount: func(s *circuit.Socket) []circuit.Component {
		wec, dic, nrst, dtoc := s.Pin("wec"), s.Pin("dic"), s.Pin(pNRst), s.Pin("dtoc")
		var v bool
		return []circuit.Component{
			func(c *circuit.Circuit) {
				switch {
				case !c.Get(nrst):
					v = false
				case c.AtTick() && c.Get(wec):
					v = c.Get(dic)
				}
				c.Set(dtoc, v)
			}}
	}}

func rowRead(d *secmem.Design) circuit.NewPartFn {
	rows, cols := d.Addr.Rows, d.Addr.Columns
	return (&circuit.PartSpec{
		Name:    "RowRead",
		Inputs:  circuit.IO(pins(bus("cells", rows*cols), bus("wl", rows))),
		Outputs: circuit.IO(bus("out", cols)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			cells, wl, out := s.Bus("cells", rows*cols), s.Bus("wl", rows), s.Bus("out", cols)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					r := secmem.OneHotIndex(get(c, wl))
					if r < 0 {
						set(c, out, nil)
						return
					}
					set(c, out, get(c, cells[r*cols:(r+1)*cols]))
				}}
		}}).NewPart
}

// MemoryArray returns the storage array of d: Rows x Columns cells, each one
// written when both its word line and its column write enable are high.
//
//	Inputs: we[Columns], di[Columns], wl[Rows], read0, nrst, acy1[Mux]
//	Outputs: dto[Columns], read01, acy2[Mux]
//	Function: dto(t) = row selected by wl(t-1) if read0(t-1), 0 otherwise
//	          read01(t) = read0(t-1)
//	          acy2(t) = acy1(t-1)
func MemoryArray(d *secmem.Design) circuit.NewPartFn {
	k, rows, cols := d.Mux, d.Addr.Rows, d.Addr.Columns
	parts := make([]circuit.Part, 0, 2*rows*cols+3)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := strconv.Itoa(r*cols + c)
			parts = append(parts,
				And("a=wl["+strconv.Itoa(r)+"], b=we["+strconv.Itoa(c)+"], out=wec["+i+"]"),
				Cell("wec=wec["+i+"], dic=di["+strconv.Itoa(c)+"], nrst=nrst, dtoc=cells["+i+"]"),
			)
		}
	}
	parts = append(parts,
		rowRead(d)("cells=cells, wl=wl, out=row"),
		Register(cols+1)(conns(
			link("in", 0, "row", 0, cols),
			"in["+strconv.Itoa(cols)+"]=true",
			"load=read0, nrst=nrst",
			link("out", 0, "dto", 0, cols),
			"out["+strconv.Itoa(cols)+"]=read01",
		)),
		Register(k)("in=acy1, load=true, nrst=nrst, out=acy2"),
	)
	return mustChip(circuit.Chip("MemoryArray",
		pins(bus("we", cols), bus("di", cols), bus("wl", rows), "read0, nrst", bus("acy1", k)),
		pins(bus("dto", cols), "read01", bus("acy2", k)),
		parts...,
	))
}

func gather(d *secmem.Design) circuit.NewPartFn {
	k, n, cols := d.Mux, d.Width(), d.Addr.Columns
	return (&circuit.PartSpec{
		Name:    "Gather",
		Inputs:  circuit.IO(pins(bus("row", cols), bus("acy", k))),
		Outputs: circuit.IO(bus("cw", n)),
		Mount: func(s *circuit.Socket) []circuit.Component {
			row, acy, cw := s.Bus("row", cols), s.Bus("acy", k), s.Bus("cw", n)
			return []circuit.Component{
				func(c *circuit.Circuit) {
					set(c, cw, d.Interleave.Gather(get(c, acy), get(c, row)))
				}}
		}}).NewPart
}

// ReadMux returns the read multiplexer of d. It extracts the codeword of the
// selected slot from a physical row.
//
//	Inputs: dto[Columns], acy2[Mux], read01, nrst
//	Outputs: do[Width], read1
//	Function: do(t) = gather(acy2, dto)(t-1) if read01(t-1), 0 otherwise
//	          read1(t) = read01(t-1)
func ReadMux(d *secmem.Design) circuit.NewPartFn {
	k, n, cols := d.Mux, d.Width(), d.Addr.Columns
	return mustChip(circuit.Chip("ReadMux",
		pins(bus("dto", cols), bus("acy2", k), "read01, nrst"),
		pins(bus("do", n), "read1"),
		gather(d)("row=dto, acy=acy2, cw=cwm"),
		Register(n+1)(conns(
			link("in", 0, "cwm", 0, n),
			"in["+strconv.Itoa(n)+"]=true",
			"load=read01, nrst=nrst",
			link("out", 0, "do", 0, n),
			"out["+strconv.Itoa(n)+"]=read1",
		)),
	))
}
