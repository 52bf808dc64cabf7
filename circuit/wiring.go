// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package circuit

import (
	"strconv"
	"strings"

	"github.com/db47h/secmem/internal/hdl"
	"github.com/pkg/errors"
)

// A Connection connects the pin PP of a part to the wire CP of its host chip.
type Connection struct {
	PP string
	CP string
}

// ParseIOSpec parses a pin list and returns individual pin names, expanding bus
// declarations:
//
//	ParseIOSpec("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
// A zero width bus like "in[0]" expands to no pins at all.
func ParseIOSpec(spec string) ([]string, error) {
	var out []string
	p := hdl.Parser{Input: spec}
	for {
		item, err := p.Next(false)
		if err != nil {
			return nil, err
		}
		switch v := item.(type) {
		case nil:
			return out, nil
		case hdl.Pin:
			out = append(out, v.Name)
		case hdl.PinIndex:
			for i := 0; i < v.Index; i++ {
				out = append(out, BusPinName(v.Name, i))
			}
		case hdl.PinRange:
			if v.End < v.Start {
				return nil, errors.Errorf("in %q at pos %d: invalid range", spec, v.Pos+1)
			}
			for i := v.Start; i <= v.End; i++ {
				out = append(out, BusPinName(v.Name, i))
			}
		}
	}
}

// IO is like ParseIOSpec but panics on error. It is intended for pin lists
// known at compile time.
func IO(spec string) []string {
	pins, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

func (p *PartSpec) busWidth(name string) int {
	n := 0
	prefix := name + "["
	for _, pins := range [][]string{p.Inputs, p.Outputs} {
		for _, pin := range pins {
			if strings.HasPrefix(pin, prefix) {
				n++
			}
		}
	}
	return n
}

func (p *PartSpec) hasPin(name string) bool {
	for _, n := range p.Inputs {
		if n == name {
			return true
		}
	}
	for _, n := range p.Outputs {
		if n == name {
			return true
		}
	}
	return false
}

func pinRange(name string, start, end int) []string {
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, BusPinName(name, i))
	}
	return r
}

// Connect parses a connection string for p:
//
//	a=x, b[0..3]=y[4..7], c=z[2]
//
// A part bus named without index or range is connected as a whole: if in is a
// 4 bit input bus, "in=x" is the same as "in[0..3]=x[0..3]". This also holds
// for single bit buses: "in=x" connects in[0] to x[0]. When a multi-pin
// left hand side is connected to a single pin, it is connected to the same
// bits of the named bus, or, for an indexed pin or a constant, all pins receive
// the same signal.
//
// Connect does not check that the pin names on the left hand side are valid
// pins of p. This is done when the part is used in a Chip.
func (p *PartSpec) Connect(connections string) ([]Connection, error) {
	var conns []Connection
	ps := hdl.Parser{Input: connections}
	for {
		item, err := ps.Next(true)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return conns, nil
		}
		a, ok := item.(hdl.PinAssignment)
		if !ok {
			return nil, errors.Errorf("in %q: expected pin assignment", connections)
		}

		var lhs []string
		whole := false
		switch v := a.LHS.(type) {
		case hdl.Pin:
			if w := p.busWidth(v.Name); w > 0 && !p.hasPin(v.Name) {
				lhs = pinRange(v.Name, 0, w-1)
				whole = true
			} else {
				lhs = []string{v.Name}
			}
		case hdl.PinIndex:
			lhs = []string{BusPinName(v.Name, v.Index)}
		case hdl.PinRange:
			if v.End < v.Start {
				return nil, errors.Errorf("in %q at pos %d: invalid range", connections, v.Pos+1)
			}
			lhs = pinRange(v.Name, v.Start, v.End)
		}

		var rhs []string
		switch v := a.RHS.(type) {
		case hdl.Pin:
			if (whole || len(lhs) > 1) && !isConstant(v.Name) {
				rhs = pinRange(v.Name, 0, len(lhs)-1)
			} else {
				rhs = []string{v.Name}
			}
		case hdl.PinIndex:
			rhs = []string{BusPinName(v.Name, v.Index)}
		case hdl.PinRange:
			if v.End < v.Start {
				return nil, errors.Errorf("in %q at pos %d: invalid range", connections, v.Pos+1)
			}
			rhs = pinRange(v.Name, v.Start, v.End)
		}

		switch {
		case len(lhs) == len(rhs):
			for i := range lhs {
				conns = append(conns, Connection{lhs[i], rhs[i]})
			}
		case len(rhs) == 1:
			for _, l := range lhs {
				conns = append(conns, Connection{l, rhs[0]})
			}
		default:
			return nil, errors.New("pin count mismatch in connection " + strconv.Quote(connections))
		}
	}
}
