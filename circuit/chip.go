// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package circuit

import (
	"strconv"

	"github.com/pkg/errors"
)

type chip struct {
	PartSpec        // PartSpec for this chip
	parts    Parts  // sub parts
	wires    []wire // wiring of each sub part, indexed like parts
}

// wire maps the pins of a sub part to wire names in the chip.
type wire map[string]string

func (c *chip) mount(s *Socket) []Component {
	var cs []Component

	for i, p := range c.parts {
		sub := newSocket(s.c)
		w := c.wires[i]
		for _, k := range p.Inputs {
			if n, ok := w[k]; ok {
				sub.m[k] = s.PinOrNew(n)
			} else {
				sub.m[k] = cstFalse
			}
		}
		for _, k := range p.Outputs {
			if n, ok := w[k]; ok {
				sub.m[k] = s.PinOrNew(n)
			} else {
				sub.m[k] = s.c.allocPin()
			}
		}
		cs = append(cs, p.Mount(sub)...)
	}
	return cs
}

func partName(p Part, i int) string {
	return p.Name + "#" + strconv.Itoa(i)
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", "a, b", "out",
//		Nand("a=a, b=b, out=nandAB"),
//		Nand("a=a, b=nandAB, out=w0"),
//		Nand("a=b, b=nandAB, out=w1"),
//		Nand("a=w0, b=w1, out=out"),
//	)
//
// Unconnected input pins of sub parts are connected to false. Chip reports an
// error if a sub part pin name is unknown, if an output pin drives a chip input,
// a constant or a wire already driven by another output, or if an input pin
// reads a wire that nothing drives.
//
// The returned value is a NewPartFn that can be used to compose the new part
// with others into other chips.
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" inputs")
	}
	outs, err := ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" outputs")
	}

	// drivers maps wire names to a description of what drives them.
	drivers := make(map[string]string, len(ins)+len(outs))
	for _, n := range []string{False, True, Clk} {
		drivers[n] = "constant"
	}
	for _, n := range ins {
		if _, ok := drivers[n]; ok {
			return nil, errors.New(name + ": duplicate input pin " + n)
		}
		drivers[n] = "chip input"
	}
	chipOuts := make(map[string]bool, len(outs))
	for _, n := range outs {
		if _, ok := drivers[n]; ok || chipOuts[n] {
			return nil, errors.New(name + ": duplicate output pin " + n)
		}
		chipOuts[n] = true
	}

	wires := make([]wire, len(parts))
	for i, p := range parts {
		isIn := make(map[string]bool, len(p.Inputs))
		for _, k := range p.Inputs {
			isIn[k] = true
		}
		isOut := make(map[string]bool, len(p.Outputs))
		for _, k := range p.Outputs {
			isOut[k] = true
		}
		w := make(wire, len(p.Conns))
		for _, conn := range p.Conns {
			pn := partName(p, i) + "." + conn.PP
			if !isIn[conn.PP] && !isOut[conn.PP] {
				return nil, errors.New(name + ": invalid pin name " + conn.PP + " for part " + p.Name)
			}
			if _, ok := w[conn.PP]; ok {
				return nil, errors.New(name + ": pin " + pn + " connected more than once")
			}
			w[conn.PP] = conn.CP
			if !isOut[conn.PP] {
				continue
			}
			if d, ok := drivers[conn.CP]; ok {
				return nil, errors.Errorf("%s: output pin %s connected to %s, already driven by %s", name, pn, conn.CP, d)
			}
			drivers[conn.CP] = pn
		}
		wires[i] = w
	}

	// check that every input reads a driven wire
	for i, p := range parts {
		for _, k := range p.Inputs {
			n, ok := wires[i][k]
			if !ok {
				continue
			}
			if _, ok = drivers[n]; !ok {
				return nil, errors.Errorf("%s: pin %s.%s connected to %s, which is not driven by any output", name, partName(p, i), k, n)
			}
		}
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts: parts,
		wires: wires,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
