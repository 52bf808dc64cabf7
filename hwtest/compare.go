// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits, and the
// self-checking testbench of the memory macro.
package hwtest

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/db47h/secmem/circuit"
	"github.com/db47h/secmem/hwlib"
)

// T is the subset of testing.TB used by ComparePart. It is satisfied by
// *testing.T and by ginkgo's GinkgoT().
type T interface {
	Helper()
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

func connString(in, out []string) string {
	var b strings.Builder
	for _, l := range [][]string{in, out} {
		for _, n := range l {
			if b.Len() > 0 {
				b.WriteRune(',')
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(n)
		}
	}
	return b.String()
}

// pinList rebuilds a pin list declaration from expanded pin names.
func pinList(in []string) string {
	bus := make(map[string]int)
	var pins []string

	for _, n := range in {
		if b := strings.IndexRune(n, '['); b >= 0 {
			bn := n[:b]
			idx, err := strconv.Atoi(n[b+1 : strings.IndexRune(n, ']')])
			if err != nil {
				panic(err)
			}
			if bidx, ok := bus[bn]; !ok || bidx < idx {
				bus[bn] = idx
			}
		} else {
			pins = append(pins, n)
		}
	}

	names := make([]string, 0, len(bus))
	for k := range bus {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		pins = append(pins, k+"["+strconv.Itoa(bus[k]+1)+"]")
	}
	return strings.Join(pins, ",")
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface. Inputs are set to all
// zeros, then all ones, then random values for up to 4096 clock cycles.
func ComparePart(t T, tpc uint, part1 circuit.NewPartFn, part2 circuit.NewPartFn) {
	t.Helper()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	ps1 := part1("")
	conns := connString(ps1.Inputs, ps1.Outputs)
	ps1, ps2 := part1(conns), part2(conns)

	// compare specs
	if len(ps1.Inputs) != len(ps2.Inputs) {
		t.Fatal("len(ps1.Inputs) != len(ps2.Inputs)")
	}
	if len(ps1.Outputs) != len(ps2.Outputs) {
		t.Fatal("len(ps1.Outputs) != len(ps2.Outputs)")
	}
	for i := range ps1.Inputs {
		if ps1.Inputs[i] != ps2.Inputs[i] {
			t.Fatalf("ps1.Inputs[i] = %q != ps2.Inputs[i] = %q", ps1.Inputs[i], ps2.Inputs[i])
		}
	}
	for i := range ps1.Outputs {
		if ps1.Outputs[i] != ps2.Outputs[i] {
			t.Fatalf("ps1.Outputs[i] = %q != ps2.Outputs[i] = %q", ps1.Outputs[i], ps2.Outputs[i])
		}
	}

	inputs := make([]bool, len(ps1.Inputs))
	outputs := make([][2]bool, len(ps1.Outputs))

	// build two wrappers with their own set of outputs
	parts1 := circuit.Parts{ps1}
	for i, o := range ps1.Outputs {
		n := i
		parts1 = append(parts1, hwlib.Output(func(b bool) { outputs[n][0] = b })("in="+o))
	}
	parts2 := circuit.Parts{ps2}
	for i, o := range ps2.Outputs {
		n := i
		parts2 = append(parts2, hwlib.Output(func(b bool) { outputs[n][1] = b })("in="+o))
	}
	w1, err := circuit.Chip("wrapper1", pinList(ps1.Inputs), "", parts1...)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := circuit.Chip("wrapper2", pinList(ps2.Inputs), "", parts2...)
	if err != nil {
		t.Fatal(err)
	}

	var parts circuit.Parts
	for i, n := range ps1.Inputs {
		k := i
		parts = append(parts, hwlib.Input(func() bool { return inputs[k] })("out="+n))
	}
	cstr := connString(ps1.Inputs, nil)
	parts = append(parts, w1(cstr), w2(cstr))

	c, err := circuit.NewCircuit(0, tpc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	errString := func(oname string, ex, got bool) string {
		var b strings.Builder
		for i, n := range ps1.Inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(strconv.FormatBool(inputs[i]))
		}
		return fmt.Sprintf("\nExpected %s => %s=%v\nGot %v", b.String(), oname, ex, got)
	}
	check := func() {
		c.Tock()
		c.Tick()
		for o, out := range outputs {
			if out[0] != out[1] {
				t.Fatal(errString(ps1.Outputs[o], out[0], out[1]))
			}
		}
	}

	iter := len(ps1.Inputs)
	if iter > 12 {
		iter = 12
	}
	iter = 1 << uint(iter)

	start := time.Now()

	c.Tick()
	// all 0
	check()
	// all 1
	for in := range inputs {
		inputs[in] = true
	}
	check()
	for i := 0; i < iter; i++ {
		for in := range inputs {
			inputs[in] = rnd.Int63()&(1<<62) != 0
		}
		check()
	}

	elapsed := time.Since(start)
	t.Logf("%d components. %d steps in %v. %d clock cycles => %.2f Hz", c.Size(), c.Steps(), elapsed, c.Cycles(), float64(c.Cycles())/elapsed.Seconds())
}
