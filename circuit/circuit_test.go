package circuit_test

import (
	"strings"
	"testing"

	"github.com/db47h/secmem/circuit"
	hl "github.com/db47h/secmem/hwlib"
	"github.com/pkg/errors"
)

const testTPC = 16

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func testGate(t *testing.T, gate circuit.NewPartFn, result [][]bool) {
	t.Helper()
	part := gate("").PartSpec
	inputs := make([]bool, len(part.Inputs))
	outputs := make([]bool, len(part.Outputs))
	var conns []string
	var parts circuit.Parts
	for i, n := range part.Inputs {
		conns = append(conns, n+"="+n)
		in := &inputs[i]
		parts = append(parts, hl.Input(func() bool { return *in })("out="+n))
	}
	for i, n := range part.Outputs {
		conns = append(conns, n+"="+n)
		out := &outputs[i]
		parts = append(parts, hl.Output(func(v bool) { *out = v })("in="+n))
	}
	parts = append(parts, gate(strings.Join(conns, ", ")))
	c, err := circuit.NewCircuit(0, testTPC, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	for i := 0; i < 1<<uint(len(inputs)); i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = (i & (1 << uint(bit))) != 0
		}
		c.TickTock()
		for o, out := range outputs {
			if exp := result[o][i]; exp != out {
				t.Errorf("%s %v = %v, got %v", part.Name, inputs, exp, out)
			}
		}
	}
}

func Test_gate_custom(t *testing.T) {
	and, err := circuit.Chip("AND", "a, b", "out",
		hl.Nand("a=a, b=b, out=nand"),
		hl.Nand("a=nand, b=nand, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	or, err := circuit.Chip("OR", "a, b", "out",
		hl.Nand("a=a, b=a, out=notA"),
		hl.Nand("a=b, b=b, out=notB"),
		hl.Nand("a=notA, b=notB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	nor, err := circuit.Chip("NOR", "a, b", "out",
		or("a=a, b=b, out=orAB"),
		hl.Nand("a=orAB, b=orAB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	xor, err := circuit.Chip("XOR", "a, b", "out",
		hl.Nand("a=a, b=b, out=nandAB"),
		hl.Nand("a=a, b=nandAB, out=w0"),
		hl.Nand("a=b, b=nandAB, out=w1"),
		hl.Nand("a=w0, b=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	not, err := circuit.Chip("NOT", "a", "out",
		hl.Nand("a=a, b=a, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	mux, err := circuit.Chip("MUX", "a, b, sel", "out",
		hl.Not("in=sel, out=notSel"),
		hl.And("a=a, b=notSel, out=w0"),
		hl.And("a=b, b=sel, out=w1"),
		hl.Or("a=w0, b=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	dmux, err := circuit.Chip("DMUX", "in, sel", "a, b",
		hl.Not("in=sel, out=notSel"),
		hl.And("a=in, b=notSel, out=a"),
		hl.And("a=in, b=sel, out=b"),
	)
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name   string
		gate   circuit.NewPartFn
		result [][]bool
	}{
		{"AND", and, [][]bool{{false, false, false, true}}},
		{"OR", or, [][]bool{{false, true, true, true}}},
		{"NOR", nor, [][]bool{{true, false, false, false}}},
		{"XOR", xor, [][]bool{{false, true, true, false}}},
		{"NOT", not, [][]bool{{true, false}}},
		{"MUX", mux, [][]bool{{false, false, false, true, true, false, true, true}}},
		{"DMUX", dmux, [][]bool{{false, false, true, false}, {false, false, false, true}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

// Test a basic clock with a Nor gate.
//
// The purpose of this test is to catch changes in propagation delays
// from Inputs and Outputs as well as testing loops between input and outputs.
func Test_clock(t *testing.T) {
	var disable, tick bool

	check := func(v bool) {
		t.Helper()
		if tick != v {
			t.Errorf("expected %v, got %v", v, tick)
		}
	}
	clk, err := circuit.Chip("CLK", "disable", "tick",
		hl.Nor("a=disable, b=tick, out=tick"),
	)
	if err != nil {
		t.Fatal(err)
	}
	c, err := circuit.NewCircuit(0, testTPC,
		hl.Input(func() bool { return disable })("out=disable"),
		clk("disable=disable, tick=out"),
		hl.Output(func(out bool) { tick = out })("in=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	// Output is delayed by one step after the Nor updates it.
	disable = true
	c.Step()
	check(false)
	c.Step()
	// propagation glitch
	check(true)
	c.Step()
	check(false)
	c.Step()
	check(false)

	disable = false
	c.Step()
	check(false)
	c.Step()
	check(false)
	c.Step()
	// the clock starts ticking now.
	check(true)
	c.Step()
	check(false)
	c.Step()
	check(true)
	disable = true
	c.Step()
	check(false)
	c.Step()
	check(true)
	c.Step()
	// the clock stops ticking now.
	check(false)
	c.Step()
	check(false)
}

func TestCircuit_clock(t *testing.T) {
	var clk []bool
	c, err := circuit.NewCircuit(1, 5,
		hl.Output(func(v bool) { clk = append(clk, v) })("in=clk"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	if c.SPC() != 8 {
		t.Fatalf("SPC() = %d, expected 8", c.SPC())
	}
	if !c.AtTick() || c.AtTock() {
		t.Fatal("expected AtTick() && !AtTock() at step 0")
	}
	c.Tick()
	if c.Steps() != 4 || !c.AtTock() {
		t.Fatalf("after Tick: Steps() = %d, AtTock() = %v", c.Steps(), c.AtTock())
	}
	c.Tock()
	c.Run(2)
	if c.Steps() != 24 || c.Cycles() != 3 {
		t.Fatalf("Steps() = %d, Cycles() = %d, expected 24, 3", c.Steps(), c.Cycles())
	}
	exp := []bool{true, true, true, true, false, false, false, false}
	for i, v := range clk {
		if v != exp[i%8] {
			t.Fatalf("clk at step %d = %v, expected %v", i, v, exp[i%8])
		}
	}
}

func TestNewCircuit_empty(t *testing.T) {
	if _, err := circuit.NewCircuit(0, testTPC); err == nil {
		t.Fatal("expected error for empty part list")
	}
}
