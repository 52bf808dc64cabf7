package hwlib_test

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
	hl "github.com/db47h/secmem/hwlib"
	"github.com/db47h/secmem/hwtest"
)

const testTPC = 8

func testGate(t *testing.T, gate circuit.NewPartFn, result [][]bool) {
	t.Helper()
	part := gate("").PartSpec // build dummy gate just to get to the partspec
	inputs := make([]bool, len(part.Inputs))
	outputs := make([]bool, len(part.Outputs))
	var w strings.Builder
	parts := make(circuit.Parts, 0, len(part.Inputs)+len(part.Outputs)+1)
	for i, n := range part.Inputs {
		w.WriteByte(',')
		w.WriteString(n + "=" + n)
		in := &inputs[i]
		parts = append(parts, hl.Input(func() bool { return *in })("out="+n))
	}
	for i, n := range part.Outputs {
		w.WriteByte(',')
		w.WriteString(n + "=" + n)
		out := &outputs[i]
		parts = append(parts, hl.Output(func(v bool) { *out = v })("in="+n))
	}
	wr := w.String()
	// trim first ','
	if len(wr) > 0 {
		wr = wr[1:]
	}
	parts = append(parts, gate(wr))
	c, err := circuit.NewCircuit(0, testTPC, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	tot := 1 << uint(len(part.Inputs))
	for i := 0; i < tot; i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = (i & (1 << uint(bit))) != 0
		}
		c.TickTock()
		for o, out := range outputs {
			exp := result[o][i]
			if exp != out {
				t.Errorf("%s %v = %v, got %v", part.Name, inputs, exp, out)
			}
		}
	}
}

func Test_gate_builtin(t *testing.T) {
	tr, err := circuit.Chip("TRUE", "a", "out",
		hl.And("a=true, b=true, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	fa, err := circuit.Chip("FALSE", "a", "out",
		hl.Or("a=false, b=false, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name   string
		gate   circuit.NewPartFn
		result [][]bool // a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1
	}{
		{"NOT", hl.Not, [][]bool{{true, false}}},
		{"AND", hl.And, [][]bool{{false, false, false, true}}},
		{"NAND", hl.Nand, [][]bool{{true, true, true, false}}},
		{"OR", hl.Or, [][]bool{{false, true, true, true}}},
		{"NOR", hl.Nor, [][]bool{{true, false, false, false}}},
		{"XOR", hl.Xor, [][]bool{{false, true, true, false}}},
		{"XNOR", hl.Xnor, [][]bool{{true, false, false, true}}},
		{"TRUE", tr, [][]bool{{true, true}}},
		{"FALSE", fa, [][]bool{{false, false}}},
		// ncen, nwen => write, read
		{"CONTROL", hl.ControlCircuit, [][]bool{{true, false, false, false}, {false, true, false, false}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

func TestInputN(t *testing.T) {
	var in, out secmem.Bits
	c, err := circuit.NewCircuit(0, testTPC,
		hl.InputN(16, func() secmem.Bits { return in })("out[0..15]= t[0..15]"),
		hl.OutputN(16, func(v secmem.Bits) { out = v })("in = t"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	in = secmem.BitsOf(0x80a2, 16)
	c.TickTock()
	if !out.Equal(in) {
		t.Fatalf("Expected %s, got %s", in.Hex(), out.Hex())
	}
	// short values are zero extended
	in = secmem.BitsOf(0x3, 2)
	c.TickTock()
	if out.Uint64() != 3 {
		t.Fatalf("Expected 3, got %s", out.Hex())
	}
}

func TestAndNWay(t *testing.T) {
	var in uint16
	var out bool
	c, err := circuit.NewCircuit(0, testTPC,
		hl.InputN(16, func() secmem.Bits { return secmem.BitsOf(uint64(in), 16) })("out=a"),
		hl.AndNWay(16)("in=a, out=o"),
		hl.Output(func(v bool) { out = v })("in=o"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	f := func(x uint16) bool {
		in = x
		c.TickTock()
		return out == (x == 0xffff)
	}
	if err = quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	in = 0xffff
	c.TickTock()
	if !out {
		t.Fatal("AND16Way(0xffff) = false")
	}
}

func TestBuffer(t *testing.T) {
	buf, err := circuit.Chip("myBuffer", "in[4]", "out[4]",
		hl.Or("a=in[0], b=in[0], out=out[0]"),
		hl.Or("a=in[1], b=in[1], out=out[1]"),
		hl.Or("a=in[2], b=in[2], out=out[2]"),
		hl.Or("a=in[3], b=in[3], out=out[3]"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 4, hl.Buffer(4), buf)
}
