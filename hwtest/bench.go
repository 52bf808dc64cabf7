// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
	"github.com/db47h/secmem/hwlib"
	"github.com/pkg/errors"
)

// Expect is the outcome expected from a testbench read.
type Expect int

// Expected read outcomes.
const (
	ExpectNoError   Expect = iota // data matches, no error flagged
	ExpectCorrected               // data matches, error flagged
	ExpectFlagged                 // error flagged, data not checked
)

func (e Expect) String() string {
	switch e {
	case ExpectNoError:
		return "no-error"
	case ExpectCorrected:
		return "corrected"
	case ExpectFlagged:
		return "error flagged"
	}
	return "Expect(" + strconv.Itoa(int(e)) + ")"
}

// Check is the result of one checked read.
type Check struct {
	Phase  int
	Addr   int
	Expect Expect
	Want   secmem.Bits
	Got    secmem.Bits
	Err    bool
	Pass   bool
}

func (c Check) String() string {
	res := "PASS"
	if !c.Pass {
		res = "FAIL"
	}
	if c.Expect != ExpectNoError {
		res += " (" + c.Expect.String() + ")"
	}
	e := 0
	if c.Err {
		e = 1
	}
	if c.Expect == ExpectFlagged {
		return fmt.Sprintf("Read  -> Addr:0x%x Got:0x%s ERR:%d  %s", c.Addr, c.Got.Hex(), e, res)
	}
	return fmt.Sprintf("Read  -> Addr:0x%x Expect:0x%s Got:0x%s ERR:%d  %s", c.Addr, c.Want.Hex(), c.Got.Hex(), e, res)
}

// Summary holds the testbench counters. Pass and Fail count reads expected to
// complete without error, ErrPass and ErrFail those expected to flag an error.
type Summary struct {
	Pass    int
	Fail    int
	ErrPass int
	ErrFail int
}

// Passed returns true if no check failed.
func (s Summary) Passed() bool {
	return s.Fail == 0 && s.ErrFail == 0
}

// Result returns the one line verdict of the run.
func (s Summary) Result() string {
	if s.Passed() {
		return "ALL PASSED"
	}
	return "FAILED"
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Pass (no-error)        : %d\n", s.Pass)
	fmt.Fprintf(&b, "  Fail (no-error)        : %d\n", s.Fail)
	fmt.Fprintf(&b, "  Pass (expect error)    : %d\n", s.ErrPass)
	fmt.Fprintf(&b, "  Fail (expect error)    : %d\n", s.ErrFail)
	fmt.Fprintf(&b, "  Result                 : %s", s.Result())
	return b.String()
}

func (s *Summary) add(c Check) {
	switch {
	case c.Expect == ExpectNoError && c.Pass:
		s.Pass++
	case c.Expect == ExpectNoError:
		s.Fail++
	case c.Pass:
		s.ErrPass++
	default:
		s.ErrFail++
	}
}

// Bench drives a simulated memory macro through the self-checking test
// sequence:
//
//	Phase 1: write the test pattern at every address.
//	Phase 2: read back every address, expecting no error.
//	Phase 3: read every address with the fault strobe set. Addresses hit by
//	         the read disturb must be corrected and flagged.
//	Phase 4: reset, write every address with the fault strobe set, then read
//	         back. Addresses hit by the write failure must be flagged.
//
// Bench methods are not safe for concurrent use.
type Bench struct {
	// OnPhase, if not nil, is called at the start of each phase.
	OnPhase func(phase int, title string)
	// OnCheck, if not nil, is called after each checked read.
	OnCheck func(Check)

	d *secmem.Design
	c *circuit.Circuit

	// inputs
	a                int
	fs               bool
	data             secmem.Bits
	nrst, ncen, nwen bool

	// outputs
	q   secmem.Bits
	err bool
	ccw secmem.Bits
}

// NewBench builds the macro of d and wraps it into a testbench. workers is
// passed to circuit.NewCircuit. The returned Bench must be released with Close.
func NewBench(d *secmem.Design, workers int) (*Bench, error) {
	b := &Bench{d: d, ncen: true, nwen: true}
	aw, m, n, f := d.Addr.AddrBits, d.WordWidth, d.Width(), d.FaultWidth

	parts := circuit.Parts{
		hwlib.InputN(f, func() secmem.Bits { return secmem.Bits{b.fs} })("out=fs"),
		hwlib.InputN(m, func() secmem.Bits { return b.data })("out=d"),
		hwlib.Input(func() bool { return b.nrst })("out=nrst"),
		hwlib.Input(func() bool { return b.ncen })("out=ncen"),
		hwlib.Input(func() bool { return b.nwen })("out=nwen"),
		hwlib.Macro(d)(conns(
			wire("a", "a", aw),
			"fs=fs, d=d, nrst=nrst, ncen=ncen, nwen=nwen, q=q, err=err, ccw=ccw",
		)),
		hwlib.OutputN(m, func(v secmem.Bits) { b.q = v })("in=q"),
		hwlib.Output(func(v bool) { b.err = v })("in=err"),
		hwlib.OutputN(n, func(v secmem.Bits) { b.ccw = v })("in=ccw"),
	}
	if aw > 0 {
		parts = append(parts, hwlib.InputN(aw, func() secmem.Bits { return secmem.BitsOf(uint64(b.a), aw) })("out=a"))
	}

	c, err := circuit.NewCircuit(workers, hwlib.MacroSPC, parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build testbench")
	}
	b.c = c
	return b, nil
}

// Close releases the resources used by the simulation.
func (b *Bench) Close() {
	b.c.Dispose()
}

// Circuit returns the underlying circuit.
func (b *Bench) Circuit() *circuit.Circuit {
	return b.c
}

func (b *Bench) idle() {
	b.a, b.fs, b.data = 0, false, nil
	b.ncen, b.nwen = true, true
}

// Reset holds the reset input low for three clock cycles.
func (b *Bench) Reset() {
	b.idle()
	b.nrst = false
	b.c.Run(3)
	b.nrst = true
}

// Write writes data at addr. fi drives the fault strobe for the duration of
// the command. It returns the codeword registered by the encoder, before any
// write failure.
func (b *Bench) Write(addr int, data secmem.Bits, fi bool) secmem.Bits {
	b.a, b.fs, b.data = addr, fi, data
	b.ncen, b.nwen = false, false
	b.c.TickTock()
	b.idle()
	b.c.TickTock()
	cw := b.ccw.Clone()
	b.c.Run(hwlib.WriteLatency - 1)
	return cw
}

// Read reads the word at addr. fi drives the fault strobe for the duration of
// the command.
func (b *Bench) Read(addr int, fi bool) (q secmem.Bits, err bool) {
	b.a, b.fs, b.data = addr, fi, nil
	b.ncen, b.nwen = false, true
	b.c.TickTock()
	b.idle()
	b.c.Run(hwlib.ReadLatency)
	q, err = b.q.Clone(), b.err
	b.c.TickTock()
	return q, err
}

func wire(pp, cp string, width int) string {
	if width == 0 {
		return ""
	}
	return pp + "=" + cp
}

func conns(cs ...string) string {
	var out []string
	for _, c := range cs {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, ", ")
}

func (b *Bench) check(s *Summary, phase, addr int, exp Expect, q secmem.Bits, e bool) {
	want := b.d.Pattern(addr)
	c := Check{Phase: phase, Addr: addr, Expect: exp, Want: want, Got: q, Err: e}
	switch exp {
	case ExpectNoError:
		c.Pass = q.Equal(want) && !e
	case ExpectCorrected:
		c.Pass = q.Equal(want) && e
	case ExpectFlagged:
		c.Pass = e
	}
	s.add(c)
	if b.OnCheck != nil {
		b.OnCheck(c)
	}
}

func (b *Bench) phase(n int, title string) {
	if b.OnPhase != nil {
		b.OnPhase(n, title)
	}
}

// Run resets the macro and runs the complete test sequence.
func (b *Bench) Run() Summary {
	var s Summary
	words := b.d.Words

	b.Reset()

	b.phase(1, "Normal Write All")
	for i := 0; i < words; i++ {
		b.Write(i, b.d.Pattern(i), false)
	}

	b.phase(2, "Normal Read All (No Error)")
	for i := 0; i < words; i++ {
		q, e := b.Read(i, false)
		b.check(&s, 2, i, ExpectNoError, q, e)
	}

	b.phase(3, "Read Disturb (Expect Corrected + ERR=1 on masked addrs)")
	for i := 0; i < words; i++ {
		q, e := b.Read(i, true)
		exp := ExpectNoError
		if b.d.ReadDisturb.Hit(i) {
			exp = ExpectCorrected
		}
		b.check(&s, 3, i, exp, q, e)
	}

	b.Reset()
	b.phase(4, "Write Failure (Expect ERR=1 on masked addrs)")
	for i := 0; i < words; i++ {
		b.Write(i, b.d.Pattern(i), true)
	}
	for i := 0; i < words; i++ {
		q, e := b.Read(i, false)
		exp := ExpectNoError
		if b.d.WriteFailure.Hit(i) {
			exp = ExpectFlagged
		}
		b.check(&s, 4, i, exp, q, e)
	}

	return s
}
