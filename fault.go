// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

// FaultMask configures one fault injection point.
//
// Words has one bit per linear address, Bits one bit per codeword index. A
// disabled FaultMask never hits.
type FaultMask struct {
	Enabled   bool
	Words     Bits
	Bits      Bits
	ForceZero bool // only meaningful for write failures
}

// Hit returns true if addr is selected by the word mask.
func (f *FaultMask) Hit(addr int) bool {
	return f.Enabled && f.Words.Bit(addr)
}

// ApplyWrite returns the codeword actually stored when writing cw at addr.
//
// The write failure hits if a write is in progress, the fault strobe is
// asserted and addr is selected by the word mask. A hit stores zero if
// ForceZero is set, cw ^ Bits otherwise. Any other case stores cw unchanged.
func (f *FaultMask) ApplyWrite(addr int, write, strobe bool, cw Bits) Bits {
	if !write || !strobe || !f.Hit(addr) {
		return cw
	}
	if f.ForceZero {
		return NewBits(len(cw))
	}
	return cw.Xor(f.Bits)
}

// ApplyRead returns the codeword handed to the decoder when cw is read back
// from storage. addr and armed are the values latched when the read command was
// issued.
func (f *FaultMask) ApplyRead(addr int, read, armed bool, cw Bits) Bits {
	if !read || !armed || !f.Hit(addr) {
		return cw
	}
	return cw.Xor(f.Bits)
}

// ReadDisturbLatch holds the read address and fault strobe captured when a
// read command is issued. The strobe is one-shot: it is cleared once consumed.
type ReadDisturbLatch struct {
	Addr  int
	Armed bool
}

// Issue latches addr and strobe for a new read command.
func (l *ReadDisturbLatch) Issue(addr int, strobe bool) {
	l.Addr = addr
	l.Armed = strobe
}

// Disarm clears the strobe once the read data has left the injection point.
// The address is kept.
func (l *ReadDisturbLatch) Disarm() {
	l.Armed = false
}

// Consume applies the read disturb f to cw using the latched state, then
// disarms the latch whether or not the fault hit. The macro splits these two
// steps across pipeline stages: ApplyRead while the data passes, Disarm once
// it reaches the decoder.
func (l *ReadDisturbLatch) Consume(f *FaultMask, cw Bits) Bits {
	out := f.ApplyRead(l.Addr, true, l.Armed, cw)
	l.Disarm()
	return out
}
