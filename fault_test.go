// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem_test

import (
	"testing"

	"github.com/db47h/secmem"
)

func wfMask(forceZero bool) *secmem.FaultMask {
	return &secmem.FaultMask{
		Enabled:   true,
		Words:     secmem.OneHot(4, 16),
		Bits:      secmem.BitsOf(1, 7),
		ForceZero: forceZero,
	}
}

func TestFaultMask_ApplyWrite(t *testing.T) {
	p := secmem.NewECCPlan(4, true)
	cw := p.Encode(secmem.BitsOf(0x6, 4))
	f := wfMask(false)

	td := []struct {
		name   string
		addr   int
		write  bool
		strobe bool
		exp    secmem.Bits
	}{
		{"hit", 4, true, true, cw.Xor(secmem.BitsOf(1, 7))},
		{"other_address", 5, true, true, cw},
		{"no_strobe", 4, true, false, cw},
		{"no_write", 4, false, true, cw},
	}
	for _, d := range td {
		if got := f.ApplyWrite(d.addr, d.write, d.strobe, cw); !got.Equal(d.exp) {
			t.Errorf("%s: stored %v, expected %v", d.name, got, d.exp)
		}
	}

	// the corrupted word is still correctable
	data, flagged := p.Decode(f.ApplyWrite(4, true, true, cw))
	if !flagged || data.Uint64() != 0x6 {
		t.Errorf("Decode = %v, %v", data, flagged)
	}

	if got := wfMask(true).ApplyWrite(4, true, true, cw); !got.IsZero() || len(got) != 7 {
		t.Errorf("force zero stored %v", got)
	}
	f.Enabled = false
	if got := f.ApplyWrite(4, true, true, cw); !got.Equal(cw) {
		t.Errorf("disabled fault stored %v", got)
	}
}

func TestReadDisturbLatch_one_shot(t *testing.T) {
	p := secmem.NewECCPlan(4, true)
	f := &secmem.FaultMask{Enabled: true, Words: secmem.BitsOf(0x000C, 16), Bits: secmem.BitsOf(1, 7)}
	cw := p.Encode(secmem.BitsOf(0xD, 4))
	var l secmem.ReadDisturbLatch

	l.Issue(2, true)
	got := l.Consume(f, cw)
	if got.Equal(cw) {
		t.Fatal("masked read not disturbed")
	}
	if data, flagged := p.Decode(got); !flagged || data.Uint64() != 0xD {
		t.Fatalf("Decode = %v, %v", data, flagged)
	}
	if l.Armed {
		t.Fatal("latch still armed after consumption")
	}
	// same address, no new strobe
	if got := l.Consume(f, cw); !got.Equal(cw) {
		t.Fatal("read disturb injected twice")
	}
	l.Issue(2, false)
	if got := l.Consume(f, cw); !got.Equal(cw) {
		t.Fatal("read disturb injected without strobe")
	}
	// unmasked address consumes the strobe too
	l.Issue(5, true)
	if got := l.Consume(f, cw); !got.Equal(cw) || l.Armed {
		t.Fatal("unmasked address disturbed or latch left armed")
	}
}

func TestReadDisturbLatch_Disarm(t *testing.T) {
	f := &secmem.FaultMask{Enabled: true, Words: secmem.BitsOf(0x000C, 16), Bits: secmem.BitsOf(1, 7)}
	cw := secmem.NewBits(7)
	var l secmem.ReadDisturbLatch

	l.Issue(3, true)
	if got := f.ApplyRead(l.Addr, true, l.Armed, cw); got.Equal(cw) {
		t.Fatal("armed latch did not disturb masked read")
	}
	l.Disarm()
	if l.Armed || l.Addr != 3 {
		t.Fatalf("Disarm: armed %v, addr %d", l.Armed, l.Addr)
	}
	if got := f.ApplyRead(l.Addr, true, l.Armed, cw); !got.Equal(cw) {
		t.Fatal("disarmed latch disturbed read")
	}
}

func TestCapacity(t *testing.T) {
	if c := secmem.CapacityBytes(16, 7); c != 14 {
		t.Errorf("CapacityBytes(16, 7) = %d, expected 14", c)
	}
	td := []struct {
		n   int64
		out string
	}{
		{0, "0 Bytes"},
		{14, "14 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{3 << 20, "3.00 MB"},
		{5 << 30, "5.00 GB"},
		{2048 << 30, "2048.00 GB"},
	}
	for _, d := range td {
		if s := secmem.HumanBytes(d.n); s != d.out {
			t.Errorf("HumanBytes(%d) = %q, expected %q", d.n, s, d.out)
		}
	}
}

func TestDesign(t *testing.T) {
	d, err := secmem.NewDesign(secmem.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if d.Width() != 7 || d.Total() != 8*14 || d.Capacity() != 14 {
		t.Errorf("width = %d, total = %d, capacity = %d", d.Width(), d.Total(), d.Capacity())
	}
	if d.Interleave.Columns() != d.Addr.Columns {
		t.Errorf("interleave has %d columns, address map %d", d.Interleave.Columns(), d.Addr.Columns)
	}
	if s := d.Pattern(7).String(); s != "0001" {
		t.Errorf("Pattern(7) = %s", s)
	}
	if h := d.DataMask().Hex(); h != "F" {
		t.Errorf("DataMask = %s", h)
	}
}
