package hwlib_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/circuit"
	hl "github.com/db47h/secmem/hwlib"
	"github.com/db47h/secmem/hwtest"
)

func newBench(p secmem.Params) (*secmem.Design, *hwtest.Bench) {
	d, err := secmem.NewDesign(p)
	Expect(err).NotTo(HaveOccurred())
	b, err := hwtest.NewBench(d, 0)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(b.Close)
	return d, b
}

var _ = Describe("Macro", func() {
	var (
		d     *secmem.Design
		bench *hwtest.Bench
	)

	BeforeEach(func() {
		d, bench = newBench(secmem.DefaultParams())
		bench.Reset()
	})

	It("should pass the self-checking testbench", func() {
		var checks []hwtest.Check
		bench.OnCheck = func(c hwtest.Check) { checks = append(checks, c) }

		s := bench.Run()

		Expect(s).To(Equal(hwtest.Summary{Pass: 44, ErrPass: 4}))
		Expect(s.Result()).To(Equal("ALL PASSED"))
		Expect(checks).To(HaveLen(3 * d.Words))
		Expect(checks[0].Phase).To(Equal(2))
		Expect(checks[3*d.Words-1].Phase).To(Equal(4))
	})

	It("should read back written data", func() {
		data := secmem.BitsOf(0x5, 4)
		bench.Write(9, data, false)

		q, e := bench.Read(9, false)

		Expect(q).To(Equal(data))
		Expect(e).To(BeFalse())
	})

	It("should register the encoded codeword", func() {
		data := secmem.BitsOf(0xC, 4)

		cw := bench.Write(1, data, false)

		Expect(cw).To(Equal(d.ECC.Encode(data)))
	})

	It("should keep words sharing a row apart", func() {
		bench.Write(6, secmem.BitsOf(0x3, 4), false)
		bench.Write(7, secmem.BitsOf(0xE, 4), false)

		q6, _ := bench.Read(6, false)
		q7, _ := bench.Read(7, false)

		Expect(q6.Uint64()).To(Equal(uint64(0x3)))
		Expect(q7.Uint64()).To(Equal(uint64(0xE)))
	})

	It("should correct and flag a read disturb", func() {
		bench.Write(2, d.Pattern(2), false)

		q, e := bench.Read(2, true)

		Expect(q).To(Equal(d.Pattern(2)))
		Expect(e).To(BeTrue())
	})

	It("should disturb a read only once", func() {
		bench.Write(3, d.Pattern(3), false)
		bench.Read(3, true)

		q, e := bench.Read(3, false)

		Expect(q).To(Equal(d.Pattern(3)))
		Expect(e).To(BeFalse())
	})

	It("should not disturb reads outside the word mask", func() {
		bench.Write(8, d.Pattern(8), false)

		q, e := bench.Read(8, true)

		Expect(q).To(Equal(d.Pattern(8)))
		Expect(e).To(BeFalse())
	})

	It("should flag a write failure on read back", func() {
		bench.Write(4, d.Pattern(4), true)

		_, e := bench.Read(4, false)

		Expect(e).To(BeTrue())
	})

	It("should only fail writes issued with the fault strobe", func() {
		bench.Write(5, d.Pattern(5), false)

		q, e := bench.Read(5, false)

		Expect(q).To(Equal(d.Pattern(5)))
		Expect(e).To(BeFalse())
	})

	It("should clear storage on reset", func() {
		bench.Write(1, secmem.BitsOf(0xF, 4), false)
		bench.Reset()

		q, e := bench.Read(1, false)

		// an all zero codeword fails every inverted parity check
		want, flagged := d.ECC.Decode(secmem.NewBits(d.Width()))
		Expect(flagged).To(BeTrue())
		Expect(q).To(Equal(want))
		Expect(e).To(BeTrue())
	})
})

var _ = Describe("Macro without ECC", func() {
	It("should pass data through when nothing is injected", func() {
		p := secmem.DefaultParams()
		p.ECC, p.WriteFailure, p.ReadDisturb = false, false, false
		_, bench := newBench(p)

		s := bench.Run()

		Expect(s).To(Equal(hwtest.Summary{Pass: 48}))
	})

	It("should never flag an error", func() {
		p := secmem.DefaultParams()
		p.ECC = false
		d, bench := newBench(p)
		Expect(d.Width()).To(Equal(4))

		s := bench.Run()

		Expect(s).To(Equal(hwtest.Summary{Pass: 44, ErrFail: 4}))
		Expect(s.Result()).To(Equal("FAILED"))
	})
})

var _ = Describe("Macro geometries", func() {
	DescribeTable("should pass the self-checking testbench",
		func(words, width, mux int) {
			p := secmem.DefaultParams()
			p.Words, p.WordWidth, p.Mux = words, width, mux
			_, bench := newBench(p)

			s := bench.Run()

			Expect(s.Passed()).To(BeTrue(), s.String())
			Expect(s.Pass + s.ErrPass).To(Equal(3 * words))
		},
		Entry("single row", 8, 8, 8),
		Entry("no column mux", 16, 4, 1),
		Entry("one bit words", 4, 1, 2),
		Entry("single word", 1, 4, 1),
		Entry("wide words", 8, 26, 2),
	)
})

var _ = Describe("RowDecode", func() {
	It("should match a gate level decoder", func() {
		p := secmem.DefaultParams()
		p.Mux = 4
		d, err := secmem.NewDesign(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Addr.RowBits).To(Equal(2))

		ref, err := circuit.Chip("myRowDecode", "ar[2]", "arx[4]",
			hl.Not("in=ar[0], out=n0"),
			hl.Not("in=ar[1], out=n1"),
			hl.And("a=n0, b=n1, out=arx[0]"),
			hl.And("a=ar[0], b=n1, out=arx[1]"),
			hl.And("a=n0, b=ar[1], out=arx[2]"),
			hl.And("a=ar[0], b=ar[1], out=arx[3]"),
		)
		Expect(err).NotTo(HaveOccurred())

		hwtest.ComparePart(GinkgoT(), 8, hl.RowDecode(d), ref)
	})
})

var _ = Describe("ReadDisturb", func() {
	It("should be a buffer when disabled", func() {
		p := secmem.DefaultParams()
		p.ReadDisturb = false
		d, err := secmem.NewDesign(p)
		Expect(err).NotTo(HaveOccurred())

		ref, err := circuit.Chip("myFiRdDist", "a[4], read, en, in[7]", "out[7]",
			hl.Buffer(7)("in=in, out=out"),
		)
		Expect(err).NotTo(HaveOccurred())

		hwtest.ComparePart(GinkgoT(), 8, hl.ReadDisturb(d), ref)
	})
})
