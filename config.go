// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// MaxWordWidth is the largest supported data word width.
const MaxWordWidth = 1024

// Params holds the raw generator parameters as collected from the command line
// or any other front-end. Masks are kept as text and parsed by Config.
type Params struct {
	Words      int // number of addressable words, power of two
	WordWidth  int // data bits per word
	Mux        int // column multiplexing factor, power of two dividing Words
	FaultWidth int // width of the fault command input

	WFWordMask string // write-failure word mask, one bit per address
	RDWordMask string // read-disturb word mask, one bit per address
	WFBitMask  string // write-failure codeword bit mask
	RDBitMask  string // read-disturb codeword bit mask

	WFForceZero bool // write-failure hits store an all zero codeword

	ECC          bool
	WriteFailure bool
	ReadDisturb  bool

	// Output location. Only used by the artifact emitter.
	OutputDir string
	Subfolder string
}

// DefaultParams returns the default generator parameters.
func DefaultParams() Params {
	return Params{
		Words:        16,
		WordWidth:    4,
		Mux:          2,
		FaultWidth:   1,
		WFWordMask:   "0x0030",
		RDWordMask:   "0x000C",
		WFBitMask:    "0b0000001",
		RDBitMask:    "0b0000001",
		ECC:          true,
		WriteFailure: true,
		ReadDisturb:  true,
		OutputDir:    "build",
	}
}

// Config is a validated memory configuration.
type Config struct {
	Words      int
	WordWidth  int
	Mux        int
	FaultWidth int
	ECC        bool

	WriteFailure FaultMask
	ReadDisturb  FaultMask
}

func isPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// Config validates p and returns the corresponding configuration. Checks are
// performed in order and the first violation is returned.
func (p *Params) Config() (*Config, error) {
	if !isPow2(p.Words) {
		return nil, errors.Wrapf(ErrWordNotPow2, "word = %d", p.Words)
	}
	if !isPow2(p.Mux) {
		return nil, errors.Wrapf(ErrMuxNotPow2, "mux = %d", p.Mux)
	}
	if p.Words%p.Mux != 0 {
		return nil, errors.Wrapf(ErrMuxNotDivisor, "word = %d, mux = %d", p.Words, p.Mux)
	}
	if p.WordWidth < 1 || p.WordWidth > MaxWordWidth {
		return nil, errors.Wrapf(ErrWordWidthRange, "word_width = %d", p.WordWidth)
	}
	if p.FaultWidth <= 0 {
		return nil, errors.Wrapf(ErrFaultWidth, "fault = %d", p.FaultWidth)
	}

	n := p.WordWidth + ParityWidth(p.WordWidth, p.ECC)
	c := &Config{
		Words:      p.Words,
		WordWidth:  p.WordWidth,
		Mux:        p.Mux,
		FaultWidth: p.FaultWidth,
		ECC:        p.ECC,
		WriteFailure: FaultMask{
			Enabled:   p.WriteFailure,
			ForceZero: p.WFForceZero,
		},
		ReadDisturb: FaultMask{
			Enabled: p.ReadDisturb,
		},
	}
	masks := []struct {
		name  string
		text  string
		width int
		dst   *Bits
	}{
		{"wf_word_mask", p.WFWordMask, p.Words, &c.WriteFailure.Words},
		{"rd_word_mask", p.RDWordMask, p.Words, &c.ReadDisturb.Words},
		{"wf_bit_mask", p.WFBitMask, n, &c.WriteFailure.Bits},
		{"rd_bit_mask", p.RDBitMask, n, &c.ReadDisturb.Bits},
	}
	for _, m := range masks {
		b, err := ParseMask(m.text, m.width)
		if err != nil {
			return nil, errors.Wrap(err, m.name)
		}
		*m.dst = b
	}

	// disabled injection points behave as if their masks were zero.
	if !c.WriteFailure.Enabled {
		c.WriteFailure.Words = NewBits(p.Words)
		c.WriteFailure.Bits = NewBits(n)
	}
	if !c.ReadDisturb.Enabled {
		c.ReadDisturb.Words = NewBits(p.Words)
		c.ReadDisturb.Bits = NewBits(n)
	}
	return c, nil
}

// ParseMask parses a non-negative integer in hexadecimal (0x prefix), binary
// (0b prefix) or decimal notation and truncates it to width bits. Underscores
// are ignored.
func ParseMask(text string, width int) (Bits, error) {
	txt := strings.ToLower(strings.Replace(strings.TrimSpace(text), "_", "", -1))
	base := 10
	digits := txt
	switch {
	case strings.HasPrefix(txt, "0x"):
		base, digits = 16, txt[2:]
	case strings.HasPrefix(txt, "0b"):
		base, digits = 2, txt[2:]
	}
	neg := false
	if base == 10 && digits != "" && (digits[0] == '-' || digits[0] == '+') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if digits == "" || strings.IndexAny(digits, "+-") >= 0 {
		return nil, errors.Wrapf(ErrMaskSyntax, "%q", text)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, errors.Wrapf(ErrMaskSyntax, "%q", text)
	}
	if neg && v.Sign() != 0 {
		return nil, errors.Wrapf(ErrMaskNegative, "%q", text)
	}
	return BitsFromInt(v, width), nil
}
