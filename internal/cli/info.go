// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/db47h/secmem"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func positions(idx []int) string {
	s := make([]string, len(idx))
	for i, v := range idx {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, " ")
}

func faultInfo(f *secmem.FaultMask) string {
	if !f.Enabled {
		return "OFF"
	}
	var hits []string
	for a := range f.Words {
		if f.Hit(a) {
			hits = append(hits, "0x"+strconv.FormatInt(int64(a), 16))
		}
	}
	if len(hits) == 0 {
		hits = []string{"none"}
	}
	s := fmt.Sprintf("ON, words %s, bits %s", strings.Join(hits, " "), f.Bits)
	if f.ForceZero {
		s += ", force zero"
	}
	return s
}

// describe prints the derived layout of d.
func describe(w io.Writer, d *secmem.Design) {
	a := d.Addr
	bits := int64(d.Words) * int64(d.Width())
	fmt.Fprintf(w, "words        %s x %d bits\n", humanize.Comma(int64(d.Words)), d.WordWidth)
	fmt.Fprintf(w, "codeword     %d bits (%d data + %d parity)\n", d.Width(), d.WordWidth, d.ECC.ParityWidth)
	if d.ECC.ParityWidth > 0 {
		fmt.Fprintf(w, "parity at    %s\n", positions(d.ECC.Parity))
	}
	fmt.Fprintf(w, "data at      %s\n", positions(d.ECC.Data))
	fmt.Fprintf(w, "address      %d bits (row %d, column %d)\n", a.AddrBits, a.RowBits, a.ColBits)
	fmt.Fprintf(w, "array        %s rows x %s columns, %s cells\n",
		humanize.Comma(int64(a.Rows)), humanize.Comma(int64(a.Columns)), humanize.Comma(int64(d.Total())))
	fmt.Fprintf(w, "capacity     %s (%s bits)\n", secmem.HumanBytes(d.Capacity()), humanize.Comma(bits))
	fmt.Fprintf(w, "WF           %s\n", faultInfo(&d.WriteFailure))
	fmt.Fprintf(w, "RD           %s\n", faultInfo(&d.ReadDisturb))
}

func newInfoCmd() *cobra.Command {
	var f paramFlags
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the layout derived from the parameters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.params(cmd.Flags(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			d, err := secmem.NewDesign(p)
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), d)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}
