// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"
	"io"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/rtl"
	"github.com/spf13/cobra"
)

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// report prints the generation summary.
func report(w io.Writer, dir string, d *secmem.Design) {
	fmt.Fprintf(w, "\n[done] output written to: %s\n", dir)
	fmt.Fprintf(w, "- WORD=%d, WORD_WIDTH=%d, MUX=%d, FAULT=%d\n", d.Words, d.WordWidth, d.Mux, d.FaultWidth)
	fmt.Fprintf(w, "- ECC=%s, WF=%s, RD=%s\n", onOff(d.Config.ECC), onOff(d.WriteFailure.Enabled), onOff(d.ReadDisturb.Enabled))
	fmt.Fprintf(w, "- Hamming (m, r, n) = (%d, %d, %d)\n", d.WordWidth, d.ECC.ParityWidth, d.Width())
	fmt.Fprintf(w, "- capacity: %s\n", secmem.HumanBytes(d.Capacity()))
}

func newGenerateCmd() *cobra.Command {
	var f paramFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit the Verilog sources of a memory macro.",
		Long: `generate writes the Verilog modules, the self-checking testbench, ` +
			`a Makefile and a run.f file list into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := logger(cmd)
			p, err := f.params(cmd.Flags(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			d, err := secmem.NewDesign(p)
			if err != nil {
				return err
			}
			dir := rtl.OutputDir(p.OutputDir, p.Subfolder)
			l.Printf("emitting %d files to %s", len(rtl.Files), dir)
			sink, err := rtl.DirSink(dir)
			if err != nil {
				return err
			}
			if err = rtl.Emit(d, sink); err != nil {
				return err
			}
			report(cmd.OutOrStdout(), dir, d)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}
