// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/db47h/secmem"
	"github.com/db47h/secmem/hwtest"
	"github.com/db47h/secmem/internal/record"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var (
		f       paramFlags
		workers int
		db      string
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the self-checking testbench on the simulated macro.",
		Long: `simulate builds a cycle-accurate model of the macro and runs the ` +
			`four phase testbench against it: write all, read all, read with ` +
			`read disturb, then write with write failure and read back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := logger(cmd)
			out := cmd.OutOrStdout()
			p, err := f.params(cmd.Flags(), cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			d, err := secmem.NewDesign(p)
			if err != nil {
				return err
			}
			b, err := hwtest.NewBench(d, workers)
			if err != nil {
				return err
			}
			defer b.Close()
			l.Printf("simulating %d words of %d bits, %d steps per cycle", d.Words, d.Width(), b.Circuit().SPC())

			var rec *record.Recorder
			if db != "" {
				if rec, err = record.Open(db); err != nil {
					return err
				}
				defer rec.Close()
				id, err := rec.Begin(d)
				if err != nil {
					return err
				}
				l.Printf("recording run %s in %s", id, db)
			}

			b.OnPhase = func(n int, title string) {
				if n > 1 && !quiet {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "---- Phase %d: %s ----\n", n, title)
			}
			b.OnCheck = func(c hwtest.Check) {
				if !quiet || !c.Pass {
					fmt.Fprintln(out, c)
				}
				if rec != nil {
					rec.Check(c)
				}
			}

			fmt.Fprintf(out, "\n====================\n  FFRAM02 RTL Test (FI)\n====================\n\n")
			s := b.Run()
			fmt.Fprintf(out, "\n========================================\n")
			fmt.Fprintf(out, "            Test Summary (FI)\n")
			fmt.Fprintf(out, "========================================\n")
			fmt.Fprintln(out, s)
			fmt.Fprintf(out, "========================================\n")
			l.Printf("%d cycles simulated", b.Circuit().Cycles())

			if rec != nil {
				if err = rec.Finish(s); err != nil {
					return err
				}
			}
			if !s.Passed() {
				return errors.New("testbench failed")
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVar(&workers, "workers", 0, "simulation worker goroutines (0 for GOMAXPROCS)")
	cmd.Flags().StringVar(&db, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print failed checks")
	return cmd
}
