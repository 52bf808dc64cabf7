// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package cli implements the secmemgen command line interface.
package cli

import (
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd returns the secmemgen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "secmemgen",
		Short: "Generate single-error-correcting memory macros.",
		Long: `secmemgen generates the Verilog sources of a memory macro protected ` +
			`by a Hamming single-error-correcting code, with optional write ` +
			`failure and read disturb fault injection. It can also simulate ` +
			`the macro against its self-checking testbench.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")
	root.AddCommand(newGenerateCmd(), newInfoCmd(), newSimulateCmd())
	return root
}

// logger returns the progress logger of cmd. It discards everything unless
// --verbose is set.
func logger(cmd *cobra.Command) *log.Logger {
	var w io.Writer = io.Discard
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		w = cmd.ErrOrStderr()
	}
	return log.New(w, "secmemgen: ", log.LstdFlags)
}

// Execute runs the command line and exits. Exit handlers registered with
// atexit run before the program terminates.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Printf("secmemgen: %v", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
