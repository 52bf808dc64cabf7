// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command secmemgen generates Hamming SEC protected memory macros.
//
// Usage:
//
//	secmemgen generate [flags]   emit Verilog sources, testbench and Makefile
//	secmemgen info [flags]       print the derived layout
//	secmemgen simulate [flags]   run the testbench on the simulated macro
//
// Every parameter flag can also be set from a SECMEM_* environment variable
// or a .env file. Run secmemgen help <command> for the flag list.
package main

import "github.com/db47h/secmem/internal/cli"

func main() {
	cli.Execute()
}
