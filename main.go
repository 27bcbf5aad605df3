// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"bril/internal/ir"
)

// main is a one-shot IR disassembler: given a JSON IR file (or stdin if
// no path is given), it decodes the Program and prints its disassembly —
// a quick sanity check on a hand-written or generated IR file without
// reaching for the full bril-cli command tree.
func main() {
	var data []byte
	var err error

	if len(os.Args) >= 2 {
		data, err = os.ReadFile(os.Args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		color.Red("Failed to read IR: %s", err)
		os.Exit(1)
	}

	prog, err := ir.DecodeProgram(data)
	if err != nil {
		color.Red("Failed to decode IR: %s", err)
		os.Exit(1)
	}

	fmt.Print(ir.PrintProgram(prog))
	color.Green("✅ Decoded %d function(s)", len(prog.Functions))
}
