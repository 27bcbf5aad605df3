// SPDX-License-Identifier: Apache-2.0

// Command bril-cli is the toolkit's single multi-command entry point:
// block/CFG printing, dataflow and dominance analysis, local value
// numbering, trivial dead-code elimination, SSA construction and
// destruction, the bytecode interpreter, and the tracing-JIT driver.
package main

import (
	"fmt"
	"os"

	"bril/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
