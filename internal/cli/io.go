package cli

import (
	"fmt"
	"io"
	"os"

	"bril/internal/ir"
)

// readProgram decodes a Program from stdin, per the EXTERNAL INTERFACES
// contract that every subcommand reads JSON IR from standard input.
func readProgram() ir.Program {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatalf("bril-cli: read stdin: %v", err)
	}
	prog, err := ir.DecodeProgram(data)
	if err != nil {
		fatalf("bril-cli: %v", err)
	}
	return prog
}

// writeProgram encodes prog back to its JSON wire form on stdout.
func writeProgram(prog ir.Program) {
	data, err := ir.EncodeProgram(prog)
	if err != nil {
		fatalf("bril-cli: encode program: %v", err)
	}
	fmt.Println(string(data))
}

// runProgramTransform reads a Program from stdin, applies fn to every
// function in order, and writes the result back to stdout — the shared
// plumbing behind every subcommand that is a pure IR-to-IR transform
// (lvn, tdce, ssa). Transform passes run sequentially, not through
// runPerFunctionParallel: spec.md's concurrency allowance (§5) covers
// read-only analyses only, not passes that rewrite the IR.
func runProgramTransform(fn func(ir.Function) ir.Function) {
	prog := readProgram()
	for i := range prog.Functions {
		prog.Functions[i] = fn(prog.Functions[i])
	}
	writeProgram(prog)
}
