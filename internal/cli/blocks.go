package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bril/internal/cfg"
	"bril/internal/ir"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "print the basic-block partition of each function",
	Run: func(cmd *cobra.Command, args []string) {
		prog := readProgram()
		rendered := runPerFunctionParallel(prog, renderBlocks)
		fmt.Print(strings.Join(rendered, ""))
	},
}

func renderBlocks(fn ir.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s:\n", fn.Name)
	for _, blk := range cfg.PlainBlocks(fn) {
		fmt.Fprintf(&b, "  block %q:\n", blk.Name)
		for _, instr := range blk.Instr {
			fmt.Fprintf(&b, "    %s\n", instr.String())
		}
	}
	return b.String()
}
