package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bril/internal/cfg"
	"bril/internal/ir"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg",
	Short: "print the block map, name map, and predecessor/successor lists",
	Run: func(cmd *cobra.Command, args []string) {
		prog := readProgram()
		rendered := runPerFunctionParallel(prog, renderCFG)
		fmt.Print(strings.Join(rendered, ""))
	},
}

func renderCFG(fn ir.Function) string {
	g := cfg.Build(fn)
	var b strings.Builder
	fmt.Fprintf(&b, "@%s (entry: %s):\n", fn.Name, g.Blocks[g.Entry].Name)
	for _, blk := range g.Blocks {
		succNames := make([]string, len(g.Succ[blk.ID]))
		for i, s := range g.Succ[blk.ID] {
			succNames[i] = g.Blocks[s].Name
		}
		predNames := make([]string, len(g.Pred[blk.ID]))
		for i, p := range g.Pred[blk.ID] {
			predNames[i] = g.Blocks[p].Name
		}
		fmt.Fprintf(&b, "  %s: pred=%v succ=%v\n", blk.Name, predNames, succNames)
	}
	return b.String()
}
