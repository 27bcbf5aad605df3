package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"bril/internal/cfg"
	"bril/internal/dataflow"
	"bril/internal/ir"
)

var dfCmd = &cobra.Command{
	Use:   "df",
	Short: "run a dataflow analysis and print in/out sets per block",
	Run: func(cmd *cobra.Command, args []string) {
		live, _ := cmd.Flags().GetBool("live")
		decl, _ := cmd.Flags().GetBool("decl")
		if live == decl {
			fatalf("bril-cli df: exactly one of --live or --decl is required")
		}
		prog := readProgram()
		var analysis dataflow.Analysis = dataflow.LiveVars{}
		if decl {
			analysis = dataflow.DefinedVars{}
		}
		rendered := runPerFunctionParallel(prog, func(fn ir.Function) string {
			return renderDF(fn, analysis)
		})
		fmt.Print(strings.Join(rendered, ""))
	},
}

func init() {
	dfCmd.Flags().Bool("live", false, "run the live-variables (reverse) analysis")
	dfCmd.Flags().Bool("decl", false, "run the defined-variables (forward) analysis")
}

func renderDF(fn ir.Function, a dataflow.Analysis) string {
	g := cfg.Build(fn)
	res := dataflow.Solve(g, a)
	var b strings.Builder
	fmt.Fprintf(&b, "@%s:\n", fn.Name)
	for _, blk := range g.Blocks {
		fmt.Fprintf(&b, "  %s:\n", blk.Name)
		fmt.Fprintf(&b, "    in:  %s\n", factString(res.In[blk.ID]))
		fmt.Fprintf(&b, "    out: %s\n", factString(res.Out[blk.ID]))
	}
	return b.String()
}

func factString(f dataflow.Fact) string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
