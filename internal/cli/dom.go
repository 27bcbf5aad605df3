package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"bril/internal/cfg"
	"bril/internal/dominators"
	"bril/internal/ir"
)

var domCmd = &cobra.Command{
	Use:   "dom",
	Short: "compute dominator sets, the dominator tree, or the dominance frontier",
	Run: func(cmd *cobra.Command, args []string) {
		tree, _ := cmd.Flags().GetBool("tree")
		frontier, _ := cmd.Flags().GetBool("frontier")
		validate, _ := cmd.Flags().GetBool("validate")

		prog := readProgram()
		rendered := runPerFunctionParallel(prog, func(fn ir.Function) string {
			return renderDom(fn, tree, frontier, validate)
		})
		fmt.Print(strings.Join(rendered, ""))
	},
}

func init() {
	domCmd.Flags().Bool("tree", false, "print the dominator tree instead of dominator sets")
	domCmd.Flags().Bool("frontier", false, "print the dominance frontier instead of dominator sets")
	domCmd.Flags().Bool("validate", false, "cross-check dominator sets via brute-force path enumeration")
}

func renderDom(fn ir.Function, tree, frontier, validate bool) string {
	g := cfg.Build(fn)
	dom := dominators.FindDominators(g)

	var b strings.Builder
	fmt.Fprintf(&b, "@%s:\n", fn.Name)

	switch {
	case validate:
		ok := dominators.Validate(g, dom)
		fmt.Fprintf(&b, "  valid: %t\n", ok)
	case tree:
		idom := dominators.ImmediateDominators(g, dom)
		dt := dominators.BuildDomTree(g, idom)
		renderDomNode(&b, g, dt, dt.Root, 1)
	case frontier:
		df := dominators.DominanceFrontier(g, dom)
		for _, blk := range g.Blocks {
			fmt.Fprintf(&b, "  DF(%s): %s\n", blk.Name, idSetString(g, df[blk.ID]))
		}
	default:
		for _, blk := range g.Blocks {
			fmt.Fprintf(&b, "  dom(%s): %s\n", blk.Name, idSetString(g, dom[blk.ID]))
		}
	}
	return b.String()
}

func renderDomNode(b *strings.Builder, g cfg.CFG, tree dominators.DomTree, nodeID, depth int) {
	fmt.Fprintf(b, "%s%s\n", strings.Repeat("  ", depth), g.Blocks[nodeID].Name)
	for _, child := range tree.Nodes[nodeID].Children {
		renderDomNode(b, g, tree, child, depth+1)
	}
}

func idSetString(g cfg.CFG, s dominators.IDSet) string {
	names := make([]string, 0, len(s))
	for id := range s {
		names = append(names, g.Blocks[id].Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
