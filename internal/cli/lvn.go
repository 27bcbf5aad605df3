package cli

import (
	"github.com/spf13/cobra"

	"bril/internal/ir"
	"bril/internal/lvn"
	"bril/internal/tdce"
)

var lvnCmd = &cobra.Command{
	Use:   "lvn",
	Short: "run local value numbering (copy/constant propagation, folding)",
	Run: func(cmd *cobra.Command, args []string) {
		opt := lvn.Options{}
		opt.Prop, _ = cmd.Flags().GetBool("prop")
		opt.Comm, _ = cmd.Flags().GetBool("comm")
		opt.Fold, _ = cmd.Flags().GetBool("fold")
		noDCE, _ := cmd.Flags().GetBool("no-dce")

		runProgramTransform(func(fn ir.Function) ir.Function {
			fn = lvn.RunFunction(fn, opt)
			if !noDCE {
				fn = tdce.Run(fn)
			}
			return fn
		})
	},
}

func init() {
	lvnCmd.Flags().Bool("prop", false, "propagate copies through id chains")
	lvnCmd.Flags().Bool("comm", false, "canonicalize commutative operators by sorting operands")
	lvnCmd.Flags().Bool("fold", false, "constant-fold foldable expressions")
	lvnCmd.Flags().Bool("no-dce", false, "skip the trivial-dead-code sweep after LVN")
}
