package cli

import (
	"github.com/spf13/cobra"

	"bril/internal/ir"
	"bril/internal/tdce"
)

var tdceCmd = &cobra.Command{
	Use:   "tdce",
	Short: "run trivial dead-code elimination to a fixpoint",
	Run: func(cmd *cobra.Command, args []string) {
		runProgramTransform(func(fn ir.Function) ir.Function {
			return tdce.Run(fn)
		})
	},
}
