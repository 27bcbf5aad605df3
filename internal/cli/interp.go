package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	brilerrors "bril/internal/errors"
	"bril/internal/interp"
)

var interpCmd = &cobra.Command{
	Use:   "interp [-- args...]",
	Short: "execute main, optionally emitting a total_dyn_inst profiling line to stderr",
	Run: func(cmd *cobra.Command, args []string) {
		profile, _ := cmd.Flags().GetBool("profile")

		prog := readProgram()
		it := interp.New(prog, func(s string) { fmt.Print(s) }, cfg.HeapSize, cfg.InitialGCLimit, cfg.GCGrowthFactor)
		if err := it.ExecuteMain(args, profile); err != nil {
			reportInterpError(err)
			os.Exit(1)
		}
	},
}

func init() {
	interpCmd.Flags().Bool("profile", false, "emit total_dyn_inst: <count> to stderr after execution")
}

// reportInterpError prints a runtime error with its source position
// (spec.md §7: "errors in interpretation are fatal ... reported to the
// user with position").
func reportInterpError(err error) {
	if re, ok := brilerrors.AsRuntimeError(err); ok {
		fmt.Fprintf(os.Stderr, "error[%s]: %s\n", re.Code, re.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
