package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"bril/internal/interp"
	"bril/internal/ir"
	"bril/internal/ssa"
)

var ssaCmd = &cobra.Command{
	Use:   "ssa [-- args...]",
	Short: "convert to or from SSA form, or check the to/from-SSA roundtrip",
	Run: func(cmd *cobra.Command, args []string) {
		toSSA, _ := cmd.Flags().GetBool("to-ssa")
		fromSSA, _ := cmd.Flags().GetBool("from-ssa")
		roundtrip, _ := cmd.Flags().GetBool("roundtrip")

		if roundtrip {
			runSSARoundtrip(args)
			return
		}
		if toSSA == fromSSA {
			fatalf("bril-cli ssa: exactly one of --to-ssa or --from-ssa is required")
		}

		runProgramTransform(func(fn ir.Function) ir.Function {
			if toSSA {
				return ssa.ToSSA(fn)
			}
			return ssa.FromSSA(fn)
		})
	},
}

func init() {
	ssaCmd.Flags().Bool("to-ssa", false, "insert phi nodes and rename variables into SSA form")
	ssaCmd.Flags().Bool("from-ssa", false, "remove phi nodes, materializing predecessor-tail copies")
	ssaCmd.Flags().Bool("roundtrip", false, "run from_ssa(to_ssa(program)) and diff its interpreted output against the original")
}

// runSSARoundtrip executes prog before and after from_ssa(to_ssa(prog))
// with identical inputArgs and compares their stdout, per the SSA
// roundtrip Testable Property (spec.md §8): the transform must preserve
// observable behavior.
func runSSARoundtrip(inputArgs []string) {
	prog := readProgram()

	transformed := prog
	transformed.Functions = make([]ir.Function, len(prog.Functions))
	for i, fn := range prog.Functions {
		transformed.Functions[i] = ssa.FromSSA(ssa.ToSSA(fn))
	}

	before, beforeErr := runAndCapture(prog, inputArgs)
	after, afterErr := runAndCapture(transformed, inputArgs)

	if beforeErr != nil || afterErr != nil {
		fatalf("bril-cli ssa --roundtrip: before err=%v after err=%v", beforeErr, afterErr)
	}
	if before != after {
		fatalf("bril-cli ssa --roundtrip: output diverged\n--- before ---\n%s\n--- after ---\n%s", before, after)
	}
	writeProgram(transformed)
}

func runAndCapture(prog ir.Program, inputArgs []string) (string, error) {
	var out bytes.Buffer
	it := interp.New(prog, func(s string) { out.WriteString(s) }, cfg.HeapSize, cfg.InitialGCLimit, cfg.GCGrowthFactor)
	err := it.ExecuteMain(inputArgs, false)
	return out.String(), err
}
