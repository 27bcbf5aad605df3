package cli

import (
	"github.com/spf13/cobra"

	"bril/internal/jit"
)

var jitCmd = &cobra.Command{
	Use:   "jit",
	Short: "apply the tracing-JIT driver using the trace recorded at /tmp/trace.txt",
	Run: func(cmd *cobra.Command, args []string) {
		tracePath, _ := cmd.Flags().GetString("trace")

		prog := readProgram()
		trace, err := jit.ReadTraceFile(tracePath)
		if err != nil {
			fatalf("bril-cli jit: %v", err)
		}
		patched, err := jit.Apply(prog, trace)
		if err != nil {
			fatalf("bril-cli jit: %v", err)
		}
		writeProgram(patched)
	},
}

func init() {
	jitCmd.Flags().String("trace", "/tmp/trace.txt", "path to the recorded trace file")
}
