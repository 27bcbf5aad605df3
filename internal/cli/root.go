// Package cli wires the toolkit's components into bril-cli, a single
// multi-command binary: one subcommand per family of flags spec.md §6
// describes as belonging to independent "thin driver" programs.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bril/internal/config"
	"bril/internal/telemetry"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "bril-cli",
	Short: "bril-cli — a compiler-infrastructure toolkit for a small JSON IR",
	Long: `bril-cli operates on a JSON-serialized three-address intermediate
representation: basic-block and CFG construction, a generic dataflow
framework, dominance analysis, local value numbering, trivial dead-code
elimination, SSA construction/destruction, a bytecode interpreter with a
semispace copying garbage collector, and a tracing-JIT driver.

Every subcommand reads a Program from stdin as JSON. lvn, tdce, ssa and
jit write the transformed Program back to stdout as JSON; blocks, cfg,
df and dom print a text report; interp prints the program's own output.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cfg = config.Load()
		if v, _ := cmd.Flags().GetBool("disable-metrics"); v {
			cfg.DisableMetrics = true
		}
		if v, _ := cmd.Flags().GetInt64("heap-size"); v > 0 {
			cfg = cfg.ApplyHeapSize(v)
		}
		telemetry.Report(!cfg.DisableMetrics, cmd.Name())
	},
}

// Execute runs the command tree; main just forwards os.Args and its exit
// code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "disable the anonymous per-invocation telemetry event")
	rootCmd.PersistentFlags().Int64("heap-size", 0, "override the interpreter heap size in cells (0 = use layered config default)")

	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(cfgCmd)
	rootCmd.AddCommand(dfCmd)
	rootCmd.AddCommand(domCmd)
	rootCmd.AddCommand(lvnCmd)
	rootCmd.AddCommand(tdceCmd)
	rootCmd.AddCommand(ssaCmd)
	rootCmd.AddCommand(interpCmd)
	rootCmd.AddCommand(jitCmd)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
