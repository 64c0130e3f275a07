package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/wasmheap/liteheap/internal/region"
)

// verbose backs the root --verbose flag; gates both this package's own
// diagnostic output and internal/region's growth-event logging.
var verbose bool

// newRootCmd builds the allocbench command tree: a thin root plus the run
// and stats subcommands, following the teacher pack's cobra root/subcommand
// split (cmd/hivectl's root.go).
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "allocbench",
		Short:         "Drive and measure the liteheap allocator variants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			region.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostic output, including region growth events")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// logf emits a log.Printf-style message gated by --verbose, this package's
// own half of the CLI's diagnostic output.
func logf(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}
