// =============================================================================
// vgadbg - VGA debugger generator
// =============================================================================
//
// Reads a configuration document and an ASCII-art screen template and writes
// the hardware that shows live wire values on a VGA text display.
//
// THE PIPELINE:
//   1. Config resolution (internal/config): JSON, YAML or CUE document
//   2. Template parsing (internal/template): blocks and 0-placeholder wires
//   3. Hierarchy (internal/hierarchy): wires assigned to submodules
//   4. CUE contract (internal/validator): names, widths, addresses
//   5. Emission (internal/emitter): memory image, VgaDebugger.v, header
//
// Nothing is written unless every earlier stage succeeded.
// =============================================================================

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vgadbg/internal/ctxlog"
	"github.com/robert-at-pretension-io/vgadbg/internal/generator"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks a failure of the command line itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

type options struct {
	logLevel   string
	logFormat  string
	timingPath string
	check      bool
	noContract bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "vgadbg <config>",
		Short: "Generate a VGA text-mode debugger from a screen template",
		Long: `vgadbg reads a configuration document (JSON, YAML or CUE) and the screen
template it names, then writes the screen memory image, the VgaDebugger
module and a header of per-module wiring macros into output_dir.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctxlog.New(opts.logLevel, opts.logFormat, stderr)
			ctx := ctxlog.WithLogger(cmd.Context(), logger)

			g := generator.New()
			g.Timing = opts.timingPath != ""
			g.TimingPath = opts.timingPath
			g.Check = opts.check
			g.SkipContract = opts.noContract

			_, err := g.Run(ctx, args[0])
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&opts.timingPath, "timing", "", "write stage timings as JSONL (default file timing.jsonl)")
	flags.Lookup("timing").NoOptDefVal = "timing.jsonl"
	flags.BoolVar(&opts.check, "check", false, "resolve and validate only, write no files")
	flags.BoolVar(&opts.noContract, "no-contract", false, "skip the CUE design contract")

	return cmd
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	if _, ok := err.(usageError); ok {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(stderr, "Error: %s\n", line)
	}
	return exitFailure
}
