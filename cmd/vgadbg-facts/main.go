package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/vgadbg/internal/ctxlog"
	"github.com/robert-at-pretension-io/vgadbg/internal/facts"
	"github.com/robert-at-pretension-io/vgadbg/internal/generator"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	output    string
	deltaFrom string
	deltaOut  string
	modules   []string
	subtree   bool
	logLevel  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "vgadbg-facts [flags] <config>",
		Short: "Dump the resolved design as relational tables",
		Long: `vgadbg-facts resolves a configuration and its template exactly like vgadbg
but writes no hardware. Instead it prints the grid, blocks, wires, modules
and module edges as JSON, and can diff them against an earlier dump.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.deltaFrom == "") != (opts.deltaOut == "") {
				return errors.New("--delta-from and --delta-out must be used together")
			}

			logger := ctxlog.New(opts.logLevel, "text", stderr)
			ctx := ctxlog.WithLogger(cmd.Context(), logger)

			g := generator.New()
			g.Check = true
			g.SkipContract = true
			res, err := g.Run(ctx, args[0])
			if err != nil {
				return err
			}

			tables := facts.BuildTables(res.Design)
			if len(opts.modules) > 0 {
				keep := make(map[string]bool, len(opts.modules))
				if opts.subtree {
					keep = facts.Subtree(tables, opts.modules...)
				} else {
					for _, m := range opts.modules {
						keep[m] = true
					}
				}
				tables = facts.FilterTablesByModules(tables, keep)
			}

			if opts.output != "" {
				if err := writeJSON(opts.output, tables); err != nil {
					return errors.Wrap(err, "writing facts")
				}
			} else if err := encodeJSON(stdout, tables); err != nil {
				return errors.Wrap(err, "encoding facts")
			}

			if opts.deltaFrom != "" {
				prev, err := readTables(opts.deltaFrom)
				if err != nil {
					return errors.Wrap(err, "reading delta-from")
				}
				delta := facts.ComputeDelta(prev, tables)
				if err := writeJSON(opts.deltaOut, delta); err != nil {
					return errors.Wrap(err, "writing delta")
				}
				if delta.Empty() {
					logger.Info("no changes since previous facts", "delta_from", opts.deltaFrom)
				} else {
					logger.Info("delta written",
						"delta_out", opts.deltaOut,
						"added_wires", len(delta.Added.Wires),
						"removed_wires", len(delta.Removed.Wires))
				}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "write facts JSON to file (default: stdout)")
	flags.StringVar(&opts.deltaFrom, "delta-from", "", "previous facts JSON to compute delta from")
	flags.StringVar(&opts.deltaOut, "delta-out", "", "write delta JSON to file (requires --delta-from)")
	flags.StringSliceVar(&opts.modules, "module", nil, "keep only rows of these modules (repeatable)")
	flags.BoolVar(&opts.subtree, "subtree", false, "with --module, also keep every descendant module")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	return cmd
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return encodeJSON(f, data)
}

func encodeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
