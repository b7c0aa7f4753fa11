// Command fort77 is the CLI front end for the fixed-form Fortran 77
// static analyzer and source-transformation tool: `fort77 <task>
// <file>` plus the flags SPEC_FULL.md's CLI SURFACE section names.
// Exit codes follow the teacher's cmd/devcmd/main.go constant-block
// convention (ExitSuccess, ExitUsageError, ExitParseError), per
// spec.md §6.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fort77/fort77/internal/color"
	"github.com/fort77/fort77/internal/diag"
)

var tasks = []string{
	"plain", "remove-comments", "remove-blanks", "indent",
	"print-details", "new-comments", "reconstruct", "analyze",
}

func isKnownTask(t string) bool {
	for _, k := range tasks {
		if k == t {
			return true
		}
	}
	return false
}

func main() {
	var (
		debug       bool
		noColor     bool
		watch       bool
		indentWidth int
		format      string
	)

	rootCmd := &cobra.Command{
		Use:           "fort77 <task> <file>",
		Short:         "Static analyzer and source transformer for fixed-form Fortran 77",
		Long:          "fort77 ingests fixed-form Fortran 77 source and either transforms it\n(plain, remove-comments, remove-blanks, indent, new-comments,\nreconstruct, print-details) or reports on it (analyze).",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			task, file := args[0], args[1]
			if !isKnownTask(task) {
				return diag.NewUnknownTaskError(task, tasks)
			}
			if debug {
				diag.EnableDebug()
			}

			opts := runOptions{
				task:        task,
				file:        file,
				useColor:    color.ShouldUse(noColor, os.Stdout),
				indentWidth: indentWidth,
				format:      format,
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(file); err != nil {
				return &diag.UsageError{Message: "cannot read file: " + err.Error()}
			}

			if watch {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return watchRun(ctx, opts, out)
			}
			return runOnce(opts, out)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug tracing to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "Re-run on every change to the source file")
	rootCmd.PersistentFlags().IntVar(&indentWidth, "indent-width", 4, "Spaces per indent level (indent task only)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format for analyze: text, json, or cbor")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var pf *diag.ParseFailure
	switch {
	case err == nil:
		return diag.ExitSuccess
	case errors.As(err, &pf):
		return diag.ExitParseError
	default:
		return diag.ExitUsageError
	}
}
