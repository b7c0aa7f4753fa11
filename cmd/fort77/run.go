package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fort77/fort77/internal/analysis"
	"github.com/fort77/fort77/internal/block"
	"github.com/fort77/fort77/internal/diag"
	"github.com/fort77/fort77/internal/logical"
	"github.com/fort77/fort77/internal/rawline"
	"github.com/fort77/fort77/internal/report"
	"github.com/fort77/fort77/internal/visitor"
	"github.com/fort77/fort77/internal/watch"
)

// runOptions carries a resolved CLI invocation: the task and file
// positionals plus every flag dispatch needs.
type runOptions struct {
	task        string
	file        string
	useColor    bool
	indentWidth int
	format      string
}

const timelineColumns = 60

// runOnce reads opts.file, runs opts.task over it, and writes the
// result to w. Transform tasks need the full RawLine -> LogicalLine ->
// OuterBlock pipeline; remove-blanks and new-comments operate directly
// on the RawLine stream per spec.md §4.6 (they run "pre-assembly").
func runOnce(opts runOptions, w io.Writer) error {
	content, err := os.ReadFile(opts.file)
	if err != nil {
		return &diag.UsageError{Message: "cannot read file: " + err.Error()}
	}
	source := string(content)
	rawLines := rawline.ClassifyAll(source)

	switch opts.task {
	case "remove-blanks":
		fmt.Fprint(w, visitor.RemoveBlanks(rawLines))
		return nil
	case "new-comments":
		fmt.Fprint(w, visitor.NewComments(rawLines))
		return nil
	}

	logicalLines, err := logical.Assemble(rawLines)
	if err != nil {
		return err
	}
	tree, err := block.Parse(logicalLines, source)
	if err != nil {
		return err
	}

	switch opts.task {
	case "plain":
		fmt.Fprint(w, visitor.TopLevel(visitor.Plain{}, tree))
	case "remove-comments":
		fmt.Fprint(w, visitor.TopLevel(visitor.RemoveComments{}, tree))
	case "indent":
		fmt.Fprint(w, visitor.TopLevel(visitor.NewIndent(opts.indentWidth), tree))
	case "reconstruct":
		fmt.Fprint(w, visitor.TopLevel(visitor.Reconstruct{}, tree))
	case "print-details":
		fmt.Fprint(w, visitor.TopLevel(&visitor.Details{UseColor: opts.useColor}, tree))
	case "analyze":
		return runAnalyze(w, tree, opts)
	default:
		return diag.NewUnknownTaskError(opts.task, tasks)
	}
	return nil
}

func runAnalyze(w io.Writer, tree *block.OuterBlock, opts runOptions) error {
	switch opts.format {
	case "", "text":
		analysis.Run(w, tree, timelineColumns, opts.useColor)
		return nil
	case "json":
		data, err := report.EncodeJSON(analysis.BuildReport(tree, timelineColumns))
		if err != nil {
			return fmt.Errorf("analyze --format json: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "cbor":
		data, err := report.EncodeCBOR(analysis.BuildReport(tree, timelineColumns))
		if err != nil {
			return fmt.Errorf("analyze --format cbor: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return &diag.UsageError{Message: fmt.Sprintf("unknown --format %q (want text, json, or cbor)", opts.format)}
	}
}

// watchRun re-runs runOnce whenever opts.file changes, until ctx is
// cancelled (Ctrl-C).
func watchRun(ctx context.Context, opts runOptions, w io.Writer) error {
	return watch.Run(ctx, opts.file, w, func(w io.Writer) error {
		return runOnce(opts, w)
	})
}
