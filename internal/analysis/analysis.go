// Package analysis implements the unit-name, header, label-lifetime,
// and variable-lifetime analyses of spec.md §4.7, plus their ASCII
// timeline rendering.
package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fort77/fort77/internal/block"
	"github.com/fort77/fort77/internal/color"
	"github.com/fort77/fort77/internal/diag"
	"github.com/fort77/fort77/internal/fortran"
	"github.com/fort77/fort77/internal/invariant"
	"github.com/fort77/fort77/internal/logical"
	"github.com/fort77/fort77/internal/token"
)

// walkLogicalLines visits every LogicalLine reachable from n, in
// document order, skipping over Inner/Outer structure transparently —
// comments never produce a LogicalLine of their own, so they are
// invisible to this walk (spec.md §4.7's "comments excluded").
func walkLogicalLines(n block.Node, visit func(ll logical.LogicalLine)) {
	switch {
	case n.Logical != nil:
		visit(*n.Logical)
	case n.Inner != nil:
		for _, c := range n.Inner.Children {
			walkLogicalLines(c, visit)
		}
	case n.Outer != nil:
		for _, c := range n.Outer.Children {
			walkLogicalLines(c, visit)
		}
	}
}

func nameTokens(tokens []token.Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Tag == token.Name {
			out = append(out, strings.ToLower(t.Value))
		}
	}
	return out
}

func mentionedNames(ll logical.LogicalLine) []string { return nameTokens(ll.TokensAfter) }

// UnitNames returns, for each top-level program unit, the first name
// token of its header line — or nothing for a headerless main program.
func UnitNames(source *block.OuterBlock) []string {
	var names []string
	for _, unit := range source.Children {
		invariant.NotNil(unit.Outer, "top-level unit")
		first := unit.Outer.Children[0]
		if first.Logical != nil {
			mentioned := mentionedNames(*first.Logical)
			invariant.Precondition(len(mentioned) > 0, "top-level header must mention a name")
			names = append(names, mentioned[0])
		}
	}
	return names
}

// Header is the decomposition of a program unit spec.md §4.7 names.
type Header struct {
	Statement    string
	ProgramName  string
	HasName      bool
	FormalParams []string
	MainBlock    block.Node
}

// ExtractHeader splits a program unit into its header fields.
func ExtractHeader(unit *block.OuterBlock) Header {
	first := unit.Children[0]
	if first.Logical != nil {
		ll := *first.Logical
		var tokens []token.Token
		for _, t := range ll.TokensAfter {
			if t.Tag == token.Whitespace || t.Tag == token.Comment {
				continue
			}
			tokens = append(tokens, t)
		}
		invariant.Precondition(len(tokens) > 0, "header line must carry tokens after its statement keyword")
		invariant.Precondition(tokens[0].Tag == token.Name, "header line must start with a name token, got %s", tokens[0].Tag)

		invariant.Precondition(len(unit.Children) == 3, "a named program unit must have exactly 3 children")
		return Header{
			Statement:    ll.Statement,
			ProgramName:  tokens[0].Value,
			HasName:      true,
			FormalParams: nameTokens(tokens[1:]),
			MainBlock:    unit.Children[1],
		}
	}

	invariant.Precondition(len(unit.Children) == 2, "a headerless main program must have exactly 2 children")
	return Header{Statement: "program", MainBlock: unit.Children[0]}
}

// Interval is a variable's or label's lifetime: the line numbers of
// its first and last occurrence.
type Interval struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func makeTimeline(occur map[string][]int) []Interval {
	var intervals []Interval
	for name, lines := range occur {
		if len(lines) == 0 {
			continue
		}
		intervals = append(intervals, Interval{Name: name, Start: lines[0], End: lines[len(lines)-1]})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
	return intervals
}

func graphPos(line, lastLine, cols int) int {
	if lastLine == 0 {
		return 0
	}
	return int(math.Round(float64(line) / float64(lastLine) * float64(cols)))
}

// DrawTimeline renders one ASCII Gantt-style line per interval:
// "name      |   ====   |" scaled to cols columns. useColor paints the
// bar cyan, matching the teacher's Colorize convention (cli/colors.go)
// carried into internal/color.
func DrawTimeline(w io.Writer, intervals []Interval, lastLine, cols int, useColor bool) {
	for _, iv := range intervals {
		start := graphPos(iv.Start, lastLine, cols)
		end := graphPos(iv.End, lastLine, cols)
		bar := color.Colorize(strings.Repeat("=", end-start+1), color.Cyan, useColor)
		fmt.Fprintf(w, "%-10s|%s%s%s|\n", iv.Name,
			strings.Repeat(" ", start),
			bar,
			strings.Repeat(" ", cols-end))
	}
	fmt.Fprintln(w)
}

type labelDecl struct {
	line  int
	label int
}

// LabelReport is the structured form of one label's declaration and
// its (post-merge) occurrence list, shared by the text renderer and
// internal/report's JSON/CBOR encoders.
type LabelReport struct {
	Label       int   `json:"label"`
	DeclLine    int   `json:"decl_line"`
	Occurrences []int `json:"occurrences"`
}

// computeLabels walks mainBlock collecting each label's declaration
// line and reference lines, per spec.md §4.7. The label's occurrence
// set is built by inserting the declaration line into the reference
// walk's results only after the raw reference list has been computed —
// this ordering, not just the final set, is what original_source
// actually does, so it is preserved here (spec.md §9 Open Question).
func computeLabels(mainBlock block.Node) []LabelReport {
	diag.Logger.Debug("label analysis: walking unit for declarations")
	var decls []labelDecl
	lineNo := 0
	walkLogicalLines(mainBlock, func(ll logical.LogicalLine) {
		lineNo++
		if ll.Statement != "format" && ll.Label != nil {
			decls = append(decls, labelDecl{line: lineNo, label: *ll.Label})
		}
	})
	diag.Logger.Debug("label analysis: declarations found", "count", len(decls))

	occur := make(map[int][]int)
	for _, d := range decls {
		lbl := d.label
		cur := 0
		walkLogicalLines(mainBlock, func(ll logical.LogicalLine) {
			cur++
			for _, t := range ll.TokensAfter {
				if t.Tag != token.Integer {
					continue
				}
				if n, err := strconv.Atoi(t.Value); err == nil && n == lbl {
					occur[lbl] = append(occur[lbl], cur)
					return
				}
			}
		})
	}

	var reports []LabelReport
	for _, d := range decls {
		merged := append(append([]int{}, occur[d.label]...), d.line)
		sort.Ints(merged)
		reports = append(reports, LabelReport{Label: d.label, DeclLine: d.line, Occurrences: merged})
	}
	return reports
}

// AnalyzeLabels renders the label section of the text report: the
// declared-label list, each label's defined-at/occurred-at line, and
// its ASCII timeline.
func AnalyzeLabels(w io.Writer, mainBlock block.Node, lastLine, cols int, useColor bool) {
	reports := computeLabels(mainBlock)

	if len(reports) > 0 {
		labels := make([]int, len(reports))
		for i, r := range reports {
			labels[i] = r.Label
		}
		fmt.Fprintf(w, "labels: %v\n\n", labels)
	}

	for _, r := range reports {
		occurredAt := without(r.Occurrences, r.DeclLine)
		fmt.Fprintf(w, "%d defined at: %d occurred at: %v\n", r.Label, r.DeclLine, occurredAt)
	}
	fmt.Fprintln(w)

	var intervals []Interval
	for _, r := range reports {
		if len(r.Occurrences) == 0 {
			continue
		}
		intervals = append(intervals, Interval{
			Name:  strconv.Itoa(r.Label),
			Start: r.Occurrences[0],
			End:   r.Occurrences[len(r.Occurrences)-1],
		})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
	DrawTimeline(w, intervals, lastLine, cols, useColor)
}

// without returns lines with the first occurrence of line removed,
// restoring the pre-merge "occurred at" list for display.
func without(lines []int, line int) []int {
	out := make([]int, 0, len(lines))
	removed := false
	for _, l := range lines {
		if !removed && l == line {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out
}

// VariableReport is the structured form of the variable analysis,
// shared by the text renderer and internal/report's encoders.
type VariableReport struct {
	UnaccountedFor []string         `json:"unaccounted_for"`
	NeverOccurred  []string         `json:"never_occurred"`
	Occurrences    map[string][]int `json:"occurrences"`
}

// computeVariables walks mainBlock collecting every name mentioned,
// the subset declared in specification statements, and which names
// are otherwise unaccounted for, per spec.md §4.7.
func computeVariables(unitNames, formalParams []string, mainBlock block.Node) VariableReport {
	diag.Logger.Debug("variable analysis: walking unit", "unit_names", unitNames, "formal_params", formalParams)
	specs := fortran.PhraseSet(fortran.Specification)

	uniqueSet := map[string]bool{}
	walkLogicalLines(mainBlock, func(ll logical.LogicalLine) {
		if ll.Statement == "format" {
			return
		}
		for _, n := range mentionedNames(ll) {
			uniqueSet[n] = true
		}
	})

	localSet := map[string]bool{}
	walkLogicalLines(mainBlock, func(ll logical.LogicalLine) {
		if !specs[ll.Statement] {
			return
		}
		names := mentionedNames(ll)
		if ll.Statement == "implicit" && len(names) == 1 && names[0] == "none" {
			return
		}
		for _, n := range names {
			localSet[n] = true
		}
	})

	keywords := fortran.Keywords()
	unitNameSet := toSet(unitNames)
	localNameSet := toSet(formalParams)
	for n := range localSet {
		localNameSet[n] = true
	}

	var unaccountedFor []string
	for n := range uniqueSet {
		if localNameSet[n] || keywords[n] || fortran.Intrinsics[n] || unitNameSet[n] {
			continue
		}
		unaccountedFor = append(unaccountedFor, n)
	}
	sort.Strings(unaccountedFor)

	concernSet := map[string]bool{}
	for n := range localSet {
		concernSet[n] = true
	}
	for _, n := range formalParams {
		concernSet[n] = true
	}
	for _, n := range unaccountedFor {
		concernSet[n] = true
	}
	var concern []string
	for n := range concernSet {
		concern = append(concern, n)
	}
	sort.Strings(concern)

	occur := make(map[string][]int)
	for _, v := range concern {
		cur := 0
		walkLogicalLines(mainBlock, func(ll logical.LogicalLine) {
			cur++
			if specs[ll.Statement] {
				return
			}
			for _, n := range mentionedNames(ll) {
				if n == v {
					occur[v] = append(occur[v], cur)
					return
				}
			}
		})
	}

	var neverOccur []string
	for _, v := range concern {
		if len(occur[v]) == 0 {
			neverOccur = append(neverOccur, v)
		}
	}
	sort.Strings(neverOccur)

	return VariableReport{UnaccountedFor: unaccountedFor, NeverOccurred: neverOccur, Occurrences: occur}
}

// AnalyzeVariables renders the variable section of the text report.
func AnalyzeVariables(w io.Writer, unitNames, formalParams []string, mainBlock block.Node, lastLine, cols int, useColor bool) {
	report := computeVariables(unitNames, formalParams, mainBlock)

	if len(report.UnaccountedFor) > 0 {
		fmt.Fprintf(w, "unaccounted for: %v\n\n", report.UnaccountedFor)
	}
	if len(report.NeverOccurred) > 0 {
		fmt.Fprintf(w, "never occurred: %v\n\n", report.NeverOccurred)
	}

	var reported []string
	for n := range report.Occurrences {
		reported = append(reported, n)
	}
	sort.Strings(reported)
	for _, n := range reported {
		fmt.Fprintf(w, "%s occurred at: %v\n", n, report.Occurrences[n])
	}

	DrawTimeline(w, makeTimeline(report.Occurrences), lastLine, cols, useColor)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

func countLogicalLines(n block.Node) int {
	count := 0
	walkLogicalLines(n, func(logical.LogicalLine) { count++ })
	return count
}

// unitDisplayName names a unit for the timeline captions: its program
// name, or "main program" for a headerless one.
func unitDisplayName(h Header) string {
	if h.ProgramName != "" {
		return h.ProgramName
	}
	return "main program"
}

// Run performs the full per-file analysis report spec.md §4.7 lists:
// unit names, then per unit the header summary, label timeline, and
// variable timeline. Caption strings ("label lifetimes in <unit>:")
// follow original_source/linter/fortran.py's captions verbatim
// (spec.md leaves pretty-printing unspecified at this interface;
// SPEC_FULL.md's supplemented features fill it in concretely).
func Run(w io.Writer, source *block.OuterBlock, timelineCols int, useColor bool) {
	unitNames := UnitNames(source)

	fmt.Fprintln(w, "line numbers refer to the line number within the program unit")
	fmt.Fprintln(w, "not counting blank lines")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "found program units: %v\n\n", unitNames)

	for _, unit := range source.Children {
		header := ExtractHeader(unit.Outer)
		name := unitDisplayName(header)
		fmt.Fprintf(w, "%s %s %v\n\n", header.Statement, header.ProgramName, header.FormalParams)

		lastLine := countLogicalLines(header.MainBlock)
		fmt.Fprintf(w, "label lifetimes in %s:\n", name)
		AnalyzeLabels(w, header.MainBlock, lastLine, timelineCols, useColor)
		fmt.Fprintf(w, "variable lifetimes in %s:\n", name)
		AnalyzeVariables(w, unitNames, header.FormalParams, header.MainBlock, lastLine, timelineCols, useColor)
	}
}

// UnitReport is the structured per-unit analysis result: the machine-
// readable counterpart to what Run prints as text.
type UnitReport struct {
	Statement        string         `json:"statement"`
	Name             string         `json:"name,omitempty"`
	FormalParams     []string       `json:"formal_params"`
	LastLine         int            `json:"last_line"`
	Labels           []LabelReport  `json:"labels"`
	Variables        VariableReport `json:"variables"`
	LabelTimeline    []Interval     `json:"label_timeline"`
	VariableTimeline []Interval     `json:"variable_timeline"`
}

// Report is the structured form of the whole analyze report, built by
// BuildReport and serialized by internal/report's JSON/CBOR encoders
// (spec.md §4.7's "pretty-
// printing is specified only at its interface" — this is the
// interface those formats serialize).
type Report struct {
	UnitNames []string     `json:"unit_names"`
	Units     []UnitReport `json:"units"`
}

// labelTimeline turns a LabelReport slice into the sorted Interval
// list BuildReport stores as a unit's label timeline (the same
// intervals AnalyzeLabels draws as a Gantt chart).
func labelTimeline(reports []LabelReport) []Interval {
	var intervals []Interval
	for _, r := range reports {
		if len(r.Occurrences) == 0 {
			continue
		}
		intervals = append(intervals, Interval{
			Name:  strconv.Itoa(r.Label),
			Start: r.Occurrences[0],
			End:   r.Occurrences[len(r.Occurrences)-1],
		})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
	return intervals
}

// BuildReport computes the structured analysis for every unit in
// source, for callers (internal/report) that need the data without
// its text rendering.
func BuildReport(source *block.OuterBlock, timelineCols int) Report {
	unitNames := UnitNames(source)
	report := Report{UnitNames: unitNames}

	for _, unit := range source.Children {
		header := ExtractHeader(unit.Outer)
		lastLine := countLogicalLines(header.MainBlock)
		labels := computeLabels(header.MainBlock)
		variables := computeVariables(unitNames, header.FormalParams, header.MainBlock)

		report.Units = append(report.Units, UnitReport{
			Statement:        header.Statement,
			Name:             header.ProgramName,
			FormalParams:     header.FormalParams,
			LastLine:         lastLine,
			Labels:           labels,
			Variables:        variables,
			LabelTimeline:    labelTimeline(labels),
			VariableTimeline: makeTimeline(variables.Occurrences),
		})
	}
	return report
}
