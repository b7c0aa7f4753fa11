// Package logical assembles the RawLine stream into LogicalLines:
// an initial line plus the comment and continuation lines that
// surround it (spec.md §4.4).
package logical

import (
	"strings"

	"github.com/fort77/fort77/internal/combinator"
	"github.com/fort77/fort77/internal/diag"
	"github.com/fort77/fort77/internal/rawline"
	"github.com/fort77/fort77/internal/token"
)

// LogicalLine groups exactly one initial RawLine with the comment and
// continuation lines that surround it.
type LogicalLine struct {
	Children    []rawline.RawLine
	LineNumber  int // the initial child's physical line number
	Statement   string
	Label       *int
	Code        string
	Tokens      []token.Token
	TokensAfter []token.Token
}

func isType(t rawline.Type) func(rawline.RawLine) bool {
	return func(rl rawline.RawLine) bool { return rl.Type == t }
}

var (
	commentLine      = combinator.Satisfy(isType(rawline.Comment), "comment line")
	initialLine      = combinator.Satisfy(isType(rawline.Initial), "initial line")
	continuationLine = combinator.Satisfy(isType(rawline.Continuation), "continuation line")
)

func assemble(lead []rawline.RawLine, initial rawline.RawLine, tail []rawline.RawLine) LogicalLine {
	ll := LogicalLine{
		Statement:  initial.Statement,
		Label:      initial.Label,
		LineNumber: initial.LineNumber,
	}
	ll.Children = append(ll.Children, lead...)
	ll.Children = append(ll.Children, initial)
	ll.Children = append(ll.Children, tail...)

	codeParts := []string{initial.Code}
	ll.Tokens = append(ll.Tokens, initial.Tokens...)
	for _, c := range tail {
		if c.Type == rawline.Comment {
			continue
		}
		codeParts = append(codeParts, c.Code)
		ll.Tokens = append(ll.Tokens, c.Tokens...)
	}
	ll.Code = joinLines(codeParts)

	// tokens_after is the concatenation of every non-comment child's
	// tokens_after; for the initial line that already starts past the
	// detected statement keyword, and continuation lines contribute
	// their own (equal to their tokens, per rawline.Classify).
	ll.TokensAfter = append(ll.TokensAfter, initial.TokensAfter...)
	for _, c := range tail {
		if c.Type == rawline.Comment {
			continue
		}
		ll.TokensAfter = append(ll.TokensAfter, c.TokensAfter...)
	}
	return ll
}

func joinLines(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}

// logicalLineParser is comment* initial (comment | continuation)*.
var logicalLineParser = combinator.Map(
	combinator.Then(
		combinator.Many(commentLine),
		combinator.Then(initialLine, combinator.Many(combinator.Or(commentLine, continuationLine))),
	),
	func(p combinator.Pair[[]rawline.RawLine, combinator.Pair[rawline.RawLine, []rawline.RawLine]]) LogicalLine {
		return assemble(p.First, p.Second.First, p.Second.Second)
	},
)

// sourceParser is logical_line*.
var sourceParser = combinator.Many(logicalLineParser)

// Assemble groups an entire RawLine stream into LogicalLines. A stray
// continuation line with no preceding initial line is a parse failure
// (spec.md §4.4), reported here as a *diag.ParseFailure rather than an
// invariant panic since it reflects malformed input, not an internal
// inconsistency.
func Assemble(lines []rawline.RawLine) ([]LogicalLine, error) {
	result, ok, expected, pos := combinator.Parse(sourceParser, lines)
	if !ok {
		return nil, failureAt(lines, pos, expected)
	}
	return result, nil
}

func failureAt(lines []rawline.RawLine, pos int, expected string) error {
	lineNo := len(lines) + 1
	if pos < len(lines) {
		lineNo = lines[pos].LineNumber
	}
	source := reconstructSource(lines)
	return diag.NewLineFailure(expected, source, lineNo)
}

func reconstructSource(lines []rawline.RawLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Original)
	}
	return sb.String()
}
