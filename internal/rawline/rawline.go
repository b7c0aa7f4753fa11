// Package rawline classifies physical source lines into comment,
// initial, and continuation lines per spec.md §4.3, lexing the code
// portion of non-comment lines and detecting the statement keyword.
package rawline

import (
	"strings"

	"github.com/fort77/fort77/internal/fortran"
	"github.com/fort77/fort77/internal/invariant"
	"github.com/fort77/fort77/internal/token"
)

// Type is the classification of a RawLine.
type Type string

const (
	Comment      Type = "comment"
	Initial      Type = "initial"
	Continuation Type = "continuation"
)

const (
	labelWidth    = 5 // columns 1-5
	marginColumn  = labelWidth + 1
	continuationi = labelWidth // 0-indexed column 6
)

// RawLine is one physical line of fixed-form Fortran (spec.md §3).
type RawLine struct {
	Original    string
	LineNumber  int // 1-based physical line number within the source
	Type        Type
	Code        string
	Tokens      []token.Token
	TokensAfter []token.Token
	Statement   string
	Label       *int
	Cont        string
}

func stripNewline(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// isCommentLine reports whether a line classifies as a comment: its
// trimmed, lowercased form is empty or begins with c, *, or ! (spec.md
// §3 and §4.3 step 1).
func isCommentLine(trimmedLower string) bool {
	if trimmedLower == "" {
		return true
	}
	switch trimmedLower[0] {
	case 'c', '*', '!':
		return true
	}
	return false
}

// Classify reads one physical line (including its trailing newline,
// if any) and classifies it.
func Classify(original string) RawLine {
	bare := stripNewline(original)
	trimmedLower := strings.ToLower(strings.TrimSpace(bare))

	if isCommentLine(trimmedLower) {
		return RawLine{Original: original, Type: Comment}
	}

	bareRunes := []rune(bare)
	originalRunes := []rune(original)

	code := ""
	if len(originalRunes) > marginColumn {
		code = string(originalRunes[marginColumn:])
	}
	tokens := fortran.Tokenize(code)

	if len(bareRunes) > continuationi {
		col6 := bareRunes[continuationi]
		if col6 != '0' && col6 != ' ' {
			labelField := string(bareRunes[:continuationi])
			invariant.Precondition(strings.TrimSpace(labelField) == "",
				"continuation line columns 1-5 must be blank, got %q", labelField)
			return RawLine{
				Original: original,
				Type:     Continuation,
				Code:     code,
				Tokens:   tokens,
				// Per spec.md §3, tokens_after equals tokens when no
				// statement keyword applies (continuation lines carry
				// no statement of their own).
				TokensAfter: tokens,
				Cont:        string(col6),
			}
		}
	}

	rl := RawLine{Original: original, Type: Initial, Code: code, Tokens: tokens, TokensAfter: tokens}

	// Column 6 of an initial line is ' ' or '0' (never a continuation
	// mark), but which of the two it actually was still matters for
	// exact reconstruction: Cont records it here so Reconstruct can
	// reproduce it instead of always synthesizing a blank (spec.md §8's
	// round-trip guarantee covers this byte; it is not the trailing-
	// whitespace exception).
	if len(bareRunes) > continuationi {
		rl.Cont = string(bareRunes[continuationi])
	}

	var labelField string
	if len(bareRunes) >= labelWidth {
		labelField = string(bareRunes[:labelWidth])
	} else {
		labelField = string(bareRunes)
	}
	if strings.TrimSpace(labelField) != "" {
		if n, ok := fortran.ParseLabel(labelField); ok {
			rl.Label = &n
		}
	}

	codeRunes := []rune(code)
	for _, phrase := range fortran.All {
		if end, ok := fortran.MatchPhrase(code, phrase); ok {
			rl.Statement = phrase.Text()
			rl.TokensAfter = fortran.Tokenize(string(codeRunes[end:]))
			return rl
		}
	}
	rl.Statement = fortran.StatementAssignment
	return rl
}

// SplitLines splits source text into physical lines, each retaining
// its trailing "\n" (the final line keeps none if the source doesn't
// end in a newline). This is the line vector spec.md §5 describes
// being fully read before parsing begins.
func SplitLines(source string) []string {
	if source == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, source[start:i+1])
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}

// ClassifyAll classifies every line of source.
func ClassifyAll(source string) []RawLine {
	lines := SplitLines(source)
	out := make([]RawLine, len(lines))
	for i, l := range lines {
		out[i] = Classify(l)
		out[i].LineNumber = i + 1
	}
	return out
}
