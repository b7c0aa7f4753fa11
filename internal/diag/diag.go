// Package diag implements the two error kinds spec.md §7 names —
// ParseFailure and UsageError — with a Rust/Clang-style caret snippet,
// plus task-name "did you mean" suggestions and a debug logger.
package diag

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ParseFailure reports where a combinator parse gave up: the
// farthest-advancing sub-failure's expected construct and position,
// rendered against the source it failed on (spec.md §7).
type ParseFailure struct {
	Expected string
	Line     int // 1-based
	Column   int // 1-based
	Source   string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse error: expected %s\n%s", e.Expected, e.snippet())
}

func (e *ParseFailure) snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}
	lineContent := lines[e.Line-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "  --> %d:%d\n", e.Line, e.Column)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%2d | %s\n", e.Line, lineContent)
	sb.WriteString("   | ")
	if e.Column > 0 && e.Column <= len(lineContent)+1 {
		sb.WriteString(strings.Repeat(" ", e.Column-1) + "^")
	}
	return sb.String()
}

// NewParseFailure locates a rune offset within source and builds the
// corresponding ParseFailure.
func NewParseFailure(expected, source string, runeOffset int) *ParseFailure {
	runes := []rune(source)
	if runeOffset > len(runes) {
		runeOffset = len(runes)
	}
	line, col := 1, 1
	for i := 0; i < runeOffset; i++ {
		if runes[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseFailure{Expected: expected, Line: line, Column: col, Source: source}
}

// NewLineFailure builds a ParseFailure pointing at the start of a
// known 1-based source line, for callers (internal/logical, internal/
// block) that fail at line granularity rather than a rune offset.
func NewLineFailure(expected, source string, lineNumber int) *ParseFailure {
	return &ParseFailure{Expected: expected, Line: lineNumber, Column: 1, Source: source}
}

// UsageError covers an unrecognized task or a missing/unreadable file.
type UsageError struct {
	Message    string
	Suggestion string
}

func (e *UsageError) Error() string {
	if e.Suggestion == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n%s", e.Message, e.Suggestion)
}

// SuggestTask finds the closest known task name to an unrecognized
// one (smallest case-insensitive Levenshtein distance), for the
// UsageError's "did you mean" hint. A name more than half its own
// length away is not suggested; "" means no suggestion.
func SuggestTask(got string, known []string) string {
	best, bestDist := "", -1
	for _, k := range known {
		d := fuzzy.LevenshteinDistance(strings.ToLower(got), strings.ToLower(k))
		if d <= len(k)/2 && (bestDist < 0 || d < bestDist) {
			best, bestDist = k, d
		}
	}
	return best
}

// NewUnknownTaskError builds the UsageError for an unrecognized task,
// attaching a suggestion when one is found.
func NewUnknownTaskError(got string, known []string) *UsageError {
	msg := fmt.Sprintf("unknown task %q", got)
	if closest := SuggestTask(got, known); closest != "" {
		return &UsageError{Message: msg, Suggestion: fmt.Sprintf("did you mean %q?", closest)}
	}
	return &UsageError{Message: msg, Suggestion: fmt.Sprintf("available tasks: %s", strings.Join(known, ", "))}
}

// Logger is the package-level debug logger, enabled by --debug.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// EnableDebug raises Logger's level so slog.Debug calls are emitted.
func EnableDebug() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Exit codes for the CLI, per spec.md §6: zero on success, non-zero on
// unrecognized task or parse failure.
const (
	ExitSuccess    = 0
	ExitUsageError = 1
	ExitParseError = 2
)
