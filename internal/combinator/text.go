package combinator

import (
	"strings"

	"golang.org/x/text/cases"
)

// Rune-stream convenience combinators. These instantiate the generic
// engine at atom=rune, value=string, which is the shape the character-
// level Fortran grammar (internal/fortran) builds on.

var foldKeyword = cases.Fold()

// Exact matches the literal string s. When ignoreCase is true the
// comparison folds case with golang.org/x/text/cases (Unicode-correct
// folding, rather than ASCII strings.ToLower) before comparing —
// Fortran keywords and identifiers are case-insensitive.
func Exact(s string, ignoreCase bool) Parser[rune, string] {
	runes := []rune(s)
	target := s
	if ignoreCase {
		target = foldKeyword.String(s)
	}
	return func(stream []rune, pos int) Result[string] {
		if pos+len(runes) > len(stream) {
			return failure[string]("\""+s+"\"", pos)
		}
		candidate := string(stream[pos : pos+len(runes)])
		matchStr := candidate
		if ignoreCase {
			matchStr = foldKeyword.String(candidate)
		}
		if matchStr != target {
			return failure[string]("\""+s+"\"", pos)
		}
		return success(candidate, pos+len(runes))
	}
}

// OneOf matches a single rune present in set.
func OneOf(set string) Parser[rune, string] {
	return Map(Satisfy(func(r rune) bool { return strings.ContainsRune(set, r) }, "one of \""+set+"\""),
		func(r rune) string { return string(r) })
}

// NoneOf matches a single rune absent from set.
func NoneOf(set string) Parser[rune, string] {
	return Map(Satisfy(func(r rune) bool { return !strings.ContainsRune(set, r) }, "none of \""+set+"\""),
		func(r rune) string { return string(r) })
}

// ConcatStr sequences a and b, concatenating their string values. This
// is the rune-stream instantiation of spec.md's `a + b`.
func ConcatStr(a, b Parser[rune, string]) Parser[rune, string] {
	return Map(Then(a, b), func(p Pair[string, string]) string { return p.First + p.Second })
}

// JoinRunes flattens a slice of one-rune strings (as produced by Many
// over a single-rune parser) into one string.
func JoinRunes(parts []string) string {
	return strings.Join(parts, "")
}

// Spaces consumes zero or more space/tab characters.
var Spaces = Map(Many(OneOf(" \t")), JoinRunes)

// WhitespaceRune consumes zero or more whitespace characters, including
// newlines.
var WhitespaceRune = Map(Many(OneOf(" \t\r\n\f")), JoinRunes)

// WhitespaceRune1 consumes one or more whitespace characters. Unlike
// WhitespaceRune, this is the form the single-token grammar needs: a
// zero-or-more whitespace alternative would succeed trivially (with an
// empty match) on any non-whitespace byte, short-circuiting ordered
// choice before the final wildcard fallback ever runs and silently
// truncating tokenization instead of tagging the byte Unknown.
var WhitespaceRune1 = Map(Many1(OneOf(" \t\r\n\f")), JoinRunes)

// Liberal skips leading and trailing spaces around p (spec.md's
// `liberal(p) = spaces >> p << spaces`).
func Liberal(p Parser[rune, string]) Parser[rune, string] {
	return SkipRight(SkipLeft(Spaces, p), Spaces)
}

// Scan skips leading whitespace (spaces and tabs only, matching the teacher's
// tokenizer convention of not crossing line boundaries mid-statement)
// then runs p from there — the rune-stream form of spec.md's
// `a.scan(text, start)`.
func Scan[V any](p Parser[rune, V], text string, start int) Result[V] {
	runes := []rune(text)
	s := Spaces(runes, start)
	return p(runes, s.End)
}

// ParseText requires p to consume all of text.
func ParseText[V any](p Parser[rune, V], text string) (V, bool, string, int) {
	return Parse(p, []rune(text))
}

// MatchesText is the boolean form of ParseText.
func MatchesText[V any](p Parser[rune, V], text string) bool {
	return Matches(p, []rune(text))
}
