// Package fortran supplies the character-level grammar atoms for
// fixed-form Fortran 77: literals, identifiers, operators, and the
// single_token ordered choice that drives the tokenizer (spec.md §4.2).
// It also holds the statement-phrase catalog and the intrinsic
// function table used by the raw-line classifier and the variable
// analysis.
package fortran

import (
	"strconv"
	"unicode"

	"github.com/fort77/fort77/internal/combinator"
	"github.com/fort77/fort77/internal/token"
)

func tag(tg token.Tag) func(string) token.Token {
	return func(v string) token.Token { return token.Token{Tag: tg, Value: v} }
}

func term(s string) combinator.Parser[rune, string] {
	return combinator.Exact(s, true)
}

func keyword(s string) combinator.Parser[rune, string] {
	return combinator.Liberal(term(s))
}

func isLetter(r rune) bool { return unicode.IsLetter(r) && r < unicode.MaxASCII }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isAlnum(r rune) bool  { return isLetter(r) || isDigit(r) }

var letter = combinator.Satisfy(isLetter, "letter")
var digit = combinator.Satisfy(isDigit, "digit")
var alnum = combinator.Map(combinator.Satisfy(isAlnum, "alphanumeric"), func(r rune) string { return string(r) })

// Name recognizes a Fortran identifier: a letter followed by zero or
// more letters/digits.
var Name = combinator.ConcatStr(
	combinator.Map(letter, func(r rune) string { return string(r) }),
	combinator.Map(combinator.Many(alnum), combinator.JoinRunes),
)

// Label recognizes a 1-5 digit statement label.
var Label = combinator.Map(
	combinator.Between(combinator.Map(digit, func(r rune) string { return string(r) }), 1, 5),
	combinator.JoinRunes,
)

func sign() combinator.Parser[rune, string] {
	return combinator.Optional(combinator.OneOf("+-"))
}

// Integer recognizes an optionally-signed run of digits.
var Integer = combinator.ConcatStr(
	sign(),
	combinator.Map(combinator.Many1(combinator.Map(digit, func(r rune) string { return string(r) })), combinator.JoinRunes),
)

// Logical recognizes .true. or .false.
var Logical = combinator.Choice(term(".true."), term(".false."))

func quotedSegment(q string) combinator.Parser[rune, string] {
	return combinator.ConcatStr(
		combinator.ConcatStr(term(q), combinator.Map(combinator.Many(combinator.NoneOf(q)), combinator.JoinRunes)),
		term(q),
	)
}

// charSegment recognizes one "..." or '...' run. Fortran's doubled-
// quote escape ("" inside a "..." string) is not special-cased here:
// it falls out of Character's one-or-more repetition: the doubled
// quote closes one segment and opens the next ('it''s' is the
// segments 'it' and 's'), and the adjacent segments are concatenated
// into one token — matching
// original_source/linter/fortran.py's char_segment exactly (spec.md
// §9 Open Question: preserve, don't "fix").
var charSegment = combinator.Choice(quotedSegment("\""), quotedSegment("'"))

// Character recognizes one or more concatenated quoted segments.
var Character = combinator.Map(combinator.Many1(charSegment), combinator.JoinRunes)

// BasicReal recognizes an optionally-signed decimal with a mandatory
// dot and optional fractional digits.
var BasicReal = combinator.ConcatStr(
	combinator.ConcatStr(
		combinator.ConcatStr(sign(), combinator.Map(combinator.Many1(combinator.Map(digit, func(r rune) string { return string(r) })), combinator.JoinRunes)),
		term("."),
	),
	combinator.Map(combinator.Many(combinator.Map(digit, func(r rune) string { return string(r) })), combinator.JoinRunes),
)

func exponentPart(marker string) combinator.Parser[rune, string] {
	return combinator.ConcatStr(combinator.OneOf(marker), Integer)
}

var singleExponent = exponentPart("eE")
var doubleExponent = exponentPart("dD")

// Single recognizes a single-precision real: basic_real with an
// optional E-exponent, or integer with a required E-exponent.
var Single = combinator.Choice(
	combinator.ConcatStr(BasicReal, combinator.Map(combinator.Optional(singleExponent), func(s string) string { return s })),
	combinator.ConcatStr(Integer, singleExponent),
)

// Double recognizes a double-precision real: (basic_real | integer)
// with a required D-exponent.
var Double = combinator.ConcatStr(combinator.Choice(BasicReal, Integer), doubleExponent)

// Real tries Double before Single (order matters: "1.0d0" must not be
// partially consumed as the single "1.0" followed by a stray "d0").
var Real = combinator.Choice(Double, Single)

// Comment recognizes a trailing `!`-to-end-of-line comment token (used
// only inside code text, not for whole comment *lines* — see
// internal/rawline for the line-level comment classification).
var Comment = combinator.ConcatStr(term("!"), combinator.Map(combinator.Many(combinator.NoneOf("\n")), combinator.JoinRunes))

var (
	equalsOp = term("=")
	plusOp   = term("+")
	minusOp  = term("-")
	timesOp  = term("*")
	slashOp  = term("/")
	lparenOp = term("(")
	rparenOp = term(")")
	dotOp    = term(".")
	commaOp  = term(",")
	dollarOp = term("$")
	aposOp   = term("'")
	quoteOp  = term("\"")
	colonOp  = term(":")
	langleOp = term("<")
	rangleOp = term(">")

	ltOp   = term(".lt.")
	leOp   = term(".le.")
	eqOp   = term(".eq.")
	neOp   = term(".ne.")
	gtOp   = term(".gt.")
	geOp   = term(".ge.")
	notOp  = term(".not.")
	andOp  = term(".and.")
	orOp   = term(".or.")
	eqvOp  = term(".eqv.")
	neqvOp = term(".neqv.")

	exponentOp = combinator.Exact("**", false)
	concatOp   = combinator.Exact("//", false)
)

func tagged(p combinator.Parser[rune, string], tg token.Tag) combinator.Parser[rune, token.Token] {
	return combinator.Map(p, tag(tg))
}

// SingleToken is the ordered choice over every token kind. Order is
// normative (spec.md §4.2): character before comment, the relational/
// logical dotted operators before real/integer and before name (so
// ".lt." isn't torn into dot+name+dot), real before integer, exponent
// before times, concatenation before slash, multi-character operators
// before their single-character prefixes, and spaces/wildcard as the
// final fallbacks so every byte is consumed as *some* token.
var SingleToken = combinator.Choice(
	tagged(Character, token.Character),
	tagged(Comment, token.Comment),
	tagged(Logical, token.Logical),
	tagged(ltOp, token.LT),
	tagged(leOp, token.LE),
	tagged(eqOp, token.EQ),
	tagged(neOp, token.NE),
	tagged(gtOp, token.GT),
	tagged(geOp, token.GE),
	tagged(notOp, token.Not),
	tagged(andOp, token.And),
	tagged(orOp, token.Or),
	tagged(eqvOp, token.Eqv),
	tagged(neqvOp, token.Neqv),
	tagged(Real, token.Real),
	tagged(Integer, token.Integer),
	tagged(Name, token.Name),
	tagged(equalsOp, token.Equals),
	tagged(plusOp, token.Plus),
	tagged(minusOp, token.Minus),
	tagged(exponentOp, token.Exponent),
	tagged(timesOp, token.Times),
	tagged(concatOp, token.Concat),
	tagged(slashOp, token.Slash),
	tagged(lparenOp, token.LParen),
	tagged(rparenOp, token.RParen),
	tagged(dotOp, token.Dot),
	tagged(commaOp, token.Comma),
	tagged(dollarOp, token.Dollar),
	tagged(aposOp, token.Apostrophe),
	tagged(quoteOp, token.Quote),
	tagged(colonOp, token.Colon),
	tagged(langleOp, token.LAngle),
	tagged(rangleOp, token.RAngle),
	tagged(combinator.WhitespaceRune1, token.Whitespace),
	combinator.Map(combinator.Wildcard[rune](), func(r rune) token.Token { return token.Token{Tag: token.Unknown, Value: string(r)} }),
)

// Tokenizer tokenizes an entire string; per spec.md §7 it never fails
// — the final wildcard alternative guarantees totality.
var Tokenizer = combinator.Many(SingleToken)

// Tokenize runs Tokenizer over code and returns the resulting tokens.
// Because SingleToken always matches at least one rune (wildcard is
// the last resort), Tokenize always consumes all of code.
func Tokenize(code string) []token.Token {
	runes := []rune(code)
	r := Tokenizer(runes, 0)
	return r.Value
}

// ParseLabel parses a 1-5 digit label, tolerating surrounding spaces,
// into an int. Used by the raw-line classifier on columns 1-5.
func ParseLabel(field string) (int, bool) {
	v, ok, _, _ := combinator.ParseText(combinator.Liberal(Label), field)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
