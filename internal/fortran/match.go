package fortran

import "github.com/fort77/fort77/internal/combinator"

// MatchPhrase tries to parse code (skipping leading whitespace, then
// each word of phrase separated by liberal whitespace) per spec.md
// §4.3 step 5: `spaces >> keyword_1 >> spaces >> keyword_2 >> ...`.
// It reports the rune index where the match ended, for re-tokenizing
// the remainder as tokens_after.
func MatchPhrase(code string, phrase Phrase) (end int, ok bool) {
	if len(phrase) == 0 {
		return 0, false
	}
	p := keyword(phrase[0])
	for _, w := range phrase[1:] {
		p = combinator.SkipLeft(p, keyword(w))
	}
	r := combinator.Scan(p, code, 0)
	if !r.Ok {
		return 0, false
	}
	return r.End, true
}

// IsLabeledDo reports whether code matches `keyword("do") spaces label`
// — the guard spec.md §4.5 negates to tell a block do from a labeled
// (old-style) do, which the block recognizer leaves as a plain
// non-block statement.
func IsLabeledDo(code string) bool {
	p := combinator.SkipLeft(keyword("do"), combinator.Liberal(Label))
	r := combinator.Scan(p, code, 0)
	return r.Ok
}
