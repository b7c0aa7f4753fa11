package fortran

import (
	"sort"
	"strings"
)

// Phrase is a multi-word statement keyword phrase, stored as its
// constituent words (e.g. ["end", "if"]).
type Phrase []string

// Text joins a phrase into its canonical space-separated lowercase
// form, e.g. "end if", "double precision", "block data".
func (p Phrase) Text() string { return strings.Join(p, " ") }

// The statement catalog (spec.md §4.2). Order matters: within "All",
// longer phrases must be tried before their prefixes, so "end if" and
// "end do" (in ControlBlock) must precede the bare "end" (in
// TopLevel); All is sorted to guarantee this. Grouping mirrors original_source/linter/fortran.py's
// Grammar.statements table exactly.
var (
	ControlNonblock = []Phrase{{"go", "to"}, {"call"}, {"return"}, {"continue"}, {"stop"}, {"pause"}}
	ControlBlock    = []Phrase{{"if"}, {"else", "if"}, {"else"}, {"end", "if"}, {"do"}, {"end", "do"}}
	Control         = append(append([]Phrase{}, ControlBlock...), ControlNonblock...)

	IO     = []Phrase{{"read"}, {"write"}, {"print"}, {"rewind"}, {"backspace"}, {"endfile"}, {"open"}, {"close"}, {"inquire"}}
	Assign = []Phrase{{"assign"}}

	Executable = append(append(append([]Phrase{}, Control...), Assign...), IO...)

	Type = []Phrase{{"integer"}, {"real"}, {"double", "precision"}, {"complex"}, {"logical"}, {"character"}}

	Specification = append(append([]Phrase{}, Type...),
		Phrase{"dimension"}, Phrase{"common"}, Phrase{"equivalence"}, Phrase{"implicit"},
		Phrase{"parameter"}, Phrase{"external"}, Phrase{"intrinsic"}, Phrase{"save"})

	TopLevel = []Phrase{
		{"program"}, {"end", "program"},
		{"function"}, {"end", "function"},
		{"subroutine"}, {"end", "subroutine"},
		{"block", "data"}, {"end", "block", "data"},
		{"end"},
	}

	MiscNonexec = []Phrase{{"entry"}, {"data"}, {"format"}}

	NonExecutable = append(append(append([]Phrase{}, Specification...), MiscNonexec...), TopLevel...)

	// All is the statement-detection order: the groups above sorted by
	// decreasing text length (ties keep grouping order), so every
	// phrase is tried before any shorter phrase that is its prefix
	// ("double precision" before "do", "end if" before "end").
	All = byDecreasingLength(append(append([]Phrase{}, Executable...), NonExecutable...))
)

func byDecreasingLength(ps []Phrase) []Phrase {
	sort.SliceStable(ps, func(i, j int) bool { return len(ps[i].Text()) > len(ps[j].Text()) })
	return ps
}

// StatementAssignment is the canonical statement name used when no
// phrase in All matches (spec.md §4.3 step 5).
const StatementAssignment = "assignment"

// Keywords returns the set of every distinct word appearing in any
// catalog phrase, plus "then" and "none" (spec.md §4.7 variable
// analysis keyword set).
func Keywords() map[string]bool {
	set := map[string]bool{"then": true, "none": true}
	for _, p := range All {
		for _, w := range p {
			set[w] = true
		}
	}
	return set
}

// PhraseSet builds a lookup set of the canonical text of each phrase
// in groups, for statement-membership tests (non_block, specification,
// top-level, …).
func PhraseSet(groups ...[]Phrase) map[string]bool {
	set := make(map[string]bool)
	for _, g := range groups {
		for _, p := range g {
			set[p.Text()] = true
		}
	}
	return set
}

// Intrinsics is the fixed list of intrinsic function names used by the
// variable analysis (spec.md §4.2, §4.7). Preserved verbatim, typos
// included (amax10, iflx — spec.md §9 Open Question: a likely typo in
// the source, kept for compatibility rather than "fixed").
var Intrinsics = buildIntrinsicSet([]string{
	"abs", "acos", "aimag", "aint", "alog",
	"alog10", "amax10", "amax0", "amax1", "amin0",
	"amin1", "amod", "anint", "asin", "atan",
	"atan2", "cabs", "ccos", "char", "clog",
	"cmplx", "conjg", "cos", "cosh", "csin",
	"csqrt", "dabs", "dacos", "dasin", "datan",
	"datan2", "dble", "dcos", "dcosh", "ddim",
	"dexp", "dim", "dint", "dlog", "dlog10",
	"dmax1", "dmin1", "dmod", "dnint", "dprod",
	"dreal", "dsign", "dsin", "dsinh", "dsqrt",
	"dtan", "dtanh", "exp", "float", "iabs", "ichar",
	"idim", "idint", "idnint", "iflx", "index",
	"int", "isign", "len", "lge", "lgt", "lle",
	"llt", "log", "log10", "max", "max0", "max1",
	"min", "min0", "min1", "mod", "nint", "real",
	"sign", "sin", "sinh", "sngl", "sqrt", "tan", "tanh",
	"matmul", "cycle",
})

func buildIntrinsicSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
