// Package block nests the LogicalLine stream into if/do blocks and
// program units (spec.md §4.5), using the same combinator engine
// re-targeted at atom=logical.LogicalLine.
package block

import (
	"strings"

	"github.com/fort77/fort77/internal/combinator"
	"github.com/fort77/fort77/internal/diag"
	"github.com/fort77/fort77/internal/fortran"
	"github.com/fort77/fort77/internal/logical"
	"github.com/fort77/fort77/internal/token"
)

// traced wraps a block-level parser with a slog.Debug entry/exit trace
// (SPEC_FULL.md's ambient logging convention), so --debug shows which
// nesting rule was attempted at which logical-line position and
// whether it committed.
func traced(rule string, p parser) parser {
	return func(s []logical.LogicalLine, pos int) combinator.Result[Node] {
		diag.Logger.Debug("block enter", "rule", rule, "pos", pos)
		r := p(s, pos)
		diag.Logger.Debug("block exit", "rule", rule, "pos", pos, "ok", r.Ok, "end", r.End)
		return r
	}
}

// Node is a tagged union over the three kinds of tree node a block or
// program unit can hold as a child: a LogicalLine, an InnerBlock body,
// or a nested OuterBlock. Exactly one field is set.
type Node struct {
	Logical *logical.LogicalLine
	Inner   *InnerBlock
	Outer   *OuterBlock
}

// InnerBlock is a contiguous body inside a block.
type InnerBlock struct {
	Children []Node
}

// OuterBlock is a block or program unit: if_block, do_block,
// program_block, function_block, subroutine_block, block_data_block,
// or source_file.
type OuterBlock struct {
	Statement string
	Children  []Node
}

func logicalNode(ll logical.LogicalLine) Node { return Node{Logical: &ll} }
func innerNode(ib InnerBlock) Node             { return Node{Inner: &ib} }
func outerNode(ob OuterBlock) Node             { return Node{Outer: &ob} }

type parser = combinator.Parser[logical.LogicalLine, Node]

func satisfy(pred func(logical.LogicalLine) bool, msg string) parser {
	return combinator.Map(combinator.Satisfy(pred, msg), logicalNode)
}

func statementIs(s string) func(logical.LogicalLine) bool {
	return func(ll logical.LogicalLine) bool { return ll.Statement == s }
}

func statementIn(set map[string]bool) func(logical.LogicalLine) bool {
	return func(ll logical.LogicalLine) bool { return set[ll.Statement] }
}

func statementNotIn(set map[string]bool) func(logical.LogicalLine) bool {
	return func(ll logical.LogicalLine) bool { return !set[ll.Statement] }
}

var (
	nonBlockStatements = fortran.PhraseSet(fortran.IO, fortran.Assign, fortran.Specification,
		fortran.MiscNonexec, fortran.ControlNonblock)
	topLevelStatements = fortran.PhraseSet(fortran.TopLevel)
	ifSectionEnders    = map[string]bool{"end if": true, "else if": true, "else": true}
)

// nonBlock matches any logical line whose statement is in
// io ∪ assign ∪ specification ∪ misc-nonexec ∪ control-nonblock.
var nonBlock = satisfy(statementIn(nonBlockStatements), "non-block statement")

func hasThenGuard(ll logical.LogicalLine) bool {
	for _, t := range ll.TokensAfter {
		if t.Tag == token.Name && strings.ToLower(t.Value) == "then" {
			return true
		}
	}
	return false
}

var ifBegin = satisfy(func(ll logical.LogicalLine) bool {
	return ll.Statement == "if" && hasThenGuard(ll)
}, "if ... then")

var ifEnd = satisfy(statementIs("end if"), "end if")

var ifSectionTail = satisfy(func(ll logical.LogicalLine) bool {
	return ll.Statement == "else if" || ll.Statement == "else"
}, "else if / else")

// ifBlockRef and doBlockRef are mutually recursive; Lazy resolves the
// forward reference each makes to the other.
var ifBlockRef = combinator.Lazy(func() parser { return ifBlockParser })
var doBlockRef = combinator.Lazy(func() parser { return doBlockParser })

// ifSectionBodyLine: nested blocks are tried before the catch-all so a
// nested if/do inside an if-section's body still nests, mirroring
// do_block's own body alternation below.
var ifSectionBodyLine = combinator.Choice(
	doBlockRef,
	ifBlockRef,
	satisfy(statementNotIn(ifSectionEnders), "if-section body line"),
)

type maybeLine struct {
	Line logical.LogicalLine
	Ok   bool
}

func optionalLine(p combinator.Parser[logical.LogicalLine, logical.LogicalLine]) combinator.Parser[logical.LogicalLine, maybeLine] {
	return combinator.Or(
		combinator.Map(p, func(ll logical.LogicalLine) maybeLine { return maybeLine{ll, true} }),
		combinator.Succeed[logical.LogicalLine, maybeLine](maybeLine{}),
	)
}

func asLogicalLine(n Node) (logical.LogicalLine, bool) {
	if n.Logical == nil {
		var zero logical.LogicalLine
		return zero, false
	}
	return *n.Logical, true
}

// ifSection is body* (else-if/else tail)? per spec.md §4.5's section.
type ifSection struct {
	Body []Node
	Tail maybeLine
}

var ifSectionParser = combinator.Map(
	combinator.Then(combinator.Many(ifSectionBodyLine), optionalLine(func(s []logical.LogicalLine, pos int) combinator.Result[logical.LogicalLine] {
		r := ifSectionTail(s, pos)
		if !r.Ok {
			return combinator.Result[logical.LogicalLine]{Expected: r.Expected, Pos: r.Pos}
		}
		ll, _ := asLogicalLine(r.Value)
		return combinator.Result[logical.LogicalLine]{Ok: true, Value: ll, End: r.End}
	})),
	func(p combinator.Pair[[]Node, maybeLine]) ifSection {
		return ifSection{Body: p.First, Tail: p.Second}
	},
)

var ifBlockParser = traced("if_block", combinator.Map(
	combinator.Then(ifBegin, combinator.Then(combinator.Many(ifSectionParser), ifEnd)),
	func(p combinator.Pair[Node, combinator.Pair[[]ifSection, Node]]) Node {
		children := []Node{p.First}
		for _, sec := range p.Second.First {
			if len(sec.Body) > 0 {
				children = append(children, innerNode(InnerBlock{Children: sec.Body}))
			}
			if sec.Tail.Ok {
				children = append(children, logicalNode(sec.Tail.Line))
			}
		}
		children = append(children, p.Second.Second)
		return outerNode(OuterBlock{Statement: "if_block", Children: children})
	},
))

var doBegin = satisfy(func(ll logical.LogicalLine) bool {
	return ll.Statement == "do" && !fortran.IsLabeledDo(ll.Code)
}, "block do")

var doEnd = satisfy(statementIs("end do"), "end do")

// doBodyLine: non_block | do_block | if_block | any-non-"end do".
var doBodyLine = combinator.Choice(
	nonBlock,
	doBlockRef,
	ifBlockRef,
	satisfy(func(ll logical.LogicalLine) bool { return ll.Statement != "end do" }, "non end-do line"),
)

var doBlockParser = traced("do_block", combinator.Map(
	combinator.Then(doBegin, combinator.Then(combinator.Many(doBodyLine), doEnd)),
	func(p combinator.Pair[Node, combinator.Pair[[]Node, Node]]) Node {
		children := []Node{p.First, innerNode(InnerBlock{Children: p.Second.First}), p.Second.Second}
		return outerNode(OuterBlock{Statement: "do_block", Children: children})
	},
))

// topLevelBlock builds the top_level_block(kind) parser from spec.md
// §4.5: first_line matches one of beginTexts (optional when
// firstOptional, letting a headerless main program through),
// mid_lines is zero-or-more lines not in top-level (still recognizing
// nested if/do blocks), last_line is "end <kind>" or bare "end".
func topLevelBlock(statement string, beginTexts []string, firstOptional bool) parser {
	beginSet := make(map[string]bool, len(beginTexts))
	for _, t := range beginTexts {
		beginSet[t] = true
	}
	begin := satisfy(statementIn(beginSet), statement+" header")
	blockName := strings.ReplaceAll(statement, " ", "_") + "_block"

	midLine := combinator.Choice(
		doBlockRef,
		ifBlockRef,
		satisfy(statementNotIn(topLevelStatements), statement+" body line"),
	)
	mid := combinator.Map(combinator.Many(midLine), func(nodes []Node) Node {
		return innerNode(InnerBlock{Children: nodes})
	})

	endSet := map[string]bool{"end " + statement: true, "end": true}
	end := satisfy(statementIn(endSet), "end "+statement)

	if firstOptional {
		return traced(blockName, combinator.Map(
			combinator.Then(optionalLine(func(s []logical.LogicalLine, pos int) combinator.Result[logical.LogicalLine] {
				r := begin(s, pos)
				if !r.Ok {
					return combinator.Result[logical.LogicalLine]{Expected: r.Expected, Pos: r.Pos}
				}
				ll, _ := asLogicalLine(r.Value)
				return combinator.Result[logical.LogicalLine]{Ok: true, Value: ll, End: r.End}
			}), combinator.Then(mid, end)),
			func(p combinator.Pair[maybeLine, combinator.Pair[Node, Node]]) Node {
				var children []Node
				if p.First.Ok {
					children = append(children, logicalNode(p.First.Line))
				}
				children = append(children, p.Second.First, p.Second.Second)
				return outerNode(OuterBlock{Statement: blockName, Children: children})
			},
		))
	}

	return traced(blockName, combinator.Map(
		combinator.Then(begin, combinator.Then(mid, end)),
		func(p combinator.Pair[Node, combinator.Pair[Node, Node]]) Node {
			return outerNode(OuterBlock{
				Statement: blockName,
				Children:  []Node{p.First, p.Second.First, p.Second.Second},
			})
		},
	))
}

var (
	functionBlock   = topLevelBlock("function", []string{"function"}, false)
	subroutineBlock = topLevelBlock("subroutine", []string{"subroutine"}, false)
	blockDataBlock  = topLevelBlock("block data", []string{"block data"}, false)
	programBlock    = topLevelBlock("program", []string{"program"}, true)
)

// programUnit tries the named-keyword units before the headerless
// main program, matching spec.md §4.5's declared order: function |
// subroutine | block data | main_program.
var programUnit = combinator.Choice(functionBlock, subroutineBlock, blockDataBlock, programBlock)

var sourceFileParser = combinator.Map(combinator.Many1(programUnit), func(units []Node) Node {
	return outerNode(OuterBlock{Statement: "source_file", Children: units})
})

// Parse nests a LogicalLine stream into the program-unit tree. source
// is the original file text, carried through only so a failure can
// render a diag.ParseFailure snippet against the physical line the
// farthest-advancing alternative gave up on.
func Parse(lines []logical.LogicalLine, source string) (*OuterBlock, error) {
	result, ok, expected, pos := combinator.Parse(sourceFileParser, lines)
	if !ok {
		lineNo := len(lines) + 1
		if pos < len(lines) {
			lineNo = lines[pos].LineNumber
		}
		return nil, diag.NewLineFailure(expected, source, lineNo)
	}
	return result.Outer, nil
}
