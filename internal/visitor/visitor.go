// Package visitor renders the parsed tree back into text: the seven
// visitors of spec.md §4.6, built on one shared post-order walk
// of the block tree plus two RawLine-stream passes that run before
// logical-line assembly.
package visitor

import (
	"fmt"
	"strings"

	"github.com/fort77/fort77/internal/block"
	"github.com/fort77/fort77/internal/color"
	"github.com/fort77/fort77/internal/logical"
	"github.com/fort77/fort77/internal/rawline"
)

const marginColumn = 6
const continuationColumn = 5

// Visitor exposes the four callbacks spec.md §4.6 describes. Each
// block-level callback receives a thunk that renders its children —
// calling it is what drives the recursive descent, so a visitor that
// needs to mutate state before descending (Indent, print_details) can
// do so around the call instead of only after it.
type Visitor interface {
	RawLine(rl rawline.RawLine) string
	LogicalLine(ll logical.LogicalLine, renderChildren func() []string) string
	InnerBlock(ib *block.InnerBlock, renderChildren func() []string) string
	OuterBlock(ob *block.OuterBlock, renderChildren func() []string) string
}

// Base gives every concrete visitor the identity default: flatten
// children into a list of strings and join them, passing original
// text through for each RawLine untouched.
type Base struct{}

func (Base) RawLine(rl rawline.RawLine) string { return rl.Original }
func (Base) LogicalLine(_ logical.LogicalLine, renderChildren func() []string) string {
	return strings.Join(renderChildren(), "")
}
func (Base) InnerBlock(_ *block.InnerBlock, renderChildren func() []string) string {
	return strings.Join(renderChildren(), "")
}
func (Base) OuterBlock(_ *block.OuterBlock, renderChildren func() []string) string {
	return strings.Join(renderChildren(), "")
}

func renderNode(v Visitor, n block.Node) string {
	switch {
	case n.Logical != nil:
		ll := *n.Logical
		return v.LogicalLine(ll, func() []string {
			out := make([]string, len(ll.Children))
			for i, rl := range ll.Children {
				out[i] = v.RawLine(rl)
			}
			return out
		})
	case n.Inner != nil:
		ib := n.Inner
		return v.InnerBlock(ib, func() []string {
			out := make([]string, len(ib.Children))
			for i, c := range ib.Children {
				out[i] = renderNode(v, c)
			}
			return out
		})
	case n.Outer != nil:
		ob := n.Outer
		return v.OuterBlock(ob, func() []string {
			out := make([]string, len(ob.Children))
			for i, c := range ob.Children {
				out[i] = renderNode(v, c)
			}
			return out
		})
	}
	return ""
}

// TopLevel orchestrates the traversal and joins the result, per
// spec.md §4.6.
func TopLevel(v Visitor, root *block.OuterBlock) string {
	return renderNode(v, block.Node{Outer: root})
}

// Plain is the identity visitor: emit original for every RawLine.
type Plain struct{ Base }

// RemoveComments emits nothing for comment lines.
type RemoveComments struct{ Base }

func (RemoveComments) RawLine(rl rawline.RawLine) string {
	if rl.Type == rawline.Comment {
		return ""
	}
	return rl.Original
}

// RemoveBlanks collapses each maximal run of whitespace-only lines in
// a RawLine stream to a single "\n" line. It runs before logical-line
// assembly, directly on the classifier's output, per spec.md §4.6.
func RemoveBlanks(lines []rawline.RawLine) string {
	var sb strings.Builder
	inRun := false
	for _, rl := range lines {
		if strings.TrimSpace(rl.Original) == "" {
			if !inRun {
				sb.WriteString("\n")
				inRun = true
			}
			continue
		}
		inRun = false
		sb.WriteString(rl.Original)
	}
	return sb.String()
}

// NewComments rewrites any comment line whose first character in
// trimmed-lowered form is 'c' or '*' to start with '!' instead,
// preserving every other character. Also runs pre-assembly.
func NewComments(lines []rawline.RawLine) string {
	var sb strings.Builder
	for _, rl := range lines {
		sb.WriteString(upgradeComment(rl))
	}
	return sb.String()
}

func upgradeComment(rl rawline.RawLine) string {
	if rl.Type != rawline.Comment {
		return rl.Original
	}
	trimmedLower := strings.ToLower(strings.TrimSpace(rl.Original))
	if trimmedLower == "" || (trimmedLower[0] != 'c' && trimmedLower[0] != '*') {
		return rl.Original
	}
	runes := []rune(rl.Original)
	for i, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		runes[i] = '!'
		break
	}
	return string(runes)
}

// Indent carries a mutable indent level, incremented by Width on
// entering each InnerBlock.
type Indent struct {
	Base
	Width int
	level int
}

// NewIndent builds an Indent visitor with the given per-level width
// (spec.md §4.6 default 4). The level starts at one column, not one
// Width, so code outside any block already sits one space past
// column 6.
func NewIndent(width int) *Indent {
	if width <= 0 {
		width = 4
	}
	return &Indent{Width: width, level: 1}
}

func firstNRunes(s string, n int) string {
	r := []rune(s)
	if len(r) >= n {
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}

func (v *Indent) RawLine(rl rawline.RawLine) string {
	if rl.Type == rawline.Comment {
		return rl.Original
	}
	tab := v.level
	if rl.Type == rawline.Continuation {
		tab = v.level + v.Width
	}
	return firstNRunes(rl.Original, marginColumn) + strings.Repeat(" ", tab) + strings.TrimLeft(rl.Code, " \t")
}

func (v *Indent) InnerBlock(ib *block.InnerBlock, renderChildren func() []string) string {
	v.level += v.Width
	out := strings.Join(renderChildren(), "")
	v.level -= v.Width
	return out
}

// Reconstruct rebuilds original column-for-column from the tokens
// each RawLine carries. It round-trips well-formed input exactly.
type Reconstruct struct{ Base }

func (Reconstruct) RawLine(rl rawline.RawLine) string {
	if rl.Type == rawline.Comment {
		return rl.Original
	}

	var prefix string
	if rl.Type == rawline.Continuation {
		prefix = strings.Repeat(" ", continuationColumn) + rl.Cont
	} else {
		var labelField string
		if rl.Label != nil {
			labelField = fmt.Sprintf("%-*d", continuationColumn, *rl.Label)
		} else {
			labelField = strings.Repeat(" ", continuationColumn)
		}
		col6 := rl.Cont
		if col6 == "" {
			col6 = " "
		}
		prefix = labelField + col6
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, t := range rl.Tokens {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// Details renders the pretty "||| "-nested tree listing of
// print_details: statement kind, optional label, and code text per
// non-comment line. UseColor paints the statement keyword, matching
// the teacher's Colorize convention for its own tree formatter
// (core/planfmt/formatter/tree.go).
type Details struct {
	Base
	UseColor  bool
	level     int
	statement string
}

func depthPrefix(level int) string { return strings.Repeat("||| ", level) }

func (v *Details) RawLine(rl rawline.RawLine) string {
	switch rl.Type {
	case rawline.Comment:
		return ""
	case rawline.Continuation:
		v.level++
		stmt := color.Colorize(v.statement, color.Blue, v.UseColor)
		// rl.Code already carries its own trailing "\n" (it is
		// originalRunes[6:]); do not append a second one.
		out := depthPrefix(v.level) + stmt + " continued: " + strings.TrimLeft(rl.Code, " \t")
		v.level--
		return out
	default: // initial
		stmt := color.Colorize(rl.Statement, color.Blue, v.UseColor)
		var info string
		if rl.Label != nil {
			info = fmt.Sprintf("%s[%d]: ", stmt, *rl.Label)
		} else {
			info = stmt + ": "
		}
		return depthPrefix(v.level) + info + strings.TrimLeft(rl.Code, " \t")
	}
}

func (v *Details) LogicalLine(ll logical.LogicalLine, renderChildren func() []string) string {
	v.statement = ll.Statement
	return strings.Join(renderChildren(), "")
}

func (v *Details) InnerBlock(ib *block.InnerBlock, renderChildren func() []string) string {
	v.level++
	out := strings.Join(renderChildren(), "")
	v.level--
	return out
}
