package analysis_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fort77/fort77/internal/analysis"
	"github.com/fort77/fort77/internal/block"
	"github.com/fort77/fort77/internal/logical"
	"github.com/fort77/fort77/internal/rawline"
)

func parse(t *testing.T, src string) *block.OuterBlock {
	t.Helper()
	lls, err := logical.Assemble(rawline.ClassifyAll(src))
	require.NoError(t, err)
	tree, err := block.Parse(lls, src)
	require.NoError(t, err)
	return tree
}

func TestUnitNamesHeaderedAndHeaderless(t *testing.T) {
	tree := parse(t, "      subroutine foo\n      return\n      end\n")
	assert.Equal(t, []string{"foo"}, analysis.UnitNames(tree))

	tree = parse(t, "      x = 1\n      end\n")
	assert.Empty(t, analysis.UnitNames(tree))
}

func TestExtractHeaderNamedUnit(t *testing.T) {
	tree := parse(t, "      subroutine foo(a, b)\n      x = a + b\n      end\n")
	h := analysis.ExtractHeader(tree.Children[0].Outer)
	assert.Equal(t, "subroutine", h.Statement)
	assert.Equal(t, "foo", h.ProgramName)
	assert.Equal(t, []string{"a", "b"}, h.FormalParams)
}

func TestExtractHeaderHeaderlessMain(t *testing.T) {
	tree := parse(t, "      x = 1\n      end\n")
	h := analysis.ExtractHeader(tree.Children[0].Outer)
	assert.Equal(t, "program", h.Statement)
	assert.Equal(t, "", h.ProgramName)
	assert.Empty(t, h.FormalParams)
}

func TestLabelLifetime(t *testing.T) {
	// spec.md §8 concrete scenario 5: a label declared at program-unit
	// line 3 and referenced at lines 5 and 7 yields interval (10, 3, 7).
	src := "      program p\n" +
		"      x = 1\n" +
		"      y = 2\n" +
		"10    continue\n" +
		"      z = 3\n" +
		"      goto 10\n" +
		"      w = 4\n" +
		"      goto 10\n" +
		"      end\n"
	tree := parse(t, src)
	h := analysis.ExtractHeader(tree.Children[0].Outer)

	var w bytes.Buffer
	analysis.AnalyzeLabels(&w, h.MainBlock, 7, 60, false)
	assert.Contains(t, w.String(), "labels: [10]")
	assert.Contains(t, w.String(), "10 defined at: 3 occurred at: [5 7]")
}

func TestLabelReferencedTwiceOnOneLineCountsOnce(t *testing.T) {
	// A line mentioning the same label twice (e.g. "write (10, 10)")
	// must contribute one occurrence, not one per matching token.
	src := "      program p\n" +
		"10    continue\n" +
		"      write (10, 10)\n" +
		"      end\n"
	tree := parse(t, src)
	h := analysis.ExtractHeader(tree.Children[0].Outer)

	var w bytes.Buffer
	analysis.AnalyzeLabels(&w, h.MainBlock, 3, 60, false)
	assert.Contains(t, w.String(), "10 defined at: 1 occurred at: [2]")
}

func TestUnaccountedForVariable(t *testing.T) {
	// spec.md §8 concrete scenario 6: zzz used with no specification
	// statement and not an intrinsic/unit name is reported unaccounted
	// for.
	src := "      subroutine foo\n" +
		"      zzz = 1\n" +
		"      end\n"
	tree := parse(t, src)
	unitNames := analysis.UnitNames(tree)
	h := analysis.ExtractHeader(tree.Children[0].Outer)

	var w bytes.Buffer
	analysis.AnalyzeVariables(&w, unitNames, h.FormalParams, h.MainBlock, 1, 60, false)
	assert.Contains(t, w.String(), "unaccounted for: [zzz]")
}

func TestVariableDeclaredInSpecificationIsNotUnaccounted(t *testing.T) {
	src := "      subroutine foo\n" +
		"      integer zzz\n" +
		"      zzz = 1\n" +
		"      end\n"
	tree := parse(t, src)
	unitNames := analysis.UnitNames(tree)
	h := analysis.ExtractHeader(tree.Children[0].Outer)

	var w bytes.Buffer
	analysis.AnalyzeVariables(&w, unitNames, h.FormalParams, h.MainBlock, 2, 60, false)
	assert.NotContains(t, w.String(), "unaccounted for")
}

func TestImplicitNoneContributesNoLocalVariable(t *testing.T) {
	// spec.md §4.7: "implicit none" contributes nothing to
	// local_variables, so "none" itself must never be mistaken for a
	// declared variable.
	src := "      subroutine foo\n" +
		"      implicit none\n" +
		"      integer zzz\n" +
		"      zzz = 1\n" +
		"      end\n"
	tree := parse(t, src)
	unitNames := analysis.UnitNames(tree)
	h := analysis.ExtractHeader(tree.Children[0].Outer)

	var w bytes.Buffer
	analysis.AnalyzeVariables(&w, unitNames, h.FormalParams, h.MainBlock, 3, 60, false)
	assert.NotContains(t, w.String(), "unaccounted for")
}

func TestBuildReportIsDeterministicAndComplete(t *testing.T) {
	src := "      program p\n" +
		"      x = 1\n" +
		"10    continue\n" +
		"      goto 10\n" +
		"      end\n"
	tree := parse(t, src)
	report := analysis.BuildReport(tree, 60)
	require.Len(t, report.Units, 1)
	unit := report.Units[0]
	assert.Equal(t, "program", unit.Statement)
	require.Len(t, unit.Labels, 1)
	assert.Equal(t, 10, unit.Labels[0].Label)
	assert.Equal(t, 2, unit.Labels[0].DeclLine)
}
