package visitor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fort77/fort77/internal/block"
	"github.com/fort77/fort77/internal/logical"
	"github.com/fort77/fort77/internal/rawline"
	"github.com/fort77/fort77/internal/visitor"
)

func buildTree(t *testing.T, src string) (*block.OuterBlock, []rawline.RawLine) {
	t.Helper()
	raws := rawline.ClassifyAll(src)
	lls, err := logical.Assemble(raws)
	require.NoError(t, err)
	tree, err := block.Parse(lls, src)
	require.NoError(t, err)
	return tree, raws
}

func TestPlainPassThrough(t *testing.T) {
	// spec.md §8 concrete scenario 1.
	src := "      program hi\n      end\n"
	tree, _ := buildTree(t, src)
	got := visitor.TopLevel(visitor.Plain{}, tree)
	assert.Equal(t, src, got)
}

func TestRemoveCommentsStripsCommentLines(t *testing.T) {
	src := "c a comment\n      program hi\nc more comment\n      end\n"
	tree, _ := buildTree(t, src)
	got := visitor.TopLevel(visitor.RemoveComments{}, tree)
	assert.NotContains(t, strings.ToLower(got), "comment")
	assert.Contains(t, got, "program hi")
	assert.Contains(t, got, "end")
}

func TestRemoveBlanksCollapsesRuns(t *testing.T) {
	raws := rawline.ClassifyAll("      x = 1\n\n\n\n      y = 2\n")
	got := visitor.RemoveBlanks(raws)
	assert.Equal(t, "      x = 1\n\n      y = 2\n", got)
}

func TestNewCommentsRewritesCOrStar(t *testing.T) {
	// spec.md §8 concrete scenario 2.
	raws := rawline.ClassifyAll("C hello\n* world\n      end\n")
	got := visitor.NewComments(raws)
	assert.Equal(t, "! hello\n! world\n      end\n", got)
}

func TestNewCommentsLeavesBangAlone(t *testing.T) {
	raws := rawline.ClassifyAll("! already modern\n      end\n")
	got := visitor.NewComments(raws)
	assert.Equal(t, "! already modern\n      end\n", got)
}

func TestNewCommentsIdempotent(t *testing.T) {
	src := "C hello\n* world\n      end\n"
	raws := rawline.ClassifyAll(src)
	once := visitor.NewComments(raws)
	twice := visitor.NewComments(rawline.ClassifyAll(once))
	assert.Equal(t, once, twice)
}

func TestReconstructRoundTrips(t *testing.T) {
	// spec.md §8 invariant 1: reconstruct(parse(s)) == s (modulo
	// trailing whitespace).
	srcs := []string{
		"      program hi\n      end\n",
		"      x = 1 +\n     *2\n      end\n",
		"10    continue\n      goto 10\n      end\n",
		"      if (x.gt.0) then\n        y = 1\n      end if\n      end\n",
	}
	for _, src := range srcs {
		tree, _ := buildTree(t, src)
		got := visitor.TopLevel(visitor.Reconstruct{}, tree)
		assert.Equal(t, src, got, "round-trip of %q", src)
	}
}

func TestReconstructPreservesInitialColumn6Zero(t *testing.T) {
	// The column-6-is-'0' byte must survive reconstruction exactly; it
	// is not part of the trailing-whitespace exception.
	src := "     0x = 1\n      end\n"
	tree, _ := buildTree(t, src)
	got := visitor.TopLevel(visitor.Reconstruct{}, tree)
	assert.Equal(t, src, got)
}

func TestIndentIdempotent(t *testing.T) {
	// spec.md §8 invariant 5: indent is idempotent on its own output
	// when indent_width is unchanged.
	src := "      if (x.gt.0) then\n        y = 1\n      end if\n      end\n"
	tree, _ := buildTree(t, src)
	once := visitor.TopLevel(visitor.NewIndent(4), tree)

	raws := rawline.ClassifyAll(once)
	lls, err := logical.Assemble(raws)
	require.NoError(t, err)
	tree2, err := block.Parse(lls, once)
	require.NoError(t, err)
	twice := visitor.TopLevel(visitor.NewIndent(4), tree2)

	assert.Equal(t, once, twice)
}

func TestDetailsOmitsComments(t *testing.T) {
	src := "c a comment\n      program hi\n      x = 1\n      end\n"
	tree, _ := buildTree(t, src)
	got := visitor.TopLevel(&visitor.Details{}, tree)
	assert.NotContains(t, got, "comment")
	assert.Contains(t, got, "program")
	assert.Contains(t, got, "assignment")
}

func TestDetailsMarksNestingDepth(t *testing.T) {
	src := "      if (x.gt.0) then\n        y = 1\n      end if\n      end\n"
	tree, _ := buildTree(t, src)
	got := visitor.TopLevel(&visitor.Details{}, tree)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	var bodyLine string
	for _, l := range lines {
		if strings.Contains(l, "assignment") {
			bodyLine = l
		}
	}
	require.NotEmpty(t, bodyLine)
	assert.True(t, strings.HasPrefix(bodyLine, "||| |||"), "nested body line should have depth >= 2, got %q", bodyLine)
}
