package rawline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fort77/fort77/internal/rawline"
)

func TestClassifyComment(t *testing.T) {
	tests := []string{
		"C hello\n",
		"* world\n",
		"! modern style\n",
		"\n",
		"   \n",
	}
	for _, in := range tests {
		rl := rawline.Classify(in)
		assert.Equal(t, rawline.Comment, rl.Type, "input %q", in)
		assert.Equal(t, in, rl.Original)
	}
}

func TestClassifyInitialWithLabel(t *testing.T) {
	rl := rawline.Classify("10    continue\n")
	require.Equal(t, rawline.Initial, rl.Type)
	require.NotNil(t, rl.Label)
	assert.Equal(t, 10, *rl.Label)
	assert.Equal(t, "continue", rl.Statement)
}

func TestClassifyInitialWithoutLabel(t *testing.T) {
	rl := rawline.Classify("      x = 1\n")
	require.Equal(t, rawline.Initial, rl.Type)
	assert.Nil(t, rl.Label)
	assert.Equal(t, "assignment", rl.Statement)
}

func TestClassifyBlankLineWithEmptyCodeIsComment(t *testing.T) {
	// A line whose code region is empty and which is otherwise blank
	// classifies as a comment, not an initial line.
	rl := rawline.Classify("\n")
	assert.Equal(t, rawline.Comment, rl.Type) // blank line is a comment per spec.md §4.3 step 1

	rl = rawline.Classify("     \n")
	assert.Equal(t, rawline.Comment, rl.Type)
}

func TestClassifyShortLineIsInitial(t *testing.T) {
	// spec.md §6: "Lines shorter than 6 columns are legal and
	// classified as initial with no code."
	rl := rawline.Classify("123\n")
	require.Equal(t, rawline.Initial, rl.Type)
	assert.Equal(t, "", rl.Code)
}

func TestClassifyContinuation(t *testing.T) {
	rl := rawline.Classify("     1continued code\n")
	require.Equal(t, rawline.Continuation, rl.Type)
	assert.Equal(t, "1", rl.Cont)
	assert.Equal(t, "continued code\n", rl.Code)
}

func TestClassifyColumn6ZeroIsInitialNotContinuation(t *testing.T) {
	// spec.md §8 boundary case: a line whose column 6 is '0' must be
	// classified initial, not continuation.
	rl := rawline.Classify("     0x = 1\n")
	require.Equal(t, rawline.Initial, rl.Type)
	assert.Equal(t, "0", rl.Cont)
}

func TestClassifyContinuationAssertsBlankLabelField(t *testing.T) {
	// spec.md §3/§9: a continuation line's columns 1-5 must be blank;
	// violating input aborts via the invariant, reproducing the
	// original's assert rather than silently reclassifying.
	assert.Panics(t, func() {
		rawline.Classify("12   1continued\n")
	})
}

func TestStatementDetectionLongestFirst(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"      end if\n", "end if"},
		{"      end do\n", "end do"},
		{"      end function\n", "end function"},
		{"      end\n", "end"},
		{"      go to 10\n", "go to"},
		{"      double precision x\n", "double precision"},
		{"      block data foo\n", "block data"},
	}
	for _, tc := range tests {
		rl := rawline.Classify(tc.code)
		assert.Equal(t, tc.want, rl.Statement, "code %q", tc.code)
	}
}

func TestClassifyAllAssignsLineNumbers(t *testing.T) {
	src := "      program hi\n      end\n"
	lines := rawline.ClassifyAll(src)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].LineNumber)
	assert.Equal(t, 2, lines[1].LineNumber)
}

func TestSplitLinesPreservesNewlines(t *testing.T) {
	lines := rawline.SplitLines("a\nb\nc")
	require.Equal(t, []string{"a\n", "b\n", "c"}, lines)
}

func TestSplitLinesEmpty(t *testing.T) {
	assert.Nil(t, rawline.SplitLines(""))
}

func TestPlainReassemblesOriginal(t *testing.T) {
	// spec.md §8 invariant 2: plain(parse(s)) == concat(original for
	// every RawLine of s).
	src := "      program hi\n      x = 1\n      end\n"
	lines := rawline.ClassifyAll(src)
	var got string
	for _, l := range lines {
		got += l.Original
	}
	assert.Equal(t, src, got)
}
