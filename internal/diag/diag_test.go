package diag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fort77/fort77/internal/diag"
)

func TestParseFailureSnippetPointsAtColumn(t *testing.T) {
	src := "      x = 1\n      y = @\n"
	err := diag.NewParseFailure("expression", src, 20)
	msg := err.Error()
	assert.Contains(t, msg, "expected expression")
	assert.Contains(t, msg, "2:9")
	lines := strings.Split(msg, "\n")
	var caretLine string
	for _, l := range lines {
		if strings.Contains(l, "^") {
			caretLine = l
		}
	}
	require := strings.TrimLeft(caretLine, " |")
	assert.Equal(t, "^", require)
}

func TestNewParseFailureClampsOffsetAtEOF(t *testing.T) {
	src := "x\n"
	err := diag.NewParseFailure("eof", src, 100)
	assert.Equal(t, 2, err.Line)
}

func TestNewLineFailurePointsAtColumnOne(t *testing.T) {
	err := diag.NewLineFailure("initial line", "a\nb\nc\n", 2)
	assert.Equal(t, 2, err.Line)
	assert.Equal(t, 1, err.Column)
}

func TestUsageErrorWithoutSuggestion(t *testing.T) {
	err := &diag.UsageError{Message: "bad input"}
	assert.Equal(t, "bad input", err.Error())
}

func TestUsageErrorWithSuggestion(t *testing.T) {
	err := &diag.UsageError{Message: "bad input", Suggestion: "did you mean X?"}
	assert.Equal(t, "bad input\ndid you mean X?", err.Error())
}

func TestSuggestTaskFindsClosestMatch(t *testing.T) {
	got := diag.SuggestTask("analyse", []string{"analyze", "reconstruct", "indent"})
	assert.Equal(t, "analyze", got)
}

func TestSuggestTaskEmptyKnownList(t *testing.T) {
	assert.Equal(t, "", diag.SuggestTask("analyze", nil))
}

func TestNewUnknownTaskErrorSuggestsClosestName(t *testing.T) {
	err := diag.NewUnknownTaskError("analyse", []string{"analyze", "reconstruct"})
	assert.Contains(t, err.Error(), `unknown task "analyse"`)
	assert.Contains(t, err.Error(), `did you mean "analyze"?`)
}

func TestNewUnknownTaskErrorListsAllWhenNoMatch(t *testing.T) {
	err := diag.NewUnknownTaskError("xyz123qqq", []string{"analyze", "reconstruct"})
	assert.Contains(t, err.Error(), "available tasks:")
}

func TestExitCodesAreDistinct(t *testing.T) {
	assert.Equal(t, 0, diag.ExitSuccess)
	assert.NotEqual(t, diag.ExitSuccess, diag.ExitUsageError)
	assert.NotEqual(t, diag.ExitUsageError, diag.ExitParseError)
}
