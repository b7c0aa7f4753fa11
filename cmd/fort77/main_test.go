package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fort77/fort77/internal/diag"
)

func TestIsKnownTask(t *testing.T) {
	assert.True(t, isKnownTask("analyze"))
	assert.True(t, isKnownTask("reconstruct"))
	assert.False(t, isKnownTask("analyse"))
}

func TestExitCodeForNilIsSuccess(t *testing.T) {
	assert.Equal(t, diag.ExitSuccess, exitCodeFor(nil))
}

func TestExitCodeForParseFailureIsParseError(t *testing.T) {
	err := diag.NewParseFailure("statement", "x\n", 0)
	assert.Equal(t, diag.ExitParseError, exitCodeFor(err))
}

func TestExitCodeForOtherErrorIsUsageError(t *testing.T) {
	assert.Equal(t, diag.ExitUsageError, exitCodeFor(errors.New("boom")))
	assert.Equal(t, diag.ExitUsageError, exitCodeFor(&diag.UsageError{Message: "bad"}))
}
