package color_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fort77/fort77/internal/color"
)

func TestColorizeWrapsWhenEnabled(t *testing.T) {
	assert.Equal(t, color.Red+"hi"+color.Reset, color.Colorize("hi", color.Red, true))
}

func TestColorizeLeavesTextAloneWhenDisabled(t *testing.T) {
	assert.Equal(t, "hi", color.Colorize("hi", color.Red, false))
}

func TestShouldUseHonorsNoColorFlag(t *testing.T) {
	assert.False(t, color.ShouldUse(true, os.Stdout))
}

func TestShouldUseHonorsNoColorEnvVar(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, color.ShouldUse(false, os.Stdout))
}

func TestShouldUseFalseForNonTerminalFile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	f, err := os.CreateTemp(t.TempDir(), "not-a-terminal")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, color.ShouldUse(false, f))
}
