package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.f")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunOncePlainRoundTrips(t *testing.T) {
	src := "      program hi\n      end\n"
	path := writeTemp(t, src)

	var buf bytes.Buffer
	require.NoError(t, runOnce(runOptions{task: "plain", file: path}, &buf))
	assert.Equal(t, src, buf.String())
}

func TestRunOnceNewCommentsOperatesPreAssembly(t *testing.T) {
	path := writeTemp(t, "C hi\n      end\n")

	var buf bytes.Buffer
	require.NoError(t, runOnce(runOptions{task: "new-comments", file: path}, &buf))
	assert.Equal(t, "! hi\n      end\n", buf.String())
}

func TestRunOnceAnalyzeTextFormat(t *testing.T) {
	path := writeTemp(t, "      program hi\n      x = 1\n      end\n")

	var buf bytes.Buffer
	require.NoError(t, runOnce(runOptions{task: "analyze", file: path, format: "text"}, &buf))
	assert.Contains(t, buf.String(), "hi")
}

func TestRunOnceAnalyzeJSONFormat(t *testing.T) {
	path := writeTemp(t, "      program hi\n      x = 1\n      end\n")

	var buf bytes.Buffer
	require.NoError(t, runOnce(runOptions{task: "analyze", file: path, format: "json"}, &buf))
	assert.Contains(t, buf.String(), `"unit_names"`)
}

func TestRunOnceAnalyzeUnknownFormatIsUsageError(t *testing.T) {
	path := writeTemp(t, "      program hi\n      end\n")

	var buf bytes.Buffer
	err := runOnce(runOptions{task: "analyze", file: path, format: "xml"}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown --format")
}

func TestRunOnceMissingFileIsUsageError(t *testing.T) {
	var buf bytes.Buffer
	err := runOnce(runOptions{task: "plain", file: filepath.Join(t.TempDir(), "missing.f")}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read file")
}
