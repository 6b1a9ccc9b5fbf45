// internal/analyzer/runner_test.go
package analyzer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grcops/compliscan/internal/analyzer"
)

const payloadJSON = `{"results":[{"filename":"a.py","line_number":3,"issue_severity":"LOW","issue_confidence":"HIGH","issue_text":"Use of assert detected.","more_info":"https://bandit.readthedocs.io/en/latest/plugins/b101.html"}]}`

// writeFakeEngine writes an executable stub standing in for the analysis
// engine and returns its path.
func writeFakeEngine(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakebandit")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// writeSourceTree stages a small analysis target with two matching files
// and one that must be ignored by the walk.
func writeSourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("import os\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "b.py"), []byte("import sys\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not source\n"), 0o644))
	return dir
}

// TestParsePayload_Success verifies decoding of the engine's
// machine-readable output under the results key.
func TestParsePayload_Success(t *testing.T) {
	payload, err := analyzer.ParsePayload([]byte(payloadJSON))
	require.NoError(t, err)
	require.Len(t, payload.Results, 1)

	res := payload.Results[0]
	assert.Equal(t, "a.py", res.Filename)
	assert.Equal(t, 3, res.LineNumber)
	assert.Equal(t, "LOW", res.Severity)
	assert.Equal(t, "HIGH", res.Confidence)
	assert.Equal(t, "Use of assert detected.", res.Text)
	assert.Equal(t, "https://bandit.readthedocs.io/en/latest/plugins/b101.html", res.MoreInfo)
}

// TestParsePayload_Garbage verifies unparseable output is rejected.
func TestParsePayload_Garbage(t *testing.T) {
	_, err := analyzer.ParsePayload([]byte("Traceback (most recent call last):"))
	assert.Error(t, err)
}

// TestAnalyzeFiles_ExitOneIsFindings verifies the engine's exit status 1
// (issues found) is treated as success, once per matching file.
func TestAnalyzeFiles_ExitOneIsFindings(t *testing.T) {
	engine := writeFakeEngine(t, "#!/bin/sh\nprintf '%s' '"+payloadJSON+"'\nexit 1\n")
	dir := writeSourceTree(t)

	runner := analyzer.NewRunner(engine, ".py", 0, zap.NewNop())
	result, err := runner.AnalyzeFiles(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, analyzer.KindPerFile, result.Kind)
	// Two .py files, one payload issue each; notes.txt never analyzed.
	assert.Len(t, result.PerFile, 2)
}

// TestAnalyzeFiles_InvocationFailureIsSkipped verifies that a failing
// per-file invocation contributes zero findings without failing the run.
func TestAnalyzeFiles_InvocationFailureIsSkipped(t *testing.T) {
	engine := writeFakeEngine(t, "#!/bin/sh\necho 'engine exploded' >&2\nexit 2\n")
	dir := writeSourceTree(t)

	runner := analyzer.NewRunner(engine, ".py", 0, zap.NewNop())
	result, err := runner.AnalyzeFiles(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, result.PerFile)
}

// TestAnalyzeRepo_Batch verifies the whole-directory variant produces a
// single batch payload.
func TestAnalyzeRepo_Batch(t *testing.T) {
	engine := writeFakeEngine(t, "#!/bin/sh\nprintf '%s' '"+payloadJSON+"'\nexit 1\n")

	runner := analyzer.NewRunner(engine, ".py", 0, zap.NewNop())
	result, err := runner.AnalyzeRepo(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, analyzer.KindBatch, result.Kind)
	require.NotNil(t, result.Batch)
	assert.Len(t, result.Batch.Results, 1)
}

// TestAnalyzeRepo_InvocationFailureIsFatal verifies a failed batch
// invocation surfaces ErrInvocation; there is no per-file fallback.
func TestAnalyzeRepo_InvocationFailureIsFatal(t *testing.T) {
	engine := writeFakeEngine(t, "#!/bin/sh\nexit 2\n")

	runner := analyzer.NewRunner(engine, ".py", 0, zap.NewNop())
	_, err := runner.AnalyzeRepo(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, analyzer.ErrInvocation))
}

// TestAnalyzeFiles_MissingTarget verifies a nonexistent analysis target
// fails the walk itself.
func TestAnalyzeFiles_MissingTarget(t *testing.T) {
	runner := analyzer.NewRunner("bandit", ".py", 0, zap.NewNop())
	_, err := runner.AnalyzeFiles(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
