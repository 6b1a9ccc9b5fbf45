// internal/findings/findings_test.go
package findings_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grcops/compliscan/internal/analyzer"
	"github.com/grcops/compliscan/internal/findings"
)

// TestParseLevel covers the engine's upper-case names and the passthrough
// behavior for values outside the known enum.
func TestParseLevel(t *testing.T) {
	assert.Equal(t, findings.LevelLow, findings.ParseLevel("LOW"))
	assert.Equal(t, findings.LevelMedium, findings.ParseLevel("Medium"))
	assert.Equal(t, findings.LevelHigh, findings.ParseLevel(" HIGH "))
	assert.Equal(t, findings.Level("undefined"), findings.ParseLevel("UNDEFINED"))
}

// TestNormalize_DeduplicatesAcrossInvocations verifies that two findings
// with identical fields, as produced by separate engine invocations,
// collapse to exactly one.
func TestNormalize_DeduplicatesAcrossInvocations(t *testing.T) {
	f := findings.Finding{
		File:       "app/main.py",
		Line:       12,
		Severity:   findings.LevelHigh,
		Confidence: findings.LevelMedium,
		Message:    "Use of exec detected.",
	}

	out := findings.Normalize([]findings.Finding{f, f})
	require.Len(t, out, 1)
	assert.Equal(t, f, out[0])
}

// TestNormalize_KeepsDistinctRows verifies that findings differing in any
// field survive deduplication.
func TestNormalize_KeepsDistinctRows(t *testing.T) {
	base := findings.Finding{
		File:       "app/main.py",
		Line:       12,
		Severity:   findings.LevelHigh,
		Confidence: findings.LevelMedium,
		Message:    "Use of exec detected.",
	}
	other := base
	other.Confidence = findings.LevelHigh

	out := findings.Normalize([]findings.Finding{base, other})
	assert.Len(t, out, 2)
}

// TestNormalize_SortsByFileThenLine verifies the deterministic report
// ordering after deduplication.
func TestNormalize_SortsByFileThenLine(t *testing.T) {
	in := []findings.Finding{
		{File: "b.py", Line: 3, Message: "later file"},
		{File: "a.py", Line: 9, Message: "later line"},
		{File: "a.py", Line: 2, Message: "first"},
	}

	out := findings.Normalize(in)
	require.Len(t, out, 3)
	assert.Equal(t, "a.py", out[0].File)
	assert.Equal(t, 2, out[0].Line)
	assert.Equal(t, "a.py", out[1].File)
	assert.Equal(t, 9, out[1].Line)
	assert.Equal(t, "b.py", out[2].File)
}

// TestFromResult_PerFile verifies conversion of the per-file schema; the
// per-file shape carries no reference link.
func TestFromResult_PerFile(t *testing.T) {
	res := analyzer.Result{
		Kind: analyzer.KindPerFile,
		PerFile: []analyzer.Issue{
			{Filename: "a.py", LineNumber: 4, Severity: "LOW", Confidence: "HIGH", Text: "assert used"},
		},
	}

	got := findings.FromResult(res)
	want := []findings.Finding{
		{File: "a.py", Line: 4, Severity: findings.LevelLow, Confidence: findings.LevelHigh, Message: "assert used"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("per-file conversion mismatch (-want +got):\n%s", diff)
	}
}

// TestFromResult_Batch verifies conversion of the batch payload schema,
// including the reference link it carries.
func TestFromResult_Batch(t *testing.T) {
	res := analyzer.Result{
		Kind: analyzer.KindBatch,
		Batch: &analyzer.Payload{
			Results: []analyzer.PayloadResult{
				{
					Filename:   "b.py",
					LineNumber: 7,
					Severity:   "MEDIUM",
					Confidence: "MEDIUM",
					Text:       "hardcoded password",
					MoreInfo:   "https://bandit.readthedocs.io/en/latest/plugins/b105.html",
				},
			},
		},
	}

	got := findings.FromResult(res)
	require.Len(t, got, 1)
	assert.Equal(t, "b.py", got[0].File)
	assert.Equal(t, 7, got[0].Line)
	assert.Equal(t, findings.LevelMedium, got[0].Severity)
	assert.Equal(t, "https://bandit.readthedocs.io/en/latest/plugins/b105.html", got[0].Link)
}

// TestFromResult_NilBatch verifies a batch result without a payload
// converts to no findings rather than panicking.
func TestFromResult_NilBatch(t *testing.T) {
	out := findings.FromResult(analyzer.Result{Kind: analyzer.KindBatch})
	assert.Empty(t, out)
}
