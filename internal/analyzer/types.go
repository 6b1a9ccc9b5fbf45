// File: internal/analyzer/types.go
package analyzer

// Kind discriminates the two raw result shapes the engine can produce.
// The per-file shape comes from invoking the engine once per staged file;
// the batch shape is the machine-readable payload of a whole-directory scan.
type Kind int

const (
	// KindPerFile marks a Result carrying individual per-file issues.
	KindPerFile Kind = iota
	// KindBatch marks a Result carrying a single batch payload.
	KindBatch
)

// Issue is one finding as reported by a per-file engine invocation.
type Issue struct {
	Filename   string `json:"filename"`
	LineNumber int    `json:"line_number"`
	Severity   string `json:"issue_severity"`
	Confidence string `json:"issue_confidence"`
	Text       string `json:"issue_text"`
}

// PayloadResult is one entry under the batch payload's "results" key.
// It carries the same core fields as Issue plus the reference link the
// batch format includes.
type PayloadResult struct {
	Filename   string `json:"filename"`
	LineNumber int    `json:"line_number"`
	Severity   string `json:"issue_severity"`
	Confidence string `json:"issue_confidence"`
	Text       string `json:"issue_text"`
	MoreInfo   string `json:"more_info"`
}

// Payload is the engine's machine-readable batch output. Only the results
// are consumed; metrics and per-file errors are left to the engine's own
// diagnostics.
type Payload struct {
	Results []PayloadResult `json:"results"`
}

// Result is the tagged union of the two incompatible raw schemas. Exactly
// one of PerFile or Batch is populated, selected by Kind. Downstream
// normalization dispatches on the tag instead of sniffing field shapes.
type Result struct {
	Kind    Kind
	PerFile []Issue
	Batch   *Payload
}
