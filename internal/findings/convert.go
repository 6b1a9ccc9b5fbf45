// File: internal/findings/convert.go
package findings

import (
	"github.com/grcops/compliscan/internal/analyzer"
)

// FromIssues converts per-file engine issues into canonical findings.
// The per-file schema carries no reference link, so Link stays empty.
func FromIssues(issues []analyzer.Issue) []Finding {
	out := make([]Finding, 0, len(issues))
	for _, iss := range issues {
		out = append(out, Finding{
			File:       iss.Filename,
			Line:       iss.LineNumber,
			Severity:   ParseLevel(iss.Severity),
			Confidence: ParseLevel(iss.Confidence),
			Message:    iss.Text,
		})
	}
	return out
}

// FromPayload converts a batch payload into canonical findings, preserving
// the reference link the batch schema includes.
func FromPayload(payload *analyzer.Payload) []Finding {
	if payload == nil {
		return nil
	}
	out := make([]Finding, 0, len(payload.Results))
	for _, res := range payload.Results {
		out = append(out, Finding{
			File:       res.Filename,
			Line:       res.LineNumber,
			Severity:   ParseLevel(res.Severity),
			Confidence: ParseLevel(res.Confidence),
			Message:    res.Text,
			Link:       res.MoreInfo,
		})
	}
	return out
}

// FromResult dispatches on the result's tag, converging both raw schemas
// on the one canonical Finding record.
func FromResult(res analyzer.Result) []Finding {
	switch res.Kind {
	case analyzer.KindBatch:
		return FromPayload(res.Batch)
	default:
		return FromIssues(res.PerFile)
	}
}
