// File: internal/findings/findings.go
package findings

import (
	"sort"
	"strings"
)

// Level represents a severity or confidence level reported for a finding.
// Values are lowercase to keep report output and config comparisons uniform.
type Level string

// Constants defining the levels Bandit reports for both severity and confidence.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel maps an engine-reported level name onto a Level. Bandit emits
// upper-case names ("LOW", "MEDIUM", "HIGH"); anything unrecognized is passed
// through lowercased rather than guessed at, so report rows never lose
// information the engine gave us.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LevelLow
	case "medium":
		return LevelMedium
	case "high":
		return LevelHigh
	default:
		return Level(strings.ToLower(strings.TrimSpace(s)))
	}
}

// Finding is the canonical record for a single security issue instance.
// All fields are plain comparable values so exact-match deduplication can
// use the struct itself as a map key.
type Finding struct {
	// File is the path of the source file the issue was found in.
	File string
	// Line is the 1-based line number of the issue.
	Line int
	// Severity is the engine-assigned severity level.
	Severity Level
	// Confidence is the engine's confidence in the finding.
	Confidence Level
	// Message is the human-readable issue text.
	Message string
	// Link is an optional reference URL with more detail. Empty when the
	// engine variant in use does not report one.
	Link string
}

// Normalize deduplicates findings by exact structural equality across all
// fields and returns them sorted by (file, line, message) ascending.
// Set-style dedup alone would leave the order at the mercy of map iteration;
// a report artifact needs to be byte-for-byte reproducible, so we sort.
func Normalize(in []Finding) []Finding {
	seen := make(map[Finding]struct{}, len(in))
	out := make([]Finding, 0, len(in))
	for _, f := range in {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Message < out[j].Message
	})
	return out
}
