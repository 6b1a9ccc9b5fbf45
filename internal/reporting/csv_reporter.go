// -- internal/reporting/csv_reporter.go --
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/grcops/compliscan/internal/findings"
)

// scanHeader is the column set of the per-file variant's report.
var scanHeader = []string{"File", "Line", "Severity", "Confidence", "Issue"}

// auditHeader is the column set of the clone variant's report.
var auditHeader = []string{"Filename", "Line Number", "Issue Severity", "Issue Confidence", "Issue Text", "More Info"}

// csvReporter serializes findings as CSV rows under a fixed header. The
// header is always written, even when there are zero data rows; whether a
// report should exist at all for an empty run is the orchestrator's call,
// not this writer's.
type csvReporter struct {
	writer io.WriteCloser
	csv    *csv.Writer
	format Format
	logger *zap.Logger

	wroteHeader bool
}

func newCSVReporter(writer io.WriteCloser, format Format, logger *zap.Logger) *csvReporter {
	return &csvReporter{
		writer: writer,
		csv:    csv.NewWriter(writer),
		format: format,
		logger: logger,
	}
}

// Write emits the header (once) followed by one row per finding, in the
// order given.
func (r *csvReporter) Write(rows []findings.Finding) error {
	if !r.wroteHeader {
		if err := r.csv.Write(r.header()); err != nil {
			return fmt.Errorf("%w: writing header: %v", ErrWrite, err)
		}
		r.wroteHeader = true
	}

	for _, f := range rows {
		if err := r.csv.Write(r.record(f)); err != nil {
			return fmt.Errorf("%w: writing row for %s:%d: %v", ErrWrite, f.File, f.Line, err)
		}
	}

	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		return fmt.Errorf("%w: flushing rows: %v", ErrWrite, err)
	}
	r.logger.Debug("Wrote report rows",
		zap.Int("rows", len(rows)),
		zap.String("format", string(r.format)))
	return nil
}

// Close flushes and finalizes the report. The header is written even if
// Write was never called, so an empty report is still a valid artifact.
func (r *csvReporter) Close() error {
	if !r.wroteHeader {
		if err := r.csv.Write(r.header()); err != nil {
			return fmt.Errorf("%w: writing header: %v", ErrWrite, err)
		}
		r.wroteHeader = true
	}
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		return fmt.Errorf("%w: flushing report: %v", ErrWrite, err)
	}
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("%w: closing output: %v", ErrWrite, err)
	}
	return nil
}

func (r *csvReporter) header() []string {
	if r.format == FormatAudit {
		return auditHeader
	}
	return scanHeader
}

func (r *csvReporter) record(f findings.Finding) []string {
	line := strconv.Itoa(f.Line)
	if r.format == FormatAudit {
		return []string{f.File, line, string(f.Severity), string(f.Confidence), f.Message, f.Link}
	}
	return []string{f.File, line, string(f.Severity), string(f.Confidence), f.Message}
}
