// -- internal/reporting/reporter.go --
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/grcops/compliscan/internal/findings"
)

// ErrWrite indicates output serialization failed. It is fatal and never
// retried.
var ErrWrite = errors.New("report write failed")

// Format names a report schema. The two schemas are distinct and not
// interchangeable: they carry different headers and column counts.
type Format string

const (
	// FormatScan is the per-file variant's schema:
	// File, Line, Severity, Confidence, Issue.
	FormatScan Format = "scan"
	// FormatAudit is the clone variant's schema:
	// Filename, Line Number, Issue Severity, Issue Confidence, Issue Text, More Info.
	FormatAudit Format = "audit"
)

// Reporter defines the interface for writing normalized findings to an
// output artifact.
type Reporter interface {
	// Write serializes the findings in the order given.
	Write(rows []findings.Finding) error
	// Close finalizes the report and closes any underlying resources.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for the given format writing to outputPath.
// An empty path or "stdout" writes to standard output.
func New(format Format, outputPath string, logger *zap.Logger) (Reporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "stdout"
	if isStdout {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create output file %s: %v", ErrWrite, outputPath, err)
		}
		writer = f
	}

	switch format {
	case FormatScan, FormatAudit:
		// The CSV reporter takes ownership of the writer.
		return newCSVReporter(writer, format, logger), nil
	default:
		if !isStdout {
			writer.Close()
		}
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}
