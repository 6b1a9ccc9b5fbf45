// File: internal/analyzer/runner.go
// Description: Invokes the external static-analysis engine (Bandit) and
// collects its raw findings. The engine is an opaque collaborator; this
// package only shells out to it and parses its JSON output.

package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// ErrInvocation indicates a single engine invocation failed. It is
// non-fatal: the runner logs it, skips the file, and moves on.
var ErrInvocation = errors.New("analysis engine invocation failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Runner drives the external analysis engine over staged files or a whole
// cloned repository.
type Runner struct {
	// Bin is the engine executable to invoke (default "bandit").
	Bin string
	// Extension is the recognized source-file extension (default ".py").
	Extension string
	// Timeout bounds a single engine invocation. Zero means no bound.
	Timeout time.Duration

	logger *zap.Logger
}

// NewRunner creates a Runner with defaults filled in for zero-value fields.
func NewRunner(bin, extension string, timeout time.Duration, logger *zap.Logger) *Runner {
	if bin == "" {
		bin = "bandit"
	}
	if extension == "" {
		extension = ".py"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Bin: bin, Extension: extension, Timeout: timeout, logger: logger}
}

// AnalyzeFiles walks dir for files with the recognized extension and invokes
// the engine once per file. A failed invocation contributes zero findings:
// it is logged and skipped, never fatal. Only the walk itself can fail.
func (r *Runner) AnalyzeFiles(ctx context.Context, dir string) (Result, error) {
	targets, err := r.collectTargets(dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to walk analysis target %s: %w", dir, err)
	}

	var issues []Issue
	for _, target := range targets {
		payload, err := r.invoke(ctx, "-q", "-f", "json", target)
		if err != nil {
			r.logger.Warn("Skipping file after failed engine invocation",
				zap.String("file", target),
				zap.Error(err))
			continue
		}
		for _, res := range payload.Results {
			issues = append(issues, Issue{
				Filename:   res.Filename,
				LineNumber: res.LineNumber,
				Severity:   res.Severity,
				Confidence: res.Confidence,
				Text:       res.Text,
			})
		}
	}

	return Result{Kind: KindPerFile, PerFile: issues}, nil
}

// AnalyzeRepo runs the engine once, recursively, over an entire directory
// (typically a fresh clone) and returns the single batch payload. Unlike
// the per-file path, a failed batch invocation is fatal: there is nothing
// to degrade to.
func (r *Runner) AnalyzeRepo(ctx context.Context, dir string) (Result, error) {
	payload, err := r.invoke(ctx, "-q", "-r", dir, "-f", "json")
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindBatch, Batch: payload}, nil
}

// collectTargets gathers matching files under dir with an explicit
// accumulator. The recursion never shares state across calls.
func (r *Runner) collectTargets(dir string) ([]string, error) {
	var targets []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), r.Extension) {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// invoke runs the engine with the given arguments and parses its stdout.
// Bandit exits 1 when it finds issues, so a non-zero exit alone is not an
// error; only an unparseable payload or an exec-level failure is.
func (r *Runner) invoke(ctx context.Context, args ...string) (*Payload, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		// Exit status 1 means "issues found"; the payload on stdout is valid.
		if !errors.As(runErr, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("%w: %s %s: %v (stderr: %s)",
				ErrInvocation, r.Bin, strings.Join(args, " "), runErr, strings.TrimSpace(stderr.String()))
		}
	}

	payload, err := ParsePayload(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	return payload, nil
}

// ParsePayload decodes the engine's machine-readable JSON output. Exported
// so the parsing contract can be tested against captured engine output
// without shelling out.
func ParsePayload(raw []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unparseable engine output: %w", err)
	}
	return &payload, nil
}
