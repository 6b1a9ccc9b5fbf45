// File: internal/pipeline/pipeline.go
// Description: Runs the one-shot compliance pipeline: resolve the
// repository reference, retrieve its sources, analyze them, normalize the
// findings, and write the report. Strictly linear and single-pass; the
// collaborators are injected via interfaces, making it decoupled and
// testable.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grcops/compliscan/internal/analyzer"
	"github.com/grcops/compliscan/internal/config"
	"github.com/grcops/compliscan/internal/fetch"
	"github.com/grcops/compliscan/internal/findings"
	"github.com/grcops/compliscan/internal/reporting"
	"github.com/grcops/compliscan/internal/resolve"
)

// ReportFilename is the artifact name the audit variant writes into its
// output directory.
const ReportFilename = "compliance_report.csv"

// FileRetriever lists and stages a repository's eligible files.
type FileRetriever interface {
	Retrieve(ctx context.Context, ep resolve.Endpoint, dest string) ([]fetch.StagedFile, error)
}

// AnalysisRunner invokes the external analysis engine.
type AnalysisRunner interface {
	AnalyzeFiles(ctx context.Context, dir string) (analyzer.Result, error)
	AnalyzeRepo(ctx context.Context, dir string) (analyzer.Result, error)
}

// CloneFunc acquires a scoped local clone of a repository. The returned
// cleanup must be safe to defer unconditionally.
type CloneFunc func(ctx context.Context, reference string) (string, func(), error)

// Pipeline wires the pipeline stages together.
type Pipeline struct {
	cfg       *config.Config
	logger    *zap.Logger
	retriever FileRetriever
	runner    AnalysisRunner
	clone     CloneFunc
}

// New creates a Pipeline with its dependencies. The clone function may be
// nil, in which case the go-git backed default is used.
func New(cfg *config.Config, logger *zap.Logger, retriever FileRetriever, runner AnalysisRunner, clone CloneFunc) (*Pipeline, error) {
	if cfg == nil || logger == nil || retriever == nil || runner == nil {
		return nil, fmt.Errorf("cannot initialize pipeline with nil dependencies")
	}
	if clone == nil {
		clone = fetch.CloneScoped
	}
	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		retriever: retriever,
		runner:    runner,
		clone:     clone,
	}, nil
}

// Run executes the per-file variant: stage eligible files via the listing
// API, analyze each one, and write the scan-schema report.
func (p *Pipeline) Run(ctx context.Context, reference string) error {
	runID := uuid.New().String()
	p.logger.Info("Starting compliance scan",
		zap.String("runID", runID),
		zap.String("reference", reference))

	ep, err := resolve.Resolve(reference)
	if err != nil {
		return err
	}

	dest := filepath.Join(p.cfg.Staging.Dir, runID)
	staged, err := p.retriever.Retrieve(ctx, ep, dest)
	if err != nil {
		return err
	}
	if !p.cfg.Staging.Keep {
		defer func() {
			if err := os.RemoveAll(dest); err != nil {
				p.logger.Warn("Failed to remove staging directory",
					zap.String("dir", dest), zap.Error(err))
			}
		}()
	}
	p.logger.Info("Retrieval complete",
		zap.String("runID", runID),
		zap.Int("staged_files", len(staged)),
		zap.String("staging_dir", dest))

	result, err := p.runner.AnalyzeFiles(ctx, dest)
	if err != nil {
		return err
	}

	rows := findings.Normalize(findings.FromResult(result))
	if err := p.report(rows, reporting.Format(p.cfg.Report.Format), p.cfg.Report.Output); err != nil {
		return err
	}

	p.logger.Info("Compliance scan finished", zap.String("runID", runID))
	return nil
}

// RunAudit executes the clone variant: acquire a scoped full clone, run
// one batch analysis over it, and write the audit-schema report into
// outDir (created if absent).
func (p *Pipeline) RunAudit(ctx context.Context, reference, outDir string) error {
	runID := uuid.New().String()
	p.logger.Info("Starting compliance audit",
		zap.String("runID", runID),
		zap.String("reference", reference),
		zap.String("output_dir", outDir))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create output directory %s: %v", reporting.ErrWrite, outDir, err)
	}

	dir, cleanup, err := p.clone(ctx, reference)
	// The clone must be released on every exit path, analysis failure
	// included.
	defer cleanup()
	if err != nil {
		return err
	}

	result, err := p.runner.AnalyzeRepo(ctx, dir)
	if err != nil {
		return err
	}

	rows := findings.Normalize(findings.FromResult(result))
	if err := p.report(rows, reporting.FormatAudit, filepath.Join(outDir, ReportFilename)); err != nil {
		return err
	}

	p.logger.Info("Compliance audit finished", zap.String("runID", runID))
	return nil
}

// report writes the normalized findings, or deliberately skips writing
// when there are none. This diverges from the low-level CSV writer, which
// always emits at least the header row: at the pipeline level an empty
// result produces a "no issues found" notice and no artifact at all.
func (p *Pipeline) report(rows []findings.Finding, format reporting.Format, outputPath string) error {
	if len(rows) == 0 {
		p.logger.Info("No issues found; skipping report creation",
			zap.String("output", outputPath))
		fmt.Println("No issues found.")
		return nil
	}

	reporter, err := reporting.New(format, outputPath, p.logger)
	if err != nil {
		return err
	}
	if err := reporter.Write(rows); err != nil {
		reporter.Close()
		return err
	}
	if err := reporter.Close(); err != nil {
		return err
	}

	p.logger.Info("Report written",
		zap.String("path", outputPath),
		zap.Int("findings", len(rows)))
	fmt.Printf("CSV file '%s' has been created successfully.\n", outputPath)
	return nil
}
