// -- cmd/scan.go --
package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v58/github"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/grcops/compliscan/internal/analyzer"
	"github.com/grcops/compliscan/internal/config"
	"github.com/grcops/compliscan/internal/fetch"
	"github.com/grcops/compliscan/internal/observability"
	"github.com/grcops/compliscan/internal/pipeline"
)

// newScanCmd creates and configures the `scan` command, the per-file
// pipeline variant.
func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan <repository>",
		Short: "Fetches a repository's sources via the contents API and scans them",
		// Exactly one repository reference. Cobra turns a wrong argument
		// count into a usage error, which Execute surfaces with a non-zero
		// exit status; the run never proceeds with an unresolved endpoint.
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their corresponding Viper keys so command-line
			// flags correctly override config-file and environment values.
			if err := viper.BindPFlag("report.output", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("staging.dir", cmd.Flags().Lookup("staging")); err != nil {
				return err
			}
			return viper.BindPFlag("staging.keep", cmd.Flags().Lookup("keep-staging"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from Execute (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			p, err := buildPipeline(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize scan components: %w", err)
			}

			return p.Run(ctx, args[0])
		},
	}

	scanCmd.Flags().StringP("output", "o", "compliance_report.csv", "Output file path for the CSV report.")
	scanCmd.Flags().String("staging", "", "Staging directory root for downloaded files. (Overrides config/env)")
	scanCmd.Flags().Bool("keep-staging", false, "Keep the per-run staging directory after the scan.")

	return scanCmd
}

// buildPipeline handles dependency injection for both pipeline variants.
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	api := github.NewClient(nil)
	if cfg.GitHub.Token != "" {
		api = api.WithAuthToken(cfg.GitHub.Token)
	}
	if cfg.GitHub.APIBaseURL != "" {
		base := cfg.GitHub.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid api_base_url %q: %w", cfg.GitHub.APIBaseURL, err)
		}
		api.BaseURL = baseURL
	}

	fetcher, err := fetch.NewFetcher(api, &http.Client{Timeout: 30 * time.Second}, cfg.Analyzer.Extension, logger)
	if err != nil {
		return nil, err
	}

	runner := analyzer.NewRunner(cfg.Analyzer.Bin, cfg.Analyzer.Extension, cfg.Analyzer.Timeout, logger)

	return pipeline.New(cfg, logger, fetcher, runner, nil)
}
