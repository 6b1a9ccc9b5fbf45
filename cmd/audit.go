// -- cmd/audit.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grcops/compliscan/internal/config"
	"github.com/grcops/compliscan/internal/observability"
)

// newAuditCmd creates the `audit` command, the full-clone batch variant.
// It clones the repository into a scoped temporary directory, runs one
// recursive engine pass, and writes the audit-schema CSV into the given
// output directory.
func newAuditCmd() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit <repository> <output-dir>",
		Short: "Clones a repository and writes a batch compliance report",
		// Two positional arguments; a wrong count becomes a usage error
		// and a non-zero exit status.
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			p, err := buildPipeline(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize audit components: %w", err)
			}

			return p.RunAudit(ctx, args[0], args[1])
		},
	}

	return auditCmd
}
