// cmd/cmd_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanCmd_ArgValidation verifies the scan command demands exactly one
// repository reference. A wrong count becomes a usage error, so the run
// can never proceed with an unresolved endpoint.
func TestScanCmd_ArgValidation(t *testing.T) {
	scanCmd := newScanCmd()

	assert.Error(t, scanCmd.Args(scanCmd, []string{}))
	assert.Error(t, scanCmd.Args(scanCmd, []string{"a", "b"}))
	assert.NoError(t, scanCmd.Args(scanCmd, []string{"https://github.com/octocat/demo"}))
}

// TestAuditCmd_ArgValidation verifies the audit command demands exactly a
// repository reference and an output directory.
func TestAuditCmd_ArgValidation(t *testing.T) {
	auditCmd := newAuditCmd()

	assert.Error(t, auditCmd.Args(auditCmd, []string{"https://github.com/octocat/demo"}))
	assert.NoError(t, auditCmd.Args(auditCmd, []string{"https://github.com/octocat/demo", "out"}))
}

// TestRootCmd_RegistersSubcommands verifies the CLI surface exposes both
// pipeline variants.
func TestRootCmd_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["scan"])
	require.True(t, names["audit"])
}
