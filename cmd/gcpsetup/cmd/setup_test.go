package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_DefinesFlags(t *testing.T) {
	t.Helper()

	require.NotNil(t, setupCmd)

	for _, name := range []string{"project", "region", "service-name", "image", "source", "skip-verify"} {
		flag := setupCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "%s flag should be defined on the setup command", name)
	}
}

func TestReset_DefinesFlags(t *testing.T) {
	t.Helper()

	require.NotNil(t, resetCmd)

	// A teardown must target the region the service was deployed to, so
	// reset takes the same region override setup does.
	for _, name := range []string{"project", "region"} {
		flag := resetCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "%s flag should be defined on the reset command", name)
	}
}

func TestReport_DefaultsMatchConventions(t *testing.T) {
	t.Helper()

	require.NotNil(t, reportCmd)

	reportFlag := reportCmd.Flags().Lookup("report")
	require.NotNil(t, reportFlag)
	require.Equal(t, "report.html", reportFlag.DefValue)

	shotsFlag := reportCmd.Flags().Lookup("screenshots")
	require.NotNil(t, shotsFlag)
	require.Equal(t, "screenshots", shotsFlag.DefValue)
}

func TestInit_DefinesProjectFlag(t *testing.T) {
	t.Helper()

	require.NotNil(t, initCmd)
	require.NotNil(t, initCmd.Flags().Lookup("project"))
}
