package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wajahatashraf/gcp-setup/internal/output"
)

var initProject string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Verify GCP credentials and API access",
	Long: `Loads the service account key, authenticates against GCP, and lists
the project's storage buckets as a connectivity check. Nothing is created.

Examples:
  # Verify access with an explicit key file
  gcpsetup init --creds ./sa-key.json

  # Verify access against a project other than the key's own
  gcpsetup init --creds ./sa-key.json --project other-project`,
	RunE: runInitCheck,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initProject, "project", "",
		"GCP project ID (default: the key file's project)")
}

func runInitCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clients, creds, _, err := buildClients(cmd)
	if err != nil {
		return err
	}

	project, err := resolveProject(initProject, creds.ProjectID())
	if err != nil {
		return err
	}

	output.Infof("Verifying access to project %s...", output.Bold(project))

	count, err := clients.Storage.CountBuckets(ctx, project)
	if err != nil {
		return err
	}

	output.Successf("GCP access verified. Found %d buckets.", count)
	output.KeyValue("Project", project)
	output.KeyValue("Service account", creds.Path())
	return nil
}
