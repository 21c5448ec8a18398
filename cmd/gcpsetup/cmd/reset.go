package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wajahatashraf/gcp-setup/internal/output"
	"github.com/wajahatashraf/gcp-setup/internal/provision"
)

var (
	resetProject string
	resetRegion  string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Tear down everything recorded in the ledger",
	Long: `Deletes every resource the ledger records: each bucket (with its
contents) and the Cloud Run service. Individual deletion failures are
reported but do not stop the run. The ledger is removed afterwards, so
any resource that could not be deleted must be cleaned up by hand.

Running reset with no ledger, or an empty one, is a no-op.

Examples:
  gcpsetup reset --creds ./sa-key.json

  # Service was deployed to a non-default region
  gcpsetup reset --creds ./sa-key.json --region europe-west1`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetProject, "project", "",
		"GCP project ID (default: the key file's project)")
	resetCmd.Flags().StringVar(&resetRegion, "region", "",
		"Region the service was deployed to (default: from config)")
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		return err
	}
	if resetRegion != "" {
		cfg.Region = resetRegion
	}

	clients, creds, store, err := buildClients(cmd)
	if err != nil {
		return err
	}

	project, err := resolveProject(resetProject, creds.ProjectID())
	if err != nil {
		return err
	}

	d := provision.NewDeprovisioner(clients, store, nil)
	report, err := d.Teardown(ctx, project)
	if err != nil {
		return err
	}

	if report.NothingToDo {
		output.Successf("Nothing to tear down.")
		return nil
	}

	for _, o := range report.Outcomes {
		switch {
		case o.Err != nil:
			output.Errorf("Failed to delete %s %s: %v", o.Kind, o.Name, o.Err)
		case o.NotFound:
			output.Warningf("%s %s not found in region %s. If it was deployed elsewhere, re-run with --region.",
				o.Kind, o.Name, cfg.Region)
		default:
			output.Successf("Deleted %s %s", o.Kind, o.Name)
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		output.Blank()
		output.Warningf("The ledger has been cleared, but %d resource(s) could not be deleted:", len(failed))
		for _, o := range failed {
			output.Warningf("  %s %s — remove it manually in the GCP console", o.Kind, o.Name)
		}
	} else {
		output.Blank()
		output.Successf("Teardown complete.")
	}

	return nil
}
