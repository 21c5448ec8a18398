package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
	"github.com/wajahatashraf/gcp-setup/internal/output"
	"github.com/wajahatashraf/gcp-setup/internal/provision"
)

var (
	setupProject     string
	setupRegion      string
	setupServiceName string
	setupImage       string
	setupSource      string
	setupSkipVerify  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision the demo environment",
	Long: `Creates a uniquely named storage bucket and deploys the demo service to
Cloud Run, recording each resource in the ledger file as it is created.
After a successful deploy the service URL is fetched once to confirm the
service responds.

A failed deploy does not roll back the bucket: the bucket stays recorded
so 'gcpsetup reset' can clean it up.

Examples:
  # Deploy the default demo image
  gcpsetup setup --creds ./sa-key.json --project demo-project

  # Build and deploy from local source
  gcpsetup setup --creds ./sa-key.json --project demo-project --source ./demoservice`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().StringVar(&setupProject, "project", "",
		"GCP project ID (default: the key file's project)")
	setupCmd.Flags().StringVar(&setupRegion, "region", "",
		"Cloud Run region (default: from config)")
	setupCmd.Flags().StringVar(&setupServiceName, "service-name", "",
		"Cloud Run service name (default: from config)")
	setupCmd.Flags().StringVar(&setupImage, "image", "",
		"Container image to deploy (default: Cloud Run hello image)")
	setupCmd.Flags().StringVar(&setupSource, "source", "",
		"Local source directory to build with Cloud Build and deploy")
	setupCmd.Flags().BoolVar(&setupSkipVerify, "skip-verify", false,
		"Skip the post-deploy HTTP check")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		return err
	}
	if setupRegion != "" {
		cfg.Region = setupRegion
	}

	clients, creds, store, err := buildClients(cmd)
	if err != nil {
		return err
	}

	project, err := resolveProject(setupProject, creds.ProjectID())
	if err != nil {
		return err
	}
	serviceName := setupServiceName
	if serviceName == "" {
		serviceName = cfg.ServiceName
	}

	output.Infof("Checking project %s...", output.Bold(project))
	exists, err := clients.Projects.ProjectExists(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if !exists {
		return apperrors.ErrProjectNotFound(project, nil)
	}

	var verifier *provision.Verifier
	if !setupSkipVerify {
		verifier = provision.NewVerifier(nil)
	}
	provisioner := provision.NewProvisioner(clients, store, verifier, nil)

	req := provision.Request{
		ProjectID:   project,
		Region:      cfg.Region,
		ServiceName: serviceName,
		Image:       setupImage,
		SourceDir:   setupSource,
	}

	output.Step(1, 2, "Creating storage bucket")
	result, err := provisioner.Provision(ctx, req)

	if result.BucketOK() {
		output.StepSuccess(1, 2, "Bucket created: "+output.Bold(result.BucketName))
	} else {
		output.StepError(1, 2, "Bucket creation failed")
	}
	if err != nil {
		// Bucket-stage and ledger failures are fatal: nothing usable
		// was provisioned, or what was provisioned went unrecorded.
		return err
	}

	if result.DeployOK() {
		output.StepSuccess(2, 2, "Service deployed: "+output.Bold(result.ServiceURL))
	} else {
		output.StepError(2, 2, "Deploy failed")
		output.Warningf("Deploy failed: %v", result.Cause)
		output.Warningf("The bucket remains recorded; run %s to clean up.",
			output.Bold("gcpsetup reset"))
	}

	printSetupSummary(result)

	if v := result.Verification; v != nil {
		if v.OK() {
			output.Successf("Service responded with HTTP %d in %s",
				v.StatusCode, v.Duration.Round(time.Millisecond))
		} else if v.Err != "" {
			output.Warningf("Service verification failed: %s", v.Err)
		} else {
			output.Warningf("Service responded with HTTP %d", v.StatusCode)
		}
	}

	return nil
}

func printSetupSummary(result *provision.Result) {
	output.Blank()
	output.KeyValue("Bucket", result.BucketName)
	if result.DeployOK() {
		output.KeyValue("Service", result.ServiceName)
		output.KeyValue("URL", result.ServiceURL)
	}
	output.Blank()
}
