package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wajahatashraf/gcp-setup/internal/output"
	"github.com/wajahatashraf/gcp-setup/internal/uploader"
)

var (
	reportPath     string
	screenshotsDir string
	reportBucket   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Upload a test report and screenshots to the demo bucket",
	Long: `Uploads an HTML test report and any failure screenshots to the bucket
recorded in the ledger. The report is stored as report.html; screenshots
go under screenshots/.

Examples:
  gcpsetup report --creds ./sa-key.json --report ./report.html
  gcpsetup report --creds ./sa-key.json --report ./report.html --screenshots ./screenshots`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportPath, "report", "report.html",
		"Path to the HTML report file")
	reportCmd.Flags().StringVar(&screenshotsDir, "screenshots", "screenshots",
		"Directory containing .png failure screenshots")
	reportCmd.Flags().StringVar(&reportBucket, "bucket", "",
		"Destination bucket (default: the first bucket in the ledger)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clients, _, store, err := buildClients(cmd)
	if err != nil {
		return err
	}

	bucket := reportBucket
	if bucket == "" {
		rec, err := store.Load()
		if err != nil {
			return err
		}
		if len(rec.Buckets) == 0 {
			output.Warningf("No bucket in the ledger; nothing to upload to. Run %s first or pass --bucket.",
				output.Bold("gcpsetup setup"))
			return nil
		}
		bucket = rec.Buckets[0]
	}

	if _, err := os.Stat(reportPath); os.IsNotExist(err) {
		output.Warningf("Report file %s not found; skipping upload.", reportPath)
		return nil
	}

	output.Infof("Uploading report to %s...", output.Bold(bucket))

	up := uploader.New(clients.Storage, bucket, nil)
	uploaded, err := up.UploadReport(ctx, reportPath, screenshotsDir)
	if err != nil {
		return err
	}

	for _, object := range uploaded {
		output.Successf("Uploaded gs://%s/%s", bucket, object)
	}
	return nil
}
