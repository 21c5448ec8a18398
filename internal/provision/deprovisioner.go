package provision

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
	"github.com/wajahatashraf/gcp-setup/internal/gcp"
	"github.com/wajahatashraf/gcp-setup/internal/ledger"
)

// ResourceKind tags a teardown outcome.
type ResourceKind string

const (
	KindBucket          ResourceKind = "bucket"
	KindCloudRunService ResourceKind = "cloud-run-service"
)

// Outcome records the teardown attempt for a single ledger entry.
type Outcome struct {
	Kind ResourceKind
	Name string
	// NotFound is true when the resource did not exist where the delete
	// was issued. For a service this can mean it was already gone, or
	// that it lives in a different region than the one reset targeted.
	NotFound bool
	// Err is nil when the resource was deleted or not found.
	Err error
}

// TeardownReport summarizes a reset run.
type TeardownReport struct {
	// NothingToDo is true when the ledger was absent or empty.
	NothingToDo bool
	Outcomes    []Outcome
}

// Failed returns the outcomes whose deletion failed.
func (r *TeardownReport) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Deprovisioner deletes every resource the ledger records.
type Deprovisioner struct {
	clients *gcp.Clients
	store   ledger.Store
	log     *slog.Logger
}

// NewDeprovisioner wires a Deprovisioner.
func NewDeprovisioner(clients *gcp.Clients, store ledger.Store, log *slog.Logger) *Deprovisioner {
	if log == nil {
		log = slog.Default()
	}
	return &Deprovisioner{clients: clients, store: store, log: log}
}

// Teardown deletes each ledger resource in turn, tolerating individual
// failures, and clears the ledger afterwards regardless of outcomes. A
// resource whose deletion failed is reported so the operator can remove
// it by hand; the ledger no longer tracks it.
func (d *Deprovisioner) Teardown(ctx context.Context, projectID string) (*TeardownReport, error) {
	report := &TeardownReport{}

	rec, err := d.store.Load()
	if err != nil {
		return report, err
	}
	if rec.Empty() {
		report.NothingToDo = true
		// Clearing an absent ledger is a no-op, keeping reset idempotent.
		return report, d.store.Clear()
	}

	for _, bucket := range rec.Buckets {
		outcome := Outcome{Kind: KindBucket, Name: bucket}
		if err := d.clients.Storage.DeleteBucket(ctx, bucket); err != nil {
			outcome.Err = apperrors.ErrDeleteFailed("bucket "+bucket, err)
			d.log.Error("bucket deletion failed", "bucket", bucket, "error", err)
		} else {
			d.log.Info("bucket deleted", "bucket", bucket)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if rec.CloudRunService != "" {
		outcome := Outcome{Kind: KindCloudRunService, Name: rec.CloudRunService}
		switch err := d.clients.Run.DeleteService(ctx, projectID, rec.CloudRunService); {
		case errors.Is(err, gcp.ErrServiceNotFound):
			outcome.NotFound = true
			d.log.Warn("service not found at delete path; it may live in another region",
				"service", rec.CloudRunService)
		case err != nil:
			outcome.Err = apperrors.ErrDeleteFailed("service "+rec.CloudRunService, err)
			d.log.Error("service deletion failed", "service", rec.CloudRunService, "error", err)
		default:
			d.log.Info("service deleted", "service", rec.CloudRunService)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if err := d.store.Clear(); err != nil {
		return report, err
	}
	return report, nil
}
