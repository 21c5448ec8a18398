// Package provision implements the demo environment lifecycle: creating the
// bucket and Cloud Run service, recording them in the ledger as they come
// up, and tearing them back down from the ledger.
package provision

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
	"github.com/wajahatashraf/gcp-setup/internal/gcp"
	"github.com/wajahatashraf/gcp-setup/internal/ledger"
	"github.com/wajahatashraf/gcp-setup/internal/uploader"
)

// Stage names the provisioning step that failed.
type Stage string

const (
	StageBucket Stage = "bucket"
	StageDeploy Stage = "deploy"
)

// Request carries the inputs for one setup run.
type Request struct {
	ProjectID   string
	Region      string
	ServiceName string
	// Image is the container image to deploy. Ignored when SourceDir is set.
	Image string
	// SourceDir, when set, is built with Cloud Build and the resulting
	// image deployed instead of Image.
	SourceDir string
}

// Result reports what a setup run produced. FailedStage and Cause are set
// when the run stopped early; resources created before the failure are
// still recorded in the ledger.
type Result struct {
	BucketName   string
	ServiceName  string
	ServiceURL   string
	FailedStage  Stage
	Cause        error
	Verification *VerificationReport
}

// BucketOK reports whether the bucket stage completed.
func (r *Result) BucketOK() bool { return r.BucketName != "" }

// DeployOK reports whether the deploy stage completed.
func (r *Result) DeployOK() bool { return r.ServiceURL != "" }

// Provisioner creates demo resources and records them in the ledger.
type Provisioner struct {
	clients  *gcp.Clients
	store    ledger.Store
	verifier *Verifier
	log      *slog.Logger
}

// NewProvisioner wires a Provisioner. A nil verifier skips verification.
func NewProvisioner(clients *gcp.Clients, store ledger.Store, verifier *Verifier, log *slog.Logger) *Provisioner {
	if log == nil {
		log = slog.Default()
	}
	return &Provisioner{clients: clients, store: store, verifier: verifier, log: log}
}

// Provision runs the full setup sequence: create the bucket, persist it,
// deploy the service, persist that, then verify. Each created resource is
// written to the ledger before the next step runs, so a crash mid-run
// leaves everything created so far recoverable by reset.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: req.ServiceName}

	rec, err := p.store.Load()
	if err != nil {
		return result, err
	}

	bucketName := NewBucketName()
	if err := p.clients.Storage.CreateBucket(ctx, req.ProjectID, bucketName, constants.DefaultBucketLocation); err != nil {
		result.FailedStage = StageBucket
		result.Cause = apperrors.ErrBucketCreateFailed(bucketName, err)
		return result, result.Cause
	}
	result.BucketName = bucketName
	p.log.Info("bucket created", "bucket", bucketName)

	rec.AddBucket(bucketName)
	if err := p.store.Save(rec); err != nil {
		// The bucket exists but is not recorded; this must surface
		// loudly or reset will never find it.
		return result, fmt.Errorf("bucket %s created but ledger save failed: %w", bucketName, err)
	}

	url, err := p.deploy(ctx, req, bucketName)
	if err != nil {
		result.FailedStage = StageDeploy
		result.Cause = apperrors.ErrDeployFailed(req.ServiceName, err)
		p.log.Error("deploy failed", "service", req.ServiceName, "error", err)
		return result, nil
	}
	result.ServiceURL = url
	p.log.Info("service deployed", "service", req.ServiceName, "url", url)

	rec.CloudRunService = req.ServiceName
	rec.CloudRunURL = url
	if err := p.store.Save(rec); err != nil {
		return result, fmt.Errorf("service %s deployed but ledger save failed: %w", req.ServiceName, err)
	}

	if p.verifier != nil {
		result.Verification = p.verifier.Verify(ctx, url)
	}
	return result, nil
}

// deploy enables the required APIs, resolves the image (building from
// source when requested), and deploys it to Cloud Run.
func (p *Provisioner) deploy(ctx context.Context, req Request, bucketName string) (string, error) {
	if err := p.clients.ServiceUsage.EnableServices(ctx, req.ProjectID, constants.RequiredServices()); err != nil {
		return "", fmt.Errorf("enable required services: %w", err)
	}

	image := req.Image
	if image == "" {
		image = constants.DefaultImage
	}

	if req.SourceDir != "" {
		up := uploader.New(p.clients.Storage, bucketName, p.log)
		object, err := up.StageSource(ctx, req.SourceDir, req.ServiceName)
		if err != nil {
			return "", err
		}

		image = fmt.Sprintf("gcr.io/%s/%s", req.ProjectID, req.ServiceName)
		p.log.Info("building image", "image", image, "source", object)
		if err := p.clients.Build.BuildImage(ctx, req.ProjectID, bucketName, object, image); err != nil {
			return "", fmt.Errorf("build image: %w", err)
		}
	}

	envVars := map[string]string{"GCP_PROJECT": req.ProjectID}
	return p.clients.Run.DeployService(ctx, req.ProjectID, req.ServiceName, image, envVars)
}

// NewBucketName returns a fresh demo bucket name with a random hex suffix.
func NewBucketName() string {
	id := uuid.New()
	suffix := hex.EncodeToString(id[:])[:constants.BucketSuffixLength]
	return constants.BucketNamePrefix + suffix
}
