package gcp

import (
	"context"
	"fmt"

	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/storage"
	"google.golang.org/api/cloudbuild/v1"
	"google.golang.org/api/run/v2"
	"google.golang.org/api/serviceusage/v1"
)

// StorageClient abstracts the Cloud Storage operations the lifecycle needs.
type StorageClient interface {
	// CreateBucket creates a bucket in the given project and location.
	CreateBucket(ctx context.Context, projectID, name, location string) error
	// DeleteBucket force-deletes a bucket, removing contained objects
	// first. Deleting an absent bucket is not an error.
	DeleteBucket(ctx context.Context, name string) error
	// CountBuckets returns the number of buckets visible in the project.
	CountBuckets(ctx context.Context, projectID string) (int, error)
	// Upload writes data to gs://<bucket>/<object>.
	Upload(ctx context.Context, bucket, object string, data []byte) error
}

// CloudRunClient abstracts the Cloud Run Admin API.
type CloudRunClient interface {
	// DeployService creates or updates the service with the given image,
	// waits for the operation, makes the service publicly invokable, and
	// returns its URL.
	DeployService(ctx context.Context, projectID, serviceName, image string, envVars map[string]string) (string, error)
	// DeleteService deletes the service. When no service exists at the
	// path it returns ErrServiceNotFound so callers can tell "already
	// gone" apart from a confirmed deletion; a delete issued against the
	// wrong region looks exactly like this.
	DeleteService(ctx context.Context, projectID, serviceName string) error
}

// CloudBuildClient abstracts Cloud Build.
type CloudBuildClient interface {
	// BuildImage builds the staged source archive into imageTag and waits
	// for the build to finish.
	BuildImage(ctx context.Context, projectID, sourceBucket, sourceObject, imageTag string) error
}

// ServiceUsageClient abstracts the Service Usage API.
type ServiceUsageClient interface {
	EnableServices(ctx context.Context, projectID string, services []string) error
}

// ProjectsClient abstracts the Resource Manager project lookup.
type ProjectsClient interface {
	ProjectExists(ctx context.Context, projectID string) (bool, error)
}

// Clients bundles the cloud clients the provisioning lifecycle uses.
type Clients struct {
	Storage      StorageClient
	Run          CloudRunClient
	Build        CloudBuildClient
	ServiceUsage ServiceUsageClient
	Projects     ProjectsClient
}

// NewClients builds concrete clients backed by the Google Cloud APIs,
// authenticated with the loaded service-account credentials.
func NewClients(ctx context.Context, creds *Credentials, region string) (*Clients, error) {
	opts := creds.ClientOptions()

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	runSvc, err := run.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create run service: %w", err)
	}

	buildSvc, err := cloudbuild.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloud build service: %w", err)
	}

	usageSvc, err := serviceusage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create service usage service: %w", err)
	}

	projectsClient, err := resourcemanager.NewProjectsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create projects client: %w", err)
	}

	return &Clients{
		Storage:      &gcsClient{client: storageClient},
		Run:          &runClient{service: runSvc, region: region},
		Build:        &buildClient{service: buildSvc},
		ServiceUsage: &serviceUsageClient{service: usageSvc},
		Projects:     &rmProjectsClient{client: projectsClient},
	}, nil
}
