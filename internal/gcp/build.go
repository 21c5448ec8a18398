package gcp

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/cloudbuild/v1"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// buildClient implements CloudBuildClient on the Cloud Build API (v1).
type buildClient struct {
	service *cloudbuild.Service
}

// BuildImage runs a docker build of the staged source archive and pushes
// the resulting image, blocking until the build reaches a terminal state.
func (c *buildClient) BuildImage(ctx context.Context, projectID, sourceBucket, sourceObject, imageTag string) error {
	build := &cloudbuild.Build{
		Source: &cloudbuild.Source{
			StorageSource: &cloudbuild.StorageSource{
				Bucket: sourceBucket,
				Object: sourceObject,
			},
		},
		Steps: []*cloudbuild.BuildStep{
			{
				Name: "gcr.io/cloud-builders/docker",
				Args: []string{"build", "-t", imageTag, "."},
			},
		},
		Images: []string{imageTag},
	}

	op, err := c.service.Projects.Builds.Create(projectID, build).Context(ctx).Do()
	if err != nil {
		return wrapError("submit build", err)
	}

	return c.waitForOperation(ctx, op.Name)
}

func (c *buildClient) waitForOperation(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.BuildOperationTimeout)
	defer cancel()

	for {
		op, err := c.service.Operations.Get(name).Context(ctx).Do()
		if err != nil {
			return wrapError("poll build operation", err)
		}
		if op.Done {
			if op.Error != nil {
				return fmt.Errorf("build failed: %s", op.Error.Message)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for build: %w", ctx.Err())
		case <-time.After(constants.ResourcePollInterval):
		}
	}
}
