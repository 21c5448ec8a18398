package gcp

import (
	"context"
	"fmt"
	"strings"

	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// rmProjectsClient implements ProjectsClient on Resource Manager.
type rmProjectsClient struct {
	client *resourcemanager.ProjectsClient
}

func (c *rmProjectsClient) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	req := &resourcemanagerpb.GetProjectRequest{
		Name: "projects/" + projectID,
	}

	_, err := c.client.GetProject(ctx, req)
	if err != nil {
		//nolint:exhaustive // only handling NotFound and PermissionDenied specifically
		switch status.Code(err) {
		case codes.NotFound:
			return false, nil
		case codes.PermissionDenied:
			// Resource Manager reports inaccessible and nonexistent
			// projects with the same code.
			if strings.Contains(err.Error(), "or it may not exist") {
				return false, nil
			}
		}
		return false, fmt.Errorf("failed to get project: %w", err)
	}

	return true, nil
}
