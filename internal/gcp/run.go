package gcp

import (
	"context"
	"errors"
	"fmt"
	"slices"

	retry "github.com/avast/retry-go/v4"
	"google.golang.org/api/run/v2"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// errOperationInProgress signals the poll loop to keep waiting.
var errOperationInProgress = errors.New("operation still in progress")

// ErrServiceNotFound reports that no service exists at the delete path.
// The region is baked into the path, so this also covers a service that
// lives in a different region than the client was built for.
var ErrServiceNotFound = errors.New("cloud run service not found")

// runClient implements CloudRunClient on the Cloud Run Admin API (v2).
type runClient struct {
	service *run.Service
	region  string
}

func (c *runClient) servicePath(projectID, service string) string {
	return fmt.Sprintf("projects/%s/locations/%s/services/%s", projectID, c.region, service)
}

func (c *runClient) parent(projectID string) string {
	return fmt.Sprintf("projects/%s/locations/%s", projectID, c.region)
}

// DeployService creates the service, or patches its template when it
// already exists, waits for the operation, opens it to unauthenticated
// callers, and returns the resolved URL.
func (c *runClient) DeployService(
	ctx context.Context,
	projectID, serviceName, image string,
	envVars map[string]string,
) (string, error) {
	path := c.servicePath(projectID, serviceName)

	template := &run.GoogleCloudRunV2RevisionTemplate{
		Containers: []*run.GoogleCloudRunV2Container{
			{
				Image: image,
				Env:   toRunEnvVars(envVars),
			},
		},
		Scaling: &run.GoogleCloudRunV2RevisionScaling{
			MaxInstanceCount: constants.DefaultMaxInstances,
		},
	}

	existing, err := c.service.Projects.Locations.Services.Get(path).Context(ctx).Do()
	switch {
	case isNotFound(err):
		svc := &run.GoogleCloudRunV2Service{
			Name:     path,
			Template: template,
		}
		op, createErr := c.service.Projects.Locations.Services.Create(c.parent(projectID), svc).
			ServiceId(serviceName).
			Context(ctx).
			Do()
		if createErr != nil {
			return "", wrapError("create cloud run service", createErr)
		}
		if waitErr := c.waitForOperation(ctx, op.Name); waitErr != nil {
			return "", wrapError("wait for cloud run creation", waitErr)
		}
	case err != nil:
		return "", wrapError("get cloud run service", err)
	default:
		existing.Template = template
		op, patchErr := c.service.Projects.Locations.Services.Patch(path, existing).
			UpdateMask("template").
			Context(ctx).
			Do()
		if patchErr != nil {
			return "", wrapError("update cloud run service", patchErr)
		}
		if waitErr := c.waitForOperation(ctx, op.Name); waitErr != nil {
			return "", wrapError("wait for cloud run update", waitErr)
		}
	}

	if err := c.allowUnauthenticated(ctx, path); err != nil {
		return "", err
	}

	deployed, err := c.service.Projects.Locations.Services.Get(path).Context(ctx).Do()
	if err != nil {
		return "", wrapError("get cloud run service uri", err)
	}
	if deployed.Uri == "" {
		return "", errors.New("deployed service has no uri")
	}
	return deployed.Uri, nil
}

func (c *runClient) DeleteService(ctx context.Context, projectID, serviceName string) error {
	op, err := c.service.Projects.Locations.Services.Delete(c.servicePath(projectID, serviceName)).
		Context(ctx).
		Do()
	if isNotFound(err) {
		return ErrServiceNotFound
	}
	if err != nil {
		return wrapError("delete cloud run service", err)
	}
	return wrapError("wait for cloud run deletion", c.waitForOperation(ctx, op.Name))
}

// allowUnauthenticated grants roles/run.invoker to allUsers so the demo
// endpoint is publicly reachable.
func (c *runClient) allowUnauthenticated(ctx context.Context, servicePath string) error {
	policy, err := c.service.Projects.Locations.Services.GetIamPolicy(servicePath).Context(ctx).Do()
	if err != nil {
		return wrapError("get cloud run iam policy", err)
	}

	const member = "allUsers"
	if !bindingExists(policy.Bindings, constants.CloudRunInvokerRole, member) {
		policy.Bindings = append(policy.Bindings, &run.GoogleIamV1Binding{
			Role:    constants.CloudRunInvokerRole,
			Members: []string{member},
		})
	}

	_, err = c.service.Projects.Locations.Services.SetIamPolicy(
		servicePath,
		&run.GoogleIamV1SetIamPolicyRequest{Policy: policy},
	).Context(ctx).Do()
	return wrapError("set cloud run iam policy", err)
}

func (c *runClient) waitForOperation(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RunOperationTimeout)
	defer cancel()

	return retry.Do(
		func() error {
			op, err := c.service.Projects.Locations.Operations.Get(name).Context(ctx).Do()
			if err != nil {
				return retry.Unrecoverable(wrapError("poll cloud run operation", err))
			}
			if !op.Done {
				return errOperationInProgress
			}
			if op.Error != nil {
				return retry.Unrecoverable(fmt.Errorf("operation error: %s", op.Error.Message))
			}
			return nil
		},
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errOperationInProgress)
		}),
		retry.Context(ctx),
		retry.Attempts(uint(constants.RunOperationTimeout/constants.ResourcePollInterval)),
		retry.Delay(constants.ResourcePollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

func toRunEnvVars(envVars map[string]string) []*run.GoogleCloudRunV2EnvVar {
	result := make([]*run.GoogleCloudRunV2EnvVar, 0, len(envVars))
	for k, v := range envVars {
		result = append(result, &run.GoogleCloudRunV2EnvVar{
			Name:  k,
			Value: v,
		})
	}
	return result
}

func bindingExists(bindings []*run.GoogleIamV1Binding, role, member string) bool {
	for _, b := range bindings {
		if b.Role == role && slices.Contains(b.Members, member) {
			return true
		}
	}
	return false
}
