package constants

import "time"

// VerificationTimeout bounds the single post-deploy verification call.
const VerificationTimeout = 20 * time.Second

// UpstreamFetchTimeout bounds the demo service's fetch of DemoTargetURL.
const UpstreamFetchTimeout = 10 * time.Second

// RunOperationTimeout bounds a Cloud Run create/update/delete operation.
const RunOperationTimeout = 10 * time.Minute

// BuildOperationTimeout bounds a Cloud Build execution.
const BuildOperationTimeout = 15 * time.Minute

// ServiceUsageOperationTimeout bounds API enablement.
const ServiceUsageOperationTimeout = 5 * time.Minute

// StorageOperationTimeout bounds a single bucket create or delete.
const StorageOperationTimeout = 2 * time.Minute

// ResourcePollInterval is the delay between long-running operation polls.
const ResourcePollInterval = 5 * time.Second

// TestContextTimeout is the timeout for test contexts.
const TestContextTimeout = 5 * time.Second
