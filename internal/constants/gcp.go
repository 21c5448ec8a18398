package constants

// LedgerFileName is the well-known ledger file recording created resources.
// A setup run writes it; a reset run consumes and removes it.
const LedgerFileName = "gcp_created_resources.json"

// BucketNamePrefix is the prefix for demo bucket names. The full name is
// the prefix plus an 8-character random hex suffix.
const BucketNamePrefix = "automation-bucket-"

// BucketSuffixLength is the number of random hex characters appended to
// BucketNamePrefix.
const BucketSuffixLength = 8

// DefaultBucketLocation is the location for created demo buckets.
const DefaultBucketLocation = "US"

// DefaultServiceName is the Cloud Run service name used when --service-name
// is not provided.
const DefaultServiceName = "automation-demo"

// DefaultRegion is the Cloud Run region used when --region is not provided.
const DefaultRegion = "us-central1"

// DefaultImage is deployed when neither --image nor --source is provided.
const DefaultImage = "us-docker.pkg.dev/cloudrun/container/hello"

// DemoTargetURL is the external page the deployed demo service fetches.
const DemoTargetURL = "https://example.com"

// ExcerptLimit caps the upstream body excerpt returned by the demo service
// and recorded by the verifier.
const ExcerptLimit = 2000

// ReportObjectName is the bucket object name for an uploaded test report.
const ReportObjectName = "report.html"

// ScreenshotObjectPrefix is the bucket prefix for uploaded failure screenshots.
const ScreenshotObjectPrefix = "screenshots/"

// SourceObjectPrefix is the bucket prefix for staged Cloud Build source archives.
const SourceObjectPrefix = "source/"

// RequiredServices lists the APIs that must be enabled before a deploy.
func RequiredServices() []string {
	return []string{
		"run.googleapis.com",
		"cloudbuild.googleapis.com",
		"storage.googleapis.com",
		"artifactregistry.googleapis.com",
	}
}

// CloudRunInvokerRole is the IAM role granted to allUsers so the deployed
// demo service is publicly reachable.
const CloudRunInvokerRole = "roles/run.invoker"

// DefaultMaxInstances bounds Cloud Run scaling for the demo service.
const DefaultMaxInstances = 2

// DefaultPort is the port the demo service listens on when $PORT is unset.
const DefaultPort = "8080"
