// Package ledger persists the record of cloud resources created by a setup
// run. The ledger is the single source of truth for teardown: no component
// may infer resource existence by listing the cloud account.
package ledger

import "slices"

// Record is the sole persisted entity. It lists resources created by a
// prior setup run that have not yet been confirmed deleted.
type Record struct {
	// Buckets holds created bucket names in creation order.
	Buckets []string `json:"buckets"`
	// CloudRunService names the deployed managed service, when the deploy
	// step completed.
	CloudRunService string `json:"cloud_run_service,omitempty"`
	// CloudRunURL is the externally reachable endpoint of the service,
	// populated only after a successful deploy.
	CloudRunURL string `json:"cloud_run_url,omitempty"`
}

// Empty reports whether the record tracks no resources.
func (r *Record) Empty() bool {
	return r == nil || (len(r.Buckets) == 0 && r.CloudRunService == "" && r.CloudRunURL == "")
}

// AddBucket appends a bucket name, ignoring duplicates.
func (r *Record) AddBucket(name string) {
	if slices.Contains(r.Buckets, name) {
		return
	}
	r.Buckets = append(r.Buckets, name)
}

// Clone returns a deep copy so callers can mutate without aliasing the
// store's view of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return &Record{}
	}
	return &Record{
		Buckets:         slices.Clone(r.Buckets),
		CloudRunService: r.CloudRunService,
		CloudRunURL:     r.CloudRunURL,
	}
}
