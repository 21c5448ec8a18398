package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
	"github.com/wajahatashraf/gcp-setup/internal/gcp"
	"github.com/wajahatashraf/gcp-setup/internal/ledger"
)

// fakeStorage implements gcp.StorageClient with scriptable failures.
type fakeStorage struct {
	createErr  error
	deleteErr  map[string]error
	created    []string
	deleted    []string
	uploaded   map[string][]byte
	callsTotal int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{deleteErr: map[string]error{}, uploaded: map[string][]byte{}}
}

func (f *fakeStorage) CreateBucket(_ context.Context, _, name, _ string) error {
	f.callsTotal++
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, name)
	return nil
}

func (f *fakeStorage) DeleteBucket(_ context.Context, name string) error {
	f.callsTotal++
	if err := f.deleteErr[name]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeStorage) CountBuckets(context.Context, string) (int, error) {
	f.callsTotal++
	return len(f.created), nil
}

func (f *fakeStorage) Upload(_ context.Context, bucket, object string, data []byte) error {
	f.callsTotal++
	f.uploaded[bucket+"/"+object] = data
	return nil
}

// fakeRun implements gcp.CloudRunClient.
type fakeRun struct {
	deployErr    error
	deleteErr    error
	url          string
	deployedImg  string
	deployedEnv  map[string]string
	deleted      []string
	callsTotal   int
	deployCalled bool
}

func (f *fakeRun) DeployService(_ context.Context, _, _, image string, envVars map[string]string) (string, error) {
	f.callsTotal++
	f.deployCalled = true
	if f.deployErr != nil {
		return "", f.deployErr
	}
	f.deployedImg = image
	f.deployedEnv = envVars
	return f.url, nil
}

func (f *fakeRun) DeleteService(_ context.Context, _, name string) error {
	f.callsTotal++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

// fakeBuild implements gcp.CloudBuildClient.
type fakeBuild struct {
	err      error
	builtImg string
	source   string
}

func (f *fakeBuild) BuildImage(_ context.Context, _, sourceBucket, sourceObject, imageTag string) error {
	if f.err != nil {
		return f.err
	}
	f.builtImg = imageTag
	f.source = sourceBucket + "/" + sourceObject
	return nil
}

// fakeUsage implements gcp.ServiceUsageClient.
type fakeUsage struct {
	err     error
	enabled []string
}

func (f *fakeUsage) EnableServices(_ context.Context, _ string, services []string) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = append(f.enabled, services...)
	return nil
}

// fakeProjects implements gcp.ProjectsClient.
type fakeProjects struct {
	exists bool
	err    error
}

func (f *fakeProjects) ProjectExists(context.Context, string) (bool, error) {
	return f.exists, f.err
}

// failingSaveStore wraps a MemStore and fails Save after n successes.
type failingSaveStore struct {
	*ledger.MemStore
	failAfter int
	saves     int
}

func (s *failingSaveStore) Save(rec *ledger.Record) error {
	if s.saves >= s.failAfter {
		return errors.New("disk full")
	}
	s.saves++
	return s.MemStore.Save(rec)
}

func testClients(storage *fakeStorage, run *fakeRun, build *fakeBuild, usage *fakeUsage) *gcp.Clients {
	return &gcp.Clients{
		Storage:      storage,
		Run:          run,
		Build:        build,
		ServiceUsage: usage,
		Projects:     &fakeProjects{exists: true},
	}
}

func testRequest() Request {
	return Request{
		ProjectID:   "demo-project",
		Region:      "us-central1",
		ServiceName: "automation-demo",
	}
}

func TestNewBucketName(t *testing.T) {
	pattern := regexp.MustCompile(`^automation-bucket-[0-9a-f]{8}$`)

	name := NewBucketName()
	assert.Regexp(t, pattern, name)

	// Suffixes are random; two calls must not collide.
	assert.NotEqual(t, name, NewBucketName())
}

func TestProvision_HappyPath(t *testing.T) {
	storage := newFakeStorage()
	run := &fakeRun{url: "https://automation-demo-abc123-uc.a.run.app"}
	usage := &fakeUsage{}
	store := ledger.NewMemStore()

	p := NewProvisioner(testClients(storage, run, &fakeBuild{}, usage), store, nil, nil)
	result, err := p.Provision(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, result.BucketOK())
	assert.True(t, result.DeployOK())
	assert.Regexp(t, `^automation-bucket-[0-9a-f]{8}$`, result.BucketName)
	assert.Equal(t, run.url, result.ServiceURL)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{result.BucketName}, rec.Buckets)
	assert.Equal(t, "automation-demo", rec.CloudRunService)
	assert.Equal(t, run.url, rec.CloudRunURL)

	// One save after the bucket, one after the deploy.
	assert.Equal(t, 2, store.SaveCount)
	assert.Contains(t, usage.enabled, "run.googleapis.com")
	assert.Equal(t, map[string]string{"GCP_PROJECT": "demo-project"}, run.deployedEnv)
}

func TestProvision_DefaultImage(t *testing.T) {
	run := &fakeRun{url: "https://svc.run.app"}
	p := NewProvisioner(testClients(newFakeStorage(), run, &fakeBuild{}, &fakeUsage{}), ledger.NewMemStore(), nil, nil)

	_, err := p.Provision(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "us-docker.pkg.dev/cloudrun/container/hello", run.deployedImg)
}

func TestProvision_BucketFailureIsFatal(t *testing.T) {
	storage := newFakeStorage()
	storage.createErr = errors.New("permission denied")
	run := &fakeRun{url: "https://svc.run.app"}
	store := ledger.NewMemStore()

	p := NewProvisioner(testClients(storage, run, &fakeBuild{}, &fakeUsage{}), store, nil, nil)
	result, err := p.Provision(context.Background(), testRequest())

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBucketCreateFailed, appErr.Code)

	assert.Equal(t, StageBucket, result.FailedStage)
	assert.False(t, run.deployCalled, "deploy must not run after a bucket failure")
	assert.False(t, store.Exists(), "nothing was created, nothing to record")
}

func TestProvision_DeployFailureIsReported(t *testing.T) {
	storage := newFakeStorage()
	run := &fakeRun{deployErr: errors.New("quota exceeded")}
	store := ledger.NewMemStore()

	p := NewProvisioner(testClients(storage, run, &fakeBuild{}, &fakeUsage{}), store, nil, nil)
	result, err := p.Provision(context.Background(), testRequest())

	// Deploy failures are reported through the result, not as an error:
	// the bucket exists and stays recorded for a later reset.
	require.NoError(t, err)
	assert.Equal(t, StageDeploy, result.FailedStage)
	assert.True(t, errors.Is(result.Cause, &apperrors.AppError{Code: apperrors.ErrCodeDeployFailed}))
	assert.True(t, result.BucketOK())
	assert.False(t, result.DeployOK())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{result.BucketName}, rec.Buckets)
	assert.Empty(t, rec.CloudRunService)
}

func TestProvision_LedgerSaveFailureAfterBucket(t *testing.T) {
	storage := newFakeStorage()
	run := &fakeRun{url: "https://svc.run.app"}
	store := &failingSaveStore{MemStore: ledger.NewMemStore(), failAfter: 0}

	p := NewProvisioner(testClients(storage, run, &fakeBuild{}, &fakeUsage{}), store, nil, nil)
	result, err := p.Provision(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger save failed")
	assert.Contains(t, err.Error(), result.BucketName,
		"the error must name the unrecorded bucket")
	assert.False(t, run.deployCalled)
}

func TestProvision_BuildFromSource(t *testing.T) {
	storage := newFakeStorage()
	run := &fakeRun{url: "https://svc.run.app"}
	build := &fakeBuild{}

	dir := t.TempDir()
	writeSourceFixture(t, dir)

	req := testRequest()
	req.SourceDir = dir

	p := NewProvisioner(testClients(storage, run, build, &fakeUsage{}), ledger.NewMemStore(), nil, nil)
	result, err := p.Provision(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "gcr.io/demo-project/automation-demo", build.builtImg)
	assert.Equal(t, build.builtImg, run.deployedImg, "the built image is what gets deployed")
	assert.Contains(t, storage.uploaded, result.BucketName+"/source/automation-demo.tar.gz")
}

func writeSourceFixture(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
}

func TestProvision_AppendsToExistingLedger(t *testing.T) {
	store := ledger.NewMemStore()
	require.NoError(t, store.Save(&ledger.Record{Buckets: []string{"automation-bucket-11111111"}}))

	run := &fakeRun{url: "https://svc.run.app"}
	p := NewProvisioner(testClients(newFakeStorage(), run, &fakeBuild{}, &fakeUsage{}), store, nil, nil)
	result, err := p.Provision(context.Background(), testRequest())
	require.NoError(t, err)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"automation-bucket-11111111", result.BucketName}, rec.Buckets)
}
