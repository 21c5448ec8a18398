package gcp

import (
	"context"
	"io"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeGCS(t *testing.T, objects []fakestorage.Object) *gcsClient {
	t.Helper()
	server := fakestorage.NewServer(objects)
	t.Cleanup(server.Stop)
	return newGCSClient(server.Client())
}

func TestGCSClient_CreateBucket(t *testing.T) {
	c := newFakeGCS(t, nil)
	ctx := context.Background()

	require.NoError(t, c.CreateBucket(ctx, "demo-project", "automation-bucket-ab12cd34", "US"))

	attrs, err := c.client.Bucket("automation-bucket-ab12cd34").Attrs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "automation-bucket-ab12cd34", attrs.Name)
}

func TestGCSClient_DeleteBucketForce(t *testing.T) {
	c := newFakeGCS(t, []fakestorage.Object{
		{
			ObjectAttrs: fakestorage.ObjectAttrs{BucketName: "b1", Name: "report.html"},
			Content:     []byte("<html></html>"),
		},
		{
			ObjectAttrs: fakestorage.ObjectAttrs{BucketName: "b1", Name: "screenshots/fail.png"},
			Content:     []byte{0x89, 0x50, 0x4e, 0x47},
		},
	})
	ctx := context.Background()

	require.NoError(t, c.DeleteBucket(ctx, "b1"), "delete must remove contained objects first")

	_, err := c.client.Bucket("b1").Attrs(ctx)
	assert.ErrorIs(t, err, storage.ErrBucketNotExist)
}

func TestGCSClient_DeleteBucketAbsent(t *testing.T) {
	c := newFakeGCS(t, nil)

	assert.NoError(t, c.DeleteBucket(context.Background(), "never-created"),
		"deleting an absent bucket is treated as already deleted")
}

func TestGCSClient_CountBuckets(t *testing.T) {
	c := newFakeGCS(t, []fakestorage.Object{
		{ObjectAttrs: fakestorage.ObjectAttrs{BucketName: "b1", Name: "o1"}, Content: []byte("x")},
		{ObjectAttrs: fakestorage.ObjectAttrs{BucketName: "b2", Name: "o2"}, Content: []byte("y")},
	})

	n, err := c.CountBuckets(context.Background(), "demo-project")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGCSClient_Upload(t *testing.T) {
	c := newFakeGCS(t, nil)
	ctx := context.Background()
	require.NoError(t, c.CreateBucket(ctx, "demo-project", "b1", "US"))

	require.NoError(t, c.Upload(ctx, "b1", "report.html", []byte("<html>ok</html>")))

	r, err := c.client.Bucket("b1").Object("report.html").NewReader(ctx)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(data))
}
