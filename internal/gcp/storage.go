package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// gcsClient implements StorageClient on top of cloud.google.com/go/storage.
type gcsClient struct {
	client *storage.Client
}

func newGCSClient(client *storage.Client) *gcsClient {
	return &gcsClient{client: client}
}

func (c *gcsClient) CreateBucket(ctx context.Context, projectID, name, location string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StorageOperationTimeout)
	defer cancel()

	attrs := &storage.BucketAttrs{Location: location}
	if err := c.client.Bucket(name).Create(ctx, projectID, attrs); err != nil {
		return wrapError("create bucket", err)
	}
	return nil
}

// DeleteBucket deletes every object in the bucket and then the bucket
// itself, mirroring a forced delete. An absent bucket is treated as
// already deleted.
func (c *gcsClient) DeleteBucket(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StorageOperationTimeout)
	defer cancel()

	bucket := c.client.Bucket(name)

	it := bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			if errors.Is(err, storage.ErrBucketNotExist) || isNotFound(err) {
				return nil
			}
			return wrapError("list bucket objects", err)
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil &&
			!errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("delete object %s: %w", attrs.Name, err)
		}
	}

	if err := bucket.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) || isNotFound(err) {
			return nil
		}
		return wrapError("delete bucket", err)
	}
	return nil
}

func (c *gcsClient) CountBuckets(ctx context.Context, projectID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.StorageOperationTimeout)
	defer cancel()

	count := 0
	it := c.client.Buckets(ctx, projectID)
	for {
		_, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return 0, wrapError("list buckets", err)
		}
		count++
	}
	return count, nil
}

func (c *gcsClient) Upload(ctx context.Context, bucket, object string, data []byte) error {
	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", object, err)
	}
	return nil
}
