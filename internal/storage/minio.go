package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultSnapshotObject is the object key the snapshot is stored under.
const DefaultSnapshotObject = "snapshot.json"

// MinIOClient stores the encoded snapshot as one object in a bucket.
type MinIOClient struct {
	client *minio.Client
	bucket string
	object string
}

// NewMinIOClient creates a MinIO client and ensures the bucket exists.
func NewMinIOClient(ctx context.Context, endpoint, accessKey, secretKey, bucket string) (*MinIOClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinIOClient{
		client: client,
		bucket: bucket,
		object: DefaultSnapshotObject,
	}, nil
}

// WithObject returns a copy of m that uses a different object key.
func (m *MinIOClient) WithObject(key string) *MinIOClient {
	c := *m
	c.object = key
	return &c
}

// Get returns the stored snapshot, or nil if the object does not exist.
func (m *MinIOClient) Get(ctx context.Context) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, m.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, fmt.Errorf("minio read: %w", err)
	}
	return data, nil
}

// Set replaces the stored snapshot.
func (m *MinIOClient) Set(ctx context.Context, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, m.object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("minio put: %w", err)
	}
	return nil
}

// Delete removes the snapshot object.
func (m *MinIOClient) Delete(ctx context.Context) error {
	return m.client.RemoveObject(ctx, m.bucket, m.object, minio.RemoveObjectOptions{})
}

// Ping checks that the bucket is reachable.
func (m *MinIOClient) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
