// Package objstore provides the object-storage collaborator used by the
// ingestion trigger. The core depends only on the Fetch contract; this
// package supplies the Cloud Storage implementation.
package objstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCS fetches objects from Google Cloud Storage buckets.
type GCS struct {
	client  *storage.Client
	maxSize int64
}

// NewGCS creates a GCS fetcher using ambient credentials.
// maxSize caps how many bytes a single fetch will read; 0 means no cap.
func NewGCS(ctx context.Context, maxSize int64) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, maxSize: maxSize}, nil
}

// Fetch returns the full content of bucket/name.
// Network and permission failures propagate to the caller; nothing is
// retried here, since object notifications are redelivered by the trigger
// infrastructure.
func (g *GCS) Fetch(ctx context.Context, bucket, name string) ([]byte, error) {
	r, err := g.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s/%s: %w", bucket, name, err)
	}
	defer r.Close()

	var src io.Reader = r
	if g.maxSize > 0 {
		if r.Attrs.Size > g.maxSize {
			return nil, fmt.Errorf("object %s/%s is %d bytes, limit is %d", bucket, name, r.Attrs.Size, g.maxSize)
		}
		src = io.LimitReader(r, g.maxSize)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, name, err)
	}
	return data, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
