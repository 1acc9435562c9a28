// Package storage abstracts the object storage the audit exporter writes
// to, so exported files can land on the local file system or in a cloud
// bucket through one API.
package storage

import (
	"context"
	"io"
)

// StorageAdapter is one storage backend connection.
type StorageAdapter interface {
	// Upload writes data under objectName in the given bucket. For backends
	// without buckets (local file system), bucket becomes a path segment.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download reads the object back. The caller must close the reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for every object under the prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// Type identifies the backend ("local", "gcs").
	Type() string
	Close() error
}
