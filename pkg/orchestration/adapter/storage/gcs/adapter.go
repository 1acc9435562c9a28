// Package gcs provides a Google Cloud Storage implementation of the
// storage adapter.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	storage "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const ProviderType = "gcs"

// GCSAdapter implements storage.StorageAdapter over a GCS client.
type GCSAdapter struct {
	client *gcstorage.Client
}

var _ storage.StorageAdapter = (*GCSAdapter)(nil)

// NewGCSAdapter creates the adapter. With an empty credentialsFile the
// client falls back to application default credentials.
func NewGCSAdapter(ctx context.Context, credentialsFile string) (*GCSAdapter, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter: failed to create client: %w", err)
	}
	return &GCSAdapter{client: client}, nil
}

func (a *GCSAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	w := a.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload 'gs://%s/%s': %w", bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize 'gs://%s/%s': %w", bucket, objectName, err)
	}
	logger.Debugf("GCS storage: wrote gs://%s/%s", bucket, objectName)
	return nil
}

func (a *GCSAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	r, err := a.client.Bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open 'gs://%s/%s': %w", bucket, objectName, err)
	}
	return r, nil
}

func (a *GCSAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	it := a.client.Bucket(bucket).Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list 'gs://%s/%s': %w", bucket, prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *GCSAdapter) Type() string { return ProviderType }

func (a *GCSAdapter) Close() error { return a.client.Close() }
