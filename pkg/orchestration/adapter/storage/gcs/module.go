package gcs

import (
	"context"

	storage "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage"
	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
)

// init registers the GCS backend with the storage adapter registry.
func init() {
	storage.RegisterAdapterFactory(ProviderType, func(ctx context.Context, cfg config.ExportConfig) (storage.StorageAdapter, error) {
		return NewGCSAdapter(ctx, cfg.CredentialsFile)
	})
}
