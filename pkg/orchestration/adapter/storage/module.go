package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
)

// adapterFactories is populated by the backend packages' init functions so
// this package never imports its own implementations.
var adapterFactories = map[string]func(ctx context.Context, cfg config.ExportConfig) (StorageAdapter, error){}

// RegisterAdapterFactory registers a backend by type name. Called from the
// backend packages' init functions.
func RegisterAdapterFactory(typeName string, factory func(ctx context.Context, cfg config.ExportConfig) (StorageAdapter, error)) {
	adapterFactories[typeName] = factory
}

// NewStorageAdapter resolves the configured export backend.
func NewStorageAdapter(lc fx.Lifecycle, cfg *config.Config) (StorageAdapter, error) {
	exportCfg := cfg.Lineup.Export
	factory, ok := adapterFactories[exportCfg.Storage]
	if !ok {
		return nil, fmt.Errorf("unsupported export storage type '%s'", exportCfg.Storage)
	}
	adapter, err := factory(context.Background(), exportCfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return adapter.Close()
		},
	})
	return adapter, nil
}

// Module provides the configured storage adapter.
var Module = fx.Options(
	fx.Provide(NewStorageAdapter),
)
