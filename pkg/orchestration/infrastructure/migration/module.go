package migration

import (
	"context"
	"io/fs"

	"go.uber.org/fx"
	"gorm.io/gorm"

	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// NewRepositoryMigrator builds the migrator for the configured repository
// database.
func NewRepositoryMigrator(db *gorm.DB, cfg *config.Config, migrationFS fs.FS) (*Migrator, error) {
	dbCfg, err := cfg.Lineup.DatabaseConfig(cfg.Lineup.Infrastructure.RepositoryDBRef)
	if err != nil {
		return nil, exception.NewBatchError(moduleMigration, "failed to resolve repository database configuration", err, false)
	}
	return NewMigrator(db, dbCfg.Driver, migrationFS), nil
}

// Module provides the migrator and applies pending migrations on startup,
// before anything queries the store.
var Module = fx.Options(
	fx.Provide(ProvideMigrationsFS),
	fx.Provide(NewRepositoryMigrator),
	fx.Invoke(func(lc fx.Lifecycle, m *Migrator) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return m.Up(ctx)
			},
		})
	}),
)
