package sql

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// NewDatabase resolves the repository database named by the infrastructure
// section and ties the connection's lifetime to the fx lifecycle.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	name := cfg.Lineup.Infrastructure.RepositoryDBRef
	dbCfg, err := cfg.Lineup.DatabaseConfig(name)
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, "failed to resolve repository database configuration", err, false)
	}
	db, err := OpenDatabase(dbCfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			logger.Infof("Closing repository database connection.")
			return sqlDB.Close()
		},
	})
	return db, nil
}

// Module provides the SQL repository and its transaction manager.
var Module = fx.Options(
	fx.Provide(NewDatabase),
	fx.Provide(fx.Annotate(
		NewSQLOrchestrationRepository,
		fx.As(new(repository.OrchestrationRepository)),
	)),
	fx.Provide(fx.Annotate(
		NewGormTransactionManager,
		fx.As(new(tx.TransactionManager)),
	)),
)
