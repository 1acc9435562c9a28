package sql

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// OpenDatabase opens the relational store named by the configuration.
// Supported drivers: sqlite, mysql, postgres.
func OpenDatabase(dbCfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(dbCfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// Repositories manage transactions through the TransactionManager;
		// GORM's implicit per-write transaction would only double the cost.
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("failed to open '%s' database", dbCfg.Driver), err, true)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, exception.NewBatchError(moduleSQLRepository, "failed to access underlying sql.DB", err, false)
	}
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Infof("Connected to '%s' database.", dbCfg.Driver)
	return db, nil
}

func dialectorFor(dbCfg config.DatabaseConfig) (gorm.Dialector, error) {
	if dbCfg.DSN == "" {
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("database driver '%s' requires a DSN", dbCfg.Driver), nil, false)
	}
	switch strings.ToLower(dbCfg.Driver) {
	case "sqlite", "sqlite3":
		return sqlite.Open(dbCfg.DSN), nil
	case "mysql":
		return mysql.Open(dbCfg.DSN), nil
	case "postgres", "postgresql":
		return postgres.Open(dbCfg.DSN), nil
	default:
		return nil, exception.NewBatchError(moduleSQLRepository,
			fmt.Sprintf("unsupported database driver '%s'", dbCfg.Driver), nil, false)
	}
}
