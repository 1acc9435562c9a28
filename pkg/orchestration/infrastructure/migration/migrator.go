// Package migration manages the relational schema of the orchestration
// store through golang-migrate, with the migration files embedded per
// database driver.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const (
	moduleMigration = "migration"
	// migrationsTable keeps schema bookkeeping away from the lineup_ tables.
	migrationsTable = "lineup_schema_migrations"
)

// Migrator applies the embedded schema migrations to the repository
// database.
type Migrator struct {
	db     *gorm.DB
	driver string
	fs     fs.FS
}

func NewMigrator(db *gorm.DB, driver string, migrationFS fs.FS) *Migrator {
	return &Migrator{db: db, driver: driver, fs: migrationFS}
}

func (m *Migrator) databaseDriver(sqlDB *sql.DB) (database.Driver, error) {
	switch m.driver {
	case "postgres", "postgresql":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: migrationsTable})
	case "sqlite", "sqlite3":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database driver for migration: %s", m.driver)
	}
}

func (m *Migrator) instance() (*migrate.Migrate, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sourceDriver, err := iofs.New(m.fs, m.sourcePath())
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", m.sourcePath(), err)
	}
	dbDriver, err := m.databaseDriver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", sourceDriver, m.driver, dbDriver)
}

// sourcePath selects the driver-specific migration directory. The DDL
// differs per dialect (JSON column types, timestamp precision).
func (m *Migrator) sourcePath() string {
	switch m.driver {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	default:
		return "sqlite"
	}
}

// Up applies all pending migrations. A database already at the latest
// version is not an error.
func (m *Migrator) Up(ctx context.Context) error {
	logger.Infof("Applying schema migrations for driver '%s'.", m.driver)
	inst, err := m.instance()
	if err != nil {
		return exception.NewBatchError(moduleMigration, "failed to initialize migrator", err, false)
	}
	if err := inst.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debugf("Schema already up to date.")
			return nil
		}
		return exception.NewBatchError(moduleMigration, "schema migration failed", err, false)
	}
	logger.Infof("Schema migrations applied.")
	return nil
}

// Down rolls back all migrations. Only used by tooling and tests.
func (m *Migrator) Down(ctx context.Context) error {
	inst, err := m.instance()
	if err != nil {
		return exception.NewBatchError(moduleMigration, "failed to initialize migrator", err, false)
	}
	if err := inst.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return exception.NewBatchError(moduleMigration, "schema rollback failed", err, false)
	}
	return nil
}
