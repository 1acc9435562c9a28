package migration

import (
	"embed"
	"io/fs"

	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

//go:embed resource
var rawMigrationFS embed.FS

// ProvideMigrationsFS embeds the schema migration files and exposes the
// contents of the 'resource' directory directly.
func ProvideMigrationsFS() fs.FS {
	subFS, err := fs.Sub(rawMigrationFS, "resource")
	if err != nil {
		// This should not happen if 'resource' exists.
		logger.Fatalf("Failed to create subdirectory for migration FS: %v", err)
	}
	return subFS
}
