package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "embed"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/fx"

	storage "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage"
	_ "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage/gcs"
	_ "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage/local"
	service "github.com/tigerroll/lineup/pkg/orchestration/core/application/service"
	usecase "github.com/tigerroll/lineup/pkg/orchestration/core/application/usecase"
	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	transform "github.com/tigerroll/lineup/pkg/orchestration/core/transform"
	export "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/export"
	infraMetrics "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/metrics"
	migration "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/migration"
	notification "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/notification"
	remote "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/remote"
	memoryRepo "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/repository/memory"
	sqlRepo "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/repository/sql"
	workflow "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/workflow"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// embeddedConfig embeds the content of the application's YAML configuration
// file, loaded at startup.
//
//go:embed resources/config.yaml
var embeddedConfig []byte

// repositoryOptions selects the persistence backend. The SQL repository
// (with startup migrations) is the default; setting LINEUP_REPOSITORY=memory
// runs against the in-memory store, useful for local smoke runs.
func repositoryOptions() fx.Option {
	if os.Getenv("LINEUP_REPOSITORY") == "memory" {
		logger.Infof("Repository backend 'memory' selected.")
		return memoryRepo.Module
	}
	return fx.Options(sqlRepo.Module, migration.Module)
}

// main is the entry point of the orchestration poller. It manages signal
// handling and runs the Fx container until cancelled.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the poller...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app := fx.New(
		fx.Supply(
			config.EmbeddedConfig(embeddedConfig),
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				ctx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		config.Module,
		infraMetrics.Module,

		repositoryOptions(),
		transform.Module,
		usecase.Module,
		remote.Module,

		storage.Module,
		export.Module,
		notification.Module,
		workflow.Module,

		service.Module,
	)

	app.Run()

	if err := app.Err(); err != nil {
		logger.Fatalf("Application run failed: %v", err)
	}
}
