package config

import (
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go.uber.org/fx"

	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies of NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to an optional .env file.
	EnvFilePath string `name:"envFilePath" optional:"true"`
}

// LoadConfig loads configuration: optional .env file, defaults, embedded
// YAML with environment placeholders expanded. Intended to be called once
// at application startup.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	expander := NewOsEnvironmentExpander()
	expanded, err := expander.Expand(embeddedConfig)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to expand environment placeholders in config", err, false)
	}

	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err, false)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults backfills zero values that yaml.Unmarshal may have cleared
// when the document names a section without all of its keys.
func applyDefaults(cfg *Config) {
	if cfg.Lineup.Orchestrator.PollingIntervalSeconds <= 0 {
		cfg.Lineup.Orchestrator.PollingIntervalSeconds = 60
	}
	if cfg.Lineup.Orchestrator.RequestTimeoutSeconds <= 0 {
		cfg.Lineup.Orchestrator.RequestTimeoutSeconds = 30
	}
	if cfg.Lineup.System.Logging.Level == "" {
		cfg.Lineup.System.Logging.Level = "INFO"
	}
	if cfg.Lineup.System.Timezone == "" {
		cfg.Lineup.System.Timezone = "UTC"
	}
	if cfg.Lineup.Infrastructure.RepositoryDBRef == "" {
		cfg.Lineup.Infrastructure.RepositoryDBRef = "metadata"
	}
	if cfg.Lineup.Database == nil {
		cfg.Lineup.Database = make(map[string]interface{})
	}
	if cfg.Lineup.Export.Storage == "" {
		cfg.Lineup.Export.Storage = "local"
	}
	if cfg.Lineup.Export.BaseDir == "" {
		cfg.Lineup.Export.BaseDir = "./export"
	}
	if cfg.Lineup.Export.Bucket == "" {
		cfg.Lineup.Export.Bucket = "lineup"
	}
}

// NewConfigProvider is the Fx provider that loads *Config and applies the
// configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Lineup.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Lineup.System.Logging.Level)

	return cfg, nil
}
