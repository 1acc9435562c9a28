// Package config provides structures and utilities for loading the
// orchestration engine's configuration from YAML and environment variables.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// EmbeddedConfig holds the raw content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// OrchestratorConfig holds the settings of the orchestration engine itself.
type OrchestratorConfig struct {
	// APIEndpoint is the base URL of the external processing service.
	APIEndpoint string `yaml:"api_endpoint"`
	// APIKey is passed through to the external processing service.
	APIKey string `yaml:"api_key"`
	// PollingIntervalSeconds is the interval of the externally scheduled
	// polling loop.
	PollingIntervalSeconds int `yaml:"polling_interval_seconds"`
	// RequestTimeoutSeconds bounds each submit/poll call to the external
	// service.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
	// MaskedDocumentKeys lists document keys whose values are masked in log
	// output.
	MaskedDocumentKeys []string `yaml:"masked_document_keys"`
}

// InfrastructureConfig holds logical dependency settings for infrastructure
// components.
type InfrastructureConfig struct {
	// RepositoryDBRef is the name of the database connection used by the
	// orchestration repository (a key of the database map).
	RepositoryDBRef string `yaml:"repository_db_ref"`
}

// ChainRuleConfig is one row of the static step-chain table: the workflow
// stage (identified by batch type), the terminal batch statuses that
// trigger advancement and the successor unit of work.
type ChainRuleConfig struct {
	Stage     string   `yaml:"stage"`
	AdvanceOn []string `yaml:"advance_on"`
	Next      string   `yaml:"next"`
}

// ExportConfig holds settings for the parquet audit-trail export.
type ExportConfig struct {
	// Enabled turns the exporter on.
	Enabled bool `yaml:"enabled"`
	// Storage selects the backend: "local" or "gcs".
	Storage string `yaml:"storage"`
	// Bucket is the GCS bucket (or the logical bucket directory for local
	// storage).
	Bucket string `yaml:"bucket"`
	// BaseDir is the local storage root directory.
	BaseDir string `yaml:"base_dir"`
	// Prefix is prepended to every exported object name.
	Prefix string `yaml:"prefix"`
	// CredentialsFile optionally points at a GCS service account key file.
	CredentialsFile string `yaml:"credentials_file"`
}

// DatabaseConfig holds the settings of one named database connection. The
// database map is declared loosely in YAML and bound here per connection.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// LineupConfig holds all configuration under the "lineup" top-level key.
type LineupConfig struct {
	Orchestrator   OrchestratorConfig     `yaml:"orchestrator"`
	System         SystemConfig           `yaml:"system"`
	Infrastructure InfrastructureConfig   `yaml:"infrastructure"`
	Database       map[string]interface{} `yaml:"database"`
	Chain          []ChainRuleConfig      `yaml:"chain"`
	Export         ExportConfig           `yaml:"export"`
}

// Config is the root structure of the application configuration.
type Config struct {
	Lineup LineupConfig `yaml:"lineup"`
}

// NewConfig creates a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Lineup: LineupConfig{
			Orchestrator: OrchestratorConfig{
				PollingIntervalSeconds: 60,
				RequestTimeoutSeconds:  30,
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Infrastructure: InfrastructureConfig{
				RepositoryDBRef: "metadata",
			},
			Database: make(map[string]interface{}),
		},
	}
}

// DatabaseConfig binds the named entry of the database map onto a
// DatabaseConfig struct.
func (c *LineupConfig) DatabaseConfig(name string) (DatabaseConfig, error) {
	raw, ok := c.Database[name]
	if !ok {
		return DatabaseConfig{}, fmt.Errorf("database connection '%s' is not configured", name)
	}

	var dbCfg DatabaseConfig
	if err := mapstructure.Decode(raw, &dbCfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("failed to bind database connection '%s': %w", name, err)
	}
	if dbCfg.Driver == "" {
		return DatabaseConfig{}, fmt.Errorf("database connection '%s' has no driver", name)
	}
	return dbCfg, nil
}
