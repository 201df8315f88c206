// Package config provides configuration management for the ingestion worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"procfeed/pkg/utils"
)

// EnvDatabaseDSN overrides storage.dsn when set.
const EnvDatabaseDSN = "PROCFEED_DATABASE_DSN"

// Configuration validation errors.
var (
	ErrSourceMissingName        = errors.New("source name is required")
	ErrSourceMissingURLOrFile   = errors.New("either URL or file path is required")
	ErrSourceInvalidURL         = errors.New("source url must be an absolute http(s) URL")
	ErrDuplicateSourceName      = errors.New("source names must be unique")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidMaxDelay          = errors.New("retry.max_delay_ms cannot be below retry.initial_delay_ms")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidMaxBody           = errors.New("fetch.max_body_kb must be at least 1")
	ErrInvalidWorkers           = errors.New("normalize.workers must be at least 1")
	ErrMissingTenant            = errors.New("storage.tenant_id is required")
	ErrInvalidBatchSize         = errors.New("storage.batch_size must be at least 1")
	ErrInvalidConcurrency       = errors.New("storage.max_concurrent_batches must be at least 1")
	ErrMissingServerAddr        = errors.New("server.addr is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete worker configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Sources   []SourceConfig  `yaml:"sources"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Retry     RetryPolicy     `yaml:"retry"`
}

// SourceConfig represents one procurement open-data feed.
type SourceConfig struct {
	Name            string   `yaml:"name"`
	URL             string   `yaml:"url"`
	File            string   `yaml:"file"`
	BackupURLs      []string `yaml:"backup_urls"`
	PartyIDPrefixes []string `yaml:"party_id_prefixes"`
	Enabled         bool     `yaml:"enabled"`
	StrictDomain    bool     `yaml:"strict_domain"`
}

// IsLocalFile returns true if this source uses a local file.
func (s *SourceConfig) IsLocalFile() bool {
	return s.File != ""
}

// GetSource returns the file path if local, or URL if remote.
func (s *SourceConfig) GetSource() string {
	if s.IsLocalFile() {
		return s.File
	}

	return s.URL
}

// GetAllURLs returns all URLs (primary + backups) for a source.
func (s *SourceConfig) GetAllURLs() []string {
	urls := []string{s.URL}
	urls = append(urls, s.BackupURLs...)

	return urls
}

// FetchConfig defines how source documents are retrieved.
type FetchConfig struct {
	Headers        map[string]string `yaml:"headers"`
	UserAgent      string            `yaml:"user_agent"`
	Accept         string            `yaml:"accept"`
	Referer        string            `yaml:"referer"`
	AllowedDomains []string          `yaml:"allowed_domains"`
	TimeoutSec     int               `yaml:"timeout_sec"`
	MaxBodyKb      int               `yaml:"max_body_kb"`
}

// GetTimeout returns the timeout duration.
func (f *FetchConfig) GetTimeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// MaxBodyBytes returns the response size limit in bytes.
func (f *FetchConfig) MaxBodyBytes() int64 {
	return int64(f.MaxBodyKb) * 1024
}

// RetryPolicy defines caller-level retry behavior around a whole fetch.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// InitialDelay returns the delay before the second attempt.
func (rp *RetryPolicy) InitialDelay() time.Duration {
	return time.Duration(rp.InitialDelayMs) * time.Millisecond
}

// MaxDelay returns the cap on any single delay.
func (rp *RetryPolicy) MaxDelay() time.Duration {
	return time.Duration(rp.MaxDelayMs) * time.Millisecond
}

// NormalizeConfig tunes element processing.
type NormalizeConfig struct {
	PartyIDPrefixes []string `yaml:"party_id_prefixes"`
	Workers         int      `yaml:"workers"`
}

// StorageConfig configures the persistence collaborator.
type StorageConfig struct {
	DSN                  string `yaml:"dsn"`
	TenantID             string `yaml:"tenant_id"`
	BatchSize            int    `yaml:"batch_size"`
	MaxConcurrentBatches int    `yaml:"max_concurrent_batches"`
	AutoMigrate          bool   `yaml:"auto_migrate"`
}

// Enabled reports whether a database is configured.
func (s *StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.DSN) != ""
}

// ServerConfig configures the HTTP trigger.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a valid baseline configuration.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			UserAgent: utils.DefaultUserAgent,
			Accept:    utils.DefaultAccept,
			AllowedDomains: []string{
				"gob.pe",
				"perucompras.gob.pe",
				"seace.gob.pe",
				"oece.gob.pe",
			},
			TimeoutSec: 60,
			MaxBodyKb:  256 * 1024,
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
		},
		Normalize: NormalizeConfig{
			PartyIDPrefixes: []string{"PE-RUC-"},
			Workers:         4,
		},
		Storage: StorageConfig{
			TenantID:             "default",
			BatchSize:            500,
			MaxConcurrentBatches: 4,
			AutoMigrate:          true,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from YAML file on top of Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if dsn := os.Getenv(EnvDatabaseDSN); dsn != "" {
		c.Storage.DSN = dsn
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))

	for i, src := range c.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingName, i)
		}

		if seen[src.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateSourceName, src.Name)
		}

		seen[src.Name] = true

		if src.URL == "" && src.File == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingURLOrFile, i)
		}

		if src.IsLocalFile() {
			continue
		}

		for _, u := range src.GetAllURLs() {
			if !utils.IsValidURL(u) {
				return fmt.Errorf("%w: source %s: %q", ErrSourceInvalidURL, src.Name, u)
			}
		}
	}

	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.MaxDelayMs < c.Retry.InitialDelayMs {
		return ErrInvalidMaxDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Fetch.MaxBodyKb < 1 {
		return ErrInvalidMaxBody
	}

	if c.Normalize.Workers < 1 {
		return ErrInvalidWorkers
	}

	if strings.TrimSpace(c.Storage.TenantID) == "" {
		return ErrMissingTenant
	}

	if c.Storage.BatchSize < 1 {
		return ErrInvalidBatchSize
	}

	if c.Storage.MaxConcurrentBatches < 1 {
		return ErrInvalidConcurrency
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return ErrMissingServerAddr
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// GetSource returns the named source.
func (c *Config) GetSource(name string) (SourceConfig, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}

	return SourceConfig{}, false
}

// PartyIDPrefixesFor returns the source's prefixes, or the global ones.
func (c *Config) PartyIDPrefixesFor(src SourceConfig) []string {
	if len(src.PartyIDPrefixes) > 0 {
		return src.PartyIDPrefixes
	}

	return c.Normalize.PartyIDPrefixes
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, MaxAttempts: %d, Storage: %t}",
		len(c.Sources),
		c.Retry.MaxAttempts,
		c.Storage.Enabled(),
	)
}
