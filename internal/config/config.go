// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Enhancer      EnhancerConfig      `yaml:"enhancer"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// ScoringConfig defines market estimation and rescore parameters.
type ScoringConfig struct {
	MarketQueryTimeout time.Duration `yaml:"market_query_timeout"`
	RescoreWorkers     int           `yaml:"rescore_workers"`
	RescoreBatchLimit  int           `yaml:"rescore_batch_limit"`
}

// EnhancerConfig defines the optional demand enhancement backend.
type EnhancerConfig struct {
	Backend        string        `yaml:"backend"` // none, openai_compat
	Endpoint       string        `yaml:"endpoint"`
	Model          string        `yaml:"model"`
	CallsPerMinute int           `yaml:"calls_per_minute"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ScheduleConfig defines cron intervals and specs.
type ScheduleConfig struct {
	RescoreInterval time.Duration `yaml:"rescore_interval"`
	DealOfTheDay    string        `yaml:"deal_of_the_day"` // cron spec
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// TracingConfig defines OTLP trace export settings.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // OTLP gRPC, e.g. localhost:4317
	Service  string `yaml:"service"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment
// variable substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyScoringDefaults(&cfg.Scoring)
	applyEnhancerDefaults(&cfg.Enhancer)
	applyScheduleDefaults(&cfg.Schedule)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyScoringDefaults(s *ScoringConfig) {
	if s.MarketQueryTimeout == 0 {
		s.MarketQueryTimeout = 5 * time.Second
	}
	if s.RescoreWorkers == 0 {
		s.RescoreWorkers = 4
	}
	if s.RescoreBatchLimit == 0 {
		s.RescoreBatchLimit = 500
	}
}

func applyEnhancerDefaults(e *EnhancerConfig) {
	if e.Backend == "" {
		e.Backend = "none"
	}
	if e.CallsPerMinute == 0 {
		e.CallsPerMinute = 60
	}
	if e.Timeout == 0 {
		e.Timeout = 30 * time.Second
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RescoreInterval == 0 {
		s.RescoreInterval = 6 * time.Hour
	}
	if s.DealOfTheDay == "" {
		s.DealOfTheDay = "0 9 * * *"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.Service == "" {
		t.Service = "deal-engine"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	switch cfg.Enhancer.Backend {
	case "none":
	case "openai_compat":
		if cfg.Enhancer.Endpoint == "" {
			errs = append(errs, fmt.Errorf(
				"enhancer.endpoint is required when backend is openai_compat"))
		}
		if cfg.Enhancer.Model == "" {
			errs = append(errs, fmt.Errorf(
				"enhancer.model is required when backend is openai_compat"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"enhancer.backend %q is not recognized", cfg.Enhancer.Backend))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.discord.webhook_url is required when discord is enabled"))
	}

	return errors.Join(errs...)
}
