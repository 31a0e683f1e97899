// Package config loads CLI and host settings from an optional YAML file,
// then applies POSTMAN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/postman"
	"github.com/aretw0/postman/internal/logging"
	"github.com/aretw0/postman/internal/runtime"
	"github.com/aretw0/postman/pkg/domain"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "POSTMAN_"

// Config is the full runtime configuration.
type Config struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	Policy  PolicyConfig  `yaml:"policy" envPrefix:"POLICY_"`
	HTTP    HTTPConfig    `yaml:"http" envPrefix:"HTTP_"`
	Redis   RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	Reports ReportsConfig `yaml:"reports" envPrefix:"REPORTS_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// PolicyConfig selects ignorable nodes and refresh boundaries.
type PolicyConfig struct {
	IgnoreKinds    []string `yaml:"ignore_kinds" env:"IGNORE_KINDS" envSeparator:","`
	IgnoreExpr     string   `yaml:"ignore_expr" env:"IGNORE_EXPR"`
	BoundaryKinds  []string `yaml:"boundary_kinds" env:"BOUNDARY_KINDS" envSeparator:","`
	BoundaryExpr   string   `yaml:"boundary_expr" env:"BOUNDARY_EXPR"`
	IgnoreBehavior string   `yaml:"ignore_policy" env:"IGNORE"`
}

// HTTPConfig configures the demo host.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// RedisConfig enables the redis report store when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// ReportsConfig enables the on-disk report store when Dir is set and redis is not.
type ReportsConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
		HTTP:      HTTPConfig{Addr: ":8080"},
		Metrics:   MetricsConfig{Enabled: true},
	}
}

// Load reads path (if not empty) over Default, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch logging.Format(c.LogFormat) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := runtime.ParseIgnorePolicy(c.Policy.IgnoreBehavior); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger builds the logger described by the configuration.
func (c Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.NewWithWriter(os.Stderr, level, logging.Format(c.LogFormat))
}

// EngineOptions translates the policy section into engine options.
func (c Config) EngineOptions() ([]postman.Option, error) {
	var opts []postman.Option

	if len(c.Policy.IgnoreKinds) > 0 {
		opts = append(opts, postman.WithIgnoreKinds(kinds(c.Policy.IgnoreKinds)...))
	}
	if c.Policy.IgnoreExpr != "" {
		opts = append(opts, postman.WithIgnoreExpr(c.Policy.IgnoreExpr))
	}
	if len(c.Policy.BoundaryKinds) > 0 {
		opts = append(opts, postman.WithBoundaryKinds(kinds(c.Policy.BoundaryKinds)...))
	}
	if c.Policy.BoundaryExpr != "" {
		opts = append(opts, postman.WithBoundaryExpr(c.Policy.BoundaryExpr))
	}

	ip, err := runtime.ParseIgnorePolicy(c.Policy.IgnoreBehavior)
	if err != nil {
		return nil, err
	}
	opts = append(opts, postman.WithIgnorePolicy(ip))
	return opts, nil
}

func kinds(names []string) []domain.Kind {
	out := make([]domain.Kind, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, domain.Kind(n))
		}
	}
	return out
}
