// Package config loads the bootstrap configuration of locator-based programs
// from YAML or TOML files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LOCATOR"

// Static errors for the config package
var (
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	ErrInvalidConfig     = errors.New("invalid config")
)

// Config is the bootstrap configuration.
type Config struct {
	// EventSource is the CloudEvents source of registry events.
	EventSource string `yaml:"event_source" toml:"event_source" env:"EVENT_SOURCE"`

	Toggle  ToggleConfig  `yaml:"toggle" toml:"toggle"`
	HTTP    HTTPConfig    `yaml:"http" toml:"http"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// ToggleConfig configures the sample toggle service.
type ToggleConfig struct {
	// ServiceName registers the toggle service under an explicit name; empty
	// uses the type-derived key.
	ServiceName string `yaml:"service_name" toml:"service_name" env:"TOGGLE_SERVICE_NAME"`
	Initial     bool   `yaml:"initial" toml:"initial" env:"TOGGLE_INITIAL"`
}

// HTTPConfig configures the diagnostics server.
type HTTPConfig struct {
	Addr string `yaml:"addr" toml:"addr" env:"HTTP_ADDR"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"LOG_FORMAT"`
}

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled" env:"METRICS_ENABLED"`
	Namespace string `yaml:"namespace" toml:"namespace" env:"METRICS_NAMESPACE"`
}

// Default returns the configuration used when no file or variable overrides
// a field.
func Default() *Config {
	return &Config{
		EventSource: "locator",
		Toggle: ToggleConfig{
			Initial: true,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "locator",
		},
	}
}

// Load builds a Config from defaults, then the file at path (if path is not
// empty), then LOCATOR_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := NewEnvFeeder(EnvPrefix).Feed(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Validate checks that required fields are set and enumerations are known.
func (c *Config) Validate() error {
	var errs []error

	if c.EventSource == "" {
		errs = append(errs, errors.New("event_source is required"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errs = append(errs, errors.New("metrics.namespace is required when metrics are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
