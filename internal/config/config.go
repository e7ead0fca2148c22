// Package config loads the client configuration from a YAML file with sane
// defaults for everything left unset.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tapresto/possync/internal/errors"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the runtime configuration of the sync core.
type Config struct {
	DataDir        string   `yaml:"data_dir"`
	BaseURL        string   `yaml:"base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	DrainInterval  Duration `yaml:"drain_interval"`
	MaxAttempts    int      `yaml:"max_attempts"`
	LogLevel       string   `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:        "./data",
		BaseURL:        "http://localhost:4000/api/v1",
		RequestTimeout: Duration(30 * time.Second),
		DrainInterval:  Duration(time.Minute),
		MaxAttempts:    5,
		LogLevel:       "info",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalid, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalid, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the core cannot run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New(errors.ErrValidation, "data_dir must not be empty")
	}
	if c.BaseURL == "" {
		return errors.New(errors.ErrValidation, "base_url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New(errors.ErrValidation, "request_timeout must be positive")
	}
	if c.DrainInterval <= 0 {
		return errors.New(errors.ErrValidation, "drain_interval must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New(errors.ErrValidation, "max_attempts must be positive")
	}
	return nil
}
