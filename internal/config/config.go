// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads starfish settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/starfish/internal/log"
	"github.com/tombee/starfish/internal/worker"
	starfisherrors "github.com/tombee/starfish/pkg/errors"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete starfish configuration.
type Config struct {
	// Workers sizes the background worker pool.
	Workers WorkersConfig `yaml:"workers"`

	// Catalog locates operation definitions.
	Catalog CatalogConfig `yaml:"catalog"`

	// DDO configures the service description document.
	DDO DDOConfig `yaml:"ddo"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// WorkersConfig sizes the worker pool that runs background invocations.
type WorkersConfig struct {
	// Concurrency is the number of worker goroutines.
	Concurrency int `yaml:"concurrency"`

	// QueueSize bounds the number of waiting invocations. Zero means unbounded.
	QueueSize int `yaml:"queue_size"`

	// RateLimit caps invocation starts per second. Zero means unlimited.
	RateLimit float64 `yaml:"rate_limit"`

	// Burst is the number of invocations that may start at once under RateLimit.
	Burst int `yaml:"burst"`

	// ShutdownTimeout bounds how long the pool drains on exit.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CatalogConfig locates operation definition files.
type CatalogConfig struct {
	// Paths are file paths or doublestar glob patterns.
	Paths []string `yaml:"paths"`

	// Watch reloads the catalog when a matching file changes.
	Watch bool `yaml:"watch"`

	// Debounce coalesces bursts of file events.
	Debounce time.Duration `yaml:"debounce"`

	// JQTimeout bounds a single jq program run.
	JQTimeout time.Duration `yaml:"jq_timeout"`
}

// DDOConfig configures the service description document.
type DDOConfig struct {
	// Host is the base URL the document's endpoints are built on.
	Host string `yaml:"host"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// AddSource adds file and line to log entries.
	AddSource bool `yaml:"add_source"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Workers: WorkersConfig{
			Concurrency:     worker.DefaultConfig().Concurrency,
			QueueSize:       1024,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Debounce:  200 * time.Millisecond,
			JQTimeout: 5 * time.Second,
		},
		DDO: DDOConfig{
			Host: "http://localhost:8030",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from configPath (if non-empty), fills in
// defaults, applies environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &starfisherrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &starfisherrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills zero values left by a minimal config file.
func (c *Config) applyDefaults() {
	d := Default()

	if c.Workers.Concurrency == 0 {
		c.Workers.Concurrency = d.Workers.Concurrency
	}
	if c.Workers.ShutdownTimeout == 0 {
		c.Workers.ShutdownTimeout = d.Workers.ShutdownTimeout
	}
	if c.Catalog.Debounce == 0 {
		c.Catalog.Debounce = d.Catalog.Debounce
	}
	if c.Catalog.JQTimeout == 0 {
		c.Catalog.JQTimeout = d.Catalog.JQTimeout
	}
	if c.DDO.Host == "" {
		c.DDO.Host = d.DDO.Host
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv applies environment overrides. Values that do not parse
// are ignored.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("STARFISH_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Workers.Concurrency = n
		}
	}
	if val := os.Getenv("STARFISH_QUEUE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Workers.QueueSize = n
		}
	}
	if val := os.Getenv("STARFISH_RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Workers.RateLimit = f
		}
	}
	if val := os.Getenv("STARFISH_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Workers.ShutdownTimeout = d
		}
	}

	// STARFISH_CATALOG is a path list, separated like PATH.
	if val := os.Getenv("STARFISH_CATALOG"); val != "" {
		c.Catalog.Paths = filepath.SplitList(val)
	}

	if val := os.Getenv("STARFISH_HOST"); val != "" {
		c.DDO.Host = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if err := c.WorkerConfig().Validate(); err != nil {
		errs = append(errs, "workers: "+err.Error())
	}
	if c.Workers.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("workers.shutdown_timeout must be positive, got %v", c.Workers.ShutdownTimeout))
	}

	if c.Catalog.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("catalog.debounce must not be negative, got %v", c.Catalog.Debounce))
	}
	if c.Catalog.JQTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("catalog.jq_timeout must be positive, got %v", c.Catalog.JQTimeout))
	}

	if u, err := url.Parse(c.DDO.Host); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("ddo.host must be an absolute URL, got %q", c.DDO.Host))
	}

	if !log.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}

// WorkerConfig converts the workers section into a worker pool config.
func (c *Config) WorkerConfig() worker.Config {
	return worker.Config{
		Concurrency: c.Workers.Concurrency,
		QueueSize:   c.Workers.QueueSize,
		RateLimit:   c.Workers.RateLimit,
		Burst:       c.Workers.Burst,
	}
}

// LogConfig converts the log section into a logger config writing to
// the default output.
func (c *Config) LogConfig() *log.Config {
	lc := log.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = log.Format(c.Log.Format)
	lc.AddSource = c.Log.AddSource
	return lc
}
