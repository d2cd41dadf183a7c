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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
)

// clearEnv blanks every variable Load reads so the host environment does
// not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STARFISH_WORKERS", "STARFISH_QUEUE_SIZE", "STARFISH_RATE_LIMIT",
		"STARFISH_SHUTDOWN_TIMEOUT", "STARFISH_CATALOG", "STARFISH_HOST",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Workers.Concurrency < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.Workers.Concurrency)
	}
	if cfg.Workers.QueueSize != 1024 {
		t.Errorf("expected queue size 1024, got %d", cfg.Workers.QueueSize)
	}
	if cfg.Workers.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %v", cfg.Workers.ShutdownTimeout)
	}
	if cfg.Catalog.JQTimeout != 5*time.Second {
		t.Errorf("expected jq timeout 5s, got %v", cfg.Catalog.JQTimeout)
	}
	if cfg.DDO.Host != "http://localhost:8030" {
		t.Errorf("expected default host, got %q", cfg.DDO.Host)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
workers:
  concurrency: 3
  queue_size: 10
  rate_limit: 2.5
  burst: 4
  shutdown_timeout: 30s
catalog:
  paths:
    - ops/*.yaml
  watch: true
ddo:
  host: https://ocean.example.com/
log:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers.Concurrency != 3 || cfg.Workers.QueueSize != 10 || cfg.Workers.Burst != 4 {
		t.Errorf("unexpected workers: %+v", cfg.Workers)
	}
	if cfg.Workers.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5, got %v", cfg.Workers.RateLimit)
	}
	if cfg.Workers.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected shutdown timeout 30s, got %v", cfg.Workers.ShutdownTimeout)
	}
	if len(cfg.Catalog.Paths) != 1 || cfg.Catalog.Paths[0] != "ops/*.yaml" || !cfg.Catalog.Watch {
		t.Errorf("unexpected catalog: %+v", cfg.Catalog)
	}
	if cfg.Catalog.Debounce != 200*time.Millisecond {
		t.Errorf("expected default debounce to be applied, got %v", cfg.Catalog.Debounce)
	}
	if cfg.DDO.Host != "https://ocean.example.com/" {
		t.Errorf("unexpected host %q", cfg.DDO.Host)
	}

	wc := cfg.WorkerConfig()
	if wc.Concurrency != 3 || wc.QueueSize != 10 || wc.RateLimit != 2.5 || wc.Burst != 4 {
		t.Errorf("WorkerConfig() = %+v", wc)
	}
	lc := cfg.LogConfig()
	if lc.Level != "debug" || lc.Format != "text" {
		t.Errorf("LogConfig() = %+v", lc)
	}
}

func TestLoad_MinimalFileGetsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers.Concurrency < 1 || cfg.Workers.ShutdownTimeout == 0 || cfg.Log.Format != "json" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STARFISH_WORKERS", "7")
	t.Setenv("STARFISH_QUEUE_SIZE", "0")
	t.Setenv("STARFISH_RATE_LIMIT", "15")
	t.Setenv("STARFISH_SHUTDOWN_TIMEOUT", "1m")
	t.Setenv("STARFISH_CATALOG", strings.Join([]string{"a.yaml", "b/**/*.yaml"}, string(os.PathListSeparator)))
	t.Setenv("STARFISH_HOST", "https://env.example.com")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_SOURCE", "true")

	cfg, err := Load(writeConfig(t, "workers:\n  concurrency: 2\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers.Concurrency != 7 {
		t.Errorf("env should override file: concurrency = %d", cfg.Workers.Concurrency)
	}
	if cfg.Workers.QueueSize != 0 || cfg.Workers.RateLimit != 15 || cfg.Workers.ShutdownTimeout != time.Minute {
		t.Errorf("unexpected workers: %+v", cfg.Workers)
	}
	if len(cfg.Catalog.Paths) != 2 || cfg.Catalog.Paths[1] != "b/**/*.yaml" {
		t.Errorf("unexpected catalog paths: %v", cfg.Catalog.Paths)
	}
	if cfg.DDO.Host != "https://env.example.com" {
		t.Errorf("unexpected host %q", cfg.DDO.Host)
	}
	if cfg.Log.Level != "error" || !cfg.Log.AddSource {
		t.Errorf("unexpected log: %+v", cfg.Log)
	}
}

func TestLoad_IgnoresUnparsableEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STARFISH_WORKERS", "many")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers.Concurrency != Default().Workers.Concurrency {
		t.Errorf("unparsable env should be ignored, got %d", cfg.Workers.Concurrency)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		path    string
		wantKey string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.yaml"), "config_file"},
		{"bad yaml", writeConfig(t, "workers: [1, 2"), "config_file"},
		{"invalid values", writeConfig(t, "workers:\n  queue_size: -5\n"), "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			var cerr *starfisherrors.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cerr.Key, tt.wantKey)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errText string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Workers.Concurrency = 0 },
			wantErr: true,
			errText: "workers:",
		},
		{
			name:    "negative rate limit",
			modify:  func(c *Config) { c.Workers.RateLimit = -1 },
			wantErr: true,
			errText: "rate_limit",
		},
		{
			name:    "zero shutdown timeout",
			modify:  func(c *Config) { c.Workers.ShutdownTimeout = 0 },
			wantErr: true,
			errText: "workers.shutdown_timeout",
		},
		{
			name:    "zero jq timeout",
			modify:  func(c *Config) { c.Catalog.JQTimeout = 0 },
			wantErr: true,
			errText: "catalog.jq_timeout",
		},
		{
			name:    "relative host",
			modify:  func(c *Config) { c.DDO.Host = "localhost:8030/path" },
			wantErr: true,
			errText: "ddo.host",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errText: "log.level",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errText: "log.format",
		},
		{
			name:   "trace level",
			modify: func(c *Config) { c.Log.Level = "trace" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error to contain %q, got %q", tt.errText, err.Error())
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if want := filepath.Join(dir, "starfish", "config.yaml"); path != want {
		t.Errorf("ConfigPath() = %q, want %q", path, want)
	}

	if got := DefaultPath(); got != "" {
		t.Errorf("DefaultPath() = %q, want empty when the file is absent", got)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := DefaultPath(); got != path {
		t.Errorf("DefaultPath() = %q, want %q", got, path)
	}
}
