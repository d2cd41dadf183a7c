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

package shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tombee/starfish/internal/catalog"
	"github.com/tombee/starfish/internal/config"
	"github.com/tombee/starfish/internal/log"
	"github.com/tombee/starfish/internal/worker"
	"github.com/tombee/starfish/pkg/operation"
)

// App bundles what a command needs to serve operations: configuration,
// a logger, a running worker pool and the catalog registry.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pool     *worker.Pool
	Registry *operation.Registry
}

// LoadConfig loads configuration from the --config flag, falling back to
// the XDG config file when it exists.
func LoadConfig() (*config.Config, error) {
	path := GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// NewLogger builds the command logger. Logs go to w; --verbose lowers
// the level to debug.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	lc := cfg.LogConfig()
	lc.Output = w
	if GetVerbose() {
		lc.Level = "debug"
	}
	return log.New(lc)
}

// NewApp loads configuration, starts the worker pool and loads the
// catalog. Callers must Close the app.
func NewApp(ctx context.Context, logOut io.Writer) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, logOut)

	pool, err := worker.New(cfg.WorkerConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := pool.Start(ctx); err != nil {
		return nil, fmt.Errorf("start worker pool: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Pool:   pool,
	}

	reg, err := catalog.LoadRegistry(cfg.Catalog.Paths, app.CatalogOptions())
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Registry = reg

	return app, nil
}

// CatalogOptions returns the options used to build catalog operations.
func (a *App) CatalogOptions() catalog.Options {
	return catalog.Options{
		Executor:  a.Pool,
		Logger:    a.Logger,
		JQTimeout: a.Config.Catalog.JQTimeout,
	}
}

// Close drains the worker pool, waiting at most the configured
// shutdown timeout.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Workers.ShutdownTimeout)
	defer cancel()
	return a.Pool.Stop(ctx)
}
