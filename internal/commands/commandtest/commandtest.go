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

// Package commandtest provides fixtures for command tests: an isolated
// environment, a config file and a catalog.
package commandtest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tombee/starfish/internal/commands/shared"
)

// Catalog defines background and inline numeric operations, a jq asset
// and an operation that always fails.
const Catalog = `
operations:
  - name: double
    description: Doubles x
    source: '{"result": x * 2}'
    params:
      x: {type: number, required: true}
    results:
      result: {type: number}
  - name: greet
    description: Greets a name
    kind: asset
    engine: jq
    source: '"hello " + .name'
    params:
      name: {type: string, required: true}
  - name: fail
    description: Returns a scalar where a mapping is required
    source: '"not a mapping"'
  - name: double-inline
    description: Doubles x on the calling goroutine
    mode: inline
    source: '{"result": x * 2}'
    params:
      x: {type: number, required: true}
`

var envKeys = []string{
	"STARFISH_WORKERS", "STARFISH_QUEUE_SIZE", "STARFISH_RATE_LIMIT",
	"STARFISH_SHUTDOWN_TIMEOUT", "STARFISH_CATALOG", "STARFISH_HOST",
	"STARFISH_DEBUG", "STARFISH_LOG_LEVEL",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE",
}

// Setup isolates the environment, writes catalog and a config file that
// points at it, and selects that config through the --config flag. It
// returns the directory holding both files.
func Setup(t *testing.T, catalog string) string {
	t.Helper()

	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	catalogPath := filepath.Join(dir, "ops.yaml")
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	cfg := fmt.Sprintf(`
workers:
  concurrency: 2
  queue_size: 16
  shutdown_timeout: 5s
catalog:
  paths:
    - %q
ddo:
  host: https://agent.example.com
log:
  level: error
  format: json
`, catalogPath)
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	shared.ResetFlagsForTest()
	shared.SetConfigPathForTest(configPath)
	t.Cleanup(shared.ResetFlagsForTest)

	return dir
}
