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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tombee/starfish/internal/cli"
	"github.com/tombee/starfish/internal/commands/completion"
	configcmd "github.com/tombee/starfish/internal/commands/config"
	"github.com/tombee/starfish/internal/commands/ddo"
	"github.com/tombee/starfish/internal/commands/invoke"
	"github.com/tombee/starfish/internal/commands/ops"
	versioncmd "github.com/tombee/starfish/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version information from build-time ldflags
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(invoke.NewCommand())
	rootCmd.AddCommand(ops.NewCommand())
	rootCmd.AddCommand(ddo.NewCommand())
	rootCmd.AddCommand(configcmd.NewConfigCommand())
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Interrupts cancel in-flight waits; the worker pool still drains.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		cli.HandleExitError(err)
	}
}
