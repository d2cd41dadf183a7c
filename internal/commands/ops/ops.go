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

// Package ops implements commands that inspect the operation catalog.
package ops

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the ops command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Inspect the operation catalog",
		Long: `Inspect the operations defined by the configured catalog files.

Examples:
  # List all operations
  starfish ops list

  # Show one operation's metadata
  starfish ops show double

  # Reload the catalog whenever its files change
  starfish ops watch`,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newWatchCmd())

	// Default to list if no subcommand specified
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return newListCmd().RunE(cmd, args)
	}

	return cmd
}
