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

package ops

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/commands/shared"
	"github.com/tombee/starfish/pkg/operation"
)

// OperationInfo describes an operation for display
type OperationInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Mode        string `json:"mode"`
	Engine      string `json:"engine"`
	Compute     bool   `json:"compute"`
	Description string `json:"description,omitempty"`
}

func describe(op *operation.Operation) OperationInfo {
	meta := op.Metadata()
	return OperationInfo{
		Name:        op.Name(),
		Kind:        string(op.Kind()),
		Mode:        string(op.Mode()),
		Engine:      meta.Type,
		Compute:     op.SupportsCompute(),
		Description: meta.Description,
	}
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog operations",
		Long:  "Display every operation in the catalog with its result kind, mode and engine.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			app, err := shared.NewApp(commandContext(cmd), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			names := app.Registry.List()
			infos := make([]OperationInfo, 0, len(names))
			for _, name := range names {
				op, err := app.Registry.Get(name)
				if err != nil {
					// Removed by a concurrent reload.
					continue
				}
				infos = append(infos, describe(op))
			}

			if shared.GetJSON() {
				return shared.WriteJSON(out, map[string][]OperationInfo{"operations": infos})
			}

			if len(infos) == 0 {
				fmt.Fprintln(out, "No operations defined.")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Add catalog files under catalog.paths in the config, or set STARFISH_CATALOG.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tMODE\tENGINE\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.Name, info.Kind, info.Mode, info.Engine, info.Description)
			}
			return w.Flush()
		},
	}

	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
