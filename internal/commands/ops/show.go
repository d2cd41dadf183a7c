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
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/commands/completion"
	"github.com/tombee/starfish/internal/commands/shared"
	"github.com/tombee/starfish/pkg/operation"
)

type showOutput struct {
	OperationInfo
	Params  map[string]operation.ParamSpec `json:"params,omitempty"`
	Results map[string]operation.ParamSpec `json:"results,omitempty"`
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "show NAME",
		Short:             "Show an operation's metadata",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteOperationNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			app, err := shared.NewApp(commandContext(cmd), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			op, err := app.Registry.Get(args[0])
			if err != nil {
				return err
			}
			meta := op.Metadata()
			info := describe(op)

			if shared.GetJSON() {
				return shared.WriteJSON(out, showOutput{
					OperationInfo: info,
					Params:        meta.Params,
					Results:       meta.Results,
				})
			}

			fmt.Fprintf(out, "%s\n", info.Name)
			if info.Description != "" {
				fmt.Fprintf(out, "  %s\n", info.Description)
			}
			fmt.Fprintf(out, "  kind:    %s\n", info.Kind)
			fmt.Fprintf(out, "  mode:    %s\n", info.Mode)
			fmt.Fprintf(out, "  engine:  %s\n", info.Engine)
			fmt.Fprintf(out, "  compute: %t\n", info.Compute)
			printSpecs(cmd, "params", meta.Params)
			printSpecs(cmd, "results", meta.Results)
			return nil
		},
	}

	return cmd
}

func printSpecs(cmd *cobra.Command, title string, specs map[string]operation.ParamSpec) {
	if len(specs) == 0 {
		return
	}
	out := cmd.OutOrStdout()

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "  %s:\n", title)
	for _, name := range names {
		spec := specs[name]
		typ := spec.Type
		if typ == "" {
			typ = operation.TypeAny
		}
		if spec.Required {
			fmt.Fprintf(out, "    %s: %s (required)\n", name, typ)
		} else {
			fmt.Fprintf(out, "    %s: %s\n", name, typ)
		}
	}
}
