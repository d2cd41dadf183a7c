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

// Package ddo implements the ddo command.
package ddo

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/commands/shared"
	"github.com/tombee/starfish/pkg/ddo"
)

// NewCommand creates the ddo command
func NewCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ddo [HOST]",
		Short: "Print the service description document",
		Long: `Print the document advertising the agent's service endpoints.

HOST defaults to ddo.host from the config (env: STARFISH_HOST).

Examples:
  starfish ddo
  starfish ddo https://agent.example.com --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if shared.GetJSON() {
				format = "json"
			}
			if format != "json" && format != "yaml" {
				return shared.NewInvalidParamsError(fmt.Sprintf("unknown format %q (expected json or yaml)", format), nil)
			}

			var host string
			if len(args) == 1 {
				host = args[0]
				if err := validateHost(host); err != nil {
					return err
				}
			} else {
				cfg, err := shared.LoadConfig()
				if err != nil {
					return err
				}
				host = cfg.DDO.Host
			}

			doc := ddo.Build(host)
			var (
				out []byte
				err error
			)
			if format == "yaml" {
				out, err = doc.YAML()
			} else {
				out, err = doc.JSON()
				out = append(out, '\n')
			}
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")

	return cmd
}

func validateHost(host string) error {
	u, err := url.Parse(host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return shared.NewInvalidParamsError(fmt.Sprintf("invalid host %q (expected an absolute URL such as https://agent.example.com)", host), err)
	}
	return nil
}
