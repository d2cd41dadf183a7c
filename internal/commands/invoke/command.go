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

// Package invoke implements the invoke command.
package invoke

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/commands/completion"
	"github.com/tombee/starfish/internal/commands/shared"
	"github.com/tombee/starfish/internal/log"
	"github.com/tombee/starfish/pkg/job"
	"github.com/tombee/starfish/pkg/operation"
)

// jobOutput is the --json rendering of an asynchronous invocation.
type jobOutput struct {
	JobID  string    `json:"job_id"`
	State  job.State `json:"state"`
	Result any       `json:"result"`
}

// NewCommand creates the invoke command
func NewCommand() *cobra.Command {
	var (
		params     []string
		paramsFile string
		async      bool
		compute    bool
	)

	cmd := &cobra.Command{
		Use:   "invoke NAME",
		Short: "Invoke an operation from the catalog",
		Long: `Invoke an operation by name and print its result as JSON.

Parameter values are read as YAML scalars, so -p x=21 passes the number 21
and -p flag=true a boolean. Quote a value to keep it a string.

Examples:
  # Invoke synchronously
  starfish invoke double -p x=21

  # Submit a background job and wait for it
  starfish invoke double -p x=21 --async

  # Read parameters from a file (use '-' for stdin)
  starfish invoke greet --params-file params.yaml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteOperationNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			if async && compute {
				return shared.NewInvalidParamsError("--async and --compute cannot be combined", nil)
			}
			p, err := parseParams(params, paramsFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(cmd, args[0], p, async, compute)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Operation parameter in key=value format (repeatable)")
	cmd.Flags().StringVar(&paramsFile, "params-file", "", "YAML or JSON file with parameters (use '-' for stdin)")
	cmd.Flags().BoolVar(&async, "async", false, "Run as a background job and wait for it")
	cmd.Flags().BoolVar(&compute, "compute", false, "Run the computation inline, bypassing the operation's mode")

	return cmd
}

func run(cmd *cobra.Command, name string, params operation.Params, async, compute bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := shared.NewApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	op, err := app.Registry.Get(name)
	if err != nil {
		return err
	}

	inv := &log.Invocation{
		Operation: name,
		Async:     async,
		Params:    params,
	}
	logger := log.WithComponent(app.Logger, "invoke")

	if async {
		return runAsync(ctx, cmd, op, inv, logger)
	}

	var result operation.Result
	err = log.NewInvocations(logger).Handle(inv, func() error {
		var err error
		if compute {
			result, err = op.Compute(ctx, params)
		} else {
			result, err = op.Invoke(ctx, params)
		}
		return err
	})
	if err != nil {
		return invocationError(fmt.Sprintf("invoke %s", name), err)
	}

	return shared.WriteJSON(cmd.OutOrStdout(), result.Value())
}

func runAsync(ctx context.Context, cmd *cobra.Command, op *operation.Operation, inv *log.Invocation, logger *slog.Logger) error {
	j := op.InvokeAsync(ctx, inv.Params)
	inv.JobID = j.ID()
	if !shared.GetJSON() {
		cmd.PrintErrf("job %s submitted\n", j.ID())
	}

	var result operation.Result
	err := log.NewInvocations(logger).Handle(inv, func() error {
		var err error
		result, err = j.Wait(ctx)
		return err
	})
	if err != nil {
		return invocationError(fmt.Sprintf("invoke %s (job %s)", inv.Operation, j.ID()), err)
	}

	if shared.GetJSON() {
		return shared.WriteJSON(cmd.OutOrStdout(), jobOutput{
			JobID:  j.ID(),
			State:  j.State(),
			Result: result.Value(),
		})
	}
	return shared.WriteJSON(cmd.OutOrStdout(), result.Value())
}

// invocationError wraps a failed invocation. Parameter and lookup errors
// keep their invalid-parameter exit code; everything else is an execution
// failure.
func invocationError(msg string, err error) error {
	if shared.ExitCode(err) == shared.ExitInvalidParams {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return shared.NewExecutionError(msg, err)
}
