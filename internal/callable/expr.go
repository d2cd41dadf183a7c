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

package callable

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/starfish/pkg/operation"
)

// Expr evaluates a compiled expr-lang program.
type Expr struct {
	source  string
	program *vm.Program
}

var _ operation.Callable = (*Expr)(nil)

// NewExpr compiles source. Parameters the expression names but the
// caller omits evaluate to nil.
func NewExpr(source string) (*Expr, error) {
	if source == "" {
		return nil, errors.New("expression is empty")
	}

	program, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	return &Expr{source: source, program: program}, nil
}

// Source returns the expression text.
func (e *Expr) Source() string { return e.source }

// Call runs the expression with the parameters as its environment.
func (e *Expr) Call(ctx context.Context, args operation.Args) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The environment is a fresh map so expressions cannot leak state
	// between invocations.
	env := operation.UnmarshalArgs(args)

	out, err := expr.Run(e.program, env)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation failed: %w", err)
	}
	return out, nil
}
