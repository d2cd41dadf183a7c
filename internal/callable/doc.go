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

// Package callable adapts expression languages into operation callables.
//
// Two engines are supported:
//
//   - expr: an expr-lang expression evaluated with the parameters as its
//     environment, for example {"result": x * 2}
//   - jq: a jq program run with the parameter mapping as its input, for
//     example {result: (.x * 2)}
//
// Programs are compiled once when the adapter is built. Compile failures
// are returned from the constructor; evaluation failures are returned
// from Call and become computation errors at the operation boundary.
package callable

import (
	"fmt"
	"time"

	"github.com/tombee/starfish/pkg/operation"
)

// Engine names an expression language.
type Engine string

const (
	// EngineExpr selects github.com/expr-lang/expr.
	EngineExpr Engine = "expr"
	// EngineJQ selects github.com/itchyny/gojq.
	EngineJQ Engine = "jq"
)

// Compile builds a callable for source in the given engine. timeout only
// applies to jq programs.
func Compile(engine Engine, source string, timeout time.Duration) (operation.Callable, error) {
	switch engine {
	case EngineExpr, "":
		return NewExpr(source)
	case EngineJQ:
		return NewJQ(source, timeout)
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
