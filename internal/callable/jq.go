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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"

	"github.com/tombee/starfish/pkg/operation"
)

// DefaultTimeout bounds a jq run when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// JQ runs a compiled jq program.
type JQ struct {
	source  string
	code    *gojq.Code
	timeout time.Duration
}

var _ operation.Callable = (*JQ)(nil)

// NewJQ parses and compiles source. A zero timeout selects DefaultTimeout.
func NewJQ(source string, timeout time.Duration) (*JQ, error) {
	if source == "" {
		return nil, errors.New("jq program is empty")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	query, err := gojq.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	return &JQ{source: source, code: code, timeout: timeout}, nil
}

// Source returns the program text.
func (j *JQ) Source() string { return j.source }

// Call runs the program with the parameter mapping as input. A single
// output is returned as is; several outputs are returned as a list; no
// output yields nil.
func (j *JQ) Call(ctx context.Context, args operation.Args) (any, error) {
	input, err := normalize(operation.UnmarshalArgs(args))
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		iter := j.code.RunWithContext(runCtx, input)

		var results []any
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				done <- outcome{err: err}
				return
			}
			results = append(results, v)
		}

		switch len(results) {
		case 0:
			done <- outcome{}
		case 1:
			done <- outcome{value: results[0]}
		default:
			done <- outcome{value: results}
		}
	}()

	select {
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("execution timeout after %v", j.timeout)
		}
		return out.value, out.err
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("execution timeout after %v", j.timeout)
	}
}

// normalize converts params into the plain JSON types gojq accepts.
func normalize(params operation.Params) (map[string]any, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize parameters: %w", err)
	}
	return out, nil
}
