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

package invoke

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/operation"
)

// loadParamsFile reads a YAML or JSON mapping from path. "-" reads stdin.
func loadParamsFile(path string, stdin io.Reader) (operation.Params, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	var params operation.Params
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, &starfisherrors.ValidationError{
			Field:      "params-file",
			Message:    fmt.Sprintf("invalid params document: %v", err),
			Suggestion: "Provide a YAML or JSON mapping of parameter names to values",
		}
	}
	if params == nil {
		params = operation.Params{}
	}
	return params, nil
}

// parseParams merges key=value arguments over the params file, if any.
// Values are decoded as YAML scalars, so 21 is a number and true a
// boolean; anything that does not decode is kept as a string.
func parseParams(args []string, paramsFile string, stdin io.Reader) (operation.Params, error) {
	params := operation.Params{}
	if paramsFile != "" {
		var err error
		params, err = loadParamsFile(paramsFile, stdin)
		if err != nil {
			return nil, err
		}
	}

	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, &starfisherrors.ValidationError{
				Field:      "param",
				Message:    fmt.Sprintf("invalid parameter %q (expected key=value)", arg),
				Suggestion: "Pass parameters as -p name=value",
			}
		}
		params[key] = parseValue(raw)
	}

	return params, nil
}

func parseValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	return v
}
