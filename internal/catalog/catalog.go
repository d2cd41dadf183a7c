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

// Package catalog loads operation definitions from YAML files.
//
// A catalog file lists operations whose computation is written in one of
// the expression engines supported by package callable:
//
//	operations:
//	  - name: double
//	    description: Doubles x
//	    engine: expr
//	    source: '{"result": x * 2}'
//	    params:
//	      x: {type: number, required: true}
//
// Files are located with doublestar glob patterns and may be watched for
// changes, in which case the registry is swapped atomically on reload.
package catalog

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/starfish/internal/callable"
	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/operation"
)

// File is the top-level structure of a catalog file.
type File struct {
	Operations []Definition `yaml:"operations"`
}

// Definition declares one operation.
type Definition struct {
	Name        string                         `yaml:"name"`
	Description string                         `yaml:"description,omitempty"`
	Kind        string                         `yaml:"kind,omitempty"`
	Mode        string                         `yaml:"mode,omitempty"`
	Compute     *bool                          `yaml:"compute,omitempty"`
	Engine      string                         `yaml:"engine,omitempty"`
	Source      string                         `yaml:"source"`
	Params      map[string]operation.ParamSpec `yaml:"params,omitempty"`
	Results     map[string]operation.ParamSpec `yaml:"results,omitempty"`

	// file is the path the definition was read from.
	file string
}

// Options controls how definitions become operations.
type Options struct {
	// Executor runs background invocations. Nil runs each on its own goroutine.
	Executor operation.Executor

	// Logger is handed to every operation.
	Logger *slog.Logger

	// JQTimeout bounds jq programs.
	JQTimeout time.Duration

	// OperationOptions are appended to the options derived from each
	// definition, for example tracer and meter providers.
	OperationOptions []operation.Option
}

// Parse decodes a catalog document. name identifies the document in
// error messages.
func Parse(data []byte, name string) ([]Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &starfisherrors.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("invalid catalog YAML: %v", err),
		}
	}
	for i := range f.Operations {
		f.Operations[i].file = name
	}
	return f.Operations, nil
}

// Metadata returns the operation metadata the definition declares.
func (d Definition) Metadata() operation.Metadata {
	engine := d.Engine
	if engine == "" {
		engine = string(callable.EngineExpr)
	}
	return operation.Metadata{
		Name:        d.Name,
		Description: d.Description,
		Type:        engine,
		Params:      d.Params,
		Results:     d.Results,
	}
}

// Build compiles the definition into an operation.
func (d Definition) Build(opts Options) (*operation.Operation, error) {
	kind, err := operation.ParseResultKind(d.Kind)
	if err != nil {
		return nil, d.invalid("kind", err)
	}
	mode, err := operation.ParseMode(d.Mode)
	if err != nil {
		return nil, d.invalid("mode", err)
	}

	fn, err := callable.Compile(callable.Engine(d.Engine), d.Source, opts.JQTimeout)
	if err != nil {
		return nil, d.invalid("source", err)
	}

	opOpts := []operation.Option{
		operation.WithResultKind(kind),
		operation.WithMode(mode),
	}
	if opts.Executor != nil {
		opOpts = append(opOpts, operation.WithExecutor(opts.Executor))
	}
	if opts.Logger != nil {
		opOpts = append(opOpts, operation.WithLogger(opts.Logger))
	}
	if d.Compute != nil && !*d.Compute {
		opOpts = append(opOpts, operation.WithoutCompute())
	}
	opOpts = append(opOpts, opts.OperationOptions...)

	op, err := operation.New(d.Metadata(), fn, opOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.location(), err)
	}
	return op, nil
}

func (d Definition) invalid(field string, err error) error {
	return &starfisherrors.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s: %v", d.location(), err),
	}
}

func (d Definition) location() string {
	name := d.Name
	if name == "" {
		name = "<unnamed>"
	}
	if d.file == "" {
		return "operation " + name
	}
	return fmt.Sprintf("%s: operation %s", d.file, name)
}
