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

package operation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/job"
)

// Registry holds the operations available to callers, keyed by name.
type Registry struct {
	mu         sync.RWMutex
	operations map[string]*Operation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		operations: make(map[string]*Operation),
	}
}

// Register adds op. Names must be unique.
func (r *Registry) Register(op *Operation) error {
	if op == nil {
		return &starfisherrors.ValidationError{Field: "operation", Message: "cannot register a nil operation"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.operations[op.Name()]; exists {
		return &starfisherrors.ValidationError{
			Field:      "name",
			Message:    fmt.Sprintf("operation %q is already registered", op.Name()),
			Suggestion: "Give each operation a unique name",
		}
	}
	r.operations[op.Name()] = op
	return nil
}

// Replace atomically swaps the registry contents for ops. Either every
// operation is installed or, on a duplicate name, none is.
func (r *Registry) Replace(ops []*Operation) error {
	next := make(map[string]*Operation, len(ops))
	for _, op := range ops {
		if op == nil {
			return &starfisherrors.ValidationError{Field: "operation", Message: "cannot register a nil operation"}
		}
		if _, exists := next[op.Name()]; exists {
			return &starfisherrors.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("operation %q is defined more than once", op.Name()),
			}
		}
		next[op.Name()] = op
	}

	r.mu.Lock()
	r.operations = next
	r.mu.Unlock()
	return nil
}

// Get returns the operation registered under name.
func (r *Registry) Get(name string) (*Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, exists := r.operations[name]
	if !exists {
		return nil, &starfisherrors.NotFoundError{Resource: "operation", ID: name}
	}
	return op, nil
}

// List returns the registered operation names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.operations))
	for name := range r.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.operations)
}

// Invoke looks up name and invokes it synchronously.
func (r *Registry) Invoke(ctx context.Context, name string, params Params) (Result, error) {
	op, err := r.Get(name)
	if err != nil {
		return Result{}, err
	}
	return op.Invoke(ctx, params)
}

// InvokeAsync looks up name and invokes it asynchronously. An unknown name
// yields a failed job.
func (r *Registry) InvokeAsync(ctx context.Context, name string, params Params) *job.Job[Result] {
	op, err := r.Get(name)
	if err != nil {
		return job.Failed[Result](err)
	}
	return op.InvokeAsync(ctx, params)
}
