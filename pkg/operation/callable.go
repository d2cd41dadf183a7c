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

import "context"

// Callable is the host-supplied unit of logic an Operation delegates to.
// It receives the marshalled arguments and returns either a mapping or a
// single value, matching the operation's ResultKind.
//
// Returning an *errors.InvalidParameterError rejects the arguments;
// any other error is reported as a computation failure.
type Callable interface {
	Call(ctx context.Context, args Args) (any, error)
}

// CallableFunc adapts an ordinary function to Callable.
type CallableFunc func(ctx context.Context, args Args) (any, error)

// Call implements Callable.
func (f CallableFunc) Call(ctx context.Context, args Args) (any, error) {
	return f(ctx, args)
}
