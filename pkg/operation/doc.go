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

// Package operation provides named, parameterized units of computation that
// can be invoked synchronously or asynchronously.
//
// An Operation wraps a host-supplied Callable. Callers pass a string-keyed
// Params mapping; the operation validates it against its declared
// Metadata, marshals it into Args (symbolic Keyword keys, values passed
// through untouched) and runs the callable:
//
//	op, err := operation.New(meta, operation.CallableFunc(double),
//	    operation.WithExecutor(pool),
//	)
//
//	res, err := op.Invoke(ctx, operation.Params{"x": 21})      // blocks
//	j := op.InvokeAsync(ctx, operation.Params{"x": 21})        // returns at once
//	res, err = j.Result()
//
// Asynchronous invocations are handed to an Executor (normally the shared
// worker pool) and never run on the caller's goroutine. Once scheduled a
// computation runs to completion: the caller's cancellation is not
// propagated to the callable.
//
// Failures are typed (see pkg/errors): InvalidParameterError for rejected
// parameters, ComputationError for callable failures and panics, and
// UnsupportedOperationError for operations built WithoutCompute when
// Compute is called.
package operation
