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
	"errors"
	"fmt"
	"log/slog"
	"time"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/job"
)

// Executor runs tasks in the background. Submit must not run task on the
// calling goroutine and must not block waiting for capacity; it returns an
// error if the task cannot be accepted.
type Executor interface {
	Submit(ctx context.Context, task func(ctx context.Context)) error
}

// AbandonNotifier is implemented by executors that can drop accepted
// tasks, for example on shutdown. abandon is called instead of task, with
// the reason, for every accepted task that will never run.
type AbandonNotifier interface {
	SubmitAbandonable(ctx context.Context, task func(ctx context.Context), abandon func(err error)) error
}

// Operation is an immutable, named computation. It is safe for concurrent
// use; every invocation gets its own arguments and its own Job.
type Operation struct {
	meta      Metadata
	fn        Callable
	kind      ResultKind
	mode      Mode
	executor  Executor
	noCompute bool
	logger    *slog.Logger
	inst      *instruments
}

// New creates an operation wrapping fn.
func New(meta Metadata, fn Callable, opts ...Option) (*Operation, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if f, ok := fn.(CallableFunc); fn == nil || (ok && f == nil) {
		return nil, &starfisherrors.ValidationError{
			Field:   "callable",
			Message: fmt.Sprintf("operation %s has no callable", meta.Name),
		}
	}

	o := options{kind: KindMap, mode: ModeBackground}
	for _, opt := range opts {
		opt(&o)
	}
	if o.kind != KindMap && o.kind != KindAsset {
		return nil, &starfisherrors.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown result kind %q", o.kind)}
	}
	if o.mode != ModeInline && o.mode != ModeBackground {
		return nil, &starfisherrors.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown execution mode %q", o.mode)}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	inst, err := newInstruments(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("operation %s: create instruments: %w", meta.Name, err)
	}

	return &Operation{
		meta:      meta.clone(),
		fn:        fn,
		kind:      o.kind,
		mode:      o.mode,
		executor:  o.executor,
		noCompute: o.noCompute,
		logger:    o.logger.With(slog.String("operation", meta.Name)),
		inst:      inst,
	}, nil
}

// Name returns the operation's name.
func (op *Operation) Name() string { return op.meta.Name }

// Metadata returns a copy of the operation's metadata.
func (op *Operation) Metadata() Metadata { return op.meta.clone() }

// Kind returns the declared result kind.
func (op *Operation) Kind() ResultKind { return op.kind }

// Mode returns the execution mode used by Invoke.
func (op *Operation) Mode() Mode { return op.mode }

// SupportsCompute reports whether Compute is implemented.
func (op *Operation) SupportsCompute() bool { return !op.noCompute }

// Invoke runs the operation and blocks until the result is ready.
//
// In ModeBackground the computation runs on the executor and ctx only
// bounds how long the caller waits.
func (op *Operation) Invoke(ctx context.Context, params Params) (Result, error) {
	if op.mode == ModeBackground {
		return op.InvokeAsync(ctx, params).Wait(ctx)
	}
	args, err := op.prepare(params)
	if err != nil {
		return Result{}, err
	}
	return op.run(ctx, ModeInline, args)
}

// InvokeAsync validates and marshals params, schedules the computation and
// returns its Job without waiting. Parameter errors and scheduling
// failures are reported through the Job.
func (op *Operation) InvokeAsync(ctx context.Context, params Params) *job.Job[Result] {
	j := job.New[Result]()

	args, err := op.prepare(params)
	if err != nil {
		j.Fail(err)
		return j
	}

	runCtx := context.WithoutCancel(ctx)
	task := func(context.Context) {
		res, err := op.run(runCtx, ModeBackground, args)
		if err != nil {
			j.Fail(err)
			return
		}
		j.Complete(res)
	}

	op.logger.Debug("operation scheduled", slog.String("job_id", j.ID()))

	if op.executor == nil {
		go task(runCtx)
		return j
	}
	abandon := func(err error) {
		op.logger.Warn("operation abandoned by executor",
			slog.String("job_id", j.ID()),
			slog.String("error", err.Error()),
		)
		j.Fail(fmt.Errorf("operation %s: abandoned: %w", op.meta.Name, err))
	}

	if n, ok := op.executor.(AbandonNotifier); ok {
		err = n.SubmitAbandonable(ctx, task, abandon)
	} else {
		err = op.executor.Submit(ctx, task)
	}
	if err != nil {
		op.logger.Warn("operation could not be scheduled",
			slog.String("job_id", j.ID()),
			slog.String("error", err.Error()),
		)
		j.Fail(fmt.Errorf("operation %s: schedule: %w", op.meta.Name, err))
	}
	return j
}

// Compute runs the callable directly on the calling goroutine. Operations
// built WithoutCompute return an UnsupportedOperationError.
func (op *Operation) Compute(ctx context.Context, params Params) (Result, error) {
	if op.noCompute {
		return Result{}, &starfisherrors.UnsupportedOperationError{
			Operation: op.meta.Name,
			Method:    "compute",
		}
	}
	args, err := op.prepare(params)
	if err != nil {
		return Result{}, err
	}
	return op.run(ctx, ModeInline, args)
}

func (op *Operation) prepare(params Params) (Args, error) {
	if err := op.meta.CheckParams(params); err != nil {
		return nil, err
	}
	return MarshalParams(params), nil
}

func (op *Operation) run(ctx context.Context, mode Mode, args Args) (res Result, err error) {
	ctx, span := op.inst.start(ctx, op.meta.Name, mode)
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		op.inst.finish(ctx, span, op.meta.Name, mode, elapsed, err)
		if err != nil {
			op.logger.Debug("operation failed",
				slog.String("mode", string(mode)),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
				slog.String("error", err.Error()),
			)
			return
		}
		op.logger.Debug("operation completed",
			slog.String("mode", string(mode)),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
		)
	}()

	out, err := op.call(ctx, args)
	if err != nil {
		return Result{}, err
	}
	return op.materialize(out)
}

// call invokes the callable, converting returned errors and panics into
// typed errors.
func (op *Operation) call(ctx context.Context, args Args) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &starfisherrors.ComputationError{
				Operation: op.meta.Name,
				Cause:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	out, err = op.fn.Call(ctx, args)
	if err == nil {
		return out, nil
	}

	var (
		invalid     *starfisherrors.InvalidParameterError
		computation *starfisherrors.ComputationError
		unsupported *starfisherrors.UnsupportedOperationError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &computation), errors.As(err, &unsupported):
		return nil, err
	}
	return nil, &starfisherrors.ComputationError{Operation: op.meta.Name, Cause: err}
}

func (op *Operation) materialize(out any) (Result, error) {
	if op.kind == KindAsset {
		return Result{Kind: KindAsset, Asset: out}, nil
	}
	params, err := toParams(out)
	if err != nil {
		return Result{}, &starfisherrors.ComputationError{Operation: op.meta.Name, Cause: err}
	}
	return Result{Kind: KindMap, Params: params}, nil
}
