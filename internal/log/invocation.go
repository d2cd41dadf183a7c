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

package log

import (
	"context"
	"log/slog"
	"time"
)

// Invocation describes a command-line request to run an operation.
type Invocation struct {
	// Operation is the name of the operation being invoked.
	Operation string

	// Async is true when the caller asked for a background job.
	Async bool

	// JobID identifies the background job, when there is one.
	JobID string

	// Params carries the caller parameters. They are only logged at
	// trace level.
	Params map[string]any
}

// LogInvocationStart logs that an invocation was requested.
func LogInvocationStart(logger *slog.Logger, inv *Invocation) {
	attrs := []slog.Attr{
		slog.String("event", "invoke_request"),
		slog.String(OperationKey, inv.Operation),
		slog.Bool("async", inv.Async),
	}
	if inv.JobID != "" {
		attrs = append(attrs, slog.String(JobIDKey, inv.JobID))
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "invocation requested", attrs...)

	if len(inv.Params) > 0 {
		Trace(logger, "invocation parameters",
			slog.String(OperationKey, inv.Operation),
			slog.Any("params", inv.Params),
		)
	}
}

// LogInvocationEnd logs the outcome of an invocation. Failures are
// logged at error level.
func LogInvocationEnd(logger *slog.Logger, inv *Invocation, elapsed time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("event", "invoke_response"),
		slog.String(OperationKey, inv.Operation),
		slog.Bool("success", err == nil),
		Duration(elapsed.Milliseconds()),
	}
	if inv.JobID != "" {
		attrs = append(attrs, slog.String(JobIDKey, inv.JobID))
	}

	level := slog.LevelDebug
	message := "invocation completed"
	if err != nil {
		attrs = append(attrs, Error(err))
		level = slog.LevelError
		message = "invocation failed"
	}

	logger.LogAttrs(context.Background(), level, message, attrs...)
}

// Invocations wraps invocation handlers with request and response
// logging.
type Invocations struct {
	logger *slog.Logger
}

// NewInvocations creates invocation logging middleware.
func NewInvocations(logger *slog.Logger) *Invocations {
	return &Invocations{logger: logger}
}

// Handle logs inv, runs handler, then logs the outcome.
func (m *Invocations) Handle(inv *Invocation, handler func() error) error {
	start := time.Now()
	LogInvocationStart(m.logger, inv)

	err := handler()

	LogInvocationEnd(m.logger, inv, time.Since(start), err)
	return err
}
