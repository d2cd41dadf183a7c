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
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Mode selects how Invoke executes.
type Mode string

const (
	// ModeInline runs Invoke on the calling goroutine.
	ModeInline Mode = "inline"
	// ModeBackground runs Invoke through the executor and blocks on the job.
	ModeBackground Mode = "background"
)

// ParseMode converts a string into a Mode. The empty string selects
// ModeBackground.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBackground:
		return ModeBackground, nil
	case ModeInline:
		return ModeInline, nil
	default:
		return "", fmt.Errorf("unknown execution mode %q", s)
	}
}

type options struct {
	kind           ResultKind
	mode           Mode
	executor       Executor
	noCompute      bool
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Operation at construction.
type Option func(*options)

// WithResultKind declares whether the callable returns a mapping or a
// single value. Defaults to KindMap.
func WithResultKind(k ResultKind) Option {
	return func(o *options) { o.kind = k }
}

// WithMode selects inline or background execution for Invoke. Defaults
// to ModeBackground.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithExecutor sets the background execution facility. Without one,
// asynchronous invocations each get their own goroutine.
func WithExecutor(e Executor) Option {
	return func(o *options) { o.executor = e }
}

// WithoutCompute marks the operation as not supporting Compute.
func WithoutCompute() Option {
	return func(o *options) { o.noCompute = true }
}

// WithLogger sets the logger used for invocation debug logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider overrides the global OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}
