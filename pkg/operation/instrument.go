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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
)

const instrumentationName = "github.com/tombee/starfish/pkg/operation"

// Outcome attribute values for invocation metrics.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// instruments holds the tracer and meters shared by every invocation of
// an operation.
type instruments struct {
	tracer      trace.Tracer
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider) (*instruments, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	invocations, err := meter.Int64Counter(
		"starfish.operation.invocations",
		metric.WithDescription("Total number of operation invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"starfish.operation.duration",
		metric.WithDescription("Operation computation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{
		tracer:      tp.Tracer(instrumentationName),
		invocations: invocations,
		duration:    duration,
	}, nil
}

func (i *instruments) start(ctx context.Context, name string, mode Mode) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, "operation.invoke",
		trace.WithAttributes(
			attribute.String("operation.name", name),
			attribute.String("operation.mode", string(mode)),
		),
	)
}

func (i *instruments) finish(ctx context.Context, span trace.Span, name string, mode Mode, elapsed time.Duration, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind := starfisherrors.KindOf(err); kind != "" {
			span.SetAttributes(attribute.String("error.kind", string(kind)))
		}
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("operation", name),
		attribute.String("mode", string(mode)),
		attribute.String("outcome", outcome),
	)
	i.invocations.Add(ctx, 1, attrs)
	i.duration.Record(ctx, elapsed.Seconds(), attrs)
}
