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

// Package metrics provides Prometheus collectors for the worker pool.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded by RecordRejected.
const (
	ReasonQueueFull = "queue_full"
	ReasonDraining  = "draining"
	ReasonClosed    = "closed"
)

var (
	tasksSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfish_worker_tasks_submitted_total",
			Help: "Total tasks accepted by the worker pool",
		},
		[]string{"pool"},
	)

	tasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfish_worker_tasks_completed_total",
			Help: "Total tasks the worker pool finished running, panics included",
		},
		[]string{"pool"},
	)

	tasksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfish_worker_tasks_rejected_total",
			Help: "Total tasks refused by the worker pool by reason",
		},
		[]string{"pool", "reason"},
	)

	taskPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfish_worker_task_panics_total",
			Help: "Total tasks that panicked while running",
		},
		[]string{"pool"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starfish_worker_queue_depth",
			Help: "Tasks waiting in the worker pool queue",
		},
		[]string{"pool"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starfish_worker_task_duration_seconds",
			Help:    "Time spent running a task",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"pool"},
	)
)

// RecordSubmitted increments the accepted task counter for pool.
func RecordSubmitted(pool string) {
	tasksSubmitted.WithLabelValues(pool).Inc()
}

// RecordCompleted increments the completed task counter and observes how
// long the task ran.
func RecordCompleted(pool string, seconds float64) {
	tasksCompleted.WithLabelValues(pool).Inc()
	taskDuration.WithLabelValues(pool).Observe(seconds)
}

// RecordRejected increments the rejection counter.
// reason should be one of ReasonQueueFull, ReasonDraining or ReasonClosed.
func RecordRejected(pool, reason string) {
	tasksRejected.WithLabelValues(pool, reason).Inc()
}

// RecordPanic increments the panic counter.
func RecordPanic(pool string) {
	taskPanics.WithLabelValues(pool).Inc()
}

// SetQueueDepth reports the number of queued tasks.
func SetQueueDepth(pool string, depth int) {
	queueDepth.WithLabelValues(pool).Set(float64(depth))
}
