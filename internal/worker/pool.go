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

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tombee/starfish/internal/metrics"
	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/operation"
)

// Config sizes a Pool.
type Config struct {
	// Concurrency is the number of worker goroutines.
	Concurrency int
	// QueueSize bounds the number of waiting tasks. Zero means unbounded.
	QueueSize int
	// RateLimit caps task starts per second. Zero means unlimited.
	RateLimit float64
	// Burst is the number of tasks that may start at once under RateLimit.
	Burst int
}

// DefaultConfig returns a Config with one worker per CPU and a queue of
// 1024 tasks.
func DefaultConfig() Config {
	return Config{
		Concurrency: runtime.NumCPU(),
		QueueSize:   1024,
	}
}

// Validate checks that every field is in range.
func (c Config) Validate() error {
	switch {
	case c.Concurrency < 1:
		return &starfisherrors.ValidationError{Field: "concurrency", Message: "must be at least 1"}
	case c.QueueSize < 0:
		return &starfisherrors.ValidationError{Field: "queue_size", Message: "must not be negative"}
	case c.RateLimit < 0:
		return &starfisherrors.ValidationError{Field: "rate_limit", Message: "must not be negative"}
	case c.Burst < 0:
		return &starfisherrors.ValidationError{Field: "burst", Message: "must not be negative"}
	}
	return nil
}

// Option configures a Pool.
type Option func(*Pool)

// WithName sets the pool name used in logs and metric labels.
func WithName(name string) Option {
	return func(p *Pool) { p.name = name }
}

// Pool runs queued tasks on a fixed set of goroutines.
type Pool struct {
	cfg     Config
	name    string
	queue   *Queue
	limiter *rate.Limiter
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	draining atomic.Bool
	active   atomic.Int64
}

var (
	_ operation.Executor        = (*Pool)(nil)
	_ operation.AbandonNotifier = (*Pool)(nil)
)

// New creates a pool. Workers are not started until Start is called;
// tasks submitted before then wait in the queue.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pool{
		cfg:   cfg,
		name:  "default",
		queue: NewQueue(cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.With(slog.String("component", "worker"), slog.String("pool", p.name))

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return p, nil
}

// Start launches the worker goroutines and returns immediately.
// Cancelling ctx stops the workers without draining the queue.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrQueueClosed
	}
	if p.running {
		return nil
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)

	p.logger.Info("worker pool starting",
		slog.Int("concurrency", p.cfg.Concurrency),
		slog.Int("queue_size", p.cfg.QueueSize),
		slog.Float64("rate_limit", p.cfg.RateLimit),
	)

	for range p.cfg.Concurrency {
		p.wg.Add(1)
		go p.work(ctx)
	}
	return nil
}

// Submit queues fn to run on a worker.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context)) error {
	return p.SubmitTask(ctx, &Task{Run: fn})
}

// SubmitAbandonable queues fn; abandon is called instead if the pool
// stops before fn runs.
func (p *Pool) SubmitAbandonable(ctx context.Context, fn func(ctx context.Context), abandon func(err error)) error {
	return p.SubmitTask(ctx, &Task{Run: fn, Abandon: abandon})
}

// SubmitTask queues task. It fails with ErrDraining once the pool is
// draining, ErrQueueFull when the queue is at capacity and ErrQueueClosed
// after Stop.
func (p *Pool) SubmitTask(ctx context.Context, task *Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil || task.Run == nil {
		return &starfisherrors.ValidationError{Field: "task", Message: "task has nothing to run"}
	}
	if p.draining.Load() {
		metrics.RecordRejected(p.name, metrics.ReasonDraining)
		return ErrDraining
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	if err := p.queue.Enqueue(task); err != nil {
		reason := metrics.ReasonClosed
		if errors.Is(err, ErrQueueFull) {
			reason = metrics.ReasonQueueFull
		}
		metrics.RecordRejected(p.name, reason)
		p.logger.Debug("task rejected", slog.String("task_id", task.ID), slog.String("reason", reason))
		return err
	}

	metrics.RecordSubmitted(p.name)
	metrics.SetQueueDepth(p.name, p.queue.Len())
	return nil
}

// StartDraining stops the pool accepting new tasks. Queued tasks still run.
func (p *Pool) StartDraining() {
	if p.draining.CompareAndSwap(false, true) {
		p.logger.Info("worker pool draining", slog.Int("pending", p.queue.Len()))
	}
}

// IsDraining reports whether the pool has stopped accepting tasks.
func (p *Pool) IsDraining() bool {
	return p.draining.Load()
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Pending returns the number of queued tasks.
func (p *Pool) Pending() int {
	return p.queue.Len()
}

// Stop drains the pool: new tasks are refused and the workers finish
// everything already queued. If ctx expires first the workers are
// cancelled, tasks still queued are abandoned and the context error is
// returned. A pool that was never started runs nothing; its queued tasks
// are abandoned with ErrQueueClosed. Abandoned tasks have their Abandon
// hook called.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	running := p.running
	p.mu.Unlock()

	p.StartDraining()
	_ = p.queue.Close()

	if !running {
		if n := p.abandon(ErrQueueClosed); n > 0 {
			p.logger.Warn("worker pool stopped before start, abandoned tasks", slog.Int("abandoned", n))
			return fmt.Errorf("stop worker pool: %d tasks abandoned: %w", n, ErrQueueClosed)
		}
		return nil
	}

	p.logger.Info("worker pool stopping")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-ctx.Done():
		p.cancel()
		abandoned := p.abandon(ctx.Err())
		p.logger.Warn("worker pool shutdown timed out",
			slog.Int("abandoned", abandoned),
			slog.Int("active", p.Active()),
		)
		return fmt.Errorf("stop worker pool: %w", ctx.Err())
	}
}

// abandon removes every queued task and reports err to its Abandon hook.
// It returns the number of tasks removed.
func (p *Pool) abandon(err error) int {
	tasks := p.queue.Drain()
	for _, task := range tasks {
		if task.Abandon == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("task abandon hook panicked",
						slog.String("task_id", task.ID),
						slog.Any("panic", r),
					)
				}
			}()
			task.Abandon(err)
		}()
	}
	metrics.SetQueueDepth(p.name, p.queue.Len())
	return len(tasks)
}

// work is run by each worker goroutine.
func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()

	for {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		metrics.SetQueueDepth(p.name, p.queue.Len())

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				p.logger.Debug("rate limit wait interrupted", slog.String("task_id", task.ID))
			}
		}
		p.run(ctx, task)
	}
}

// run executes a dequeued task. A dequeued task always runs, even when
// the pool is being cancelled, so it can settle whatever it reports to.
func (p *Pool) run(ctx context.Context, task *Task) {
	p.active.Add(1)
	start := time.Now()
	defer func() {
		p.active.Add(-1)
		if r := recover(); r != nil {
			metrics.RecordPanic(p.name)
			p.logger.Error("task panicked",
				slog.String("task_id", task.ID),
				slog.Any("panic", r),
			)
		}
		metrics.RecordCompleted(p.name, time.Since(start).Seconds())
	}()

	task.Run(ctx)
}
