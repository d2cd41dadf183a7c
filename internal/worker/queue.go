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

// Package worker provides a bounded, rate limited pool of goroutines that
// runs operation computations in the background.
package worker

import (
	"context"
	"sync"
	"time"
)

// Task is a unit of work waiting in the queue.
type Task struct {
	ID        string
	Priority  int
	Run       func(ctx context.Context)
	CreatedAt time.Time

	// Abandon, when set, is called instead of Run if the pool stops
	// without running the task.
	Abandon func(err error)
}

// Queue is a bounded in-memory task queue. Higher priority tasks are
// dequeued first; tasks of equal priority keep submission order.
type Queue struct {
	mu       sync.Mutex
	tasks    []*Task
	capacity int
	signal   chan struct{}
	closed   bool
	closedMu sync.RWMutex
}

// NewQueue creates a queue holding at most capacity tasks. A capacity of
// zero or less means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{
		tasks:    make([]*Task, 0),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a task to the queue.
func (q *Queue) Enqueue(task *Task) error {
	q.closedMu.RLock()
	defer q.closedMu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && len(q.tasks) >= q.capacity {
		return ErrQueueFull
	}

	inserted := false
	for i, t := range q.tasks {
		if task.Priority > t.Priority {
			q.tasks = append(q.tasks[:i], append([]*Task{task}, q.tasks[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		q.tasks = append(q.tasks, task)
	}

	q.notify()
	return nil
}

// Dequeue removes and returns the next task. It blocks until a task is
// available or ctx is cancelled. Tasks queued before Close are still
// handed out; ErrQueueClosed is returned once a closed queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (*Task, error) {
	for {
		q.mu.Lock()
		if len(q.tasks) > 0 {
			task := q.tasks[0]
			q.tasks[0] = nil
			q.tasks = q.tasks[1:]
			more := len(q.tasks) > 0
			q.mu.Unlock()
			if more {
				q.wake()
			}
			return task, nil
		}
		q.mu.Unlock()

		q.closedMu.RLock()
		closed := q.closed
		q.closedMu.RUnlock()
		if closed {
			return nil, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.signal:
		}
	}
}

// wake passes the signal on to another waiting Dequeue while tasks remain.
func (q *Queue) wake() {
	q.closedMu.RLock()
	defer q.closedMu.RUnlock()
	if !q.closed {
		q.notify()
	}
}

// notify wakes one waiting Dequeue. Callers hold q.closedMu and have
// checked the queue is open.
func (q *Queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain removes and returns every queued task.
func (q *Queue) Drain() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	tasks := q.tasks
	q.tasks = make([]*Task, 0)
	return tasks
}

// Close stops the queue accepting tasks and wakes every blocked Dequeue.
func (q *Queue) Close() error {
	q.closedMu.Lock()
	defer q.closedMu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.signal)
	return nil
}

// Errors returned by Queue and Pool.
var (
	ErrQueueClosed = &QueueError{message: "queue is closed"}
	ErrQueueFull   = &QueueError{message: "queue is full"}
	ErrDraining    = &QueueError{message: "worker pool is draining"}
)

// QueueError represents a queue-related error.
type QueueError struct {
	message string
}

func (e *QueueError) Error() string {
	return e.message
}
