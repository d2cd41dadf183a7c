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

package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a job.
type State string

const (
	// StatePending means the result is not available yet.
	StatePending State = "pending"
	// StateSucceeded means the job holds a value.
	StateSucceeded State = "succeeded"
	// StateFailed means the job holds an error.
	StateFailed State = "failed"
)

// IsTerminal reports whether the state is final.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ErrNilFailure is recorded when Fail is called with a nil error.
var ErrNilFailure = errors.New("job: failed without a cause")

// Observer is notified once a job reaches a terminal state.
type Observer[T any] func(value T, err error)

// Job is a single-assignment result slot. The zero value is not usable;
// create jobs with New, Resolved or Failed.
type Job[T any] struct {
	id        string
	createdAt time.Time

	mu          sync.Mutex
	state       State
	value       T
	err         error
	completedAt time.Time
	observers   []Observer[T]
	done        chan struct{}
}

// New creates a pending job.
func New[T any]() *Job[T] {
	return &Job[T]{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		state:     StatePending,
		done:      make(chan struct{}),
	}
}

// Resolved creates a job that has already succeeded with v.
func Resolved[T any](v T) *Job[T] {
	j := New[T]()
	j.Complete(v)
	return j
}

// Failed creates a job that has already failed with err.
func Failed[T any](err error) *Job[T] {
	j := New[T]()
	j.Fail(err)
	return j
}

// ID returns the job's unique identifier.
func (j *Job[T]) ID() string { return j.id }

// CreatedAt returns when the job was created.
func (j *Job[T]) CreatedAt() time.Time { return j.createdAt }

// CompletedAt returns when the job settled, or the zero time while pending.
func (j *Job[T]) CompletedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.completedAt
}

// State returns the current state without blocking.
func (j *Job[T]) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// IsDone reports whether the job has settled.
func (j *Job[T]) IsDone() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the job settles.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Complete settles the job with v. It returns false if the job had
// already settled, in which case v is discarded.
func (j *Job[T]) Complete(v T) bool {
	return j.settle(StateSucceeded, v, nil)
}

// Fail settles the job with err. A nil err is recorded as ErrNilFailure.
// It returns false if the job had already settled.
func (j *Job[T]) Fail(err error) bool {
	if err == nil {
		err = ErrNilFailure
	}
	var zero T
	return j.settle(StateFailed, zero, err)
}

func (j *Job[T]) settle(state State, v T, err error) bool {
	j.mu.Lock()
	if j.state.IsTerminal() {
		j.mu.Unlock()
		return false
	}
	j.state = state
	j.value = v
	j.err = err
	j.completedAt = time.Now()
	observers := j.observers
	j.observers = nil
	close(j.done)
	j.mu.Unlock()

	for _, fn := range observers {
		notify(fn, v, err)
	}
	return true
}

// Result blocks until the job settles and returns its value or error.
func (j *Job[T]) Result() (T, error) {
	<-j.done
	return j.value, j.err
}

// Wait is like Result but gives up when ctx is done. Giving up only
// stops the wait; the computation behind the job is unaffected.
func (j *Job[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		return j.value, j.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to be called once the job settles. Observers
// registered while pending run on the settling goroutine in registration
// order; observers registered after settlement run immediately on the
// calling goroutine.
func (j *Job[T]) OnComplete(fn Observer[T]) {
	if fn == nil {
		return
	}
	j.mu.Lock()
	if !j.state.IsTerminal() {
		j.observers = append(j.observers, fn)
		j.mu.Unlock()
		return
	}
	v, err := j.value, j.err
	j.mu.Unlock()
	notify(fn, v, err)
}

// notify isolates observers from each other: a panicking observer must
// not prevent the rest from running.
func notify[T any](fn Observer[T], v T, err error) {
	defer func() { _ = recover() }()
	fn(v, err)
}
