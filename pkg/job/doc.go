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

// Package job provides Job, a write-once, read-many handle to a result
// that is computed concurrently with the caller.
//
// A Job starts pending and settles exactly once into a terminal state:
//
//	pending → succeeded
//	pending → failed
//
// The producer settles it with Complete or Fail; the first call wins and
// every later call is a no-op that returns false. Consumers may block on
// Result or Wait, poll IsDone, select on Done, or register observers with
// OnComplete. Every observer is called exactly once, whether it was
// registered before or after the job settled.
//
//	j := job.New[int]()
//	go func() { j.Complete(compute()) }()
//
//	j.OnComplete(func(v int, err error) { ... })
//	v, err := j.Result()
//
// A failed job never yields a zero value as a success: Result returns the
// recorded error.
package job
