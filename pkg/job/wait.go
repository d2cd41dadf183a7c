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
	"fmt"

	"golang.org/x/sync/errgroup"
)

// WaitAll waits for every job and returns their values in input order.
// It returns the first error encountered, either a job failure or the
// context's error. A nil job is rejected before any waiting starts.
func WaitAll[T any](ctx context.Context, jobs ...*Job[T]) ([]T, error) {
	for i, j := range jobs {
		if j == nil {
			return nil, fmt.Errorf("wait all: job %d is nil", i)
		}
	}
	results := make([]T, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			v, err := j.Wait(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
