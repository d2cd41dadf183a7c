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

package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// patternSet matches file system paths against absolute catalog patterns.
type patternSet struct {
	patterns []string
}

// newPatternSet makes every pattern absolute and checks that it is a
// valid doublestar pattern.
func newPatternSet(patterns []string) (*patternSet, error) {
	abs := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid catalog pattern %q", pattern)
		}
		p, err := filepath.Abs(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pattern %q: %w", pattern, err)
		}
		abs = append(abs, p)
	}
	return &patternSet{patterns: abs}, nil
}

// Match reports whether path matches any pattern.
func (s *patternSet) Match(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.PathMatch(pattern, abs); ok {
			return true
		}
	}
	return false
}

// Roots returns the directory each pattern is anchored in, and whether
// the pattern can match below that directory's immediate children.
func (s *patternSet) Roots() map[string]bool {
	roots := make(map[string]bool)
	for _, pattern := range s.patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dir := filepath.FromSlash(base)
		recursive := false
		if rest == "" || !hasMeta(rest) {
			// A literal file: watch its directory.
			dir = filepath.Dir(filepath.FromSlash(pattern))
		} else {
			recursive = strings.Contains(rest, "/")
		}
		roots[dir] = roots[dir] || recursive
	}
	return roots
}
