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
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/operation"
)

// Resolve expands patterns into a sorted, de-duplicated list of files.
// A pattern without glob syntax names a file that must exist.
func Resolve(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			if _, err := os.Stat(pattern); err != nil {
				return nil, &starfisherrors.NotFoundError{Resource: "catalog file", ID: pattern}
			}
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid catalog pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// Load reads every file the patterns resolve to and builds their
// operations. Operation names must be unique across all files.
func Load(patterns []string, opts Options) ([]*operation.Operation, error) {
	files, err := Resolve(patterns)
	if err != nil {
		return nil, err
	}

	var (
		ops    []*operation.Operation
		origin = make(map[string]string)
	)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		defs, err := Parse(data, file)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			if prev, dup := origin[def.Name]; dup {
				return nil, &starfisherrors.ValidationError{
					Field:   "name",
					Message: fmt.Sprintf("operation %q is defined in both %s and %s", def.Name, prev, file),
				}
			}
			op, err := def.Build(opts)
			if err != nil {
				return nil, err
			}
			origin[def.Name] = file
			ops = append(ops, op)
		}
	}

	if opts.Logger != nil {
		opts.Logger.Debug("catalog loaded",
			"files", len(files),
			"operations", len(ops),
		)
	}
	return ops, nil
}

// LoadRegistry loads patterns into a new registry.
func LoadRegistry(patterns []string, opts Options) (*operation.Registry, error) {
	ops, err := Load(patterns, opts)
	if err != nil {
		return nil, err
	}
	reg := operation.NewRegistry()
	if err := reg.Replace(ops); err != nil {
		return nil, err
	}
	return reg, nil
}

// hasMeta reports whether pattern contains glob syntax.
func hasMeta(pattern string) bool {
	for _, c := range filepath.ToSlash(pattern) {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
