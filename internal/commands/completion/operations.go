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

package completion

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/catalog"
	"github.com/tombee/starfish/internal/commands/shared"
)

// OperationNames lists the operations defined by the configured catalog
// without compiling them.
func OperationNames() ([]string, error) {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return nil, err
	}
	files, err := catalog.Resolve(cfg.Catalog.Paths)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		defs, err := catalog.Parse(data, file)
		if err != nil {
			continue
		}
		for _, def := range defs {
			if def.Name != "" && !seen[def.Name] {
				seen[def.Name] = true
				names = append(names, def.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// CompleteOperationNames completes the first positional argument with
// catalog operation names.
func CompleteOperationNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		names, err := OperationNames()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var matches []string
		for _, name := range names {
			if strings.HasPrefix(name, toComplete) {
				matches = append(matches, name)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	})
}

// SafeCompletionWrapper wraps a completion function with panic recovery.
// Returns empty completion list on panic or error.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}
