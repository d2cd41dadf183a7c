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

package ops

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/catalog"
	"github.com/tombee/starfish/internal/commands/shared"
)

// reloadEvent is the --json rendering of a reload attempt.
type reloadEvent struct {
	Operations int    `json:"operations"`
	Error      string `json:"error,omitempty"`
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the catalog when its files change",
		Long: `Watch the configured catalog files and reload the catalog on every change.

A reload that fails keeps the previous operations. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			app, err := shared.NewApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if len(app.Config.Catalog.Paths) == 0 {
				return shared.NewInvalidParamsError("no catalog paths configured", nil)
			}

			out := &lockedWriter{w: cmd.OutOrStdout()}
			w, err := catalog.NewWatcher(catalog.WatcherConfig{
				Patterns:      app.Config.Catalog.Paths,
				Registry:      app.Registry,
				Options:       app.CatalogOptions(),
				Logger:        app.Logger,
				DebounceDelay: app.Config.Catalog.Debounce,
				OnReload: func(count int, err error) {
					reportReload(out, count, err)
				},
			})
			if err != nil {
				return fmt.Errorf("failed to watch catalog: %w", err)
			}
			defer func() { _ = w.Close() }()

			if !shared.GetJSON() {
				fmt.Fprintf(out, "Watching %d operations. Press Ctrl+C to stop.\n", app.Registry.Len())
			}

			<-ctx.Done()
			return nil
		},
	}

	return cmd
}

func reportReload(out io.Writer, count int, err error) {
	if shared.GetJSON() {
		ev := reloadEvent{Operations: count}
		if err != nil {
			ev.Error = err.Error()
		}
		_ = shared.WriteJSON(out, ev)
		return
	}
	if err != nil {
		fmt.Fprintf(out, "Reload failed, keeping previous catalog: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Reloaded %d operations\n", count)
}

// lockedWriter serializes writes from the watcher and command goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
