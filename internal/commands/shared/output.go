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

package shared

import (
	"encoding/json"
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	termEnv := os.Getenv("TERM")
	if termEnv == "dumb" || termEnv == "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// WriteJSON writes v as JSON. Output is indented when --json was not
// requested explicitly and stdout is a terminal, otherwise it is compact.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if !GetJSON() && IsTerminal() {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
