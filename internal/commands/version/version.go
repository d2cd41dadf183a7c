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

// Package version implements the version command.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/tombee/starfish/internal/commands/shared"
)

const unknown = "unknown"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// VersionInfo describes the running starfish binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified,omitempty"`
	Module    string `json:"module,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the starfish version, the commit and build time it was built
from, and the Go toolchain and platform.

Values injected at link time take precedence. A binary built without them
(for example with go install) reports what the Go build info recorded.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := collect()

	if shared.GetJSON() {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	commit := info.Commit
	if info.Modified {
		commit += " (modified)"
	}
	cmd.Printf("starfish %s\n", info.Version)
	if info.Module != "" {
		cmd.Printf("  module:   %s\n", info.Module)
	}
	cmd.Printf("  commit:   %s\n", commit)
	cmd.Printf("  built:    %s\n", info.BuildDate)
	cmd.Printf("  go:       %s\n", info.GoVersion)
	cmd.Printf("  platform: %s\n", info.Platform)

	return nil
}

// collect merges link-time values with the binary's embedded build info.
func collect() VersionInfo {
	v, c, b := shared.GetVersion()
	info := VersionInfo{
		Version:   v,
		Commit:    c,
		BuildDate: b,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	info.Module = bi.Main.Path
	if bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}
	if isUnset(info.Version) && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if isUnset(info.Commit) {
				info.Commit = s.Value
			}
		case "vcs.time":
			if isUnset(info.BuildDate) {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func isUnset(s string) bool {
	return s == "" || s == unknown || s == "dev"
}
