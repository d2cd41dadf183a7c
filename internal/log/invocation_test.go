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

package log

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestLogInvocationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "trace", Output: &buf})

	LogInvocationStart(logger, &Invocation{
		Operation: "double",
		Async:     true,
		JobID:     "job-7",
		Params:    map[string]any{"x": 21},
	})

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected request and parameter entries, got %d", len(entries))
	}
	req := entries[0]
	if req["event"] != "invoke_request" || req[OperationKey] != "double" || req["async"] != true || req[JobIDKey] != "job-7" {
		t.Errorf("unexpected request entry: %v", req)
	}
	params, ok := entries[1]["params"].(map[string]any)
	if !ok || params["x"] != float64(21) {
		t.Errorf("unexpected params entry: %v", entries[1])
	}
}

func TestLogInvocationStart_MinimalFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Output: &buf})

	LogInvocationStart(logger, &Invocation{Operation: "noop"})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, ok := entries[0][JobIDKey]; ok {
		t.Error("job_id should be omitted when empty")
	}
}

func TestInvocations_Handle(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantMsg   string
	}{
		{"success", nil, "DEBUG", "invocation completed"},
		{"failure", errors.New("computation failed"), "ERROR", "invocation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewInvocations(New(&Config{Level: "debug", Output: &buf}))

			called := false
			err := m.Handle(&Invocation{Operation: "double"}, func() error {
				called = true
				time.Sleep(time.Millisecond)
				return tt.err
			})
			if !called {
				t.Fatal("handler was not called")
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Handle() error = %v, want %v", err, tt.err)
			}

			entries := decodeLines(t, &buf)
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			resp := entries[1]
			if resp["level"] != tt.wantLevel || resp["msg"] != tt.wantMsg {
				t.Errorf("unexpected response entry: %v", resp)
			}
			if resp["success"] != (tt.err == nil) {
				t.Errorf("success = %v", resp["success"])
			}
			if _, ok := resp[DurationKey]; !ok {
				t.Error("response entry is missing duration_ms")
			}
		})
	}
}
