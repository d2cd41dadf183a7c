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

package operation

import (
	"errors"
	"testing"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
)

func TestParseMetadata(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		meta, err := ParseMetadata([]byte(`{"name":"double","params":{"x":{"type":"number","required":true}}}`))
		if err != nil {
			t.Fatalf("ParseMetadata() error = %v", err)
		}
		if meta.Name != "double" {
			t.Errorf("Name = %q, want %q", meta.Name, "double")
		}
		if spec := meta.Params["x"]; spec.Type != TypeNumber || !spec.Required {
			t.Errorf("Params[x] = %+v, want required number", spec)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		meta, err := ParseMetadata([]byte("name: greet\ndescription: says hello\nparams:\n  who:\n    type: string\n"))
		if err != nil {
			t.Fatalf("ParseMetadata() error = %v", err)
		}
		if meta.Description != "says hello" {
			t.Errorf("Description = %q", meta.Description)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := ParseMetadata([]byte(`{"description":"anonymous"}`))
		var verr *starfisherrors.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := ParseMetadata([]byte(`{"name":"x","params":{"a":{"type":"complex"}}}`))
		if err == nil {
			t.Fatal("expected error for unknown parameter type")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := ParseMetadata([]byte(`{name: [`)); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestMetadata_CheckParams(t *testing.T) {
	meta := Metadata{
		Name: "calc",
		Params: map[string]ParamSpec{
			"x":     {Type: TypeNumber, Required: true},
			"n":     {Type: TypeInteger},
			"label": {Type: TypeString},
			"flag":  {Type: TypeBoolean},
			"opts":  {Type: TypeMap},
			"items": {Type: TypeList},
			"blob":  {Type: TypeAsset},
		},
	}

	tests := []struct {
		name      string
		params    Params
		wantParam string
	}{
		{"minimal", Params{"x": 1}, ""},
		{"float number", Params{"x": 1.5}, ""},
		{"all typed", Params{"x": int64(2), "n": 3, "label": "a", "flag": true, "opts": map[string]any{}, "items": []int{1}, "blob": struct{}{}}, ""},
		{"integral float as integer", Params{"x": 1, "n": 4.0}, ""},
		{"undeclared passes", Params{"x": 1, "extra": "anything"}, ""},
		{"missing required", Params{}, "x"},
		{"nil required", Params{"x": nil}, "x"},
		{"wrong number", Params{"x": "21"}, "x"},
		{"fractional integer", Params{"x": 1, "n": 1.5}, "n"},
		{"wrong string", Params{"x": 1, "label": 3}, "label"},
		{"wrong bool", Params{"x": 1, "flag": "yes"}, "flag"},
		{"wrong map", Params{"x": 1, "opts": []any{}}, "opts"},
		{"wrong list", Params{"x": 1, "items": map[string]any{}}, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := meta.CheckParams(tt.params)
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("CheckParams() error = %v", err)
				}
				return
			}
			var perr *starfisherrors.InvalidParameterError
			if !errors.As(err, &perr) {
				t.Fatalf("expected InvalidParameterError, got %v", err)
			}
			if perr.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", perr.Param, tt.wantParam)
			}
			if perr.Operation != "calc" {
				t.Errorf("Operation = %q, want %q", perr.Operation, "calc")
			}
		})
	}
}

func TestMetadata_CloneIsolation(t *testing.T) {
	meta := Metadata{Name: "a", Params: map[string]ParamSpec{"x": {Type: TypeNumber}}}
	if _, err := New(meta, CallableFunc(nil)); err == nil {
		t.Fatal("New() should reject a nil callable func")
	}

	op, err := New(meta, echo())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	meta.Params["x"] = ParamSpec{Type: TypeString}

	if got := op.Metadata().Params["x"].Type; got != TypeNumber {
		t.Errorf("operation metadata changed after construction: %q", got)
	}
}
