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
	"reflect"
	"testing"
)

func TestMarshalParams_RoundTrip(t *testing.T) {
	asset := &struct{ ID string }{ID: "asset-1"}
	tests := []struct {
		name   string
		params Params
	}{
		{"empty", Params{}},
		{"scalars", Params{"x": 21, "name": "starfish", "ok": true, "ratio": 0.5}},
		{"nested", Params{"m": map[string]any{"a": 1}, "l": []any{1, "two"}}},
		{"opaque", Params{"asset": asset}},
		{"odd keys", Params{"": 1, "a/b": 2, ":c": 3, "with space": 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := MarshalParams(tt.params)
			if len(args) != len(tt.params) {
				t.Fatalf("MarshalParams() produced %d keys, want %d", len(args), len(tt.params))
			}
			for name, v := range tt.params {
				got, ok := args.Get(name)
				if !ok {
					t.Errorf("key %q missing after marshalling", name)
					continue
				}
				if !reflect.DeepEqual(got, v) {
					t.Errorf("args[%q] = %v, want %v", name, got, v)
				}
			}

			back := UnmarshalArgs(args)
			if !reflect.DeepEqual(back, tt.params) {
				t.Errorf("round trip = %v, want %v", back, tt.params)
			}
		})
	}
}

func TestMarshalParams_ValuesPassThrough(t *testing.T) {
	shared := map[string]any{"k": "v"}
	args := MarshalParams(Params{"m": shared})

	got, _ := args.Get("m")
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(shared).Pointer() {
		t.Error("values must pass through without copying")
	}
}

func TestMarshalParams_Nil(t *testing.T) {
	args := MarshalParams(nil)
	if args == nil {
		t.Fatal("MarshalParams(nil) should return a non-nil empty Args")
	}
	if len(args) != 0 {
		t.Errorf("MarshalParams(nil) = %v, want empty", args)
	}
	if p := UnmarshalArgs(nil); p == nil || len(p) != 0 {
		t.Errorf("UnmarshalArgs(nil) = %v, want empty non-nil", p)
	}
}

func TestMarshalParams_Deterministic(t *testing.T) {
	p := Params{"x": 1, "y": "two"}
	if !reflect.DeepEqual(MarshalParams(p), MarshalParams(p)) {
		t.Error("marshalling the same input twice should produce equal output")
	}
}

func TestKeyword(t *testing.T) {
	k := Intern("amount")
	if k != Intern("amount") {
		t.Error("interning the same name should produce equal keywords")
	}
	if k.Name() != "amount" {
		t.Errorf("Name() = %q, want %q", k.Name(), "amount")
	}
	if k.String() != ":amount" {
		t.Errorf("String() = %q, want %q", k.String(), ":amount")
	}
}

func TestArgs_Keys(t *testing.T) {
	args := MarshalParams(Params{"b": 1, "a": 2, "c": 3})
	got := args.Keys()
	want := []Keyword{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestToParams(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Params
		wantErr bool
	}{
		{"params", Params{"a": 1}, Params{"a": 1}, false},
		{"string map", map[string]any{"a": 1}, Params{"a": 1}, false},
		{"args", Args{"a": 1}, Params{"a": 1}, false},
		{"keyword map", map[Keyword]any{"a": 1}, Params{"a": 1}, false},
		{"any map", map[any]any{"a": 1, Keyword("b"): 2}, Params{"a": 1, "b": 2}, false},
		{"any map bad key", map[any]any{1: "x"}, nil, true},
		{"nil", nil, nil, true},
		{"scalar", 42, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toParams(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("toParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("toParams() = %v, want %v", got, tt.want)
			}
		})
	}
}
