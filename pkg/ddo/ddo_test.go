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

package ddo

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"plain host", "http://localhost:8030", "http://localhost:8030"},
		{"trailing slash kept", "https://agent.example.com/", "https://agent.example.com/"},
		{"root path", "/", "/"},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Build(tt.host)

			wantServices := []Service{
				{TypeMeta, tt.want + "/api/v1/meta"},
				{TypeStorage, tt.want + "/api/v1/assets"},
				{TypeInvoke, tt.want},
				{TypeAuth, tt.want + "/api/v1/auth"},
				{TypeMarket, tt.want + "/api/v1/market"},
			}
			if len(doc.Service) != len(wantServices) {
				t.Fatalf("got %d services, want %d", len(doc.Service), len(wantServices))
			}
			for i, want := range wantServices {
				if doc.Service[i] != want {
					t.Errorf("service[%d] = %+v, want %+v", i, doc.Service[i], want)
				}
			}
		})
	}
}

func TestBuild_IsPure(t *testing.T) {
	a, _ := Build("http://h").JSON()
	b, _ := Build("http://h").JSON()
	if string(a) != string(b) {
		t.Error("building the same host twice should produce identical output")
	}
}

func TestDocument_Endpoint(t *testing.T) {
	doc := Build("http://h")

	if got, ok := doc.Endpoint(TypeInvoke); !ok || got != "http://h" {
		t.Errorf("Endpoint(invoke) = %q, %v", got, ok)
	}
	if got, ok := doc.Endpoint(TypeAuth); !ok || got != "http://h/api/v1/auth" {
		t.Errorf("Endpoint(auth) = %q, %v", got, ok)
	}
	if _, ok := doc.Endpoint("Ocean.Unknown.v1"); ok {
		t.Error("Endpoint() found an unknown service type")
	}
}

func TestDocument_JSON(t *testing.T) {
	out, err := Render("http://localhost:8030")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.Contains(out, "\n  \"service\": [") {
		t.Errorf("expected two-space indented output, got:\n%s", out)
	}
	if !strings.Contains(out, `"serviceEndpoint": "http://localhost:8030/api/v1/meta"`) {
		t.Errorf("missing meta endpoint in:\n%s", out)
	}

	var decoded Document
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Service[2].Type != TypeInvoke {
		t.Errorf("service order changed: %+v", decoded.Service)
	}
}

func TestDocument_YAML(t *testing.T) {
	out, err := Build("http://localhost:8030").YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}

	if !strings.HasPrefix(string(out), "service:\n  - type: Ocean.Meta.v1\n") {
		t.Errorf("unexpected YAML layout:\n%s", out)
	}

	var decoded Document
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if endpoint, _ := decoded.Endpoint(TypeMarket); endpoint != "http://localhost:8030/api/v1/market" {
		t.Errorf("market endpoint = %q", endpoint)
	}
}
