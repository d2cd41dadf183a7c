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

// Package ddo builds the service description document that advertises a
// starfish agent's network endpoints.
package ddo

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Service types listed in every document, in document order.
const (
	TypeMeta    = "Ocean.Meta.v1"
	TypeStorage = "Ocean.Storage.v1"
	TypeInvoke  = "Ocean.Invoke.v1"
	TypeAuth    = "Ocean.Auth.v1"
	TypeMarket  = "Ocean.Market.v1"
)

// Service is one advertised endpoint.
type Service struct {
	Type            string `json:"type" yaml:"type"`
	ServiceEndpoint string `json:"serviceEndpoint" yaml:"serviceEndpoint"`
}

// Document lists the services an agent exposes.
type Document struct {
	Service []Service `json:"service" yaml:"service"`
}

// Build derives the document for an agent reachable at host. Endpoint paths
// are appended to host verbatim and the invoke endpoint is host itself.
func Build(host string) Document {
	return Document{
		Service: []Service{
			{Type: TypeMeta, ServiceEndpoint: host + "/api/v1/meta"},
			{Type: TypeStorage, ServiceEndpoint: host + "/api/v1/assets"},
			{Type: TypeInvoke, ServiceEndpoint: host},
			{Type: TypeAuth, ServiceEndpoint: host + "/api/v1/auth"},
			{Type: TypeMarket, ServiceEndpoint: host + "/api/v1/market"},
		},
	}
}

// Endpoint returns the endpoint advertised for serviceType.
func (d Document) Endpoint(serviceType string) (string, bool) {
	for _, s := range d.Service {
		if s.Type == serviceType {
			return s.ServiceEndpoint, true
		}
	}
	return "", false
}

// JSON renders the document as indented JSON.
func (d Document) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return out, nil
}

// YAML renders the document as YAML.
func (d Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Render builds the document for host and returns it as indented JSON.
func Render(host string) (string, error) {
	out, err := Build(host).JSON()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
