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
	"fmt"
	"math"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
)

// Parameter types understood by ParamSpec.
const (
	TypeAny     = "any"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeMap     = "map"
	TypeList    = "list"
	TypeAsset   = "asset"
)

var knownTypes = map[string]bool{
	"":          true,
	TypeAny:     true,
	TypeString:  true,
	TypeNumber:  true,
	TypeInteger: true,
	TypeBoolean: true,
	TypeMap:     true,
	TypeList:    true,
	TypeAsset:   true,
}

// ParamSpec declares one parameter or result field.
type ParamSpec struct {
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// Metadata describes an operation. It is immutable once the operation is
// constructed.
type Metadata struct {
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Type        string               `yaml:"type,omitempty" json:"type,omitempty"`
	Params      map[string]ParamSpec `yaml:"params,omitempty" json:"params,omitempty"`
	Results     map[string]ParamSpec `yaml:"results,omitempty" json:"results,omitempty"`
}

// ParseMetadata decodes a JSON or YAML metadata document.
func ParseMetadata(data []byte) (Metadata, error) {
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Metadata{}, &starfisherrors.ValidationError{
			Field:   "metadata",
			Message: fmt.Sprintf("failed to parse: %v", err),
		}
	}
	if err := meta.Validate(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Validate checks that the metadata is usable.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return &starfisherrors.ValidationError{
			Field:      "name",
			Message:    "operation name is required",
			Suggestion: "Set a unique name in the operation metadata",
		}
	}
	for _, section := range []struct {
		field string
		specs map[string]ParamSpec
	}{{"params", m.Params}, {"results", m.Results}} {
		for name, spec := range section.specs {
			if !knownTypes[spec.Type] {
				return &starfisherrors.ValidationError{
					Field:   fmt.Sprintf("%s.%s.type", section.field, name),
					Message: fmt.Sprintf("unknown type %q", spec.Type),
				}
			}
		}
	}
	return nil
}

// clone returns a deep copy so callers cannot mutate an operation's
// metadata after construction.
func (m Metadata) clone() Metadata {
	c := m
	c.Params = cloneSpecs(m.Params)
	c.Results = cloneSpecs(m.Results)
	return c
}

func cloneSpecs(in map[string]ParamSpec) map[string]ParamSpec {
	if in == nil {
		return nil
	}
	out := make(map[string]ParamSpec, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// CheckParams validates p against the declared parameters. Undeclared
// parameters are allowed and passed through.
func (m Metadata) CheckParams(p Params) error {
	names := make([]string, 0, len(m.Params))
	for name := range m.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := m.Params[name]
		v, ok := p[name]
		if !ok || v == nil {
			if spec.Required {
				return &starfisherrors.InvalidParameterError{
					Operation: m.Name,
					Param:     name,
					Message:   "required parameter is missing",
				}
			}
			continue
		}
		if !matchesType(spec.Type, v) {
			return &starfisherrors.InvalidParameterError{
				Operation: m.Name,
				Param:     name,
				Message:   fmt.Sprintf("expected %s, got %T", spec.Type, v),
			}
		}
	}
	return nil
}

func matchesType(typ string, v any) bool {
	rv := reflect.ValueOf(v)
	switch typ {
	case "", TypeAny, TypeAsset:
		return true
	case TypeString:
		return rv.Kind() == reflect.String
	case TypeBoolean:
		return rv.Kind() == reflect.Bool
	case TypeNumber:
		return isNumeric(rv.Kind())
	case TypeInteger:
		switch {
		case isInteger(rv.Kind()):
			return true
		case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
			f := rv.Float()
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		}
		return false
	case TypeMap:
		return rv.Kind() == reflect.Map
	case TypeList:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	}
	return false
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}
