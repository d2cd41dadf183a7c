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

import "fmt"

// ResultKind declares what an operation's callable produces.
type ResultKind string

const (
	// KindMap means the result is a parameter mapping.
	KindMap ResultKind = "map"
	// KindAsset means the result is a single opaque value.
	KindAsset ResultKind = "asset"
)

// ParseResultKind converts a string into a ResultKind. The empty string
// selects KindMap.
func ParseResultKind(s string) (ResultKind, error) {
	switch ResultKind(s) {
	case "", KindMap:
		return KindMap, nil
	case KindAsset:
		return KindAsset, nil
	default:
		return "", fmt.Errorf("unknown result kind %q", s)
	}
}

// Result is the materialized output of an invocation. Exactly one of
// Params or Asset is meaningful, according to Kind.
type Result struct {
	Kind   ResultKind
	Params Params
	Asset  any
}

// Value returns the populated half of the result.
func (r Result) Value() any {
	if r.Kind == KindAsset {
		return r.Asset
	}
	return r.Params
}
