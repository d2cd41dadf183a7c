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
	"sort"
)

// Params is the caller-facing parameter mapping. It is also the shape of
// mapping results.
type Params map[string]any

// Keyword is the symbolic key type callables receive. Keywords compare
// by name, so interning the same name twice yields equal keys.
type Keyword string

// Intern returns the keyword for name.
func Intern(name string) Keyword {
	return Keyword(name)
}

// Name returns the keyword's name without the leading colon.
func (k Keyword) Name() string { return string(k) }

// String renders the keyword as :name.
func (k Keyword) String() string { return ":" + string(k) }

// Args is the marshalled parameter structure passed to a Callable.
type Args map[Keyword]any

// Get looks up a value by parameter name.
func (a Args) Get(name string) (any, bool) {
	v, ok := a[Intern(name)]
	return v, ok
}

// Keys returns the argument keys sorted by name.
func (a Args) Keys() []Keyword {
	keys := make([]Keyword, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MarshalParams converts caller parameters into callable arguments. Values
// are passed through unchanged. A nil or empty mapping yields an empty,
// non-nil Args.
func MarshalParams(p Params) Args {
	args := make(Args, len(p))
	for name, v := range p {
		args[Intern(name)] = v
	}
	return args
}

// UnmarshalArgs is the inverse of MarshalParams.
func UnmarshalArgs(a Args) Params {
	p := make(Params, len(a))
	for k, v := range a {
		p[k.Name()] = v
	}
	return p
}

// toParams converts a mapping returned by a callable into Params. It
// accepts the shapes a callable may reasonably produce.
func toParams(v any) (Params, error) {
	switch m := v.(type) {
	case Params:
		return m, nil
	case map[string]any:
		return Params(m), nil
	case Args:
		return UnmarshalArgs(m), nil
	case map[Keyword]any:
		return UnmarshalArgs(Args(m)), nil
	case map[any]any:
		p := make(Params, len(m))
		for k, val := range m {
			switch key := k.(type) {
			case string:
				p[key] = val
			case Keyword:
				p[key.Name()] = val
			default:
				return nil, fmt.Errorf("result key %v has type %T, want string or keyword", k, k)
			}
		}
		return p, nil
	case nil:
		return nil, fmt.Errorf("callable returned no result")
	default:
		return nil, fmt.Errorf("callable returned %T, want a mapping", v)
	}
}
