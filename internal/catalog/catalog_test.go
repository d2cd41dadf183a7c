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

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
	"github.com/tombee/starfish/pkg/operation"
)

const doubleCatalog = `
operations:
  - name: double
    description: Doubles x
    engine: expr
    source: '{"result": x * 2}'
    params:
      x: {type: number, required: true}
    results:
      result: {type: number}
  - name: double-asset
    kind: asset
    mode: inline
    engine: jq
    source: '.x * 2'
    compute: false
    params:
      x: {type: number, required: true}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	defs, err := Parse([]byte(doubleCatalog), "ops.yaml")
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "double", defs[0].Name)
	assert.Equal(t, "expr", defs[0].Engine)
	assert.True(t, defs[0].Params["x"].Required)
	assert.Nil(t, defs[0].Compute)

	require.NotNil(t, defs[1].Compute)
	assert.False(t, *defs[1].Compute)

	_, err = Parse([]byte("operations: {"), "broken.yaml")
	var verr *starfisherrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "broken.yaml", verr.Field)
}

func TestDefinition_Build(t *testing.T) {
	defs, err := Parse([]byte(doubleCatalog), "ops.yaml")
	require.NoError(t, err)

	op, err := defs[0].Build(Options{})
	require.NoError(t, err)
	assert.Equal(t, operation.KindMap, op.Kind())
	assert.Equal(t, operation.ModeBackground, op.Mode())
	assert.True(t, op.SupportsCompute())
	assert.Equal(t, "expr", op.Metadata().Type)

	res, err := op.Invoke(context.Background(), operation.Params{"x": 21})
	require.NoError(t, err)
	assert.Equal(t, 42, res.Params["result"])

	asset, err := defs[1].Build(Options{})
	require.NoError(t, err)
	assert.Equal(t, operation.KindAsset, asset.Kind())
	assert.Equal(t, operation.ModeInline, asset.Mode())
	assert.False(t, asset.SupportsCompute())

	res, err = asset.Invoke(context.Background(), operation.Params{"x": 21})
	require.NoError(t, err)
	assert.Equal(t, 42.0, res.Asset)

	_, err = asset.Compute(context.Background(), operation.Params{"x": 21})
	var uerr *starfisherrors.UnsupportedOperationError
	assert.ErrorAs(t, err, &uerr)
}

func TestDefinition_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"bad kind", Definition{Name: "a", Kind: "table", Source: "x"}},
		{"bad mode", Definition{Name: "a", Mode: "soon", Source: "x"}},
		{"bad engine", Definition{Name: "a", Engine: "lua", Source: "x"}},
		{"bad source", Definition{Name: "a", Source: "x *"}},
		{"missing name", Definition{Source: "x"}},
		{"bad param type", Definition{Name: "a", Source: "x", Params: map[string]operation.ParamSpec{"x": {Type: "float"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Build(Options{})
			var verr *starfisherrors.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "operations: []")
	b := writeFile(t, dir, "nested/deep/b.yaml", "operations: []")
	writeFile(t, dir, "notes.txt", "not a catalog")

	files, err := Resolve([]string{
		filepath.Join(dir, "**", "*.yaml"),
		a,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = Resolve([]string{filepath.Join(dir, "*.json")})
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = Resolve([]string{filepath.Join(dir, "missing.yaml")})
	var nf *starfisherrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ops.yaml", doubleCatalog)
	writeFile(t, dir, "more/ops.yaml", `
operations:
  - name: greet
    engine: jq
    source: '{greeting: "hello \(.who)"}'
    params:
      who: {type: string, required: true}
`)

	reg, err := LoadRegistry([]string{filepath.Join(dir, "**", "*.yaml")}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"double", "double-asset", "greet"}, reg.List())

	res, err := reg.Invoke(context.Background(), "greet", operation.Params{"who": "ocean"})
	require.NoError(t, err)
	assert.Equal(t, "hello ocean", res.Params["greeting"])
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", doubleCatalog)
	writeFile(t, dir, "b.yaml", doubleCatalog)

	_, err := Load([]string{filepath.Join(dir, "*.yaml")}, Options{})
	var verr *starfisherrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "defined in both")
}

func TestLoad_UsesExecutor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ops.yaml", doubleCatalog)

	exec := &countingExecutor{}
	ops, err := Load([]string{filepath.Join(dir, "ops.yaml")}, Options{Executor: exec})
	require.NoError(t, err)

	_, err = ops[0].Invoke(context.Background(), operation.Params{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, exec.count())
}
