/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package schema_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/codec"
	"dirpx.dev/polyx/config"
	"dirpx.dev/polyx/registry"
	"dirpx.dev/polyx/schema"
)

type Shape interface{ Area() float64 }

type Circle struct {
	R float64 `json:"r"`
}

func (c Circle) Area() float64 { return 3 * c.R * c.R }

type Rect struct {
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Label string  `json:"label,omitempty"`
}

func (r Rect) Area() float64 { return r.W * r.H }

type Unit string

func (Unit) Area() float64 { return 0 }

func compile(t *testing.T, s *jsonschema.Schema) *validator.Schema {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	require.NoError(t, err)

	const url = "https://dirpx.dev/polyx/shapes.json"
	c := validator.NewCompiler()
	require.NoError(t, c.AddResource(url, doc))
	compiled, err := c.Compile(url)
	require.NoError(t, err)
	return compiled
}

func validate(t *testing.T, s *validator.Schema, instance string) error {
	t.Helper()
	inst, err := validator.UnmarshalJSON(strings.NewReader(instance))
	require.NoError(t, err)
	return s.Validate(inst)
}

func shapes() apis.Registry[string, Shape] {
	reg := registry.New[string, Shape]("shapes", config.DefaultConfig())
	registry.Add[Circle](reg, "circle")
	registry.Add[Rect](reg, "rect")
	registry.Add[Unit](reg, "unit")
	reg.Register("opaque", func(apis.Decoder) (Shape, error) { return Unit(""), nil })
	return reg
}

func TestGenerate_Structure(t *testing.T) {
	s, err := schema.Generate(shapes())
	require.NoError(t, err)

	assert.Equal(t, "shapes", s.Title)
	assert.Equal(t, jsonschema.Version, s.Version)
	require.Len(t, s.OneOf, 4)

	var titles []string
	for _, sub := range s.OneOf {
		titles = append(titles, sub.Title)
		assert.Equal(t, []string{sub.Title}, sub.Required)
		assert.Empty(t, sub.Properties.Value(sub.Title).ID)
	}
	assert.Equal(t, []string{"circle", "opaque", "rect", "unit"}, titles)
}

func TestGenerate_Validates(t *testing.T) {
	s, err := schema.Generate(shapes())
	require.NoError(t, err)
	compiled := compile(t, s)

	valid := []string{
		`{"circle":{"r":1.5}}`,
		`{"rect":{"w":1,"h":2}}`,
		`{"rect":{"w":1,"h":2,"label":"x"}}`,
		`{"unit":"m"}`,
		`{"opaque":[1,2,3]}`,
	}
	for _, doc := range valid {
		assert.NoError(t, validate(t, compiled, doc), doc)
	}

	invalid := []string{
		`{}`,
		`{"circle":{"r":1},"unit":"m"}`,
		`{"square":{"side":1}}`,
		`{"circle":{"r":"wide"}}`,
		`{"rect":{"w":1}}`,
		`{"unit":42}`,
		`["circle",{"r":1}]`,
	}
	for _, doc := range invalid {
		assert.Error(t, validate(t, compiled, doc), doc)
	}
}

func TestGenerate_IntegerIdentifiers(t *testing.T) {
	reg := registry.New[int, Shape]("numbered", config.DefaultConfig())
	registry.Add[Circle](reg, 2)
	registry.Add[Rect](reg, 10)

	s, err := schema.Generate(reg)
	require.NoError(t, err)
	require.Len(t, s.OneOf, 2)
	assert.Equal(t, "10", s.OneOf[0].Title)
	assert.Equal(t, "2", s.OneOf[1].Title)

	assert.NoError(t, validate(t, compile(t, s), `{"2":{"r":1}}`))
}

func TestGenerate_UintptrIdentifiers(t *testing.T) {
	reg := registry.New[uintptr, Shape]("addressed", config.DefaultConfig())
	registry.Add[Circle](reg, 7)

	s, err := schema.Generate(reg)
	require.NoError(t, err)
	require.Len(t, s.OneOf, 1)
	assert.Equal(t, "7", s.OneOf[0].Title)
}

func TestGenerate_UnsupportedIdentifier(t *testing.T) {
	type key struct{ A int }
	reg := registry.New[key, Shape]("structs", config.DefaultConfig())
	registry.Add[Circle](reg, key{1})

	_, err := schema.Generate(reg)
	assert.ErrorIs(t, err, codec.ErrUnsupportedKey)
}

func TestGenerate_WithReflector(t *testing.T) {
	s, err := schema.Generate(shapes(), schema.WithReflector(jsonschema.Reflector{AllowAdditionalProperties: true}))
	require.NoError(t, err)

	assert.NoError(t, validate(t, compile(t, s), `{"circle":{"r":1,"extra":true}}`))
}
