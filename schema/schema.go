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

// Package schema describes the tagged encoding of a registry as a JSON Schema.
package schema

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"

	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/codec"
)

// Option configures the reflector used for payload schemas.
type Option func(*jsonschema.Reflector)

// WithReflector replaces the defaults with r's settings.
// DoNotReference is always forced on and ExpandedStruct off, so that every
// payload schema is inline.
func WithReflector(r jsonschema.Reflector) Option {
	return func(dst *jsonschema.Reflector) { *dst = r }
}

// Generate returns a schema accepting exactly the tagged values reg can
// decode: a oneOf with one single-property object per identifier.
//
// Payload schemas are reflected from the types recorded through
// RegisterType. Identifiers registered without a type accept any payload.
func Generate[I comparable, T any](reg apis.Registry[I, T], opts ...Option) (*jsonschema.Schema, error) {
	var r jsonschema.Reflector
	for _, opt := range opts {
		opt(&r)
	}
	r.DoNotReference = true
	r.ExpandedStruct = false

	entries := reg.Entries()
	keys := make([]string, len(entries))
	for i, e := range entries {
		k, err := codec.KeyText(any(e.ID))
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		keys[i] = k
	}
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	root := &jsonschema.Schema{
		Version: jsonschema.Version,
		Title:   reg.Name(),
		OneOf:   make([]*jsonschema.Schema, 0, len(entries)),
	}
	for _, i := range order {
		root.OneOf = append(root.OneOf, tagged(keys[i], payload(&r, entries[i].Type)))
	}
	return root, nil
}

func payload(r *jsonschema.Reflector, t reflect.Type) *jsonschema.Schema {
	if t == nil {
		return jsonschema.TrueSchema
	}
	s := r.ReflectFromType(t)
	s.Version = ""
	s.ID = ""
	s.Definitions = nil
	return s
}

func tagged(key string, value *jsonschema.Schema) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set(key, value)
	return &jsonschema.Schema{
		Type:                 "object",
		Title:                key,
		Properties:           props,
		Required:             []string{key},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}
