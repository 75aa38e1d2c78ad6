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

package strategy

import (
	"reflect"

	"dirpx.dev/polyx/apis"
)

// NewRegistryStrategy creates an apis.Strategy that consults the types
// recorded in reg by RegisterType.
func NewRegistryStrategy[I comparable, T any](reg apis.Registry[I, T]) apis.Strategy[I] {
	return &registryStrategy[I, T]{reg: reg}
}

// registryStrategy consults a provided apis.Registry (reflection-free lookup).
type registryStrategy[I comparable, T any] struct {
	reg apis.Registry[I, T]
}

// TryResolve looks up v's type in the registry.
func (s *registryStrategy[I, T]) TryResolve(v any) (I, bool) {
	if v == nil {
		var zero I
		return zero, false
	}
	return s.TryResolveType(reflect.TypeOf(v))
}

// TryResolveType looks up t in the registry.
func (s *registryStrategy[I, T]) TryResolveType(t reflect.Type) (I, bool) {
	if t == nil || s.reg == nil {
		var zero I
		return zero, false
	}
	return s.reg.IdentifierOf(t)
}
