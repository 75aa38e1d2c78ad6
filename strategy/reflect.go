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
	"sync"

	"dirpx.dev/polyx/apis"
	uref "dirpx.dev/polyx/utils/reflect"
)

// NewReflectStrategy creates an apis.Strategy that derives "pkg.Type"
// identifiers via reflection, with memoization.
//
// It is the last link of a string-keyed chain and is only consulted when
// neither the value nor the registry knows an identifier. Unnamed types
// (anonymous structs, slices, funcs) are not handled.
func NewReflectStrategy(maxUnwrap int) apis.Strategy[string] {
	return reflectStrategy{maxUnwrap: maxUnwrap}
}

// reflectStrategy is the universal fallback that computes a stable "pkg.Type".
type reflectStrategy struct {
	maxUnwrap int
}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy[string] = reflectStrategy{}

// cacheKey ensures memoization respects the unwrap limit.
type cacheKey struct {
	t         reflect.Type
	maxUnwrap int
}

// typeNameCache caches derived names by (type, unwrap limit).
// A cached empty string records a type that has no name.
var typeNameCache sync.Map // key: cacheKey, val: string

// TryResolve derives the identifier for v's type.
func (s reflectStrategy) TryResolve(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	return s.TryResolveType(reflect.TypeOf(v))
}

// TryResolveType derives the identifier for t.
func (s reflectStrategy) TryResolveType(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}

	key := cacheKey{t: t, maxUnwrap: s.maxUnwrap}
	if v, ok := typeNameCache.Load(key); ok {
		name := v.(string)
		return name, name != ""
	}

	name, err := uref.TypeName(t, s.maxUnwrap)
	if err != nil {
		name = ""
	}
	typeNameCache.Store(key, name)
	return name, name != ""
}
