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

// NewObjectStrategy creates an apis.Strategy that uses apis.Object.
func NewObjectStrategy[I comparable]() apis.Strategy[I] {
	return objectStrategy[I]{}
}

// objectStrategy is a zero-cost fast path: if v implements apis.Object[I],
// return its TypeID() and stop the chain.
type objectStrategy[I comparable] struct{}

// Ensure objectStrategy implements apis.Strategy.
var _ apis.Strategy[string] = objectStrategy[string]{}

// TryResolve checks if v implements apis.Object[I] and returns its TypeID().
func (objectStrategy[I]) TryResolve(v any) (I, bool) {
	var zero I
	if v == nil {
		return zero, false
	}
	if o, ok := v.(apis.Object[I]); ok {
		return o.TypeID(), true
	}
	return zero, false
}

// TryResolveType always returns false: Object requires an instance.
func (objectStrategy[I]) TryResolveType(reflect.Type) (I, bool) {
	var zero I
	return zero, false
}
