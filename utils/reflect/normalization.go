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

package reflect

import (
	"errors"
	"path"
	"reflect"

	"dirpx.dev/polyx/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping pointers)
	// is not a named type (e.g., anonymous struct, func, interface{}).
	ErrReflectTypeNotNamed = errors.New("reflect: type has no name")
)

// Normalize unwraps pointer indirections up to maxUnwrap times and returns
// the named type underneath, or an error if none is found.
//
// Only pointers are unwrapped: a []T is not a T and must not resolve to T's
// identifier. If maxUnwrap <= 0, config.DefaultMaxUnwrap is used.
func Normalize(t reflect.Type, maxUnwrap int) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}

	for i := 0; t.Kind() == reflect.Pointer && i < maxUnwrap; i++ {
		t = t.Elem()
	}

	if t.Kind() != reflect.Pointer && t.Name() != "" {
		return t, nil
	}
	return nil, ErrReflectTypeNotNamed
}

// TypeName returns a stable "pkg.Type" name for the normalized form of t.
// Builtin types have no package and are returned bare ("int", "string").
// Generic instantiations keep their type arguments ("pkg.Pair[int]") so
// that each instantiation has a name of its own.
func TypeName(t reflect.Type, maxUnwrap int) (string, error) {
	base, err := Normalize(t, maxUnwrap)
	if err != nil {
		return "", err
	}
	if p := base.PkgPath(); p != "" {
		return path.Base(p) + "." + base.Name(), nil
	}
	return base.Name(), nil
}

// InterfaceName returns a display name for the interface type T, used when a
// registry is created without an explicit name.
func InterfaceName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if name, err := TypeName(t, 1); err == nil {
		return name
	}
	return t.String()
}
