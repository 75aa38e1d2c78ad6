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

package registry

import (
	"fmt"
	"reflect"

	"dirpx.dev/polyx/apis"
	uref "dirpx.dev/polyx/utils/reflect"
)

// Decode returns a DeserializeFn that decodes the payload into a fresh C and
// converts it to T. C itself is tried first, then *C, so types implementing
// T with pointer receivers work as well.
//
// Decode panics when neither C nor *C implements T, since such a function
// could never succeed.
func Decode[C any, T any]() apis.DeserializeFn[T] {
	var c C
	_, byValue := any(c).(T)
	_, byPointer := any(&c).(T)
	if !byValue && !byPointer {
		panic(fmt.Sprintf("polyx(registry): neither %v nor *%v implements %v",
			reflect.TypeFor[C](), reflect.TypeFor[C](), reflect.TypeFor[T]()))
	}

	return func(d apis.Decoder) (T, error) {
		var zero T
		v := new(C)
		if err := d.Decode(v); err != nil {
			return zero, err
		}
		if byValue {
			return any(*v).(T), nil
		}
		return any(v).(T), nil
	}
}

// Add registers the concrete type C under id with a Decode-based function.
func Add[C any, I comparable, T any](reg apis.Registry[I, T], id I) {
	reg.RegisterType(reflect.TypeFor[C](), id, Decode[C, T]())
}

// AddObject registers C under the identifier C reports through TypeID.
// The zero value of C is asked for its identifier, so TypeID must not
// depend on instance state.
func AddObject[C apis.Object[I], I comparable, T any](reg apis.Registry[I, T]) {
	var c C
	Add[C](reg, c.TypeID())
}

// AddDerived registers C under its derived "pkg.Type" name.
// It returns an error if C has no name after pointer unwrapping.
func AddDerived[C any, T any](reg apis.Registry[string, T]) error {
	name, err := uref.TypeName(reflect.TypeFor[C](), 0)
	if err != nil {
		return fmt.Errorf("polyx(registry): derive identifier for %v: %w", reflect.TypeFor[C](), err)
	}
	Add[C](reg, name)
	return nil
}
