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

// Package dispatch implements the externally tagged wire protocol: a value is
// written as a map with exactly one entry from its identifier to its
// payload, and read back by looking the key up in a registry before the
// payload is touched.
package dispatch

import (
	"errors"

	"dirpx.dev/polyx/apis"
)

// Serialize writes {id: v} to w.
//
// v is handed to the codec as is, so it is encoded through its dynamic
// type. Keys the codec cannot represent fail with the codec's error.
func Serialize[I comparable](w apis.MapWriter, id I, v any) error {
	if err := w.BeginMap(1); err != nil {
		return err
	}
	if err := w.Key(id); err != nil {
		return err
	}
	if err := w.Value(v); err != nil {
		return err
	}
	return w.EndMap()
}

// Deserialize reads one tagged value from r using reg.
//
// The key is read first and resolved through reg; the selected function
// then decodes the payload directly from r. The map must contain exactly
// one entry. On error the zero T is returned.
func Deserialize[I comparable, T any](r apis.MapReader, reg apis.Registry[I, T]) (T, error) {
	var zero T

	var id I
	ok, err := r.Next(&id)
	if err != nil {
		return zero, named(err, reg.Name())
	}
	if !ok {
		return zero, &apis.ShapeError{Registry: reg.Name(), Entries: 0}
	}

	fn, err := reg.Lookup(id)
	if err != nil {
		return zero, &apis.DispatchError{Registry: reg.Name(), ID: id, Err: err}
	}

	v, err := fn(r.Value())
	if err != nil {
		return zero, &apis.DispatchError{Registry: reg.Name(), ID: id, Err: err}
	}

	more, err := r.More()
	if err != nil {
		return zero, named(err, reg.Name())
	}
	if more {
		return zero, &apis.ShapeError{Registry: reg.Name(), Entries: 2}
	}
	if err := r.Close(); err != nil {
		return zero, named(err, reg.Name())
	}
	return v, nil
}

// named fills the registry name into shape errors raised by a reader.
func named(err error, registry string) error {
	var se *apis.ShapeError
	if errors.As(err, &se) && se.Registry == "" {
		se.Registry = registry
	}
	return err
}
