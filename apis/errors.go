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

package apis

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is the kind of a LookupError for an unknown identifier.
	ErrNotRegistered = errors.New("polyx: no deserialize function registered")
	// ErrMultipleRegistrations is the kind of a LookupError for an identifier
	// registered more than once under the Strict policy.
	ErrMultipleRegistrations = errors.New("polyx: multiple deserialize functions registered")
	// ErrShape indicates that a tagged value did not contain exactly one entry.
	ErrShape = errors.New("polyx: tagged value must contain exactly one entry")
	// ErrNoIdentifier is returned when no identifier can be resolved for a value.
	ErrNoIdentifier = errors.New("polyx: cannot resolve identifier")
	// ErrUnboundDomain is returned when a box is encoded or decoded for an
	// interface type that has no bound domain.
	ErrUnboundDomain = errors.New("polyx: no domain bound for interface type")
	// ErrRecursiveBox is returned when a box is asked to encode another box.
	ErrRecursiveBox = errors.New("polyx: box cannot hold a box")
	// ErrConsumed is returned when a value cursor is decoded twice.
	ErrConsumed = errors.New("polyx: value already consumed")
)

// LookupError is returned by Registry.Lookup.
type LookupError struct {
	// Registry is the diagnostic name of the registry.
	Registry string
	// ID is the identifier that was looked up.
	ID any
	// Kind is ErrNotRegistered or ErrMultipleRegistrations.
	Kind error
}

// Error implements error.
func (e *LookupError) Error() string {
	switch e.Kind {
	case ErrNotRegistered:
		return fmt.Sprintf("polyx(%s): no deserialize function was registered for id %v", e.Registry, e.ID)
	case ErrMultipleRegistrations:
		return fmt.Sprintf("polyx(%s): multiple deserialize functions were registered for id %v", e.Registry, e.ID)
	default:
		return fmt.Sprintf("polyx(%s): lookup of id %v failed: %v", e.Registry, e.ID, e.Kind)
	}
}

// Unwrap returns the error kind.
func (e *LookupError) Unwrap() error { return e.Kind }

// ShapeError is returned when the tagged container is not a single-entry map.
type ShapeError struct {
	// Registry is the diagnostic name of the registry used for dispatch.
	Registry string
	// Entries is the number of entries seen: 0, 2 (meaning "more than one"),
	// or -1 when the value was not a map at all.
	Entries int
	// Found describes the offending value when Entries is -1.
	Found string
}

// Error implements error.
func (e *ShapeError) Error() string {
	switch {
	case e.Entries < 0:
		return fmt.Sprintf("polyx(%s): expected an id-value map, found %s", e.Registry, e.Found)
	case e.Entries == 0:
		return fmt.Sprintf("polyx(%s): expected an id-value map, found an empty map", e.Registry)
	default:
		return fmt.Sprintf("polyx(%s): expected an id-value map, found more than one entry", e.Registry)
	}
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error { return ErrShape }

// DispatchError wraps a failure that happened after an identifier was read:
// a lookup failure or an error from the selected deserialize function.
type DispatchError struct {
	// Registry is the diagnostic name of the registry.
	Registry string
	// ID is the identifier read from the input.
	ID any
	// Err is the underlying LookupError or codec error.
	Err error
}

// Error implements error.
func (e *DispatchError) Error() string {
	var le *LookupError
	if errors.As(e.Err, &le) {
		return e.Err.Error()
	}
	return fmt.Sprintf("polyx(%s): decode %v: %v", e.Registry, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DispatchError) Unwrap() error { return e.Err }
