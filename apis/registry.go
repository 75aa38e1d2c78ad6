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

import "reflect"

// DeserializeFn reconstructs a value of interface type T from a cursor
// positioned at the encoded payload of one concrete type.
// Functions are created at registration time and never mutated afterwards.
type DeserializeFn[T any] func(d Decoder) (T, error)

// Registry maps identifiers of type I to deserialize functions producing T.
//
// A registry is built once, typically during process initialization, and is
// read-only afterwards. Implementations must keep Lookup safe for concurrent
// use. Interleaving registrations with lookups is allowed by the default
// implementation but the outcome of such races is the caller's concern.
type Registry[I comparable, T any] interface {
	// Name returns the diagnostic name of the registry (usually the name of T).
	Name() string
	// Policy returns the ambiguity policy applied by Lookup.
	Policy() Policy
	// Register adds fn under id. It never fails: duplicate identifiers are
	// accepted and surfaced by Lookup according to Policy.
	Register(id I, fn DeserializeFn[T])
	// RegisterType is Register that also records t as the concrete type
	// encoded under id, enabling identifier resolution by type.
	RegisterType(t reflect.Type, id I, fn DeserializeFn[T])
	// Lookup returns the deserialize function for id, or a *LookupError
	// wrapping ErrNotRegistered or ErrMultipleRegistrations.
	Lookup(id I) (DeserializeFn[T], error)
	// IdentifierOf returns the identifier recorded for concrete type t.
	IdentifierOf(t reflect.Type) (id I, ok bool)
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry[I]
	// Count returns the number of distinct identifiers.
	Count() int
	// Reset clears all registrations.
	Reset()
}

// Entry is a single identifier in a Registry snapshot.
type Entry[I comparable] struct {
	// ID is the registered identifier.
	ID I
	// Type is the concrete type recorded via RegisterType, or nil.
	Type reflect.Type
	// Registrations is the number of functions registered under ID.
	Registrations int
}
