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

// Object is the capability contract for values that take part in
// polymorphic encoding.
//
// # Overview
//
// A concrete type implements Object to report the identifier under which its
// deserialize function is registered. The dispatch site only ever holds a
// type-erased value (an interface type T chosen by the caller), so the
// identifier is exposed as an instance method rather than looked up from the
// static type.
//
// Serializability is the second half of the contract. It is provided either
// by the codec's reflection (exported fields, struct tags) or by the
// concrete type's own codec hooks such as json.Marshaler. polyx never asks
// the value to encode itself through the interface type T; it always hands
// the dynamic value to the codec.
//
// # Usage
//
//	type Shape interface {
//	    apis.Object[string]
//	    Area() float64
//	}
//
//	type Circle struct {
//	    R float64 `json:"r"`
//	}
//
//	func (Circle) TypeID() string    { return "shape.circle" }
//	func (c Circle) Area() float64   { return math.Pi * c.R * c.R }
//
// # Identifier guidelines
//
//   - TypeID MUST be stable across releases of the producing type (MUST).
//   - TypeID MUST NOT depend on instance state.
//   - TypeID SHOULD be unique within the registry that decodes it. Duplicates
//     are tolerated at registration and reported at lookup.
//   - Codecs that only support text map keys (JSON) require I to be a string
//     kind, an integer kind or an encoding.TextMarshaler.
type Object[I comparable] interface {
	// TypeID returns the identifier of the concrete type of this value.
	TypeID() I
}

// ObjectFunc adapts a plain function to the Object interface.
type ObjectFunc[I comparable] func() I

// TypeID implements Object for ObjectFunc.
func (f ObjectFunc[I]) TypeID() I {
	return f()
}
