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

// Package polyx encodes values held behind an interface type and decodes
// them back into their concrete types, without the decoding side knowing
// the concrete types at compile time.
//
// Every encoded value is externally tagged: a map with exactly one entry
// from a stable identifier to the payload of the concrete type,
//
//	{"circle": {"r": 2}}
//
// The decoding side reads the identifier first, looks up the deserialize
// function registered for it and lets that function decode the payload
// from the same stream.
//
// # Design
//
// The pieces are split like this:
//
//   - apis.Object: the capability contract. A concrete type reports its
//     identifier through TypeID. Payloads are encoded by the codec itself
//     (struct tags, json.Marshaler and friends).
//
//   - apis.Registry: identifier -> deserialize function. Built once during
//     initialization and read-only afterwards. Registration never fails;
//     an identifier registered more than once is reported at lookup time
//     unless the registry's apis.Policy says which registration wins.
//
//   - dispatch: the wire protocol over the codec cursors in apis
//     (MapReader, MapWriter). codec provides cursors for JSON, YAML, CBOR,
//     MessagePack and Protobuf.
//
//   - Domain: one registry plus the identifier resolver for one interface
//     type. Domains are explicit values; nothing about them is global.
//
// # Global binding
//
// Codec hooks such as json.Unmarshaler receive no context, so Box[I, T]
// finds its domain through a process-wide binding. The binding lives in an
// immutable snapshot published through an atomic pointer, like the global
// configuration; readers never lock.
//
//	var Shapes = polyx.Define("shapes", func(reg apis.Registry[string, Shape]) {
//	    registry.Add[Circle](reg, "circle")
//	})
//
//	type Drawing struct {
//	    Shapes []polyx.Box[string, Shape] `json:"shapes"`
//	}
//
// Code that does not want global state uses Domain.Marshal and
// Domain.Unmarshal with an explicit codec.Format instead.
//
// # Identifiers
//
// The identifier of a value is resolved in order from its TypeID method,
// from the types recorded through Registry.RegisterType, and, when
// Config.DeriveIdentifiers is set for string identifiers, from its
// "pkg.Type" name. Generic types are never matched by their origin type:
// every instantiation is registered under an identifier of its own.
package polyx
