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
	"errors"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/config"
	uref "dirpx.dev/polyx/utils/reflect"
)

// ErrNilDeserializeFn is the panic value of Register when fn is nil.
var ErrNilDeserializeFn = errors.New("polyx(registry): nil deserialize function")

// New constructs a Registry for interface type T keyed by identifiers of type I.
// When name is empty, the name of T is used. Only Policy, MaxUnwrap and
// Logger are read from cfg.
func New[I comparable, T any](name string, cfg apis.Config) apis.Registry[I, T] {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	if name == "" {
		name = uref.InterfaceName(reflect.TypeFor[T]())
	}
	return &registry[I, T]{
		name: name,
		cfg:  cfg,
		log:  cfg.Log().With(zap.String("registry", name)),
	}
}

// slot holds every registration made under one identifier.
// Published slots are immutable; writers replace them wholesale.
type slot[T any] struct {
	fns []apis.DeserializeFn[T]
	typ reflect.Type
}

// registry is the default map-backed Registry implementation.
// Reads go through sync.Map without locking; writes are serialized by mu.
type registry[I comparable, T any] struct {
	// name is the diagnostic name.
	name string
	// cfg is the configuration used for policy and type normalization.
	cfg apis.Config
	// log receives registration diagnostics.
	log *zap.Logger
	// mu guards write-side consistency and counter.
	mu sync.Mutex
	// ids maps I to *slot[T].
	ids sync.Map
	// types maps normalized reflect.Type to I.
	types sync.Map
	// count tracks the number of distinct identifiers.
	count int
}

// Name returns the diagnostic name of the registry.
func (r *registry[I, T]) Name() string { return r.name }

// Policy returns the ambiguity policy applied by Lookup.
func (r *registry[I, T]) Policy() apis.Policy { return r.cfg.Policy }

// Register adds fn under id.
func (r *registry[I, T]) Register(id I, fn apis.DeserializeFn[T]) {
	r.register(nil, id, fn)
}

// RegisterType adds fn under id and records t as the concrete type behind id.
// Types that cannot be normalized to a named type are registered by id only.
func (r *registry[I, T]) RegisterType(t reflect.Type, id I, fn apis.DeserializeFn[T]) {
	nt, err := uref.Normalize(t, r.cfg.MaxUnwrap)
	if err != nil {
		r.log.Warn("type not recorded for identifier resolution",
			zap.Any("id", id), zap.Stringer("type", t), zap.Error(err))
		nt = nil
	}
	r.register(nt, id, fn)
}

func (r *registry[I, T]) register(t reflect.Type, id I, fn apis.DeserializeFn[T]) {
	if fn == nil {
		panic(ErrNilDeserializeFn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := &slot[T]{}
	if v, ok := r.ids.Load(id); ok {
		prev := v.(*slot[T])
		next.fns = append(make([]apis.DeserializeFn[T], 0, len(prev.fns)+1), prev.fns...)
		next.typ = prev.typ
	} else {
		r.count++
	}
	next.fns = append(next.fns, fn)

	if t != nil {
		if next.typ == nil {
			next.typ = t
		}
		if prev, loaded := r.types.LoadOrStore(t, id); loaded && prev.(I) != id {
			r.log.Warn("type already recorded under another identifier",
				zap.Stringer("type", t), zap.Any("id", prev), zap.Any("ignored", id))
		}
	}

	r.ids.Store(id, next)

	if n := len(next.fns); n > 1 {
		r.log.Warn("identifier registered more than once",
			zap.Any("id", id), zap.Int("registrations", n), zap.Stringer("policy", r.cfg.Policy))
		return
	}
	r.log.Debug("registered", zap.Any("id", id))
}

// Lookup returns the deserialize function for id according to the policy.
func (r *registry[I, T]) Lookup(id I) (apis.DeserializeFn[T], error) {
	v, ok := r.ids.Load(id)
	if !ok {
		return nil, &apis.LookupError{Registry: r.name, ID: id, Kind: apis.ErrNotRegistered}
	}
	fn, ok := pick(r.cfg.Policy, v.(*slot[T]).fns)
	if !ok {
		return nil, &apis.LookupError{Registry: r.name, ID: id, Kind: apis.ErrMultipleRegistrations}
	}
	return fn, nil
}

// IdentifierOf returns the identifier recorded for concrete type t.
func (r *registry[I, T]) IdentifierOf(t reflect.Type) (I, bool) {
	var zero I
	if t == nil {
		return zero, false
	}
	nt, err := uref.Normalize(t, r.cfg.MaxUnwrap)
	if err != nil {
		return zero, false
	}
	if v, ok := r.types.Load(nt); ok {
		return v.(I), true
	}
	return zero, false
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry[I, T]) Entries() []apis.Entry[I] {
	entries := make([]apis.Entry[I], 0, r.Count())
	r.ids.Range(func(key, value any) bool {
		s := value.(*slot[T])
		entries = append(entries, apis.Entry[I]{
			ID:            key.(I),
			Type:          s.typ,
			Registrations: len(s.fns),
		})
		return true
	})
	return entries
}

// Count returns the number of distinct identifiers.
func (r *registry[I, T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registrations.
func (r *registry[I, T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids.Clear()
	r.types.Clear()
	r.count = 0
}
