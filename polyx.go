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

package polyx

import (
	"maps"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/codec"
	"dirpx.dev/polyx/config"
)

// init initializes the global state.
func init() {
	st.Store(&state{
		cfg:     config.DefaultConfig(),
		formats: codec.NewRegistry(),
		domains: map[domainKey]any{},
	})
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration.
// Domains read it when they are first used; already built domains keep the
// configuration they were built with.
func SetConfig(cfg apis.Config) {
	update(func(s *state) { s.cfg = cfg })
}

// SetLogger replaces the logger of the global configuration.
func SetLogger(l *zap.Logger) {
	update(func(s *state) { s.cfg.Logger = l })
}

// Formats returns the global format registry.
func Formats() *codec.Registry {
	return st.Load().formats
}

// Format returns a registered format by name or content type. An empty
// name selects the format named by the global configuration.
func Format(name string) (codec.Format, error) {
	s := st.Load()
	if name == "" {
		name = s.cfg.Format
	}
	return s.formats.Get(name)
}

// Bind makes d the domain used by Box[I, T] and the package-level
// Marshal and Unmarshal. A previously bound domain for the same I and T is
// replaced.
func Bind[I comparable, T any](d *Domain[I, T]) {
	key := keyOf[I, T]()
	update(func(s *state) {
		if _, ok := s.domains[key]; ok {
			s.cfg.Log().Debug("domain rebound",
				zap.String("domain", d.Name()), zap.Stringer("type", key.t))
		}
		s.domains[key] = d
	})
}

// Unbind removes the domain bound for I and T, if any.
func Unbind[I comparable, T any]() {
	key := keyOf[I, T]()
	update(func(s *state) { delete(s.domains, key) })
}

// Bound returns the domain bound for I and T.
func Bound[I comparable, T any]() (*Domain[I, T], bool) {
	v, ok := st.Load().domains[keyOf[I, T]()]
	if !ok {
		return nil, false
	}
	return v.(*Domain[I, T]), true
}

// update publishes a modified copy of the current state.
func update(fn func(s *state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := &state{
		cfg:     old.cfg,
		formats: old.formats,
		domains: maps.Clone(old.domains),
	}
	fn(next)
	st.Store(next)
}

// buildMu serializes writers so we never publish partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// formats is the global format registry.
	formats *codec.Registry
	// domains maps (I, T) to the bound *Domain[I, T].
	domains map[domainKey]any
}

// domainKey identifies a domain by identifier and interface type.
type domainKey struct {
	i, t reflect.Type
}

func keyOf[I comparable, T any]() domainKey {
	return domainKey{i: reflect.TypeFor[I](), t: reflect.TypeFor[T]()}
}
