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
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/builder"
	"dirpx.dev/polyx/codec"
	"dirpx.dev/polyx/config"
	"dirpx.dev/polyx/dispatch"
)

// Domain is the set of concrete types that may stand behind the interface
// type T, together with the registry that decodes them.
//
// The registry is built on first use by calling the build function given to
// NewDomain, and is read-only by convention afterwards.
type Domain[I comparable, T any] struct {
	name  string
	build func(reg apis.Registry[I, T])
	opts  []config.Option

	once sync.Once
	cfg  apis.Config
	reg  apis.Registry[I, T]
	res  apis.Resolver[I]
}

// NewDomain returns an unbound domain. build registers the concrete types;
// opts are applied on top of the global configuration when the domain is
// first used.
func NewDomain[I comparable, T any](name string, build func(reg apis.Registry[I, T]), opts ...config.Option) *Domain[I, T] {
	return &Domain[I, T]{name: name, build: build, opts: opts}
}

// Define is NewDomain followed by Bind.
//
//	var Shapes = polyx.Define("shapes", func(reg apis.Registry[string, Shape]) {
//	    registry.Add[Circle](reg, "circle")
//	    registry.Add[Square](reg, "square")
//	})
func Define[I comparable, T any](name string, build func(reg apis.Registry[I, T]), opts ...config.Option) *Domain[I, T] {
	d := NewDomain(name, build, opts...)
	Bind(d)
	return d
}

func (d *Domain[I, T]) init() {
	d.once.Do(func() {
		cfg := Config()
		for _, opt := range d.opts {
			opt(&cfg)
		}
		b := builder.New[I, T]()
		reg := b.BuildRegistry(cfg, d.name)
		if d.build != nil {
			d.build(reg)
		}
		d.cfg, d.reg, d.res = cfg, reg, b.BuildResolver(cfg, reg)
		cfg.Log().Debug("domain built",
			zap.String("domain", reg.Name()), zap.Int("identifiers", reg.Count()))
	})
}

// Name returns the diagnostic name of the domain.
func (d *Domain[I, T]) Name() string {
	if d.name != "" {
		return d.name
	}
	return d.Registry().Name()
}

// Config returns the configuration the domain was built with.
func (d *Domain[I, T]) Config() apis.Config {
	d.init()
	return d.cfg
}

// Registry returns the registry of the domain.
func (d *Domain[I, T]) Registry() apis.Registry[I, T] {
	d.init()
	return d.reg
}

// Resolver returns the identifier resolver of the domain.
func (d *Domain[I, T]) Resolver() apis.Resolver[I] {
	d.init()
	return d.res
}

// IdentifierOf returns the identifier v is encoded under.
func (d *Domain[I, T]) IdentifierOf(v T) (I, error) {
	var zero I
	if _, ok := any(v).(boxed); ok {
		return zero, apis.ErrRecursiveBox
	}
	id, ok := d.Resolver().Resolve(v)
	if !ok {
		return zero, fmt.Errorf("%w: %v in %s", apis.ErrNoIdentifier, reflect.TypeOf(v), d.Name())
	}
	return id, nil
}

// Serialize writes v to w as {id: v}.
func (d *Domain[I, T]) Serialize(w apis.MapWriter, v T) error {
	id, err := d.IdentifierOf(v)
	if err != nil {
		return err
	}
	return dispatch.Serialize(w, id, v)
}

// Deserialize reads one tagged value from r.
func (d *Domain[I, T]) Deserialize(r apis.MapReader) (T, error) {
	return dispatch.Deserialize(r, d.Registry())
}

// Marshal encodes v as a tagged document in format f.
func (d *Domain[I, T]) Marshal(f codec.Format, v T) ([]byte, error) {
	w := f.MapWriter()
	if err := d.Serialize(w, v); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// Unmarshal decodes a tagged document in format f.
func (d *Domain[I, T]) Unmarshal(f codec.Format, data []byte) (T, error) {
	var zero T
	r, err := f.MapReader(data)
	if err != nil {
		return zero, err
	}
	return d.Deserialize(r)
}

// MarshalSeq encodes vs as a sequence of tagged maps in format f.
func (d *Domain[I, T]) MarshalSeq(f codec.Format, vs []T) ([]byte, error) {
	items := make([]tagged[I, T], len(vs))
	for i, v := range vs {
		items[i] = tagged[I, T]{d: d, v: v}
	}
	return f.Marshal(items)
}

// UnmarshalSeq decodes a sequence of tagged maps in format f, keeping the
// order of the input. Nothing is returned if any element fails.
func (d *Domain[I, T]) UnmarshalSeq(f codec.Format, data []byte) ([]T, error) {
	sr, err := f.SeqReader(data)
	if err != nil {
		return nil, err
	}
	var out []T
	for i := 0; ; i++ {
		r, ok, err := sr.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		v, err := d.Deserialize(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	if err := sr.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes v with the domain bound for I and T in the format named
// by the global configuration.
func Marshal[I comparable, T any](v T) ([]byte, error) {
	d, f, err := resolveBound[I, T]()
	if err != nil {
		return nil, err
	}
	return d.Marshal(f, v)
}

// Unmarshal decodes data with the domain bound for I and T in the format
// named by the global configuration.
func Unmarshal[I comparable, T any](data []byte) (T, error) {
	var zero T
	d, f, err := resolveBound[I, T]()
	if err != nil {
		return zero, err
	}
	return d.Unmarshal(f, data)
}

func resolveBound[I comparable, T any]() (*Domain[I, T], codec.Format, error) {
	d, err := mustBound[I, T]()
	if err != nil {
		return nil, nil, err
	}
	f, err := Format("")
	if err != nil {
		return nil, nil, err
	}
	return d, f, nil
}

func mustBound[I comparable, T any]() (*Domain[I, T], error) {
	d, ok := Bound[I, T]()
	if !ok {
		return nil, fmt.Errorf("%w: %v", apis.ErrUnboundDomain, reflect.TypeFor[T]())
	}
	return d, nil
}
