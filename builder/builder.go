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

package builder

import (
	"go.uber.org/zap"

	"dirpx.dev/polyx/apis"
	"dirpx.dev/polyx/registry"
	"dirpx.dev/polyx/resolver"
	"dirpx.dev/polyx/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New[I comparable, T any]() apis.Builder[I, T] {
	return &builder[I, T]{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder[I comparable, T any] struct{}

// BuildRegistry builds and returns a new, empty apis.Registry named name.
func (b *builder[I, T]) BuildRegistry(cfg apis.Config, name string) apis.Registry[I, T] {
	reg := registry.New[I, T](name, cfg)
	cfg.Log().Debug("registry built",
		zap.String("registry", reg.Name()), zap.Stringer("policy", cfg.Policy))
	return reg
}

// BuildResolver builds and returns the identifier resolver for reg.
// The chain is Object -> Registry, followed by Reflect when
// cfg.DeriveIdentifiers is set and identifiers are strings.
func (b *builder[I, T]) BuildResolver(cfg apis.Config, reg apis.Registry[I, T]) apis.Resolver[I] {
	strats := []apis.Strategy[I]{
		strategy.NewObjectStrategy[I](),
		strategy.NewRegistryStrategy(reg),
	}
	if cfg.DeriveIdentifiers {
		if s, ok := any(strategy.NewReflectStrategy(cfg.MaxUnwrap)).(apis.Strategy[I]); ok {
			strats = append(strats, s)
		} else {
			cfg.Log().Warn("identifier derivation requires string identifiers",
				zap.String("registry", reg.Name()))
		}
	}
	return resolver.New(strats...)
}
