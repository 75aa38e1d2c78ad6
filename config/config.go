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

package config

import (
	"go.uber.org/zap"

	"dirpx.dev/polyx/apis"
)

const (
	// DefaultPolicy represents the default for Policy.
	// Ambiguous identifiers are reported instead of silently resolved.
	DefaultPolicy = apis.Strict
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultFormat represents the default for Format.
	DefaultFormat = "json"
	// DefaultDeriveIdentifiers represents the default for DeriveIdentifiers.
	DefaultDeriveIdentifiers = false
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Policy:            DefaultPolicy,
		MaxUnwrap:         DefaultMaxUnwrap,
		Format:            DefaultFormat,
		DeriveIdentifiers: DefaultDeriveIdentifiers,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithPolicy sets the Policy option.
func WithPolicy(p apis.Policy) Option {
	return func(c *apis.Config) {
		c.Policy = p
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithFormat sets the Format option.
// An empty name resets to the default.
func WithFormat(name string) Option {
	return func(c *apis.Config) {
		if name == "" {
			name = DefaultFormat
		}
		c.Format = name
	}
}

// WithDeriveIdentifiers sets the DeriveIdentifiers option.
func WithDeriveIdentifiers(derive bool) Option {
	return func(c *apis.Config) {
		c.DeriveIdentifiers = derive
	}
}

// WithLogger sets the Logger option.
func WithLogger(l *zap.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = l
	}
}
