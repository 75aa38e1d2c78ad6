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

import "go.uber.org/zap"

// Config carries read-only knobs that influence registries and dispatch.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Policy selects how a registry resolves identifiers registered more than once.
	Policy Policy `mapstructure:"policy"`

	// MaxUnwrap limits pointer unwrapping when a concrete type is normalized
	// for identifier lookup (**T -> *T -> T).
	MaxUnwrap int `mapstructure:"max_unwrap"`

	// Format is the name of the default codec format (e.g. "json").
	Format string `mapstructure:"format"`

	// DeriveIdentifiers enables the reflect-based fallback that names
	// string-identified types "pkg.Type" when nothing else resolves them.
	DeriveIdentifiers bool `mapstructure:"derive_identifiers"`

	// Logger receives registration and construction diagnostics.
	// A nil Logger discards everything.
	Logger *zap.Logger `mapstructure:"-"`
}

// Log returns the configured logger, or a no-op logger when none is set.
func (c Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
