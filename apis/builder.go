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

// Builder composes a Registry and a Resolver from a Config.
type Builder[I comparable, T any] interface {
	// BuildRegistry constructs an empty Registry named name for Config.
	BuildRegistry(cfg Config, name string) Registry[I, T]
	// BuildResolver constructs a Resolver for Config that consults reg.
	BuildResolver(cfg Config, reg Registry[I, T]) Resolver[I]
}
