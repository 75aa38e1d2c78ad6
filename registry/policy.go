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

import "dirpx.dev/polyx/apis"

// pick selects one function from the registrations of a single identifier.
// It reports false when the policy does not allow resolving the ambiguity.
func pick[T any](p apis.Policy, fns []apis.DeserializeFn[T]) (apis.DeserializeFn[T], bool) {
	switch {
	case len(fns) == 0:
		return nil, false
	case len(fns) == 1:
		return fns[0], true
	}

	switch p {
	case apis.FirstWins:
		return fns[0], true
	case apis.LastWins:
		return fns[len(fns)-1], true
	default:
		return nil, false
	}
}
