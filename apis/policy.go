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

import (
	"fmt"
	"strings"
)

// Policy controls how a Registry resolves an identifier that was registered
// more than once.
//
// # Overview
//
// Registration never fails, so several independent packages may claim the
// same identifier without noticing. Policy decides what Lookup does about
// it. The zero value is Strict.
//
// # Values
//
//   - Strict: more than one registration is an error at lookup time.
//   - FirstWins: the earliest registration is used, later ones are ignored.
//   - LastWins: the latest registration replaces earlier ones.
//
// FirstWins and LastWins are only safe when duplicates are known to be
// identical functions. With registrations spread over init functions of
// several packages the order depends on the import graph, and changing an
// unrelated import can change which function wins.
//
// # Contract
//
//   - Policy values MUST be treated as a stable, public API; new values may be
//     added, existing values MUST NOT change meaning.
//   - Policy values are plain integers and safe to share between goroutines.
type Policy int

const (
	// Strict reports ErrMultipleRegistrations for ambiguous identifiers.
	Strict Policy = iota

	// FirstWins resolves ambiguous identifiers to the first registration.
	FirstWins

	// LastWins resolves ambiguous identifiers to the last registration.
	LastWins
)

// String returns a human-readable representation of the Policy value.
//
// Known values map to "Strict", "FirstWins" and "LastWins". Unknown values
// render as "Unknown(<n>)" and never panic, so corrupted values can still be
// surfaced in logs.
func (p Policy) String() string {
	switch p {
	case Strict:
		return "Strict"
	case FirstWins:
		return "FirstWins"
	case LastWins:
		return "LastWins"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParsePolicy parses a textual representation of a Policy.
//
// Matching is case-insensitive, surrounding whitespace is ignored, and the
// separators '-' and '_' are optional, so "first-wins", "FIRST_WINS" and
// "FirstWins" are equivalent. On failure it returns Strict and a non-nil
// error.
func ParsePolicy(s string) (Policy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Strict, fmt.Errorf("polyx: empty policy")
	}

	key := strings.NewReplacer("-", "", "_", "").Replace(strings.ToUpper(trimmed))
	switch key {
	case "STRICT":
		return Strict, nil
	case "FIRSTWINS", "FIRST":
		return FirstWins, nil
	case "LASTWINS", "LAST":
		return LastWins, nil
	default:
		return Strict, fmt.Errorf("polyx: unknown policy %q", s)
	}
}

// MustParsePolicy is like ParsePolicy but panics on invalid input.
// It is intended for hard-coded values and tests.
func MustParsePolicy(s string) Policy {
	p, err := ParsePolicy(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalText implements encoding.TextMarshaler.
// Unknown values are rejected instead of persisting an "Unknown(...)" form.
func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case Strict, FirstWins, LastWins:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("polyx: cannot marshal unknown policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
// On failure *p is left unchanged.
func (p *Policy) UnmarshalText(text []byte) error {
	value, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = value
	return nil
}
