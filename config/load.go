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
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"dirpx.dev/polyx/apis"
)

// ErrUnknownSource is returned by Load for an unsupported document format.
var ErrUnknownSource = errors.New("config: unknown source format")

// Load reads a configuration document in the given format ("yaml", "yml"
// or "toml") and applies it on top of DefaultConfig. Keys missing from the
// document keep their defaults; unknown keys are rejected.
//
//	policy: first-wins
//	max_unwrap: 4
//	format: cbor
//	derive_identifiers: true
func Load(format string, data []byte) (apis.Config, error) {
	raw := map[string]any{}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return apis.Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return apis.Config{}, fmt.Errorf("config: parse toml: %w", err)
		}
	default:
		return apis.Config{}, fmt.Errorf("%w: %q", ErrUnknownSource, format)
	}

	cfg := DefaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return apis.Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return apis.Config{}, fmt.Errorf("config: decode: %w", err)
	}

	return NewConfig(func(c *apis.Config) { *c = cfg }), nil
}
