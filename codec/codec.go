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

// Package codec adapts structured-data codecs to the cursor interfaces used
// by dispatch.
//
// Every format reads tagged maps key first and hands the same underlying
// stream to the payload decoder. Payloads are never buffered into an
// intermediate document before the identifier has been resolved, except by
// Proto, which carries the JSON data model inside google.protobuf.Value.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"dirpx.dev/polyx/apis"
)

var (
	// ErrUnknownFormat is returned when a format name or content type is not registered.
	ErrUnknownFormat = errors.New("codec: unknown format")
	// ErrTrailingData is returned when input continues after the top-level value.
	ErrTrailingData = errors.New("codec: trailing data after top-level value")
	// ErrUnsupportedKey is returned when an identifier cannot be written as a map key.
	ErrUnsupportedKey = errors.New("codec: unsupported map key type")
	// ErrNotSequence is returned by sequence readers for non-sequence input.
	ErrNotSequence = errors.New("codec: expected a sequence")
)

// Format is a structured-data codec able to stream tagged maps.
type Format interface {
	// Name returns the short name of the format ("json", "yaml", ...).
	Name() string
	// ContentType returns the MIME type of the format.
	ContentType() string
	// Marshal encodes v as a whole document.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes a whole document into v.
	Unmarshal(data []byte, v any) error
	// MapReader returns a reader over a document holding one map.
	MapReader(data []byte) (apis.MapReader, error)
	// SeqReader returns a reader over a document holding a sequence of maps.
	SeqReader(data []byte) (apis.SeqReader, error)
	// MapWriter returns a writer producing a document holding one map.
	MapWriter() Writer
}

// Writer is an apis.MapWriter that produces a complete document.
type Writer interface {
	apis.MapWriter
	// Bytes returns the encoded document once the map is closed.
	Bytes() ([]byte, error)
}

// Registry maps format names and content types to formats.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Format
	byType map[string]Format
}

// NewRegistry constructs a registry preloaded with the built-in formats.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Format), byType: make(map[string]Format)}
	r.Register(JSON())
	r.Register(YAML())
	r.Register(CBOR())
	r.Register(MsgPack())
	r.Register(Proto())
	return r
}

// Register adds f, replacing any format with the same name or content type.
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[strings.ToLower(f.Name())] = f
	r.byType[f.ContentType()] = f
}

// Get returns a format by name ("yaml") or content type ("application/yaml").
// Content types may carry parameters ("application/json; charset=utf-8").
func (r *Registry) Get(nameOrType string) (Format, error) {
	key := strings.TrimSpace(nameOrType)
	if i := strings.IndexByte(key, ';'); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.byName[strings.ToLower(key)]; ok {
		return f, nil
	}
	if f, ok := r.byType[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, nameOrType)
}

// Names returns the registered format names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

// value is the shared single-use guard of the format-specific value cursors.
type value struct {
	pending bool
}

// take marks the current value consumed, or reports it was already.
func (v *value) take() error {
	if !v.pending {
		return apis.ErrConsumed
	}
	v.pending = false
	return nil
}
