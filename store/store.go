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

// Package store persists values of a polymorphic domain in a key-value
// backend. Each entry keeps the name of the format it was written in, so a
// store can change its write format without losing older entries.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dirpx.dev/polyx"
	"dirpx.dev/polyx/codec"
)

// ErrNotFound is returned by backends and by Store.Get for a missing key.
var ErrNotFound = errors.New("store: not found")

// Entry is the encoded form of one stored value.
type Entry struct {
	Data   []byte
	Format string
	// TTL is the remaining lifetime; zero means no expiry.
	TTL time.Duration
}

// Backend is the key-value storage used by Store.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

type options struct {
	format string
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*options)

// WithFormat selects the format new entries are written in.
// By default the format named by the domain configuration is used.
func WithFormat(name string) Option {
	return func(o *options) { o.format = name }
}

// WithPrefix prepends prefix to every key.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithTTL sets the lifetime of written entries.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithLogger sets the logger. It defaults to the domain's logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// Store reads and writes values of T through a Domain.
type Store[I comparable, T any] struct {
	domain  *polyx.Domain[I, T]
	backend Backend
	format  codec.Format
	prefix  string
	ttl     time.Duration
	log     *zap.Logger
}

// New returns a store for d on top of b.
func New[I comparable, T any](d *polyx.Domain[I, T], b Backend, opts ...Option) (*Store[I, T], error) {
	if d == nil {
		return nil, errors.New("store: domain is nil")
	}
	if b == nil {
		return nil, errors.New("store: backend is nil")
	}

	o := options{format: d.Config().Format}
	for _, opt := range opts {
		opt(&o)
	}
	f, err := polyx.Format(o.format)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if o.log == nil {
		o.log = d.Config().Log()
	}

	return &Store[I, T]{
		domain:  d,
		backend: b,
		format:  f,
		prefix:  o.prefix,
		ttl:     o.ttl,
		log:     o.log.With(zap.String("domain", d.Name()), zap.String("format", f.Name())),
	}, nil
}

// Put encodes v and stores it under key.
func (s *Store[I, T]) Put(ctx context.Context, key string, v T) error {
	data, err := s.domain.Marshal(s.format, v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	e := Entry{Data: data, Format: s.format.Name(), TTL: s.ttl}
	if err := s.backend.Set(ctx, s.prefix+key, e); err != nil {
		s.log.Error("backend set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	return nil
}

// Get loads and decodes the value stored under key. A missing key yields
// an error matching ErrNotFound.
func (s *Store[I, T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	e, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("backend get failed", zap.String("key", key), zap.Error(err))
		}
		return zero, fmt.Errorf("store: get %q: %w", key, err)
	}

	f := s.format
	if e.Format != "" && e.Format != f.Name() {
		if f, err = polyx.Format(e.Format); err != nil {
			return zero, fmt.Errorf("store: get %q: %w", key, err)
		}
	}
	v, err := s.domain.Unmarshal(f, e.Data)
	if err != nil {
		return zero, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return v, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store[I, T]) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.prefix+key); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("backend delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("store: delete %q: %w", key, err)
	}
	return nil
}
