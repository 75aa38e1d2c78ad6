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

// Package redisstore implements store.Backend on Redis hashes.
package redisstore

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"

	"dirpx.dev/polyx/store"
)

const (
	fieldData   = "data"
	fieldFormat = "format"
)

// Backend stores each entry as a hash with data and format fields.
type Backend struct {
	client redis.UniversalClient
}

// NewBackend wraps an existing redis client.
func NewBackend(client redis.UniversalClient) (*Backend, error) {
	if client == nil {
		return nil, errors.New("redisstore: client is nil")
	}
	return &Backend{client: client}, nil
}

// NewBackendWithOptions creates a client from options and wraps it.
func NewBackendWithOptions(options *redis.Options) (*Backend, error) {
	if options == nil {
		return nil, errors.New("redisstore: redis options are required")
	}
	return NewBackend(redis.NewClient(options))
}

// Set replaces the hash at key. A zero TTL leaves the key without expiry.
func (b *Backend) Set(ctx context.Context, key string, e store.Entry) error {
	_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, map[string]any{
			fieldData:   e.Data,
			fieldFormat: e.Format,
		})
		if e.TTL > 0 {
			p.Expire(ctx, key, e.TTL)
		}
		return nil
	})
	return err
}

// Get reads the hash at key.
func (b *Backend) Get(ctx context.Context, key string) (store.Entry, error) {
	result, err := b.client.HGetAll(ctx, key).Result()
	if err != nil {
		return store.Entry{}, err
	}
	if len(result) == 0 {
		return store.Entry{}, store.ErrNotFound
	}

	e := store.Entry{
		Data:   []byte(result[fieldData]),
		Format: result[fieldFormat],
	}
	ttl, err := b.client.TTL(ctx, key).Result()
	if err != nil {
		return store.Entry{}, err
	}
	if ttl > 0 {
		e.TTL = ttl
	}
	return e, nil
}

// Delete removes key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// Close closes the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}
