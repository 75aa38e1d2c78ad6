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

package store

import (
	"bytes"
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	data    []byte
	format  string
	expires time.Time
}

// Memory is an in-process Backend. Expired entries are dropped lazily.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: map[string]memoryItem{}, now: time.Now}
}

// Get returns the entry stored under key.
func (m *Memory) Get(ctx context.Context, key string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, ErrNotFound
	}

	e := Entry{Data: bytes.Clone(it.data), Format: it.format}
	if !it.expires.IsZero() {
		e.TTL = it.expires.Sub(m.now())
		if e.TTL <= 0 {
			m.mu.Lock()
			if cur, ok := m.items[key]; ok && cur.expires.Equal(it.expires) {
				delete(m.items, key)
			}
			m.mu.Unlock()
			return Entry{}, ErrNotFound
		}
	}
	return e, nil
}

// Set stores e under key, replacing any previous entry.
func (m *Memory) Set(ctx context.Context, key string, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	it := memoryItem{data: bytes.Clone(e.Data), format: e.Format}
	if e.TTL > 0 {
		it.expires = m.now().Add(e.TTL)
	}
	m.mu.Lock()
	m.items[key] = it
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
