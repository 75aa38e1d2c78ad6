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

package strategy

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Local test types.
type A struct{}
type G[T any] struct{}
type W[T any] struct{ V T }

func TestReflectStrategy_ByValue(t *testing.T) {
	s := NewReflectStrategy(8)

	cases := []struct {
		name     string
		val      any
		expected string
		ok       bool
	}{
		{"plain struct", A{}, "strategy.A", true},
		{"ptr", &A{}, "strategy.A", true},
		{"builtin", 42, "int", true},
		{"generic keeps params", G[int]{}, "strategy.G[int]", true},
		{"distinct instantiation", G[string]{}, "strategy.G[string]", true},
		{"slice is not its element", []A{}, "", false},
		{"map", map[string]A{}, "", false},
		{"anonymous struct", struct{}{}, "", false},
		{"nil", nil, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := s.TryResolve(tc.val)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReflectStrategy_ByType(t *testing.T) {
	s := NewReflectStrategy(8)

	got, ok := s.TryResolveType(reflect.TypeOf(&A{}))
	assert.True(t, ok)
	assert.Equal(t, "strategy.A", got)

	got, ok = s.TryResolveType(reflect.TypeOf(W[G[int]]{}))
	assert.True(t, ok)
	assert.Equal(t, "strategy.W["+reflect.TypeOf(G[int]{}).PkgPath()+".G[int]]", got)

	_, ok = s.TryResolveType(nil)
	assert.False(t, ok)
}

func TestReflectStrategy_MaxUnwrap(t *testing.T) {
	tt := reflect.TypeOf((**A)(nil))

	// Too small MaxUnwrap -> cannot reach the named A.
	got, ok := NewReflectStrategy(1).TryResolveType(tt)
	assert.False(t, ok)
	assert.Empty(t, got)

	// Large enough -> success.
	got, ok = NewReflectStrategy(8).TryResolveType(tt)
	assert.True(t, ok)
	assert.Equal(t, "strategy.A", got)

	// Misses are memoized per limit.
	_, ok = typeNameCache.Load(cacheKey{t: tt, maxUnwrap: 1})
	assert.True(t, ok)
}

// This test stresses the memoization path under concurrency.
func TestReflectStrategy_Concurrent(t *testing.T) {
	s := NewReflectStrategy(8)

	types := []reflect.Type{
		reflect.TypeOf(A{}),
		reflect.TypeOf(&A{}),
		reflect.TypeOf([]A{}),
		reflect.TypeOf(G[int]{}),
		reflect.TypeOf(0),
	}
	expect := []string{"strategy.A", "strategy.A", "", "strategy.G[int]", "int"}

	workers := runtime.GOMAXPROCS(0) * 4
	errCh := make(chan string, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				idx := (i + id) % len(types)
				got, _ := s.TryResolveType(types[idx])
				if got != expect[idx] {
					errCh <- got
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)

	for got := range errCh {
		require.Fail(t, "unexpected name under concurrency", got)
	}
}
