// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry memoizes expensive resources by key. Each key is created
// at most once per process; a failed creation is not remembered, so the next
// Get retries it.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Registry holds lazily created values of type T.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
}

// entry guards the creation of one key. Its lock is held while create runs,
// so callers for other keys proceed.
type entry[T any] struct {
	mu    sync.Mutex
	ready atomic.Bool
	value T
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]*entry[T])}
}

// Get returns the value stored under key, calling create to build it on the
// first request. Concurrent callers for the same key wait for the first
// creation rather than building duplicates.
func (r *Registry[T]) Get(key string, create func() (T, error)) (T, error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry[T]{}
		r.entries[key] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready.Load() {
		return e.value, nil
	}
	v, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	e.value = v
	e.ready.Store(true)
	return v, nil
}

// Len returns the number of created values.
func (r *Registry[T]) Len() int {
	return len(r.Keys())
}

// Keys returns the keys of created values, sorted.
func (r *Registry[T]) Keys() []string {
	r.mu.Lock()
	var keys []string
	for k, e := range r.entries {
		if e.ready.Load() {
			keys = append(keys, k)
		}
	}
	r.mu.Unlock()
	sort.Strings(keys)
	return keys
}
