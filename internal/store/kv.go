// Package store persists the tracker's collections and preferences to a
// key-value byte store. Backends: in-memory, SQLite/Postgres, Redis.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by KV.Get for a key that was never written.
var ErrNotFound = errors.New("store: key not found")

// KV is a byte-string key-value store.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes every entry; backends apply the batch atomically where they can.
	Put(ctx context.Context, entries map[string][]byte) error
	// Ping checks backend reachability.
	Ping(ctx context.Context) error
}

// Memory is a process-local KV for tests and throwaway sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores copies of every entry.
func (m *Memory) Put(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }
