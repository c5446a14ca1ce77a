// Package storage provides the key-value persistence capability the debug
// recorder keeps its flag and session history in.
package storage

import (
	"errors"
	"sync"
)

// Common errors
var (
	ErrClosed   = errors.New("store is closed")
	ErrEmptyKey = errors.New("key must not be empty")
)

// Store is a string blob key-value store with get/set/remove-by-key semantics.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes key.
func (m *MemoryStore) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
