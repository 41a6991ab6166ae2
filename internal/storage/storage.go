// Package storage provides the key-value persistence adapters backing client state.
//
// The stores in this module treat persistence like browser local storage: reads and
// writes are synchronous, values are opaque JSON blobs, and the caller decides what a
// failure means.
package storage

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a synchronous key-value store.
type KV interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Remove(key string) error
}

// Memory is an in-process KV, used in tests and for ephemeral sessions.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Load returns a copy of the stored value.
func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of value.
func (m *Memory) Save(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes the key. Removing a missing key is not an error.
func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Namespaced prefixes every key, giving each visitor an isolated keyspace on a
// shared backend.
type Namespaced struct {
	kv     KV
	prefix string
}

// WithNamespace wraps kv so that keys become "<ns>:<key>".
func WithNamespace(kv KV, ns string) *Namespaced {
	return &Namespaced{kv: kv, prefix: ns + ":"}
}

func (n *Namespaced) Load(key string) ([]byte, error) { return n.kv.Load(n.prefix + key) }

func (n *Namespaced) Save(key string, value []byte) error { return n.kv.Save(n.prefix+key, value) }

func (n *Namespaced) Remove(key string) error { return n.kv.Remove(n.prefix + key) }
