// ABOUTME: In-memory credential store backed by sync.Map
// ABOUTME: Used by tests and by the memory credential-store mode

package tokenstore

import (
	"log/slog"
	"sync"
)

// Memory keeps values for the lifetime of the process.
type Memory struct {
	store sync.Map
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(key string) (string, bool, error) {
	val, ok := m.store.Load(key)
	if !ok {
		slog.Debug("Credential miss", "key", key)
		return "", false, nil
	}
	return val.(string), true, nil
}

func (m *Memory) Set(key, value string) error {
	m.store.Store(key, value)
	slog.Debug("Credential set", "key", key)
	return nil
}

func (m *Memory) Remove(key string) error {
	m.store.Delete(key)
	return nil
}

// Len returns the number of stored keys
func (m *Memory) Len() int {
	n := 0
	m.store.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
