package kv

import (
	"context"
	"sync"
)

// Memory is a minimal in-memory Store intended for tests and examples. It
// makes no persistence assumptions and copies payloads on both sides so
// callers cannot mutate stored state.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: map[string][]byte{}}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	value, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.records[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}
