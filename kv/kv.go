// Package kv defines the byte-oriented key-value contract the settings
// service persists records through, along with a few store implementations:
// an in-memory map for tests and examples, a file-per-key directory store,
// and a SQLite-backed store. The service owns serialization; stores only see
// opaque payloads under fixed keys.
package kv

import "context"

// Store loads and saves opaque payloads under fixed keys. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns the payload stored under key; ok is false when the key
	// does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set overwrites the payload stored under key in full. Callers merge at
	// the record level before saving; there is no field-level merge here.
	Set(ctx context.Context, key string, value []byte) error
}
