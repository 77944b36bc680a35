// Package store persists opaque byte records under /-separated keys. It backs
// snapshot persistence for sets; the records themselves are encoded by the
// caller.
package store

import "context"

// Record is a key and its raw bytes.
type Record struct {
	Key   string
	Value []byte
}

// Store reads and writes records. Implementations perform I/O on every call
// and are safe for concurrent use.
type Store interface {
	// List returns all keys.
	List(ctx context.Context) ([]string, error)
	// Load retrieves records for the given keys. A missing key fails the
	// whole call with ErrKeyNotFound.
	Load(ctx context.Context, keys ...string) ([]Record, error)
	// Save writes records, creating or overwriting as needed.
	Save(ctx context.Context, records ...Record) error
	// Delete removes records. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the backend.
	Close() error
}
