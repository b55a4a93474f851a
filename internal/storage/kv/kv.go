// Package kv defines the key-value store abstraction backing the ledger,
// with pebble and goleveldb implementations.
package kv

import (
	"context"
)

// DB defines the basic operations any kv backend must support.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies a set of operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator traverses keys in [start, end). A nil end means no upper bound.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	Close() error
}

// Iterator allows traversing over kv entries.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Backend names accepted by Open.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Open creates a DB of the named backend rooted at path. compress names
// the value compression (lz4 or none); the memory backend ignores both.
func Open(backend, path, compress string) (DB, error) {
	switch backend {
	case BackendPebble:
		return OpenPebble(path, compress)
	case BackendLevelDB:
		return OpenLevelDB(path, compress)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, ErrUnknownBackend
	}
}
