package kv

import "errors"

var (
	// ErrDBClosed is returned when operating on a closed store.
	ErrDBClosed = errors.New("kv: store is closed")

	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("kv: key not found")

	// ErrUnknownBackend is returned for an unrecognized backend name.
	ErrUnknownBackend = errors.New("kv: unknown backend")

	// ErrBatchOperationFailed is returned when a batch cannot be applied.
	ErrBatchOperationFailed = errors.New("kv: batch operation failed")
)
