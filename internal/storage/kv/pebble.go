package kv

import (
	"context"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/takulai/takd/internal/storage/kv/compression"
)

// PebbleDB implements DB backed by cockroachdb/pebble.
type PebbleDB struct {
	mu         sync.RWMutex
	db         *pebble.DB
	compressor compression.Compressor
	closed     bool
}

// OpenPebble opens or creates a pebble store at path. compress names the
// value compression, lz4 or none.
func OpenPebble(path string, compress string) (*PebbleDB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleDB{
		db:         db,
		compressor: compression.ForName(compress),
	}, nil
}

// Read returns the value for key, or ErrKeyNotFound.
func (p *PebbleDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	return p.compressor.Decompress(value)
}

// Write stores a value under key.
func (p *PebbleDB) Write(ctx context.Context, key []byte, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	compressed, err := p.compressor.Compress(value)
	if err != nil {
		return err
	}
	return p.db.Set(key, compressed, pebble.Sync)
}

// Delete removes a key. Deleting a missing key is not an error.
func (p *PebbleDB) Delete(ctx context.Context, key []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.db.Delete(key, pebble.Sync)
}

// Batch applies a set of operations atomically.
func (p *PebbleDB) Batch(ctx context.Context, ops []BatchOperation) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			compressed, err := p.compressor.Compress(op.Value)
			if err != nil {
				return err
			}
			if err := batch.Set(op.Key, compressed, nil); err != nil {
				return err
			}
		case BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return ErrBatchOperationFailed
		}
	}

	return batch.Commit(pebble.Sync)
}

// Iterator traverses keys in [start, end).
func (p *PebbleDB) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}
	return &pebbleIterator{iter: iter, compressor: p.compressor, first: true}, nil
}

// Close closes the store.
func (p *PebbleDB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

type pebbleIterator struct {
	iter       *pebble.Iterator
	compressor compression.Compressor
	first      bool
	err        error
}

func (it *pebbleIterator) Next() bool {
	if it.first {
		it.first = false
		return it.iter.First()
	}
	return it.iter.Next()
}

func (it *pebbleIterator) Key() []byte {
	key := it.iter.Key()
	out := make([]byte, len(key))
	copy(out, key)
	return out
}

func (it *pebbleIterator) Value() []byte {
	value, err := it.compressor.Decompress(it.iter.Value())
	if err != nil {
		it.err = err
		return nil
	}
	return value
}

func (it *pebbleIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	return it.iter.Error()
}

func (it *pebbleIterator) Close() error {
	return it.iter.Close()
}
