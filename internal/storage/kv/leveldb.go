package kv

import (
	"context"
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/takulai/takd/internal/storage/kv/compression"
)

// LevelDB implements DB backed by syndtr/goleveldb.
type LevelDB struct {
	mu         sync.RWMutex
	db         *leveldb.DB
	compressor compression.Compressor
	closed     bool
}

// OpenLevelDB opens or creates a leveldb store at path. compress names
// the value compression, lz4 or none.
func OpenLevelDB(path string, compress string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{
		db:         db,
		compressor: compression.ForName(compress),
	}, nil
}

// Read returns the value for key, or ErrKeyNotFound.
func (l *LevelDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, ldberrors.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return l.compressor.Decompress(value)
}

// Write stores a value under key.
func (l *LevelDB) Write(ctx context.Context, key []byte, value []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	compressed, err := l.compressor.Compress(value)
	if err != nil {
		return err
	}
	return l.db.Put(key, compressed, nil)
}

// Delete removes a key. Deleting a missing key is not an error.
func (l *LevelDB) Delete(ctx context.Context, key []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.Delete(key, nil)
}

// Batch applies a set of operations atomically.
func (l *LevelDB) Batch(ctx context.Context, ops []BatchOperation) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			compressed, err := l.compressor.Compress(op.Value)
			if err != nil {
				return err
			}
			batch.Put(op.Key, compressed)
		case BatchDelete:
			batch.Delete(op.Key)
		default:
			return ErrBatchOperationFailed
		}
	}
	return l.db.Write(batch, nil)
}

// Iterator traverses keys in [start, end).
func (l *LevelDB) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrDBClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &levelIterator{iter: iter, compressor: l.compressor}, nil
}

// Close closes the store.
func (l *LevelDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

type levelIterator struct {
	iter       iterator.Iterator
	compressor compression.Compressor
	err        error
}

func (it *levelIterator) Next() bool {
	return it.iter.Next()
}

func (it *levelIterator) Key() []byte {
	key := it.iter.Key()
	out := make([]byte, len(key))
	copy(out, key)
	return out
}

func (it *levelIterator) Value() []byte {
	value, err := it.compressor.Decompress(it.iter.Value())
	if err != nil {
		it.err = err
		return nil
	}
	return value
}

func (it *levelIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	return it.iter.Error()
}

func (it *levelIterator) Close() error {
	it.iter.Release()
	return nil
}
