// Package ledger maintains the authoritative ledger state over a key-value
// store, with an LRU read cache in front of it.
package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/takulai/takd/internal/core/ledger/keylet"
	"github.com/takulai/takd/internal/storage/kv"
)

// DefaultCacheSize is the default number of state entries kept in the read cache.
const DefaultCacheSize = 16384

// Key prefixes in the underlying store.
var (
	statePrefix = []byte("s")
	metaSeqKey  = []byte("m/seq")
)

// ErrEntryExists is returned when inserting over an existing entry.
var ErrEntryExists = errors.New("ledger: entry already exists")

// ErrEntryNotFound is returned when updating or erasing a missing entry.
var ErrEntryNotFound = errors.New("ledger: entry not found")

// Ledger provides read/write access to the ledger state.
// It satisfies the transaction engine's state view.
type Ledger struct {
	mu    sync.RWMutex
	db    kv.DB
	cache *lru.Cache[[32]byte, []byte]
	seq   uint64
}

// Open creates a Ledger over the given store, restoring the applied
// transaction sequence from it.
func Open(db kv.DB) (*Ledger, error) {
	cache, err := lru.New[[32]byte, []byte](DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	l := &Ledger{db: db, cache: cache}

	raw, err := db.Read(context.Background(), metaSeqKey)
	switch {
	case err == nil && len(raw) == 8:
		l.seq = binary.BigEndian.Uint64(raw)
	case errors.Is(err, kv.ErrKeyNotFound):
		// Fresh store.
	case err != nil:
		return nil, fmt.Errorf("ledger: restore sequence: %w", err)
	}

	return l, nil
}

func stateKey(k keylet.Keylet) []byte {
	out := make([]byte, 0, len(statePrefix)+32)
	out = append(out, statePrefix...)
	return append(out, k.Key[:]...)
}

// Read returns the entry data for k, or nil when the entry does not exist.
func (l *Ledger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.RLock()
	if data, ok := l.cache.Get(k.Key); ok {
		l.mu.RUnlock()
		return data, nil
	}
	l.mu.RUnlock()

	data, err := l.db.Read(context.Background(), stateKey(k))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache.Add(k.Key, data)
	l.mu.Unlock()
	return data, nil
}

// Exists checks if an entry exists.
func (l *Ledger) Exists(k keylet.Keylet) (bool, error) {
	data, err := l.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Insert adds a new entry. It fails if the entry already exists.
func (l *Ledger) Insert(k keylet.Keylet, data []byte) error {
	exists, err := l.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}
	return l.put(k, data)
}

// Update modifies an existing entry.
func (l *Ledger) Update(k keylet.Keylet, data []byte) error {
	exists, err := l.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrEntryNotFound
	}
	return l.put(k, data)
}

func (l *Ledger) put(k keylet.Keylet, data []byte) error {
	if err := l.db.Write(context.Background(), stateKey(k), data); err != nil {
		return err
	}
	l.mu.Lock()
	l.cache.Add(k.Key, data)
	l.mu.Unlock()
	return nil
}

// Erase removes an entry.
func (l *Ledger) Erase(k keylet.Keylet) error {
	if err := l.db.Delete(context.Background(), stateKey(k)); err != nil {
		return err
	}
	l.mu.Lock()
	l.cache.Remove(k.Key)
	l.mu.Unlock()
	return nil
}

// ForEach iterates over all state entries.
// If fn returns false, iteration stops early.
func (l *Ledger) ForEach(fn func(key [32]byte, data []byte) bool) error {
	end := append(append([]byte{}, statePrefix...), 0xff)
	iter, err := l.db.Iterator(context.Background(), statePrefix, end)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		raw := iter.Key()
		if len(raw) != len(statePrefix)+32 {
			continue
		}
		var key [32]byte
		copy(key[:], raw[len(statePrefix):])
		if !fn(key, iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Sequence returns the number of transactions applied so far.
func (l *Ledger) Sequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// BumpSequence increments and persists the applied transaction sequence.
func (l *Ledger) BumpSequence() error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, seq)
	return l.db.Write(context.Background(), metaSeqKey, raw)
}
