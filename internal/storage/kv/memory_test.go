package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWriteDelete(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	_, err := db.Read(ctx, []byte("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, db.Write(ctx, []byte("a"), []byte("1")))
	got, err := db.Read(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)

	require.NoError(t, db.Delete(ctx, []byte("a")))
	_, err = db.Read(ctx, []byte("a"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryBatch(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []byte("old"), []byte("x")))

	err := db.Batch(ctx, []BatchOperation{
		{Type: BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: BatchDelete, Key: []byte("old")},
	})
	require.NoError(t, err)

	got, err := db.Read(ctx, []byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
	_, err = db.Read(ctx, []byte("old"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryIteratorRange(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	for _, k := range []string{"a/1", "a/2", "b/1", "c/1"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte(k)))
	}

	iter, err := db.Iterator(ctx, []byte("a"), []byte("b"))
	require.NoError(t, err)
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	require.Equal(t, []string{"a/1", "a/2"}, keys)
}

func TestMemoryClosed(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorIs(t, db.Write(ctx, []byte("a"), []byte("1")), ErrDBClosed)
	_, err := db.Read(ctx, []byte("a"))
	require.ErrorIs(t, err, ErrDBClosed)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("cassandra", "", "none")
	require.ErrorIs(t, err, ErrUnknownBackend)
}
