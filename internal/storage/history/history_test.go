package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRecord(hash, account string, seq uint64) *Record {
	return &Record{
		Hash:      hash,
		Account:   account,
		TxType:    "Transfer",
		Result:    "tesSUCCESS",
		Applied:   true,
		LedgerSeq: seq,
		CloseTime: 1577836800,
		TxJSON:    `{"TransactionType":"Transfer"}`,
		MetaJSON:  `{"AffectedNodes":[]}`,
	}
}

func TestRecordAndLookup(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, testRecord("AA11", "0xabc", 1)))

	got, err := store.ByHash(ctx, "AA11")
	require.NoError(t, err)
	require.Equal(t, "0xabc", got.Account)
	require.Equal(t, uint64(1), got.LedgerSeq)
	require.True(t, got.Applied)

	_, err = store.ByHash(ctx, "FF00")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestByAccountNewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, testRecord("A1", "0xabc", 1)))
	require.NoError(t, store.Record(ctx, testRecord("A2", "0xabc", 2)))
	require.NoError(t, store.Record(ctx, testRecord("B1", "0xdef", 3)))

	recs, err := store.ByAccount(ctx, "0xabc", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "A2", recs[0].Hash)
	require.Equal(t, "A1", recs[1].Hash)

	recs, err = store.ByAccount(ctx, "0xabc", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestDuplicateHashRejected(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, testRecord("A1", "0xabc", 1)))
	require.Error(t, store.Record(ctx, testRecord("A1", "0xabc", 2)))
}

func TestCount(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, store.Record(ctx, testRecord("A1", "0xabc", 1)))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
}
