package node

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/tx"
)

const (
	testOwner = "0x00112233445566778899aabbccddeeff00112233"
	testDest  = "0xffeeddccbbaa99887766554433221100ffeeddcc"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	n, err := Open(Options{
		Backend:      "memory",
		HistoryPath:  ":memory:",
		GenesisOwner: testOwner,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	return n
}

func TestOpenSeedsGenesis(t *testing.T) {
	n := newTestNode(t)

	cfg, err := n.TokenConfig()
	require.NoError(t, err)
	require.Equal(t, testOwner, addr.Address(cfg.Owner).String())
	require.Equal(t, uint32(2), cfg.FeePercent)
	require.Equal(t, uint32(5), cfg.BurnRate)

	supply, err := n.Supply()
	require.NoError(t, err)
	require.True(t, amount.FromBytes(supply.Burned).IsZero())

	owner := addr.MustParse(testOwner)
	balance, err := n.BalanceOf(owner)
	require.NoError(t, err)
	require.False(t, balance.IsZero())
}

func TestOpenFreshLedgerNeedsOwner(t *testing.T) {
	_, err := Open(Options{Backend: "memory"})
	require.Error(t, err)
}

func TestSubmitAppliesAndRecords(t *testing.T) {
	n := newTestNode(t)
	ctx := context.Background()

	events, cancel := n.Subscribe()
	defer cancel()

	res, err := n.Submit(ctx, tx.NewTransfer(testOwner, testDest, amount.Tokens(10)))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.Equal(t, tx.TesSUCCESS, res.Result)
	require.Equal(t, uint64(1), n.Sequence())

	dest := addr.MustParse(testDest)
	balance, err := n.BalanceOf(dest)
	require.NoError(t, err)
	require.True(t, balance.Eq(amount.MustParse("9800000000000000000")))

	select {
	case ev := <-events:
		require.Equal(t, "Transfer", ev.Type)
		require.Equal(t, testOwner, ev.Account)
		require.True(t, ev.Applied)
		require.Equal(t, uint64(1), ev.LedgerSeq)

		rec, err := n.Transaction(ctx, ev.Hash)
		require.NoError(t, err)
		require.Equal(t, "tesSUCCESS", rec.Result)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestSubmitRetryableNotPublished(t *testing.T) {
	n := newTestNode(t)
	ctx := context.Background()

	events, cancel := n.Subscribe()
	defer cancel()

	// A future sequence is retryable and must leave no trace.
	txn := tx.NewTransfer(testOwner, testDest, amount.Tokens(1))
	txn.SetSequence(7)

	res, err := n.Submit(ctx, txn)
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.Equal(t, tx.TerPRE_SEQ, res.Result)
	require.Zero(t, n.Sequence())

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmitJSONMalformed(t *testing.T) {
	n := newTestNode(t)

	_, err := n.SubmitJSON(context.Background(), []byte(`{"TransactionType":"Teleport"}`))
	require.Error(t, err)
}
