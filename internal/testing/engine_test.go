package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/tx"
)

func TestSequenceEnforcedWhenSupplied(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 100)

	// A future sequence is a retry, a past one is final.
	txn := tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(1))
	txn.SetSequence(5)
	RequireTxFail(t, env.Submit(txn), "terPRE_SEQ")

	// Alice has never submitted, so her sequence is 0.
	txn = tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(1))
	txn.SetSequence(0)
	RequireTxSuccess(t, env.Submit(txn))

	// Sequence 0 is now consumed.
	txn = tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(1))
	txn.SetSequence(0)
	RequireTxFail(t, env.Submit(txn), "tefPAST_SEQ")

	txn = tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(1))
	txn.SetSequence(1)
	RequireTxSuccess(t, env.Submit(txn))
}

func TestFailedTransactionLeavesNoTrace(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 10)

	seqBefore := env.Ledger().Sequence()
	res := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(100)))
	RequireTxFail(t, res, "tecINSUFFICIENT_BALANCE")

	require.Equal(t, seqBefore, env.Ledger().Sequence(),
		"a failed transaction must not advance the ledger sequence")
	require.False(t, env.Exists(bob))
}

func TestSubmitFromJSON(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 100)

	raw := []byte(`{
		"TransactionType": "Transfer",
		"Account": "` + alice.ID() + `",
		"Destination": "` + bob.ID() + `",
		"Amount": "` + amount.Format(amount.Tokens(10)) + `"
	}`)
	txn, err := tx.FromJSON(raw)
	require.NoError(t, err)
	require.Equal(t, tx.TypeTransfer, txn.TxType())

	RequireTxSuccess(t, env.Submit(txn))
	expected := amount.Sub(amount.Tokens(10), amount.Percent(amount.Tokens(10), 2))
	RequireBalance(t, env, bob, expected)
}

func TestFromJSONUnknownType(t *testing.T) {
	_, err := tx.FromJSON([]byte(`{"TransactionType": "Mint", "Account": "0x00"}`))
	require.Error(t, err)
}

func TestTransactionHashStable(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 100)

	r1 := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(1)))
	r2 := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(1)))
	RequireTxSuccess(t, r1)
	RequireTxSuccess(t, r2)

	// Identical payloads hash identically; the hash covers only the
	// transaction fields.
	require.Equal(t, r1.Hash, r2.Hash)

	r3 := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(2)))
	RequireTxSuccess(t, r3)
	require.NotEqual(t, r1.Hash, r3.Hash)
}
