package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/tx"
)

func TestTransferAppliesFeeAndBurn(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 1000)

	reserveBefore := env.Balance(env.Reserve())

	res := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(100)))
	RequireTxSuccess(t, res)

	// 100 gross: 2% fee = 2, recipient nets 98. The reserve keeps the
	// fee minus the 5% burn share (0.1).
	RequireBalanceTokens(t, env, alice, 900)
	RequireBalanceTokens(t, env, bob, 98)

	burn := amount.MustParse("100000000000000000") // 0.1 tokens
	expectedReserve := amount.Sub(amount.Add(reserveBefore, amount.Tokens(2)), burn)
	RequireBalance(t, env, env.Reserve(), expectedReserve)

	supply := env.Supply()
	require.True(t, amount.FromBytes(supply.Burned).Eq(burn),
		"expected burned supply %s, got %s",
		amount.Format(burn), amount.Format(amount.FromBytes(supply.Burned)))
	require.True(t, amount.FromBytes(supply.Total).Eq(env.Genesis.TotalSupply),
		"total supply must not change")
}

func TestTransferInsufficientBalance(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 10)

	res := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Tokens(11)))
	RequireTxFail(t, res, "tecINSUFFICIENT_BALANCE")

	// Nothing moved.
	RequireBalanceTokens(t, env, alice, 10)
	require.False(t, env.Exists(bob))
}

func TestTransferToSelfRejected(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	env.FundTokens(alice, 10)

	res := env.Submit(tx.NewTransfer(alice.ID(), alice.ID(), amount.Tokens(1)))
	RequireTxFail(t, res, "temREDUNDANT")
}

func TestTransferZeroAmountIsNoop(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 10)

	res := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.Zero()))
	RequireTxSuccess(t, res)
	RequireBalanceTokens(t, env, alice, 10)
}

func TestTinyTransferFeeRoundsToZero(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 1)

	reserveBefore := env.Balance(env.Reserve())

	// 10 base units at 2%: the fee truncates to zero, so the recipient
	// gets the full amount and nothing is burned.
	res := env.Submit(tx.NewTransfer(alice.ID(), bob.ID(), amount.New(10)))
	RequireTxSuccess(t, res)
	RequireBalance(t, env, bob, amount.New(10))
	RequireBalance(t, env, env.Reserve(), reserveBefore)
	require.True(t, amount.FromBytes(env.Supply().Burned).IsZero())
}

func TestApproveAndTransferFrom(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	carol := NewAccount("carol")
	env.FundTokens(alice, 500)

	RequireTxSuccess(t, env.Submit(tx.NewApprove(alice.ID(), bob.ID(), amount.Tokens(100))))
	require.True(t, env.Allowance(alice, bob).Eq(amount.Tokens(100)))

	RequireTxSuccess(t, env.Submit(tx.NewTransferFrom(bob.ID(), alice.ID(), carol.ID(), amount.Tokens(60))))

	RequireBalanceTokens(t, env, alice, 440)
	// 60 gross minus the 2% fee.
	expected := amount.Sub(amount.Tokens(60), amount.Percent(amount.Tokens(60), 2))
	RequireBalance(t, env, carol, expected)
	require.True(t, env.Allowance(alice, bob).Eq(amount.Tokens(40)))

	// The remaining allowance does not cover another 60.
	res := env.Submit(tx.NewTransferFrom(bob.ID(), alice.ID(), carol.ID(), amount.Tokens(60)))
	RequireTxFail(t, res, "tecINSUFFICIENT_ALLOWANCE")
}

func TestApproveZeroRevokes(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	bob := NewAccount("bob")
	env.FundTokens(alice, 10)

	RequireTxSuccess(t, env.Submit(tx.NewApprove(alice.ID(), bob.ID(), amount.Tokens(5))))
	RequireTxSuccess(t, env.Submit(tx.NewApprove(alice.ID(), bob.ID(), amount.Zero())))
	require.True(t, env.Allowance(alice, bob).IsZero())
}

func TestOwnerOnlyPolicyChanges(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")
	env.FundTokens(alice, 10)

	res := env.Submit(tx.NewSetFeePercent(alice.ID(), 10))
	RequireTxFail(t, res, "tecUNAUTHORIZED")

	res = env.Submit(tx.NewSetBurnRate(alice.ID(), 50))
	RequireTxFail(t, res, "tecUNAUTHORIZED")

	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 10)))
	RequireTxSuccess(t, env.Submit(tx.NewSetBurnRate(env.Owner.ID(), 50)))

	cfg := env.TokenConfig()
	require.Equal(t, uint32(10), cfg.FeePercent)
	require.Equal(t, uint32(50), cfg.BurnRate)
}

func TestSetFeePercentOverCapMalformed(t *testing.T) {
	env := NewEnv(t)
	res := env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 101))
	RequireTxFail(t, res, "temINVALID_AMOUNT")
}

func TestSetOwnerHandsOverControl(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")

	RequireTxSuccess(t, env.Submit(tx.NewSetOwner(env.Owner.ID(), alice.ID())))

	// The old owner lost control, the new one has it.
	res := env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 5))
	RequireTxFail(t, res, "tecUNAUTHORIZED")
	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(alice.ID(), 5)))
}

func TestMalformedTransactions(t *testing.T) {
	env := NewEnv(t)
	alice := NewAccount("alice")

	res := env.Submit(tx.NewTransfer("not-an-address", alice.ID(), amount.Tokens(1)))
	RequireTxFail(t, res, "temBAD_ACCOUNT")

	res = env.Submit(tx.NewTransfer(alice.ID(), "bogus", amount.Tokens(1)))
	RequireTxFail(t, res, "temBAD_ACCOUNT")

	bad := tx.NewTransfer(alice.ID(), NewAccount("bob").ID(), amount.Tokens(1))
	bad.Amount = "12x4"
	RequireTxFail(t, env.Submit(bad), "temINVALID_AMOUNT")
}
