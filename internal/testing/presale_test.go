package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/tx"
)

// oneEth is 10^18 wei.
var oneEth = amount.Tokens(1)

// expectedTokens mirrors the sale conversion: wei * ethPrice / tokenPrice,
// truncating.
func expectedTokens(t *testing.T, env *Env, wei *amount.Amount) *amount.Amount {
	t.Helper()
	sale := env.SaleState()
	out := new(amount.Amount).Mul(wei, amount.New(sale.EthPriceUsdCents))
	return out.Div(out, amount.New(sale.TokenPriceUsdCents))
}

func TestBuyWithEthRecordsPurchase(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	want := expectedTokens(t, env, oneEth)
	RequireTxSuccess(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)))

	purchase := env.Purchase(buyer)
	require.NotNil(t, purchase)
	require.True(t, amount.FromBytes(purchase.Tokens).Eq(want))
	require.True(t, amount.FromBytes(purchase.EthContributed).Eq(oneEth))

	sale := env.SaleState()
	require.True(t, amount.FromBytes(sale.TokensSold).Eq(want))
	require.True(t, amount.FromBytes(sale.EthRaised).Eq(oneEth))

	// A second buy accumulates into the same record.
	RequireTxSuccess(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)))
	purchase = env.Purchase(buyer)
	require.True(t, amount.FromBytes(purchase.Tokens).Eq(amount.Add(want, want)))
}

func TestBuyOutsideWindowRejected(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	// The default window runs 90 days from genesis.
	env.Clock().Advance(91 * 24 * time.Hour)
	RequireTxFail(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)), "tecSALE_NOT_OPEN")
}

func TestBuyAfterFinalizeRejected(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	RequireTxSuccess(t, env.Submit(tx.NewFinalizeSale(env.Owner.ID())))
	RequireTxFail(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)), "tecSALE_NOT_OPEN")
}

func TestHardcapRejectsWholePurchase(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	// Raise the ETH price so a moderate contribution would clear the
	// 10M token hardcap in one purchase.
	RequireTxSuccess(t, env.Submit(tx.NewSetEthPrice(env.Owner.ID(), 1259*20_000_000)))

	soldBefore := amount.FromBytes(env.SaleState().TokensSold)
	RequireTxFail(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)), "tecHARDCAP_EXCEEDED")

	// Full rejection: nothing was sold and no purchase exists.
	require.True(t, amount.FromBytes(env.SaleState().TokensSold).Eq(soldBefore))
	require.Nil(t, env.Purchase(buyer))
}

func TestSetEthPriceOwnerOnly(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	RequireTxFail(t, env.Submit(tx.NewSetEthPrice(buyer.ID(), 300_000)), "tecUNAUTHORIZED")
	RequireTxSuccess(t, env.Submit(tx.NewSetEthPrice(env.Owner.ID(), 300_000)))
	require.Equal(t, uint64(300_000), env.SaleState().EthPriceUsdCents)
}

func TestFinalizeSaleOnce(t *testing.T) {
	env := NewEnv(t)

	RequireTxFail(t, env.Submit(tx.NewFinalizeSale(NewAccount("mallory").ID())), "tecUNAUTHORIZED")

	RequireTxSuccess(t, env.Submit(tx.NewFinalizeSale(env.Owner.ID())))
	sale := env.SaleState()
	require.True(t, sale.Finalized)
	require.Equal(t, env.Now(), sale.FinalizedAt)

	RequireTxFail(t, env.Submit(tx.NewFinalizeSale(env.Owner.ID())), "tecALREADY_FINALIZED")
}

func TestClaimTokensAfterVesting(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	want := expectedTokens(t, env, oneEth)
	RequireTxSuccess(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)))

	// Not finalized yet.
	RequireTxFail(t, env.Submit(tx.NewClaimTokens(buyer.ID())), "tecNOT_FINALIZED")

	RequireTxSuccess(t, env.Submit(tx.NewFinalizeSale(env.Owner.ID())))

	// Vesting runs 365 days from finalization.
	env.Clock().Advance(100 * 24 * time.Hour)
	RequireTxFail(t, env.Submit(tx.NewClaimTokens(buyer.ID())), "tecVESTING_NOT_ELAPSED")

	env.Clock().Advance(266 * 24 * time.Hour)
	RequireTxSuccess(t, env.Submit(tx.NewClaimTokens(buyer.ID())))

	// Delivery goes through the fee path: the buyer nets 98%.
	fee := amount.Percent(want, 2)
	RequireBalance(t, env, buyer, amount.Sub(want, fee))

	// The claim is spent; the contribution record remains.
	purchase := env.Purchase(buyer)
	require.NotNil(t, purchase)
	require.True(t, amount.FromBytes(purchase.Tokens).IsZero())
	require.True(t, amount.FromBytes(purchase.EthContributed).Eq(oneEth))

	RequireTxFail(t, env.Submit(tx.NewClaimTokens(buyer.ID())), "tecNOTHING_TO_CLAIM")
}

func TestClaimTokensWithoutPurchase(t *testing.T) {
	env := NewEnv(t)
	RequireTxSuccess(t, env.Submit(tx.NewFinalizeSale(env.Owner.ID())))
	env.Clock().Advance(366 * 24 * time.Hour)

	RequireTxFail(t, env.Submit(tx.NewClaimTokens(NewAccount("nobody").ID())), "tecNOTHING_TO_CLAIM")
}

func TestWithdrawRaisedOnceAfterFinalize(t *testing.T) {
	env := NewEnv(t)
	buyer := NewAccount("buyer")

	RequireTxSuccess(t, env.Submit(tx.NewBuyWithETH(buyer.ID(), oneEth)))

	RequireTxFail(t, env.Submit(tx.NewWithdrawRaised(env.Owner.ID())), "tecNOT_FINALIZED")
	RequireTxFail(t, env.Submit(tx.NewWithdrawRaised(buyer.ID())), "tecUNAUTHORIZED")

	RequireTxSuccess(t, env.Submit(tx.NewFinalizeSale(env.Owner.ID())))
	RequireTxSuccess(t, env.Submit(tx.NewWithdrawRaised(env.Owner.ID())))
	require.True(t, env.SaleState().RaisedWithdrawn)

	RequireTxFail(t, env.Submit(tx.NewWithdrawRaised(env.Owner.ID())), "tecNOTHING_TO_CLAIM")
}
