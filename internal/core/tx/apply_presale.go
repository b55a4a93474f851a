package tx

import (
	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// requireSaleOwner loads the sale state and checks that the source
// account is the sale owner.
func requireSaleOwner(ctx *ApplyContext) (*entry.SaleState, Result) {
	sale, err := loadSaleState(ctx.View)
	if err != nil {
		return nil, TefINTERNAL
	}
	if addr.Address(sale.Owner) != ctx.SourceID {
		return nil, TecUNAUTHORIZED
	}
	return sale, TesSUCCESS
}

func (t *SetEthPrice) Apply(ctx *ApplyContext) Result {
	sale, result := requireSaleOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	sale.EthPriceUsdCents = t.PriceUsdCents
	if err := saveSaleState(ctx.View, sale); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// saleTokens converts a wei contribution into token base units at the
// given prices, truncating toward zero.
func saleTokens(value *amount.Amount, ethPriceUsdCents, tokenPriceUsdCents uint64) *amount.Amount {
	out := new(amount.Amount).Mul(value, amount.New(ethPriceUsdCents))
	return out.Div(out, amount.New(tokenPriceUsdCents))
}

// Apply records the contribution and the tokens it buys. A purchase that
// would push total sales past the hardcap is rejected whole.
func (t *BuyWithETH) Apply(ctx *ApplyContext) Result {
	value, err := amount.Parse(t.Value)
	if err != nil {
		return TemINVALID_AMOUNT
	}

	sale, err := loadSaleState(ctx.View)
	if err != nil {
		return TefINTERNAL
	}

	now := ctx.Now()
	if sale.Finalized || now < sale.Start || now > sale.End {
		return TecSALE_NOT_OPEN
	}

	tokens := saleTokens(value, sale.EthPriceUsdCents, sale.TokenPriceUsdCents)
	if tokens.IsZero() {
		return TemINVALID_AMOUNT
	}

	sold := amount.Add(amount.FromBytes(sale.TokensSold), tokens)
	if amount.FromBytes(sale.Hardcap).Lt(sold) {
		return TecHARDCAP_EXCEEDED
	}

	k := keylet.Purchase(ctx.SourceID)
	data, err := ctx.View.Read(k)
	if err != nil {
		return TefINTERNAL
	}
	purchase := &entry.Purchase{}
	if data != nil {
		purchase, err = entry.DecodePurchase(data)
		if err != nil {
			return TefINTERNAL
		}
	}
	purchase.EthContributed = amount.Bytes(amount.Add(amount.FromBytes(purchase.EthContributed), value))
	purchase.Tokens = amount.Bytes(amount.Add(amount.FromBytes(purchase.Tokens), tokens))
	purchase.PurchasedAt = now

	encoded, err := entry.EncodePurchase(purchase)
	if err != nil {
		return TefINTERNAL
	}
	if data == nil {
		err = ctx.View.Insert(k, encoded)
	} else {
		err = ctx.View.Update(k, encoded)
	}
	if err != nil {
		return TefINTERNAL
	}

	sale.TokensSold = amount.Bytes(sold)
	sale.EthRaised = amount.Bytes(amount.Add(amount.FromBytes(sale.EthRaised), value))
	if err := saveSaleState(ctx.View, sale); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

func (t *FinalizeSale) Apply(ctx *ApplyContext) Result {
	sale, result := requireSaleOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	if sale.Finalized {
		return TecALREADY_FINALIZED
	}
	sale.Finalized = true
	sale.FinalizedAt = ctx.Now()
	if err := saveSaleState(ctx.View, sale); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Apply delivers the buyer's purchased tokens from the presale inventory
// account once vesting has elapsed.
func (t *ClaimTokens) Apply(ctx *ApplyContext) Result {
	sale, err := loadSaleState(ctx.View)
	if err != nil {
		return TefINTERNAL
	}
	if !sale.Finalized {
		return TecNOT_FINALIZED
	}
	if ctx.Now() < sale.FinalizedAt+sale.VestingSeconds {
		return TecVESTING_NOT_ELAPSED
	}

	k := keylet.Purchase(ctx.SourceID)
	data, err := ctx.View.Read(k)
	if err != nil {
		return TefINTERNAL
	}
	if data == nil {
		return TecNOTHING_TO_CLAIM
	}
	purchase, err := entry.DecodePurchase(data)
	if err != nil {
		return TefINTERNAL
	}
	tokens := amount.FromBytes(purchase.Tokens)
	if tokens.IsZero() {
		return TecNOTHING_TO_CLAIM
	}

	if result := moveTokens(ctx.View, sale.Account, ctx.SourceID, tokens); !result.IsSuccess() {
		if result == TecINSUFFICIENT_BALANCE {
			return TecINSUFFICIENT_FUNDS
		}
		return result
	}

	// The contribution record stays for history; only the claim is spent.
	purchase.Tokens = nil
	updated, err := entry.EncodePurchase(purchase)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(k, updated); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Apply marks the raised contributions withdrawn. Requires finalization
// and succeeds at most once.
func (t *WithdrawRaised) Apply(ctx *ApplyContext) Result {
	sale, result := requireSaleOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	if !sale.Finalized {
		return TecNOT_FINALIZED
	}
	if sale.RaisedWithdrawn || amount.FromBytes(sale.EthRaised).IsZero() {
		return TecNOTHING_TO_CLAIM
	}
	sale.RaisedWithdrawn = true
	if err := saveSaleState(ctx.View, sale); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}
