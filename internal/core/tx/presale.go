package tx

import (
	"errors"

	"github.com/takulai/takd/internal/core/amount"
)

// Presale transactions. Contributions are denominated in wei; the token
// price is fixed in USD cents at genesis while the ETH price is updated
// by the sale owner. Purchased tokens vest after finalization.

var errBadPrice = errors.New("temINVALID_AMOUNT: price must be positive")

// SetEthPrice updates the ETH/USD price used to convert contributions.
// Sale owner only.
type SetEthPrice struct {
	BaseTx
	PriceUsdCents uint64 `json:"PriceUsdCents"`
}

// NewSetEthPrice creates a SetEthPrice transaction.
func NewSetEthPrice(account string, priceUsdCents uint64) *SetEthPrice {
	return &SetEthPrice{
		BaseTx:        *NewBaseTx(TypeSetEthPrice, account),
		PriceUsdCents: priceUsdCents,
	}
}

func (t *SetEthPrice) TxType() Type { return TypeSetEthPrice }

func (t *SetEthPrice) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.PriceUsdCents == 0 {
		return errBadPrice
	}
	return nil
}

func (t *SetEthPrice) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["PriceUsdCents"] = t.PriceUsdCents
	return m
}

// BuyWithETH records a presale contribution of Value wei and the tokens
// it buys at the current prices. Tokens are held until claimed after
// vesting.
type BuyWithETH struct {
	BaseTx
	Value string `json:"Value"`
}

// NewBuyWithETH creates a BuyWithETH transaction. value is in wei.
func NewBuyWithETH(account string, value *amount.Amount) *BuyWithETH {
	return &BuyWithETH{
		BaseTx: *NewBaseTx(TypeBuyWithEth, account),
		Value:  amount.Format(value),
	}
}

func (t *BuyWithETH) TxType() Type { return TypeBuyWithEth }

func (t *BuyWithETH) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	v, err := amount.Parse(t.Value)
	if err != nil {
		return ErrBadAmount
	}
	if v.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

func (t *BuyWithETH) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Value"] = t.Value
	return m
}

// FinalizeSale closes the presale and starts the vesting clock.
// Sale owner only.
type FinalizeSale struct {
	BaseTx
}

// NewFinalizeSale creates a FinalizeSale transaction.
func NewFinalizeSale(account string) *FinalizeSale {
	return &FinalizeSale{BaseTx: *NewBaseTx(TypeFinalizeSale, account)}
}

func (t *FinalizeSale) TxType() Type { return TypeFinalizeSale }

func (t *FinalizeSale) Validate() error {
	return t.Common.Validate()
}

func (t *FinalizeSale) Flatten() map[string]any {
	return t.Common.ToMap()
}

// ClaimTokens delivers a buyer's purchased tokens once the vesting period
// after finalization has elapsed. The transfer fee applies on delivery.
type ClaimTokens struct {
	BaseTx
}

// NewClaimTokens creates a ClaimTokens transaction.
func NewClaimTokens(account string) *ClaimTokens {
	return &ClaimTokens{BaseTx: *NewBaseTx(TypeClaimTokens, account)}
}

func (t *ClaimTokens) TxType() Type { return TypeClaimTokens }

func (t *ClaimTokens) Validate() error {
	return t.Common.Validate()
}

func (t *ClaimTokens) Flatten() map[string]any {
	return t.Common.ToMap()
}

// WithdrawRaised marks the raised contributions as withdrawn by the sale
// owner. Contributions live off ledger, so this is a one-shot bookkeeping
// step after finalization.
type WithdrawRaised struct {
	BaseTx
}

// NewWithdrawRaised creates a WithdrawRaised transaction.
func NewWithdrawRaised(account string) *WithdrawRaised {
	return &WithdrawRaised{BaseTx: *NewBaseTx(TypeWithdrawRaised, account)}
}

func (t *WithdrawRaised) TxType() Type { return TypeWithdrawRaised }

func (t *WithdrawRaised) Validate() error {
	return t.Common.Validate()
}

func (t *WithdrawRaised) Flatten() map[string]any {
	return t.Common.ToMap()
}
