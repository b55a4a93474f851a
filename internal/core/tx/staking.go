package tx

import (
	"github.com/takulai/takd/internal/core/amount"
)

// Staking transactions. Principal is held by the staking module account;
// rewards accrue per full reward period and are paid from the reward pool.

// Stake locks tokens with the staking account. The transfer fee applies
// on the way in, so the recorded principal is the net amount received.
type Stake struct {
	BaseTx
	Amount string `json:"Amount"`
}

// NewStake creates a Stake transaction.
func NewStake(account string, amt *amount.Amount) *Stake {
	return &Stake{
		BaseTx: *NewBaseTx(TypeStake, account),
		Amount: amount.Format(amt),
	}
}

func (t *Stake) TxType() Type { return TypeStake }

func (t *Stake) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return ErrBadAmount
	}
	if amt.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

func (t *Stake) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Amount"] = t.Amount
	return m
}

// Unstake returns part or all of the staked principal to the staker.
// The transfer fee applies on the way out.
type Unstake struct {
	BaseTx
	Amount string `json:"Amount"`
}

// NewUnstake creates an Unstake transaction.
func NewUnstake(account string, amt *amount.Amount) *Unstake {
	return &Unstake{
		BaseTx: *NewBaseTx(TypeUnstake, account),
		Amount: amount.Format(amt),
	}
}

func (t *Unstake) TxType() Type { return TypeUnstake }

func (t *Unstake) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return ErrBadAmount
	}
	if amt.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

func (t *Unstake) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Amount"] = t.Amount
	return m
}

// ClaimReward pays out the rewards accrued over the full periods elapsed
// since the last accrual.
type ClaimReward struct {
	BaseTx
}

// NewClaimReward creates a ClaimReward transaction.
func NewClaimReward(account string) *ClaimReward {
	return &ClaimReward{BaseTx: *NewBaseTx(TypeClaimReward, account)}
}

func (t *ClaimReward) TxType() Type { return TypeClaimReward }

func (t *ClaimReward) Validate() error {
	return t.Common.Validate()
}

func (t *ClaimReward) Flatten() map[string]any {
	return t.Common.ToMap()
}
