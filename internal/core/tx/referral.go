package tx

import (
	"errors"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
)

// Referral transactions. The owner configures per-level commission
// percentages and triggers payouts for a purchase, funded from a source
// account that has granted the referral module an allowance.

var (
	errNoReferrers  = errors.New("temMALFORMED: at least one referrer is required")
	errBadReferrer  = errors.New("temBAD_ACCOUNT: malformed referrer address")
	errBadSource    = errors.New("temBAD_ACCOUNT: malformed source address")
	errLevelPercent = errors.New("temINVALID_AMOUNT: level percentage must not exceed 100")
)

// SetReferralLevels replaces the commission percentages per referral
// level, level 1 first. Owner only.
type SetReferralLevels struct {
	BaseTx
	Levels []uint32 `json:"Levels"`
}

// NewSetReferralLevels creates a SetReferralLevels transaction.
func NewSetReferralLevels(account string, levels []uint32) *SetReferralLevels {
	return &SetReferralLevels{
		BaseTx: *NewBaseTx(TypeSetReferralLevels, account),
		Levels: levels,
	}
}

func (t *SetReferralLevels) TxType() Type { return TypeSetReferralLevels }

func (t *SetReferralLevels) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	for _, pct := range t.Levels {
		if pct > 100 {
			return errLevelPercent
		}
	}
	return nil
}

func (t *SetReferralLevels) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Levels"] = t.Levels
	return m
}

// PayReferralRewards pays each referrer their level's share of Amount,
// moving tokens from the source account on the referral module's
// allowance. All payouts land or none do. Owner only.
//
// Referrers beyond the configured levels receive nothing; configured
// levels beyond the referrer chain pay nothing.
type PayReferralRewards struct {
	BaseTx
	Source    string   `json:"Source"`
	Amount    string   `json:"Amount"`
	Referrers []string `json:"Referrers"`
}

// NewPayReferralRewards creates a PayReferralRewards transaction.
func NewPayReferralRewards(account, source string, amt *amount.Amount, referrers []string) *PayReferralRewards {
	return &PayReferralRewards{
		BaseTx:    *NewBaseTx(TypePayReferralRewards, account),
		Source:    source,
		Amount:    amount.Format(amt),
		Referrers: referrers,
	}
}

func (t *PayReferralRewards) TxType() Type { return TypePayReferralRewards }

func (t *PayReferralRewards) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := addr.Parse(t.Source); err != nil {
		return errBadSource
	}
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return ErrBadAmount
	}
	if amt.IsZero() {
		return ErrZeroAmount
	}
	if len(t.Referrers) == 0 {
		return errNoReferrers
	}
	for _, r := range t.Referrers {
		if _, err := addr.Parse(r); err != nil {
			return errBadReferrer
		}
	}
	return nil
}

func (t *PayReferralRewards) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Source"] = t.Source
	m["Amount"] = t.Amount
	m["Referrers"] = t.Referrers
	return m
}
