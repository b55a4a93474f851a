package tx

import (
	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// requireReferralOwner loads the referral config and checks that the
// source account is the referral owner.
func requireReferralOwner(ctx *ApplyContext) (*entry.ReferralConfig, Result) {
	cfg, err := loadReferralConfig(ctx.View)
	if err != nil {
		return nil, TefINTERNAL
	}
	if addr.Address(cfg.Owner) != ctx.SourceID {
		return nil, TecUNAUTHORIZED
	}
	return cfg, TesSUCCESS
}

func (t *SetReferralLevels) Apply(ctx *ApplyContext) Result {
	cfg, result := requireReferralOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	cfg.Levels = t.Levels
	data, err := entry.EncodeReferralConfig(cfg)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(keylet.ReferralConfig(), data); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Apply pays each referrer in chain order. Every payout goes through the
// shared fee path and spends the source's allowance for the referral
// account; the surrounding sandbox makes the batch atomic.
func (t *PayReferralRewards) Apply(ctx *ApplyContext) Result {
	cfg, result := requireReferralOwner(ctx)
	if !result.IsSuccess() {
		return result
	}

	source, err := addr.Parse(t.Source)
	if err != nil {
		return TemBAD_ACCOUNT
	}
	base, err := amount.Parse(t.Amount)
	if err != nil {
		return TemINVALID_AMOUNT
	}

	levels := len(cfg.Levels)
	if len(t.Referrers) < levels {
		levels = len(t.Referrers)
	}

	for i := 0; i < levels; i++ {
		share := amount.Percent(base, uint64(cfg.Levels[i]))
		if share.IsZero() {
			continue
		}
		referrer, err := addr.Parse(t.Referrers[i])
		if err != nil {
			return TemBAD_ACCOUNT
		}
		result := moveTokensFrom(ctx.View, cfg.Account, source, referrer, share)
		if !result.IsSuccess() {
			return result
		}
	}
	return TesSUCCESS
}
