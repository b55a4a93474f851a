package tx

import (
	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// Apply moves the amount to the staking account and records the net
// received as additional principal. Staking more restarts the accrual
// clock, so callers claim pending rewards first or forfeit them.
func (t *Stake) Apply(ctx *ApplyContext) Result {
	gross, err := amount.Parse(t.Amount)
	if err != nil {
		return TemINVALID_AMOUNT
	}

	cfg, err := loadStakingConfig(ctx.View)
	if err != nil {
		return TefINTERNAL
	}
	tokenCfg, err := loadTokenConfig(ctx.View)
	if err != nil {
		return TefINTERNAL
	}

	if result := moveTokens(ctx.View, ctx.SourceID, cfg.Account, gross); !result.IsSuccess() {
		return result
	}

	fee := amount.Percent(gross, uint64(tokenCfg.FeePercent))
	net := amount.Sub(gross, fee)

	k := keylet.Stake(ctx.SourceID)
	data, err := ctx.View.Read(k)
	if err != nil {
		return TefINTERNAL
	}

	now := ctx.Now()
	if data == nil {
		fresh, err := entry.EncodeStake(&entry.Stake{
			Principal:   amount.Bytes(net),
			StakedAt:    now,
			LastAccrual: now,
		})
		if err != nil {
			return TefINTERNAL
		}
		if err := ctx.View.Insert(k, fresh); err != nil {
			return TefINTERNAL
		}
		return TesSUCCESS
	}

	stake, err := entry.DecodeStake(data)
	if err != nil {
		return TefINTERNAL
	}
	stake.Principal = amount.Bytes(amount.Add(amount.FromBytes(stake.Principal), net))
	stake.LastAccrual = now
	updated, err := entry.EncodeStake(stake)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(k, updated); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Apply returns principal from the staking account to the staker.
// The stake record is erased when the principal reaches zero.
func (t *Unstake) Apply(ctx *ApplyContext) Result {
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return TemINVALID_AMOUNT
	}

	k := keylet.Stake(ctx.SourceID)
	data, err := ctx.View.Read(k)
	if err != nil {
		return TefINTERNAL
	}
	if data == nil {
		return TecINSUFFICIENT_PRINCIPAL
	}
	stake, err := entry.DecodeStake(data)
	if err != nil {
		return TefINTERNAL
	}

	principal := amount.FromBytes(stake.Principal)
	if principal.Lt(amt) {
		return TecINSUFFICIENT_PRINCIPAL
	}

	cfg, err := loadStakingConfig(ctx.View)
	if err != nil {
		return TefINTERNAL
	}
	if result := moveTokens(ctx.View, cfg.Account, ctx.SourceID, amt); !result.IsSuccess() {
		return result
	}

	remaining := amount.Sub(principal, amt)
	if remaining.IsZero() {
		if err := ctx.View.Erase(k); err != nil {
			return TefINTERNAL
		}
		return TesSUCCESS
	}

	stake.Principal = amount.Bytes(remaining)
	updated, err := entry.EncodeStake(stake)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(k, updated); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// accruedPeriods returns the number of full reward periods elapsed since
// the stake's last accrual.
func accruedPeriods(stake *entry.Stake, cfg *entry.StakingConfig, now int64) int64 {
	if cfg.PeriodSeconds <= 0 || now <= stake.LastAccrual {
		return 0
	}
	return (now - stake.LastAccrual) / cfg.PeriodSeconds
}

// AccruedReward returns the reward a staker could claim at the given time.
// Zero when the account has no stake.
func AccruedReward(view StateView, staker addr.Address, now int64) (*amount.Amount, error) {
	data, err := view.Read(keylet.Stake(staker))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return amount.Zero(), nil
	}
	stake, err := entry.DecodeStake(data)
	if err != nil {
		return nil, err
	}
	cfg, err := loadStakingConfig(view)
	if err != nil {
		return nil, err
	}

	periods := accruedPeriods(stake, cfg, now)
	if periods == 0 {
		return amount.Zero(), nil
	}
	perPeriod := amount.Percent(amount.FromBytes(stake.Principal), uint64(cfg.RewardPercent))
	return new(amount.Amount).Mul(perPeriod, amount.New(uint64(periods))), nil
}

// Apply pays the accrued reward from the reward pool, spending the pool's
// allowance for the staking account, and advances the accrual clock by
// the full periods consumed.
func (t *ClaimReward) Apply(ctx *ApplyContext) Result {
	k := keylet.Stake(ctx.SourceID)
	data, err := ctx.View.Read(k)
	if err != nil {
		return TefINTERNAL
	}
	if data == nil {
		return TecNOTHING_TO_CLAIM
	}
	stake, err := entry.DecodeStake(data)
	if err != nil {
		return TefINTERNAL
	}

	cfg, err := loadStakingConfig(ctx.View)
	if err != nil {
		return TefINTERNAL
	}

	periods := accruedPeriods(stake, cfg, ctx.Now())
	if periods == 0 {
		return TecNOTHING_TO_CLAIM
	}
	perPeriod := amount.Percent(amount.FromBytes(stake.Principal), uint64(cfg.RewardPercent))
	reward := new(amount.Amount).Mul(perPeriod, amount.New(uint64(periods)))
	if reward.IsZero() {
		return TecNOTHING_TO_CLAIM
	}

	result := moveTokensFrom(ctx.View, cfg.Account, cfg.RewardPool, ctx.SourceID, reward)
	if !result.IsSuccess() {
		if result == TecINSUFFICIENT_ALLOWANCE || result == TecINSUFFICIENT_BALANCE {
			return TecINSUFFICIENT_FUNDS
		}
		return result
	}

	// Keep the remainder of a partial period on the clock.
	stake.LastAccrual += periods * cfg.PeriodSeconds
	updated, err := entry.EncodeStake(stake)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(k, updated); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}
