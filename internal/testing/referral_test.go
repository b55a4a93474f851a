package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/tx"
)

func TestPayReferralRewardsSingleLevel(t *testing.T) {
	env := NewEnv(t)
	source := NewAccount("source")
	referrer := NewAccount("referrer")
	env.FundTokens(source, 1000)

	// The source lets the referral module spend on its behalf.
	RequireTxSuccess(t, env.Submit(tx.NewApprove(source.ID(), env.ReferralAccount().ID(), amount.Tokens(1000))))

	// Suspend the fee to assert the exact 3% level-1 commission.
	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 0)))

	RequireTxSuccess(t, env.Submit(tx.NewPayReferralRewards(
		env.Owner.ID(), source.ID(), amount.Tokens(1000), []string{referrer.ID()})))

	RequireBalanceTokens(t, env, referrer, 30)
	RequireBalanceTokens(t, env, source, 970)
	require.True(t, env.Allowance(source, env.ReferralAccount()).Eq(amount.Tokens(970)))
}

func TestPayReferralRewardsMultiLevel(t *testing.T) {
	env := NewEnv(t)
	source := NewAccount("source")
	r1 := NewAccount("r1")
	r2 := NewAccount("r2")
	env.FundTokens(source, 1000)

	RequireTxSuccess(t, env.Submit(tx.NewSetReferralLevels(env.Owner.ID(), []uint32{3, 2})))
	RequireTxSuccess(t, env.Submit(tx.NewApprove(source.ID(), env.ReferralAccount().ID(), amount.Tokens(100))))
	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 0)))

	RequireTxSuccess(t, env.Submit(tx.NewPayReferralRewards(
		env.Owner.ID(), source.ID(), amount.Tokens(1000), []string{r1.ID(), r2.ID()})))

	RequireBalanceTokens(t, env, r1, 30)
	RequireBalanceTokens(t, env, r2, 20)
	RequireBalanceTokens(t, env, source, 950)
}

func TestPayReferralRewardsShortChain(t *testing.T) {
	env := NewEnv(t)
	source := NewAccount("source")
	r1 := NewAccount("r1")
	env.FundTokens(source, 1000)

	// Two levels configured, one referrer supplied: level 2 pays nothing.
	RequireTxSuccess(t, env.Submit(tx.NewSetReferralLevels(env.Owner.ID(), []uint32{3, 2})))
	RequireTxSuccess(t, env.Submit(tx.NewApprove(source.ID(), env.ReferralAccount().ID(), amount.Tokens(100))))
	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 0)))

	RequireTxSuccess(t, env.Submit(tx.NewPayReferralRewards(
		env.Owner.ID(), source.ID(), amount.Tokens(1000), []string{r1.ID()})))

	RequireBalanceTokens(t, env, r1, 30)
	RequireBalanceTokens(t, env, source, 970)
}

func TestPayReferralRewardsExtraReferrersSkipped(t *testing.T) {
	env := NewEnv(t)
	source := NewAccount("source")
	r1 := NewAccount("r1")
	r2 := NewAccount("r2")
	env.FundTokens(source, 1000)

	// Only level 1 is configured by default; the second referrer gets
	// nothing.
	RequireTxSuccess(t, env.Submit(tx.NewApprove(source.ID(), env.ReferralAccount().ID(), amount.Tokens(100))))
	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 0)))

	RequireTxSuccess(t, env.Submit(tx.NewPayReferralRewards(
		env.Owner.ID(), source.ID(), amount.Tokens(1000), []string{r1.ID(), r2.ID()})))

	RequireBalanceTokens(t, env, r1, 30)
	require.False(t, env.Exists(r2))
}

func TestPayReferralRewardsAtomic(t *testing.T) {
	env := NewEnv(t)
	source := NewAccount("source")
	r1 := NewAccount("r1")
	r2 := NewAccount("r2")
	env.FundTokens(source, 1000)

	// The allowance covers level 1 but not both levels: the whole
	// payout must fail and leave every balance untouched.
	RequireTxSuccess(t, env.Submit(tx.NewSetReferralLevels(env.Owner.ID(), []uint32{3, 2})))
	RequireTxSuccess(t, env.Submit(tx.NewApprove(source.ID(), env.ReferralAccount().ID(), amount.Tokens(40))))
	RequireTxSuccess(t, env.Submit(tx.NewSetFeePercent(env.Owner.ID(), 0)))

	res := env.Submit(tx.NewPayReferralRewards(
		env.Owner.ID(), source.ID(), amount.Tokens(1000), []string{r1.ID(), r2.ID()}))
	RequireTxFail(t, res, "tecINSUFFICIENT_ALLOWANCE")

	require.False(t, env.Exists(r1))
	require.False(t, env.Exists(r2))
	RequireBalanceTokens(t, env, source, 1000)
	require.True(t, env.Allowance(source, env.ReferralAccount()).Eq(amount.Tokens(40)))
}

func TestPayReferralRewardsOwnerOnly(t *testing.T) {
	env := NewEnv(t)
	source := NewAccount("source")
	r1 := NewAccount("r1")

	res := env.Submit(tx.NewPayReferralRewards(
		source.ID(), source.ID(), amount.Tokens(100), []string{r1.ID()}))
	RequireTxFail(t, res, "tecUNAUTHORIZED")
}

func TestSetReferralLevelsValidation(t *testing.T) {
	env := NewEnv(t)

	RequireTxFail(t, env.Submit(tx.NewSetReferralLevels(NewAccount("mallory").ID(), []uint32{3})), "tecUNAUTHORIZED")
	RequireTxFail(t, env.Submit(tx.NewSetReferralLevels(env.Owner.ID(), []uint32{101})), "temINVALID_AMOUNT")
}
