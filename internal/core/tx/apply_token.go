package tx

import (
	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger/entry"
)

// Apply moves the amount from the source to the destination through the
// shared fee path.
func (t *Transfer) Apply(ctx *ApplyContext) Result {
	dest, err := addr.Parse(t.Destination)
	if err != nil {
		return TemBAD_ACCOUNT
	}
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return TemINVALID_AMOUNT
	}
	return moveTokens(ctx.View, ctx.SourceID, dest, amt)
}

// Apply replaces the source account's allowance for the spender.
func (t *Approve) Apply(ctx *ApplyContext) Result {
	spender, err := addr.Parse(t.Spender)
	if err != nil {
		return TemBAD_ACCOUNT
	}
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return TemINVALID_AMOUNT
	}
	if err := saveAllowance(ctx.View, ctx.SourceID, spender, amt); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Apply moves the amount from the owner to the destination on the
// source account's allowance.
func (t *TransferFrom) Apply(ctx *ApplyContext) Result {
	owner, err := addr.Parse(t.Owner)
	if err != nil {
		return TemBAD_ACCOUNT
	}
	dest, err := addr.Parse(t.Destination)
	if err != nil {
		return TemBAD_ACCOUNT
	}
	amt, err := amount.Parse(t.Amount)
	if err != nil {
		return TemINVALID_AMOUNT
	}
	return moveTokensFrom(ctx.View, ctx.SourceID, owner, dest, amt)
}

// requireTokenOwner loads the token config and checks that the source
// account is the current owner.
func requireTokenOwner(ctx *ApplyContext) (*entry.TokenConfig, Result) {
	cfg, err := loadTokenConfig(ctx.View)
	if err != nil {
		return nil, TefINTERNAL
	}
	if addr.Address(cfg.Owner) != ctx.SourceID {
		return nil, TecUNAUTHORIZED
	}
	return cfg, TesSUCCESS
}

func (t *SetFeePercent) Apply(ctx *ApplyContext) Result {
	cfg, result := requireTokenOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	cfg.FeePercent = t.FeePercent
	if err := saveTokenConfig(ctx.View, cfg); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

func (t *SetBurnRate) Apply(ctx *ApplyContext) Result {
	cfg, result := requireTokenOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	cfg.BurnRate = t.BurnRate
	if err := saveTokenConfig(ctx.View, cfg); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

func (t *SetOwner) Apply(ctx *ApplyContext) Result {
	cfg, result := requireTokenOwner(ctx)
	if !result.IsSuccess() {
		return result
	}
	newOwner, err := addr.Parse(t.NewOwner)
	if err != nil {
		return TemBAD_ACCOUNT
	}
	cfg.Owner = newOwner
	if err := saveTokenConfig(ctx.View, cfg); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}
