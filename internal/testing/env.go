// Package testing provides a test environment for exercising the
// transaction engine against an in-memory ledger with a manual clock.
package testing

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/genesis"
	"github.com/takulai/takd/internal/core/ledger/keylet"
	"github.com/takulai/takd/internal/core/tx"
	"github.com/takulai/takd/internal/storage/kv"
)

// Env manages a test ledger environment: a genesis ledger over an
// in-memory store, a manual clock and helpers for funding accounts and
// submitting transactions.
type Env struct {
	t      *testing.T
	ledger *ledger.Ledger
	clock  *ManualClock

	// Owner holds the unallocated supply and administrative control.
	Owner *Account

	// Genesis is the configuration the ledger was created with.
	Genesis genesis.Config
}

// NewEnv creates a test environment with the default genesis state.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	clock := NewManualClock()
	owner := NewAccount("owner")

	l, err := ledger.Open(kv.NewMemory())
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}

	cfg := genesis.DefaultConfig(owner.Address, clock.Now())
	if err := genesis.Create(cfg, l); err != nil {
		t.Fatalf("failed to create genesis state: %v", err)
	}

	return &Env{
		t:       t,
		ledger:  l,
		clock:   clock,
		Owner:   owner,
		Genesis: cfg,
	}
}

// Reserve returns the fee reserve module account.
func (e *Env) Reserve() *Account {
	return &Account{Name: "reserve", Address: e.Genesis.Reserve}
}

// StakingAccount returns the staking module account holding principals.
func (e *Env) StakingAccount() *Account {
	return &Account{Name: "staking", Address: e.Genesis.Staking.Account}
}

// RewardPool returns the staking reward pool account.
func (e *Env) RewardPool() *Account {
	return &Account{Name: "reward-pool", Address: e.Genesis.Staking.RewardPool}
}

// PresaleAccount returns the presale inventory account.
func (e *Env) PresaleAccount() *Account {
	return &Account{Name: "presale", Address: e.Genesis.Presale.Account}
}

// ReferralAccount returns the referral payout module account.
func (e *Env) ReferralAccount() *Account {
	return &Account{Name: "referral", Address: e.Genesis.Referral.Account}
}

// Clock returns the environment's manual clock.
func (e *Env) Clock() *ManualClock {
	return e.clock
}

// Ledger returns the underlying ledger.
func (e *Env) Ledger() *ledger.Ledger {
	return e.ledger
}

// Now returns the clock time as unix seconds.
func (e *Env) Now() int64 {
	return e.clock.Now().Unix()
}

// Submit applies a transaction at the current clock time and returns
// its result.
func (e *Env) Submit(txn tx.Transaction) TxResult {
	e.t.Helper()

	engine := tx.NewEngine(e.ledger, tx.EngineConfig{
		LedgerSequence: e.ledger.Sequence() + 1,
		CloseTime:      e.clock.Now(),
	})
	res := engine.Apply(txn)
	if res.Applied {
		if err := e.ledger.BumpSequence(); err != nil {
			e.t.Fatalf("failed to bump ledger sequence: %v", err)
		}
	}
	return TxResult{
		Code:    res.Result.String(),
		Success: res.Result.IsSuccess(),
		Applied: res.Applied,
		Message: res.Message,
		Hash:    strings.ToUpper(hex.EncodeToString(res.TxHash[:])),
	}
}

// Fund transfers an exact amount from the owner to an account. The
// transfer fee is suspended for the transfer so the recipient sees the
// full amount, then restored.
func (e *Env) Fund(acc *Account, amt *amount.Amount) {
	e.t.Helper()

	cfg := e.TokenConfig()
	if res := e.Submit(tx.NewSetFeePercent(e.Owner.ID(), 0)); !res.Success {
		e.t.Fatalf("failed to suspend fee: %s", res.Code)
	}
	if res := e.Submit(tx.NewTransfer(e.Owner.ID(), acc.ID(), amt)); !res.Success {
		e.t.Fatalf("failed to fund %s: %s", acc.Name, res.Code)
	}
	if res := e.Submit(tx.NewSetFeePercent(e.Owner.ID(), cfg.FeePercent)); !res.Success {
		e.t.Fatalf("failed to restore fee: %s", res.Code)
	}
}

// FundTokens funds an account with n whole tokens.
func (e *Env) FundTokens(acc *Account, n uint64) {
	e.t.Helper()
	e.Fund(acc, amount.Tokens(n))
}

// Balance returns an account's token balance.
func (e *Env) Balance(acc *Account) *amount.Amount {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.Account(acc.Address))
	if err != nil {
		e.t.Fatalf("failed to read account %s: %v", acc.Name, err)
	}
	if data == nil {
		return amount.Zero()
	}
	ent, err := entry.DecodeAccount(data)
	if err != nil {
		e.t.Fatalf("failed to decode account %s: %v", acc.Name, err)
	}
	return amount.FromBytes(ent.Balance)
}

// Exists reports whether an account entry exists in the ledger.
func (e *Env) Exists(acc *Account) bool {
	e.t.Helper()
	exists, err := e.ledger.Exists(keylet.Account(acc.Address))
	if err != nil {
		e.t.Fatalf("failed to probe account %s: %v", acc.Name, err)
	}
	return exists
}

// Allowance returns the allowance owner has granted spender.
func (e *Env) Allowance(owner, spender *Account) *amount.Amount {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.Allowance(owner.Address, spender.Address))
	if err != nil {
		e.t.Fatalf("failed to read allowance: %v", err)
	}
	if data == nil {
		return amount.Zero()
	}
	ent, err := entry.DecodeAllowance(data)
	if err != nil {
		e.t.Fatalf("failed to decode allowance: %v", err)
	}
	return amount.FromBytes(ent.Amount)
}

// Stake returns an account's stake record, or nil when none exists.
func (e *Env) Stake(acc *Account) *entry.Stake {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.Stake(acc.Address))
	if err != nil {
		e.t.Fatalf("failed to read stake: %v", err)
	}
	if data == nil {
		return nil
	}
	ent, err := entry.DecodeStake(data)
	if err != nil {
		e.t.Fatalf("failed to decode stake: %v", err)
	}
	return ent
}

// AccruedReward returns the reward an account could claim now.
func (e *Env) AccruedReward(acc *Account) *amount.Amount {
	e.t.Helper()
	reward, err := tx.AccruedReward(e.ledger, acc.Address, e.Now())
	if err != nil {
		e.t.Fatalf("failed to compute accrued reward: %v", err)
	}
	return reward
}

// Purchase returns an account's presale record, or nil when none exists.
func (e *Env) Purchase(acc *Account) *entry.Purchase {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.Purchase(acc.Address))
	if err != nil {
		e.t.Fatalf("failed to read purchase: %v", err)
	}
	if data == nil {
		return nil
	}
	ent, err := entry.DecodePurchase(data)
	if err != nil {
		e.t.Fatalf("failed to decode purchase: %v", err)
	}
	return ent
}

// SaleState returns the presale singleton.
func (e *Env) SaleState() *entry.SaleState {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.SaleState())
	if err != nil {
		e.t.Fatalf("failed to read sale state: %v", err)
	}
	ent, err := entry.DecodeSaleState(data)
	if err != nil {
		e.t.Fatalf("failed to decode sale state: %v", err)
	}
	return ent
}

// Supply returns the supply singleton.
func (e *Env) Supply() *entry.Supply {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.Supply())
	if err != nil {
		e.t.Fatalf("failed to read supply: %v", err)
	}
	ent, err := entry.DecodeSupply(data)
	if err != nil {
		e.t.Fatalf("failed to decode supply: %v", err)
	}
	return ent
}

// TokenConfig returns the token policy singleton.
func (e *Env) TokenConfig() *entry.TokenConfig {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.TokenConfig())
	if err != nil {
		e.t.Fatalf("failed to read token config: %v", err)
	}
	ent, err := entry.DecodeTokenConfig(data)
	if err != nil {
		e.t.Fatalf("failed to decode token config: %v", err)
	}
	return ent
}
