// Package genesis constructs the initial ledger state: token policy,
// supply, distribution allocations and the module accounts for staking,
// presale and referral payouts.
package genesis

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// Policy defaults matching the deployed token suite.
const (
	// DefaultFeePercent is the transfer fee in percent of the gross amount.
	DefaultFeePercent = 2

	// DefaultBurnRate is the burned share in percent of the collected fee.
	DefaultBurnRate = 5

	// DefaultRewardPercent is the staking reward per accrual period.
	DefaultRewardPercent = 5

	// DefaultPeriodSeconds is the staking accrual period (30 days).
	DefaultPeriodSeconds = 30 * 24 * 60 * 60

	// DefaultTokenPriceUsdCents is the fixed presale token price ($12.59).
	DefaultTokenPriceUsdCents = 1259

	// DefaultVestingSeconds is the presale vesting delay after finalization.
	DefaultVestingSeconds = 365 * 24 * 60 * 60

	// DefaultLevel1Percent is the level-1 referral commission.
	DefaultLevel1Percent = 3
)

// ErrOverAllocated is returned when allocations exceed the total supply.
var ErrOverAllocated = errors.New("genesis: allocations exceed total supply")

// StateWriter is the subset of the ledger used to build genesis state.
type StateWriter interface {
	Insert(k keylet.Keylet, data []byte) error
	Exists(k keylet.Keylet) (bool, error)
}

// Allocation credits an account at genesis.
type Allocation struct {
	Account addr.Address
	Amount  *amount.Amount
}

// StakingParams configures the staking module accounts and accrual policy.
type StakingParams struct {
	Account       addr.Address
	RewardPool    addr.Address
	RewardPercent uint32
	PeriodSeconds int64
}

// PresaleParams configures the presale window, pricing and inventory.
type PresaleParams struct {
	Account            addr.Address
	Owner              addr.Address
	Start              int64
	End                int64
	Hardcap            *amount.Amount
	Inventory          *amount.Amount
	EthPriceUsdCents   uint64
	TokenPriceUsdCents uint64
	VestingSeconds     int64
}

// ReferralParams configures the referral payout module.
type ReferralParams struct {
	Account addr.Address
	Owner   addr.Address
	Levels  []uint32
}

// Config describes the complete initial ledger state.
type Config struct {
	TotalSupply    *amount.Amount
	Owner          addr.Address
	Reserve        addr.Address
	FeePercent     uint32
	BurnRate       uint32
	ReserveFunding *amount.Amount
	Allocations    []Allocation

	Staking  StakingParams
	Presale  PresaleParams
	Referral ReferralParams
}

// ModuleAddress derives a deterministic address for a named module account.
func ModuleAddress(name string) addr.Address {
	sum := sha256.Sum256([]byte("takd/module/" + name))
	var a addr.Address
	copy(a[:], sum[:addr.Length])
	return a
}

// DefaultConfig returns a genesis configuration with the deployed policy
// numbers, a 100M token supply and module accounts at derived addresses.
// The presale window opens at start and runs for 90 days.
func DefaultConfig(owner addr.Address, start time.Time) Config {
	reserve := ModuleAddress("reserve")
	return Config{
		TotalSupply:    amount.Tokens(100_000_000),
		Owner:          owner,
		Reserve:        reserve,
		FeePercent:     DefaultFeePercent,
		BurnRate:       DefaultBurnRate,
		ReserveFunding: amount.Tokens(1_000_000),
		Staking: StakingParams{
			Account:       ModuleAddress("staking"),
			RewardPool:    ModuleAddress("reward-pool"),
			RewardPercent: DefaultRewardPercent,
			PeriodSeconds: DefaultPeriodSeconds,
		},
		Presale: PresaleParams{
			Account:            ModuleAddress("presale"),
			Owner:              owner,
			Start:              start.Unix(),
			End:                start.Add(90 * 24 * time.Hour).Unix(),
			Hardcap:            amount.Tokens(10_000_000),
			Inventory:          amount.Tokens(10_000_000),
			EthPriceUsdCents:   200_000, // $2000 per ETH until the owner updates it
			TokenPriceUsdCents: DefaultTokenPriceUsdCents,
			VestingSeconds:     DefaultVestingSeconds,
		},
		Referral: ReferralParams{
			Account: ModuleAddress("referral"),
			Owner:   owner,
			Levels:  []uint32{DefaultLevel1Percent},
		},
	}
}

// Create writes the genesis state. Any supply not claimed by an
// allocation, the reserve funding or the presale inventory is credited
// to the owner.
func Create(cfg Config, view StateWriter) error {
	if cfg.TotalSupply == nil || cfg.TotalSupply.IsZero() {
		return errors.New("genesis: total supply is required")
	}

	remaining := cfg.TotalSupply.Clone()

	credit := func(account addr.Address, amt *amount.Amount) error {
		if amt == nil || amt.IsZero() {
			return nil
		}
		if remaining.Lt(amt) {
			return ErrOverAllocated
		}
		remaining = amount.Sub(remaining, amt)

		k := keylet.Account(account)
		existing, err := view.Exists(k)
		if err != nil {
			return err
		}
		if existing {
			return fmt.Errorf("genesis: duplicate allocation for %s", account)
		}
		data, err := entry.EncodeAccount(&entry.Account{Balance: amount.Bytes(amt)})
		if err != nil {
			return err
		}
		return view.Insert(k, data)
	}

	for _, alloc := range cfg.Allocations {
		if err := credit(alloc.Account, alloc.Amount); err != nil {
			return err
		}
	}
	if err := credit(cfg.Reserve, cfg.ReserveFunding); err != nil {
		return err
	}
	if err := credit(cfg.Presale.Account, cfg.Presale.Inventory); err != nil {
		return err
	}
	// Whatever is left belongs to the owner.
	if err := credit(cfg.Owner, remaining.Clone()); err != nil {
		return err
	}

	tokenCfg, err := entry.EncodeTokenConfig(&entry.TokenConfig{
		Owner:      cfg.Owner,
		Reserve:    cfg.Reserve,
		FeePercent: cfg.FeePercent,
		BurnRate:   cfg.BurnRate,
	})
	if err != nil {
		return err
	}
	if err := view.Insert(keylet.TokenConfig(), tokenCfg); err != nil {
		return err
	}

	supply, err := entry.EncodeSupply(&entry.Supply{
		Total: amount.Bytes(cfg.TotalSupply),
	})
	if err != nil {
		return err
	}
	if err := view.Insert(keylet.Supply(), supply); err != nil {
		return err
	}

	staking, err := entry.EncodeStakingConfig(&entry.StakingConfig{
		Account:       cfg.Staking.Account,
		RewardPool:    cfg.Staking.RewardPool,
		RewardPercent: cfg.Staking.RewardPercent,
		PeriodSeconds: cfg.Staking.PeriodSeconds,
	})
	if err != nil {
		return err
	}
	if err := view.Insert(keylet.StakingConfig(), staking); err != nil {
		return err
	}

	sale, err := entry.EncodeSaleState(&entry.SaleState{
		Owner:              cfg.Presale.Owner,
		Account:            cfg.Presale.Account,
		Start:              cfg.Presale.Start,
		End:                cfg.Presale.End,
		Hardcap:            amount.Bytes(cfg.Presale.Hardcap),
		EthPriceUsdCents:   cfg.Presale.EthPriceUsdCents,
		TokenPriceUsdCents: cfg.Presale.TokenPriceUsdCents,
		VestingSeconds:     cfg.Presale.VestingSeconds,
	})
	if err != nil {
		return err
	}
	if err := view.Insert(keylet.SaleState(), sale); err != nil {
		return err
	}

	referral, err := entry.EncodeReferralConfig(&entry.ReferralConfig{
		Owner:   cfg.Referral.Owner,
		Account: cfg.Referral.Account,
		Levels:  cfg.Referral.Levels,
	})
	if err != nil {
		return err
	}
	return view.Insert(keylet.ReferralConfig(), referral)
}
