package tx

import (
	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// State access helpers shared by the apply functions. All reads and writes
// go through the transaction's StateView so they commit atomically.

// loadAccount reads an account entry, returning a zero-value account when
// the entry does not exist. Accounts are created lazily on first write.
func loadAccount(view StateView, a addr.Address) (*entry.Account, error) {
	data, err := view.Read(keylet.Account(a))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &entry.Account{}, nil
	}
	return entry.DecodeAccount(data)
}

// saveAccount writes an account entry, inserting or updating as needed.
func saveAccount(view StateView, a addr.Address, acct *entry.Account) error {
	data, err := entry.EncodeAccount(acct)
	if err != nil {
		return err
	}
	k := keylet.Account(a)
	exists, err := view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return view.Update(k, data)
	}
	return view.Insert(k, data)
}

// balanceOf returns an account's balance, zero for missing accounts.
func balanceOf(view StateView, a addr.Address) (*amount.Amount, error) {
	acct, err := loadAccount(view, a)
	if err != nil {
		return nil, err
	}
	return amount.FromBytes(acct.Balance), nil
}

// adjustBalance adds delta to (or, when subtract is set, removes it from)
// an account's balance. The caller must have checked sufficiency.
func adjustBalance(view StateView, a addr.Address, delta *amount.Amount, subtract bool) error {
	acct, err := loadAccount(view, a)
	if err != nil {
		return err
	}
	bal := amount.FromBytes(acct.Balance)
	if subtract {
		bal = amount.Sub(bal, delta)
	} else {
		bal = amount.Add(bal, delta)
	}
	acct.Balance = amount.Bytes(bal)
	return saveAccount(view, a, acct)
}

func loadTokenConfig(view StateView) (*entry.TokenConfig, error) {
	data, err := view.Read(keylet.TokenConfig())
	if err != nil {
		return nil, err
	}
	return entry.DecodeTokenConfig(data)
}

func saveTokenConfig(view StateView, cfg *entry.TokenConfig) error {
	data, err := entry.EncodeTokenConfig(cfg)
	if err != nil {
		return err
	}
	return view.Update(keylet.TokenConfig(), data)
}

func loadSupply(view StateView) (*entry.Supply, error) {
	data, err := view.Read(keylet.Supply())
	if err != nil {
		return nil, err
	}
	return entry.DecodeSupply(data)
}

func saveSupply(view StateView, s *entry.Supply) error {
	data, err := entry.EncodeSupply(s)
	if err != nil {
		return err
	}
	return view.Update(keylet.Supply(), data)
}

// loadAllowance returns the allowance owner has granted spender,
// zero when none was ever set.
func loadAllowance(view StateView, owner, spender addr.Address) (*amount.Amount, error) {
	data, err := view.Read(keylet.Allowance(owner, spender))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return amount.Zero(), nil
	}
	al, err := entry.DecodeAllowance(data)
	if err != nil {
		return nil, err
	}
	return amount.FromBytes(al.Amount), nil
}

// saveAllowance overwrites the allowance owner grants spender.
// A zero allowance erases the entry.
func saveAllowance(view StateView, owner, spender addr.Address, amt *amount.Amount) error {
	k := keylet.Allowance(owner, spender)
	exists, err := view.Exists(k)
	if err != nil {
		return err
	}

	if amt.IsZero() {
		if exists {
			return view.Erase(k)
		}
		return nil
	}

	data, err := entry.EncodeAllowance(&entry.Allowance{
		Owner:   owner,
		Spender: spender,
		Amount:  amount.Bytes(amt),
	})
	if err != nil {
		return err
	}
	if exists {
		return view.Update(k, data)
	}
	return view.Insert(k, data)
}

func loadStakingConfig(view StateView) (*entry.StakingConfig, error) {
	data, err := view.Read(keylet.StakingConfig())
	if err != nil {
		return nil, err
	}
	return entry.DecodeStakingConfig(data)
}

func loadSaleState(view StateView) (*entry.SaleState, error) {
	data, err := view.Read(keylet.SaleState())
	if err != nil {
		return nil, err
	}
	return entry.DecodeSaleState(data)
}

func saveSaleState(view StateView, s *entry.SaleState) error {
	data, err := entry.EncodeSaleState(s)
	if err != nil {
		return err
	}
	return view.Update(keylet.SaleState(), data)
}

func loadReferralConfig(view StateView) (*entry.ReferralConfig, error) {
	data, err := view.Read(keylet.ReferralConfig())
	if err != nil {
		return nil, err
	}
	return entry.DecodeReferralConfig(data)
}

// moveTokens transfers gross tokens from one account to another, applying
// the transfer fee and the reserve burn. This is the single choke point
// every token movement goes through: direct transfers, delegated
// transfers, staking flows, presale claims and referral payouts.
//
// The fee is retained by the reserve account; a burnRate share of the fee
// is then removed from the reserve and recorded as burned supply. When the
// reserve cannot cover the burn it is skipped without failing the
// transfer.
func moveTokens(view StateView, from, to addr.Address, gross *amount.Amount) Result {
	// A zero transfer succeeds without touching state.
	if gross.IsZero() {
		return TesSUCCESS
	}

	cfg, err := loadTokenConfig(view)
	if err != nil {
		return TefINTERNAL
	}

	fromBal, err := balanceOf(view, from)
	if err != nil {
		return TefINTERNAL
	}
	if fromBal.Lt(gross) {
		return TecINSUFFICIENT_BALANCE
	}

	fee := amount.Percent(gross, uint64(cfg.FeePercent))
	net := amount.Sub(gross, fee)

	if err := adjustBalance(view, from, gross, true); err != nil {
		return TefINTERNAL
	}
	if err := adjustBalance(view, to, net, false); err != nil {
		return TefINTERNAL
	}
	if !fee.IsZero() {
		if err := adjustBalance(view, cfg.Reserve, fee, false); err != nil {
			return TefINTERNAL
		}
	}

	burn := amount.Percent(fee, uint64(cfg.BurnRate))
	if burn.IsZero() {
		return TesSUCCESS
	}

	reserveBal, err := balanceOf(view, cfg.Reserve)
	if err != nil {
		return TefINTERNAL
	}
	if reserveBal.Lt(burn) {
		// Reserve cannot cover the burn; skip it silently.
		return TesSUCCESS
	}

	if err := adjustBalance(view, cfg.Reserve, burn, true); err != nil {
		return TefINTERNAL
	}
	supply, err := loadSupply(view)
	if err != nil {
		return TefINTERNAL
	}
	supply.Burned = amount.Bytes(amount.Add(amount.FromBytes(supply.Burned), burn))
	if err := saveSupply(view, supply); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// moveTokensFrom is moveTokens on behalf of a spender: it checks and
// consumes the owner's allowance for the gross amount.
func moveTokensFrom(view StateView, spender, owner, to addr.Address, gross *amount.Amount) Result {
	if gross.IsZero() {
		return TesSUCCESS
	}

	allowed, err := loadAllowance(view, owner, spender)
	if err != nil {
		return TefINTERNAL
	}
	if allowed.Lt(gross) {
		return TecINSUFFICIENT_ALLOWANCE
	}

	if result := moveTokens(view, owner, to, gross); !result.IsSuccess() {
		return result
	}

	if err := saveAllowance(view, owner, spender, amount.Sub(allowed, gross)); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}
