// Package node assembles the storage, ledger, genesis state, transaction
// engine and history into a running accounting node.
package node

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/core/ledger"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/genesis"
	"github.com/takulai/takd/internal/core/ledger/keylet"
	"github.com/takulai/takd/internal/core/tx"
	"github.com/takulai/takd/internal/storage/history"
	"github.com/takulai/takd/internal/storage/kv"
)

// Options configures a Node.
type Options struct {
	// Backend selects the key-value store (pebble, leveldb, memory).
	Backend string

	// DataPath is the directory for the key-value store.
	DataPath string

	// Compression selects the value compression (lz4 or none).
	Compression string

	// HistoryPath is the SQLite file for transaction history.
	// Empty disables history; ":memory:" keeps it in memory.
	HistoryPath string

	// GenesisOwner receives the unallocated supply on a fresh ledger.
	GenesisOwner string

	// Clock supplies close times. Defaults to the system clock.
	Clock Clock

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Node is the single-writer transaction processor. Submissions are
// applied one at a time in arrival order against the ledger.
type Node struct {
	mu     sync.Mutex
	db     kv.DB
	ledger *ledger.Ledger
	hist   *history.Store
	clock  Clock
	log    *slog.Logger
	events *publisher
}

// Open opens the store, restores or creates the ledger and prepares the
// node for submissions. A fresh ledger is seeded with the genesis state
// for the configured owner.
func Open(opts Options) (*Node, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	db, err := kv.Open(opts.Backend, opts.DataPath, opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("node: open store: %w", err)
	}

	l, err := ledger.Open(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("node: open ledger: %w", err)
	}

	n := &Node{
		db:     db,
		ledger: l,
		clock:  opts.Clock,
		log:    opts.Logger,
		events: newPublisher(),
	}

	if err := n.ensureGenesis(opts.GenesisOwner); err != nil {
		db.Close()
		return nil, err
	}

	if opts.HistoryPath != "" {
		hist, err := history.Open(opts.HistoryPath)
		if err != nil {
			db.Close()
			return nil, err
		}
		n.hist = hist
	}

	return n, nil
}

// ensureGenesis seeds a fresh ledger with the default genesis state.
func (n *Node) ensureGenesis(owner string) error {
	exists, err := n.ledger.Exists(keylet.TokenConfig())
	if err != nil {
		return fmt.Errorf("node: probe genesis: %w", err)
	}
	if exists {
		return nil
	}

	if owner == "" {
		return fmt.Errorf("node: fresh ledger needs a genesis owner")
	}
	ownerID, err := addr.Parse(owner)
	if err != nil {
		return fmt.Errorf("node: genesis owner: %w", err)
	}

	cfg := genesis.DefaultConfig(ownerID, n.clock.Now())
	if err := genesis.Create(cfg, n.ledger); err != nil {
		return fmt.Errorf("node: create genesis: %w", err)
	}
	n.log.Info("created genesis state",
		"owner", ownerID.String(),
		"total_supply", amount.Format(cfg.TotalSupply))
	return nil
}

// Close releases the node's resources.
func (n *Node) Close() error {
	n.events.CloseAll()
	if n.hist != nil {
		n.hist.Close()
	}
	return n.db.Close()
}

// Subscribe returns a channel of transaction events and a cancel function.
func (n *Node) Subscribe() (<-chan Event, func()) {
	return n.events.Subscribe()
}

// Sequence returns the number of transactions applied so far.
func (n *Node) Sequence() uint64 {
	return n.ledger.Sequence()
}

// Submit validates and applies one transaction. The result is final
// except for ter codes, which the caller may retry later.
func (n *Node) Submit(ctx context.Context, txn tx.Transaction) (*tx.ApplyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	closeTime := n.clock.Now()
	engine := tx.NewEngine(n.ledger, tx.EngineConfig{
		LedgerSequence: n.ledger.Sequence() + 1,
		CloseTime:      closeTime,
	})

	res := engine.Apply(txn)

	if res.Applied {
		if err := n.ledger.BumpSequence(); err != nil {
			return nil, fmt.Errorf("node: bump sequence: %w", err)
		}
	}

	common := txn.GetCommon()
	hash := strings.ToUpper(hex.EncodeToString(res.TxHash[:]))

	n.log.Info("processed transaction",
		"type", common.TransactionType,
		"account", common.Account,
		"result", res.Result.String(),
		"applied", res.Applied,
		"hash", hash)

	// ter results may be resubmitted, so they are neither stored nor
	// published.
	if res.Result.ShouldRetry() {
		return &res, nil
	}

	if n.hist != nil && res.Result.IsApplied() {
		txJSON, _ := json.Marshal(txn.Flatten())
		metaJSON, _ := json.Marshal(res.Metadata)
		rec := &history.Record{
			Hash:      hash,
			Account:   common.Account,
			TxType:    common.TransactionType,
			Result:    res.Result.String(),
			Applied:   res.Applied,
			LedgerSeq: n.ledger.Sequence(),
			CloseTime: closeTime.Unix(),
			TxJSON:    string(txJSON),
			MetaJSON:  string(metaJSON),
		}
		if err := n.hist.Record(ctx, rec); err != nil {
			n.log.Error("failed to record transaction", "hash", hash, "err", err)
		}
	}

	ev := Event{
		Hash:      hash,
		Type:      common.TransactionType,
		Account:   common.Account,
		Result:    res.Result.String(),
		Applied:   res.Applied,
		LedgerSeq: n.ledger.Sequence(),
		CloseTime: closeTime.Unix(),
	}
	if res.Metadata != nil {
		if raw, err := json.Marshal(res.Metadata); err == nil {
			var m map[string]any
			if json.Unmarshal(raw, &m) == nil {
				ev.Metadata = m
			}
		}
	}
	n.events.Publish(ev)

	return &res, nil
}

// SubmitJSON decodes and applies a transaction from its JSON form.
func (n *Node) SubmitJSON(ctx context.Context, raw []byte) (*tx.ApplyResult, error) {
	txn, err := tx.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	return n.Submit(ctx, txn)
}

// Transaction looks up a processed transaction by hash.
func (n *Node) Transaction(ctx context.Context, hash string) (*history.Record, error) {
	if n.hist == nil {
		return nil, history.ErrNotFound
	}
	return n.hist.ByHash(ctx, strings.ToUpper(hash))
}

// AccountTransactions returns an account's processed transactions,
// newest first.
func (n *Node) AccountTransactions(ctx context.Context, account string, limit int) ([]*history.Record, error) {
	if n.hist == nil {
		return nil, nil
	}
	return n.hist.ByAccount(ctx, account, limit)
}

// BalanceOf returns an account's token balance.
func (n *Node) BalanceOf(account addr.Address) (*amount.Amount, error) {
	data, err := n.ledger.Read(keylet.Account(account))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return amount.Zero(), nil
	}
	acct, err := entry.DecodeAccount(data)
	if err != nil {
		return nil, err
	}
	return amount.FromBytes(acct.Balance), nil
}

// AccountSequence returns an account's next expected sequence.
func (n *Node) AccountSequence(account addr.Address) (uint64, error) {
	data, err := n.ledger.Read(keylet.Account(account))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	acct, err := entry.DecodeAccount(data)
	if err != nil {
		return 0, err
	}
	return acct.Sequence, nil
}

// AllowanceOf returns the allowance owner has granted spender.
func (n *Node) AllowanceOf(owner, spender addr.Address) (*amount.Amount, error) {
	data, err := n.ledger.Read(keylet.Allowance(owner, spender))
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

// StakeOf returns an account's stake record, or nil when none exists.
func (n *Node) StakeOf(account addr.Address) (*entry.Stake, error) {
	data, err := n.ledger.Read(keylet.Stake(account))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return entry.DecodeStake(data)
}

// AccruedReward returns the staking reward an account could claim now.
func (n *Node) AccruedReward(account addr.Address) (*amount.Amount, error) {
	return tx.AccruedReward(n.ledger, account, n.clock.Now().Unix())
}

// PurchaseOf returns an account's presale purchase record, or nil.
func (n *Node) PurchaseOf(account addr.Address) (*entry.Purchase, error) {
	data, err := n.ledger.Read(keylet.Purchase(account))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return entry.DecodePurchase(data)
}

// Supply returns the total and burned supply.
func (n *Node) Supply() (*entry.Supply, error) {
	data, err := n.ledger.Read(keylet.Supply())
	if err != nil {
		return nil, err
	}
	return entry.DecodeSupply(data)
}

// TokenConfig returns the token policy entry.
func (n *Node) TokenConfig() (*entry.TokenConfig, error) {
	data, err := n.ledger.Read(keylet.TokenConfig())
	if err != nil {
		return nil, err
	}
	return entry.DecodeTokenConfig(data)
}

// StakingConfig returns the staking policy entry.
func (n *Node) StakingConfig() (*entry.StakingConfig, error) {
	data, err := n.ledger.Read(keylet.StakingConfig())
	if err != nil {
		return nil, err
	}
	return entry.DecodeStakingConfig(data)
}

// SaleState returns the presale state entry.
func (n *Node) SaleState() (*entry.SaleState, error) {
	data, err := n.ledger.Read(keylet.SaleState())
	if err != nil {
		return nil, err
	}
	return entry.DecodeSaleState(data)
}

// ReferralConfig returns the referral policy entry.
func (n *Node) ReferralConfig() (*entry.ReferralConfig, error) {
	data, err := n.ledger.Read(keylet.ReferralConfig())
	if err != nil {
		return nil, err
	}
	return entry.DecodeReferralConfig(data)
}
