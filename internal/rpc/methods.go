package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
	"github.com/takulai/takd/internal/node"
	"github.com/takulai/takd/internal/storage/history"
)

// Method handles one RPC method.
type Method interface {
	Handle(ctx context.Context, params json.RawMessage) (any, *RpcError)
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]Method
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]Method)}
}

func (r *MethodRegistry) Register(name string, m Method) {
	r.methods[name] = m
}

func (r *MethodRegistry) Get(name string) (Method, bool) {
	m, ok := r.methods[name]
	return m, ok
}

// registerAllMethods wires every method against the node.
func registerAllMethods(reg *MethodRegistry, n *node.Node, version string) {
	reg.Register("submit", &submitMethod{n})
	reg.Register("account_info", &accountInfoMethod{n})
	reg.Register("allowance", &allowanceMethod{n})
	reg.Register("stake_info", &stakeInfoMethod{n})
	reg.Register("sale_state", &saleStateMethod{n})
	reg.Register("purchase", &purchaseMethod{n})
	reg.Register("supply", &supplyMethod{n})
	reg.Register("token_config", &tokenConfigMethod{n})
	reg.Register("referral_config", &referralConfigMethod{n})
	reg.Register("tx", &txMethod{n})
	reg.Register("account_tx", &accountTxMethod{n})
	reg.Register("server_info", &serverInfoMethod{n, version})
}

func parseParams(params json.RawMessage, into any) *RpcError {
	if len(params) == 0 {
		return RpcErrorInvalidParams("missing parameters")
	}
	if err := json.Unmarshal(params, into); err != nil {
		return RpcErrorInvalidParams("malformed parameters: " + err.Error())
	}
	return nil
}

func parseAccount(s string) (addr.Address, *RpcError) {
	a, err := addr.Parse(s)
	if err != nil {
		return addr.Zero, RpcErrorInvalidParams("malformed account address")
	}
	return a, nil
}

// submit applies a transaction and returns its engine result.
type submitMethod struct{ node *node.Node }

func (m *submitMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		TxJSON json.RawMessage `json:"tx_json"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if len(req.TxJSON) == 0 {
		return nil, RpcErrorInvalidParams("tx_json is required")
	}

	res, err := m.node.SubmitJSON(ctx, req.TxJSON)
	if err != nil {
		return nil, RpcErrorInvalidParams(err.Error())
	}

	out := map[string]any{
		"engine_result":         res.Result.String(),
		"engine_result_code":    int(res.Result),
		"engine_result_message": res.Message,
		"applied":               res.Applied,
	}
	if res.Applied {
		out["tx_hash"] = hexHash(res.TxHash)
		out["metadata"] = res.Metadata
	}
	return out, nil
}

// account_info returns balance and sequence for an account.
type accountInfoMethod struct{ node *node.Node }

func (m *accountInfoMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	balance, err := m.node.BalanceOf(account)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	seq, err := m.node.AccountSequence(account)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{
		"account":  account.String(),
		"balance":  amount.Format(balance),
		"sequence": seq,
	}, nil
}

// allowance returns the amount a spender may move for an owner.
type allowanceMethod struct{ node *node.Node }

func (m *allowanceMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount(req.Owner)
	if rpcErr != nil {
		return nil, rpcErr
	}
	spender, rpcErr := parseAccount(req.Spender)
	if rpcErr != nil {
		return nil, rpcErr
	}

	allowed, err := m.node.AllowanceOf(owner, spender)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{
		"owner":   owner.String(),
		"spender": spender.String(),
		"amount":  amount.Format(allowed),
	}, nil
}

// stake_info returns an account's stake and the reward claimable now.
type stakeInfoMethod struct{ node *node.Node }

func (m *stakeInfoMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	stake, err := m.node.StakeOf(account)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	if stake == nil {
		return map[string]any{
			"account":   account.String(),
			"principal": "0",
		}, nil
	}

	accrued, err := m.node.AccruedReward(account)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{
		"account":        account.String(),
		"principal":      amount.Format(amount.FromBytes(stake.Principal)),
		"staked_at":      stake.StakedAt,
		"last_accrual":   stake.LastAccrual,
		"accrued_reward": amount.Format(accrued),
	}, nil
}

// sale_state returns the presale singleton.
type saleStateMethod struct{ node *node.Node }

func (m *saleStateMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	sale, err := m.node.SaleState()
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{
		"owner":                 addr.Address(sale.Owner).String(),
		"account":               addr.Address(sale.Account).String(),
		"start":                 sale.Start,
		"end":                   sale.End,
		"hardcap":               amount.Format(amount.FromBytes(sale.Hardcap)),
		"tokens_sold":           amount.Format(amount.FromBytes(sale.TokensSold)),
		"eth_raised":            amount.Format(amount.FromBytes(sale.EthRaised)),
		"eth_price_usd_cents":   sale.EthPriceUsdCents,
		"token_price_usd_cents": sale.TokenPriceUsdCents,
		"vesting_seconds":       sale.VestingSeconds,
		"finalized":             sale.Finalized,
		"finalized_at":          sale.FinalizedAt,
		"raised_withdrawn":      sale.RaisedWithdrawn,
	}, nil
}

// purchase returns a buyer's presale record.
type purchaseMethod struct{ node *node.Node }

func (m *purchaseMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	purchase, err := m.node.PurchaseOf(account)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	if purchase == nil {
		return nil, RpcErrorNotFound("no purchase for account")
	}
	return map[string]any{
		"account":         account.String(),
		"eth_contributed": amount.Format(amount.FromBytes(purchase.EthContributed)),
		"tokens":          amount.Format(amount.FromBytes(purchase.Tokens)),
		"purchased_at":    purchase.PurchasedAt,
	}, nil
}

// supply returns total, burned and circulating supply.
type supplyMethod struct{ node *node.Node }

func (m *supplyMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	supply, err := m.node.Supply()
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	total := amount.FromBytes(supply.Total)
	burned := amount.FromBytes(supply.Burned)
	return map[string]any{
		"total":       amount.Format(total),
		"burned":      amount.Format(burned),
		"circulating": amount.Format(amount.Sub(total, burned)),
	}, nil
}

// token_config returns the token policy.
type tokenConfigMethod struct{ node *node.Node }

func (m *tokenConfigMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	cfg, err := m.node.TokenConfig()
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{
		"owner":       addr.Address(cfg.Owner).String(),
		"reserve":     addr.Address(cfg.Reserve).String(),
		"fee_percent": cfg.FeePercent,
		"burn_rate":   cfg.BurnRate,
	}, nil
}

// referral_config returns the referral policy.
type referralConfigMethod struct{ node *node.Node }

func (m *referralConfigMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	cfg, err := m.node.ReferralConfig()
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{
		"owner":   addr.Address(cfg.Owner).String(),
		"account": addr.Address(cfg.Account).String(),
		"levels":  cfg.Levels,
	}, nil
}

// tx looks up a processed transaction by hash.
type txMethod struct{ node *node.Node }

func (m *txMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Transaction string `json:"transaction"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Transaction == "" {
		return nil, RpcErrorInvalidParams("transaction hash is required")
	}

	rec, err := m.node.Transaction(ctx, req.Transaction)
	if errors.Is(err, history.ErrNotFound) {
		return nil, RpcErrorNotFound("transaction not found")
	}
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return recordToMap(rec), nil
}

// account_tx lists an account's processed transactions.
type accountTxMethod struct{ node *node.Node }

func (m *accountTxMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Account string `json:"account"`
		Limit   int    `json:"limit"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if _, rpcErr := parseAccount(req.Account); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}

	recs, err := m.node.AccountTransactions(ctx, req.Account, req.Limit)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordToMap(rec))
	}
	return map[string]any{
		"account":      req.Account,
		"transactions": out,
	}, nil
}

// server_info reports node status.
type serverInfoMethod struct {
	node    *node.Node
	version string
}

func (m *serverInfoMethod) Handle(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	return map[string]any{
		"build_version": m.version,
		"complete_seqs": m.node.Sequence(),
		"server_state":  "full",
	}, nil
}

func hexHash(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func recordToMap(rec *history.Record) map[string]any {
	m := map[string]any{
		"hash":       rec.Hash,
		"account":    rec.Account,
		"type":       rec.TxType,
		"result":     rec.Result,
		"applied":    rec.Applied,
		"ledger_seq": rec.LedgerSeq,
		"close_time": rec.CloseTime,
	}
	var txJSON, metaJSON any
	if json.Unmarshal([]byte(rec.TxJSON), &txJSON) == nil {
		m["tx_json"] = txJSON
	}
	if json.Unmarshal([]byte(rec.MetaJSON), &metaJSON) == nil {
		m["meta"] = metaJSON
	}
	return m
}
