package tx

import (
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// Engine processes transactions against a ledger.
// Transactions are applied one at a time in host order; a failed
// transaction of any category leaves no state change.
type Engine struct {
	// view provides access to ledger state.
	view StateView

	// config holds engine configuration.
	config EngineConfig
}

// EngineConfig holds configuration for the transaction engine.
type EngineConfig struct {
	// LedgerSequence is the index of the transaction being applied.
	LedgerSequence uint64

	// CloseTime is the host-supplied timestamp transactions execute at.
	// It is monotonic across the transaction log and never caller-supplied.
	CloseTime time.Time
}

// StateView provides read/write access to ledger state.
type StateView interface {
	// Read reads a ledger entry. A missing entry yields (nil, nil).
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists.
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry.
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry.
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry.
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries.
	// If fn returns false, iteration stops early.
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction.
type ApplyResult struct {
	// Result is the transaction result code.
	Result Result

	// Applied indicates if the transaction changed ledger state.
	Applied bool

	// TxHash is the hash identifying the transaction.
	TxHash [32]byte

	// Metadata contains the changes made by the transaction.
	Metadata *Metadata

	// Message is a human-readable result message.
	Message string
}

// Metadata tracks changes made by a transaction.
type Metadata struct {
	// AffectedNodes lists all entries that were created, modified or deleted.
	AffectedNodes []AffectedNode `json:"AffectedNodes"`

	// TransactionIndex is the index in the transaction log.
	TransactionIndex uint64 `json:"TransactionIndex"`

	// TransactionResult is the result code.
	TransactionResult Result `json:"-"`
}

// MarshalJSON renders the result code as its string form.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type alias Metadata
	return json.Marshal(struct {
		alias
		TransactionResult string `json:"TransactionResult"`
	}{alias(m), m.TransactionResult.String()})
}

// AffectedNode describes one entry touched by a transaction.
type AffectedNode struct {
	NodeType        string `json:"NodeType"`
	LedgerEntryType string `json:"LedgerEntryType"`
	LedgerIndex     string `json:"LedgerIndex"`
}

// NewEngine creates a new transaction engine.
func NewEngine(view StateView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

// computeTransactionHash hashes the flattened transaction under a "TXN\x00"
// prefix. Flatten maps serialize with sorted keys, so the hash is canonical.
func computeTransactionHash(t Transaction) ([32]byte, error) {
	raw, err := json.Marshal(t.Flatten())
	if err != nil {
		return [32]byte{}, err
	}
	prefix := []byte{'T', 'X', 'N', 0x00}
	return sha256.Sum256(append(prefix, raw...)), nil
}

// Apply processes a transaction and applies it to the ledger.
func (e *Engine) Apply(t Transaction) ApplyResult {
	// Step 1: preflight (syntax validation)
	result := e.preflight(t)
	if !result.IsSuccess() {
		return ApplyResult{
			Result:  result,
			Message: result.Message(),
		}
	}

	// Step 2: preclaim (validation against ledger state)
	result = e.preclaim(t)
	if !result.IsSuccess() {
		return ApplyResult{
			Result:  result,
			Message: result.Message(),
		}
	}

	txHash, err := computeTransactionHash(t)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	// Step 3: apply inside a sandboxed state table
	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0),
		TransactionIndex:  e.config.LedgerSequence,
		TransactionResult: TesSUCCESS,
	}

	result = e.doApply(t, metadata)
	metadata.TransactionResult = result

	return ApplyResult{
		Result:   result,
		Applied:  result.IsApplied(),
		TxHash:   txHash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight performs initial validation on the transaction.
func (e *Engine) preflight(t Transaction) Result {
	common := t.GetCommon()

	if common.Account == "" {
		return TemBAD_ACCOUNT
	}
	if common.TransactionType == "" {
		return TemINVALID
	}

	if err := t.Validate(); err != nil {
		return parseValidationError(err)
	}
	return TesSUCCESS
}

// parseValidationError extracts a result code from a validation error.
// Validate implementations prefix their messages with the code
// (e.g. "temINVALID_AMOUNT: amount must be positive").
func parseValidationError(err error) Result {
	msg := err.Error()

	codes := map[string]Result{
		"temMALFORMED":      TemMALFORMED,
		"temINVALID_AMOUNT": TemINVALID_AMOUNT,
		"temBAD_ACCOUNT":    TemBAD_ACCOUNT,
		"temINVALID":        TemINVALID,
		"temREDUNDANT":      TemREDUNDANT,
	}

	for code, result := range codes {
		if len(msg) >= len(code) && msg[:len(code)] == code {
			if len(msg) == len(code) || msg[len(code)] == ':' || msg[len(code)] == ' ' {
				return result
			}
		}
	}
	return TemINVALID
}

// preclaim validates the transaction against the current ledger state.
// Accounts are created lazily on first credit, so a missing source entry
// is not itself an error; only the sequence is checked here.
func (e *Engine) preclaim(t Transaction) Result {
	common := t.GetCommon()
	if common.Sequence == nil {
		return TesSUCCESS
	}

	acct, err := loadAccount(e.view, common.AccountID())
	if err != nil {
		return TefINTERNAL
	}

	switch {
	case *common.Sequence < acct.Sequence:
		return TefPAST_SEQ
	case *common.Sequence > acct.Sequence:
		return TerPRE_SEQ
	}
	return TesSUCCESS
}

// doApply applies the transaction inside an ApplyStateTable. The table is
// committed only on tesSUCCESS; every failure discards it wholesale.
func (e *Engine) doApply(t Transaction, metadata *Metadata) Result {
	table := NewApplyStateTable(e.view)

	ctx := &ApplyContext{
		View:     table,
		SourceID: t.GetCommon().AccountID(),
		Config:   e.config,
		Metadata: metadata,
	}

	var result Result
	if appliable, ok := t.(Appliable); ok {
		result = appliable.Apply(ctx)
	} else {
		result = TemINVALID
	}

	if !result.IsSuccess() {
		return result
	}

	// Consume the source sequence as part of the same atomic commit.
	if err := bumpSequence(table, ctx.SourceID); err != nil {
		return TefINTERNAL
	}

	generated, err := table.Apply()
	if err != nil {
		return TefINTERNAL
	}
	metadata.AffectedNodes = generated.AffectedNodes

	return result
}

// bumpSequence increments the source account's transaction sequence,
// creating the account entry if it does not exist yet.
func bumpSequence(view StateView, source addr.Address) error {
	k := keylet.Account(source)
	data, err := view.Read(k)
	if err != nil {
		return err
	}
	if data == nil {
		fresh, err := entry.EncodeAccount(&entry.Account{Sequence: 1})
		if err != nil {
			return err
		}
		return view.Insert(k, fresh)
	}

	acct, err := entry.DecodeAccount(data)
	if err != nil {
		return err
	}
	acct.Sequence++
	updated, err := entry.EncodeAccount(acct)
	if err != nil {
		return err
	}
	return view.Update(k, updated)
}
