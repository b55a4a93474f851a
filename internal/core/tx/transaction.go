package tx

import (
	"errors"

	"github.com/takulai/takd/internal/core/addr"
)

// Common errors used by transaction validation.
var (
	ErrMissingAccount = errors.New("temBAD_ACCOUNT: Account is required")
	ErrBadAccount     = errors.New("temBAD_ACCOUNT: malformed account address")
	ErrBadAmount      = errors.New("temINVALID_AMOUNT: malformed amount")
	ErrZeroAmount     = errors.New("temINVALID_AMOUNT: amount must be positive")
)

// Transaction is the interface that all transaction types must implement.
type Transaction interface {
	// TxType returns the transaction type.
	TxType() Type

	// GetCommon returns the common transaction fields.
	GetCommon() *Common

	// Validate checks if the transaction is well formed.
	Validate() error

	// Flatten returns a flat map of all transaction fields for serialization.
	Flatten() map[string]any
}

// Appliable is implemented by transaction types that apply themselves to
// ledger state. This replaces a central switch in Engine.doApply().
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types.
// Account is the submitting party; the host authenticates it before the
// transaction reaches the engine.
type Common struct {
	Account         string  `json:"Account"`
	TransactionType string  `json:"TransactionType"`
	Sequence        *uint64 `json:"Sequence,omitempty"`
}

// Validate validates the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return ErrMissingAccount
	}
	if _, err := addr.Parse(c.Account); err != nil {
		return ErrBadAccount
	}
	return nil
}

// AccountID returns the parsed source address.
// Validate must have succeeded first.
func (c *Common) AccountID() addr.Address {
	a, _ := addr.Parse(c.Account)
	return a
}

// SetSequence sets the sequence number.
func (c *Common) SetSequence(seq uint64) {
	c.Sequence = &seq
}

// GetSequence returns the sequence number (0 if not set).
func (c *Common) GetSequence() uint64 {
	if c.Sequence == nil {
		return 0
	}
	return *c.Sequence
}

// ToMap converts common fields to a map.
func (c *Common) ToMap() map[string]any {
	m := map[string]any{
		"Account":         c.Account,
		"TransactionType": c.TransactionType,
	}
	if c.Sequence != nil {
		m["Sequence"] = *c.Sequence
	}
	return m
}

// BaseTx provides a base implementation for transactions.
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type.
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields.
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction.
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// Flatten returns a flat map of transaction fields.
func (b *BaseTx) Flatten() map[string]any {
	return b.Common.ToMap()
}

// NewBaseTx creates a new base transaction.
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
