package tx

import (
	"errors"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/amount"
)

// Token ledger transactions: direct and delegated transfers, allowances,
// and the owner-gated fee, burn and ownership controls.

var (
	errBadDestination = errors.New("temBAD_ACCOUNT: malformed destination address")
	errBadSpender     = errors.New("temBAD_ACCOUNT: malformed spender address")
	errBadOwner       = errors.New("temBAD_ACCOUNT: malformed owner address")
	errSelfTransfer   = errors.New("temREDUNDANT: destination is the source account")
	errBadPercent     = errors.New("temINVALID_AMOUNT: percentage must not exceed 100")
)

// Transfer moves tokens from the source account to a destination.
// The configured transfer fee is deducted from the amount; the
// destination receives the net.
type Transfer struct {
	BaseTx
	Destination string `json:"Destination"`
	Amount      string `json:"Amount"`
}

// NewTransfer creates a Transfer transaction.
func NewTransfer(account, destination string, amt *amount.Amount) *Transfer {
	return &Transfer{
		BaseTx:      *NewBaseTx(TypeTransfer, account),
		Destination: destination,
		Amount:      amount.Format(amt),
	}
}

func (t *Transfer) TxType() Type { return TypeTransfer }

func (t *Transfer) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	dest, err := addr.Parse(t.Destination)
	if err != nil {
		return errBadDestination
	}
	if dest == t.Common.AccountID() {
		return errSelfTransfer
	}
	if _, err := amount.Parse(t.Amount); err != nil {
		return ErrBadAmount
	}
	return nil
}

func (t *Transfer) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

// Approve sets the allowance the source account grants a spender.
// The new allowance replaces any previous one; a zero amount revokes it.
type Approve struct {
	BaseTx
	Spender string `json:"Spender"`
	Amount  string `json:"Amount"`
}

// NewApprove creates an Approve transaction.
func NewApprove(account, spender string, amt *amount.Amount) *Approve {
	return &Approve{
		BaseTx:  *NewBaseTx(TypeApprove, account),
		Spender: spender,
		Amount:  amount.Format(amt),
	}
}

func (t *Approve) TxType() Type { return TypeApprove }

func (t *Approve) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := addr.Parse(t.Spender); err != nil {
		return errBadSpender
	}
	if _, err := amount.Parse(t.Amount); err != nil {
		return ErrBadAmount
	}
	return nil
}

func (t *Approve) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Spender"] = t.Spender
	m["Amount"] = t.Amount
	return m
}

// TransferFrom moves tokens from an owner to a destination on behalf of
// the source account, consuming the owner's allowance by the gross amount.
type TransferFrom struct {
	BaseTx
	Owner       string `json:"Owner"`
	Destination string `json:"Destination"`
	Amount      string `json:"Amount"`
}

// NewTransferFrom creates a TransferFrom transaction.
func NewTransferFrom(account, owner, destination string, amt *amount.Amount) *TransferFrom {
	return &TransferFrom{
		BaseTx:      *NewBaseTx(TypeTransferFrom, account),
		Owner:       owner,
		Destination: destination,
		Amount:      amount.Format(amt),
	}
}

func (t *TransferFrom) TxType() Type { return TypeTransferFrom }

func (t *TransferFrom) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := addr.Parse(t.Owner); err != nil {
		return errBadOwner
	}
	if _, err := addr.Parse(t.Destination); err != nil {
		return errBadDestination
	}
	if _, err := amount.Parse(t.Amount); err != nil {
		return ErrBadAmount
	}
	return nil
}

func (t *TransferFrom) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["Owner"] = t.Owner
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

// SetFeePercent changes the transfer fee percentage. Owner only.
type SetFeePercent struct {
	BaseTx
	FeePercent uint32 `json:"FeePercent"`
}

// NewSetFeePercent creates a SetFeePercent transaction.
func NewSetFeePercent(account string, pct uint32) *SetFeePercent {
	return &SetFeePercent{
		BaseTx:     *NewBaseTx(TypeSetFeePercent, account),
		FeePercent: pct,
	}
}

func (t *SetFeePercent) TxType() Type { return TypeSetFeePercent }

func (t *SetFeePercent) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.FeePercent > 100 {
		return errBadPercent
	}
	return nil
}

func (t *SetFeePercent) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["FeePercent"] = t.FeePercent
	return m
}

// SetBurnRate changes the share of each collected fee that is burned
// from the reserve. Owner only.
type SetBurnRate struct {
	BaseTx
	BurnRate uint32 `json:"BurnRate"`
}

// NewSetBurnRate creates a SetBurnRate transaction.
func NewSetBurnRate(account string, rate uint32) *SetBurnRate {
	return &SetBurnRate{
		BaseTx:   *NewBaseTx(TypeSetBurnRate, account),
		BurnRate: rate,
	}
}

func (t *SetBurnRate) TxType() Type { return TypeSetBurnRate }

func (t *SetBurnRate) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.BurnRate > 100 {
		return errBadPercent
	}
	return nil
}

func (t *SetBurnRate) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["BurnRate"] = t.BurnRate
	return m
}

// SetOwner transfers administrative control of the token to a new owner.
// Owner only.
type SetOwner struct {
	BaseTx
	NewOwner string `json:"NewOwner"`
}

// NewSetOwner creates a SetOwner transaction.
func NewSetOwner(account, newOwner string) *SetOwner {
	return &SetOwner{
		BaseTx:   *NewBaseTx(TypeSetOwner, account),
		NewOwner: newOwner,
	}
}

func (t *SetOwner) TxType() Type { return TypeSetOwner }

func (t *SetOwner) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := addr.Parse(t.NewOwner); err != nil {
		return errBadOwner
	}
	return nil
}

func (t *SetOwner) Flatten() map[string]any {
	m := t.Common.ToMap()
	m["NewOwner"] = t.NewOwner
	return m
}
