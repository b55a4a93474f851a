// Package entry defines the ledger state entry types and their serialization.
// Every entry is stored as a one-byte type tag followed by a CBOR payload.
package entry

import (
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

// Type identifies the kind of a ledger entry.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeAccount
	TypeAllowance
	TypeTokenConfig
	TypeSupply
	TypeStake
	TypeStakingConfig
	TypePurchase
	TypeSaleState
	TypeReferralConfig
)

// String returns the entry type name used in transaction metadata.
func (t Type) String() string {
	switch t {
	case TypeAccount:
		return "Account"
	case TypeAllowance:
		return "Allowance"
	case TypeTokenConfig:
		return "TokenConfig"
	case TypeSupply:
		return "Supply"
	case TypeStake:
		return "Stake"
	case TypeStakingConfig:
		return "StakingConfig"
	case TypePurchase:
		return "Purchase"
	case TypeSaleState:
		return "SaleState"
	case TypeReferralConfig:
		return "ReferralConfig"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

var (
	// ErrWrongType is returned when decoding a blob whose tag does not
	// match the expected entry type.
	ErrWrongType = errors.New("entry: wrong entry type")

	// ErrEmpty is returned when decoding an empty blob.
	ErrEmpty = errors.New("entry: empty data")
)

var cborHandle = &codec.CborHandle{}

// Account holds a token balance and the account's transaction sequence.
// Amounts are minimal big-endian byte strings (see the amount package).
type Account struct {
	Balance  []byte `codec:"b"`
	Sequence uint64 `codec:"s"`
}

// Allowance records how much a spender may move on behalf of an owner.
type Allowance struct {
	Owner   [20]byte `codec:"o"`
	Spender [20]byte `codec:"p"`
	Amount  []byte   `codec:"a"`
}

// TokenConfig is the singleton token policy entry.
// FeePercent is the transfer fee in percent of the gross amount.
// BurnRate is the burned share in percent of the collected fee.
type TokenConfig struct {
	Owner      [20]byte `codec:"o"`
	Reserve    [20]byte `codec:"r"`
	FeePercent uint32   `codec:"f"`
	BurnRate   uint32   `codec:"u"`
}

// Supply is the singleton total/burned supply entry.
type Supply struct {
	Total  []byte `codec:"t"`
	Burned []byte `codec:"b"`
}

// Stake records a staker's principal and accrual clock.
// Times are unix seconds from the engine close time.
type Stake struct {
	Principal   []byte `codec:"p"`
	StakedAt    int64  `codec:"t"`
	LastAccrual int64  `codec:"l"`
}

// StakingConfig is the singleton staking policy entry.
// Rewards accrue at RewardPercent of principal per full PeriodSeconds elapsed.
type StakingConfig struct {
	Account       [20]byte `codec:"a"`
	RewardPool    [20]byte `codec:"r"`
	RewardPercent uint32   `codec:"p"`
	PeriodSeconds int64    `codec:"s"`
}

// Purchase accumulates a buyer's presale contributions and unclaimed tokens.
type Purchase struct {
	EthContributed []byte `codec:"e"`
	Tokens         []byte `codec:"t"`
	PurchasedAt    int64  `codec:"a"`
}

// SaleState is the singleton presale entry.
// Prices are USD cents; TokenPriceUsdCents is fixed at genesis.
type SaleState struct {
	Owner              [20]byte `codec:"o"`
	Account            [20]byte `codec:"a"`
	Start              int64    `codec:"s"`
	End                int64    `codec:"e"`
	Hardcap            []byte   `codec:"h"`
	TokensSold         []byte   `codec:"t"`
	EthPriceUsdCents   uint64   `codec:"c"`
	TokenPriceUsdCents uint64   `codec:"k"`
	EthRaised          []byte   `codec:"r"`
	VestingSeconds     int64    `codec:"v"`
	Finalized          bool     `codec:"f"`
	FinalizedAt        int64    `codec:"z"`
	RaisedWithdrawn    bool     `codec:"w"`
}

// ReferralConfig is the singleton referral policy entry.
// Levels holds the commission percentage per referral level, level 1 first.
type ReferralConfig struct {
	Owner   [20]byte `codec:"o"`
	Account [20]byte `codec:"a"`
	Levels  []uint32 `codec:"l"`
}

// encode serializes a payload under the given type tag.
func encode(t Type, v any) ([]byte, error) {
	var payload []byte
	if err := codec.NewEncoderBytes(&payload, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, byte(t))
	return append(out, payload...), nil
}

// decode deserializes a blob into v, checking the type tag.
func decode(t Type, data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if Type(data[0]) != t {
		return fmt.Errorf("%w: have %s, want %s", ErrWrongType, Type(data[0]), t)
	}
	return codec.NewDecoderBytes(data[1:], cborHandle).Decode(v)
}

// TypeOf returns the type tag of a serialized entry.
func TypeOf(data []byte) Type {
	if len(data) == 0 {
		return TypeUnknown
	}
	return Type(data[0])
}

func EncodeAccount(e *Account) ([]byte, error)     { return encode(TypeAccount, e) }
func EncodeAllowance(e *Allowance) ([]byte, error) { return encode(TypeAllowance, e) }
func EncodeTokenConfig(e *TokenConfig) ([]byte, error) {
	return encode(TypeTokenConfig, e)
}
func EncodeSupply(e *Supply) ([]byte, error) { return encode(TypeSupply, e) }
func EncodeStake(e *Stake) ([]byte, error)   { return encode(TypeStake, e) }
func EncodeStakingConfig(e *StakingConfig) ([]byte, error) {
	return encode(TypeStakingConfig, e)
}
func EncodePurchase(e *Purchase) ([]byte, error)   { return encode(TypePurchase, e) }
func EncodeSaleState(e *SaleState) ([]byte, error) { return encode(TypeSaleState, e) }
func EncodeReferralConfig(e *ReferralConfig) ([]byte, error) {
	return encode(TypeReferralConfig, e)
}

func DecodeAccount(data []byte) (*Account, error) {
	e := &Account{}
	if err := decode(TypeAccount, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeAllowance(data []byte) (*Allowance, error) {
	e := &Allowance{}
	if err := decode(TypeAllowance, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeTokenConfig(data []byte) (*TokenConfig, error) {
	e := &TokenConfig{}
	if err := decode(TypeTokenConfig, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeSupply(data []byte) (*Supply, error) {
	e := &Supply{}
	if err := decode(TypeSupply, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeStake(data []byte) (*Stake, error) {
	e := &Stake{}
	if err := decode(TypeStake, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeStakingConfig(data []byte) (*StakingConfig, error) {
	e := &StakingConfig{}
	if err := decode(TypeStakingConfig, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodePurchase(data []byte) (*Purchase, error) {
	e := &Purchase{}
	if err := decode(TypePurchase, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeSaleState(data []byte) (*SaleState, error) {
	e := &SaleState{}
	if err := decode(TypeSaleState, data, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DecodeReferralConfig(data []byte) (*ReferralConfig, error) {
	e := &ReferralConfig{}
	if err := decode(TypeReferralConfig, data, e); err != nil {
		return nil, err
	}
	return e, nil
}
