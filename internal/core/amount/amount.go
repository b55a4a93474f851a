// Package amount provides 256-bit unsigned token arithmetic.
// All balances and transfer values are expressed in base units;
// one whole token is 10^18 base units.
package amount

import (
	"errors"

	"github.com/holiman/uint256"
)

// Decimals is the number of base-unit decimals per whole token.
const Decimals = 18

// ErrInvalidAmount is returned when a string cannot be parsed as an amount.
var ErrInvalidAmount = errors.New("invalid amount")

// unit is 10^18, the number of base units in one whole token.
var unit = func() *uint256.Int {
	u := uint256.NewInt(10)
	return u.Exp(u, uint256.NewInt(Decimals))
}()

// Amount is a 256-bit unsigned integer value in base units.
type Amount = uint256.Int

// Zero returns a new zero amount.
func Zero() *Amount {
	return uint256.NewInt(0)
}

// New returns an amount from a uint64 of base units.
func New(v uint64) *Amount {
	return uint256.NewInt(v)
}

// Tokens returns n whole tokens in base units.
func Tokens(n uint64) *Amount {
	v := uint256.NewInt(n)
	return v.Mul(v, unit)
}

// Parse decodes a decimal string of base units.
func Parse(s string) (*Amount, error) {
	if s == "" {
		return nil, ErrInvalidAmount
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

// MustParse decodes a decimal string of base units, panicking on error.
func MustParse(s string) *Amount {
	v, err := Parse(s)
	if err != nil {
		panic("amount: " + s)
	}
	return v
}

// Format renders an amount as a decimal string of base units.
func Format(a *Amount) string {
	if a == nil {
		return "0"
	}
	return a.Dec()
}

// Percent returns value * pct / 100, truncating toward zero.
func Percent(value *Amount, pct uint64) *Amount {
	out := new(uint256.Int).Mul(value, uint256.NewInt(pct))
	return out.Div(out, uint256.NewInt(100))
}

// Add returns a + b in a fresh amount.
func Add(a, b *Amount) *Amount {
	return new(uint256.Int).Add(a, b)
}

// Sub returns a - b in a fresh amount. The caller must ensure a >= b.
func Sub(a, b *Amount) *Amount {
	return new(uint256.Int).Sub(a, b)
}

// Bytes returns the minimal big-endian encoding of the amount.
// Used by the ledger entry codec.
func Bytes(a *Amount) []byte {
	if a == nil || a.IsZero() {
		return nil
	}
	return a.Bytes()
}

// FromBytes decodes a minimal big-endian encoding produced by Bytes.
func FromBytes(b []byte) *Amount {
	return new(uint256.Int).SetBytes(b)
}
