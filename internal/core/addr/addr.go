// Package addr provides the 20-byte account address type used throughout
// the ledger. Addresses are rendered as 0x-prefixed hex strings.
package addr

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Length is the size of an address in bytes.
const Length = 20

// ErrInvalidAddress is returned when a string cannot be parsed as an address.
var ErrInvalidAddress = errors.New("invalid address")

// Address is a 20-byte account identifier.
type Address [Length]byte

// Zero is the all-zero address. It is not a valid transaction participant.
var Zero Address

// Parse decodes a 0x-prefixed hex string into an Address.
func Parse(s string) (Address, error) {
	var a Address
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return a, ErrInvalidAddress
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, ErrInvalidAddress
	}
	if len(raw) != Length {
		return a, ErrInvalidAddress
	}
	copy(a[:], raw)
	return a, nil
}

// MustParse decodes a 0x-prefixed hex string, panicking on error.
// Intended for tests and hardcoded genesis values.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic("addr: " + err.Error() + ": " + s)
	}
	return a
}

// FromBytes builds an Address from a byte slice of exactly Length bytes.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Length {
		return a, ErrInvalidAddress
	}
	copy(a[:], b)
	return a, nil
}

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is the all-zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}
