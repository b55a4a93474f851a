package testing

import (
	"crypto/sha256"

	"github.com/takulai/takd/internal/core/addr"
)

// Account is a named test account with a deterministic address.
type Account struct {
	Name    string
	Address addr.Address
}

// NewAccount derives a test account from its name. The same name always
// yields the same address.
func NewAccount(name string) *Account {
	sum := sha256.Sum256([]byte("takd/test/account/" + name))
	var a addr.Address
	copy(a[:], sum[:addr.Length])
	return &Account{Name: name, Address: a}
}

// ID returns the account's address string as used in transactions.
func (a *Account) ID() string {
	return a.Address.String()
}
